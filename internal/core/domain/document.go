package domain

import "time"

type DocumentStatus string

const (
	StatusPending    DocumentStatus = "pending"
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusClassified DocumentStatus = "classified"
	StatusRouted     DocumentStatus = "routed"
	StatusFailed     DocumentStatus = "failed"
)

type Document struct {
	ID           string         `json:"id"`
	OriginalName string         `json:"original_name"`
	StoragePath  string         `json:"storage_path"`
	DocType      string         `json:"doc_type,omitempty"`
	Confidence   float64        `json:"confidence,omitempty"`
	FileSize     int64          `json:"file_size,omitempty"`
	MimeType     string         `json:"mime_type,omitempty"`
	ContentHash  string         `json:"content_hash,omitempty"`
	Status       DocumentStatus `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Classification is the outcome of the keyword classifier for one document.
type Classification struct {
	DocType    string  `json:"doc_type"`
	Confidence float64 `json:"confidence"`
	Priority   int     `json:"priority"`
}

// Entities groups named entities pulled out of document text.
type Entities struct {
	Persons       []string `json:"persons"`
	Organizations []string `json:"organizations"`
	Dates         []string `json:"dates"`
	Money         []string `json:"money"`
	Locations     []string `json:"locations"`
	Emails        []string `json:"emails"`
	PhoneNumbers  []string `json:"phone_numbers"`
}

// All flattens every entity group into one list.
func (e Entities) All() []string {
	var out []string
	for _, group := range [][]string{
		e.Persons, e.Organizations, e.Dates, e.Money, e.Locations, e.Emails, e.PhoneNumbers,
	} {
		out = append(out, group...)
	}
	return out
}

// ContentAnalysis is the derived view of a document's content stored as metadata.
type ContentAnalysis struct {
	Entities  Entities           `json:"entities"`
	Summary   string             `json:"summary"`
	Language  string             `json:"language"`
	Sentiment float64            `json:"sentiment"`
	Topics    map[string]float64 `json:"topics"`
	RiskScore float64            `json:"risk_score"`
}

// TopTopic returns the highest-scoring topic, or "" when no topic scored.
func (a ContentAnalysis) TopTopic() string {
	best := ""
	bestScore := 0.0
	for topic, score := range a.Topics {
		if score > bestScore || (score == bestScore && score > 0 && (best == "" || topic < best)) {
			best = topic
			bestScore = score
		}
	}
	return best
}

type Metadata struct {
	ID             int64              `json:"id"`
	DocID          string             `json:"doc_id"`
	KeyEntities    Entities           `json:"key_entities"`
	RelatedDocs    []string           `json:"related_docs,omitempty"`
	RiskScore      float64            `json:"risk_score"`
	Summary        string             `json:"summary,omitempty"`
	Language       string             `json:"language,omitempty"`
	SentimentScore float64            `json:"sentiment_score"`
	Topics         map[string]float64 `json:"topics,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}

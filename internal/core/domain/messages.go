package domain

// ClassificationResult is the queue payload handed from the classification
// pipeline to the routing engine.
type ClassificationResult struct {
	DocumentID string   `json:"document_id"`
	DocType    string   `json:"doc_type"`
	Category   string   `json:"category,omitempty"`
	Confidence float64  `json:"confidence"`
	Entities   Entities `json:"entities"`
	RiskScore  float64  `json:"risk_score"`
	Priority   int      `json:"priority"`
}

// RuleContextFrom builds the rule-evaluation context for a classified document.
func RuleContextFrom(res ClassificationResult) RuleContext {
	return RuleContext{
		DocType:    res.DocType,
		Category:   res.Category,
		Confidence: res.Confidence,
		RiskScore:  res.RiskScore,
		Priority:   res.Priority,
		Entities:   res.Entities,
	}
}

// ScrapeJob is the queue payload for one scraping run.
type ScrapeJob struct {
	SourceID int64       `json:"source_id"`
	URL      string      `json:"url"`
	Rules    ScrapeRules `json:"rules"`
}

// AssignmentNotification is published after a successful routing decision.
type AssignmentNotification struct {
	DocumentID   string `json:"document_id"`
	AssignmentID int64  `json:"assignment_id"`
	AssignedTo   string `json:"assigned_to"`
	DocType      string `json:"doc_type"`
	Priority     int    `json:"priority"`
	Reason       string `json:"reason"`
}

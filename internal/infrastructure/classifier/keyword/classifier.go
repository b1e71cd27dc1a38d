package keyword

import (
	"context"
	"strings"

	"github.com/akarpov/docrouter/internal/core/domain"
)

// Classifier scores document text against per-type keyword lists. Longer
// phrases weigh more, scores are normalized so two-word phrases cap the
// per-type maximum.
type Classifier struct {
	patterns map[string][]string
}

func NewClassifier() *Classifier {
	return &Classifier{patterns: docTypePatterns}
}

var docTypePatterns = map[string][]string{
	"contract": {
		"agreement", "contract", "terms and conditions", "whereas", "party",
		"consideration", "obligations", "covenant", "liability", "termination",
	},
	"invoice": {
		"invoice", "bill", "amount due", "total amount", "payment terms",
		"due date", "invoice number", "billing address", "tax", "subtotal",
	},
	"report": {
		"report", "analysis", "findings", "conclusions", "recommendations",
		"methodology", "results", "summary", "overview", "executive summary",
	},
	"correspondence": {
		"dear", "sincerely", "best regards", "yours truly", "letter",
		"email", "memorandum", "memo", "communication", "follow up",
	},
	"legal": {
		"whereas", "plaintiff", "defendant", "court", "judgment", "statute",
		"regulation", "compliance", "legal notice", "litigation", "appeal",
	},
	"financial": {
		"balance sheet", "income statement", "cash flow", "assets", "liabilities",
		"revenue", "expenses", "profit", "financial", "accounting",
	},
	"hr": {
		"employee", "personnel", "human resources", "payroll", "benefits",
		"performance review", "job description", "recruitment", "training",
	},
	"technical": {
		"specification", "requirements", "architecture", "design", "implementation",
		"testing", "documentation", "technical", "system", "software",
	},
}

var urgentKeywords = []string{"urgent", "asap", "immediate", "critical", "emergency", "deadline"}

// typePriorities ranks document types on the 1..5 scale used for routing.
var typePriorities = map[string]int{
	"legal":          4,
	"contract":       4,
	"invoice":        3,
	"financial":      3,
	"hr":             2,
	"correspondence": 2,
	"report":         2,
	"technical":      1,
	"unknown":        1,
}

func (c *Classifier) Classify(_ context.Context, text, filename string) (domain.Classification, error) {
	corpus := strings.ToLower(text)
	name := strings.ToLower(filename)

	if strings.TrimSpace(corpus) == "" && name == "" {
		return domain.Classification{DocType: "unknown", Confidence: 0, Priority: 1}, nil
	}

	bestType := "unknown"
	bestScore := 0.0
	for docType, keywords := range c.patterns {
		score := 0.0
		for _, keyword := range keywords {
			if strings.Contains(corpus, keyword) {
				score += float64(len(strings.Fields(keyword)))
			} else if strings.Contains(name, keyword) {
				score += 0.5
			}
		}
		score /= float64(len(keywords) * 2)
		if score > bestScore || (score == bestScore && score > 0 && docType < bestType) {
			bestType = docType
			bestScore = score
		}
	}

	if bestScore == 0 {
		return domain.Classification{DocType: "unknown", Confidence: 0, Priority: 1}, nil
	}

	confidence := bestScore
	if confidence > 1.0 {
		confidence = 1.0
	}

	return domain.Classification{
		DocType:    bestType,
		Confidence: confidence,
		Priority:   priorityFor(bestType, corpus),
	}, nil
}

func priorityFor(docType, text string) int {
	for _, keyword := range urgentKeywords {
		if strings.Contains(text, keyword) {
			return 5
		}
	}
	if p, ok := typePriorities[docType]; ok {
		return p
	}
	return 1
}

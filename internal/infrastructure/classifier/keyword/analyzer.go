package keyword

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/akarpov/docrouter/internal/core/domain"
	"github.com/akarpov/docrouter/internal/core/ports"
)

// Analyzer derives entities, risk, topics, sentiment, language and a summary
// from extracted text. When a SummaryGenerator is wired, it replaces the
// extractive summary and failures fall back silently.
type Analyzer struct {
	summarizer ports.SummaryGenerator
}

func NewAnalyzer(summarizer ports.SummaryGenerator) *Analyzer {
	return &Analyzer{summarizer: summarizer}
}

const (
	maxEntities   = 10
	maxSummaryLen = 500
)

var (
	emailPattern  = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phonePattern  = regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)
	moneyPattern  = regexp.MustCompile(`\$\d+(?:,\d{3})*(?:\.\d{2})?|\b\d+(?:,\d{3})*(?:\.\d{2})?\s*(?:USD|dollars)\b`)
	datePattern   = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{4}\b|\b\d{4}-\d{2}-\d{2}\b|\b\d{1,2}\s+(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{4}\b`)
	orgPattern    = regexp.MustCompile(`\b(?:[A-Z][A-Za-z&]+\s)+(?:Inc|LLC|Ltd|Corp|Corporation|GmbH|Company)\.?\b`)
	personPattern = regexp.MustCompile(`\b(?:Mr|Ms|Mrs|Dr|Prof)\.\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)?`)
)

var riskKeywords = map[string]struct {
	weight   float64
	keywords []string
}{
	"high_risk":       {0.4, []string{"confidential", "classified", "restricted", "private", "sensitive"}},
	"financial_risk":  {0.3, []string{"payment", "credit card", "ssn", "social security", "bank account"}},
	"legal_risk":      {0.2, []string{"lawsuit", "litigation", "breach", "violation", "penalty"}},
	"compliance_risk": {0.1, []string{"gdpr", "hipaa", "sox", "regulation", "compliance"}},
}

var topicKeywords = map[string][]string{
	"business":  {"business", "company", "corporate", "meeting", "strategy", "market"},
	"legal":     {"legal", "law", "court", "judge", "attorney", "contract", "agreement"},
	"financial": {"money", "payment", "invoice", "budget", "cost", "price", "financial"},
	"technical": {"technical", "software", "system", "development", "programming", "data"},
	"personal":  {"personal", "private", "individual", "family"},
}

var (
	positiveWords = []string{"good", "excellent", "great", "positive", "success", "approve", "agree"}
	negativeWords = []string{"bad", "terrible", "negative", "fail", "reject", "disagree", "problem"}
)

var languageMarkers = map[string][]string{
	"en": {"the", "and", "or", "but", "in", "on", "at", "to", "for", "of", "with", "by"},
	"es": {"el", "la", "los", "las", "y", "pero", "en", "de", "con", "por", "para"},
	"fr": {"le", "la", "les", "et", "ou", "mais", "dans", "avec", "par", "pour"},
}

func (a *Analyzer) Analyze(ctx context.Context, text string) (domain.ContentAnalysis, error) {
	if strings.TrimSpace(text) == "" {
		return domain.ContentAnalysis{Language: "en", Topics: emptyTopics()}, nil
	}

	lower := strings.ToLower(text)
	words := strings.Fields(text)

	analysis := domain.ContentAnalysis{
		Entities:  extractEntities(text),
		Language:  detectLanguage(lower),
		Sentiment: sentimentScore(lower, len(words)),
		Topics:    extractTopics(lower, len(words)),
		RiskScore: assessRisk(lower),
	}
	analysis.Summary = a.summarize(ctx, text)

	return analysis, nil
}

func (a *Analyzer) summarize(ctx context.Context, text string) string {
	if a.summarizer != nil && len(text) > 100 {
		summary, err := a.summarizer.Summarize(ctx, text)
		if err == nil && strings.TrimSpace(summary) != "" {
			return truncate(strings.TrimSpace(summary), maxSummaryLen)
		}
		if err != nil {
			slog.Warn("summary generation failed, using extractive fallback", "error", err)
		}
	}
	return extractiveSummary(text)
}

// extractiveSummary takes the first, middle and last sentences.
func extractiveSummary(text string) string {
	sentences := strings.Split(text, ". ")
	if len(sentences) <= 3 {
		return truncate(text, maxSummaryLen)
	}
	picked := []string{
		sentences[0],
		sentences[len(sentences)/2],
		sentences[len(sentences)-1],
	}
	return truncate(strings.Join(picked, ". "), maxSummaryLen)
}

func extractEntities(text string) domain.Entities {
	return domain.Entities{
		Persons:       dedupLimit(personPattern.FindAllString(text, -1)),
		Organizations: dedupLimit(orgPattern.FindAllString(text, -1)),
		Dates:         dedupLimit(datePattern.FindAllString(text, -1)),
		Money:         dedupLimit(moneyPattern.FindAllString(text, -1)),
		Emails:        dedupLimit(emailPattern.FindAllString(text, -1)),
		PhoneNumbers:  dedupLimit(phonePattern.FindAllString(text, -1)),
	}
}

func detectLanguage(lower string) string {
	best, bestCount := "en", 0
	for _, lang := range []string{"en", "es", "fr"} {
		count := 0
		for _, marker := range languageMarkers[lang] {
			if containsWord(lower, marker) {
				count++
			}
		}
		if count > bestCount {
			best, bestCount = lang, count
		}
	}
	return best
}

// sentimentScore returns a value in [-1, 1] from keyword counts scaled by
// document length.
func sentimentScore(lower string, totalWords int) float64 {
	if totalWords == 0 {
		return 0
	}
	positive, negative := 0, 0
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			positive++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			negative++
		}
	}
	scale := float64(totalWords) / 100
	if scale < 1 {
		scale = 1
	}
	score := float64(positive-negative) / scale
	if score > 1 {
		return 1
	}
	if score < -1 {
		return -1
	}
	return score
}

func extractTopics(lower string, totalWords int) map[string]float64 {
	topics := emptyTopics()
	scale := float64(totalWords) / 100
	if scale < 1 {
		scale = 1
	}
	for topic, keywords := range topicKeywords {
		count := 0
		for _, keyword := range keywords {
			if strings.Contains(lower, keyword) {
				count++
			}
		}
		topics[topic] = float64(count) / scale
	}
	return topics
}

// assessRisk weights keyword hits per risk category and normalizes to [0, 1].
func assessRisk(lower string) float64 {
	score := 0.0
	for _, category := range riskKeywords {
		hits := 0
		for _, keyword := range category.keywords {
			if strings.Contains(lower, keyword) {
				hits++
			}
		}
		score += float64(hits) * category.weight
	}
	score /= 10
	if score > 1 {
		return 1
	}
	return score
}

func emptyTopics() map[string]float64 {
	return map[string]float64{"business": 0, "legal": 0, "financial": 0, "technical": 0, "personal": 0}
}

func dedupLimit(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
		if len(out) == maxEntities {
			break
		}
	}
	return out
}

func containsWord(lower, word string) bool {
	for rest := lower; ; {
		i := strings.Index(rest, word)
		if i < 0 {
			return false
		}
		before := i == 0 || !isWordByte(rest[i-1])
		afterIdx := i + len(word)
		after := afterIdx >= len(rest) || !isWordByte(rest[afterIdx])
		if before && after {
			return true
		}
		rest = rest[i+1:]
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b == '\''
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

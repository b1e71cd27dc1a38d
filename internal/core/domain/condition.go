package domain

import "strings"

// Condition is the stored JSON predicate of a routing rule. Keys name
// attributes of the rule context; values are expected scalars or operator
// objects ({"gt": n, "lt": n, "gte": n, "lte": n, "contains": s}).
type Condition map[string]any

// RuleContext is the attribute set a document presents to rule evaluation.
type RuleContext struct {
	DocType    string
	Category   string
	Confidence float64
	RiskScore  float64
	Priority   int
	Entities   Entities
}

func (c RuleContext) value(key string) (any, bool) {
	switch key {
	case "doc_type":
		return c.DocType, true
	case "category":
		return c.Category, true
	case "confidence":
		return c.Confidence, true
	case "risk_score":
		return c.RiskScore, true
	case "priority":
		return c.Priority, true
	case "persons":
		return c.Entities.Persons, true
	case "organizations":
		return c.Entities.Organizations, true
	case "amounts":
		return c.Entities.Money, true
	case "dates":
		return c.Entities.Dates, true
	case "emails":
		return c.Entities.Emails, true
	case "locations":
		return c.Entities.Locations, true
	case "entities":
		return c.Entities.All(), true
	default:
		return nil, false
	}
}

// Matches evaluates the condition against the context. Keys the context does
// not expose are skipped; every present key must hold for a match. A condition
// with an unsupported value shape does not match.
func (cond Condition) Matches(ctx RuleContext) bool {
	for key, expected := range cond {
		actual, ok := ctx.value(key)
		if !ok {
			continue
		}
		if !matchValue(expected, actual) {
			return false
		}
	}
	return true
}

func matchValue(expected, actual any) bool {
	switch want := expected.(type) {
	case string:
		return matchString(want, actual)
	case float64:
		got, ok := asFloat(actual)
		return ok && got == want
	case int:
		got, ok := asFloat(actual)
		return ok && got == float64(want)
	case map[string]any:
		return matchOperators(want, actual)
	default:
		return false
	}
}

// matchString does a case-insensitive substring match against a string value
// or any element of a list value.
func matchString(want string, actual any) bool {
	needle := strings.ToLower(want)
	switch got := actual.(type) {
	case string:
		return strings.Contains(strings.ToLower(got), needle)
	case []string:
		for _, item := range got {
			if strings.Contains(strings.ToLower(item), needle) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func matchOperators(ops map[string]any, actual any) bool {
	for op, operand := range ops {
		switch op {
		case "gt", "lt", "gte", "lte":
			bound, ok := asFloat(operand)
			if !ok {
				return false
			}
			got, ok := asFloat(actual)
			if !ok {
				return false
			}
			if !compare(op, got, bound) {
				return false
			}
		case "contains":
			needle, ok := operand.(string)
			if !ok {
				return false
			}
			if !matchString(needle, actual) {
				return false
			}
		}
	}
	return true
}

func compare(op string, got, bound float64) bool {
	switch op {
	case "gt":
		return got > bound
	case "lt":
		return got < bound
	case "gte":
		return got >= bound
	case "lte":
		return got <= bound
	}
	return false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/akarpov/docrouter/internal/core/domain"
	"github.com/akarpov/docrouter/internal/core/ports"
)

type ruleRequest struct {
	Name      string           `json:"name"`
	Condition domain.Condition `json:"condition"`
	Assignee  string           `json:"assignee"`
	Team      string           `json:"team"`
	Priority  int              `json:"priority"`
	IsActive  *bool            `json:"is_active"`
}

func (req ruleRequest) toDomain() *domain.RoutingRule {
	rule := &domain.RoutingRule{
		Name:      req.Name,
		Condition: req.Condition,
		Assignee:  req.Assignee,
		Team:      req.Team,
		Priority:  req.Priority,
		IsActive:  true,
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	return rule
}

func (rt *Router) createRule(w http.ResponseWriter, r *http.Request) {
	var req ruleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	rule, err := rt.rules.Create(r.Context(), req.toDomain(), actorFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rule)
}

func (rt *Router) listRules(w http.ResponseWriter, r *http.Request) {
	filter := ports.RuleFilter{
		Limit:  queryInt(r, "limit", 0),
		Offset: queryInt(r, "offset", 0),
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("is_active")); raw != "" {
		active := raw == "true"
		filter.IsActive = &active
	}
	rules, err := rt.rules.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rules": rules, "count": len(rules)})
}

func (rt *Router) getRule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "rule id must be a positive integer"})
		return
	}
	rule, err := rt.rules.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

func (rt *Router) updateRule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "rule id must be a positive integer"})
		return
	}
	var req ruleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	rule := req.toDomain()
	rule.ID = id
	updated, err := rt.rules.Update(r.Context(), rule, actorFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (rt *Router) deleteRule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "rule id must be a positive integer"})
		return
	}
	if err := rt.rules.Delete(r.Context(), id, actorFromRequest(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// testRule dry-runs a condition against a caller supplied context.
func (rt *Router) testRule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Condition domain.Condition `json:"condition"`
		Context   struct {
			DocType    string          `json:"doc_type"`
			Category   string          `json:"category"`
			Confidence float64         `json:"confidence"`
			RiskScore  float64         `json:"risk_score"`
			Priority   int             `json:"priority"`
			Entities   domain.Entities `json:"entities"`
		} `json:"context"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if len(req.Condition) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "condition is required"})
		return
	}

	matched := rt.rules.Test(req.Condition, domain.RuleContext{
		DocType:    req.Context.DocType,
		Category:   req.Context.Category,
		Confidence: req.Context.Confidence,
		RiskScore:  req.Context.RiskScore,
		Priority:   req.Context.Priority,
		Entities:   req.Context.Entities,
	})
	writeJSON(w, http.StatusOK, map[string]bool{"matched": matched})
}

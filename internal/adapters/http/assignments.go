package httpadapter

import (
	"encoding/json"
	"net/http"

	"github.com/akarpov/docrouter/internal/core/domain"
	"github.com/akarpov/docrouter/internal/core/ports"
)

func (rt *Router) listAssignments(w http.ResponseWriter, r *http.Request) {
	filter := ports.AssignmentFilter{
		Status: r.URL.Query().Get("status"),
		Limit:  queryInt(r, "limit", 0),
		Offset: queryInt(r, "offset", 0),
	}
	assignments, err := rt.assignments.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"assignments": assignments, "count": len(assignments)})
}

func (rt *Router) getAssignment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "assignment id must be a positive integer"})
		return
	}
	assignment, err := rt.assignments.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assignment)
}

func (rt *Router) transitionAssignment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "assignment id must be a positive integer"})
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}

	assignment, err := rt.assignments.Transition(r.Context(), id, domain.AssignmentStatus(req.Status), actorFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assignment)
}

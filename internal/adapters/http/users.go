package httpadapter

import (
	"encoding/json"
	"net/http"

	"github.com/akarpov/docrouter/internal/core/domain"
	"github.com/akarpov/docrouter/internal/core/ports"
)

type userRequest struct {
	Username         string   `json:"username"`
	Email            string   `json:"email"`
	FullName         string   `json:"full_name"`
	Role             string   `json:"role"`
	Department       string   `json:"department"`
	Skills           []string `json:"skills"`
	WorkloadCapacity int      `json:"workload_capacity"`
	Timezone         string   `json:"timezone"`
	IsActive         *bool    `json:"is_active"`
}

func (req userRequest) toDomain() *domain.User {
	user := &domain.User{
		Username:         req.Username,
		Email:            req.Email,
		FullName:         req.FullName,
		Role:             req.Role,
		Department:       req.Department,
		Skills:           req.Skills,
		WorkloadCapacity: req.WorkloadCapacity,
		Timezone:         req.Timezone,
		IsActive:         true,
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	return user
}

func (rt *Router) createUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	user, err := rt.users.Create(r.Context(), req.toDomain(), actorFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (rt *Router) listUsers(w http.ResponseWriter, r *http.Request) {
	filter := ports.UserFilter{
		Role:       r.URL.Query().Get("role"),
		Department: r.URL.Query().Get("department"),
		Limit:      queryInt(r, "limit", 0),
		Offset:     queryInt(r, "offset", 0),
	}
	users, err := rt.users.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users, "count": len(users)})
}

func (rt *Router) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := rt.users.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (rt *Router) userWorkload(w http.ResponseWriter, r *http.Request) {
	summary, err := rt.users.Workload(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (rt *Router) updateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	user := req.toDomain()
	user.ID = r.PathValue("id")
	updated, err := rt.users.Update(r.Context(), user, actorFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

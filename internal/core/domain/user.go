package domain

import "time"

type User struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	FullName         string    `json:"full_name,omitempty"`
	Role             string    `json:"role"`
	Department       string    `json:"department,omitempty"`
	Skills           []string  `json:"skills,omitempty"`
	WorkloadCapacity int       `json:"workload_capacity"`
	Timezone         string    `json:"timezone,omitempty"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	DefaultWorkloadCapacity = 10
)

// WorkloadSummary reports how loaded a user currently is.
type WorkloadSummary struct {
	UserID            string  `json:"user_id"`
	Username          string  `json:"username"`
	ActiveAssignments int     `json:"active_assignments"`
	Capacity          int     `json:"capacity"`
	Utilization       float64 `json:"utilization"`
}

// HasSkill reports whether the user lists the given skill (case-sensitive,
// matching the doc_type vocabulary).
func (u *User) HasSkill(skill string) bool {
	for _, s := range u.Skills {
		if s == skill {
			return true
		}
	}
	return false
}

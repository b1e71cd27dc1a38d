package domain

import (
	"math"
	"time"
)

// RoutingRule maps a stored predicate to an assignee or team. Rules are
// evaluated in priority order (highest first, then lowest id) and the first
// match wins.
type RoutingRule struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Condition Condition `json:"condition"`
	Assignee  string    `json:"assignee,omitempty"`
	Team      string    `json:"team,omitempty"`
	Priority  int       `json:"priority"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type AssignmentStatus string

const (
	AssignmentAssigned   AssignmentStatus = "assigned"
	AssignmentInProgress AssignmentStatus = "in_progress"
	AssignmentCompleted  AssignmentStatus = "completed"
	AssignmentOverdue    AssignmentStatus = "overdue"
)

// CanTransitionTo enforces the assigned -> in_progress -> completed lifecycle.
// Overdue is a terminal marker reachable from any non-completed state.
func (s AssignmentStatus) CanTransitionTo(next AssignmentStatus) bool {
	switch s {
	case AssignmentAssigned:
		return next == AssignmentInProgress || next == AssignmentCompleted || next == AssignmentOverdue
	case AssignmentInProgress:
		return next == AssignmentCompleted || next == AssignmentOverdue
	default:
		return false
	}
}

type Assignment struct {
	ID          int64            `json:"id"`
	DocID       string           `json:"doc_id"`
	UserID      string           `json:"user_id"`
	AssignedBy  string           `json:"assigned_by,omitempty"`
	Status      AssignmentStatus `json:"status"`
	Priority    int              `json:"priority"`
	DueDate     *time.Time       `json:"due_date,omitempty"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// defaultTeams routes documents with no matching rule by type.
var defaultTeams = map[string]string{
	"contract":       "legal-team",
	"invoice":        "finance-team",
	"legal":          "legal-team",
	"financial":      "finance-team",
	"hr":             "hr-team",
	"technical":      "engineering-team",
	"report":         "management-team",
	"correspondence": "admin-team",
}

// DefaultTeam returns the fallback team for a document type.
func DefaultTeam(docType string) string {
	if team, ok := defaultTeams[docType]; ok {
		return team
	}
	return "admin-team"
}

// priorityHours is the base turnaround per priority level (5 = urgent).
var priorityHours = map[int]float64{
	5: 2,
	4: 8,
	3: 24,
	2: 72,
	1: 168,
}

// typeDueModifiers tighten or relax turnaround per document type.
var typeDueModifiers = map[string]float64{
	"legal":          0.5,
	"contract":       0.5,
	"invoice":        0.7,
	"financial":      0.8,
	"hr":             1.0,
	"technical":      1.2,
	"report":         1.5,
	"correspondence": 1.0,
}

// DueDate computes the assignment deadline from priority and document type.
func DueDate(priority int, docType string, now time.Time) time.Time {
	base, ok := priorityHours[priority]
	if !ok {
		base = 72
	}
	modifier, ok := typeDueModifiers[docType]
	if !ok {
		modifier = 1.0
	}
	// Whole minutes, so 24h * 1.2 lands on exactly 28h48m.
	minutes := math.Round(base * modifier * 60)
	return now.Add(time.Duration(minutes) * time.Minute)
}

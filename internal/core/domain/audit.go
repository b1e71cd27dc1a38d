package domain

import "time"

// AuditLog is an append-only record of an action on an entity. Entries are
// never updated or deleted.
type AuditLog struct {
	ID         int64          `json:"id"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Action     string         `json:"action"`
	UserID     string         `json:"user_id,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Entity types recorded in the audit log.
const (
	EntityDocument   = "document"
	EntityUser       = "user"
	EntityRule       = "routing_rule"
	EntityAssignment = "assignment"
	EntitySource     = "scraping_source"
)

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/akarpov/docrouter/internal/core/domain"
	"github.com/akarpov/docrouter/internal/core/ports"
)

// AuditRepository only appends and reads. There is no update or delete
// path: the audit trail is immutable.
type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Append(ctx context.Context, entry *domain.AuditLog) error {
	detailsJSON, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("marshal details: %w", err)
	}
	row := r.db.QueryRowContext(ctx, `
INSERT INTO audit_logs (entity_type, entity_id, action, user_id, details, created_at)
VALUES ($1,$2,$3,NULLIF($4,'')::uuid,$5,$6)
RETURNING id
`, entry.EntityType, entry.EntityID, entry.Action, entry.UserID, detailsJSON, entry.CreatedAt)
	if err := row.Scan(&entry.ID); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (r *AuditRepository) List(ctx context.Context, filter ports.AuditFilter) ([]*domain.AuditLog, error) {
	query := `
SELECT id, entity_type, entity_id, action, COALESCE(user_id::text, ''), details, created_at
FROM audit_logs
WHERE 1=1
`
	args := make([]any, 0, 4)
	if filter.EntityType != "" {
		args = append(args, filter.EntityType)
		query += fmt.Sprintf("AND entity_type = $%d\n", len(args))
	}
	if filter.EntityID != "" {
		args = append(args, filter.EntityID)
		query += fmt.Sprintf("AND entity_id = $%d\n", len(args))
	}
	if filter.Action != "" {
		args = append(args, filter.Action)
		query += fmt.Sprintf("AND action = $%d\n", len(args))
	}
	query += "ORDER BY created_at DESC\n"

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf("LIMIT $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.AuditLog, 0)
	for rows.Next() {
		var entry domain.AuditLog
		var detailsRaw []byte
		if err := rows.Scan(&entry.ID, &entry.EntityType, &entry.EntityID, &entry.Action, &entry.UserID, &detailsRaw, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		if len(detailsRaw) > 0 {
			if err := json.Unmarshal(detailsRaw, &entry.Details); err != nil {
				return nil, fmt.Errorf("unmarshal details: %w", err)
			}
		}
		out = append(out, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return out, nil
}

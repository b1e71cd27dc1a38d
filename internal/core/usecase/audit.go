package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/akarpov/docrouter/internal/core/domain"
	"github.com/akarpov/docrouter/internal/core/ports"
)

// appendAudit records an audit entry. The trail is best effort: a write
// failure is logged and never fails the operation being audited.
func appendAudit(ctx context.Context, repo ports.AuditRepository, entityType, entityID, action string, details map[string]any) {
	entry := &domain.AuditLog{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Details:    details,
		CreatedAt:  time.Now().UTC(),
	}
	if err := repo.Append(ctx, entry); err != nil {
		slog.Warn("append audit entry", "entity_type", entityType, "entity_id", entityID, "action", action, "error", err)
	}
}

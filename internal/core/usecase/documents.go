package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/akarpov/docrouter/internal/core/domain"
	"github.com/akarpov/docrouter/internal/core/ports"
)

type ManageDocumentsUseCase struct {
	docs     ports.DocumentRepository
	metadata ports.MetadataRepository
	storage  ports.ObjectStorage
	audit    ports.AuditRepository
}

func NewManageDocumentsUseCase(
	docs ports.DocumentRepository,
	metadata ports.MetadataRepository,
	storage ports.ObjectStorage,
	audit ports.AuditRepository,
) *ManageDocumentsUseCase {
	return &ManageDocumentsUseCase{
		docs:     docs,
		metadata: metadata,
		storage:  storage,
		audit:    audit,
	}
}

func (uc *ManageDocumentsUseCase) Get(ctx context.Context, id string) (*domain.Document, *domain.Metadata, error) {
	doc, err := uc.docs.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	meta, err := uc.metadata.GetByDocID(ctx, id)
	if err != nil {
		if !domain.IsKind(err, domain.ErrNotFound) {
			return nil, nil, fmt.Errorf("load metadata: %w", err)
		}
		meta = nil
	}
	return doc, meta, nil
}

func (uc *ManageDocumentsUseCase) List(ctx context.Context, filter ports.DocumentFilter) ([]domain.Document, error) {
	return uc.docs.List(ctx, filter)
}

// Open returns the stored document body for download.
func (uc *ManageDocumentsUseCase) Open(ctx context.Context, id string) (*domain.Document, io.ReadCloser, error) {
	doc, err := uc.docs.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	reader, err := uc.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open stored document: %w", err)
	}
	return doc, reader, nil
}

// Delete removes the database record and the stored blob. Metadata and
// assignments go with the record through foreign key cascade.
func (uc *ManageDocumentsUseCase) Delete(ctx context.Context, id, actor string) error {
	doc, err := uc.docs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.docs.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document record: %w", err)
	}
	if err := uc.storage.Remove(ctx, doc.StoragePath); err != nil {
		slog.Warn("remove stored document", "doc_id", id, "path", doc.StoragePath, "error", err)
	}
	appendAudit(ctx, uc.audit, domain.EntityDocument, id, "deleted", map[string]any{
		"original_name": doc.OriginalName,
		"actor":         actor,
	})
	return nil
}

// AuditTrail returns the audit entries recorded for a document.
func (uc *ManageDocumentsUseCase) AuditTrail(ctx context.Context, id string, limit int) ([]*domain.AuditLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return uc.audit.List(ctx, ports.AuditFilter{EntityType: domain.EntityDocument, EntityID: id, Limit: limit})
}

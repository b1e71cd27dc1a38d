package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/akarpov/docrouter/internal/core/domain"
	"github.com/akarpov/docrouter/internal/core/ports"
)

type IngestDocumentUseCase struct {
	repo    ports.DocumentRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
	audit   ports.AuditRepository
}

func NewIngestDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
	audit ports.AuditRepository,
) *IngestDocumentUseCase {
	return &IngestDocumentUseCase{
		repo:    repo,
		storage: storage,
		queue:   queue,
		audit:   audit,
	}
}

// Upload stores the document, deduplicates by content hash, records the
// pending document row and publishes it into the classification pipeline.
// When the same content was uploaded before, the existing document is
// returned and nothing new is published.
func (uc *IngestDocumentUseCase) Upload(
	ctx context.Context,
	filename, mimeType string,
	body io.Reader,
	actor string,
) (*domain.Document, error) {
	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))
	now := time.Now().UTC()

	hasher := sha256.New()
	size, err := uc.storage.Save(ctx, storageKey, io.TeeReader(body, hasher))
	if err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}
	contentHash := hex.EncodeToString(hasher.Sum(nil))

	existing, err := uc.repo.GetByContentHash(ctx, contentHash)
	if err == nil {
		// Duplicate content: keep the original record, drop the new blob.
		if removeErr := uc.storage.Remove(ctx, storageKey); removeErr != nil {
			slog.Warn("remove duplicate upload", "key", storageKey, "error", removeErr)
		}
		return existing, nil
	}
	if !domain.IsKind(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("dedup lookup: %w", err)
	}

	doc := &domain.Document{
		ID:           id,
		OriginalName: filename,
		StoragePath:  storageKey,
		MimeType:     mimeType,
		FileSize:     size,
		ContentHash:  contentHash,
		Status:       domain.StatusUploaded,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uc.repo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document record: %w", err)
	}

	appendAudit(ctx, uc.audit, domain.EntityDocument, doc.ID, "uploaded", map[string]any{
		"original_name": filename,
		"mime_type":     mimeType,
		"file_size":     size,
		"actor":         actor,
	})

	if err := uc.queue.PublishDocumentIngested(ctx, doc.ID); err != nil {
		return nil, fmt.Errorf("publish ingestion event: %w", err)
	}

	return doc, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	switch base {
	case "", ".", "..", "/":
		return "document.bin"
	}
	return base
}

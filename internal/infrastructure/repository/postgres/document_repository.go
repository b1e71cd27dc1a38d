package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/akarpov/docrouter/internal/core/domain"
	"github.com/akarpov/docrouter/internal/core/ports"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `id, original_name, storage_path, doc_type, confidence, file_size, mime_type, content_hash, status, created_at, updated_at`

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO documents (id, original_name, storage_path, doc_type, confidence, file_size, mime_type, content_hash, status, created_at, updated_at)
VALUES ($1,$2,$3,NULLIF($4,''),$5,$6,$7,$8,$9,$10,$11)
`,
		doc.ID, doc.OriginalName, doc.StoragePath, doc.DocType, doc.Confidence,
		doc.FileSize, doc.MimeType, doc.ContentHash, string(doc.Status), doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return mapConstraintError("insert document", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE id = $1
`, id)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get document", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("get document by id: %w", err)
	}
	return doc, nil
}

func (r *DocumentRepository) GetByContentHash(ctx context.Context, hash string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE content_hash = $1
ORDER BY created_at ASC
LIMIT 1
`, hash)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get document by hash", fmt.Errorf("hash=%s", hash))
		}
		return nil, fmt.Errorf("get document by hash: %w", err)
	}
	return doc, nil
}

func (r *DocumentRepository) List(ctx context.Context, filter ports.DocumentFilter) ([]domain.Document, error) {
	query := `
SELECT ` + documentColumns + `
FROM documents
WHERE 1=1
`
	args := make([]any, 0, 4)
	if filter.DocType != "" {
		args = append(args, filter.DocType)
		query += fmt.Sprintf("AND doc_type = $%d\n", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf("AND status = $%d\n", len(args))
	}
	query += "ORDER BY created_at DESC\n"

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit)
	query += fmt.Sprintf("LIMIT $%d", len(args))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}

func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, updated_at = $3
WHERE id = $1
`, id, string(status), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	return requireAffected(result, "document", id)
}

func (r *DocumentRepository) SaveClassification(ctx context.Context, id string, cls domain.Classification) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE documents
SET doc_type = $2, confidence = $3, status = $4, updated_at = $5
WHERE id = $1
`, id, cls.DocType, cls.Confidence, string(domain.StatusClassified), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save classification: %w", err)
	}
	return requireAffected(result, "document", id)
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return requireAffected(result, "document", id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var docType, mimeType, contentHash sql.NullString
	var confidence sql.NullFloat64
	var fileSize sql.NullInt64
	var status string

	err := row.Scan(
		&doc.ID, &doc.OriginalName, &doc.StoragePath, &docType, &confidence,
		&fileSize, &mimeType, &contentHash, &status, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	doc.DocType = docType.String
	doc.Confidence = confidence.Float64
	doc.FileSize = fileSize.Int64
	doc.MimeType = mimeType.String
	doc.ContentHash = contentHash.String
	doc.Status = domain.DocumentStatus(status)
	return &doc, nil
}

func requireAffected(result sql.Result, entity, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrNotFound, "update "+entity, fmt.Errorf("id=%s", id))
	}
	return nil
}

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/akarpov/docrouter/internal/core/domain"
)

type MetadataRepository struct {
	db *sql.DB
}

func NewMetadataRepository(db *sql.DB) *MetadataRepository {
	return &MetadataRepository{db: db}
}

// Upsert keeps one metadata row per document: reprocessing replaces the
// previous analysis.
func (r *MetadataRepository) Upsert(ctx context.Context, meta *domain.Metadata) error {
	entitiesJSON, err := json.Marshal(meta.KeyEntities)
	if err != nil {
		return fmt.Errorf("marshal entities: %w", err)
	}
	topicsJSON, err := json.Marshal(meta.Topics)
	if err != nil {
		return fmt.Errorf("marshal topics: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin metadata tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM metadata WHERE doc_id = $1`, meta.DocID); err != nil {
		return fmt.Errorf("clear previous metadata: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO metadata (doc_id, key_entities, related_docs, risk_score, summary, language, sentiment_score, topics, created_at)
VALUES ($1,$2,$3::uuid[],$4,$5,$6,$7,$8,$9)
`, meta.DocID, entitiesJSON, meta.RelatedDocs, meta.RiskScore, meta.Summary, meta.Language, meta.SentimentScore, topicsJSON, time.Now().UTC()); err != nil {
		return fmt.Errorf("insert metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit metadata tx: %w", err)
	}
	return nil
}

func (r *MetadataRepository) GetByDocID(ctx context.Context, docID string) (*domain.Metadata, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, doc_id, key_entities, array_to_json(related_docs), risk_score, summary, language, sentiment_score, topics, created_at
FROM metadata
WHERE doc_id = $1
ORDER BY created_at DESC
LIMIT 1
`, docID)

	var meta domain.Metadata
	var entitiesRaw, topicsRaw, relatedRaw []byte
	var riskScore, sentiment sql.NullFloat64
	var summary, language sql.NullString

	err := row.Scan(
		&meta.ID, &meta.DocID, &entitiesRaw, &relatedRaw, &riskScore,
		&summary, &language, &sentiment, &topicsRaw, &meta.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get metadata", fmt.Errorf("doc_id=%s", docID))
		}
		return nil, fmt.Errorf("get metadata: %w", err)
	}

	if len(entitiesRaw) > 0 {
		if err := json.Unmarshal(entitiesRaw, &meta.KeyEntities); err != nil {
			return nil, fmt.Errorf("unmarshal entities: %w", err)
		}
	}
	if len(topicsRaw) > 0 {
		if err := json.Unmarshal(topicsRaw, &meta.Topics); err != nil {
			return nil, fmt.Errorf("unmarshal topics: %w", err)
		}
	}
	if len(relatedRaw) > 0 {
		if err := json.Unmarshal(relatedRaw, &meta.RelatedDocs); err != nil {
			return nil, fmt.Errorf("unmarshal related docs: %w", err)
		}
	}
	meta.RiskScore = riskScore.Float64
	meta.SentimentScore = sentiment.Float64
	meta.Summary = summary.String
	meta.Language = language.String
	return &meta, nil
}

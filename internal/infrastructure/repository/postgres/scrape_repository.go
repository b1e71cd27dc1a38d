package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/akarpov/docrouter/internal/core/domain"
	"github.com/akarpov/docrouter/internal/core/ports"
)

type ScrapeRepository struct {
	db *sql.DB
}

func NewScrapeRepository(db *sql.DB) *ScrapeRepository {
	return &ScrapeRepository{db: db}
}

const sourceColumns = `id, name, url, source_type, scraping_rules, last_scraped, is_active, created_at`

func (r *ScrapeRepository) CreateSource(ctx context.Context, source *domain.ScrapingSource) error {
	rulesJSON, err := json.Marshal(source.ScrapingRules)
	if err != nil {
		return fmt.Errorf("marshal scraping rules: %w", err)
	}
	row := r.db.QueryRowContext(ctx, `
INSERT INTO scraping_sources (name, url, source_type, scraping_rules, is_active, created_at)
VALUES ($1,$2,NULLIF($3,''),$4,$5,$6)
RETURNING id
`, source.Name, source.URL, source.SourceType, rulesJSON, source.IsActive, source.CreatedAt)
	if err := row.Scan(&source.ID); err != nil {
		return mapConstraintError("insert scraping source", err)
	}
	return nil
}

func (r *ScrapeRepository) GetSourceByID(ctx context.Context, id int64) (*domain.ScrapingSource, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sourceColumns+` FROM scraping_sources WHERE id = $1`, id)
	source, err := scanSource(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get scraping source", fmt.Errorf("id=%d", id))
		}
		return nil, fmt.Errorf("get scraping source: %w", err)
	}
	return source, nil
}

func (r *ScrapeRepository) ListSources(ctx context.Context, filter ports.SourceFilter) ([]domain.ScrapingSource, error) {
	query := `SELECT ` + sourceColumns + ` FROM scraping_sources WHERE 1=1` + "\n"
	args := make([]any, 0, 3)
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		query += fmt.Sprintf("AND is_active = $%d\n", len(args))
	}
	query += "ORDER BY id ASC\n"

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf("LIMIT $%d", len(args))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	return r.querySources(ctx, query, args...)
}

func (r *ScrapeRepository) ListDueSources(ctx context.Context, notScrapedSince time.Time) ([]domain.ScrapingSource, error) {
	return r.querySources(ctx, `
SELECT `+sourceColumns+`
FROM scraping_sources
WHERE is_active AND (last_scraped IS NULL OR last_scraped < $1)
ORDER BY last_scraped ASC NULLS FIRST
`, notScrapedSince)
}

func (r *ScrapeRepository) MarkSourceScraped(ctx context.Context, id int64, at time.Time) error {
	result, err := r.db.ExecContext(ctx, `UPDATE scraping_sources SET last_scraped = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("mark source scraped: %w", err)
	}
	return requireAffected(result, "scraping source", fmt.Sprintf("%d", id))
}

func (r *ScrapeRepository) CreateContent(ctx context.Context, content *domain.ScrapedContent) error {
	metaJSON, err := json.Marshal(content.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	row := r.db.QueryRowContext(ctx, `
INSERT INTO scraped_content (source_id, url, title, content, content_hash, metadata, scraped_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING id
`, content.SourceID, content.URL, content.Title, content.Content, content.ContentHash, metaJSON, content.ScrapedAt)
	if err := row.Scan(&content.ID); err != nil {
		return mapConstraintError("insert scraped content", err)
	}
	return nil
}

func (r *ScrapeRepository) HasContentHash(ctx context.Context, sourceID int64, hash string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
SELECT EXISTS (SELECT 1 FROM scraped_content WHERE source_id = $1 AND content_hash = $2)
`, sourceID, hash).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check content hash: %w", err)
	}
	return exists, nil
}

func (r *ScrapeRepository) ListContent(ctx context.Context, sourceID int64, limit, offset int) ([]domain.ScrapedContent, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := `
SELECT id, source_id, url, title, content, content_hash, metadata, scraped_at
FROM scraped_content
WHERE source_id = $1
ORDER BY scraped_at DESC
LIMIT $2
`
	args := []any{sourceID, limit}
	if offset > 0 {
		args = append(args, offset)
		query += "OFFSET $3"
	}
	return r.queryContent(ctx, query, args...)
}

func (r *ScrapeRepository) SearchContent(ctx context.Context, query string, limit int) ([]domain.ScrapedContent, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return r.queryContent(ctx, `
SELECT id, source_id, url, title, content, content_hash, metadata, scraped_at
FROM scraped_content
WHERE title ILIKE '%' || $1 || '%' OR content ILIKE '%' || $1 || '%'
ORDER BY scraped_at DESC
LIMIT $2
`, query, limit)
}

func (r *ScrapeRepository) querySources(ctx context.Context, query string, args ...any) ([]domain.ScrapingSource, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query scraping sources: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ScrapingSource, 0)
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scraping source: %w", err)
		}
		out = append(out, *source)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scraping sources: %w", err)
	}
	return out, nil
}

func (r *ScrapeRepository) queryContent(ctx context.Context, query string, args ...any) ([]domain.ScrapedContent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query scraped content: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ScrapedContent, 0)
	for rows.Next() {
		var content domain.ScrapedContent
		var title, body, hash sql.NullString
		var metaRaw []byte
		if err := rows.Scan(&content.ID, &content.SourceID, &content.URL, &title, &body, &hash, &metaRaw, &content.ScrapedAt); err != nil {
			return nil, fmt.Errorf("scan scraped content: %w", err)
		}
		if len(metaRaw) > 0 {
			if err := json.Unmarshal(metaRaw, &content.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal metadata: %w", err)
			}
		}
		content.Title = title.String
		content.Content = body.String
		content.ContentHash = hash.String
		out = append(out, content)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scraped content: %w", err)
	}
	return out, nil
}

func scanSource(row rowScanner) (*domain.ScrapingSource, error) {
	var source domain.ScrapingSource
	var sourceType sql.NullString
	var rulesRaw []byte
	var lastScraped sql.NullTime

	err := row.Scan(&source.ID, &source.Name, &source.URL, &sourceType, &rulesRaw, &lastScraped, &source.IsActive, &source.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(rulesRaw) > 0 {
		if err := json.Unmarshal(rulesRaw, &source.ScrapingRules); err != nil {
			return nil, fmt.Errorf("unmarshal scraping rules: %w", err)
		}
	}
	source.SourceType = sourceType.String
	if lastScraped.Valid {
		source.LastScraped = &lastScraped.Time
	}
	return &source, nil
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/akarpov/docrouter/internal/core/domain"
)

type AnalyticsRepository struct {
	db *sql.DB
}

func NewAnalyticsRepository(db *sql.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

func (r *AnalyticsRepository) TotalDocuments(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return total, nil
}

func (r *AnalyticsRepository) DocumentsByType(ctx context.Context) (map[string]int, error) {
	return r.countGrouped(ctx, `
SELECT COALESCE(doc_type, 'unclassified'), COUNT(*)
FROM documents
GROUP BY doc_type
`)
}

func (r *AnalyticsRepository) DocumentsByStatus(ctx context.Context) (map[string]int, error) {
	return r.countGrouped(ctx, `
SELECT status, COUNT(*)
FROM documents
GROUP BY status
`)
}

func (r *AnalyticsRepository) DailyUploads(ctx context.Context, since time.Time) ([]domain.DatedCount, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT to_char(created_at::date, 'YYYY-MM-DD'), COUNT(*)
FROM documents
WHERE created_at >= $1
GROUP BY created_at::date
ORDER BY created_at::date ASC
`, since)
	if err != nil {
		return nil, fmt.Errorf("daily uploads: %w", err)
	}
	defer rows.Close()

	out := make([]domain.DatedCount, 0)
	for rows.Next() {
		var dc domain.DatedCount
		if err := rows.Scan(&dc.Date, &dc.Count); err != nil {
			return nil, fmt.Errorf("scan daily uploads: %w", err)
		}
		out = append(out, dc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily uploads: %w", err)
	}
	return out, nil
}

func (r *AnalyticsRepository) ClassificationConfidence(ctx context.Context) (domain.ConfidenceBuckets, error) {
	var buckets domain.ConfidenceBuckets
	err := r.db.QueryRowContext(ctx, `
SELECT
	COUNT(*) FILTER (WHERE confidence >= 0.8),
	COUNT(*) FILTER (WHERE confidence >= 0.5 AND confidence < 0.8),
	COUNT(*) FILTER (WHERE confidence < 0.5)
FROM documents
WHERE doc_type IS NOT NULL
`).Scan(&buckets.High, &buckets.Medium, &buckets.Low)
	if err != nil {
		return domain.ConfidenceBuckets{}, fmt.Errorf("classification confidence: %w", err)
	}
	return buckets, nil
}

func (r *AnalyticsRepository) UserWorkloads(ctx context.Context) ([]domain.UserWorkload, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT u.username, COALESCE(u.full_name, ''), COUNT(a.id) FILTER (WHERE a.status IN ('assigned', 'in_progress'))
FROM users u
LEFT JOIN document_assignments a ON a.user_id = u.id
WHERE u.is_active
GROUP BY u.username, u.full_name
ORDER BY u.username ASC
`)
	if err != nil {
		return nil, fmt.Errorf("user workloads: %w", err)
	}
	defer rows.Close()

	out := make([]domain.UserWorkload, 0)
	for rows.Next() {
		var load domain.UserWorkload
		if err := rows.Scan(&load.Username, &load.FullName, &load.ActiveAssignments); err != nil {
			return nil, fmt.Errorf("scan user workload: %w", err)
		}
		out = append(out, load)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user workloads: %w", err)
	}
	return out, nil
}

func (r *AnalyticsRepository) AssignmentStats(ctx context.Context) (domain.AssignmentStats, error) {
	stats := domain.AssignmentStats{ByStatus: map[string]int{}}

	rows, err := r.db.QueryContext(ctx, `
SELECT status, COUNT(*)
FROM document_assignments
GROUP BY status
`)
	if err != nil {
		return domain.AssignmentStats{}, fmt.Errorf("assignment status counts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return domain.AssignmentStats{}, fmt.Errorf("scan assignment counts: %w", err)
		}
		stats.ByStatus[status] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return domain.AssignmentStats{}, fmt.Errorf("iterate assignment counts: %w", err)
	}

	var avgHours sql.NullFloat64
	err = r.db.QueryRowContext(ctx, `
SELECT AVG(EXTRACT(EPOCH FROM (completed_at - created_at)) / 3600.0)
FROM document_assignments
WHERE completed_at IS NOT NULL
`).Scan(&avgHours)
	if err != nil {
		return domain.AssignmentStats{}, fmt.Errorf("average completion time: %w", err)
	}
	stats.AvgCompletionHours = avgHours.Float64
	return stats, nil
}

func (r *AnalyticsRepository) SearchDocuments(ctx context.Context, query string, limit int) ([]domain.DocumentHit, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT d.id, d.original_name, COALESCE(d.doc_type, ''), COALESCE(d.confidence, 0), COALESCE(m.summary, ''), to_char(d.created_at, 'YYYY-MM-DD"T"HH24:MI:SS"Z"')
FROM documents d
LEFT JOIN metadata m ON m.doc_id = d.id
WHERE d.original_name ILIKE '%' || $1 || '%'
   OR d.doc_type ILIKE '%' || $1 || '%'
   OR m.summary ILIKE '%' || $1 || '%'
ORDER BY d.created_at DESC
LIMIT $2
`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	defer rows.Close()

	out := make([]domain.DocumentHit, 0)
	for rows.Next() {
		var hit domain.DocumentHit
		if err := rows.Scan(&hit.ID, &hit.OriginalName, &hit.DocType, &hit.Confidence, &hit.Summary, &hit.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan search hit: %w", err)
		}
		out = append(out, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search hits: %w", err)
	}
	return out, nil
}

func (r *AnalyticsRepository) countGrouped(ctx context.Context, query string) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("grouped count: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("scan grouped count: %w", err)
		}
		out[key] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate grouped count: %w", err)
	}
	return out, nil
}

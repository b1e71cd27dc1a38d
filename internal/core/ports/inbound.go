package ports

import (
	"context"
	"io"
	"time"

	"github.com/akarpov/docrouter/internal/core/domain"
)

// DocumentIngestor accepts raw uploads into the pipeline.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader, actor string) (*domain.Document, error)
}

// DocumentProcessor runs the classification pipeline for one document.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// DocumentRouter turns a classification result into an assignment.
type DocumentRouter interface {
	Route(ctx context.Context, result domain.ClassificationResult) (*domain.Assignment, error)
}

// ScrapeRunner executes scrape jobs and enqueues due sources.
type ScrapeRunner interface {
	Run(ctx context.Context, job domain.ScrapeJob) error
	EnqueueDue(ctx context.Context, minInterval time.Duration) (int, error)
}

// AnalyticsService aggregates reporting views over the stored state.
type AnalyticsService interface {
	Dashboard(ctx context.Context) (*domain.DashboardReport, error)
	Trends(ctx context.Context, days int) (*domain.TrendsReport, error)
	ClassificationAccuracy(ctx context.Context) (*domain.AccuracyReport, error)
	RoutingStats(ctx context.Context) (*domain.RoutingReport, error)
	Search(ctx context.Context, query string, limit int) (*domain.SearchReport, error)
}

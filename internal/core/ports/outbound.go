package ports

import (
	"context"
	"io"
	"time"

	"github.com/akarpov/docrouter/internal/core/domain"
)

// DocumentFilter narrows document listings.
type DocumentFilter struct {
	DocType string
	Status  string
	Limit   int
	Offset  int
}

// DocumentRepository persists and reads document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	GetByContentHash(ctx context.Context, hash string) (*domain.Document, error)
	List(ctx context.Context, filter DocumentFilter) ([]domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus) error
	SaveClassification(ctx context.Context, id string, cls domain.Classification) error
	Delete(ctx context.Context, id string) error
}

// MetadataRepository stores derived content analysis per document.
type MetadataRepository interface {
	Upsert(ctx context.Context, meta *domain.Metadata) error
	GetByDocID(ctx context.Context, docID string) (*domain.Metadata, error)
}

// UserFilter narrows user listings.
type UserFilter struct {
	Role       string
	Department string
	Limit      int
	Offset     int
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
	ListActive(ctx context.Context) ([]domain.User, error)
	ListActiveByDepartment(ctx context.Context, department string) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type RuleFilter struct {
	IsActive *bool
	Limit    int
	Offset   int
}

// RuleRepository stores routing rules. ListActive returns rules ordered by
// priority descending, then id ascending: the evaluation order.
type RuleRepository interface {
	Create(ctx context.Context, rule *domain.RoutingRule) error
	GetByID(ctx context.Context, id int64) (*domain.RoutingRule, error)
	List(ctx context.Context, filter RuleFilter) ([]domain.RoutingRule, error)
	ListActive(ctx context.Context) ([]domain.RoutingRule, error)
	Update(ctx context.Context, rule *domain.RoutingRule) error
	Delete(ctx context.Context, id int64) error
}

type AssignmentFilter struct {
	Status string
	Limit  int
	Offset int
}

type AssignmentRepository interface {
	Create(ctx context.Context, assignment *domain.Assignment) error
	GetByID(ctx context.Context, id int64) (*domain.Assignment, error)
	List(ctx context.Context, filter AssignmentFilter) ([]domain.Assignment, error)
	ListByDocument(ctx context.Context, docID string) ([]domain.Assignment, error)
	ListActiveByUser(ctx context.Context, userID string) ([]domain.Assignment, error)
	CountActiveByUser(ctx context.Context, userID string) (int, error)
	UpdateStatus(ctx context.Context, id int64, status domain.AssignmentStatus, completedAt *time.Time) error
}

// AuditRepository is append-only: entries cannot be modified or removed.
type AuditRepository interface {
	Append(ctx context.Context, entry *domain.AuditLog) error
	List(ctx context.Context, filter AuditFilter) ([]*domain.AuditLog, error)
}

type AuditFilter struct {
	EntityType string
	EntityID   string
	Action     string
	Limit      int
}

type SourceFilter struct {
	IsActive *bool
	Limit    int
	Offset   int
}

type ScrapeRepository interface {
	CreateSource(ctx context.Context, source *domain.ScrapingSource) error
	GetSourceByID(ctx context.Context, id int64) (*domain.ScrapingSource, error)
	ListSources(ctx context.Context, filter SourceFilter) ([]domain.ScrapingSource, error)
	ListDueSources(ctx context.Context, notScrapedSince time.Time) ([]domain.ScrapingSource, error)
	MarkSourceScraped(ctx context.Context, id int64, at time.Time) error
	CreateContent(ctx context.Context, content *domain.ScrapedContent) error
	HasContentHash(ctx context.Context, sourceID int64, hash string) (bool, error)
	ListContent(ctx context.Context, sourceID int64, limit, offset int) ([]domain.ScrapedContent, error)
	SearchContent(ctx context.Context, query string, limit int) ([]domain.ScrapedContent, error)
}

// AnalyticsRepository runs the aggregate queries behind the dashboard.
type AnalyticsRepository interface {
	TotalDocuments(ctx context.Context) (int, error)
	DocumentsByType(ctx context.Context) (map[string]int, error)
	DocumentsByStatus(ctx context.Context) (map[string]int, error)
	DailyUploads(ctx context.Context, since time.Time) ([]domain.DatedCount, error)
	ClassificationConfidence(ctx context.Context) (domain.ConfidenceBuckets, error)
	UserWorkloads(ctx context.Context) ([]domain.UserWorkload, error)
	AssignmentStats(ctx context.Context) (domain.AssignmentStats, error)
	SearchDocuments(ctx context.Context, query string, limit int) ([]domain.DocumentHit, error)
}

// UserDirectory is the subset of user lookups the routing engine needs.
type UserDirectory interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	ListActive(ctx context.Context) ([]domain.User, error)
	ListActiveByDepartment(ctx context.Context, department string) ([]domain.User, error)
}

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}

// MessageQueue carries the pipeline events between services.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error
	PublishClassificationResult(ctx context.Context, result domain.ClassificationResult) error
	SubscribeClassificationResults(ctx context.Context, handler func(context.Context, domain.ClassificationResult) error) error
	PublishScrapeJob(ctx context.Context, job domain.ScrapeJob) error
	SubscribeScrapeJobs(ctx context.Context, handler func(context.Context, domain.ScrapeJob) error) error
	PublishAssignmentNotification(ctx context.Context, note domain.AssignmentNotification) error
}

// TextExtractor extracts plain text from a document body.
type TextExtractor interface {
	Extract(ctx context.Context, r io.Reader, mimeType string) (string, error)
}

// DocumentClassifier determines document type, confidence and priority.
// The filename participates in scoring alongside the text.
type DocumentClassifier interface {
	Classify(ctx context.Context, text, filename string) (domain.Classification, error)
}

// ContentAnalyzer derives entities, risk, topics, sentiment and a summary.
type ContentAnalyzer interface {
	Analyze(ctx context.Context, text string) (domain.ContentAnalysis, error)
}

// SummaryGenerator produces an abstractive summary; optional, analyzers fall
// back to extractive summaries when unavailable.
type SummaryGenerator interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// PageFetcher retrieves and parses remote pages for the scraper.
type PageFetcher interface {
	Fetch(ctx context.Context, url string, rules domain.ScrapeRules) (*domain.ScrapedPage, error)
	FetchSitemap(ctx context.Context, url string) ([]string, error)
}

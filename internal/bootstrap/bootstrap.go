package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/akarpov/docrouter/internal/config"
	"github.com/akarpov/docrouter/internal/core/ports"
	"github.com/akarpov/docrouter/internal/core/usecase"
	"github.com/akarpov/docrouter/internal/infrastructure/classifier/keyword"
	"github.com/akarpov/docrouter/internal/infrastructure/extractor"
	"github.com/akarpov/docrouter/internal/infrastructure/llm/ollama"
	"github.com/akarpov/docrouter/internal/infrastructure/queue/nats"
	"github.com/akarpov/docrouter/internal/infrastructure/repository/postgres"
	"github.com/akarpov/docrouter/internal/infrastructure/resilience"
	"github.com/akarpov/docrouter/internal/infrastructure/scraper"
	"github.com/akarpov/docrouter/internal/infrastructure/storage/localfs"
	"github.com/akarpov/docrouter/internal/observability/logging"
)

// App wires the shared infrastructure and use cases behind every binary.
type App struct {
	Config config.Config

	Queue ports.MessageQueue

	IngestUC  ports.DocumentIngestor
	ProcessUC ports.DocumentProcessor
	RouteUC   ports.DocumentRouter
	ScrapeUC  ports.ScrapeRunner

	DocumentsUC   *usecase.ManageDocumentsUseCase
	UsersUC       *usecase.ManageUsersUseCase
	RulesUC       *usecase.ManageRulesUseCase
	AssignmentsUC *usecase.ManageAssignmentsUseCase
	SourcesUC     *usecase.ManageSourcesUseCase
	AnalyticsUC   ports.AnalyticsService

	closeFn func()
}

func New(ctx context.Context, service string, cfg config.Config) (*App, error) {
	slog.SetDefault(logging.NewJSONLogger(service, cfg.LogLevel))

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	if err := postgres.SeedBaseline(ctx, db); err != nil {
		return nil, fmt.Errorf("seed baseline data: %w", err)
	}

	docs := postgres.NewDocumentRepository(db)
	metadata := postgres.NewMetadataRepository(db)
	users := postgres.NewUserRepository(db)
	rules := postgres.NewRuleRepository(db)
	assignments := postgres.NewAssignmentRepository(db)
	audit := postgres.NewAuditRepository(db)
	sources := postgres.NewScrapeRepository(db)
	analytics := postgres.NewAnalyticsRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	policy := resilience.DefaultPolicy()
	policy.RetryMaxAttempts = cfg.RetryAttempts
	policy.RetryBaseDelay = cfg.RetryBaseDelay
	policy.BreakerMaxFailures = uint32(cfg.BreakerMaxFailures)
	policy.BreakerOpenTimeout = cfg.BreakerOpenTimeout
	executor := resilience.NewExecutor(policy)

	queue, err := nats.NewWithOptions(cfg.NATSURL, nats.Subjects{
		Ingest:        cfg.IngestSubject,
		Classified:    cfg.ClassifiedSubject,
		Scrape:        cfg.ScrapeSubject,
		Notifications: cfg.NotificationSubject,
	}, nats.Options{Executor: executor})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	var summarizer ports.SummaryGenerator
	if cfg.OllamaSummaryEnabled {
		client := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, ollama.WithExecutor(executor))
		summarizer = ollama.NewSummarizer(client)
	}

	textExtractor := extractor.New()
	classifier := keyword.NewClassifier()
	analyzer := keyword.NewAnalyzer(summarizer)

	fetcher := scraper.NewFetcher(scraper.FetcherOptions{
		UserAgent:      cfg.ScraperUserAgent,
		RequestTimeout: cfg.ScraperTimeout,
		RatePerSecond:  cfg.ScraperRateLimit,
		Executor:       executor,
	})

	ingestUC := usecase.NewIngestDocumentUseCase(docs, storage, queue, audit)
	processUC := usecase.NewProcessDocumentUseCase(docs, metadata, storage, textExtractor, classifier, analyzer, queue, audit)
	routeUC := usecase.NewRouteDocumentUseCase(docs, rules, users, assignments, queue, audit)
	scrapeUC := usecase.NewScrapeSourceUseCase(sources, fetcher, queue, ingestUC, audit)

	return &App{
		Config: cfg,

		Queue: queue,

		IngestUC:  ingestUC,
		ProcessUC: processUC,
		RouteUC:   routeUC,
		ScrapeUC:  scrapeUC,

		DocumentsUC:   usecase.NewManageDocumentsUseCase(docs, metadata, storage, audit),
		UsersUC:       usecase.NewManageUsersUseCase(users, assignments, audit),
		RulesUC:       usecase.NewManageRulesUseCase(rules, audit),
		AssignmentsUC: usecase.NewManageAssignmentsUseCase(assignments, audit),
		SourcesUC:     usecase.NewManageSourcesUseCase(sources, queue, audit),
		AnalyticsUC:   usecase.NewAnalyticsUseCase(analytics),

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

package usecase

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/akarpov/docrouter/internal/core/domain"
	"github.com/akarpov/docrouter/internal/core/ports"
)

type ManageSourcesUseCase struct {
	sources ports.ScrapeRepository
	queue   ports.MessageQueue
	audit   ports.AuditRepository
	now     func() time.Time
}

func NewManageSourcesUseCase(sources ports.ScrapeRepository, queue ports.MessageQueue, audit ports.AuditRepository) *ManageSourcesUseCase {
	return &ManageSourcesUseCase{
		sources: sources,
		queue:   queue,
		audit:   audit,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (uc *ManageSourcesUseCase) Create(ctx context.Context, src *domain.ScrapingSource, actor string) (*domain.ScrapingSource, error) {
	if err := validateSource(src); err != nil {
		return nil, err
	}
	if src.SourceType == "" {
		src.SourceType = domain.SourceTypeWebsite
	}
	src.IsActive = true
	src.CreatedAt = uc.now()

	if err := uc.sources.CreateSource(ctx, src); err != nil {
		return nil, fmt.Errorf("create scraping source: %w", err)
	}
	appendAudit(ctx, uc.audit, domain.EntitySource, fmt.Sprintf("%d", src.ID), "created", map[string]any{
		"name":  src.Name,
		"url":   src.URL,
		"actor": actor,
	})
	return src, nil
}

func (uc *ManageSourcesUseCase) Get(ctx context.Context, id int64) (*domain.ScrapingSource, error) {
	return uc.sources.GetSourceByID(ctx, id)
}

func (uc *ManageSourcesUseCase) List(ctx context.Context, filter ports.SourceFilter) ([]domain.ScrapingSource, error) {
	return uc.sources.ListSources(ctx, filter)
}

// Trigger queues an immediate scrape of a source regardless of schedule.
func (uc *ManageSourcesUseCase) Trigger(ctx context.Context, id int64, actor string) error {
	src, err := uc.sources.GetSourceByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load scraping source: %w", err)
	}
	job := domain.ScrapeJob{SourceID: src.ID, URL: src.URL, Rules: src.ScrapingRules}
	if err := uc.queue.PublishScrapeJob(ctx, job); err != nil {
		return fmt.Errorf("publish scrape job: %w", err)
	}
	appendAudit(ctx, uc.audit, domain.EntitySource, fmt.Sprintf("%d", id), "triggered", map[string]any{
		"actor": actor,
	})
	return nil
}

func (uc *ManageSourcesUseCase) ListContent(ctx context.Context, sourceID int64, limit, offset int) ([]domain.ScrapedContent, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return uc.sources.ListContent(ctx, sourceID, limit, offset)
}

func (uc *ManageSourcesUseCase) SearchContent(ctx context.Context, query string, limit int) ([]domain.ScrapedContent, error) {
	if query == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "search content", fmt.Errorf("empty query"))
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return uc.sources.SearchContent(ctx, query, limit)
}

func validateSource(src *domain.ScrapingSource) error {
	if src.Name == "" {
		return domain.WrapError(domain.ErrInvalidInput, "validate source", fmt.Errorf("name is required"))
	}
	parsed, err := url.Parse(src.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return domain.WrapError(domain.ErrInvalidInput, "validate source", fmt.Errorf("invalid url %q", src.URL))
	}
	if src.SourceType != "" && src.SourceType != domain.SourceTypeWebsite && src.SourceType != domain.SourceTypeSitemap {
		return domain.WrapError(domain.ErrInvalidInput, "validate source", fmt.Errorf("unknown source type %q", src.SourceType))
	}
	return nil
}

package usecase

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/akarpov/docrouter/internal/core/domain"
	"github.com/akarpov/docrouter/internal/core/ports"
)

// minIngestContentLen is the scraped text length a page must exceed to
// be fed back into the document pipeline.
const minIngestContentLen = 500

type ScrapeSourceUseCase struct {
	sources  ports.ScrapeRepository
	fetcher  ports.PageFetcher
	queue    ports.MessageQueue
	ingestor ports.DocumentIngestor
	audit    ports.AuditRepository
	now      func() time.Time
}

func NewScrapeSourceUseCase(
	sources ports.ScrapeRepository,
	fetcher ports.PageFetcher,
	queue ports.MessageQueue,
	ingestor ports.DocumentIngestor,
	audit ports.AuditRepository,
) *ScrapeSourceUseCase {
	return &ScrapeSourceUseCase{
		sources:  sources,
		fetcher:  fetcher,
		queue:    queue,
		ingestor: ingestor,
		audit:    audit,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// EnqueueDue publishes a scrape job for every active source that has not
// been scraped within minInterval. It returns the number of jobs queued.
func (uc *ScrapeSourceUseCase) EnqueueDue(ctx context.Context, minInterval time.Duration) (int, error) {
	due, err := uc.sources.ListDueSources(ctx, uc.now().Add(-minInterval))
	if err != nil {
		return 0, fmt.Errorf("list due sources: %w", err)
	}

	queued := 0
	for _, src := range due {
		job := domain.ScrapeJob{SourceID: src.ID, URL: src.URL, Rules: src.ScrapingRules}
		if err := uc.queue.PublishScrapeJob(ctx, job); err != nil {
			slog.Warn("publish scrape job", "source_id", src.ID, "error", err)
			continue
		}
		queued++
	}
	return queued, nil
}

// Run scrapes a single source: fetches its pages, stores new content and
// re-ingests pages with enough text into the document pipeline.
func (uc *ScrapeSourceUseCase) Run(ctx context.Context, job domain.ScrapeJob) error {
	src, err := uc.sources.GetSourceByID(ctx, job.SourceID)
	if err != nil {
		return fmt.Errorf("load scraping source: %w", err)
	}
	if !src.IsActive {
		return nil
	}

	pages, err := uc.collectPages(ctx, src)
	if err != nil {
		appendAudit(ctx, uc.audit, domain.EntitySource, fmt.Sprintf("%d", src.ID), "scrape_failed", map[string]any{"error": err.Error()})
		return err
	}

	stored, ingested := 0, 0
	for _, page := range pages {
		added, fed, err := uc.storePage(ctx, src, page)
		if err != nil {
			slog.Warn("store scraped page", "source_id", src.ID, "url", page.URL, "error", err)
			continue
		}
		if added {
			stored++
		}
		if fed {
			ingested++
		}
	}

	if err := uc.sources.MarkSourceScraped(ctx, src.ID, uc.now()); err != nil {
		return fmt.Errorf("mark source scraped: %w", err)
	}

	appendAudit(ctx, uc.audit, domain.EntitySource, fmt.Sprintf("%d", src.ID), "scraped", map[string]any{
		"pages":    len(pages),
		"stored":   stored,
		"ingested": ingested,
	})
	return nil
}

var documentExtensions = []string{".pdf", ".doc", ".docx", ".xls", ".xlsx", ".txt", ".csv"}

// documentLinks keeps the page links that point at downloadable documents.
func documentLinks(links []domain.PageLink) []string {
	var out []string
	for _, link := range links {
		lowered := strings.ToLower(link.URL)
		for _, ext := range documentExtensions {
			if strings.HasSuffix(lowered, ext) {
				out = append(out, link.URL)
				break
			}
		}
	}
	return out
}

func (uc *ScrapeSourceUseCase) collectPages(ctx context.Context, src *domain.ScrapingSource) ([]*domain.ScrapedPage, error) {
	if src.SourceType == domain.SourceTypeSitemap {
		urls, err := uc.fetcher.FetchSitemap(ctx, src.URL)
		if err != nil {
			return nil, fmt.Errorf("fetch sitemap: %w", err)
		}
		if max := src.ScrapingRules.MaxLinks; max > 0 && len(urls) > max {
			urls = urls[:max]
		}
		pages := make([]*domain.ScrapedPage, 0, len(urls))
		for _, u := range urls {
			page, err := uc.fetcher.Fetch(ctx, u, src.ScrapingRules)
			if err != nil {
				slog.Warn("fetch sitemap page", "url", u, "error", err)
				continue
			}
			pages = append(pages, page)
		}
		return pages, nil
	}

	page, err := uc.fetcher.Fetch(ctx, src.URL, src.ScrapingRules)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	return []*domain.ScrapedPage{page}, nil
}

func (uc *ScrapeSourceUseCase) storePage(ctx context.Context, src *domain.ScrapingSource, page *domain.ScrapedPage) (stored, ingested bool, err error) {
	sum := sha256.Sum256([]byte(page.Content))
	contentHash := hex.EncodeToString(sum[:])

	seen, err := uc.sources.HasContentHash(ctx, src.ID, contentHash)
	if err != nil {
		return false, false, fmt.Errorf("dedup lookup: %w", err)
	}
	if seen {
		return false, false, nil
	}

	metadata := page.Metadata
	if docs := documentLinks(page.Links); len(docs) > 0 {
		if metadata == nil {
			metadata = map[string]any{}
		}
		metadata["document_links"] = docs
	}

	content := &domain.ScrapedContent{
		SourceID:    src.ID,
		URL:         page.URL,
		Title:       page.Title,
		Content:     page.Content,
		ContentHash: contentHash,
		Metadata:    metadata,
		ScrapedAt:   uc.now(),
	}
	if err := uc.sources.CreateContent(ctx, content); err != nil {
		return false, false, fmt.Errorf("store content: %w", err)
	}

	if len(page.Content) <= minIngestContentLen {
		return true, false, nil
	}

	name := fmt.Sprintf("scraped_%s.txt", contentHash[:12])
	if _, err := uc.ingestor.Upload(ctx, name, "text/plain", bytes.NewReader([]byte(page.Content)), "scraper"); err != nil {
		return true, false, fmt.Errorf("ingest scraped content: %w", err)
	}
	return true, true, nil
}

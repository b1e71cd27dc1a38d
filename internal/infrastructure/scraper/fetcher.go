package scraper

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/akarpov/docrouter/internal/core/domain"
	"github.com/akarpov/docrouter/internal/infrastructure/resilience"
)

const maxBodyBytes = 8 << 20

// Fetcher retrieves remote pages with a shared rate limit. One limiter
// covers all sources so a burst of jobs cannot hammer a host.
type Fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	executor  *resilience.Executor
	userAgent string
}

type FetcherOptions struct {
	UserAgent      string
	RequestTimeout time.Duration
	RatePerSecond  float64
	HTTPClient     *http.Client
	Executor       *resilience.Executor
}

func NewFetcher(opts FetcherOptions) *Fetcher {
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = "docrouter-scraper/1.0"
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	perSecond := opts.RatePerSecond
	if perSecond <= 0 {
		perSecond = 1
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &Fetcher{
		client:    client,
		limiter:   rate.NewLimiter(rate.Limit(perSecond), 1),
		executor:  opts.Executor,
		userAgent: userAgent,
	}
}

func (f *Fetcher) Fetch(ctx context.Context, pageURL string, rules domain.ScrapeRules) (*domain.ScrapedPage, error) {
	body, err := f.get(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	page, err := parsePage(body, pageURL, rules)
	if err != nil {
		return nil, fmt.Errorf("parse page %s: %w", pageURL, err)
	}
	sum := sha256.Sum256([]byte(page.Content))
	page.ContentHash = hex.EncodeToString(sum[:])
	return page, nil
}

func (f *Fetcher) FetchSitemap(ctx context.Context, sitemapURL string) ([]string, error) {
	body, err := f.get(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}

	urls, err := parseSitemap(body)
	if err != nil {
		return nil, fmt.Errorf("parse sitemap %s: %w", sitemapURL, err)
	}
	return urls, nil
}

func (f *Fetcher) get(ctx context.Context, target string) ([]byte, error) {
	var body []byte
	attempt := func(ctx context.Context) error {
		var err error
		body, err = f.getOnce(ctx, target)
		return err
	}

	var err error
	if f.executor != nil {
		err = f.executor.Execute(ctx, "scraper.fetch", attempt, classifyFetchError)
	} else {
		err = attempt(ctx)
	}
	if err != nil {
		return nil, err
	}
	return body, nil
}

// getOnce performs a single rate-limited request. Each retry waits for
// the limiter again so backoff never bypasses the per-host budget.
func (f *Fetcher) getOnce(ctx context.Context, target string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, "fetch "+target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, domain.WrapError(domain.ErrTemporary, "fetch "+target, fmt.Errorf("status %s", resp.Status))
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: status %s", target, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, "read "+target, err)
	}
	return body, nil
}

// parseSitemap handles both url sets and sitemap indexes, every <loc> counts.
func parseSitemap(data []byte) ([]string, error) {
	type loc struct {
		Value string `xml:",chardata"`
	}
	var doc struct {
		URLs []struct {
			Loc loc `xml:"loc"`
		} `xml:"url"`
		Sitemaps []struct {
			Loc loc `xml:"loc"`
		} `xml:"sitemap"`
	}
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	var urls []string
	for _, u := range doc.URLs {
		if v := trimmed(u.Loc.Value); v != "" {
			urls = append(urls, v)
		}
	}
	for _, s := range doc.Sitemaps {
		if v := trimmed(s.Loc.Value); v != "" {
			urls = append(urls, v)
		}
	}
	return urls, nil
}

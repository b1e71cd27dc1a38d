package domain

import "time"

// ScrapeRules configures how a source's pages are parsed. Selectors are
// element names; an empty set falls back to the default content strategy.
type ScrapeRules struct {
	TitleSelector     string            `json:"title_selector,omitempty"`
	ContentSelectors  []string          `json:"content_selectors,omitempty"`
	MetadataSelectors map[string]string `json:"metadata_selectors,omitempty"`
	MaxLinks          int               `json:"max_links,omitempty"`
}

type ScrapingSource struct {
	ID            int64       `json:"id"`
	Name          string      `json:"name"`
	URL           string      `json:"url"`
	SourceType    string      `json:"source_type,omitempty"`
	ScrapingRules ScrapeRules `json:"scraping_rules"`
	LastScraped   *time.Time  `json:"last_scraped,omitempty"`
	IsActive      bool        `json:"is_active"`
	CreatedAt     time.Time   `json:"created_at"`
}

const (
	SourceTypeWebsite = "website"
	SourceTypeSitemap = "sitemap"
)

type ScrapedContent struct {
	ID          int64          `json:"id"`
	SourceID    int64          `json:"source_id"`
	URL         string         `json:"url"`
	Title       string         `json:"title,omitempty"`
	Content     string         `json:"content,omitempty"`
	ContentHash string         `json:"content_hash,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	ScrapedAt   time.Time      `json:"scraped_at"`
}

// ScrapedPage is a fetched and parsed page before persistence.
type ScrapedPage struct {
	URL         string
	Title       string
	Content     string
	ContentHash string
	Metadata    map[string]any
	Links       []PageLink
}

type PageLink struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

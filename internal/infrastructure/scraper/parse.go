package scraper

import (
	"bytes"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/akarpov/docrouter/internal/core/domain"
)

const defaultMaxLinks = 20

// defaultContentSelectors mirror the usual article containers, tried in
// order, first hit wins.
var defaultContentSelectors = []string{
	"article", ".content", "#content", ".post-content", ".entry-content", "main", ".main",
}

var skippedElements = map[string]bool{
	"script": true, "style": true, "noscript": true,
	"nav": true, "header": true, "footer": true,
}

func parsePage(data []byte, pageURL string, rules domain.ScrapeRules) (*domain.ScrapedPage, error) {
	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	page := &domain.ScrapedPage{
		URL:      pageURL,
		Title:    extractTitle(root, rules.TitleSelector),
		Content:  extractContent(root, rules.ContentSelectors),
		Metadata: extractMetadata(root, pageURL, rules.MetadataSelectors),
	}

	maxLinks := rules.MaxLinks
	if maxLinks <= 0 {
		maxLinks = defaultMaxLinks
	}
	page.Links = extractLinks(root, pageURL, maxLinks)

	return page, nil
}

func extractTitle(root *html.Node, selector string) string {
	if selector != "" {
		if n := selectFirst(root, selector); n != nil {
			if title := nodeText(n); title != "" {
				return title
			}
		}
	}
	if n := selectFirst(root, "title"); n != nil {
		if title := nodeText(n); title != "" {
			return title
		}
	}
	if n := selectFirst(root, "h1"); n != nil {
		if title := nodeText(n); title != "" {
			return title
		}
	}
	return "No title found"
}

func extractContent(root *html.Node, selectors []string) string {
	var out strings.Builder

	appendAll := func(selector string) bool {
		nodes := selectAll(root, selector)
		for _, n := range nodes {
			if text := nodeText(n); text != "" {
				out.WriteString(text)
				out.WriteString("\n")
			}
		}
		return len(nodes) > 0
	}

	if len(selectors) > 0 {
		for _, selector := range selectors {
			appendAll(selector)
		}
	} else {
		found := false
		for _, selector := range defaultContentSelectors {
			if appendAll(selector) {
				found = true
				break
			}
		}
		if !found {
			appendAll("p")
		}
	}

	return strings.TrimSpace(out.String())
}

func extractMetadata(root *html.Node, pageURL string, selectors map[string]string) map[string]any {
	metadata := map[string]any{"url": pageURL}
	if u, err := url.Parse(pageURL); err == nil {
		metadata["domain"] = u.Host
	}

	for _, meta := range selectAll(root, "meta") {
		name := attr(meta, "name")
		if name == "" {
			name = attr(meta, "property")
		}
		content := attr(meta, "content")
		if name != "" && content != "" {
			metadata[name] = content
		}
	}

	for key, selector := range selectors {
		if n := selectFirst(root, selector); n != nil {
			if text := nodeText(n); text != "" {
				metadata[key] = text
			}
		}
	}

	return metadata
}

func extractLinks(root *html.Node, pageURL string, limit int) []domain.PageLink {
	base, baseErr := url.Parse(pageURL)

	var links []domain.PageLink
	for _, a := range selectAll(root, "a") {
		href := attr(a, "href")
		text := nodeText(a)
		if href == "" || text == "" {
			continue
		}
		absolute := href
		if baseErr == nil {
			if ref, err := url.Parse(href); err == nil {
				absolute = base.ResolveReference(ref).String()
			}
		}
		links = append(links, domain.PageLink{URL: absolute, Text: text})
		if len(links) == limit {
			break
		}
	}
	return links
}

// selectors support the element, .class and #id forms plus element.class.
type selector struct {
	element string
	class   string
	id      string
}

func parseSelector(raw string) selector {
	s := selector{}
	rest := strings.TrimSpace(raw)
	if i := strings.IndexByte(rest, '#'); i >= 0 {
		s.id = rest[i+1:]
		rest = rest[:i]
	}
	if i := strings.IndexByte(rest, '.'); i >= 0 {
		s.class = rest[i+1:]
		rest = rest[:i]
	}
	s.element = rest
	return s
}

func (s selector) matches(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if s.element != "" && n.Data != s.element {
		return false
	}
	if s.id != "" && attr(n, "id") != s.id {
		return false
	}
	if s.class != "" {
		for _, c := range strings.Fields(attr(n, "class")) {
			if c == s.class {
				return true
			}
		}
		return false
	}
	return true
}

func selectFirst(root *html.Node, raw string) *html.Node {
	nodes := collect(root, parseSelector(raw), 1)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

func selectAll(root *html.Node, raw string) []*html.Node {
	return collect(root, parseSelector(raw), -1)
}

func collect(root *html.Node, sel selector, limit int) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if limit > 0 && len(out) >= limit {
			return
		}
		if sel.matches(n) {
			out = append(out, n)
			// matched subtrees are not descended into again
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

// nodeText flattens the subtree's text, skipping script-like elements.
func nodeText(n *html.Node) string {
	var out strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			if text := trimmed(n.Data); text != "" {
				out.WriteString(text)
				out.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(out.String())
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}

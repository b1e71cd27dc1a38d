package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/akarpov/docrouter/internal/core/domain"
	"github.com/akarpov/docrouter/internal/core/ports"
)

type sourceRequest struct {
	Name          string             `json:"name"`
	URL           string             `json:"url"`
	SourceType    string             `json:"source_type"`
	ScrapingRules domain.ScrapeRules `json:"scraping_rules"`
	IsActive      *bool              `json:"is_active"`
}

func (req sourceRequest) toDomain() *domain.ScrapingSource {
	src := &domain.ScrapingSource{
		Name:          req.Name,
		URL:           req.URL,
		SourceType:    req.SourceType,
		ScrapingRules: req.ScrapingRules,
		IsActive:      true,
	}
	if req.IsActive != nil {
		src.IsActive = *req.IsActive
	}
	return src
}

func (rt *Router) createSource(w http.ResponseWriter, r *http.Request) {
	var req sourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	src, err := rt.sources.Create(r.Context(), req.toDomain(), actorFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, src)
}

func (rt *Router) listSources(w http.ResponseWriter, r *http.Request) {
	filter := ports.SourceFilter{
		Limit:  queryInt(r, "limit", 0),
		Offset: queryInt(r, "offset", 0),
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("is_active")); raw != "" {
		active := raw == "true"
		filter.IsActive = &active
	}
	sources, err := rt.sources.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sources": sources, "count": len(sources)})
}

func (rt *Router) getSource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "source id must be a positive integer"})
		return
	}
	src, err := rt.sources.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, src)
}

func (rt *Router) triggerSource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "source id must be a positive integer"})
		return
	}
	if err := rt.sources.Trigger(r.Context(), id, actorFromRequest(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (rt *Router) listSourceContent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt64(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "source id must be a positive integer"})
		return
	}
	content, err := rt.sources.ListContent(r.Context(), id, queryInt(r, "limit", 0), queryInt(r, "offset", 0))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"content": content, "count": len(content)})
}

func (rt *Router) searchScrapedContent(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query parameter 'q' is required"})
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordSearch(serviceName, "scraped")
	}
	content, err := rt.sources.SearchContent(r.Context(), query, queryInt(r, "limit", 0))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"query": query, "content": content, "count": len(content)})
}

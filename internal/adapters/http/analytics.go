package httpadapter

import (
	"net/http"
	"strings"
)

func (rt *Router) analyticsDashboard(w http.ResponseWriter, r *http.Request) {
	report, err := rt.analytics.Dashboard(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (rt *Router) analyticsTrends(w http.ResponseWriter, r *http.Request) {
	report, err := rt.analytics.Trends(r.Context(), queryInt(r, "days", 0))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (rt *Router) analyticsAccuracy(w http.ResponseWriter, r *http.Request) {
	report, err := rt.analytics.ClassificationAccuracy(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (rt *Router) analyticsRouting(w http.ResponseWriter, r *http.Request) {
	report, err := rt.analytics.RoutingStats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (rt *Router) analyticsSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if rt.metrics != nil {
		rt.metrics.RecordSearch(serviceName, "documents")
	}
	report, err := rt.analytics.Search(r.Context(), query, queryInt(r, "limit", 0))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

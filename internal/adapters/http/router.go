package httpadapter

import (
	"net/http"

	"github.com/akarpov/docrouter/internal/core/ports"
	"github.com/akarpov/docrouter/internal/core/usecase"
	"github.com/akarpov/docrouter/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	ingest      ports.DocumentIngestor
	documents   *usecase.ManageDocumentsUseCase
	users       *usecase.ManageUsersUseCase
	rules       *usecase.ManageRulesUseCase
	assignments *usecase.ManageAssignmentsUseCase
	sources     *usecase.ManageSourcesUseCase
	analytics   ports.AnalyticsService

	metrics   *metrics.HTTPServerMetrics
	validator func(http.Handler) http.Handler
}

type Deps struct {
	Ingest      ports.DocumentIngestor
	Documents   *usecase.ManageDocumentsUseCase
	Users       *usecase.ManageUsersUseCase
	Rules       *usecase.ManageRulesUseCase
	Assignments *usecase.ManageAssignmentsUseCase
	Sources     *usecase.ManageSourcesUseCase
	Analytics   ports.AnalyticsService

	Metrics   *metrics.HTTPServerMetrics
	Validator func(http.Handler) http.Handler
}

func NewRouter(deps Deps) *Router {
	return &Router{
		ingest:      deps.Ingest,
		documents:   deps.Documents,
		users:       deps.Users,
		rules:       deps.Rules,
		assignments: deps.Assignments,
		sources:     deps.Sources,
		analytics:   deps.Analytics,
		metrics:     deps.Metrics,
		validator:   deps.Validator,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", rt.healthz)

	mux.HandleFunc("POST /v1/documents", rt.uploadDocument)
	mux.HandleFunc("GET /v1/documents", rt.listDocuments)
	mux.HandleFunc("GET /v1/documents/{id}", rt.getDocument)
	mux.HandleFunc("GET /v1/documents/{id}/download", rt.downloadDocument)
	mux.HandleFunc("GET /v1/documents/{id}/audit", rt.documentAuditTrail)
	mux.HandleFunc("GET /v1/documents/{id}/assignments", rt.documentAssignments)
	mux.HandleFunc("DELETE /v1/documents/{id}", rt.deleteDocument)

	mux.HandleFunc("POST /v1/users", rt.createUser)
	mux.HandleFunc("GET /v1/users", rt.listUsers)
	mux.HandleFunc("GET /v1/users/{id}", rt.getUser)
	mux.HandleFunc("PUT /v1/users/{id}", rt.updateUser)
	mux.HandleFunc("GET /v1/users/{id}/workload", rt.userWorkload)

	mux.HandleFunc("POST /v1/rules", rt.createRule)
	mux.HandleFunc("GET /v1/rules", rt.listRules)
	mux.HandleFunc("POST /v1/rules/test", rt.testRule)
	mux.HandleFunc("GET /v1/rules/{id}", rt.getRule)
	mux.HandleFunc("PUT /v1/rules/{id}", rt.updateRule)
	mux.HandleFunc("DELETE /v1/rules/{id}", rt.deleteRule)

	mux.HandleFunc("GET /v1/assignments", rt.listAssignments)
	mux.HandleFunc("GET /v1/assignments/{id}", rt.getAssignment)
	mux.HandleFunc("POST /v1/assignments/{id}/status", rt.transitionAssignment)

	mux.HandleFunc("POST /v1/scraping/sources", rt.createSource)
	mux.HandleFunc("GET /v1/scraping/sources", rt.listSources)
	mux.HandleFunc("GET /v1/scraping/sources/{id}", rt.getSource)
	mux.HandleFunc("POST /v1/scraping/sources/{id}/trigger", rt.triggerSource)
	mux.HandleFunc("GET /v1/scraping/sources/{id}/content", rt.listSourceContent)
	mux.HandleFunc("GET /v1/scraping/content/search", rt.searchScrapedContent)

	mux.HandleFunc("GET /v1/analytics/dashboard", rt.analyticsDashboard)
	mux.HandleFunc("GET /v1/analytics/trends", rt.analyticsTrends)
	mux.HandleFunc("GET /v1/analytics/accuracy", rt.analyticsAccuracy)
	mux.HandleFunc("GET /v1/analytics/routing", rt.analyticsRouting)
	mux.HandleFunc("GET /v1/analytics/search", rt.analyticsSearch)

	var handler http.Handler = mux
	if rt.validator != nil {
		handler = rt.validator(handler)
	}
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

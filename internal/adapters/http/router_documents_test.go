package httpadapter

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/akarpov/docrouter/internal/core/domain"
	"github.com/akarpov/docrouter/internal/core/usecase"
)

type routerFixture struct {
	docs    *docRepoFake
	metas   *metaRepoFake
	storage *storageFake
	audit   *auditRepoFake
	ingest  *ingestFake
	assigns *assignRepoFake
	rules   *ruleRepoFake
	users   *userRepoFake
	scrapes *scrapeRepoFake
	queue   *queueFake
}

func newRouterFixture() (*routerFixture, http.Handler) {
	fx := &routerFixture{
		docs:    &docRepoFake{docs: map[string]*domain.Document{}},
		metas:   &metaRepoFake{metas: map[string]*domain.Metadata{}},
		storage: &storageFake{blobs: map[string][]byte{}},
		audit:   &auditRepoFake{},
		assigns: &assignRepoFake{assignments: map[int64]*domain.Assignment{}},
		rules:   &ruleRepoFake{rules: map[int64]*domain.RoutingRule{}},
		users:   &userRepoFake{users: map[string]*domain.User{}},
		scrapes: &scrapeRepoFake{
			sources: map[int64]*domain.ScrapingSource{},
			content: map[int64][]domain.ScrapedContent{},
		},
		queue: &queueFake{},
	}
	fx.ingest = &ingestFake{doc: &domain.Document{
		ID:        "doc-1",
		Status:    domain.StatusUploaded,
		CreatedAt: time.Now().UTC(),
	}}

	handler := NewRouter(Deps{
		Ingest:      fx.ingest,
		Documents:   usecase.NewManageDocumentsUseCase(fx.docs, fx.metas, fx.storage, fx.audit),
		Users:       usecase.NewManageUsersUseCase(fx.users, fx.assigns, fx.audit),
		Rules:       usecase.NewManageRulesUseCase(fx.rules, fx.audit),
		Assignments: usecase.NewManageAssignmentsUseCase(fx.assigns, fx.audit),
		Sources:     usecase.NewManageSourcesUseCase(fx.scrapes, fx.queue, fx.audit),
		Analytics:   &analyticsFake{dashboard: &domain.DashboardReport{TotalDocuments: 3}},
	}).Handler()
	return fx, handler
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return &body, writer.FormDataContentType()
}

func TestHealthzEndpoint(t *testing.T) {
	_, handler := newRouterFixture()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if res.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected request id header")
	}
}

func TestUploadDocumentAccepted(t *testing.T) {
	_, handler := newRouterFixture()

	body, contentType := multipartBody(t, "file", "contract.pdf", "pdf bytes")
	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", res.Code, res.Body.String())
	}
	var doc domain.Document
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if doc.OriginalName != "contract.pdf" {
		t.Fatalf("original name = %q", doc.OriginalName)
	}
}

func TestUploadDuplicateReturnsOK(t *testing.T) {
	fx, handler := newRouterFixture()
	fx.ingest.doc.Status = domain.StatusClassified

	body, contentType := multipartBody(t, "file", "contract.pdf", "same bytes")
	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 for duplicate, got %d", res.Code)
	}
}

func TestUploadDocumentMissingMultipartField(t *testing.T) {
	_, handler := newRouterFixture()

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", bytes.NewBufferString("plain-text"))
	req.Header.Set("Content-Type", "text/plain")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestGetDocumentNotFound(t *testing.T) {
	_, handler := newRouterFixture()

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/missing", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestGetDocumentWithMetadata(t *testing.T) {
	fx, handler := newRouterFixture()
	fx.docs.docs["doc-9"] = &domain.Document{ID: "doc-9", OriginalName: "report.pdf", Status: domain.StatusClassified}
	fx.metas.metas["doc-9"] = &domain.Metadata{ID: 1, DocID: "doc-9", Summary: "short"}

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/doc-9", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var payload struct {
		Document *domain.Document `json:"document"`
		Metadata *domain.Metadata `json:"metadata"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Document == nil || payload.Document.ID != "doc-9" {
		t.Fatalf("document = %+v", payload.Document)
	}
	if payload.Metadata == nil || payload.Metadata.Summary != "short" {
		t.Fatalf("metadata = %+v", payload.Metadata)
	}
}

func TestDownloadDocument(t *testing.T) {
	fx, handler := newRouterFixture()
	fx.docs.docs["doc-2"] = &domain.Document{ID: "doc-2", OriginalName: "notes.txt", StoragePath: "doc-2_notes.txt", MimeType: "text/plain"}
	fx.storage.blobs["doc-2_notes.txt"] = []byte("body text")

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/doc-2/download", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if res.Body.String() != "body text" {
		t.Fatalf("body = %q", res.Body.String())
	}
	if got := res.Header().Get("Content-Type"); got != "text/plain" {
		t.Fatalf("content type = %q", got)
	}
}

func TestDeleteDocumentWritesAudit(t *testing.T) {
	fx, handler := newRouterFixture()
	fx.docs.docs["doc-3"] = &domain.Document{ID: "doc-3", StoragePath: "doc-3_x.txt"}
	fx.storage.blobs["doc-3_x.txt"] = []byte("x")

	req := httptest.NewRequest(http.MethodDelete, "/v1/documents/doc-3", nil)
	req.Header.Set("X-Actor", "alice")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", res.Code)
	}
	if len(fx.docs.docs) != 0 {
		t.Fatal("document not deleted")
	}
	if len(fx.audit.entries) == 0 {
		t.Fatal("expected an audit entry")
	}
	entry := fx.audit.entries[len(fx.audit.entries)-1]
	if entry.Action != "deleted" || entry.Details["actor"] != "alice" {
		t.Fatalf("audit entry = %+v", entry)
	}
}

func TestDocumentAuditTrail(t *testing.T) {
	fx, handler := newRouterFixture()
	fx.docs.docs["doc-4"] = &domain.Document{ID: "doc-4"}
	fx.audit.entries = append(fx.audit.entries, &domain.AuditLog{
		EntityType: domain.EntityDocument, EntityID: "doc-4", Action: "uploaded",
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/doc-4/audit", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var payload struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Count != 1 {
		t.Fatalf("count = %d", payload.Count)
	}
}

func TestAnalyticsDashboard(t *testing.T) {
	_, handler := newRouterFixture()

	req := httptest.NewRequest(http.MethodGet, "/v1/analytics/dashboard", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var report domain.DashboardReport
	if err := json.NewDecoder(res.Body).Decode(&report); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if report.TotalDocuments != 3 {
		t.Fatalf("total documents = %d", report.TotalDocuments)
	}
}

func TestAnalyticsSearchRequiresQuery(t *testing.T) {
	_, handler := newRouterFixture()

	req := httptest.NewRequest(http.MethodGet, "/v1/analytics/search", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

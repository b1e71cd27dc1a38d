package httpadapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/akarpov/docrouter/internal/core/domain"
	"github.com/akarpov/docrouter/internal/core/ports"
)

var errNoRow = errors.New("no rows")

type ingestFake struct {
	doc *domain.Document
	err error
}

func (f *ingestFake) Upload(_ context.Context, filename, mimeType string, body io.Reader, _ string) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	if _, err := io.Copy(io.Discard, body); err != nil {
		return nil, err
	}
	doc := *f.doc
	doc.OriginalName = filename
	doc.MimeType = mimeType
	return &doc, nil
}

type docRepoFake struct {
	docs map[string]*domain.Document
}

func (f *docRepoFake) Create(_ context.Context, doc *domain.Document) error {
	f.docs[doc.ID] = doc
	return nil
}

func (f *docRepoFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get document", errNoRow)
	}
	return doc, nil
}

func (f *docRepoFake) GetByContentHash(context.Context, string) (*domain.Document, error) {
	return nil, domain.WrapError(domain.ErrNotFound, "get document", errNoRow)
}

func (f *docRepoFake) List(context.Context, ports.DocumentFilter) ([]domain.Document, error) {
	var out []domain.Document
	for _, doc := range f.docs {
		out = append(out, *doc)
	}
	return out, nil
}

func (f *docRepoFake) UpdateStatus(_ context.Context, id string, status domain.DocumentStatus) error {
	doc, ok := f.docs[id]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "update document", errNoRow)
	}
	doc.Status = status
	return nil
}

func (f *docRepoFake) SaveClassification(context.Context, string, domain.Classification) error {
	return nil
}

func (f *docRepoFake) Delete(_ context.Context, id string) error {
	if _, ok := f.docs[id]; !ok {
		return domain.WrapError(domain.ErrNotFound, "delete document", errNoRow)
	}
	delete(f.docs, id)
	return nil
}

type metaRepoFake struct {
	metas map[string]*domain.Metadata
}

func (f *metaRepoFake) Upsert(_ context.Context, meta *domain.Metadata) error {
	f.metas[meta.DocID] = meta
	return nil
}

func (f *metaRepoFake) GetByDocID(_ context.Context, docID string) (*domain.Metadata, error) {
	meta, ok := f.metas[docID]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get metadata", errNoRow)
	}
	return meta, nil
}

type storageFake struct {
	blobs map[string][]byte
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) (int64, error) {
	raw, err := io.ReadAll(data)
	if err != nil {
		return 0, err
	}
	f.blobs[key] = raw
	return int64(len(raw)), nil
}

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	raw, ok := f.blobs[key]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "open blob", errNoRow)
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (f *storageFake) Remove(_ context.Context, key string) error {
	delete(f.blobs, key)
	return nil
}

type auditRepoFake struct {
	entries []*domain.AuditLog
}

func (f *auditRepoFake) Append(_ context.Context, entry *domain.AuditLog) error {
	f.entries = append(f.entries, entry)
	return nil
}

func (f *auditRepoFake) List(_ context.Context, filter ports.AuditFilter) ([]*domain.AuditLog, error) {
	var out []*domain.AuditLog
	for _, e := range f.entries {
		if filter.EntityType != "" && e.EntityType != filter.EntityType {
			continue
		}
		if filter.EntityID != "" && e.EntityID != filter.EntityID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

type ruleRepoFake struct {
	rules  map[int64]*domain.RoutingRule
	nextID int64
}

func (f *ruleRepoFake) Create(_ context.Context, rule *domain.RoutingRule) error {
	f.nextID++
	rule.ID = f.nextID
	f.rules[rule.ID] = rule
	return nil
}

func (f *ruleRepoFake) GetByID(_ context.Context, id int64) (*domain.RoutingRule, error) {
	rule, ok := f.rules[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get rule", errNoRow)
	}
	return rule, nil
}

func (f *ruleRepoFake) List(context.Context, ports.RuleFilter) ([]domain.RoutingRule, error) {
	var out []domain.RoutingRule
	for _, rule := range f.rules {
		out = append(out, *rule)
	}
	return out, nil
}

func (f *ruleRepoFake) ListActive(ctx context.Context) ([]domain.RoutingRule, error) {
	return f.List(ctx, ports.RuleFilter{})
}

func (f *ruleRepoFake) Update(_ context.Context, rule *domain.RoutingRule) error {
	if _, ok := f.rules[rule.ID]; !ok {
		return domain.WrapError(domain.ErrNotFound, "update rule", errNoRow)
	}
	f.rules[rule.ID] = rule
	return nil
}

func (f *ruleRepoFake) Delete(_ context.Context, id int64) error {
	if _, ok := f.rules[id]; !ok {
		return domain.WrapError(domain.ErrNotFound, "delete rule", errNoRow)
	}
	delete(f.rules, id)
	return nil
}

type assignRepoFake struct {
	assignments map[int64]*domain.Assignment
}

func (f *assignRepoFake) Create(_ context.Context, assignment *domain.Assignment) error {
	assignment.ID = int64(len(f.assignments) + 1)
	f.assignments[assignment.ID] = assignment
	return nil
}

func (f *assignRepoFake) GetByID(_ context.Context, id int64) (*domain.Assignment, error) {
	assignment, ok := f.assignments[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get assignment", errNoRow)
	}
	return assignment, nil
}

func (f *assignRepoFake) List(context.Context, ports.AssignmentFilter) ([]domain.Assignment, error) {
	var out []domain.Assignment
	for _, a := range f.assignments {
		out = append(out, *a)
	}
	return out, nil
}

func (f *assignRepoFake) ListByDocument(_ context.Context, docID string) ([]domain.Assignment, error) {
	var out []domain.Assignment
	for _, a := range f.assignments {
		if a.DocID == docID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *assignRepoFake) ListActiveByUser(context.Context, string) ([]domain.Assignment, error) {
	return nil, nil
}

func (f *assignRepoFake) CountActiveByUser(_ context.Context, userID string) (int, error) {
	count := 0
	for _, a := range f.assignments {
		if a.UserID == userID && (a.Status == domain.AssignmentAssigned || a.Status == domain.AssignmentInProgress) {
			count++
		}
	}
	return count, nil
}

func (f *assignRepoFake) UpdateStatus(_ context.Context, id int64, status domain.AssignmentStatus, completedAt *time.Time) error {
	assignment, ok := f.assignments[id]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "update assignment", errNoRow)
	}
	assignment.Status = status
	assignment.CompletedAt = completedAt
	return nil
}

type userRepoFake struct {
	users  map[string]*domain.User
	nextID int
}

func (f *userRepoFake) Create(_ context.Context, user *domain.User) error {
	for _, existing := range f.users {
		if existing.Username == user.Username {
			return domain.WrapError(domain.ErrAlreadyExists, "create user", errNoRow)
		}
	}
	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	f.users[user.ID] = user
	return nil
}

func (f *userRepoFake) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get user", errNoRow)
	}
	return user, nil
}

func (f *userRepoFake) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, domain.WrapError(domain.ErrNotFound, "get user", errNoRow)
}

func (f *userRepoFake) List(context.Context, ports.UserFilter) ([]domain.User, error) {
	var out []domain.User
	for _, user := range f.users {
		out = append(out, *user)
	}
	return out, nil
}

func (f *userRepoFake) ListActive(context.Context) ([]domain.User, error) {
	return f.List(context.Background(), ports.UserFilter{})
}

func (f *userRepoFake) ListActiveByDepartment(_ context.Context, department string) ([]domain.User, error) {
	var out []domain.User
	for _, user := range f.users {
		if user.IsActive && user.Department == department {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (f *userRepoFake) Update(_ context.Context, user *domain.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return domain.WrapError(domain.ErrNotFound, "update user", errNoRow)
	}
	f.users[user.ID] = user
	return nil
}

type scrapeRepoFake struct {
	sources map[int64]*domain.ScrapingSource
	content map[int64][]domain.ScrapedContent
	nextID  int64
}

func (f *scrapeRepoFake) CreateSource(_ context.Context, source *domain.ScrapingSource) error {
	f.nextID++
	source.ID = f.nextID
	f.sources[source.ID] = source
	return nil
}

func (f *scrapeRepoFake) GetSourceByID(_ context.Context, id int64) (*domain.ScrapingSource, error) {
	src, ok := f.sources[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get source", errNoRow)
	}
	return src, nil
}

func (f *scrapeRepoFake) ListSources(context.Context, ports.SourceFilter) ([]domain.ScrapingSource, error) {
	var out []domain.ScrapingSource
	for _, src := range f.sources {
		out = append(out, *src)
	}
	return out, nil
}

func (f *scrapeRepoFake) ListDueSources(context.Context, time.Time) ([]domain.ScrapingSource, error) {
	return nil, nil
}

func (f *scrapeRepoFake) MarkSourceScraped(_ context.Context, id int64, at time.Time) error {
	src, ok := f.sources[id]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "mark source", errNoRow)
	}
	src.LastScraped = &at
	return nil
}

func (f *scrapeRepoFake) CreateContent(_ context.Context, content *domain.ScrapedContent) error {
	f.content[content.SourceID] = append(f.content[content.SourceID], *content)
	return nil
}

func (f *scrapeRepoFake) HasContentHash(_ context.Context, sourceID int64, hash string) (bool, error) {
	for _, item := range f.content[sourceID] {
		if item.ContentHash == hash {
			return true, nil
		}
	}
	return false, nil
}

func (f *scrapeRepoFake) ListContent(_ context.Context, sourceID int64, _, _ int) ([]domain.ScrapedContent, error) {
	return f.content[sourceID], nil
}

func (f *scrapeRepoFake) SearchContent(_ context.Context, query string, _ int) ([]domain.ScrapedContent, error) {
	var out []domain.ScrapedContent
	for _, items := range f.content {
		for _, item := range items {
			if strings.Contains(strings.ToLower(item.Content), strings.ToLower(query)) {
				out = append(out, item)
			}
		}
	}
	return out, nil
}

type queueFake struct {
	ingested []string
	results  []domain.ClassificationResult
	jobs     []domain.ScrapeJob
	notes    []domain.AssignmentNotification
	err      error
}

func (f *queueFake) PublishDocumentIngested(_ context.Context, documentID string) error {
	if f.err != nil {
		return f.err
	}
	f.ingested = append(f.ingested, documentID)
	return nil
}

func (f *queueFake) SubscribeDocumentIngested(context.Context, func(context.Context, string) error) error {
	return nil
}

func (f *queueFake) PublishClassificationResult(_ context.Context, result domain.ClassificationResult) error {
	if f.err != nil {
		return f.err
	}
	f.results = append(f.results, result)
	return nil
}

func (f *queueFake) SubscribeClassificationResults(context.Context, func(context.Context, domain.ClassificationResult) error) error {
	return nil
}

func (f *queueFake) PublishScrapeJob(_ context.Context, job domain.ScrapeJob) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

func (f *queueFake) SubscribeScrapeJobs(context.Context, func(context.Context, domain.ScrapeJob) error) error {
	return nil
}

func (f *queueFake) PublishAssignmentNotification(_ context.Context, note domain.AssignmentNotification) error {
	if f.err != nil {
		return f.err
	}
	f.notes = append(f.notes, note)
	return nil
}

type analyticsFake struct {
	dashboard *domain.DashboardReport
	search    *domain.SearchReport
	err       error
}

func (f *analyticsFake) Dashboard(context.Context) (*domain.DashboardReport, error) {
	return f.dashboard, f.err
}

func (f *analyticsFake) Trends(_ context.Context, days int) (*domain.TrendsReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.TrendsReport{Days: days}, nil
}

func (f *analyticsFake) ClassificationAccuracy(context.Context) (*domain.AccuracyReport, error) {
	return &domain.AccuracyReport{}, f.err
}

func (f *analyticsFake) RoutingStats(context.Context) (*domain.RoutingReport, error) {
	return &domain.RoutingReport{}, f.err
}

func (f *analyticsFake) Search(_ context.Context, query string, _ int) (*domain.SearchReport, error) {
	if query == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "search", errNoRow)
	}
	return f.search, f.err
}

package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"github.com/akarpov/docrouter/internal/core/domain"
	"github.com/akarpov/docrouter/internal/core/ports"
)

var errNotImplemented = errors.New("not implemented")

type docRepoFake struct {
	docs       map[string]*domain.Document
	byHash     map[string]*domain.Document
	statuses   map[string]domain.DocumentStatus
	createErr  error
	statusErr  error
	classified map[string]domain.Classification
}

func newDocRepoFake() *docRepoFake {
	return &docRepoFake{
		docs:       map[string]*domain.Document{},
		byHash:     map[string]*domain.Document{},
		statuses:   map[string]domain.DocumentStatus{},
		classified: map[string]domain.Classification{},
	}
}

func (f *docRepoFake) Create(_ context.Context, doc *domain.Document) error {
	if f.createErr != nil {
		return f.createErr
	}
	copyDoc := *doc
	f.docs[doc.ID] = &copyDoc
	f.byHash[doc.ContentHash] = &copyDoc
	return nil
}

func (f *docRepoFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get document", errors.New(id))
	}
	return doc, nil
}

func (f *docRepoFake) GetByContentHash(_ context.Context, hash string) (*domain.Document, error) {
	doc, ok := f.byHash[hash]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get document by hash", errors.New(hash))
	}
	return doc, nil
}

func (f *docRepoFake) List(context.Context, ports.DocumentFilter) ([]domain.Document, error) {
	return nil, errNotImplemented
}

func (f *docRepoFake) UpdateStatus(_ context.Context, id string, status domain.DocumentStatus) error {
	if f.statusErr != nil {
		return f.statusErr
	}
	f.statuses[id] = status
	return nil
}

func (f *docRepoFake) SaveClassification(_ context.Context, id string, cls domain.Classification) error {
	f.classified[id] = cls
	return nil
}

func (f *docRepoFake) Delete(_ context.Context, id string) error {
	if _, ok := f.docs[id]; !ok {
		return domain.WrapError(domain.ErrNotFound, "delete document", errors.New(id))
	}
	delete(f.docs, id)
	return nil
}

type metaRepoFake struct {
	upserted *domain.Metadata
}

func (f *metaRepoFake) Upsert(_ context.Context, meta *domain.Metadata) error {
	copyMeta := *meta
	f.upserted = &copyMeta
	return nil
}

func (f *metaRepoFake) GetByDocID(_ context.Context, docID string) (*domain.Metadata, error) {
	if f.upserted == nil || f.upserted.DocID != docID {
		return nil, domain.WrapError(domain.ErrNotFound, "get metadata", errors.New(docID))
	}
	return f.upserted, nil
}

type storageFake struct {
	blobs   map[string][]byte
	removed []string
	saveErr error
}

func newStorageFake() *storageFake {
	return &storageFake{blobs: map[string][]byte{}}
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) (int64, error) {
	if f.saveErr != nil {
		return 0, f.saveErr
	}
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
		return nil, domain.WrapError(domain.ErrNotFound, "open blob", errors.New(key))
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (f *storageFake) Remove(_ context.Context, key string) error {
	f.removed = append(f.removed, key)
	delete(f.blobs, key)
	return nil
}

type queueFake struct {
	ingested      []string
	results       []domain.ClassificationResult
	scrapeJobs    []domain.ScrapeJob
	notifications []domain.AssignmentNotification
	publishErr    error
}

func (f *queueFake) PublishDocumentIngested(_ context.Context, documentID string) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.ingested = append(f.ingested, documentID)
	return nil
}

func (f *queueFake) SubscribeDocumentIngested(context.Context, func(context.Context, string) error) error {
	return errNotImplemented
}

func (f *queueFake) PublishClassificationResult(_ context.Context, result domain.ClassificationResult) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.results = append(f.results, result)
	return nil
}

func (f *queueFake) SubscribeClassificationResults(context.Context, func(context.Context, domain.ClassificationResult) error) error {
	return errNotImplemented
}

func (f *queueFake) PublishScrapeJob(_ context.Context, job domain.ScrapeJob) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.scrapeJobs = append(f.scrapeJobs, job)
	return nil
}

func (f *queueFake) SubscribeScrapeJobs(context.Context, func(context.Context, domain.ScrapeJob) error) error {
	return errNotImplemented
}

func (f *queueFake) PublishAssignmentNotification(_ context.Context, note domain.AssignmentNotification) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.notifications = append(f.notifications, note)
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

func (f *auditRepoFake) lastAction() string {
	if len(f.entries) == 0 {
		return ""
	}
	return f.entries[len(f.entries)-1].Action
}

type userDirFake struct {
	users []domain.User
}

func (f *userDirFake) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for i := range f.users {
		if f.users[i].Username == username {
			return &f.users[i], nil
		}
	}
	return nil, domain.WrapError(domain.ErrNotFound, "get user", errors.New(username))
}

func (f *userDirFake) ListActive(context.Context) ([]domain.User, error) {
	var out []domain.User
	for _, u := range f.users {
		if u.IsActive {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *userDirFake) ListActiveByDepartment(_ context.Context, department string) ([]domain.User, error) {
	var out []domain.User
	for _, u := range f.users {
		if u.IsActive && u.Department == department {
			out = append(out, u)
		}
	}
	return out, nil
}

type ruleRepoFake struct {
	rules   []domain.RoutingRule
	listErr error
}

func (f *ruleRepoFake) Create(_ context.Context, rule *domain.RoutingRule) error {
	rule.ID = int64(len(f.rules) + 1)
	f.rules = append(f.rules, *rule)
	return nil
}

func (f *ruleRepoFake) GetByID(_ context.Context, id int64) (*domain.RoutingRule, error) {
	for i := range f.rules {
		if f.rules[i].ID == id {
			return &f.rules[i], nil
		}
	}
	return nil, domain.WrapError(domain.ErrNotFound, "get rule", errNotImplemented)
}

func (f *ruleRepoFake) List(context.Context, ports.RuleFilter) ([]domain.RoutingRule, error) {
	return f.rules, nil
}

func (f *ruleRepoFake) ListActive(context.Context) ([]domain.RoutingRule, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.RoutingRule
	for _, r := range f.rules {
		if r.IsActive {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *ruleRepoFake) Update(context.Context, *domain.RoutingRule) error { return errNotImplemented }
func (f *ruleRepoFake) Delete(context.Context, int64) error               { return errNotImplemented }

type assignRepoFake struct {
	created     []*domain.Assignment
	activeByUID map[string]int
	statusSet   map[int64]domain.AssignmentStatus
	byID        map[int64]*domain.Assignment
}

func newAssignRepoFake() *assignRepoFake {
	return &assignRepoFake{
		activeByUID: map[string]int{},
		statusSet:   map[int64]domain.AssignmentStatus{},
		byID:        map[int64]*domain.Assignment{},
	}
}

func (f *assignRepoFake) Create(_ context.Context, assignment *domain.Assignment) error {
	assignment.ID = int64(len(f.created) + 1)
	copyA := *assignment
	f.created = append(f.created, &copyA)
	f.byID[copyA.ID] = &copyA
	return nil
}

func (f *assignRepoFake) GetByID(_ context.Context, id int64) (*domain.Assignment, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get assignment", errNotImplemented)
	}
	return a, nil
}

func (f *assignRepoFake) List(context.Context, ports.AssignmentFilter) ([]domain.Assignment, error) {
	return nil, errNotImplemented
}

func (f *assignRepoFake) ListByDocument(context.Context, string) ([]domain.Assignment, error) {
	return nil, errNotImplemented
}

func (f *assignRepoFake) ListActiveByUser(context.Context, string) ([]domain.Assignment, error) {
	return nil, errNotImplemented
}

func (f *assignRepoFake) CountActiveByUser(_ context.Context, userID string) (int, error) {
	return f.activeByUID[userID], nil
}

func (f *assignRepoFake) UpdateStatus(_ context.Context, id int64, status domain.AssignmentStatus, completedAt *time.Time) error {
	f.statusSet[id] = status
	if a, ok := f.byID[id]; ok {
		a.Status = status
		a.CompletedAt = completedAt
	}
	return nil
}

type extractorFake struct {
	text string
	err  error
}

func (f *extractorFake) Extract(_ context.Context, r io.Reader, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	return f.text, nil
}

type classifierFake struct {
	cls domain.Classification
	err error
}

func (f *classifierFake) Classify(context.Context, string, string) (domain.Classification, error) {
	return f.cls, f.err
}

type analyzerFake struct {
	analysis domain.ContentAnalysis
	err      error
}

func (f *analyzerFake) Analyze(context.Context, string) (domain.ContentAnalysis, error) {
	return f.analysis, f.err
}

type scrapeRepoFake struct {
	sources   map[int64]*domain.ScrapingSource
	content   []*domain.ScrapedContent
	hashes    map[string]bool
	scrapedAt map[int64]time.Time
}

func newScrapeRepoFake() *scrapeRepoFake {
	return &scrapeRepoFake{
		sources:   map[int64]*domain.ScrapingSource{},
		hashes:    map[string]bool{},
		scrapedAt: map[int64]time.Time{},
	}
}

func (f *scrapeRepoFake) CreateSource(_ context.Context, source *domain.ScrapingSource) error {
	source.ID = int64(len(f.sources) + 1)
	f.sources[source.ID] = source
	return nil
}

func (f *scrapeRepoFake) GetSourceByID(_ context.Context, id int64) (*domain.ScrapingSource, error) {
	src, ok := f.sources[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get source", errNotImplemented)
	}
	return src, nil
}

func (f *scrapeRepoFake) ListSources(context.Context, ports.SourceFilter) ([]domain.ScrapingSource, error) {
	return nil, errNotImplemented
}

func (f *scrapeRepoFake) ListDueSources(_ context.Context, notScrapedSince time.Time) ([]domain.ScrapingSource, error) {
	var out []domain.ScrapingSource
	for _, src := range f.sources {
		if !src.IsActive {
			continue
		}
		if src.LastScraped == nil || src.LastScraped.Before(notScrapedSince) {
			out = append(out, *src)
		}
	}
	return out, nil
}

func (f *scrapeRepoFake) MarkSourceScraped(_ context.Context, id int64, at time.Time) error {
	f.scrapedAt[id] = at
	return nil
}

func (f *scrapeRepoFake) CreateContent(_ context.Context, content *domain.ScrapedContent) error {
	content.ID = int64(len(f.content) + 1)
	f.content = append(f.content, content)
	f.hashes[content.ContentHash] = true
	return nil
}

func (f *scrapeRepoFake) HasContentHash(_ context.Context, _ int64, hash string) (bool, error) {
	return f.hashes[hash], nil
}

func (f *scrapeRepoFake) ListContent(context.Context, int64, int, int) ([]domain.ScrapedContent, error) {
	return nil, errNotImplemented
}

func (f *scrapeRepoFake) SearchContent(context.Context, string, int) ([]domain.ScrapedContent, error) {
	return nil, errNotImplemented
}

type fetcherFake struct {
	pages    map[string]*domain.ScrapedPage
	sitemap  []string
	fetchErr error
}

func (f *fetcherFake) Fetch(_ context.Context, url string, _ domain.ScrapeRules) (*domain.ScrapedPage, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	page, ok := f.pages[url]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "fetch page", errors.New(url))
	}
	return page, nil
}

func (f *fetcherFake) FetchSitemap(context.Context, string) ([]string, error) {
	return f.sitemap, nil
}

type ingestorFake struct {
	uploads []string
	err     error
}

func (f *ingestorFake) Upload(_ context.Context, filename, _ string, body io.Reader, _ string) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	if _, err := io.ReadAll(body); err != nil {
		return nil, err
	}
	f.uploads = append(f.uploads, filename)
	return &domain.Document{ID: "ingested-" + filename}, nil
}

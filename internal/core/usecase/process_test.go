package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/akarpov/docrouter/internal/core/domain"
)

func seedProcessingDoc(repo *docRepoFake, storage *storageFake) *domain.Document {
	doc := &domain.Document{
		ID:           "doc-1",
		OriginalName: "contract.txt",
		StoragePath:  "doc-1_contract.txt",
		MimeType:     "text/plain",
		Status:       domain.StatusUploaded,
	}
	repo.docs[doc.ID] = doc
	storage.blobs[doc.StoragePath] = []byte("agreement between parties")
	return doc
}

func TestProcessByIDSuccess(t *testing.T) {
	repo := newDocRepoFake()
	storage := newStorageFake()
	queue := &queueFake{}
	audit := &auditRepoFake{}
	meta := &metaRepoFake{}
	doc := seedProcessingDoc(repo, storage)

	uc := NewProcessDocumentUseCase(repo, meta, storage,
		&extractorFake{text: "agreement between parties"},
		&classifierFake{cls: domain.Classification{DocType: "contract", Confidence: 0.82, Priority: 4}},
		&analyzerFake{analysis: domain.ContentAnalysis{
			Language:  "en",
			Summary:   "an agreement",
			RiskScore: 0.3,
			Topics:    map[string]float64{"legal": 0.9, "business": 0.2},
		}},
		queue, audit)

	if err := uc.ProcessByID(context.Background(), doc.ID); err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}

	if repo.statuses[doc.ID] != domain.StatusProcessing {
		t.Fatalf("expected processing status recorded, got %s", repo.statuses[doc.ID])
	}
	cls, ok := repo.classified[doc.ID]
	if !ok {
		t.Fatalf("expected classification saved")
	}
	if cls.DocType != "contract" || cls.Priority != 4 {
		t.Fatalf("unexpected classification %+v", cls)
	}
	if meta.upserted == nil || meta.upserted.Language != "en" {
		t.Fatalf("expected metadata upsert, got %+v", meta.upserted)
	}
	if len(queue.results) != 1 {
		t.Fatalf("expected one published result, got %d", len(queue.results))
	}
	res := queue.results[0]
	if res.DocumentID != doc.ID || res.DocType != "contract" {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Category != "legal" {
		t.Fatalf("expected top topic as category, got %q", res.Category)
	}
}

func TestProcessByIDExtractionFailureMarksFailed(t *testing.T) {
	repo := newDocRepoFake()
	storage := newStorageFake()
	audit := &auditRepoFake{}
	doc := seedProcessingDoc(repo, storage)

	uc := NewProcessDocumentUseCase(repo, &metaRepoFake{}, storage,
		&extractorFake{err: errors.New("corrupt file")},
		&classifierFake{}, &analyzerFake{}, &queueFake{}, audit)

	err := uc.ProcessByID(context.Background(), doc.ID)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "extract text") {
		t.Fatalf("expected extract error, got %v", err)
	}
	if repo.statuses[doc.ID] != domain.StatusFailed {
		t.Fatalf("expected failed status, got %s", repo.statuses[doc.ID])
	}
	if audit.lastAction() != "processing_failed" {
		t.Fatalf("expected failure audit entry, got %q", audit.lastAction())
	}
}

func TestProcessByIDUnknownDocument(t *testing.T) {
	uc := NewProcessDocumentUseCase(newDocRepoFake(), &metaRepoFake{}, newStorageFake(),
		&extractorFake{}, &classifierFake{}, &analyzerFake{}, &queueFake{}, &auditRepoFake{})

	err := uc.ProcessByID(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/akarpov/docrouter/internal/core/domain"
	"github.com/akarpov/docrouter/internal/core/ports"
)

func newDocRepoWithMock(t *testing.T) (*DocumentRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &DocumentRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestDocumentGetByIDReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newDocRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, original_name, storage_path").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDocumentGetByIDScansNullableColumns(t *testing.T) {
	repo, mock, done := newDocRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "original_name", "storage_path", "doc_type", "confidence",
		"file_size", "mime_type", "content_hash", "status", "created_at", "updated_at",
	}).AddRow("doc-1", "a.pdf", "doc-1_a.pdf", nil, nil, nil, "application/pdf", nil, "uploaded", now, now)

	mock.ExpectQuery("SELECT id, original_name, storage_path").
		WithArgs("doc-1").
		WillReturnRows(rows)

	doc, err := repo.GetByID(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if doc.DocType != "" || doc.Confidence != 0 {
		t.Fatalf("expected zero values for unclassified document, got %+v", doc)
	}
	if doc.Status != domain.StatusUploaded {
		t.Fatalf("expected uploaded status, got %s", doc.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDocumentUpdateStatusReturnsNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newDocRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE documents").
		WithArgs("missing", string(domain.StatusProcessing), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "missing", domain.StatusProcessing)
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDocumentSaveClassificationSetsClassifiedStatus(t *testing.T) {
	repo, mock, done := newDocRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE documents").
		WithArgs("doc-1", "contract", 0.82, string(domain.StatusClassified), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SaveClassification(context.Background(), "doc-1", domain.Classification{
		DocType:    "contract",
		Confidence: 0.82,
		Priority:   4,
	})
	if err != nil {
		t.Fatalf("SaveClassification() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDocumentListFiltersByStatus(t *testing.T) {
	repo, mock, done := newDocRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "original_name", "storage_path", "doc_type", "confidence",
		"file_size", "mime_type", "content_hash", "status", "created_at", "updated_at",
	}).AddRow("doc-1", "a.pdf", "p", "contract", 0.9, int64(10), "application/pdf", "h", "routed", now, now)

	mock.ExpectQuery("SELECT id, original_name, storage_path").
		WithArgs("routed", 50).
		WillReturnRows(rows)

	docs, err := repo.List(context.Background(), ports.DocumentFilter{Status: "routed"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(docs) != 1 || docs[0].DocType != "contract" {
		t.Fatalf("unexpected list result %+v", docs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

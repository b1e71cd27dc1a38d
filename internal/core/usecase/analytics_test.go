package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/akarpov/docrouter/internal/core/domain"
)

type analyticsRepoFake struct {
	total    int
	byType   map[string]int
	byStatus map[string]int
	daily    []domain.DatedCount
	buckets  domain.ConfidenceBuckets
	loads    []domain.UserWorkload
	stats    domain.AssignmentStats
	hits     []domain.DocumentHit
}

func (f *analyticsRepoFake) TotalDocuments(context.Context) (int, error) { return f.total, nil }
func (f *analyticsRepoFake) DocumentsByType(context.Context) (map[string]int, error) {
	return f.byType, nil
}
func (f *analyticsRepoFake) DocumentsByStatus(context.Context) (map[string]int, error) {
	return f.byStatus, nil
}
func (f *analyticsRepoFake) DailyUploads(context.Context, time.Time) ([]domain.DatedCount, error) {
	return f.daily, nil
}
func (f *analyticsRepoFake) ClassificationConfidence(context.Context) (domain.ConfidenceBuckets, error) {
	return f.buckets, nil
}
func (f *analyticsRepoFake) UserWorkloads(context.Context) ([]domain.UserWorkload, error) {
	return f.loads, nil
}
func (f *analyticsRepoFake) AssignmentStats(context.Context) (domain.AssignmentStats, error) {
	return f.stats, nil
}
func (f *analyticsRepoFake) SearchDocuments(context.Context, string, int) ([]domain.DocumentHit, error) {
	return f.hits, nil
}

func TestDashboardReport(t *testing.T) {
	repo := &analyticsRepoFake{
		total:    12,
		byType:   map[string]int{"contract": 7, "invoice": 5},
		byStatus: map[string]int{"routed": 10, "failed": 2},
		loads:    []domain.UserWorkload{{Username: "alice", ActiveAssignments: 3}},
	}
	uc := NewAnalyticsUseCase(repo)

	report, err := uc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}
	if report.TotalDocuments != 12 {
		t.Fatalf("expected 12 documents, got %d", report.TotalDocuments)
	}
	if report.ProcessingStats["failed"] != 2 {
		t.Fatalf("unexpected processing stats %+v", report.ProcessingStats)
	}
}

func TestClassificationAccuracyDistribution(t *testing.T) {
	uc := NewAnalyticsUseCase(&analyticsRepoFake{
		buckets: domain.ConfidenceBuckets{High: 6, Medium: 3, Low: 1},
	})

	report, err := uc.ClassificationAccuracy(context.Background())
	if err != nil {
		t.Fatalf("ClassificationAccuracy() error = %v", err)
	}
	if report.TotalClassified != 10 {
		t.Fatalf("expected 10 classified, got %d", report.TotalClassified)
	}
	if report.Distribution["high"] != 0.6 {
		t.Fatalf("expected 0.6 high share, got %f", report.Distribution["high"])
	}
}

func TestSearchValidation(t *testing.T) {
	uc := NewAnalyticsUseCase(&analyticsRepoFake{hits: []domain.DocumentHit{{ID: "doc-1"}}})

	if _, err := uc.Search(context.Background(), "", 10); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty query, got %v", err)
	}
	report, err := uc.Search(context.Background(), "contract", 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if report.TotalResults != 1 {
		t.Fatalf("expected 1 result, got %d", report.TotalResults)
	}
}

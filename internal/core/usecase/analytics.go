package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/akarpov/docrouter/internal/core/domain"
	"github.com/akarpov/docrouter/internal/core/ports"
)

type AnalyticsUseCase struct {
	repo ports.AnalyticsRepository
	now  func() time.Time
}

func NewAnalyticsUseCase(repo ports.AnalyticsRepository) *AnalyticsUseCase {
	return &AnalyticsUseCase{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (uc *AnalyticsUseCase) Dashboard(ctx context.Context) (*domain.DashboardReport, error) {
	total, err := uc.repo.TotalDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("total documents: %w", err)
	}
	byType, err := uc.repo.DocumentsByType(ctx)
	if err != nil {
		return nil, fmt.Errorf("documents by type: %w", err)
	}
	byStatus, err := uc.repo.DocumentsByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("documents by status: %w", err)
	}
	workloads, err := uc.repo.UserWorkloads(ctx)
	if err != nil {
		return nil, fmt.Errorf("user workloads: %w", err)
	}
	return &domain.DashboardReport{
		TotalDocuments:  total,
		DocumentsByType: byType,
		ProcessingStats: byStatus,
		UserWorkload:    workloads,
	}, nil
}

func (uc *AnalyticsUseCase) Trends(ctx context.Context, days int) (*domain.TrendsReport, error) {
	if days <= 0 || days > 365 {
		days = 30
	}
	uploads, err := uc.repo.DailyUploads(ctx, uc.now().AddDate(0, 0, -days))
	if err != nil {
		return nil, fmt.Errorf("daily uploads: %w", err)
	}
	return &domain.TrendsReport{Days: days, DailyUploads: uploads}, nil
}

func (uc *AnalyticsUseCase) ClassificationAccuracy(ctx context.Context) (*domain.AccuracyReport, error) {
	buckets, err := uc.repo.ClassificationConfidence(ctx)
	if err != nil {
		return nil, fmt.Errorf("classification confidence: %w", err)
	}
	total := buckets.High + buckets.Medium + buckets.Low
	dist := map[string]float64{"high": 0, "medium": 0, "low": 0}
	if total > 0 {
		dist["high"] = float64(buckets.High) / float64(total)
		dist["medium"] = float64(buckets.Medium) / float64(total)
		dist["low"] = float64(buckets.Low) / float64(total)
	}
	return &domain.AccuracyReport{
		TotalClassified: total,
		High:            buckets.High,
		Medium:          buckets.Medium,
		Low:             buckets.Low,
		Distribution:    dist,
	}, nil
}

func (uc *AnalyticsUseCase) RoutingStats(ctx context.Context) (*domain.RoutingReport, error) {
	stats, err := uc.repo.AssignmentStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("assignment stats: %w", err)
	}
	workloads, err := uc.repo.UserWorkloads(ctx)
	if err != nil {
		return nil, fmt.Errorf("user workloads: %w", err)
	}
	return &domain.RoutingReport{
		AssignmentStats: stats,
		UserWorkloads:   workloads,
	}, nil
}

func (uc *AnalyticsUseCase) Search(ctx context.Context, query string, limit int) (*domain.SearchReport, error) {
	if query == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "search", fmt.Errorf("empty query"))
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	hits, err := uc.repo.SearchDocuments(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	return &domain.SearchReport{
		Query:        query,
		TotalResults: len(hits),
		Results:      hits,
	}, nil
}

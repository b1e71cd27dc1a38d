package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/akarpov/docrouter/internal/core/domain"
	"github.com/akarpov/docrouter/internal/core/ports"
)

type ManageRulesUseCase struct {
	rules ports.RuleRepository
	audit ports.AuditRepository
	now   func() time.Time
}

func NewManageRulesUseCase(rules ports.RuleRepository, audit ports.AuditRepository) *ManageRulesUseCase {
	return &ManageRulesUseCase{
		rules: rules,
		audit: audit,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (uc *ManageRulesUseCase) Create(ctx context.Context, rule *domain.RoutingRule, actor string) (*domain.RoutingRule, error) {
	if err := validateRule(rule); err != nil {
		return nil, err
	}
	if rule.Priority <= 0 {
		rule.Priority = 1
	}
	rule.IsActive = true
	rule.CreatedAt = uc.now()

	if err := uc.rules.Create(ctx, rule); err != nil {
		return nil, fmt.Errorf("create routing rule: %w", err)
	}
	appendAudit(ctx, uc.audit, domain.EntityRule, fmt.Sprintf("%d", rule.ID), "created", map[string]any{
		"name":     rule.Name,
		"assignee": rule.Assignee,
		"team":     rule.Team,
		"priority": rule.Priority,
		"actor":    actor,
	})
	return rule, nil
}

func (uc *ManageRulesUseCase) Get(ctx context.Context, id int64) (*domain.RoutingRule, error) {
	return uc.rules.GetByID(ctx, id)
}

func (uc *ManageRulesUseCase) List(ctx context.Context, filter ports.RuleFilter) ([]domain.RoutingRule, error) {
	return uc.rules.List(ctx, filter)
}

func (uc *ManageRulesUseCase) Update(ctx context.Context, rule *domain.RoutingRule, actor string) (*domain.RoutingRule, error) {
	if err := validateRule(rule); err != nil {
		return nil, err
	}
	if err := uc.rules.Update(ctx, rule); err != nil {
		return nil, fmt.Errorf("update routing rule: %w", err)
	}
	appendAudit(ctx, uc.audit, domain.EntityRule, fmt.Sprintf("%d", rule.ID), "updated", map[string]any{
		"name":      rule.Name,
		"is_active": rule.IsActive,
		"actor":     actor,
	})
	return rule, nil
}

func (uc *ManageRulesUseCase) Delete(ctx context.Context, id int64, actor string) error {
	if err := uc.rules.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete routing rule: %w", err)
	}
	appendAudit(ctx, uc.audit, domain.EntityRule, fmt.Sprintf("%d", id), "deleted", map[string]any{
		"actor": actor,
	})
	return nil
}

// Test evaluates a condition against a synthetic context without touching
// stored rules. Used to dry run a rule before saving it.
func (uc *ManageRulesUseCase) Test(condition domain.Condition, rctx domain.RuleContext) bool {
	return condition.Matches(rctx)
}

func validateRule(rule *domain.RoutingRule) error {
	if rule.Name == "" {
		return domain.WrapError(domain.ErrInvalidInput, "validate rule", fmt.Errorf("name is required"))
	}
	if rule.Assignee == "" && rule.Team == "" {
		return domain.WrapError(domain.ErrInvalidInput, "validate rule", fmt.Errorf("assignee or team is required"))
	}
	if len(rule.Condition) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "validate rule", fmt.Errorf("condition is required"))
	}
	return nil
}

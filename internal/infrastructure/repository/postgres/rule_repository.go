package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/akarpov/docrouter/internal/core/domain"
	"github.com/akarpov/docrouter/internal/core/ports"
)

type RuleRepository struct {
	db *sql.DB
}

func NewRuleRepository(db *sql.DB) *RuleRepository {
	return &RuleRepository{db: db}
}

const ruleColumns = `id, name, condition, assignee, team, priority, is_active, created_at`

func (r *RuleRepository) Create(ctx context.Context, rule *domain.RoutingRule) error {
	condJSON, err := json.Marshal(rule.Condition)
	if err != nil {
		return fmt.Errorf("marshal condition: %w", err)
	}
	row := r.db.QueryRowContext(ctx, `
INSERT INTO routing_rules (name, condition, assignee, team, priority, is_active, created_at)
VALUES ($1,$2,NULLIF($3,''),NULLIF($4,''),$5,$6,$7)
RETURNING id
`, rule.Name, condJSON, rule.Assignee, rule.Team, rule.Priority, rule.IsActive, rule.CreatedAt)
	if err := row.Scan(&rule.ID); err != nil {
		return mapConstraintError("insert routing rule", err)
	}
	return nil
}

func (r *RuleRepository) GetByID(ctx context.Context, id int64) (*domain.RoutingRule, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+ruleColumns+` FROM routing_rules WHERE id = $1`, id)
	rule, err := scanRule(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get routing rule", fmt.Errorf("id=%d", id))
		}
		return nil, fmt.Errorf("get routing rule: %w", err)
	}
	return rule, nil
}

func (r *RuleRepository) List(ctx context.Context, filter ports.RuleFilter) ([]domain.RoutingRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM routing_rules WHERE 1=1` + "\n"
	args := make([]any, 0, 3)
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		query += fmt.Sprintf("AND is_active = $%d\n", len(args))
	}
	query += "ORDER BY priority DESC, id ASC\n"

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf("LIMIT $%d", len(args))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	return r.queryRules(ctx, query, args...)
}

// ListActive returns rules in evaluation order: priority descending, id
// ascending.
func (r *RuleRepository) ListActive(ctx context.Context) ([]domain.RoutingRule, error) {
	return r.queryRules(ctx, `SELECT `+ruleColumns+` FROM routing_rules WHERE is_active ORDER BY priority DESC, id ASC`)
}

func (r *RuleRepository) Update(ctx context.Context, rule *domain.RoutingRule) error {
	condJSON, err := json.Marshal(rule.Condition)
	if err != nil {
		return fmt.Errorf("marshal condition: %w", err)
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE routing_rules
SET name = $2, condition = $3, assignee = NULLIF($4,''), team = NULLIF($5,''), priority = $6, is_active = $7
WHERE id = $1
`, rule.ID, rule.Name, condJSON, rule.Assignee, rule.Team, rule.Priority, rule.IsActive)
	if err != nil {
		return fmt.Errorf("update routing rule: %w", err)
	}
	return requireAffected(result, "routing rule", fmt.Sprintf("%d", rule.ID))
}

func (r *RuleRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM routing_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete routing rule: %w", err)
	}
	return requireAffected(result, "routing rule", fmt.Sprintf("%d", id))
}

func (r *RuleRepository) queryRules(ctx context.Context, query string, args ...any) ([]domain.RoutingRule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query routing rules: %w", err)
	}
	defer rows.Close()

	out := make([]domain.RoutingRule, 0)
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan routing rule: %w", err)
		}
		out = append(out, *rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate routing rules: %w", err)
	}
	return out, nil
}

func scanRule(row rowScanner) (*domain.RoutingRule, error) {
	var rule domain.RoutingRule
	var condRaw []byte
	var assignee, team sql.NullString

	err := row.Scan(&rule.ID, &rule.Name, &condRaw, &assignee, &team, &rule.Priority, &rule.IsActive, &rule.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(condRaw, &rule.Condition); err != nil {
		return nil, fmt.Errorf("unmarshal condition: %w", err)
	}
	rule.Assignee = assignee.String
	rule.Team = team.String
	return &rule, nil
}

package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/akarpov/docrouter/internal/core/domain"
	"github.com/akarpov/docrouter/internal/core/ports"
)

// skillsBonus is subtracted from the effective workload of a candidate
// whose skill set covers the document type.
const skillsBonus = 0.2

const routingActor = "routing-engine"

type RouteDocumentUseCase struct {
	docs        ports.DocumentRepository
	rules       ports.RuleRepository
	users       ports.UserDirectory
	assignments ports.AssignmentRepository
	queue       ports.MessageQueue
	audit       ports.AuditRepository
	now         func() time.Time
}

func NewRouteDocumentUseCase(
	docs ports.DocumentRepository,
	rules ports.RuleRepository,
	users ports.UserDirectory,
	assignments ports.AssignmentRepository,
	queue ports.MessageQueue,
	audit ports.AuditRepository,
) *RouteDocumentUseCase {
	return &RouteDocumentUseCase{
		docs:        docs,
		rules:       rules,
		users:       users,
		assignments: assignments,
		queue:       queue,
		audit:       audit,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Route matches the classification result against active routing rules and
// records an assignment for the selected user. When no rule matches, the
// document goes to the least loaded member of the default team for its type.
func (uc *RouteDocumentUseCase) Route(ctx context.Context, res domain.ClassificationResult) (*domain.Assignment, error) {
	rctx := domain.RuleContextFrom(res)

	rule := uc.matchRule(ctx, rctx)

	assignee, reason, err := uc.selectAssignee(ctx, rule, res.DocType)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	due := domain.DueDate(res.Priority, res.DocType, now)
	assignment := &domain.Assignment{
		DocID:      res.DocumentID,
		UserID:     assignee.ID,
		AssignedBy: routingActor,
		Status:     domain.AssignmentAssigned,
		Priority:   res.Priority,
		DueDate:    &due,
		CreatedAt:  now,
	}

	if err := uc.assignments.Create(ctx, assignment); err != nil {
		return nil, fmt.Errorf("create assignment: %w", err)
	}

	if err := uc.docs.UpdateStatus(ctx, res.DocumentID, domain.StatusRouted); err != nil {
		return nil, fmt.Errorf("mark routed: %w", err)
	}

	details := map[string]any{
		"assigned_to": assignee.Username,
		"doc_type":    res.DocType,
		"priority":    res.Priority,
		"due_date":    due,
		"reason":      reason,
	}
	if rule != nil {
		details["rule_id"] = rule.ID
	}
	appendAudit(ctx, uc.audit, domain.EntityDocument, res.DocumentID, "routed", details)

	note := domain.AssignmentNotification{
		DocumentID:   res.DocumentID,
		AssignmentID: assignment.ID,
		AssignedTo:   assignee.Username,
		DocType:      res.DocType,
		Priority:     res.Priority,
		Reason:       reason,
	}
	if err := uc.queue.PublishAssignmentNotification(ctx, note); err != nil {
		slog.Warn("publish assignment notification", "doc_id", res.DocumentID, "error", err)
	}

	return assignment, nil
}

// matchRule returns the first active rule whose condition holds, or nil.
func (uc *RouteDocumentUseCase) matchRule(ctx context.Context, rctx domain.RuleContext) *domain.RoutingRule {
	rules, err := uc.rules.ListActive(ctx)
	if err != nil {
		slog.Warn("load routing rules", "error", err)
		return nil
	}

	// Highest priority first, rule id breaks ties.
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority > rules[j].Priority
		}
		return rules[i].ID < rules[j].ID
	})

	for i := range rules {
		if rules[i].Condition.Matches(rctx) {
			return &rules[i]
		}
	}
	return nil
}

// teamDepartment maps a team name to the department its members carry,
// so "legal-team" selects users in the "legal" department.
func teamDepartment(team string) string {
	return strings.TrimSuffix(team, "-team")
}

// selectAssignee resolves the matched rule (or the default team fallback)
// to a concrete user. A rule assignee is tried as a username first, then
// as a team name; the rule team and the per-type default team come after.
func (uc *RouteDocumentUseCase) selectAssignee(ctx context.Context, rule *domain.RoutingRule, docType string) (*domain.User, string, error) {
	var candidates []domain.User

	reason := ""
	if rule != nil && rule.Assignee != "" {
		user, err := uc.users.GetByUsername(ctx, rule.Assignee)
		if err == nil && user.IsActive {
			return user, fmt.Sprintf("rule %q", rule.Name), nil
		}
		if err != nil && !domain.IsKind(err, domain.ErrNotFound) {
			return nil, "", fmt.Errorf("resolve rule assignee: %w", err)
		}
		// Not an active username: treat the assignee as a team name.
		candidates, err = uc.users.ListActiveByDepartment(ctx, teamDepartment(rule.Assignee))
		if err != nil {
			return nil, "", fmt.Errorf("load team members: %w", err)
		}
		reason = fmt.Sprintf("rule %q", rule.Name)
	}

	if len(candidates) == 0 {
		team := domain.DefaultTeam(docType)
		reason = fmt.Sprintf("default team for %s", docType)
		if rule != nil && rule.Team != "" {
			team = rule.Team
			reason = fmt.Sprintf("rule %q", rule.Name)
		}
		var err error
		candidates, err = uc.users.ListActiveByDepartment(ctx, teamDepartment(team))
		if err != nil {
			return nil, "", fmt.Errorf("load team members: %w", err)
		}
	}

	if len(candidates) == 0 {
		var err error
		candidates, err = uc.users.ListActive(ctx)
		if err != nil {
			return nil, "", fmt.Errorf("load active users: %w", err)
		}
	}

	user, err := uc.findBestAssignee(ctx, candidates, docType)
	if err != nil {
		return nil, "", err
	}
	return user, reason, nil
}

// findBestAssignee picks the candidate with the lowest effective workload.
// Candidates whose skills match the document type get a bonus. A candidate
// at capacity is skipped unless everyone is saturated, in which case the
// least loaded one is assigned anyway.
func (uc *RouteDocumentUseCase) findBestAssignee(ctx context.Context, users []domain.User, docType string) (*domain.User, error) {
	if len(users) == 0 {
		return nil, domain.WrapError(domain.ErrTemporary, "select assignee", fmt.Errorf("no active users"))
	}

	type candidate struct {
		user *domain.User
		load float64
		full bool
	}

	candidates := make([]candidate, 0, len(users))
	for i := range users {
		user := &users[i]
		active, err := uc.assignments.CountActiveByUser(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("count active assignments: %w", err)
		}
		capacity := user.WorkloadCapacity
		if capacity < 1 {
			capacity = 1
		}
		load := float64(active) / float64(capacity)
		if user.HasSkill(docType) {
			load -= skillsBonus
		}
		candidates = append(candidates, candidate{
			user: user,
			load: load,
			full: active >= capacity,
		})
	}

	best := -1
	for i, c := range candidates {
		if c.full {
			continue
		}
		if best < 0 || c.load < candidates[best].load {
			best = i
		}
	}
	if best < 0 {
		// Everyone is saturated, assign to the least loaded anyway.
		for i, c := range candidates {
			if best < 0 || c.load < candidates[best].load {
				best = i
			}
		}
	}
	return candidates[best].user, nil
}

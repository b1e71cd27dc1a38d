package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/akarpov/docrouter/internal/core/domain"
	"github.com/akarpov/docrouter/internal/core/ports"
)

type ManageAssignmentsUseCase struct {
	assignments ports.AssignmentRepository
	audit       ports.AuditRepository
	now         func() time.Time
}

func NewManageAssignmentsUseCase(assignments ports.AssignmentRepository, audit ports.AuditRepository) *ManageAssignmentsUseCase {
	return &ManageAssignmentsUseCase{
		assignments: assignments,
		audit:       audit,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (uc *ManageAssignmentsUseCase) Get(ctx context.Context, id int64) (*domain.Assignment, error) {
	return uc.assignments.GetByID(ctx, id)
}

func (uc *ManageAssignmentsUseCase) List(ctx context.Context, filter ports.AssignmentFilter) ([]domain.Assignment, error) {
	return uc.assignments.List(ctx, filter)
}

func (uc *ManageAssignmentsUseCase) ListByDocument(ctx context.Context, docID string) ([]domain.Assignment, error) {
	return uc.assignments.ListByDocument(ctx, docID)
}

// Transition moves an assignment into the requested status. Completed
// assignments get their completion timestamp set.
func (uc *ManageAssignmentsUseCase) Transition(ctx context.Context, id int64, status domain.AssignmentStatus, actor string) (*domain.Assignment, error) {
	assignment, err := uc.assignments.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load assignment: %w", err)
	}

	if !assignment.Status.CanTransitionTo(status) {
		return nil, domain.WrapError(domain.ErrInvalidInput, "transition assignment",
			fmt.Errorf("cannot move from %s to %s", assignment.Status, status))
	}

	var completedAt *time.Time
	if status == domain.AssignmentCompleted {
		ts := uc.now()
		completedAt = &ts
	}
	if err := uc.assignments.UpdateStatus(ctx, id, status, completedAt); err != nil {
		return nil, fmt.Errorf("update assignment status: %w", err)
	}

	appendAudit(ctx, uc.audit, domain.EntityAssignment, fmt.Sprintf("%d", id), "status_changed", map[string]any{
		"from":  string(assignment.Status),
		"to":    string(status),
		"actor": actor,
	})

	assignment.Status = status
	assignment.CompletedAt = completedAt
	return assignment, nil
}

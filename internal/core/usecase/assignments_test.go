package usecase

import (
	"context"
	"testing"

	"github.com/akarpov/docrouter/internal/core/domain"
)

func TestAssignmentTransitionLifecycle(t *testing.T) {
	repo := newAssignRepoFake()
	repo.byID[1] = &domain.Assignment{ID: 1, DocID: "doc-1", UserID: "u1", Status: domain.AssignmentAssigned}
	uc := NewManageAssignmentsUseCase(repo, &auditRepoFake{})

	updated, err := uc.Transition(context.Background(), 1, domain.AssignmentInProgress, "u1")
	if err != nil {
		t.Fatalf("Transition() error = %v", err)
	}
	if updated.Status != domain.AssignmentInProgress {
		t.Fatalf("expected in_progress, got %s", updated.Status)
	}

	updated, err = uc.Transition(context.Background(), 1, domain.AssignmentCompleted, "u1")
	if err != nil {
		t.Fatalf("Transition() to completed error = %v", err)
	}
	if updated.CompletedAt == nil {
		t.Fatalf("expected completion timestamp")
	}
}

func TestAssignmentTransitionRejected(t *testing.T) {
	repo := newAssignRepoFake()
	repo.byID[1] = &domain.Assignment{ID: 1, Status: domain.AssignmentCompleted}
	uc := NewManageAssignmentsUseCase(repo, &auditRepoFake{})

	_, err := uc.Transition(context.Background(), 1, domain.AssignmentInProgress, "u1")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestAssignmentTransitionUnknownID(t *testing.T) {
	uc := NewManageAssignmentsUseCase(newAssignRepoFake(), &auditRepoFake{})

	_, err := uc.Transition(context.Background(), 42, domain.AssignmentInProgress, "u1")
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

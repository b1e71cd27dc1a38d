package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/akarpov/docrouter/internal/core/domain"
	"github.com/akarpov/docrouter/internal/core/ports"
)

type ManageUsersUseCase struct {
	users       ports.UserRepository
	assignments ports.AssignmentRepository
	audit       ports.AuditRepository
	now         func() time.Time
}

func NewManageUsersUseCase(users ports.UserRepository, assignments ports.AssignmentRepository, audit ports.AuditRepository) *ManageUsersUseCase {
	return &ManageUsersUseCase{
		users:       users,
		assignments: assignments,
		audit:       audit,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (uc *ManageUsersUseCase) Create(ctx context.Context, user *domain.User, actor string) (*domain.User, error) {
	if err := validateUser(user); err != nil {
		return nil, err
	}
	if user.Role == "" {
		user.Role = domain.RoleUser
	}
	if user.WorkloadCapacity <= 0 {
		user.WorkloadCapacity = domain.DefaultWorkloadCapacity
	}
	user.IsActive = true
	user.CreatedAt = uc.now()

	if err := uc.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	appendAudit(ctx, uc.audit, domain.EntityUser, user.ID, "created", map[string]any{
		"username":   user.Username,
		"department": user.Department,
		"actor":      actor,
	})
	return user, nil
}

func (uc *ManageUsersUseCase) Get(ctx context.Context, id string) (*domain.User, error) {
	return uc.users.GetByID(ctx, id)
}

func (uc *ManageUsersUseCase) List(ctx context.Context, filter ports.UserFilter) ([]domain.User, error) {
	return uc.users.List(ctx, filter)
}

func (uc *ManageUsersUseCase) Update(ctx context.Context, user *domain.User, actor string) (*domain.User, error) {
	if err := validateUser(user); err != nil {
		return nil, err
	}
	if user.WorkloadCapacity <= 0 {
		user.WorkloadCapacity = domain.DefaultWorkloadCapacity
	}
	if err := uc.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	appendAudit(ctx, uc.audit, domain.EntityUser, user.ID, "updated", map[string]any{
		"username":  user.Username,
		"is_active": user.IsActive,
		"actor":     actor,
	})
	return user, nil
}

// Workload reports the active assignment count against the user's capacity.
func (uc *ManageUsersUseCase) Workload(ctx context.Context, id string) (*domain.WorkloadSummary, error) {
	user, err := uc.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	active, err := uc.assignments.CountActiveByUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count active assignments: %w", err)
	}

	capacity := user.WorkloadCapacity
	if capacity <= 0 {
		capacity = domain.DefaultWorkloadCapacity
	}
	return &domain.WorkloadSummary{
		UserID:            user.ID,
		Username:          user.Username,
		ActiveAssignments: active,
		Capacity:          capacity,
		Utilization:       float64(active) / float64(capacity),
	}, nil
}

func validateUser(user *domain.User) error {
	if user.Username == "" {
		return domain.WrapError(domain.ErrInvalidInput, "validate user", fmt.Errorf("username is required"))
	}
	if user.Email == "" {
		return domain.WrapError(domain.ErrInvalidInput, "validate user", fmt.Errorf("email is required"))
	}
	if user.Role != "" && user.Role != domain.RoleUser && user.Role != domain.RoleAdmin {
		return domain.WrapError(domain.ErrInvalidInput, "validate user", fmt.Errorf("unknown role %q", user.Role))
	}
	return nil
}

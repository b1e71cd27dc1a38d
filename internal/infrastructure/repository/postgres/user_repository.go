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

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, email, full_name, role, department, skills, workload_capacity, timezone, is_active, created_at`

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	skillsJSON, err := json.Marshal(user.Skills)
	if err != nil {
		return fmt.Errorf("marshal skills: %w", err)
	}
	row := r.db.QueryRowContext(ctx, `
INSERT INTO users (username, email, full_name, role, department, skills, workload_capacity, timezone, is_active, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
RETURNING id
`,
		user.Username, user.Email, user.FullName, user.Role, user.Department,
		skillsJSON, user.WorkloadCapacity, user.Timezone, user.IsActive, user.CreatedAt,
	)
	if err := row.Scan(&user.ID); err != nil {
		return mapConstraintError("insert user", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get user", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get user", fmt.Errorf("username=%s", username))
		}
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return user, nil
}

func (r *UserRepository) List(ctx context.Context, filter ports.UserFilter) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE 1=1` + "\n"
	args := make([]any, 0, 4)
	if filter.Role != "" {
		args = append(args, filter.Role)
		query += fmt.Sprintf("AND role = $%d\n", len(args))
	}
	if filter.Department != "" {
		args = append(args, filter.Department)
		query += fmt.Sprintf("AND department = $%d\n", len(args))
	}
	query += "ORDER BY username ASC\n"

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
	return r.queryUsers(ctx, query, args...)
}

func (r *UserRepository) ListActive(ctx context.Context) ([]domain.User, error) {
	return r.queryUsers(ctx, `SELECT `+userColumns+` FROM users WHERE is_active ORDER BY username ASC`)
}

func (r *UserRepository) ListActiveByDepartment(ctx context.Context, department string) ([]domain.User, error) {
	return r.queryUsers(ctx, `SELECT `+userColumns+` FROM users WHERE is_active AND department = $1 ORDER BY username ASC`, department)
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	skillsJSON, err := json.Marshal(user.Skills)
	if err != nil {
		return fmt.Errorf("marshal skills: %w", err)
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE users
SET email = $2, full_name = $3, role = $4, department = $5, skills = $6, workload_capacity = $7, timezone = $8, is_active = $9
WHERE id = $1
`,
		user.ID, user.Email, user.FullName, user.Role, user.Department,
		skillsJSON, user.WorkloadCapacity, user.Timezone, user.IsActive,
	)
	if err != nil {
		return mapConstraintError("update user", err)
	}
	return requireAffected(result, "user", user.ID)
}

func (r *UserRepository) queryUsers(ctx context.Context, query string, args ...any) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	out := make([]domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}

func scanUser(row rowScanner) (*domain.User, error) {
	var user domain.User
	var fullName, role, department, timezone sql.NullString
	var skillsRaw []byte
	var capacity sql.NullInt64

	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &fullName, &role, &department,
		&skillsRaw, &capacity, &timezone, &user.IsActive, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(skillsRaw) > 0 {
		if err := json.Unmarshal(skillsRaw, &user.Skills); err != nil {
			return nil, fmt.Errorf("unmarshal skills: %w", err)
		}
	}
	user.FullName = fullName.String
	user.Role = role.String
	user.Department = department.String
	user.Timezone = timezone.String
	user.WorkloadCapacity = int(capacity.Int64)
	return &user, nil
}

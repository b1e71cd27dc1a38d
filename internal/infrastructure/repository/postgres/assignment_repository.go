package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/akarpov/docrouter/internal/core/domain"
	"github.com/akarpov/docrouter/internal/core/ports"
)

type AssignmentRepository struct {
	db *sql.DB
}

func NewAssignmentRepository(db *sql.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

const assignmentColumns = `id, doc_id, user_id, assigned_by, status, priority, due_date, completed_at, created_at`

func (r *AssignmentRepository) Create(ctx context.Context, assignment *domain.Assignment) error {
	row := r.db.QueryRowContext(ctx, `
INSERT INTO document_assignments (doc_id, user_id, assigned_by, status, priority, due_date, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING id
`,
		assignment.DocID, assignment.UserID, assignment.AssignedBy,
		string(assignment.Status), assignment.Priority, assignment.DueDate, assignment.CreatedAt,
	)
	if err := row.Scan(&assignment.ID); err != nil {
		return mapConstraintError("insert assignment", err)
	}
	return nil
}

func (r *AssignmentRepository) GetByID(ctx context.Context, id int64) (*domain.Assignment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+assignmentColumns+` FROM document_assignments WHERE id = $1`, id)
	assignment, err := scanAssignment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get assignment", fmt.Errorf("id=%d", id))
		}
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return assignment, nil
}

func (r *AssignmentRepository) List(ctx context.Context, filter ports.AssignmentFilter) ([]domain.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM document_assignments WHERE 1=1` + "\n"
	args := make([]any, 0, 3)
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf("AND status = $%d\n", len(args))
	}
	query += "ORDER BY created_at DESC\n"

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit)
	query += fmt.Sprintf("LIMIT $%d", len(args))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	return r.queryAssignments(ctx, query, args...)
}

func (r *AssignmentRepository) ListByDocument(ctx context.Context, docID string) ([]domain.Assignment, error) {
	return r.queryAssignments(ctx, `
SELECT `+assignmentColumns+`
FROM document_assignments
WHERE doc_id = $1
ORDER BY created_at DESC
`, docID)
}

func (r *AssignmentRepository) ListActiveByUser(ctx context.Context, userID string) ([]domain.Assignment, error) {
	return r.queryAssignments(ctx, `
SELECT `+assignmentColumns+`
FROM document_assignments
WHERE user_id = $1 AND status IN ('assigned', 'in_progress')
ORDER BY due_date ASC NULLS LAST
`, userID)
}

func (r *AssignmentRepository) CountActiveByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*)
FROM document_assignments
WHERE user_id = $1 AND status IN ('assigned', 'in_progress')
`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active assignments: %w", err)
	}
	return count, nil
}

func (r *AssignmentRepository) UpdateStatus(ctx context.Context, id int64, status domain.AssignmentStatus, completedAt *time.Time) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE document_assignments
SET status = $2, completed_at = $3
WHERE id = $1
`, id, string(status), completedAt)
	if err != nil {
		return fmt.Errorf("update assignment status: %w", err)
	}
	return requireAffected(result, "assignment", fmt.Sprintf("%d", id))
}

func (r *AssignmentRepository) queryAssignments(ctx context.Context, query string, args ...any) ([]domain.Assignment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query assignments: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Assignment, 0)
	for rows.Next() {
		assignment, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		out = append(out, *assignment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignments: %w", err)
	}
	return out, nil
}

func scanAssignment(row rowScanner) (*domain.Assignment, error) {
	var assignment domain.Assignment
	var assignedBy sql.NullString
	var status string
	var dueDate, completedAt sql.NullTime

	err := row.Scan(
		&assignment.ID, &assignment.DocID, &assignment.UserID, &assignedBy,
		&status, &assignment.Priority, &dueDate, &completedAt, &assignment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	assignment.AssignedBy = assignedBy.String
	assignment.Status = domain.AssignmentStatus(status)
	if dueDate.Valid {
		assignment.DueDate = &dueDate.Time
	}
	if completedAt.Valid {
		assignment.CompletedAt = &completedAt.Time
	}
	return &assignment, nil
}

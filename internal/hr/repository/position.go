package repository

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/google/uuid"
	"github.com/peopleops/hr-backend/pkg/database"
	"github.com/peopleops/hr-backend/pkg/errors"
)

// PositionRepository handles position persistence
type PositionRepository struct {
	q database.Queryer
}

// NewPositionRepository creates a new position repository
func NewPositionRepository(q database.Queryer) *PositionRepository {
	return &PositionRepository{q: q}
}

// Create inserts a new position
func (r *PositionRepository) Create(ctx context.Context, pos *Position) error {
	if pos.ID == "" {
		pos.ID = uuid.New().String()
	}

	query := `
		INSERT INTO positions (id, title, department_id, min_salary, max_salary)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	return r.q.QueryRowxContext(ctx, query,
		pos.ID, pos.Title, pos.DepartmentID, pos.MinSalary, pos.MaxSalary,
	).Scan(&pos.CreatedAt)
}

// GetByTitle gets a position by title, case-insensitively. A title scoped to
// the given department wins; a global position (no department) matches any
// department so the same title is not duplicated per department.
func (r *PositionRepository) GetByTitle(ctx context.Context, title string, departmentID *string) (*Position, error) {
	var pos Position
	query := `
		SELECT id, title, department_id, min_salary, max_salary, created_at
		FROM positions
		WHERE LOWER(title) = LOWER($1) AND (department_id = $2 OR department_id IS NULL)
		ORDER BY department_id NULLS LAST
		LIMIT 1
	`

	err := r.q.GetContext(ctx, &pos, query, title, departmentID)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFoundNamed("position", title)
	}
	if err != nil {
		return nil, err
	}

	return &pos, nil
}

// ReassignDepartment moves every position of one department to another.
// Used by department merges.
func (r *PositionRepository) ReassignDepartment(ctx context.Context, fromDeptID, toDeptID string) (int64, error) {
	result, err := r.q.ExecContext(ctx,
		`UPDATE positions SET department_id = $2 WHERE department_id = $1`,
		fromDeptID, toDeptID)
	if err != nil {
		return 0, err
	}

	moved, _ := result.RowsAffected()
	return moved, nil
}

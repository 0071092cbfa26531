package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/peopleops/hr-backend/pkg/database"
	"github.com/peopleops/hr-backend/pkg/errors"
)

const departmentColumns = `id, name, description, parent_id, manager_id, budget,
	cost_center, location, created_at, updated_at`

// DepartmentRepository handles department persistence
type DepartmentRepository struct {
	q database.Queryer
}

// NewDepartmentRepository creates a new department repository
func NewDepartmentRepository(q database.Queryer) *DepartmentRepository {
	return &DepartmentRepository{q: q}
}

// Create inserts a new department
func (r *DepartmentRepository) Create(ctx context.Context, dept *Department) error {
	if dept.ID == "" {
		dept.ID = uuid.New().String()
	}

	query := `
		INSERT INTO departments (id, name, description, parent_id, manager_id, budget, cost_center, location)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	return r.q.QueryRowxContext(ctx, query,
		dept.ID, dept.Name, dept.Description, dept.ParentID, dept.ManagerID,
		dept.Budget, dept.CostCenter, dept.Location,
	).Scan(&dept.CreatedAt, &dept.UpdatedAt)
}

// GetByID gets a department by id
func (r *DepartmentRepository) GetByID(ctx context.Context, id string) (*Department, error) {
	var dept Department
	query := `SELECT ` + departmentColumns + ` FROM departments WHERE id = $1`

	err := r.q.GetContext(ctx, &dept, query, id)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound("department")
	}
	if err != nil {
		return nil, err
	}

	return &dept, nil
}

// GetByName gets a department by exact name, case-insensitively
func (r *DepartmentRepository) GetByName(ctx context.Context, name string) (*Department, error) {
	var dept Department
	query := `SELECT ` + departmentColumns + ` FROM departments WHERE LOWER(name) = LOWER($1)`

	err := r.q.GetContext(ctx, &dept, query, name)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFoundNamed("department", name)
	}
	if err != nil {
		return nil, err
	}

	return &dept, nil
}

// List returns all departments ordered by name
func (r *DepartmentRepository) List(ctx context.Context) ([]*Department, error) {
	var depts []*Department
	query := `SELECT ` + departmentColumns + ` FROM departments ORDER BY name`

	if err := r.q.SelectContext(ctx, &depts, query); err != nil {
		return nil, err
	}
	return depts, nil
}

// UpdateFields applies a partial update built from an allow-listed field map
func (r *DepartmentRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return errors.NoChange()
	}

	cols := make([]string, 0, len(fields))
	for col := range fields {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	query := `UPDATE departments SET `
	args := make([]interface{}, 0, len(fields)+1)
	args = append(args, id)

	for i, col := range cols {
		if i > 0 {
			query += ", "
		}
		query += fmt.Sprintf("%s = $%d", col, i+2)
		args = append(args, fields[col])
	}
	query += ", updated_at = NOW() WHERE id = $1"

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("department")
	}

	return nil
}

// Delete removes a department row. Only reachable from a merge, after all
// references have moved to the target.
func (r *DepartmentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("department")
	}

	return nil
}

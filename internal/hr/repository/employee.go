package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/peopleops/hr-backend/pkg/database"
	"github.com/peopleops/hr-backend/pkg/errors"
)

const employeeColumns = `id, employee_no, first_name, last_name, email, phone,
	date_of_birth, gender, marital_status,
	address, city, state, country, postal_code,
	department_id, position_id, manager_id,
	hire_date, employment_status, employment_type, work_location,
	created_at, updated_at`

// EmployeeRepository handles employee persistence. It operates on a
// database.Queryer so the same methods run standalone or inside a
// transaction.
type EmployeeRepository struct {
	q database.Queryer
}

// NewEmployeeRepository creates a new employee repository
func NewEmployeeRepository(q database.Queryer) *EmployeeRepository {
	return &EmployeeRepository{q: q}
}

// NextEmployeeNo allocates the next employee key from the sequence
func (r *EmployeeRepository) NextEmployeeNo(ctx context.Context) (string, error) {
	var n int64
	if err := r.q.GetContext(ctx, &n, `SELECT nextval('employee_no_seq')`); err != nil {
		return "", fmt.Errorf("failed to allocate employee number: %w", err)
	}
	return fmt.Sprintf("EMP%05d", n), nil
}

// Create inserts a new employee
func (r *EmployeeRepository) Create(ctx context.Context, emp *Employee) error {
	if emp.ID == "" {
		emp.ID = uuid.New().String()
	}
	if emp.EmploymentStatus == "" {
		emp.EmploymentStatus = StatusActive
	}

	query := `
		INSERT INTO employees (
			id, employee_no, first_name, last_name, email, phone,
			date_of_birth, gender, marital_status,
			address, city, state, country, postal_code,
			department_id, position_id, manager_id,
			hire_date, employment_status, employment_type, work_location
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21
		) RETURNING created_at, updated_at
	`

	return r.q.QueryRowxContext(ctx, query,
		emp.ID, emp.EmployeeNo, emp.FirstName, emp.LastName, emp.Email, emp.Phone,
		emp.DateOfBirth, emp.Gender, emp.MaritalStatus,
		emp.Address, emp.City, emp.State, emp.Country, emp.PostalCode,
		emp.DepartmentID, emp.PositionID, emp.ManagerID,
		emp.HireDate, emp.EmploymentStatus, emp.EmploymentType, emp.WorkLocation,
	).Scan(&emp.CreatedAt, &emp.UpdatedAt)
}

// GetByID gets an employee by internal id
func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (*Employee, error) {
	var emp Employee
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	err := r.q.GetContext(ctx, &emp, query, id)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound("employee")
	}
	if err != nil {
		return nil, err
	}

	return &emp, nil
}

// GetByNo gets an employee by employee number (the external key)
func (r *EmployeeRepository) GetByNo(ctx context.Context, employeeNo string) (*Employee, error) {
	var emp Employee
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE employee_no = $1`

	err := r.q.GetContext(ctx, &emp, query, employeeNo)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFoundNamed("employee", employeeNo)
	}
	if err != nil {
		return nil, err
	}

	return &emp, nil
}

// UpdateFields applies a partial update built from an allow-listed field map.
// The service layer owns the allow-list; callers must not pass an empty map.
func (r *EmployeeRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return errors.NoChange()
	}

	// Deterministic column order keeps the query stable for tests
	cols := make([]string, 0, len(fields))
	for col := range fields {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	query := `UPDATE employees SET `
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
		return errors.NotFound("employee")
	}

	return nil
}

// SetStatus sets the employment status
func (r *EmployeeRepository) SetStatus(ctx context.Context, id, status string) error {
	query := `UPDATE employees SET employment_status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.q.ExecContext(ctx, query, id, status)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("employee")
	}

	return nil
}

// FindActiveByFirstName finds active employees whose first name contains the
// given fragment, case-insensitively
func (r *EmployeeRepository) FindActiveByFirstName(ctx context.Context, fragment string) ([]*Employee, error) {
	var emps []*Employee
	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE employment_status = 'active' AND first_name ILIKE '%' || $1 || '%'
		ORDER BY employee_no
	`

	if err := r.q.SelectContext(ctx, &emps, query, fragment); err != nil {
		return nil, err
	}
	return emps, nil
}

// FindActiveByFullName finds active employees matching first and last name
// exactly, case-insensitively
func (r *EmployeeRepository) FindActiveByFullName(ctx context.Context, first, last string) ([]*Employee, error) {
	var emps []*Employee
	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE employment_status = 'active' AND LOWER(first_name) = LOWER($1) AND LOWER(last_name) = LOWER($2)
		ORDER BY employee_no
	`

	if err := r.q.SelectContext(ctx, &emps, query, first, last); err != nil {
		return nil, err
	}
	return emps, nil
}

// ReassignDepartment moves every employee of one department to another.
// Used by department merges.
func (r *EmployeeRepository) ReassignDepartment(ctx context.Context, fromDeptID, toDeptID string) (int64, error) {
	result, err := r.q.ExecContext(ctx,
		`UPDATE employees SET department_id = $2, updated_at = NOW() WHERE department_id = $1`,
		fromDeptID, toDeptID)
	if err != nil {
		return 0, err
	}

	moved, _ := result.RowsAffected()
	return moved, nil
}

// OrgEmployee is the minimal projection used to build the reporting forest
type OrgEmployee struct {
	ID             string  `db:"id"`
	EmployeeNo     string  `db:"employee_no"`
	FirstName      string  `db:"first_name"`
	LastName       string  `db:"last_name"`
	ManagerID      *string `db:"manager_id"`
	DepartmentID   *string `db:"department_id"`
	DepartmentName *string `db:"department_name"`
	PositionTitle  *string `db:"position_title"`
}

// ListForOrgChart loads the active workforce joined with department and
// position labels, optionally scoped to one department.
func (r *EmployeeRepository) ListForOrgChart(ctx context.Context, departmentID *string) ([]*OrgEmployee, error) {
	query := `
		SELECT e.id, e.employee_no, e.first_name, e.last_name, e.manager_id, e.department_id,
		       d.name AS department_name, p.title AS position_title
		FROM employees e
		LEFT JOIN departments d ON d.id = e.department_id
		LEFT JOIN positions p ON p.id = e.position_id
		WHERE e.employment_status = 'active'
	`
	args := []interface{}{}
	if departmentID != nil {
		query += ` AND e.department_id = $1`
		args = append(args, *departmentID)
	}
	query += ` ORDER BY e.employee_no`

	var emps []*OrgEmployee
	if err := r.q.SelectContext(ctx, &emps, query, args...); err != nil {
		return nil, err
	}
	return emps, nil
}

// AverageTenureYears returns average tenure in years across active employees
func (r *EmployeeRepository) AverageTenureYears(ctx context.Context, now time.Time) (float64, error) {
	var avg sql.NullFloat64
	query := `
		SELECT AVG(EXTRACT(EPOCH FROM ($1::date - hire_date)) / 31557600.0)
		FROM employees WHERE employment_status = 'active'
	`
	if err := r.q.GetContext(ctx, &avg, query, now); err != nil {
		return 0, err
	}
	return avg.Float64, nil
}

package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/peopleops/hr-backend/pkg/database"
)

// SalaryRepository handles salary history persistence
type SalaryRepository struct {
	q database.Queryer
}

// NewSalaryRepository creates a new salary repository
func NewSalaryRepository(q database.Queryer) *SalaryRepository {
	return &SalaryRepository{q: q}
}

// Create inserts a new salary record
func (r *SalaryRepository) Create(ctx context.Context, sal *Salary) error {
	if sal.ID == "" {
		sal.ID = uuid.New().String()
	}
	if sal.Currency == "" {
		sal.Currency = "USD"
	}

	query := `
		INSERT INTO salaries (id, employee_id, base_salary, bonus, commission, currency, effective_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	return r.q.QueryRowxContext(ctx, query,
		sal.ID, sal.EmployeeID, sal.BaseSalary, sal.Bonus, sal.Commission,
		sal.Currency, sal.EffectiveDate, sal.EndDate,
	).Scan(&sal.CreatedAt)
}

// GetCurrent returns the open salary record, or nil when the employee has
// no salary history.
func (r *SalaryRepository) GetCurrent(ctx context.Context, employeeID string) (*Salary, error) {
	var sal Salary
	query := `
		SELECT id, employee_id, base_salary, bonus, commission, currency, effective_date, end_date, created_at
		FROM salaries
		WHERE employee_id = $1 AND end_date IS NULL
		ORDER BY effective_date DESC
		LIMIT 1
	`

	err := r.q.GetContext(ctx, &sal, query, employeeID)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &sal, nil
}

// CloseCurrent sets end_date on the open salary record. Returns the number
// of rows closed; zero means there was nothing open.
func (r *SalaryRepository) CloseCurrent(ctx context.Context, employeeID string, endDate time.Time) (int64, error) {
	result, err := r.q.ExecContext(ctx,
		`UPDATE salaries SET end_date = $2 WHERE employee_id = $1 AND end_date IS NULL`,
		employeeID, endDate)
	if err != nil {
		return 0, err
	}

	closed, _ := result.RowsAffected()
	return closed, nil
}

// History returns the full salary history, newest first
func (r *SalaryRepository) History(ctx context.Context, employeeID string) ([]*Salary, error) {
	var sals []*Salary
	query := `
		SELECT id, employee_id, base_salary, bonus, commission, currency, effective_date, end_date, created_at
		FROM salaries
		WHERE employee_id = $1
		ORDER BY effective_date DESC
	`

	if err := r.q.SelectContext(ctx, &sals, query, employeeID); err != nil {
		return nil, err
	}
	return sals, nil
}

package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/peopleops/hr-backend/pkg/database"
	"github.com/peopleops/hr-backend/pkg/errors"
)

// LeaveRepository handles leave types, balances and requests
type LeaveRepository struct {
	q database.Queryer
}

// NewLeaveRepository creates a new leave repository
func NewLeaveRepository(q database.Queryer) *LeaveRepository {
	return &LeaveRepository{q: q}
}

// GetTypeByName gets a leave type by name, case-insensitively
func (r *LeaveRepository) GetTypeByName(ctx context.Context, name string) (*LeaveType, error) {
	var lt LeaveType
	query := `
		SELECT id, name, default_days, carry_forward_days, description
		FROM leave_types WHERE LOWER(name) = LOWER($1)
	`

	err := r.q.GetContext(ctx, &lt, query, name)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFoundNamed("leave type", name)
	}
	if err != nil {
		return nil, err
	}

	return &lt, nil
}

// ListTypes returns all leave types
func (r *LeaveRepository) ListTypes(ctx context.Context) ([]*LeaveType, error) {
	var types []*LeaveType
	query := `SELECT id, name, default_days, carry_forward_days, description FROM leave_types ORDER BY name`

	if err := r.q.SelectContext(ctx, &types, query); err != nil {
		return nil, err
	}
	return types, nil
}

// CreateBalance inserts a leave balance row
func (r *LeaveRepository) CreateBalance(ctx context.Context, bal *LeaveBalance) error {
	query := `
		INSERT INTO leave_balances (employee_id, leave_type_id, year, entitled_days, used_days, carried_forward, remaining_days)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.q.ExecContext(ctx, query,
		bal.EmployeeID, bal.LeaveTypeID, bal.Year,
		bal.EntitledDays, bal.UsedDays, bal.CarriedForward, bal.RemainingDays,
	)
	return err
}

// GetBalance gets the balance row for one employee, type and year. Returns
// nil when no row exists.
func (r *LeaveRepository) GetBalance(ctx context.Context, employeeID, leaveTypeID string, year int) (*LeaveBalance, error) {
	var bal LeaveBalance
	query := `
		SELECT employee_id, leave_type_id, year, entitled_days, used_days, carried_forward, remaining_days
		FROM leave_balances
		WHERE employee_id = $1 AND leave_type_id = $2 AND year = $3
	`

	err := r.q.GetContext(ctx, &bal, query, employeeID, leaveTypeID, year)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &bal, nil
}

// ListBalances returns an employee's balances for a year joined with the
// leave type name
func (r *LeaveRepository) ListBalances(ctx context.Context, employeeID string, year int) ([]*LeaveBalance, error) {
	var bals []*LeaveBalance
	query := `
		SELECT b.employee_id, b.leave_type_id, b.year, b.entitled_days, b.used_days,
		       b.carried_forward, b.remaining_days, t.name AS leave_type_name
		FROM leave_balances b
		JOIN leave_types t ON t.id = b.leave_type_id
		WHERE b.employee_id = $1 AND b.year = $2
		ORDER BY t.name
	`

	if err := r.q.SelectContext(ctx, &bals, query, employeeID, year); err != nil {
		return nil, err
	}
	return bals, nil
}

// DecrementBalance consumes days from a balance with a single conditional
// update. The guard makes concurrent approvals race-safe: whichever update
// runs second sees the already-decremented remaining_days and matches zero
// rows instead of driving the balance negative.
func (r *LeaveRepository) DecrementBalance(ctx context.Context, employeeID, leaveTypeID string, year int, days float64) (bool, error) {
	query := `
		UPDATE leave_balances
		SET used_days = used_days + $4, remaining_days = remaining_days - $4
		WHERE employee_id = $1 AND leave_type_id = $2 AND year = $3 AND remaining_days >= $4
	`

	result, err := r.q.ExecContext(ctx, query, employeeID, leaveTypeID, year, days)
	if err != nil {
		return false, err
	}

	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

// CreateRequest inserts a pending leave request
func (r *LeaveRepository) CreateRequest(ctx context.Context, req *LeaveRequest) error {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if req.Status == "" {
		req.Status = LeaveStatusPending
	}

	query := `
		INSERT INTO leave_requests (id, employee_id, leave_type_id, start_date, end_date, days_requested, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	return r.q.QueryRowxContext(ctx, query,
		req.ID, req.EmployeeID, req.LeaveTypeID, req.StartDate, req.EndDate,
		req.DaysRequested, req.Reason, req.Status,
	).Scan(&req.CreatedAt)
}

// GetRequest gets a leave request by id
func (r *LeaveRepository) GetRequest(ctx context.Context, id string) (*LeaveRequest, error) {
	var req LeaveRequest
	query := `
		SELECT r.id, r.employee_id, r.leave_type_id, r.start_date, r.end_date, r.days_requested,
		       r.reason, r.status, r.approved_by, r.approval_date, r.comments, r.created_at,
		       t.name AS leave_type_name
		FROM leave_requests r
		JOIN leave_types t ON t.id = r.leave_type_id
		WHERE r.id = $1
	`

	err := r.q.GetContext(ctx, &req, query, id)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound("leave request")
	}
	if err != nil {
		return nil, err
	}

	return &req, nil
}

// DecideRequest records the decision on a pending request. The status guard
// in the predicate keeps a second decision from overwriting the first.
func (r *LeaveRepository) DecideRequest(ctx context.Context, id, approverID, status string, comments *string, decidedAt time.Time) (bool, error) {
	query := `
		UPDATE leave_requests
		SET status = $3, approved_by = $2, approval_date = $4, comments = $5
		WHERE id = $1 AND status = 'pending'
	`

	result, err := r.q.ExecContext(ctx, query, id, approverID, status, decidedAt, comments)
	if err != nil {
		return false, err
	}

	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

// ListPendingForYear returns an employee's pending requests starting in the
// given year
func (r *LeaveRepository) ListPendingForYear(ctx context.Context, employeeID string, year int) ([]*LeaveRequest, error) {
	var reqs []*LeaveRequest
	query := `
		SELECT r.id, r.employee_id, r.leave_type_id, r.start_date, r.end_date, r.days_requested,
		       r.reason, r.status, r.approved_by, r.approval_date, r.comments, r.created_at,
		       t.name AS leave_type_name
		FROM leave_requests r
		JOIN leave_types t ON t.id = r.leave_type_id
		WHERE r.employee_id = $1 AND r.status = 'pending'
		  AND EXTRACT(YEAR FROM r.start_date) = $2
		ORDER BY r.start_date
	`

	if err := r.q.SelectContext(ctx, &reqs, query, employeeID, year); err != nil {
		return nil, err
	}
	return reqs, nil
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/peopleops/hr-backend/internal/hr/accrual"
	"github.com/peopleops/hr-backend/internal/hr/events"
	"github.com/peopleops/hr-backend/internal/hr/repository"
	"github.com/peopleops/hr-backend/pkg/database"
	"github.com/peopleops/hr-backend/pkg/errors"
	"github.com/peopleops/hr-backend/pkg/logger"
)

// Decision is the closed set of outcomes for a pending leave request
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// ParseDecision parses a decision string, case-insensitively
func ParseDecision(s string) (Decision, error) {
	switch Decision(strings.ToLower(strings.TrimSpace(s))) {
	case DecisionApprove:
		return DecisionApprove, nil
	case DecisionReject:
		return DecisionReject, nil
	default:
		return "", errors.Validation("decision", fmt.Sprintf("decision must be %q or %q", DecisionApprove, DecisionReject))
	}
}

// LeaveService handles leave requests and balances
type LeaveService struct {
	db        *database.DB
	publisher *events.HREventPublisher
	audit     *auditor
	validate  *validator.Validate
	logger    *logger.Logger
}

// NewLeaveService creates a new leave service
func NewLeaveService(db *database.DB, publisher *events.HREventPublisher, log *logger.Logger) *LeaveService {
	return &LeaveService{
		db:        db,
		publisher: publisher,
		audit:     newAuditor(db, log),
		validate:  validator.New(),
		logger:    log,
	}
}

// RequestLeaveInput is the input for a leave request
type RequestLeaveInput struct {
	EmployeeRef
	LeaveType string  `json:"leave_type" validate:"required"`
	StartDate string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string  `json:"end_date" validate:"required,datetime=2006-01-02"`
	Reason    *string `json:"reason,omitempty"`
}

// RequestLeaveResult reports the created request and the balance it would
// leave once approved
type RequestLeaveResult struct {
	RequestID          string  `json:"request_id"`
	EmployeeID         string  `json:"employee_id"`
	LeaveType          string  `json:"leave_type"`
	Days               float64 `json:"days"`
	ProjectedRemaining float64 `json:"projected_remaining"`
}

// RequestLeave creates a pending leave request after checking the balance.
// The balance is not decremented here; that happens on approval.
func (s *LeaveService) RequestLeave(ctx context.Context, input *RequestLeaveInput) (*RequestLeaveResult, error) {
	if err := validateStruct(s.validate, input); err != nil {
		return nil, err
	}

	start, err := parseDate("start_date", input.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate("end_date", input.EndDate)
	if err != nil {
		return nil, err
	}

	days, err := accrual.LeaveDays(start, end)
	if err != nil {
		return nil, err
	}

	var (
		result *RequestLeaveResult
		req    *repository.LeaveRequest
	)

	err = s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		emp, err := resolveEmployee(ctx, tx, input.EmployeeRef)
		if err != nil {
			return err
		}

		leaves := repository.NewLeaveRepository(tx)

		leaveType, err := leaves.GetTypeByName(ctx, input.LeaveType)
		if err != nil {
			return err
		}

		balance, err := leaves.GetBalance(ctx, emp.ID, leaveType.ID, start.Year())
		if err != nil {
			return err
		}

		remaining := 0.0
		if balance != nil {
			remaining = balance.RemainingDays
		}
		if remaining < days {
			return errors.InsufficientBalance(leaveType.Name, days, remaining)
		}

		req = &repository.LeaveRequest{
			EmployeeID:    emp.ID,
			LeaveTypeID:   leaveType.ID,
			StartDate:     start,
			EndDate:       end,
			DaysRequested: days,
			Reason:        input.Reason,
		}
		if err := leaves.CreateRequest(ctx, req); err != nil {
			return err
		}
		req.LeaveTypeName = leaveType.Name

		result = &RequestLeaveResult{
			RequestID:          req.ID,
			EmployeeID:         emp.EmployeeNo,
			LeaveType:          leaveType.Name,
			Days:               days,
			ProjectedRemaining: remaining - days,
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.record(ctx, "request", "leave_request", result.RequestID, nil, result)
	s.publisher.PublishLeaveRequested(ctx, req, result.EmployeeID)

	s.logger.Info().
		Str("request_id", result.RequestID).
		Str("employee_no", result.EmployeeID).
		Str("leave_type", result.LeaveType).
		Float64("days", days).
		Msg("leave requested")

	return result, nil
}

// DecideLeave approves or rejects a pending request. Approval consumes the
// balance through a conditional decrement, so two approvals racing over the
// same balance cannot overspend it.
func (s *LeaveService) DecideLeave(ctx context.Context, requestID string, approver EmployeeRef, decision Decision, comments *string) error {
	if requestID == "" {
		return errors.Validation("request_id", "request id is required")
	}

	var (
		req        *repository.LeaveRequest
		employeeNo string
	)

	err := s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		leaves := repository.NewLeaveRepository(tx)
		employees := repository.NewEmployeeRepository(tx)

		var err error
		req, err = leaves.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if req.Status != repository.LeaveStatusPending {
			return errors.AlreadyDecided(req.Status)
		}

		approverEmp, err := resolveEmployee(ctx, tx, approver)
		if err != nil {
			return err
		}

		emp, err := employees.GetByID(ctx, req.EmployeeID)
		if err != nil {
			return err
		}
		employeeNo = emp.EmployeeNo

		status := repository.LeaveStatusRejected
		if decision == DecisionApprove {
			status = repository.LeaveStatusApproved

			year := req.StartDate.Year()
			applied, err := leaves.DecrementBalance(ctx, req.EmployeeID, req.LeaveTypeID, year, req.DaysRequested)
			if err != nil {
				return err
			}
			if !applied {
				remaining := 0.0
				if balance, err := leaves.GetBalance(ctx, req.EmployeeID, req.LeaveTypeID, year); err == nil && balance != nil {
					remaining = balance.RemainingDays
				}
				return errors.InsufficientBalance(req.LeaveTypeName, req.DaysRequested, remaining)
			}
		}

		decided, err := leaves.DecideRequest(ctx, req.ID, approverEmp.ID, status, comments, time.Now().UTC())
		if err != nil {
			return err
		}
		if !decided {
			return errors.AlreadyDecided(req.Status)
		}

		req.Status = status
		req.ApprovedBy = &approverEmp.ID
		req.Comments = comments
		return nil
	})
	if err != nil {
		return err
	}

	s.audit.record(ctx, string(decision), "leave_request", req.ID, nil, req)
	if req.Status == repository.LeaveStatusApproved {
		s.publisher.PublishLeaveApproved(ctx, req, employeeNo)
	} else {
		s.publisher.PublishLeaveRejected(ctx, req, employeeNo)
	}

	s.logger.Info().
		Str("request_id", req.ID).
		Str("employee_no", employeeNo).
		Str("status", req.Status).
		Msg("leave request decided")

	return nil
}

// LeaveBalanceResult is the balance sheet for one employee and year
type LeaveBalanceResult struct {
	EmployeeID string                     `json:"employee_id"`
	Name       string                     `json:"name"`
	Year       int                        `json:"year"`
	Balances   []*repository.LeaveBalance `json:"balances"`
	Pending    []*repository.LeaveRequest `json:"pending_requests"`
}

// GetLeaveBalance returns an employee's balances and pending requests for a
// year, defaulting to the current year
func (s *LeaveService) GetLeaveBalance(ctx context.Context, ref EmployeeRef, year int) (*LeaveBalanceResult, error) {
	if year == 0 {
		year = time.Now().UTC().Year()
	}

	emp, err := resolveEmployee(ctx, s.db, ref)
	if err != nil {
		return nil, err
	}

	leaves := repository.NewLeaveRepository(s.db)

	balances, err := leaves.ListBalances(ctx, emp.ID, year)
	if err != nil {
		return nil, err
	}
	pending, err := leaves.ListPendingForYear(ctx, emp.ID, year)
	if err != nil {
		return nil, err
	}

	return &LeaveBalanceResult{
		EmployeeID: emp.EmployeeNo,
		Name:       emp.FullName(),
		Year:       year,
		Balances:   balances,
		Pending:    pending,
	}, nil
}

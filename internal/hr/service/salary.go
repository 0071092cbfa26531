package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/peopleops/hr-backend/internal/hr/events"
	"github.com/peopleops/hr-backend/internal/hr/repository"
	"github.com/peopleops/hr-backend/pkg/database"
	"github.com/peopleops/hr-backend/pkg/logger"
)

// SalaryService handles salary history rotation
type SalaryService struct {
	db        *database.DB
	publisher *events.HREventPublisher
	audit     *auditor
	validate  *validator.Validate
	logger    *logger.Logger
}

// NewSalaryService creates a new salary service
func NewSalaryService(db *database.DB, publisher *events.HREventPublisher, log *logger.Logger) *SalaryService {
	return &SalaryService{
		db:        db,
		publisher: publisher,
		audit:     newAuditor(db, log),
		validate:  validator.New(),
		logger:    log,
	}
}

// UpdateSalaryInput is the input for a salary change
type UpdateSalaryInput struct {
	EmployeeRef
	NewSalary     float64  `json:"new_salary" validate:"required,gt=0"`
	Bonus         *float64 `json:"bonus,omitempty" validate:"omitempty,gte=0"`
	Commission    *float64 `json:"commission,omitempty" validate:"omitempty,gte=0"`
	EffectiveDate *string  `json:"effective_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateSalaryResult reports the rotation
type UpdateSalaryResult struct {
	EmployeeID     string   `json:"employee_id"`
	PreviousSalary *float64 `json:"previous_salary,omitempty"`
	NewSalary      float64  `json:"new_salary"`
	EffectiveDate  string   `json:"effective_date"`
}

// UpdateSalary closes the open salary record the day before the effective
// date and opens a new one. History is never overwritten.
func (s *SalaryService) UpdateSalary(ctx context.Context, input *UpdateSalaryInput) (*UpdateSalaryResult, error) {
	if err := validateStruct(s.validate, input); err != nil {
		return nil, err
	}

	effective, err := parseOptionalDate("effective_date", input.EffectiveDate, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	var (
		result   *UpdateSalaryResult
		previous *repository.Salary
	)

	err = s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		emp, err := resolveEmployee(ctx, tx, input.EmployeeRef)
		if err != nil {
			return err
		}

		salaries := repository.NewSalaryRepository(tx)

		previous, err = salaries.GetCurrent(ctx, emp.ID)
		if err != nil {
			return err
		}
		if previous != nil {
			if _, err := salaries.CloseCurrent(ctx, emp.ID, effective.AddDate(0, 0, -1)); err != nil {
				return err
			}
		}

		next := &repository.Salary{
			EmployeeID:    emp.ID,
			BaseSalary:    input.NewSalary,
			EffectiveDate: effective,
		}
		if input.Bonus != nil {
			next.Bonus = *input.Bonus
		}
		next.Commission = input.Commission

		if err := salaries.Create(ctx, next); err != nil {
			return err
		}

		result = &UpdateSalaryResult{
			EmployeeID:    emp.EmployeeNo,
			NewSalary:     input.NewSalary,
			EffectiveDate: effective.Format(dateLayout),
		}
		if previous != nil {
			result.PreviousSalary = &previous.BaseSalary
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.record(ctx, "update", "salary", result.EmployeeID, previous, result)
	s.publisher.PublishSalaryUpdated(ctx, result.EmployeeID, result.NewSalary, result.EffectiveDate)

	s.logger.Info().
		Str("employee_no", result.EmployeeID).
		Float64("new_salary", result.NewSalary).
		Str("effective_date", result.EffectiveDate).
		Msg("salary updated")

	return result, nil
}

// SalaryHistoryResult is an employee's salary records, newest first
type SalaryHistoryResult struct {
	EmployeeID string               `json:"employee_id"`
	Name       string               `json:"name"`
	History    []*repository.Salary `json:"history"`
}

// GetSalaryHistory returns the full salary history for an employee
func (s *SalaryService) GetSalaryHistory(ctx context.Context, ref EmployeeRef) (*SalaryHistoryResult, error) {
	emp, err := resolveEmployee(ctx, s.db, ref)
	if err != nil {
		return nil, err
	}

	history, err := repository.NewSalaryRepository(s.db).History(ctx, emp.ID)
	if err != nil {
		return nil, err
	}

	return &SalaryHistoryResult{
		EmployeeID: emp.EmployeeNo,
		Name:       emp.FullName(),
		History:    history,
	}, nil
}

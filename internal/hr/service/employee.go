package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/peopleops/hr-backend/internal/hr/accrual"
	"github.com/peopleops/hr-backend/internal/hr/events"
	"github.com/peopleops/hr-backend/internal/hr/repository"
	"github.com/peopleops/hr-backend/internal/hr/resolver"
	"github.com/peopleops/hr-backend/pkg/database"
	"github.com/peopleops/hr-backend/pkg/errors"
	"github.com/peopleops/hr-backend/pkg/logger"
)

// employeeUpdateFields is the allow-list for partial employee updates.
// Anything else in the caller's delta is silently dropped.
var employeeUpdateFields = map[string]bool{
	"first_name":        true,
	"last_name":         true,
	"email":             true,
	"phone":             true,
	"department_id":     true,
	"position_id":       true,
	"manager_id":        true,
	"employment_status": true,
	"work_location":     true,
}

// EmployeeService handles employee lifecycle operations
type EmployeeService struct {
	db        *database.DB
	publisher *events.HREventPublisher
	audit     *auditor
	validate  *validator.Validate
	logger    *logger.Logger
}

// NewEmployeeService creates a new employee service
func NewEmployeeService(db *database.DB, publisher *events.HREventPublisher, log *logger.Logger) *EmployeeService {
	return &EmployeeService{
		db:        db,
		publisher: publisher,
		audit:     newAuditor(db, log),
		validate:  validator.New(),
		logger:    log,
	}
}

// AddEmployeeInput is the input for creating an employee
type AddEmployeeInput struct {
	FirstName     string  `json:"first_name" validate:"required"`
	LastName      string  `json:"last_name" validate:"required"`
	Email         string  `json:"email" validate:"required,email"`
	Phone         *string `json:"phone,omitempty"`
	DateOfBirth   *string `json:"date_of_birth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Gender        *string `json:"gender,omitempty"`
	MaritalStatus *string `json:"marital_status,omitempty"`

	Address    *string `json:"address,omitempty"`
	City       *string `json:"city,omitempty"`
	State      *string `json:"state,omitempty"`
	Country    *string `json:"country,omitempty"`
	PostalCode *string `json:"postal_code,omitempty"`

	Department  *string `json:"department,omitempty"`
	Position    *string `json:"position,omitempty"`
	ManagerName *string `json:"manager_name,omitempty"`

	HireDate       *string  `json:"hire_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EmploymentType *string  `json:"employment_type,omitempty"`
	WorkLocation   *string  `json:"work_location,omitempty"`
	Salary         *float64 `json:"salary,omitempty" validate:"omitempty,gt=0"`
}

// AddEmployeeResult reports the created employee
type AddEmployeeResult struct {
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
	HireDate   string `json:"hire_date"`
}

// AddEmployee creates an employee with department and position resolved
// create-on-miss, an opening salary record, and first-year leave balances.
// Everything happens in one transaction.
func (s *EmployeeService) AddEmployee(ctx context.Context, input *AddEmployeeInput) (*AddEmployeeResult, error) {
	if err := validateStruct(s.validate, input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	hireDate, err := parseOptionalDate("hire_date", input.HireDate, now)
	if err != nil {
		return nil, err
	}

	var dateOfBirth *time.Time
	if input.DateOfBirth != nil && *input.DateOfBirth != "" {
		dob, err := parseDate("date_of_birth", *input.DateOfBirth)
		if err != nil {
			return nil, err
		}
		dateOfBirth = &dob
	}

	var emp *repository.Employee

	err = s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		res := resolver.New(tx)
		employees := repository.NewEmployeeRepository(tx)

		var departmentID, positionID, managerID *string

		if input.Department != nil && *input.Department != "" {
			dept, err := res.EnsureDepartment(ctx, *input.Department)
			if err != nil {
				return err
			}
			if dept.Created {
				s.logger.Info().Str("department", *input.Department).Msg("department created on the fly")
			}
			departmentID = &dept.Key
		}

		if input.Position != nil && *input.Position != "" {
			pos, err := res.EnsurePosition(ctx, *input.Position, departmentID)
			if err != nil {
				return err
			}
			if pos.Created {
				s.logger.Info().Str("position", *input.Position).Msg("position created on the fly")
			}
			positionID = &pos.Key
		}

		// Manager resolution is best-effort: a name that does not resolve
		// leaves the employee without a manager instead of failing the hire
		if input.ManagerName != nil && *input.ManagerName != "" {
			manager, err := res.ResolveEmployee(ctx, *input.ManagerName)
			if err != nil {
				if !errors.Is(err, errors.ErrNotFound) && !errors.Is(err, errors.ErrAmbiguous) {
					return err
				}
				s.logger.Warn().Str("manager_name", *input.ManagerName).Msg("manager did not resolve, leaving unset")
			} else {
				managerID = &manager.ID
			}
		}

		employeeNo, err := employees.NextEmployeeNo(ctx)
		if err != nil {
			return err
		}

		emp = &repository.Employee{
			EmployeeNo:       employeeNo,
			FirstName:        input.FirstName,
			LastName:         input.LastName,
			Email:            input.Email,
			Phone:            input.Phone,
			DateOfBirth:      dateOfBirth,
			Gender:           input.Gender,
			MaritalStatus:    input.MaritalStatus,
			Address:          input.Address,
			City:             input.City,
			State:            input.State,
			Country:          orDefault(input.Country, "USA"),
			PostalCode:       input.PostalCode,
			DepartmentID:     departmentID,
			PositionID:       positionID,
			ManagerID:        managerID,
			HireDate:         hireDate,
			EmploymentStatus: repository.StatusActive,
			EmploymentType:   orDefault(input.EmploymentType, "full-time"),
			WorkLocation:     orDefault(input.WorkLocation, "office"),
		}
		if err := employees.Create(ctx, emp); err != nil {
			return err
		}

		if input.Salary != nil {
			salaries := repository.NewSalaryRepository(tx)
			if err := salaries.Create(ctx, &repository.Salary{
				EmployeeID:    emp.ID,
				BaseSalary:    *input.Salary,
				EffectiveDate: hireDate,
			}); err != nil {
				return err
			}
		}

		return s.seedLeaveBalances(ctx, tx, emp.ID, hireDate, now.Year())
	})
	if err != nil {
		return nil, err
	}

	s.audit.record(ctx, "create", "employee", emp.EmployeeNo, nil, emp)
	s.publisher.PublishEmployeeCreated(ctx, emp)

	s.logger.Info().
		Str("employee_no", emp.EmployeeNo).
		Str("name", emp.FullName()).
		Msg("employee created")

	return &AddEmployeeResult{
		EmployeeID: emp.EmployeeNo,
		Name:       emp.FullName(),
		HireDate:   emp.HireDate.Format(dateLayout),
	}, nil
}

// seedLeaveBalances creates a balance row per leave type for the given
// year, pro-rating entitlements for mid-year hires
func (s *EmployeeService) seedLeaveBalances(ctx context.Context, tx *sqlx.Tx, employeeID string, hireDate time.Time, year int) error {
	leaves := repository.NewLeaveRepository(tx)

	types, err := leaves.ListTypes(ctx)
	if err != nil {
		return err
	}

	for _, lt := range types {
		entitled := accrual.Prorate(lt.DefaultDays, hireDate, year)
		if err := leaves.CreateBalance(ctx, &repository.LeaveBalance{
			EmployeeID:    employeeID,
			LeaveTypeID:   lt.ID,
			Year:          year,
			EntitledDays:  entitled,
			RemainingDays: entitled,
		}); err != nil {
			return err
		}
	}

	return nil
}

// UpdateEmployee applies an allow-listed partial update. Unknown fields in
// the delta are dropped; an empty effective delta is NO_CHANGE.
func (s *EmployeeService) UpdateEmployee(ctx context.Context, ref EmployeeRef, updates map[string]interface{}) error {
	fields := make(map[string]interface{})
	for key, value := range updates {
		if employeeUpdateFields[key] {
			fields[key] = value
		}
	}
	if len(fields) == 0 {
		return errors.NoChange()
	}

	var before *repository.Employee

	err := s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		emp, err := resolveEmployee(ctx, tx, ref)
		if err != nil {
			return err
		}
		before = emp

		return repository.NewEmployeeRepository(tx).UpdateFields(ctx, emp.ID, fields)
	})
	if err != nil {
		return err
	}

	s.audit.record(ctx, "update", "employee", before.EmployeeNo, before, fields)
	s.publisher.PublishEmployeeUpdated(ctx, before.EmployeeNo)

	s.logger.Info().
		Str("employee_no", before.EmployeeNo).
		Int("fields", len(fields)).
		Msg("employee updated")

	return nil
}

// TerminateEmployee marks an employee terminated. Idempotent. An optional
// termination date also closes the open salary record as of that date.
func (s *EmployeeService) TerminateEmployee(ctx context.Context, ref EmployeeRef, terminationDate *string) error {
	var endDate *time.Time
	if terminationDate != nil && *terminationDate != "" {
		d, err := parseDate("termination_date", *terminationDate)
		if err != nil {
			return err
		}
		endDate = &d
	}

	var emp *repository.Employee

	err := s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		var err error
		emp, err = resolveEmployee(ctx, tx, ref)
		if err != nil {
			return err
		}

		if err := repository.NewEmployeeRepository(tx).SetStatus(ctx, emp.ID, repository.StatusTerminated); err != nil {
			return err
		}

		if endDate != nil {
			if _, err := repository.NewSalaryRepository(tx).CloseCurrent(ctx, emp.ID, *endDate); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.audit.record(ctx, "terminate", "employee", emp.EmployeeNo, emp, map[string]string{"employment_status": repository.StatusTerminated})
	s.publisher.PublishEmployeeTerminated(ctx, emp.EmployeeNo)

	s.logger.Info().Str("employee_no", emp.EmployeeNo).Msg("employee terminated")
	return nil
}

// ReactivateEmployee marks an employee active again, unconditionally
func (s *EmployeeService) ReactivateEmployee(ctx context.Context, ref EmployeeRef) error {
	var emp *repository.Employee

	err := s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		employees := repository.NewEmployeeRepository(tx)

		// The ref may name a terminated employee, which the resolver's
		// active-only matching would miss; key lookups have no such filter
		var err error
		emp, err = resolveEmployee(ctx, tx, ref)
		if err != nil {
			return err
		}

		return employees.SetStatus(ctx, emp.ID, repository.StatusActive)
	})
	if err != nil {
		return err
	}

	s.audit.record(ctx, "reactivate", "employee", emp.EmployeeNo, emp, map[string]string{"employment_status": repository.StatusActive})
	s.publisher.PublishEmployeeReactivated(ctx, emp.EmployeeNo)

	s.logger.Info().Str("employee_no", emp.EmployeeNo).Msg("employee reactivated")
	return nil
}

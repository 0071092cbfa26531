package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/peopleops/hr-backend/internal/hr/events"
	"github.com/peopleops/hr-backend/internal/hr/repository"
	"github.com/peopleops/hr-backend/internal/hr/resolver"
	"github.com/peopleops/hr-backend/pkg/database"
	"github.com/peopleops/hr-backend/pkg/errors"
	"github.com/peopleops/hr-backend/pkg/logger"
)

// departmentUpdateFields is the allow-list for partial department updates
var departmentUpdateFields = map[string]bool{
	"name":        true,
	"parent_id":   true,
	"manager_id":  true,
	"budget":      true,
	"cost_center": true,
}

// DepartmentService handles department operations
type DepartmentService struct {
	db        *database.DB
	publisher *events.HREventPublisher
	audit     *auditor
	validate  *validator.Validate
	logger    *logger.Logger
}

// NewDepartmentService creates a new department service
func NewDepartmentService(db *database.DB, publisher *events.HREventPublisher, log *logger.Logger) *DepartmentService {
	return &DepartmentService{
		db:        db,
		publisher: publisher,
		audit:     newAuditor(db, log),
		validate:  validator.New(),
		logger:    log,
	}
}

// CreateDepartmentInput is the input for creating a department
type CreateDepartmentInput struct {
	Name        string   `json:"name" validate:"required"`
	Description *string  `json:"description,omitempty"`
	ManagerName *string  `json:"manager_name,omitempty"`
	Budget      *float64 `json:"budget,omitempty" validate:"omitempty,gte=0"`
	CostCenter  *string  `json:"cost_center,omitempty"`
	Location    *string  `json:"location,omitempty"`
}

// CreateDepartment creates a department. The manager reference is resolved
// best-effort, like manager assignment on hire.
func (s *DepartmentService) CreateDepartment(ctx context.Context, input *CreateDepartmentInput) (*repository.Department, error) {
	if err := validateStruct(s.validate, input); err != nil {
		return nil, err
	}

	dept := &repository.Department{
		Name:        input.Name,
		Description: input.Description,
		Budget:      input.Budget,
		CostCenter:  input.CostCenter,
		Location:    input.Location,
	}

	err := s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		if input.ManagerName != nil && *input.ManagerName != "" {
			manager, err := resolver.New(tx).ResolveEmployee(ctx, *input.ManagerName)
			if err != nil {
				if !errors.Is(err, errors.ErrNotFound) && !errors.Is(err, errors.ErrAmbiguous) {
					return err
				}
				s.logger.Warn().Str("manager_name", *input.ManagerName).Msg("department manager did not resolve, leaving unset")
			} else {
				dept.ManagerID = &manager.ID
			}
		}

		return repository.NewDepartmentRepository(tx).Create(ctx, dept)
	})
	if err != nil {
		return nil, err
	}

	s.audit.record(ctx, "create", "department", dept.ID, nil, dept)
	s.publisher.PublishDepartmentCreated(ctx, dept.ID, dept.Name)

	s.logger.Info().Str("department", dept.Name).Msg("department created")
	return dept, nil
}

// ListDepartments returns all departments ordered by name
func (s *DepartmentService) ListDepartments(ctx context.Context) ([]*repository.Department, error) {
	return repository.NewDepartmentRepository(s.db).List(ctx)
}

// UpdateDepartment applies an allow-listed partial update to a department
// referenced by name
func (s *DepartmentService) UpdateDepartment(ctx context.Context, name string, updates map[string]interface{}) error {
	fields := make(map[string]interface{})
	for key, value := range updates {
		if departmentUpdateFields[key] {
			fields[key] = value
		}
	}
	if len(fields) == 0 {
		return errors.NoChange()
	}

	var before *repository.Department

	err := s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		departments := repository.NewDepartmentRepository(tx)

		dept, err := departments.GetByName(ctx, name)
		if err != nil {
			return err
		}
		before = dept

		return departments.UpdateFields(ctx, dept.ID, fields)
	})
	if err != nil {
		return err
	}

	s.audit.record(ctx, "update", "department", before.ID, before, fields)
	s.publisher.PublishDepartmentUpdated(ctx, before.ID)

	s.logger.Info().Str("department", before.Name).Int("fields", len(fields)).Msg("department updated")
	return nil
}

// MergeResult reports what a department merge moved
type MergeResult struct {
	SourceDepartment string `json:"source_department"`
	TargetDepartment string `json:"target_department"`
	EmployeesMoved   int64  `json:"employees_moved"`
	PositionsMoved   int64  `json:"positions_moved"`
}

// MergeDepartments moves every employee and position of the source
// department to the target and deletes the source. Irreversible.
func (s *DepartmentService) MergeDepartments(ctx context.Context, sourceName, targetName string) (*MergeResult, error) {
	if sourceName == "" || targetName == "" {
		return nil, errors.Validation("department", "source and target departments are required")
	}

	var (
		source, target *repository.Department
		result         MergeResult
	)

	err := s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		departments := repository.NewDepartmentRepository(tx)

		var err error
		if source, err = departments.GetByName(ctx, sourceName); err != nil {
			return err
		}
		if target, err = departments.GetByName(ctx, targetName); err != nil {
			return err
		}
		if source.ID == target.ID {
			return errors.Validation("department", "cannot merge a department into itself")
		}

		if result.EmployeesMoved, err = repository.NewEmployeeRepository(tx).ReassignDepartment(ctx, source.ID, target.ID); err != nil {
			return err
		}
		if result.PositionsMoved, err = repository.NewPositionRepository(tx).ReassignDepartment(ctx, source.ID, target.ID); err != nil {
			return err
		}

		return departments.Delete(ctx, source.ID)
	})
	if err != nil {
		return nil, err
	}

	result.SourceDepartment = source.Name
	result.TargetDepartment = target.Name

	s.audit.record(ctx, "merge", "department", source.ID, source, result)
	s.publisher.PublishDepartmentsMerged(ctx, source.ID, source.Name, target.ID)

	s.logger.Info().
		Str("source", source.Name).
		Str("target", target.Name).
		Int64("employees_moved", result.EmployeesMoved).
		Int64("positions_moved", result.PositionsMoved).
		Msg("departments merged")

	return &result, nil
}

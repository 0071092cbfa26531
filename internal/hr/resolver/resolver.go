// Package resolver turns free-text references (employee names, department
// and position labels) into canonical keys.
package resolver

import (
	"context"
	"strings"

	"github.com/peopleops/hr-backend/internal/hr/repository"
	"github.com/peopleops/hr-backend/pkg/database"
	"github.com/peopleops/hr-backend/pkg/errors"
)

// Resolution is the outcome of a create-on-miss lookup. Created tells the
// caller whether the entity was silently created so it can log the fact.
type Resolution struct {
	Key     string
	Created bool
}

// Resolver resolves human references against the store. It operates on a
// database.Queryer so create-on-miss lookups participate in the caller's
// transaction.
type Resolver struct {
	employees   *repository.EmployeeRepository
	departments *repository.DepartmentRepository
	positions   *repository.PositionRepository
}

// New creates a resolver bound to the given queryer
func New(q database.Queryer) *Resolver {
	return &Resolver{
		employees:   repository.NewEmployeeRepository(q),
		departments: repository.NewDepartmentRepository(q),
		positions:   repository.NewPositionRepository(q),
	}
}

// ResolveEmployee resolves a free-text name to exactly one active employee.
// A single token matches as a case-insensitive first-name substring; two or
// more tokens match first and last name exactly. Zero matches is NOT_FOUND,
// more than one is AMBIGUOUS with the candidate list.
func (r *Resolver) ResolveEmployee(ctx context.Context, name string) (*repository.Employee, error) {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return nil, errors.Validation("employee_name", "employee name is required")
	}

	var (
		matches []*repository.Employee
		err     error
	)

	if len(fields) == 1 {
		matches, err = r.employees.FindActiveByFirstName(ctx, fields[0])
	} else {
		matches, err = r.employees.FindActiveByFullName(ctx, fields[0], strings.Join(fields[1:], " "))
	}
	if err != nil {
		return nil, err
	}

	switch len(matches) {
	case 0:
		return nil, errors.NotFoundNamed("employee", name)
	case 1:
		return matches[0], nil
	default:
		return nil, errors.Ambiguous(name, r.candidates(ctx, matches))
	}
}

// candidates builds the disambiguation list, attaching department names
// where they exist
func (r *Resolver) candidates(ctx context.Context, matches []*repository.Employee) []errors.Candidate {
	out := make([]errors.Candidate, 0, len(matches))
	for _, emp := range matches {
		c := errors.Candidate{
			EmployeeID: emp.EmployeeNo,
			Name:       emp.FullName(),
		}
		if emp.DepartmentID != nil {
			if dept, err := r.departments.GetByID(ctx, *emp.DepartmentID); err == nil {
				c.Department = dept.Name
			}
		}
		out = append(out, c)
	}
	return out
}

// EnsureDepartment resolves a department label, creating the department
// when it does not exist
func (r *Resolver) EnsureDepartment(ctx context.Context, name string) (Resolution, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Resolution{}, errors.Validation("department", "department name is required")
	}

	dept, err := r.departments.GetByName(ctx, name)
	if err == nil {
		return Resolution{Key: dept.ID}, nil
	}
	if !errors.Is(err, errors.ErrNotFound) {
		return Resolution{}, err
	}

	created := &repository.Department{Name: name}
	if err := r.departments.Create(ctx, created); err != nil {
		return Resolution{}, err
	}

	return Resolution{Key: created.ID, Created: true}, nil
}

// EnsurePosition resolves a position title within a department, creating
// the position when it does not exist
func (r *Resolver) EnsurePosition(ctx context.Context, title string, departmentID *string) (Resolution, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Resolution{}, errors.Validation("position", "position title is required")
	}

	pos, err := r.positions.GetByTitle(ctx, title, departmentID)
	if err == nil {
		return Resolution{Key: pos.ID}, nil
	}
	if !errors.Is(err, errors.ErrNotFound) {
		return Resolution{}, err
	}

	created := &repository.Position{Title: title, DepartmentID: departmentID}
	if err := r.positions.Create(ctx, created); err != nil {
		return Resolution{}, err
	}

	return Resolution{Key: created.ID, Created: true}, nil
}

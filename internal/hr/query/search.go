// Package query implements the read-only search and aggregation engine.
// Every query reads current state; there is no cross-query snapshot.
package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/peopleops/hr-backend/internal/hr/repository"
	"github.com/peopleops/hr-backend/pkg/database"
	"github.com/peopleops/hr-backend/pkg/errors"
	"github.com/peopleops/hr-backend/pkg/logger"
)

// Engine runs queries and aggregations against the store
type Engine struct {
	db     *database.DB
	logger *logger.Logger
}

// New creates a new query engine
func New(db *database.DB, log *logger.Logger) *Engine {
	return &Engine{db: db, logger: log}
}

// SearchCriteria is the typed filter set for employee search. Zero values
// mean "no filter".
type SearchCriteria struct {
	Name       string     `json:"name,omitempty"`
	Department string     `json:"department,omitempty"`
	Position   string     `json:"position,omitempty"`
	Status     string     `json:"status,omitempty"`
	Manager    string     `json:"manager,omitempty"`
	HiredFrom  *time.Time `json:"hired_from,omitempty"`
	HiredTo    *time.Time `json:"hired_to,omitempty"`
	Location   string     `json:"location,omitempty"`
	Limit      int        `json:"limit,omitempty"`
}

// SearchRow is one employee search result with labels joined in
type SearchRow struct {
	EmployeeID       string     `db:"employee_no" json:"employee_id"`
	FirstName        string     `db:"first_name" json:"first_name"`
	LastName         string     `db:"last_name" json:"last_name"`
	Email            string     `db:"email" json:"email"`
	Phone            *string    `db:"phone" json:"phone,omitempty"`
	EmploymentStatus string     `db:"employment_status" json:"employment_status"`
	HireDate         time.Time  `db:"hire_date" json:"hire_date"`
	DepartmentName   *string    `db:"department_name" json:"department_name,omitempty"`
	PositionTitle    *string    `db:"position_title" json:"position_title,omitempty"`
	ManagerName      *string    `db:"manager_name" json:"manager_name,omitempty"`
	CurrentSalary    *float64   `db:"current_salary" json:"current_salary,omitempty"`
}

// SearchEmployees filters employees on any combination of criteria. A
// hire-date range with from after to is rejected outright.
func (e *Engine) SearchEmployees(ctx context.Context, criteria SearchCriteria) ([]*SearchRow, error) {
	if criteria.HiredFrom != nil && criteria.HiredTo != nil && criteria.HiredFrom.After(*criteria.HiredTo) {
		return nil, errors.Validation("hired_from", "hire date range is reversed")
	}

	var sb strings.Builder
	sb.WriteString(`
		SELECT e.employee_no, e.first_name, e.last_name, e.email, e.phone,
		       e.employment_status, e.hire_date,
		       d.name AS department_name,
		       p.title AS position_title,
		       m.first_name || ' ' || m.last_name AS manager_name,
		       s.base_salary AS current_salary
		FROM employees e
		LEFT JOIN departments d ON d.id = e.department_id
		LEFT JOIN positions p ON p.id = e.position_id
		LEFT JOIN employees m ON m.id = e.manager_id
		LEFT JOIN salaries s ON s.employee_id = e.id AND s.end_date IS NULL
		WHERE 1=1`)

	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if criteria.Name != "" {
		p := arg("%" + criteria.Name + "%")
		sb.WriteString(fmt.Sprintf(" AND (e.first_name ILIKE %s OR e.last_name ILIKE %s)", p, p))
	}
	if criteria.Department != "" {
		sb.WriteString(fmt.Sprintf(" AND d.name ILIKE %s", arg("%"+criteria.Department+"%")))
	}
	if criteria.Position != "" {
		sb.WriteString(fmt.Sprintf(" AND p.title ILIKE %s", arg("%"+criteria.Position+"%")))
	}
	if criteria.Status != "" {
		sb.WriteString(fmt.Sprintf(" AND e.employment_status = %s", arg(criteria.Status)))
	}
	if criteria.Manager != "" {
		if strings.HasPrefix(criteria.Manager, "EMP") {
			sb.WriteString(fmt.Sprintf(" AND m.employee_no = %s", arg(criteria.Manager)))
		} else {
			p := arg("%" + criteria.Manager + "%")
			sb.WriteString(fmt.Sprintf(" AND (m.first_name ILIKE %s OR m.last_name ILIKE %s)", p, p))
		}
	}
	if criteria.HiredFrom != nil {
		sb.WriteString(fmt.Sprintf(" AND e.hire_date >= %s", arg(*criteria.HiredFrom)))
	}
	if criteria.HiredTo != nil {
		sb.WriteString(fmt.Sprintf(" AND e.hire_date <= %s", arg(*criteria.HiredTo)))
	}
	if criteria.Location != "" {
		sb.WriteString(fmt.Sprintf(" AND e.work_location ILIKE %s", arg("%"+criteria.Location+"%")))
	}

	sb.WriteString(" ORDER BY e.employee_no")

	limit := criteria.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	sb.WriteString(fmt.Sprintf(" LIMIT %s", arg(limit)))

	var rows []*SearchRow
	if err := e.db.SelectContext(ctx, &rows, sb.String(), args...); err != nil {
		return nil, err
	}
	return rows, nil
}

// AuditTrail returns the change history of one entity, newest first
func (e *Engine) AuditTrail(ctx context.Context, entityType, entityID string, limit int) ([]*repository.AuditEntry, error) {
	if entityType == "" || entityID == "" {
		return nil, errors.Validation("entity", "entity_type and entity_id are required")
	}
	return repository.NewAuditRepository(e.db).ListByEntity(ctx, entityType, entityID, limit)
}

package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/peopleops/hr-backend/pkg/database"
)

// schemaStatements creates every table idempotently. Ordering matters:
// positions reference departments, employees reference both.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS departments (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT,
		parent_id UUID REFERENCES departments(id),
		manager_id UUID,
		budget NUMERIC(14,2),
		cost_center TEXT,
		location TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS positions (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		department_id UUID REFERENCES departments(id),
		min_salary NUMERIC(14,2),
		max_salary NUMERIC(14,2),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (title, department_id)
	)`,
	`CREATE SEQUENCE IF NOT EXISTS employee_no_seq START 1`,
	`CREATE TABLE IF NOT EXISTS employees (
		id UUID PRIMARY KEY,
		employee_no TEXT NOT NULL UNIQUE,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		phone TEXT,
		date_of_birth DATE,
		gender TEXT,
		marital_status TEXT,
		address TEXT,
		city TEXT,
		state TEXT,
		country TEXT,
		postal_code TEXT,
		department_id UUID REFERENCES departments(id),
		position_id UUID REFERENCES positions(id),
		manager_id UUID REFERENCES employees(id),
		hire_date DATE NOT NULL,
		employment_status TEXT NOT NULL DEFAULT 'active',
		employment_type TEXT,
		work_location TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS salaries (
		id UUID PRIMARY KEY,
		employee_id UUID NOT NULL REFERENCES employees(id),
		base_salary NUMERIC(14,2) NOT NULL,
		bonus NUMERIC(14,2) NOT NULL DEFAULT 0,
		commission NUMERIC(14,2),
		currency TEXT NOT NULL DEFAULT 'USD',
		effective_date DATE NOT NULL,
		end_date DATE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS leave_types (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		default_days NUMERIC(5,1) NOT NULL,
		carry_forward_days NUMERIC(5,1) NOT NULL DEFAULT 0,
		description TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS leave_balances (
		employee_id UUID NOT NULL REFERENCES employees(id),
		leave_type_id UUID NOT NULL REFERENCES leave_types(id),
		year INT NOT NULL,
		entitled_days NUMERIC(5,1) NOT NULL,
		used_days NUMERIC(5,1) NOT NULL DEFAULT 0,
		carried_forward NUMERIC(5,1) NOT NULL DEFAULT 0,
		remaining_days NUMERIC(5,1) NOT NULL,
		PRIMARY KEY (employee_id, leave_type_id, year)
	)`,
	`CREATE TABLE IF NOT EXISTS leave_requests (
		id UUID PRIMARY KEY,
		employee_id UUID NOT NULL REFERENCES employees(id),
		leave_type_id UUID NOT NULL REFERENCES leave_types(id),
		start_date DATE NOT NULL,
		end_date DATE NOT NULL,
		days_requested NUMERIC(5,1) NOT NULL,
		reason TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		approved_by UUID REFERENCES employees(id),
		approval_date TIMESTAMPTZ,
		comments TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS performance_reviews (
		id UUID PRIMARY KEY,
		employee_id UUID NOT NULL REFERENCES employees(id),
		reviewer_id UUID NOT NULL REFERENCES employees(id),
		review_period_start DATE NOT NULL,
		review_period_end DATE NOT NULL,
		overall_rating INT CHECK (overall_rating BETWEEN 1 AND 5),
		goals_achieved TEXT,
		areas_of_improvement TEXT,
		accomplishments TEXT,
		next_review_date DATE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS audit_log (
		id UUID PRIMARY KEY,
		action TEXT NOT NULL,
		entity_type TEXT NOT NULL,
		entity_id TEXT NOT NULL,
		old_values JSONB,
		new_values JSONB,
		changed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_employees_department ON employees(department_id)`,
	`CREATE INDEX IF NOT EXISTS idx_employees_manager ON employees(manager_id)`,
	`CREATE INDEX IF NOT EXISTS idx_salaries_employee ON salaries(employee_id)`,
	`CREATE INDEX IF NOT EXISTS idx_leave_requests_employee ON leave_requests(employee_id)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_log_entity ON audit_log(entity_type, entity_id)`,
}

// defaultLeaveTypes is the seed catalogue. Seeding is idempotent on the
// unique name.
var defaultLeaveTypes = []LeaveType{
	{Name: "Annual Leave", DefaultDays: 21, CarryForwardDays: 10},
	{Name: "Sick Leave", DefaultDays: 10, CarryForwardDays: 0},
	{Name: "Personal Leave", DefaultDays: 5, CarryForwardDays: 0},
	{Name: "Maternity Leave", DefaultDays: 90, CarryForwardDays: 0},
	{Name: "Paternity Leave", DefaultDays: 14, CarryForwardDays: 0},
	{Name: "Bereavement Leave", DefaultDays: 3, CarryForwardDays: 0},
}

// InitSchema creates all tables and seeds the leave type catalogue.
// Safe to run on every startup.
func InitSchema(ctx context.Context, db *database.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	seed := `
		INSERT INTO leave_types (id, name, default_days, carry_forward_days)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO NOTHING
	`
	for _, lt := range defaultLeaveTypes {
		if _, err := db.ExecContext(ctx, seed, uuid.New().String(), lt.Name, lt.DefaultDays, lt.CarryForwardDays); err != nil {
			return fmt.Errorf("failed to seed leave type %s: %w", lt.Name, err)
		}
	}

	return nil
}

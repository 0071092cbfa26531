package repository

import (
	"time"
)

// Department represents an organizational unit
type Department struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	ParentID    *string   `db:"parent_id" json:"parent_id,omitempty"`
	ManagerID   *string   `db:"manager_id" json:"manager_id,omitempty"`
	Budget      *float64  `db:"budget" json:"budget,omitempty"`
	CostCenter  *string   `db:"cost_center" json:"cost_center,omitempty"`
	Location    *string   `db:"location" json:"location,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Position represents a job position within a department
type Position struct {
	ID           string    `db:"id" json:"id"`
	Title        string    `db:"title" json:"title"`
	DepartmentID *string   `db:"department_id" json:"department_id,omitempty"`
	MinSalary    *float64  `db:"min_salary" json:"min_salary,omitempty"`
	MaxSalary    *float64  `db:"max_salary" json:"max_salary,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Employee represents an employee record. Employees are never hard-deleted;
// termination flips employment_status.
type Employee struct {
	ID         string `db:"id" json:"id"`
	EmployeeNo string `db:"employee_no" json:"employee_no"`

	FirstName     string     `db:"first_name" json:"first_name"`
	LastName      string     `db:"last_name" json:"last_name"`
	Email         string     `db:"email" json:"email"`
	Phone         *string    `db:"phone" json:"phone,omitempty"`
	DateOfBirth   *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender        *string    `db:"gender" json:"gender,omitempty"`
	MaritalStatus *string    `db:"marital_status" json:"marital_status,omitempty"`

	Address    *string `db:"address" json:"address,omitempty"`
	City       *string `db:"city" json:"city,omitempty"`
	State      *string `db:"state" json:"state,omitempty"`
	Country    *string `db:"country" json:"country,omitempty"`
	PostalCode *string `db:"postal_code" json:"postal_code,omitempty"`

	DepartmentID *string `db:"department_id" json:"department_id,omitempty"`
	PositionID   *string `db:"position_id" json:"position_id,omitempty"`
	ManagerID    *string `db:"manager_id" json:"manager_id,omitempty"`

	HireDate         time.Time `db:"hire_date" json:"hire_date"`
	EmploymentStatus string    `db:"employment_status" json:"employment_status"` // active, terminated
	EmploymentType   *string   `db:"employment_type" json:"employment_type,omitempty"`
	WorkLocation     *string   `db:"work_location" json:"work_location,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// FullName returns the employee's display name
func (e *Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// Salary represents one row of an employee's salary history.
// end_date IS NULL marks the current record.
type Salary struct {
	ID            string     `db:"id" json:"id"`
	EmployeeID    string     `db:"employee_id" json:"employee_id"`
	BaseSalary    float64    `db:"base_salary" json:"base_salary"`
	Bonus         float64    `db:"bonus" json:"bonus"`
	Commission    *float64   `db:"commission" json:"commission,omitempty"`
	Currency      string     `db:"currency" json:"currency"`
	EffectiveDate time.Time  `db:"effective_date" json:"effective_date"`
	EndDate       *time.Time `db:"end_date" json:"end_date,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// LeaveType represents a category of leave with its annual entitlement
type LeaveType struct {
	ID               string  `db:"id" json:"id"`
	Name             string  `db:"name" json:"name"`
	DefaultDays      float64 `db:"default_days" json:"default_days"`
	CarryForwardDays float64 `db:"carry_forward_days" json:"carry_forward_days"`
	Description      *string `db:"description" json:"description,omitempty"`
}

// LeaveBalance tracks an employee's leave for one type and year.
// remaining_days = entitled_days + carried_forward - used_days is maintained
// procedurally by the mutation paths.
type LeaveBalance struct {
	EmployeeID     string  `db:"employee_id" json:"employee_id"`
	LeaveTypeID    string  `db:"leave_type_id" json:"leave_type_id"`
	Year           int     `db:"year" json:"year"`
	EntitledDays   float64 `db:"entitled_days" json:"entitled_days"`
	UsedDays       float64 `db:"used_days" json:"used_days"`
	CarriedForward float64 `db:"carried_forward" json:"carried_forward"`
	RemainingDays  float64 `db:"remaining_days" json:"remaining_days"`

	LeaveTypeName string `db:"leave_type_name" json:"leave_type_name,omitempty"`
}

// LeaveRequest represents a leave request
type LeaveRequest struct {
	ID            string     `db:"id" json:"id"`
	EmployeeID    string     `db:"employee_id" json:"employee_id"`
	LeaveTypeID   string     `db:"leave_type_id" json:"leave_type_id"`
	StartDate     time.Time  `db:"start_date" json:"start_date"`
	EndDate       time.Time  `db:"end_date" json:"end_date"`
	DaysRequested float64    `db:"days_requested" json:"days_requested"`
	Reason        *string    `db:"reason" json:"reason,omitempty"`
	Status        string     `db:"status" json:"status"` // pending, approved, rejected
	ApprovedBy    *string    `db:"approved_by" json:"approved_by,omitempty"`
	ApprovalDate  *time.Time `db:"approval_date" json:"approval_date,omitempty"`
	Comments      *string    `db:"comments" json:"comments,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`

	LeaveTypeName string `db:"leave_type_name" json:"leave_type_name,omitempty"`
}

// PerformanceReview represents a performance review shell covering one
// period. The rating and completion fields start NULL and are filled in
// when the review concludes.
type PerformanceReview struct {
	ID                 string     `db:"id" json:"id"`
	EmployeeID         string     `db:"employee_id" json:"employee_id"`
	ReviewerID         string     `db:"reviewer_id" json:"reviewer_id"`
	PeriodStart        time.Time  `db:"review_period_start" json:"review_period_start"`
	PeriodEnd          time.Time  `db:"review_period_end" json:"review_period_end"`
	OverallRating      *int       `db:"overall_rating" json:"overall_rating,omitempty"` // 1-5
	GoalsAchieved      *string    `db:"goals_achieved" json:"goals_achieved,omitempty"`
	AreasOfImprovement *string    `db:"areas_of_improvement" json:"areas_of_improvement,omitempty"`
	Accomplishments    *string    `db:"accomplishments" json:"accomplishments,omitempty"`
	NextReviewDate     *time.Time `db:"next_review_date" json:"next_review_date,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
}

// AuditEntry is one row of the append-only audit ledger
type AuditEntry struct {
	ID         string    `db:"id" json:"id"`
	Action     string    `db:"action" json:"action"`
	EntityType string    `db:"entity_type" json:"entity_type"`
	EntityID   string    `db:"entity_id" json:"entity_id"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	ChangedAt  time.Time `db:"changed_at" json:"changed_at"`
}

// Leave request statuses
const (
	LeaveStatusPending  = "pending"
	LeaveStatusApproved = "approved"
	LeaveStatusRejected = "rejected"
)

// Employment statuses
const (
	StatusActive     = "active"
	StatusTerminated = "terminated"
)

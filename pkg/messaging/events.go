package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventEmployeeCreated     = "hr.employee.created"
	EventEmployeeUpdated     = "hr.employee.updated"
	EventEmployeeTerminated  = "hr.employee.terminated"
	EventEmployeeReactivated = "hr.employee.reactivated"

	EventDepartmentCreated = "hr.department.created"
	EventDepartmentUpdated = "hr.department.updated"
	EventDepartmentMerged  = "hr.department.merged"

	EventLeaveRequested = "hr.leave.requested"
	EventLeaveApproved  = "hr.leave.approved"
	EventLeaveRejected  = "hr.leave.rejected"

	EventSalaryUpdated = "hr.salary.updated"
	EventReviewCreated = "hr.review.created"
)

// ExchangeHREvents is the topic exchange all HR events are published to.
const ExchangeHREvents = "hr.events"

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.New().String(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// EmployeeEvent is the payload for employee lifecycle events.
type EmployeeEvent struct {
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name,omitempty"`
}

// DepartmentEvent is the payload for department lifecycle events.
type DepartmentEvent struct {
	DepartmentID string `json:"department_id"`
	Name         string `json:"name,omitempty"`
	MergedInto   string `json:"merged_into,omitempty"`
}

// LeaveEvent is the payload for leave request events.
type LeaveEvent struct {
	RequestID  string  `json:"request_id"`
	EmployeeID string  `json:"employee_id"`
	LeaveType  string  `json:"leave_type,omitempty"`
	Days       float64 `json:"days,omitempty"`
}

// SalaryEvent is the payload for salary change events.
type SalaryEvent struct {
	EmployeeID    string  `json:"employee_id"`
	NewSalary     float64 `json:"new_salary"`
	EffectiveDate string  `json:"effective_date"`
}

// ReviewEvent is the payload for performance review events.
type ReviewEvent struct {
	ReviewID   string `json:"review_id"`
	EmployeeID string `json:"employee_id"`
	ReviewerID string `json:"reviewer_id"`
}

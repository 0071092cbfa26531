package events

import (
	"context"

	"github.com/peopleops/hr-backend/internal/hr/repository"
	"github.com/peopleops/hr-backend/pkg/logger"
	"github.com/peopleops/hr-backend/pkg/messaging"
)

// Publisher is the messaging surface the event publisher needs. Satisfied
// by *messaging.Publisher and by testutil.MockPublisher.
type Publisher interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
}

// HREventPublisher publishes HR domain events. Publishing is best-effort:
// failures are logged and never surface to the mutation that triggered them.
type HREventPublisher struct {
	publisher Publisher
	logger    *logger.Logger
}

// NewHREventPublisher creates a new HR event publisher
func NewHREventPublisher(publisher Publisher, log *logger.Logger) *HREventPublisher {
	return &HREventPublisher{
		publisher: publisher,
		logger:    log,
	}
}

func (p *HREventPublisher) publish(ctx context.Context, eventType string, data interface{}) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, eventType, data); err != nil {
		p.logger.Error().Err(err).Str("event_type", eventType).Msg("failed to publish event")
	}
}

// PublishEmployeeCreated publishes an employee created event
func (p *HREventPublisher) PublishEmployeeCreated(ctx context.Context, emp *repository.Employee) {
	p.publish(ctx, messaging.EventEmployeeCreated, messaging.EmployeeEvent{
		EmployeeID: emp.EmployeeNo,
		Name:       emp.FullName(),
	})
}

// PublishEmployeeUpdated publishes an employee updated event
func (p *HREventPublisher) PublishEmployeeUpdated(ctx context.Context, employeeNo string) {
	p.publish(ctx, messaging.EventEmployeeUpdated, messaging.EmployeeEvent{EmployeeID: employeeNo})
}

// PublishEmployeeTerminated publishes an employee terminated event
func (p *HREventPublisher) PublishEmployeeTerminated(ctx context.Context, employeeNo string) {
	p.publish(ctx, messaging.EventEmployeeTerminated, messaging.EmployeeEvent{EmployeeID: employeeNo})
}

// PublishEmployeeReactivated publishes an employee reactivated event
func (p *HREventPublisher) PublishEmployeeReactivated(ctx context.Context, employeeNo string) {
	p.publish(ctx, messaging.EventEmployeeReactivated, messaging.EmployeeEvent{EmployeeID: employeeNo})
}

// PublishDepartmentCreated publishes a department created event
func (p *HREventPublisher) PublishDepartmentCreated(ctx context.Context, id, name string) {
	p.publish(ctx, messaging.EventDepartmentCreated, messaging.DepartmentEvent{
		DepartmentID: id,
		Name:         name,
	})
}

// PublishDepartmentUpdated publishes a department updated event
func (p *HREventPublisher) PublishDepartmentUpdated(ctx context.Context, id string) {
	p.publish(ctx, messaging.EventDepartmentUpdated, messaging.DepartmentEvent{DepartmentID: id})
}

// PublishDepartmentsMerged publishes a department merged event
func (p *HREventPublisher) PublishDepartmentsMerged(ctx context.Context, sourceID, sourceName, targetID string) {
	p.publish(ctx, messaging.EventDepartmentMerged, messaging.DepartmentEvent{
		DepartmentID: sourceID,
		Name:         sourceName,
		MergedInto:   targetID,
	})
}

// PublishLeaveRequested publishes a leave requested event
func (p *HREventPublisher) PublishLeaveRequested(ctx context.Context, req *repository.LeaveRequest, employeeNo string) {
	p.publish(ctx, messaging.EventLeaveRequested, messaging.LeaveEvent{
		RequestID:  req.ID,
		EmployeeID: employeeNo,
		LeaveType:  req.LeaveTypeName,
		Days:       req.DaysRequested,
	})
}

// PublishLeaveApproved publishes a leave approved event
func (p *HREventPublisher) PublishLeaveApproved(ctx context.Context, req *repository.LeaveRequest, employeeNo string) {
	p.publish(ctx, messaging.EventLeaveApproved, messaging.LeaveEvent{
		RequestID:  req.ID,
		EmployeeID: employeeNo,
		LeaveType:  req.LeaveTypeName,
		Days:       req.DaysRequested,
	})
}

// PublishLeaveRejected publishes a leave rejected event
func (p *HREventPublisher) PublishLeaveRejected(ctx context.Context, req *repository.LeaveRequest, employeeNo string) {
	p.publish(ctx, messaging.EventLeaveRejected, messaging.LeaveEvent{
		RequestID:  req.ID,
		EmployeeID: employeeNo,
		LeaveType:  req.LeaveTypeName,
	})
}

// PublishSalaryUpdated publishes a salary updated event
func (p *HREventPublisher) PublishSalaryUpdated(ctx context.Context, employeeNo string, newSalary float64, effectiveDate string) {
	p.publish(ctx, messaging.EventSalaryUpdated, messaging.SalaryEvent{
		EmployeeID:    employeeNo,
		NewSalary:     newSalary,
		EffectiveDate: effectiveDate,
	})
}

// PublishReviewCreated publishes a review created event
func (p *HREventPublisher) PublishReviewCreated(ctx context.Context, reviewID, employeeNo, reviewerNo string) {
	p.publish(ctx, messaging.EventReviewCreated, messaging.ReviewEvent{
		ReviewID:   reviewID,
		EmployeeID: employeeNo,
		ReviewerID: reviewerNo,
	})
}

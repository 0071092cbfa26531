package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/peopleops/hr-backend/internal/hr/events"
	"github.com/peopleops/hr-backend/internal/hr/repository"
	"github.com/peopleops/hr-backend/pkg/database"
	"github.com/peopleops/hr-backend/pkg/errors"
	"github.com/peopleops/hr-backend/pkg/logger"
)

// ReviewService handles performance reviews
type ReviewService struct {
	db        *database.DB
	publisher *events.HREventPublisher
	audit     *auditor
	validate  *validator.Validate
	logger    *logger.Logger
}

// NewReviewService creates a new review service
func NewReviewService(db *database.DB, publisher *events.HREventPublisher, log *logger.Logger) *ReviewService {
	return &ReviewService{
		db:        db,
		publisher: publisher,
		audit:     newAuditor(db, log),
		validate:  validator.New(),
		logger:    log,
	}
}

// CreateReviewInput is the input for opening a performance review
type CreateReviewInput struct {
	Employee       EmployeeRef `json:"employee"`
	Reviewer       EmployeeRef `json:"reviewer"`
	PeriodStart    string      `json:"period_start" validate:"required,datetime=2006-01-02"`
	PeriodEnd      string      `json:"period_end" validate:"required,datetime=2006-01-02"`
	NextReviewDate *string     `json:"next_review_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// CreateReviewResult reports the created review shell
type CreateReviewResult struct {
	ReviewID    string `json:"review_id"`
	EmployeeID  string `json:"employee_id"`
	ReviewerID  string `json:"reviewer_id"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
}

// CreateReview opens a review shell for one period. Both the employee and
// the reviewer must exist; the rating and completion fields start empty.
func (s *ReviewService) CreateReview(ctx context.Context, input *CreateReviewInput) (*CreateReviewResult, error) {
	if err := validateStruct(s.validate, input); err != nil {
		return nil, err
	}

	periodStart, err := parseDate("period_start", input.PeriodStart)
	if err != nil {
		return nil, err
	}
	periodEnd, err := parseDate("period_end", input.PeriodEnd)
	if err != nil {
		return nil, err
	}
	if periodEnd.Before(periodStart) {
		return nil, errors.Validation("period_end", "period end must not be before period start")
	}

	var nextReview *time.Time
	if input.NextReviewDate != nil && *input.NextReviewDate != "" {
		d, err := parseDate("next_review_date", *input.NextReviewDate)
		if err != nil {
			return nil, err
		}
		nextReview = &d
	}

	var result *CreateReviewResult

	err = s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		emp, err := resolveEmployee(ctx, tx, input.Employee)
		if err != nil {
			return err
		}
		reviewer, err := resolveEmployee(ctx, tx, input.Reviewer)
		if err != nil {
			return err
		}

		review := &repository.PerformanceReview{
			EmployeeID:     emp.ID,
			ReviewerID:     reviewer.ID,
			PeriodStart:    periodStart,
			PeriodEnd:      periodEnd,
			NextReviewDate: nextReview,
		}
		if err := repository.NewReviewRepository(tx).Create(ctx, review); err != nil {
			return err
		}

		result = &CreateReviewResult{
			ReviewID:    review.ID,
			EmployeeID:  emp.EmployeeNo,
			ReviewerID:  reviewer.EmployeeNo,
			PeriodStart: periodStart.Format(dateLayout),
			PeriodEnd:   periodEnd.Format(dateLayout),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.record(ctx, "create", "performance_review", result.ReviewID, nil, result)
	s.publisher.PublishReviewCreated(ctx, result.ReviewID, result.EmployeeID, result.ReviewerID)

	s.logger.Info().
		Str("review_id", result.ReviewID).
		Str("employee_no", result.EmployeeID).
		Str("reviewer_no", result.ReviewerID).
		Msg("performance review created")

	return result, nil
}

// ReviewListResult is an employee's review history, newest first
type ReviewListResult struct {
	EmployeeID string                          `json:"employee_id"`
	Name       string                          `json:"name"`
	Reviews    []*repository.PerformanceReview `json:"reviews"`
}

// ListReviews returns all reviews recorded for an employee
func (s *ReviewService) ListReviews(ctx context.Context, ref EmployeeRef) (*ReviewListResult, error) {
	emp, err := resolveEmployee(ctx, s.db, ref)
	if err != nil {
		return nil, err
	}

	reviews, err := repository.NewReviewRepository(s.db).ListByEmployee(ctx, emp.ID)
	if err != nil {
		return nil, err
	}

	return &ReviewListResult{
		EmployeeID: emp.EmployeeNo,
		Name:       emp.FullName(),
		Reviews:    reviews,
	}, nil
}

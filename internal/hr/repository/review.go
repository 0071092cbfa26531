package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/peopleops/hr-backend/pkg/database"
)

// ReviewRepository handles performance review persistence
type ReviewRepository struct {
	q database.Queryer
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(q database.Queryer) *ReviewRepository {
	return &ReviewRepository{q: q}
}

// Create inserts a new performance review
func (r *ReviewRepository) Create(ctx context.Context, rev *PerformanceReview) error {
	if rev.ID == "" {
		rev.ID = uuid.New().String()
	}

	query := `
		INSERT INTO performance_reviews (id, employee_id, reviewer_id, review_period_start, review_period_end,
			overall_rating, goals_achieved, areas_of_improvement, accomplishments, next_review_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`

	return r.q.QueryRowxContext(ctx, query,
		rev.ID, rev.EmployeeID, rev.ReviewerID, rev.PeriodStart, rev.PeriodEnd,
		rev.OverallRating, rev.GoalsAchieved, rev.AreasOfImprovement, rev.Accomplishments, rev.NextReviewDate,
	).Scan(&rev.CreatedAt)
}

// ListByEmployee returns an employee's reviews, newest period first
func (r *ReviewRepository) ListByEmployee(ctx context.Context, employeeID string) ([]*PerformanceReview, error) {
	var revs []*PerformanceReview
	query := `
		SELECT id, employee_id, reviewer_id, review_period_start, review_period_end,
		       overall_rating, goals_achieved, areas_of_improvement, accomplishments, next_review_date, created_at
		FROM performance_reviews
		WHERE employee_id = $1
		ORDER BY review_period_end DESC
	`

	if err := r.q.SelectContext(ctx, &revs, query, employeeID); err != nil {
		return nil, err
	}
	return revs, nil
}

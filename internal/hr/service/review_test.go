package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/peopleops/hr-backend/internal/hr/events"
	"github.com/peopleops/hr-backend/pkg/database"
	"github.com/peopleops/hr-backend/pkg/errors"
	"github.com/peopleops/hr-backend/pkg/logger"
	"github.com/peopleops/hr-backend/pkg/messaging"
	"github.com/peopleops/hr-backend/pkg/testutil"
)

func newReviewService(t *testing.T) (*ReviewService, *testutil.MockDB, *testutil.MockPublisher) {
	t.Helper()
	mockDB := testutil.NewMockDB(t)
	pub := testutil.NewMockPublisher()
	log := logger.Nop()
	db := database.Wrap(mockDB.DB, log)
	svc := NewReviewService(db, events.NewHREventPublisher(pub, log), log)
	return svc, mockDB, pub
}

func TestCreateReviewHappyPath(t *testing.T) {
	svc, mockDB, pub := newReviewService(t)
	defer mockDB.Close()

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("FROM employees WHERE employee_no = $1").
		WithArgs("EMP00001").
		WillReturnRows(employeeRow(testutil.MockRows(employeeCols...), "id-1", "EMP00001", "Jane", "Smith", "active"))
	mockDB.ExpectQuery("FROM employees WHERE employee_no = $1").
		WithArgs("EMP00002").
		WillReturnRows(employeeRow(testutil.MockRows(employeeCols...), "id-2", "EMP00002", "Tom", "Lead", "active"))
	mockDB.ExpectQuery("INSERT INTO performance_reviews").
		WithArgs(testutil.AnyUUID{}, "id-1", "id-2", testutil.AnyTime{}, testutil.AnyTime{},
			nil, nil, nil, nil, testutil.AnyTime{}).
		WillReturnRows(testutil.MockRows("created_at").AddRow(time.Now()))
	mockDB.ExpectCommit()
	mockDB.ExpectExec("INSERT INTO audit_log").
		WillReturnResult(sqlmock.NewResult(0, 1))

	next := "2025-01-01"
	result, err := svc.CreateReview(context.Background(), &CreateReviewInput{
		Employee:       EmployeeRef{EmployeeID: "EMP00001"},
		Reviewer:       EmployeeRef{EmployeeID: "EMP00002"},
		PeriodStart:    "2024-01-01",
		PeriodEnd:      "2024-06-30",
		NextReviewDate: &next,
	})

	require.NoError(t, err)
	assert.Equal(t, "EMP00001", result.EmployeeID)
	assert.Equal(t, "EMP00002", result.ReviewerID)
	assert.Equal(t, "2024-01-01", result.PeriodStart)
	assert.Equal(t, "2024-06-30", result.PeriodEnd)
	pub.AssertEventPublished(t, messaging.EventReviewCreated)
	mockDB.ExpectationsWereMet(t)
}

func TestCreateReviewReversedPeriod(t *testing.T) {
	svc, mockDB, pub := newReviewService(t)
	defer mockDB.Close()

	_, err := svc.CreateReview(context.Background(), &CreateReviewInput{
		Employee:    EmployeeRef{EmployeeID: "EMP00001"},
		Reviewer:    EmployeeRef{EmployeeID: "EMP00002"},
		PeriodStart: "2024-06-30",
		PeriodEnd:   "2024-01-01",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))
	pub.AssertNoEventsPublished(t)
	mockDB.ExpectationsWereMet(t)
}

func TestCreateReviewMissingReviewer(t *testing.T) {
	svc, mockDB, pub := newReviewService(t)
	defer mockDB.Close()

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("FROM employees WHERE employee_no = $1").
		WithArgs("EMP00001").
		WillReturnRows(employeeRow(testutil.MockRows(employeeCols...), "id-1", "EMP00001", "Jane", "Smith", "active"))
	mockDB.ExpectQuery("FROM employees WHERE employee_no = $1").
		WithArgs("EMP00099").
		WillReturnRows(testutil.MockRows(employeeCols...))
	mockDB.ExpectRollback()

	_, err := svc.CreateReview(context.Background(), &CreateReviewInput{
		Employee:    EmployeeRef{EmployeeID: "EMP00001"},
		Reviewer:    EmployeeRef{EmployeeID: "EMP00099"},
		PeriodStart: "2024-01-01",
		PeriodEnd:   "2024-06-30",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	pub.AssertNoEventsPublished(t)
	mockDB.ExpectationsWereMet(t)
}

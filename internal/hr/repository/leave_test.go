package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/peopleops/hr-backend/pkg/errors"
	"github.com/peopleops/hr-backend/pkg/testutil"
)

func TestDecrementBalanceApplied(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectExec("UPDATE leave_balances").
		WithArgs("emp-id", "type-id", 2024, 5.0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewLeaveRepository(mockDB.DB)
	applied, err := repo.DecrementBalance(context.Background(), "emp-id", "type-id", 2024, 5)

	require.NoError(t, err)
	assert.True(t, applied)
	mockDB.ExpectationsWereMet(t)
}

func TestDecrementBalanceGuardRejectsOverspend(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	// remaining_days below the requested amount: the guard matches no rows
	mockDB.ExpectExec("UPDATE leave_balances").
		WithArgs("emp-id", "type-id", 2024, 30.0).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewLeaveRepository(mockDB.DB)
	applied, err := repo.DecrementBalance(context.Background(), "emp-id", "type-id", 2024, 30)

	require.NoError(t, err)
	assert.False(t, applied)
	mockDB.ExpectationsWereMet(t)
}

func TestGetBalanceMissingRowIsNil(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("FROM leave_balances").
		WithArgs("emp-id", "type-id", 2024).
		WillReturnRows(testutil.MockRows(
			"employee_id", "leave_type_id", "year",
			"entitled_days", "used_days", "carried_forward", "remaining_days"))

	repo := NewLeaveRepository(mockDB.DB)
	bal, err := repo.GetBalance(context.Background(), "emp-id", "type-id", 2024)

	require.NoError(t, err)
	assert.Nil(t, bal)
	mockDB.ExpectationsWereMet(t)
}

func TestDecideRequestStatusGuard(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	// Request no longer pending: predicate matches nothing
	mockDB.ExpectExec("UPDATE leave_requests").
		WithArgs("req-id", "approver-id", LeaveStatusApproved, testutil.AnyTime{}, nil).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewLeaveRepository(mockDB.DB)
	decided, err := repo.DecideRequest(context.Background(), "req-id", "approver-id", LeaveStatusApproved, nil, time.Now())

	require.NoError(t, err)
	assert.False(t, decided)
	mockDB.ExpectationsWereMet(t)
}

func TestGetTypeByNameNotFound(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("FROM leave_types").
		WithArgs("Sabbatical").
		WillReturnRows(testutil.MockRows("id", "name", "default_days", "carry_forward_days", "description"))

	repo := NewLeaveRepository(mockDB.DB)
	_, err := repo.GetTypeByName(context.Background(), "Sabbatical")

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	mockDB.ExpectationsWereMet(t)
}

func TestCreateRequestDefaultsPending(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("INSERT INTO leave_requests").
		WithArgs(testutil.AnyUUID{}, "emp-id", "type-id", testutil.AnyTime{}, testutil.AnyTime{}, 5.0, nil, LeaveStatusPending).
		WillReturnRows(testutil.MockRows("created_at").AddRow(time.Now()))

	repo := NewLeaveRepository(mockDB.DB)
	req := &LeaveRequest{
		EmployeeID:    "emp-id",
		LeaveTypeID:   "type-id",
		StartDate:     time.Now(),
		EndDate:       time.Now().AddDate(0, 0, 4),
		DaysRequested: 5,
	}

	require.NoError(t, repo.CreateRequest(context.Background(), req))
	assert.Equal(t, LeaveStatusPending, req.Status)
	assert.NotEmpty(t, req.ID)
	mockDB.ExpectationsWereMet(t)
}

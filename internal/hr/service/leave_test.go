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

var leaveRequestCols = []string{
	"id", "employee_id", "leave_type_id", "start_date", "end_date", "days_requested",
	"reason", "status", "approved_by", "approval_date", "comments", "created_at",
	"leave_type_name",
}

func leaveRequestRow(id, employeeID, status string, days float64) *sqlmock.Rows {
	start := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	return testutil.MockRows(leaveRequestCols...).AddRow(
		id, employeeID, "type-1", start, start.AddDate(0, 0, int(days)-1), days,
		nil, status, nil, nil, nil, time.Now(),
		"Annual Leave",
	)
}

func newLeaveService(t *testing.T) (*LeaveService, *testutil.MockDB, *testutil.MockPublisher) {
	t.Helper()
	mockDB := testutil.NewMockDB(t)
	pub := testutil.NewMockPublisher()
	log := logger.Nop()
	svc := NewLeaveService(database.Wrap(mockDB.DB, log), events.NewHREventPublisher(pub, log), log)
	return svc, mockDB, pub
}

func TestParseDecision(t *testing.T) {
	d, err := ParseDecision("Approve")
	require.NoError(t, err)
	assert.Equal(t, DecisionApprove, d)

	d, err = ParseDecision(" reject ")
	require.NoError(t, err)
	assert.Equal(t, DecisionReject, d)

	_, err = ParseDecision("maybe")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestRequestLeaveReversedRange(t *testing.T) {
	svc, mockDB, pub := newLeaveService(t)
	defer mockDB.Close()

	_, err := svc.RequestLeave(context.Background(), &RequestLeaveInput{
		EmployeeRef: EmployeeRef{EmployeeID: "EMP00001"},
		LeaveType:   "Annual Leave",
		StartDate:   "2024-06-14",
		EndDate:     "2024-06-10",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))
	pub.AssertNoEventsPublished(t)
	mockDB.ExpectationsWereMet(t)
}

func TestRequestLeaveInsufficientBalance(t *testing.T) {
	svc, mockDB, pub := newLeaveService(t)
	defer mockDB.Close()

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("FROM employees WHERE employee_no = $1").
		WithArgs("EMP00001").
		WillReturnRows(employeeRow(testutil.MockRows(employeeCols...), "id-1", "EMP00001", "Jane", "Smith", "active"))
	mockDB.ExpectQuery("FROM leave_types WHERE LOWER(name) = LOWER($1)").
		WithArgs("Annual Leave").
		WillReturnRows(testutil.MockRows("id", "name", "default_days", "carry_forward_days", "description").
			AddRow("type-1", "Annual Leave", 21.0, 10.0, nil))
	mockDB.ExpectQuery("FROM leave_balances").
		WithArgs("id-1", "type-1", 2024).
		WillReturnRows(testutil.MockRows(
			"employee_id", "leave_type_id", "year",
			"entitled_days", "used_days", "carried_forward", "remaining_days").
			AddRow("id-1", "type-1", 2024, 21.0, 19.0, 0.0, 2.0))
	mockDB.ExpectRollback()

	_, err := svc.RequestLeave(context.Background(), &RequestLeaveInput{
		EmployeeRef: EmployeeRef{EmployeeID: "EMP00001"},
		LeaveType:   "Annual Leave",
		StartDate:   "2024-06-10",
		EndDate:     "2024-06-14",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInsufficientBalance))
	pub.AssertNoEventsPublished(t)
	mockDB.ExpectationsWereMet(t)
}

func TestRequestLeaveHappyPath(t *testing.T) {
	svc, mockDB, pub := newLeaveService(t)
	defer mockDB.Close()

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("FROM employees WHERE employee_no = $1").
		WithArgs("EMP00001").
		WillReturnRows(employeeRow(testutil.MockRows(employeeCols...), "id-1", "EMP00001", "Jane", "Smith", "active"))
	mockDB.ExpectQuery("FROM leave_types WHERE LOWER(name) = LOWER($1)").
		WithArgs("Annual Leave").
		WillReturnRows(testutil.MockRows("id", "name", "default_days", "carry_forward_days", "description").
			AddRow("type-1", "Annual Leave", 21.0, 10.0, nil))
	mockDB.ExpectQuery("FROM leave_balances").
		WithArgs("id-1", "type-1", 2024).
		WillReturnRows(testutil.MockRows(
			"employee_id", "leave_type_id", "year",
			"entitled_days", "used_days", "carried_forward", "remaining_days").
			AddRow("id-1", "type-1", 2024, 21.0, 0.0, 0.0, 21.0))
	mockDB.ExpectQuery("INSERT INTO leave_requests").
		WillReturnRows(testutil.MockRows("created_at").AddRow(time.Now()))
	mockDB.ExpectCommit()
	mockDB.ExpectExec("INSERT INTO audit_log").
		WillReturnResult(sqlmock.NewResult(0, 1))

	result, err := svc.RequestLeave(context.Background(), &RequestLeaveInput{
		EmployeeRef: EmployeeRef{EmployeeID: "EMP00001"},
		LeaveType:   "Annual Leave",
		StartDate:   "2024-06-10",
		EndDate:     "2024-06-14",
	})

	require.NoError(t, err)
	assert.Equal(t, "EMP00001", result.EmployeeID)
	assert.Equal(t, 5.0, result.Days)
	assert.Equal(t, 16.0, result.ProjectedRemaining)
	pub.AssertEventPublished(t, messaging.EventLeaveRequested)
	mockDB.ExpectationsWereMet(t)
}

func TestDecideLeaveAlreadyDecided(t *testing.T) {
	svc, mockDB, pub := newLeaveService(t)
	defer mockDB.Close()

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("FROM leave_requests r").
		WithArgs("req-1").
		WillReturnRows(leaveRequestRow("req-1", "id-1", "approved", 5))
	mockDB.ExpectRollback()

	err := svc.DecideLeave(context.Background(), "req-1",
		EmployeeRef{EmployeeID: "EMP00009"}, DecisionApprove, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrAlreadyDecided))
	pub.AssertNoEventsPublished(t)
	mockDB.ExpectationsWereMet(t)
}

func TestDecideLeaveApprove(t *testing.T) {
	svc, mockDB, pub := newLeaveService(t)
	defer mockDB.Close()

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("FROM leave_requests r").
		WithArgs("req-1").
		WillReturnRows(leaveRequestRow("req-1", "id-1", "pending", 5))
	mockDB.ExpectQuery("FROM employees WHERE employee_no = $1").
		WithArgs("EMP00009").
		WillReturnRows(employeeRow(testutil.MockRows(employeeCols...), "id-9", "EMP00009", "Mark", "Boss", "active"))
	mockDB.ExpectQuery("FROM employees WHERE id = $1").
		WithArgs("id-1").
		WillReturnRows(employeeRow(testutil.MockRows(employeeCols...), "id-1", "EMP00001", "Jane", "Smith", "active"))
	mockDB.ExpectExec("UPDATE leave_balances").
		WithArgs("id-1", "type-1", 2024, 5.0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectExec("UPDATE leave_requests").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectCommit()
	mockDB.ExpectExec("INSERT INTO audit_log").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.DecideLeave(context.Background(), "req-1",
		EmployeeRef{EmployeeID: "EMP00009"}, DecisionApprove, nil)

	require.NoError(t, err)
	pub.AssertEventPublished(t, messaging.EventLeaveApproved)
	mockDB.ExpectationsWereMet(t)
}

func TestDecideLeaveRejectLeavesBalanceAlone(t *testing.T) {
	svc, mockDB, pub := newLeaveService(t)
	defer mockDB.Close()

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("FROM leave_requests r").
		WithArgs("req-1").
		WillReturnRows(leaveRequestRow("req-1", "id-1", "pending", 5))
	mockDB.ExpectQuery("FROM employees WHERE employee_no = $1").
		WithArgs("EMP00009").
		WillReturnRows(employeeRow(testutil.MockRows(employeeCols...), "id-9", "EMP00009", "Mark", "Boss", "active"))
	mockDB.ExpectQuery("FROM employees WHERE id = $1").
		WithArgs("id-1").
		WillReturnRows(employeeRow(testutil.MockRows(employeeCols...), "id-1", "EMP00001", "Jane", "Smith", "active"))
	mockDB.ExpectExec("UPDATE leave_requests").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectCommit()
	mockDB.ExpectExec("INSERT INTO audit_log").
		WillReturnResult(sqlmock.NewResult(0, 1))

	comments := "coverage conflict"
	err := svc.DecideLeave(context.Background(), "req-1",
		EmployeeRef{EmployeeID: "EMP00009"}, DecisionReject, &comments)

	require.NoError(t, err)
	pub.AssertEventPublished(t, messaging.EventLeaveRejected)
	mockDB.ExpectationsWereMet(t)
}

func TestDecideLeaveApproveOverspentBalance(t *testing.T) {
	svc, mockDB, pub := newLeaveService(t)
	defer mockDB.Close()

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("FROM leave_requests r").
		WithArgs("req-1").
		WillReturnRows(leaveRequestRow("req-1", "id-1", "pending", 5))
	mockDB.ExpectQuery("FROM employees WHERE employee_no = $1").
		WithArgs("EMP00009").
		WillReturnRows(employeeRow(testutil.MockRows(employeeCols...), "id-9", "EMP00009", "Mark", "Boss", "active"))
	mockDB.ExpectQuery("FROM employees WHERE id = $1").
		WithArgs("id-1").
		WillReturnRows(employeeRow(testutil.MockRows(employeeCols...), "id-1", "EMP00001", "Jane", "Smith", "active"))
	mockDB.ExpectExec("UPDATE leave_balances").
		WithArgs("id-1", "type-1", 2024, 5.0).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mockDB.ExpectQuery("FROM leave_balances").
		WithArgs("id-1", "type-1", 2024).
		WillReturnRows(testutil.MockRows(
			"employee_id", "leave_type_id", "year",
			"entitled_days", "used_days", "carried_forward", "remaining_days").
			AddRow("id-1", "type-1", 2024, 21.0, 18.0, 0.0, 3.0))
	mockDB.ExpectRollback()

	err := svc.DecideLeave(context.Background(), "req-1",
		EmployeeRef{EmployeeID: "EMP00009"}, DecisionApprove, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInsufficientBalance))
	assert.Contains(t, err.Error(), "remaining 3.0")
	pub.AssertNoEventsPublished(t)
	mockDB.ExpectationsWereMet(t)
}

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

var employeeCols = []string{
	"id", "employee_no", "first_name", "last_name", "email", "phone",
	"date_of_birth", "gender", "marital_status",
	"address", "city", "state", "country", "postal_code",
	"department_id", "position_id", "manager_id",
	"hire_date", "employment_status", "employment_type", "work_location",
	"created_at", "updated_at",
}

func employeeRow(rows *sqlmock.Rows, id, no, first, last, status string) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(
		id, no, first, last, first+"."+last+"@example.com", nil,
		nil, nil, nil,
		nil, nil, nil, nil, nil,
		nil, nil, nil,
		now, status, nil, nil,
		now, now,
	)
}

func newEmployeeService(t *testing.T) (*EmployeeService, *testutil.MockDB, *testutil.MockPublisher) {
	t.Helper()
	mockDB := testutil.NewMockDB(t)
	pub := testutil.NewMockPublisher()
	log := logger.Nop()
	db := database.Wrap(mockDB.DB, log)
	svc := NewEmployeeService(db, events.NewHREventPublisher(pub, log), log)
	return svc, mockDB, pub
}

func TestUpdateEmployeeDropsUnknownFields(t *testing.T) {
	svc, mockDB, pub := newEmployeeService(t)
	defer mockDB.Close()

	err := svc.UpdateEmployee(context.Background(),
		EmployeeRef{EmployeeID: "EMP00001"},
		map[string]interface{}{"salary": 120000, "shoe_size": 43})

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNoChange))
	pub.AssertNoEventsPublished(t)
	mockDB.ExpectationsWereMet(t)
}

func TestUpdateEmployeeHappyPath(t *testing.T) {
	svc, mockDB, pub := newEmployeeService(t)
	defer mockDB.Close()

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("FROM employees WHERE employee_no = $1").
		WithArgs("EMP00001").
		WillReturnRows(employeeRow(testutil.MockRows(employeeCols...), "id-1", "EMP00001", "Jane", "Smith", "active"))
	mockDB.ExpectExec("UPDATE employees SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectCommit()
	mockDB.ExpectExec("INSERT INTO audit_log").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.UpdateEmployee(context.Background(),
		EmployeeRef{EmployeeID: "EMP00001"},
		map[string]interface{}{"email": "jane@example.com", "ignored": true})

	require.NoError(t, err)
	pub.AssertEventPublished(t, messaging.EventEmployeeUpdated)
	mockDB.ExpectationsWereMet(t)
}

func TestUpdateEmployeeRollsBackOnMissingRow(t *testing.T) {
	svc, mockDB, pub := newEmployeeService(t)
	defer mockDB.Close()

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("FROM employees WHERE employee_no = $1").
		WithArgs("EMP00001").
		WillReturnRows(employeeRow(testutil.MockRows(employeeCols...), "id-1", "EMP00001", "Jane", "Smith", "active"))
	mockDB.ExpectExec("UPDATE employees SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mockDB.ExpectRollback()

	err := svc.UpdateEmployee(context.Background(),
		EmployeeRef{EmployeeID: "EMP00001"},
		map[string]interface{}{"email": "jane@example.com"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	pub.AssertNoEventsPublished(t)
	mockDB.ExpectationsWereMet(t)
}

func TestTerminateEmployeeClosesSalary(t *testing.T) {
	svc, mockDB, pub := newEmployeeService(t)
	defer mockDB.Close()

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("FROM employees WHERE employee_no = $1").
		WithArgs("EMP00001").
		WillReturnRows(employeeRow(testutil.MockRows(employeeCols...), "id-1", "EMP00001", "Jane", "Smith", "active"))
	mockDB.ExpectExec("UPDATE employees SET employment_status = $2").
		WithArgs("id-1", "terminated").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectExec("UPDATE salaries SET end_date = $2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectCommit()
	mockDB.ExpectExec("INSERT INTO audit_log").
		WillReturnResult(sqlmock.NewResult(0, 1))

	date := "2024-08-31"
	err := svc.TerminateEmployee(context.Background(), EmployeeRef{EmployeeID: "EMP00001"}, &date)

	require.NoError(t, err)
	pub.AssertEventPublished(t, messaging.EventEmployeeTerminated)
	mockDB.ExpectationsWereMet(t)
}

func TestTerminateEmployeeWithoutDateSkipsSalary(t *testing.T) {
	svc, mockDB, pub := newEmployeeService(t)
	defer mockDB.Close()

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("FROM employees WHERE employee_no = $1").
		WithArgs("EMP00001").
		WillReturnRows(employeeRow(testutil.MockRows(employeeCols...), "id-1", "EMP00001", "Jane", "Smith", "terminated"))
	mockDB.ExpectExec("UPDATE employees SET employment_status = $2").
		WithArgs("id-1", "terminated").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectCommit()
	mockDB.ExpectExec("INSERT INTO audit_log").
		WillReturnResult(sqlmock.NewResult(0, 1))

	// Terminating an already-terminated employee is idempotent
	err := svc.TerminateEmployee(context.Background(), EmployeeRef{EmployeeID: "EMP00001"}, nil)

	require.NoError(t, err)
	pub.AssertEventPublished(t, messaging.EventEmployeeTerminated)
	mockDB.ExpectationsWereMet(t)
}

func TestAddEmployeeAppliesHireDefaults(t *testing.T) {
	svc, mockDB, pub := newEmployeeService(t)
	defer mockDB.Close()

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("nextval").
		WillReturnRows(testutil.MockRows("nextval").AddRow(7))
	// Unset country, employment type and work location fall back to the
	// standard hire profile
	mockDB.ExpectQuery("INSERT INTO employees").
		WithArgs(testutil.AnyUUID{}, "EMP00007", "Grace", "Hopper", "grace@example.com", nil,
			nil, nil, nil,
			nil, nil, nil, "USA", nil,
			nil, nil, nil,
			testutil.AnyTime{}, "active", "full-time", "office").
		WillReturnRows(testutil.MockRows("created_at", "updated_at").AddRow(time.Now(), time.Now()))
	mockDB.ExpectQuery("FROM leave_types ORDER BY name").
		WillReturnRows(testutil.MockRows("id", "name", "default_days", "carry_forward_days", "description").
			AddRow("type-1", "Annual Leave", 21.0, 10.0, nil))
	mockDB.ExpectExec("INSERT INTO leave_balances").
		WithArgs(testutil.AnyUUID{}, "type-1", time.Now().UTC().Year(), 21.0, 0.0, 0.0, 21.0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectCommit()
	mockDB.ExpectExec("INSERT INTO audit_log").
		WillReturnResult(sqlmock.NewResult(0, 1))

	hireDate := "2020-01-15"
	result, err := svc.AddEmployee(context.Background(), &AddEmployeeInput{
		FirstName: "Grace",
		LastName:  "Hopper",
		Email:     "grace@example.com",
		HireDate:  &hireDate,
	})

	require.NoError(t, err)
	assert.Equal(t, "EMP00007", result.EmployeeID)
	pub.AssertEventPublished(t, messaging.EventEmployeeCreated)
	mockDB.ExpectationsWereMet(t)
}

func TestAddEmployeeRejectsBadEmail(t *testing.T) {
	svc, mockDB, pub := newEmployeeService(t)
	defer mockDB.Close()

	_, err := svc.AddEmployee(context.Background(), &AddEmployeeInput{
		FirstName: "Jane",
		LastName:  "Smith",
		Email:     "not-an-email",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))
	pub.AssertNoEventsPublished(t)
	mockDB.ExpectationsWereMet(t)
}

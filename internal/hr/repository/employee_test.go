package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/peopleops/hr-backend/pkg/errors"
	"github.com/peopleops/hr-backend/pkg/testutil"
)

func TestNextEmployeeNo(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT nextval('employee_no_seq')").
		WillReturnRows(testutil.MockRows("nextval").AddRow(7))

	repo := NewEmployeeRepository(mockDB.DB)
	no, err := repo.NextEmployeeNo(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "EMP00007", no)
	mockDB.ExpectationsWereMet(t)
}

func TestEmployeeCreate(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	now := time.Now()
	mockDB.ExpectQuery("INSERT INTO employees").
		WillReturnRows(testutil.MockRows("created_at", "updated_at").AddRow(now, now))

	repo := NewEmployeeRepository(mockDB.DB)
	emp := &Employee{
		EmployeeNo: "EMP00001",
		FirstName:  "Jane",
		LastName:   "Smith",
		Email:      "jane.smith@example.com",
		HireDate:   now,
	}

	require.NoError(t, repo.Create(context.Background(), emp))
	assert.NotEmpty(t, emp.ID)
	assert.Equal(t, StatusActive, emp.EmploymentStatus)
	mockDB.ExpectationsWereMet(t)
}

func TestEmployeeGetByNoNotFound(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("FROM employees WHERE employee_no = $1").
		WithArgs("EMP99999").
		WillReturnError(sql.ErrNoRows)

	repo := NewEmployeeRepository(mockDB.DB)
	_, err := repo.GetByNo(context.Background(), "EMP99999")

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	mockDB.ExpectationsWereMet(t)
}

func TestEmployeeUpdateFieldsOrdersColumns(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectExec("UPDATE employees SET email = $2, last_name = $3, updated_at = NOW() WHERE id = $1").
		WithArgs("emp-id", "new@example.com", "Jones").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewEmployeeRepository(mockDB.DB)
	err := repo.UpdateFields(context.Background(), "emp-id", map[string]interface{}{
		"last_name": "Jones",
		"email":     "new@example.com",
	})

	require.NoError(t, err)
	mockDB.ExpectationsWereMet(t)
}

func TestEmployeeUpdateFieldsNotFound(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectExec("UPDATE employees SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewEmployeeRepository(mockDB.DB)
	err := repo.UpdateFields(context.Background(), "missing", map[string]interface{}{"email": "x@example.com"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	mockDB.ExpectationsWereMet(t)
}

func TestEmployeeUpdateFieldsEmptyDelta(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	repo := NewEmployeeRepository(mockDB.DB)
	err := repo.UpdateFields(context.Background(), "emp-id", nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNoChange))
	mockDB.ExpectationsWereMet(t)
}

func TestEmployeeSetStatus(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectExec("UPDATE employees SET employment_status = $2").
		WithArgs("emp-id", StatusTerminated).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewEmployeeRepository(mockDB.DB)
	require.NoError(t, repo.SetStatus(context.Background(), "emp-id", StatusTerminated))
	mockDB.ExpectationsWereMet(t)
}

func TestReassignDepartmentReportsMoved(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectExec("UPDATE employees SET department_id = $2").
		WithArgs("src", "dst").
		WillReturnResult(sqlmock.NewResult(0, 4))

	repo := NewEmployeeRepository(mockDB.DB)
	moved, err := repo.ReassignDepartment(context.Background(), "src", "dst")

	require.NoError(t, err)
	assert.Equal(t, int64(4), moved)
	mockDB.ExpectationsWereMet(t)
}

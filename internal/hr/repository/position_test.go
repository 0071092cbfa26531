package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/peopleops/hr-backend/pkg/errors"
	"github.com/peopleops/hr-backend/pkg/testutil"
)

var positionCols = []string{"id", "title", "department_id", "min_salary", "max_salary", "created_at"}

func TestGetByTitleReusesGlobalPosition(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	// A position with no department matches a department-scoped lookup, so
	// the same global title is not recreated per department
	deptID := "dept-1"
	mockDB.ExpectQuery("(department_id = $2 OR department_id IS NULL)").
		WithArgs("Engineer", "dept-1").
		WillReturnRows(testutil.MockRows(positionCols...).
			AddRow("pos-1", "Engineer", nil, nil, nil, time.Now()))

	repo := NewPositionRepository(mockDB.DB)
	pos, err := repo.GetByTitle(context.Background(), "Engineer", &deptID)

	require.NoError(t, err)
	assert.Equal(t, "pos-1", pos.ID)
	assert.Nil(t, pos.DepartmentID)
	mockDB.ExpectationsWereMet(t)
}

func TestGetByTitleNotFound(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("FROM positions").
		WithArgs("Astronaut", nil).
		WillReturnRows(testutil.MockRows(positionCols...))

	repo := NewPositionRepository(mockDB.DB)
	_, err := repo.GetByTitle(context.Background(), "Astronaut", nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	mockDB.ExpectationsWereMet(t)
}

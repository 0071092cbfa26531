package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/peopleops/hr-backend/internal/hr/repository"
)

func strPtr(s string) *string { return &s }

func orgEmp(id, no, first, last string, managerID *string) *repository.OrgEmployee {
	return &repository.OrgEmployee{
		ID:         id,
		EmployeeNo: no,
		FirstName:  first,
		LastName:   last,
		ManagerID:  managerID,
	}
}

func TestBuildForestSimpleHierarchy(t *testing.T) {
	emps := []*repository.OrgEmployee{
		orgEmp("a", "EMP00001", "Alice", "Boss", nil),
		orgEmp("b", "EMP00002", "Bob", "Dev", strPtr("a")),
		orgEmp("c", "EMP00003", "Carol", "Dev", strPtr("a")),
		orgEmp("d", "EMP00004", "Dan", "Intern", strPtr("b")),
	}

	forest := buildForest(emps)
	require.Len(t, forest, 1)

	root := forest[0]
	assert.Equal(t, "EMP00001", root.EmployeeID)
	require.Len(t, root.Reports, 2)
	assert.Equal(t, "Bob Dev", root.Reports[0].Name)
	require.Len(t, root.Reports[0].Reports, 1)
	assert.Equal(t, "EMP00004", root.Reports[0].Reports[0].EmployeeID)
}

func TestBuildForestMultipleRoots(t *testing.T) {
	emps := []*repository.OrgEmployee{
		orgEmp("a", "EMP00001", "Alice", "Boss", nil),
		orgEmp("b", "EMP00002", "Bob", "Boss", nil),
		orgEmp("c", "EMP00003", "Carol", "Dev", strPtr("b")),
	}

	forest := buildForest(emps)
	require.Len(t, forest, 2)
	assert.Empty(t, forest[0].Reports)
	require.Len(t, forest[1].Reports, 1)
}

func TestBuildForestManagerOutsideScope(t *testing.T) {
	// Manager not in the loaded set: employee becomes a root
	emps := []*repository.OrgEmployee{
		orgEmp("c", "EMP00003", "Carol", "Dev", strPtr("zz")),
	}

	forest := buildForest(emps)
	require.Len(t, forest, 1)
	assert.Equal(t, "EMP00003", forest[0].EmployeeID)
}

func TestBuildForestCycleTerminates(t *testing.T) {
	// a and b manage each other; the traversal must terminate and keep
	// both employees in the output exactly once
	emps := []*repository.OrgEmployee{
		orgEmp("a", "EMP00001", "Alice", "Loop", strPtr("b")),
		orgEmp("b", "EMP00002", "Bob", "Loop", strPtr("a")),
		orgEmp("c", "EMP00003", "Carol", "Dev", nil),
	}

	forest := buildForest(emps)

	seen := map[string]int{}
	var walk func(nodes []*OrgNode)
	walk = func(nodes []*OrgNode) {
		for _, n := range nodes {
			seen[n.EmployeeID]++
			walk(n.Reports)
		}
	}
	walk(forest)

	assert.Equal(t, 1, seen["EMP00001"])
	assert.Equal(t, 1, seen["EMP00002"])
	assert.Equal(t, 1, seen["EMP00003"])
}

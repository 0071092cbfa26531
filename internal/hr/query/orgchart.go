package query

import (
	"context"

	"github.com/peopleops/hr-backend/internal/hr/repository"
)

// OrgNode is one employee in the reporting forest
type OrgNode struct {
	EmployeeID string     `json:"employee_id"`
	Name       string     `json:"name"`
	Position   *string    `json:"position,omitempty"`
	Department *string    `json:"department,omitempty"`
	Reports    []*OrgNode `json:"reports,omitempty"`
}

// OrgChartResult is the org chart response, optionally scoped to one
// department
type OrgChartResult struct {
	Department *string    `json:"department,omitempty"`
	Structure  []*OrgNode `json:"structure"`
}

// OrgChart loads the active workforce once and assembles the reporting
// forest in memory. Roots are employees without a manager or whose manager
// falls outside the loaded scope.
func (e *Engine) OrgChart(ctx context.Context, departmentName string) (*OrgChartResult, error) {
	result := &OrgChartResult{}

	var departmentID *string
	if departmentName != "" {
		dept, err := repository.NewDepartmentRepository(e.db).GetByName(ctx, departmentName)
		if err != nil {
			return nil, err
		}
		departmentID = &dept.ID
		result.Department = &dept.Name
	}

	emps, err := repository.NewEmployeeRepository(e.db).ListForOrgChart(ctx, departmentID)
	if err != nil {
		return nil, err
	}

	result.Structure = buildForest(emps)
	return result, nil
}

// buildForest assembles the manager hierarchy. A visited set guards the
// descent: an employee already placed is never attached a second time, so a
// manager cycle in the data degrades into a flat branch instead of hanging
// the traversal.
func buildForest(emps []*repository.OrgEmployee) []*OrgNode {
	byID := make(map[string]*repository.OrgEmployee, len(emps))
	children := make(map[string][]*repository.OrgEmployee)
	var roots []*repository.OrgEmployee

	for _, emp := range emps {
		byID[emp.ID] = emp
	}
	for _, emp := range emps {
		if emp.ManagerID != nil && byID[*emp.ManagerID] != nil {
			children[*emp.ManagerID] = append(children[*emp.ManagerID], emp)
		} else {
			roots = append(roots, emp)
		}
	}

	visited := make(map[string]bool, len(emps))

	var build func(emp *repository.OrgEmployee) *OrgNode
	build = func(emp *repository.OrgEmployee) *OrgNode {
		visited[emp.ID] = true
		node := &OrgNode{
			EmployeeID: emp.EmployeeNo,
			Name:       emp.FirstName + " " + emp.LastName,
			Position:   emp.PositionTitle,
			Department: emp.DepartmentName,
		}
		for _, child := range children[emp.ID] {
			if visited[child.ID] {
				continue
			}
			node.Reports = append(node.Reports, build(child))
		}
		return node
	}

	forest := make([]*OrgNode, 0, len(roots))
	for _, root := range roots {
		if visited[root.ID] {
			continue
		}
		forest = append(forest, build(root))
	}

	// Employees trapped in a pure cycle have no root; surface each cycle
	// once, from its first member in key order
	for _, emp := range emps {
		if !visited[emp.ID] {
			forest = append(forest, build(emp))
		}
	}

	return forest
}

package query

import (
	"context"
	"math"
	"time"

	"github.com/peopleops/hr-backend/internal/hr/repository"
	"github.com/peopleops/hr-backend/pkg/errors"
)

// CompensationRow is salary statistics for one department and position
type CompensationRow struct {
	Department    *string  `db:"department" json:"department,omitempty"`
	Position      *string  `db:"position" json:"position,omitempty"`
	EmployeeCount int      `db:"employee_count" json:"employee_count"`
	AvgSalary     float64  `db:"avg_salary" json:"avg_salary"`
	MinSalary     float64  `db:"min_salary" json:"min_salary"`
	MaxSalary     float64  `db:"max_salary" json:"max_salary"`
	TotalPayroll  float64  `db:"total_payroll" json:"total_payroll"`
	AvgBonus      *float64 `db:"avg_bonus" json:"avg_bonus,omitempty"`
}

// SalaryBand is one bucket of the salary distribution
type SalaryBand struct {
	Range string `db:"salary_range" json:"range"`
	Count int    `db:"count" json:"count"`
}

// CompensationSummary totals the report
type CompensationSummary struct {
	TotalEmployees int     `json:"total_employees"`
	TotalPayroll   float64 `json:"total_payroll"`
	AverageSalary  float64 `json:"average_salary"`
}

// CompensationReport is the full salary analysis
type CompensationReport struct {
	Summary              CompensationSummary `json:"summary"`
	ByDepartmentPosition []*CompensationRow  `json:"by_department_position"`
	SalaryDistribution   []*SalaryBand       `json:"salary_distribution"`
	GeneratedAt          time.Time           `json:"generated_at"`
}

// CompensationReportOptions narrows the report
type CompensationReportOptions struct {
	Department string
	Position   string
}

// GenerateCompensationReport aggregates current salaries of active
// employees by department and position, with a fixed-band distribution.
func (e *Engine) GenerateCompensationReport(ctx context.Context, opts CompensationReportOptions) (*CompensationReport, error) {
	query := `
		SELECT d.name AS department,
		       p.title AS position,
		       COUNT(DISTINCT e.id) AS employee_count,
		       AVG(s.base_salary) AS avg_salary,
		       MIN(s.base_salary) AS min_salary,
		       MAX(s.base_salary) AS max_salary,
		       SUM(s.base_salary) AS total_payroll,
		       AVG(s.bonus) AS avg_bonus
		FROM employees e
		JOIN salaries s ON s.employee_id = e.id AND s.end_date IS NULL
		LEFT JOIN departments d ON d.id = e.department_id
		LEFT JOIN positions p ON p.id = e.position_id
		WHERE e.employment_status = 'active'
	`
	var args []interface{}
	if opts.Department != "" {
		args = append(args, opts.Department)
		query += ` AND LOWER(d.name) = LOWER($1)`
	}
	if opts.Position != "" {
		args = append(args, "%"+opts.Position+"%")
		if len(args) == 1 {
			query += ` AND p.title ILIKE $1`
		} else {
			query += ` AND p.title ILIKE $2`
		}
	}
	query += ` GROUP BY d.name, p.title ORDER BY d.name, p.title`

	var rows []*CompensationRow
	if err := e.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	report := &CompensationReport{
		ByDepartmentPosition: rows,
		GeneratedAt:          time.Now().UTC(),
	}
	for _, row := range rows {
		report.Summary.TotalEmployees += row.EmployeeCount
		report.Summary.TotalPayroll += row.TotalPayroll
	}
	if report.Summary.TotalEmployees > 0 {
		report.Summary.AverageSalary = report.Summary.TotalPayroll / float64(report.Summary.TotalEmployees)
	}

	distribution := `
		SELECT CASE
		         WHEN s.base_salary < 50000 THEN 'Under 50k'
		         WHEN s.base_salary < 75000 THEN '50k-75k'
		         WHEN s.base_salary < 100000 THEN '75k-100k'
		         WHEN s.base_salary < 150000 THEN '100k-150k'
		         ELSE 'Over 150k'
		       END AS salary_range,
		       COUNT(*) AS count
		FROM salaries s
		JOIN employees e ON e.id = s.employee_id
		WHERE e.employment_status = 'active' AND s.end_date IS NULL
		GROUP BY salary_range
		ORDER BY MIN(s.base_salary)
	`
	if err := e.db.SelectContext(ctx, &report.SalaryDistribution, distribution); err != nil {
		return nil, err
	}

	return report, nil
}

// EmployeeStatistics is the headcount block of the dashboard
type EmployeeStatistics struct {
	Total       int `db:"total" json:"total"`
	Active      int `db:"active" json:"active"`
	Terminated  int `db:"terminated" json:"terminated"`
	FullTime    int `db:"full_time" json:"full_time"`
	PartTime    int `db:"part_time" json:"part_time"`
	Contractors int `db:"contractors" json:"contractors"`
}

// DepartmentCount is active headcount for one department
type DepartmentCount struct {
	Name  string `db:"name" json:"name"`
	Count int    `db:"count" json:"count"`
}

// GenderCount is active headcount for one recorded gender
type GenderCount struct {
	Gender string `db:"gender" json:"gender"`
	Count  int    `db:"count" json:"count"`
}

// RecentActivity is the activity block of the dashboard
type RecentActivity struct {
	NewHires90Days       int `json:"new_hires_90_days"`
	PendingReviews       int `json:"pending_performance_reviews"`
	PendingLeaveRequests int `json:"pending_leave_requests"`
	UpcomingLeaves       int `json:"upcoming_leaves"`
}

// DiversityMetrics is the diversity block of the dashboard
type DiversityMetrics struct {
	GenderDistribution []*GenderCount `json:"gender_distribution"`
	AverageTenureYears float64        `json:"average_tenure_years"`
}

// Dashboard is the full HR metrics dashboard
type Dashboard struct {
	EmployeeStatistics     EmployeeStatistics `json:"employee_statistics"`
	DepartmentDistribution []*DepartmentCount `json:"department_distribution"`
	RecentActivity         RecentActivity     `json:"recent_activity"`
	DiversityMetrics       DiversityMetrics   `json:"diversity_metrics"`
	GeneratedAt            time.Time          `json:"generated_at"`
}

// GenerateDashboard collects the headline HR metrics. Each block reads
// current state independently.
func (e *Engine) GenerateDashboard(ctx context.Context) (*Dashboard, error) {
	dash := &Dashboard{GeneratedAt: time.Now().UTC()}

	statsQuery := `
		SELECT COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE employment_status = 'active') AS active,
		       COUNT(*) FILTER (WHERE employment_status = 'terminated') AS terminated,
		       COUNT(*) FILTER (WHERE employment_type = 'full-time') AS full_time,
		       COUNT(*) FILTER (WHERE employment_type = 'part-time') AS part_time,
		       COUNT(*) FILTER (WHERE employment_type = 'contractor') AS contractors
		FROM employees
	`
	if err := e.db.GetContext(ctx, &dash.EmployeeStatistics, statsQuery); err != nil {
		return nil, err
	}

	deptQuery := `
		SELECT d.name, COUNT(e.id) AS count
		FROM departments d
		LEFT JOIN employees e ON e.department_id = d.id AND e.employment_status = 'active'
		GROUP BY d.name
		ORDER BY count DESC, d.name
	`
	if err := e.db.SelectContext(ctx, &dash.DepartmentDistribution, deptQuery); err != nil {
		return nil, err
	}

	if err := e.db.GetContext(ctx, &dash.RecentActivity.NewHires90Days,
		`SELECT COUNT(*) FROM employees WHERE hire_date >= CURRENT_DATE - INTERVAL '90 days'`); err != nil {
		return nil, err
	}

	// Active employees with no review at all, or one whose next review
	// falls due within 30 days
	reviewsQuery := `
		SELECT COUNT(DISTINCT e.id)
		FROM employees e
		LEFT JOIN performance_reviews pr ON pr.employee_id = e.id
		WHERE e.employment_status = 'active'
		  AND (pr.id IS NULL OR pr.next_review_date <= CURRENT_DATE + INTERVAL '30 days')
	`
	if err := e.db.GetContext(ctx, &dash.RecentActivity.PendingReviews, reviewsQuery); err != nil {
		return nil, err
	}

	leaveQuery := `
		SELECT COUNT(*) FILTER (WHERE status = 'pending') AS pending,
		       COUNT(*) FILTER (WHERE status = 'approved' AND start_date >= CURRENT_DATE) AS upcoming
		FROM leave_requests
	`
	var leave struct {
		Pending  int `db:"pending"`
		Upcoming int `db:"upcoming"`
	}
	if err := e.db.GetContext(ctx, &leave, leaveQuery); err != nil {
		return nil, err
	}
	dash.RecentActivity.PendingLeaveRequests = leave.Pending
	dash.RecentActivity.UpcomingLeaves = leave.Upcoming

	genderQuery := `
		SELECT gender, COUNT(*) AS count
		FROM employees
		WHERE employment_status = 'active' AND gender IS NOT NULL
		GROUP BY gender
		ORDER BY gender
	`
	if err := e.db.SelectContext(ctx, &dash.DiversityMetrics.GenderDistribution, genderQuery); err != nil {
		return nil, err
	}

	tenure, err := repository.NewEmployeeRepository(e.db).AverageTenureYears(ctx, dash.GeneratedAt)
	if err != nil {
		return nil, err
	}
	dash.DiversityMetrics.AverageTenureYears = math.Round(tenure*10) / 10

	return dash, nil
}

// Turnover periods
const (
	PeriodMonth   = "month"
	PeriodQuarter = "quarter"
	PeriodYear    = "year"
)

// MonthlyTerminations is the termination count for one month
type MonthlyTerminations struct {
	Month        string `db:"month" json:"month"`
	Terminations int    `db:"terminations" json:"terminations"`
}

// DepartmentTerminations is the termination count for one department
type DepartmentTerminations struct {
	Department   *string `db:"department" json:"department,omitempty"`
	Terminations int     `db:"terminations" json:"terminations"`
}

// TurnoverReport is the turnover analysis
type TurnoverReport struct {
	Period  string `json:"period"`
	From    string `json:"from"`
	To      string `json:"to"`
	Summary struct {
		TotalTerminations  int     `json:"total_terminations"`
		CurrentHeadcount   int     `json:"current_headcount"`
		AnnualTurnoverRate float64 `json:"annual_turnover_rate"`
	} `json:"summary"`
	MonthlyTrend []*MonthlyTerminations    `json:"monthly_trend"`
	ByDepartment []*DepartmentTerminations `json:"by_department"`
}

// AnalyzeTurnover reports terminations over the trailing period, annualized
// against an average headcount of current actives plus half the leavers.
func (e *Engine) AnalyzeTurnover(ctx context.Context, period, departmentName string) (*TurnoverReport, error) {
	var days, months int
	switch period {
	case PeriodMonth:
		days, months = 30, 1
	case PeriodQuarter:
		days, months = 90, 3
	case PeriodYear, "":
		period = PeriodYear
		days, months = 365, 12
	default:
		return nil, errors.Validation("period", "period must be month, quarter or year")
	}

	now := time.Now().UTC()
	from := now.AddDate(0, 0, -days)

	report := &TurnoverReport{
		Period: period,
		From:   from.Format("2006-01-02"),
		To:     now.Format("2006-01-02"),
	}

	var departmentID *string
	if departmentName != "" {
		var id string
		err := e.db.GetContext(ctx, &id, `SELECT id FROM departments WHERE LOWER(name) = LOWER($1)`, departmentName)
		if err != nil {
			return nil, errors.NotFoundNamed("department", departmentName)
		}
		departmentID = &id
	}

	trendQuery := `
		SELECT TO_CHAR(updated_at, 'YYYY-MM') AS month, COUNT(*) AS terminations
		FROM employees
		WHERE employment_status = 'terminated' AND updated_at >= $1
	`
	trendArgs := []interface{}{from}
	if departmentID != nil {
		trendQuery += ` AND department_id = $2`
		trendArgs = append(trendArgs, *departmentID)
	}
	trendQuery += ` GROUP BY month ORDER BY month`

	if err := e.db.SelectContext(ctx, &report.MonthlyTrend, trendQuery, trendArgs...); err != nil {
		return nil, err
	}
	for _, m := range report.MonthlyTrend {
		report.Summary.TotalTerminations += m.Terminations
	}

	headcountQuery := `SELECT COUNT(*) FROM employees WHERE employment_status = 'active'`
	headcountArgs := []interface{}{}
	if departmentID != nil {
		headcountQuery += ` AND department_id = $1`
		headcountArgs = append(headcountArgs, *departmentID)
	}
	if err := e.db.GetContext(ctx, &report.Summary.CurrentHeadcount, headcountQuery, headcountArgs...); err != nil {
		return nil, err
	}

	avgHeadcount := float64(report.Summary.CurrentHeadcount) + float64(report.Summary.TotalTerminations)/2
	if avgHeadcount > 0 {
		rate := float64(report.Summary.TotalTerminations) / avgHeadcount / float64(months) * 12 * 100
		report.Summary.AnnualTurnoverRate = math.Round(rate*10) / 10
	}

	byDeptQuery := `
		SELECT d.name AS department, COUNT(e.id) AS terminations
		FROM employees e
		LEFT JOIN departments d ON d.id = e.department_id
		WHERE e.employment_status = 'terminated' AND e.updated_at >= $1
		GROUP BY d.name
		ORDER BY terminations DESC
	`
	if err := e.db.SelectContext(ctx, &report.ByDepartment, byDeptQuery, from); err != nil {
		return nil, err
	}

	return report, nil
}

package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ViewName string

const (
	ViewTopEarners           ViewName = "top_earners_per_department"
	ViewLowPerformers        ViewName = "low_performers"
	ViewPromotionCandidates  ViewName = "promotion_candidates"
	ViewExperiencedEmployees ViewName = "experienced_employees"
)

var viewQueries = map[ViewName]string{
	ViewTopEarners:           "SELECT * FROM top_earners_per_department",
	ViewLowPerformers:        "SELECT * FROM low_performers",
	ViewPromotionCandidates:  "SELECT * FROM promotion_candidates",
	ViewExperiencedEmployees: "SELECT * FROM experienced_employees",
}

var leadLagOrderClauses = map[LeadLagOrder]string{
	OrderByEmployee: "p.emp_id",
	OrderByHireDate: "e.hire_date, p.emp_id",
}

// Relational runs the fixed reporting queries against Postgres.
type Relational struct {
	DB *pgxpool.Pool
}

func NewRelational(db *pgxpool.Pool) *Relational {
	return &Relational{DB: db}
}

const salaryGradesQuery = `
    SELECT p.emp_id, e.first_name || ' ' || e.last_name, COALESCE(p.department, ''), p.current_salary::float8,
           CASE
             WHEN p.current_salary > $1 THEN $3
             WHEN p.current_salary BETWEEN $2 AND $1 THEN $4
             ELSE $5
           END AS grade
    FROM professional_info p
    JOIN employee e ON e.emp_id = p.emp_id
    ORDER BY p.emp_id
  `

// SalaryGrades uses the same thresholds as GradeFor.
func (r *Relational) SalaryGrades(ctx context.Context) ([]GradeRow, error) {
	rows, err := r.DB.Query(ctx, salaryGradesQuery,
		HighSalaryThreshold, MediumSalaryFloor, GradeHigh, GradeMedium, GradeLow)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (GradeRow, error) {
		var g GradeRow
		err := row.Scan(&g.EmpID, &g.Name, &g.Department, &g.CurrentSalary, &g.Grade)
		return g, err
	})
}

func (r *Relational) SalaryRanks(ctx context.Context) ([]RankRow, error) {
	rows, err := r.DB.Query(ctx, `
    SELECT p.emp_id, e.first_name || ' ' || e.last_name, p.current_salary::float8,
           RANK() OVER (ORDER BY p.current_salary DESC NULLS LAST) AS salary_rank
    FROM professional_info p
    JOIN employee e ON e.emp_id = p.emp_id
    ORDER BY salary_rank, p.emp_id
  `)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (RankRow, error) {
		var rr RankRow
		err := row.Scan(&rr.EmpID, &rr.Name, &rr.CurrentSalary, &rr.Rank)
		return rr, err
	})
}

func (r *Relational) RunningSalary(ctx context.Context) ([]RunningRow, error) {
	rows, err := r.DB.Query(ctx, `
    SELECT emp_id, current_salary::float8,
           (SUM(current_salary) OVER w)::float8 AS running_sum,
           (AVG(current_salary) OVER w)::float8 AS running_avg
    FROM professional_info
    WINDOW w AS (ORDER BY emp_id ROWS BETWEEN UNBOUNDED PRECEDING AND CURRENT ROW)
    ORDER BY emp_id
  `)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (RunningRow, error) {
		var rr RunningRow
		err := row.Scan(&rr.EmpID, &rr.CurrentSalary, &rr.RunningSum, &rr.RunningAvg)
		return rr, err
	})
}

func (r *Relational) SalaryLeadLag(ctx context.Context, order LeadLagOrder) ([]LeadLagRow, error) {
	clause, ok := leadLagOrderClauses[order]
	if !ok {
		return nil, fmt.Errorf("unknown lead/lag order %q", order)
	}
	rows, err := r.DB.Query(ctx, fmt.Sprintf(`
    SELECT p.emp_id, e.hire_date, p.current_salary::float8, p.last_increment,
           (LAG(p.current_salary) OVER (ORDER BY %[1]s))::float8 AS previous_salary,
           (LEAD(p.current_salary) OVER (ORDER BY %[1]s))::float8 AS next_salary
    FROM professional_info p
    JOIN employee e ON e.emp_id = p.emp_id
    ORDER BY %[1]s
  `, clause))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (LeadLagRow, error) {
		var l LeadLagRow
		err := row.Scan(&l.EmpID, &l.HireDate, &l.CurrentSalary, &l.LastIncrement, &l.PreviousSalary, &l.NextSalary)
		return l, err
	})
}

func (r *Relational) DepartmentsAboveAverage(ctx context.Context) ([]DepartmentAverage, error) {
	rows, err := r.DB.Query(ctx, `
    WITH dept_avg AS (
      SELECT COALESCE(department, '') AS department, AVG(current_salary) AS dept_avg_salary
      FROM professional_info
      GROUP BY COALESCE(department, '')
    ), overall_avg AS (
      SELECT AVG(current_salary) AS overall_salary
      FROM professional_info
    )
    SELECT d.department, d.dept_avg_salary::float8, o.overall_salary::float8
    FROM dept_avg d, overall_avg o
    WHERE d.dept_avg_salary > o.overall_salary
    ORDER BY d.dept_avg_salary DESC
  `)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (DepartmentAverage, error) {
		var d DepartmentAverage
		err := row.Scan(&d.Department, &d.AverageSalary, &d.OverallAverage)
		return d, err
	})
}

// Salaries returns every non-null current salary.
func (r *Relational) Salaries(ctx context.Context) ([]float64, error) {
	rows, err := r.DB.Query(ctx, "SELECT current_salary::float8 FROM professional_info WHERE current_salary IS NOT NULL")
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[float64])
}

// View runs one of the predefined reporting views and passes its rows through unchanged in shape.
func (r *Relational) View(ctx context.Context, name ViewName) ([]Row, error) {
	query, ok := viewQueries[name]
	if !ok {
		return nil, fmt.Errorf("unknown view %q", name)
	}
	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	out := make([]Row, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(Row, len(fields))
		for i, field := range fields {
			row[field.Name] = plainValue(values[i])
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// plainValue converts driver-specific values into JSON and text friendly ones.
func plainValue(v any) any {
	switch t := v.(type) {
	case pgtype.Numeric:
		f, err := t.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format("2006-01-02")
		}
		return t.Format(time.RFC3339)
	default:
		return v
	}
}

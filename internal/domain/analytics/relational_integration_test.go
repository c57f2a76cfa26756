package analytics

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrportal/internal/platform/db"
)

// testPool migrates a throwaway schema and points the pool's search_path at it.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	schema := fmt.Sprintf("hrportal_analytics_%d", time.Now().UnixNano())
	admin, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	_, err = admin.Exec(ctx, "CREATE SCHEMA "+schema)
	require.NoError(t, err)

	cfg, err := pgxpool.ParseConfig(url)
	require.NoError(t, err)
	cfg.ConnConfig.RuntimeParams["search_path"] = schema
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		pool.Close()
		_, _ = admin.Exec(context.Background(), "DROP SCHEMA "+schema+" CASCADE")
		admin.Close()
	})

	require.NoError(t, db.Migrate(ctx, pool))
	return pool
}

// seedSalaries loads five employees: a salary tie at the top, one null salary and
// hire dates that order differently from the ids.
func seedSalaries(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()
	stmts := []string{
		`INSERT INTO employee (emp_id, first_name, last_name, hire_date) VALUES
		   (1, 'Asha', 'Rao', '2019-01-10'),
		   (2, 'Bilal', 'Khan', '2020-03-01'),
		   (3, 'Chen', 'Li', '2018-06-15'),
		   (4, 'Dana', 'Cruz', '2021-09-01'),
		   (5, 'Eli', 'Stone', '2017-02-01')`,
		`INSERT INTO professional_info (emp_id, department, current_salary, performance_rating) VALUES
		   (1, 'Engineering', 90000, 4.5),
		   (2, 'Engineering', 90000, 3.0),
		   (3, 'Operations', 40000, 2.0),
		   (4, 'Operations', NULL, NULL),
		   (5, 'Sales', 60000, 3.5)`,
	}
	for _, stmt := range stmts {
		_, err := pool.Exec(ctx, stmt)
		require.NoError(t, err)
	}
}

func salaryOf(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func TestRelationalSalaryRanksShareTies(t *testing.T) {
	pool := testPool(t)
	seedSalaries(t, pool)

	ranks, err := NewRelational(pool).SalaryRanks(context.Background())
	require.NoError(t, err)
	require.Len(t, ranks, 5)

	got := map[int64]int64{}
	for _, r := range ranks {
		got[r.EmpID] = r.Rank
	}
	assert.Equal(t, map[int64]int64{1: 1, 2: 1, 5: 3, 3: 4, 4: 5}, got)
	assert.Nil(t, ranks[4].CurrentSalary, "null salaries rank last")
}

func TestRelationalLeadLagEdges(t *testing.T) {
	pool := testPool(t)
	seedSalaries(t, pool)
	rel := NewRelational(pool)

	byID, err := rel.SalaryLeadLag(context.Background(), OrderByEmployee)
	require.NoError(t, err)
	require.Len(t, byID, 5)
	assert.Equal(t, int64(1), byID[0].EmpID)
	assert.Nil(t, byID[0].PreviousSalary)
	assert.Equal(t, 90000.0, salaryOf(byID[0].NextSalary))
	assert.Equal(t, 90000.0, salaryOf(byID[1].PreviousSalary))
	assert.Equal(t, 40000.0, salaryOf(byID[1].NextSalary))
	assert.Equal(t, int64(5), byID[4].EmpID)
	assert.Nil(t, byID[4].NextSalary)

	byHire, err := rel.SalaryLeadLag(context.Background(), OrderByHireDate)
	require.NoError(t, err)
	require.Len(t, byHire, 5)
	order := make([]int64, 0, len(byHire))
	for _, r := range byHire {
		order = append(order, r.EmpID)
	}
	assert.Equal(t, []int64{5, 3, 1, 2, 4}, order)
	assert.Nil(t, byHire[0].PreviousSalary)
	assert.Equal(t, 40000.0, salaryOf(byHire[0].NextSalary))
	assert.Equal(t, 90000.0, salaryOf(byHire[4].PreviousSalary))
	assert.Nil(t, byHire[4].NextSalary)
	require.NotNil(t, byHire[0].HireDate)
	assert.Equal(t, "2017-02-01", byHire[0].HireDate.Format("2006-01-02"))

	_, err = rel.SalaryLeadLag(context.Background(), LeadLagOrder("salary; DROP TABLE employee"))
	assert.Error(t, err)
}

func TestRelationalDepartmentsAboveAverage(t *testing.T) {
	pool := testPool(t)
	seedSalaries(t, pool)

	depts, err := NewRelational(pool).DepartmentsAboveAverage(context.Background())
	require.NoError(t, err)
	require.Len(t, depts, 1)
	assert.Equal(t, "Engineering", depts[0].Department)
	assert.InDelta(t, 90000.0, depts[0].AverageSalary, 0.001)
	assert.InDelta(t, 70000.0, depts[0].OverallAverage, 0.001)
}

func TestRelationalGradesRunningTotalsAndViews(t *testing.T) {
	pool := testPool(t)
	seedSalaries(t, pool)
	rel := NewRelational(pool)
	ctx := context.Background()

	grades, err := rel.SalaryGrades(ctx)
	require.NoError(t, err)
	byID := map[int64]string{}
	for _, g := range grades {
		byID[g.EmpID] = g.Grade
	}
	assert.Equal(t, GradeHigh, byID[1])
	assert.Equal(t, GradeLow, byID[3])
	assert.Equal(t, GradeMedium, byID[5])

	running, err := rel.RunningSalary(ctx)
	require.NoError(t, err)
	require.Len(t, running, 5)
	assert.InDelta(t, 220000.0, *running[3].RunningSum, 0.001, "null salary adds nothing")
	assert.InDelta(t, 220000.0/3, *running[3].RunningAvg, 0.01, "null salary is skipped by the average")
	assert.InDelta(t, 70000.0, *running[4].RunningAvg, 0.001)

	salaries, err := rel.Salaries(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []float64{90000, 90000, 40000, 60000}, salaries)

	top, err := rel.View(ctx, ViewTopEarners)
	require.NoError(t, err)
	assert.Len(t, top, 4, "both tied engineers are top earners")

	low, err := rel.View(ctx, ViewLowPerformers)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, 2.0, low[0]["performance_rating"])

	_, err = rel.View(ctx, ViewName("pg_shadow"))
	assert.Error(t, err)
}

package analytics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRelational struct {
	failGrades bool
	gotOrder   LeadLagOrder
	salaries   []float64
}

func (f *fakeRelational) SalaryGrades(context.Context) ([]GradeRow, error) {
	if f.failGrades {
		return nil, errors.New("relation does not exist")
	}
	s := 75000.0
	return []GradeRow{{EmpID: 1, CurrentSalary: &s, Grade: GradeFor(s)}}, nil
}

func (f *fakeRelational) SalaryRanks(context.Context) ([]RankRow, error) { return nil, nil }

func (f *fakeRelational) RunningSalary(context.Context) ([]RunningRow, error) { return nil, nil }

func (f *fakeRelational) SalaryLeadLag(_ context.Context, order LeadLagOrder) ([]LeadLagRow, error) {
	f.gotOrder = order
	return nil, nil
}

func (f *fakeRelational) DepartmentsAboveAverage(context.Context) ([]DepartmentAverage, error) {
	return nil, nil
}

func (f *fakeRelational) Salaries(context.Context) ([]float64, error) { return f.salaries, nil }

func (f *fakeRelational) View(_ context.Context, name ViewName) ([]Row, error) {
	if name == ViewTopEarners {
		return []Row{{"emp_id": int32(1)}}, nil
	}
	return nil, nil
}

type fakeDocuments struct {
	gotField   string
	gotMembers bool
	employee   *EmployeeQualifications
}

func (f *fakeDocuments) MissingIdentifier(_ context.Context, field string) (MissingIdentifierResult, error) {
	f.gotField = field
	return MissingIdentifierResult{Field: field, Count: 1, Records: []IdentifierGap{{Name: "N/A", ID: "x"}}}, nil
}

func (f *fakeDocuments) QualificationFrequency(context.Context) (QualificationFrequency, error) {
	return QualificationFrequency{Source: SourcePersonnel, Counts: []CountRow{{Value: "MBA", Count: 2}}}, nil
}

func (f *fakeDocuments) CityDistribution(context.Context) ([]CountRow, error) { return nil, nil }

func (f *fakeDocuments) StateDistribution(context.Context) ([]CountRow, error) {
	return nil, errors.New("boom")
}

func (f *fakeDocuments) GenderDistribution(context.Context) (GenderStats, error) {
	return ComputeGenderStats(0, 0, 0), nil
}

func (f *fakeDocuments) BloodGroupDistribution(_ context.Context, withMembers bool) ([]BloodGroupRow, error) {
	f.gotMembers = withMembers
	return nil, nil
}

func (f *fakeDocuments) EmployeeQualifications(context.Context, int64) (*EmployeeQualifications, error) {
	return f.employee, nil
}

func TestDashboardMergesAggregates(t *testing.T) {
	rel := &fakeRelational{salaries: []float64{50000, 70000}}
	docs := &fakeDocuments{employee: &EmployeeQualifications{EmployeeID: 3, Name: "Meera"}}
	svc := NewService(rel, docs)

	empID := int64(3)
	d, err := svc.Dashboard(context.Background(), Options{
		LeadLagOrder: OrderByHireDate,
		BloodMembers: true,
		EmployeeID:   &empID,
	})
	require.NoError(t, err)

	assert.Equal(t, OrderByHireDate, rel.gotOrder)
	assert.Equal(t, DefaultMissingField, docs.gotField)
	assert.True(t, docs.gotMembers)
	require.Len(t, d.SalaryGrades, 1)
	assert.Equal(t, GradeHigh, d.SalaryGrades[0].Grade)
	assert.Equal(t, 60000.0, d.SalarySummary.Mean)
	assert.Len(t, d.TopEarners, 1)
	assert.NotNil(t, d.SalaryRanks)
	assert.NotNil(t, d.Cities)
	assert.Equal(t, "Meera", d.Employee.Name)
	assert.Equal(t, []string{"states"}, d.Warnings)
	assert.Equal(t, 0.0, d.Gender.MalePercent)
}

func TestDashboardToleratesFailedAggregate(t *testing.T) {
	svc := NewService(&fakeRelational{failGrades: true}, &fakeDocuments{})
	d, err := svc.Dashboard(context.Background(), Options{LeadLagOrder: "sideways"})
	require.NoError(t, err)
	assert.Empty(t, d.SalaryGrades)
	assert.NotNil(t, d.SalaryGrades)
	assert.Contains(t, d.Warnings, "salaryGrades")
	assert.Equal(t, OrderByEmployee, d.LeadLagOrder)
	assert.Nil(t, d.Employee)
}

func TestDashboardStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := NewService(&fakeRelational{failGrades: true}, &fakeDocuments{})
	_, err := svc.Dashboard(ctx, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseLeadLagOrder(t *testing.T) {
	order, ok := ParseLeadLagOrder("")
	assert.True(t, ok)
	assert.Equal(t, OrderByEmployee, order)

	order, ok = ParseLeadLagOrder("hire_date")
	assert.True(t, ok)
	assert.Equal(t, OrderByHireDate, order)

	_, ok = ParseLeadLagOrder("salary")
	assert.False(t, ok)
}

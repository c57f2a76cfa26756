package analytics

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
)

type RelationalSource interface {
	SalaryGrades(ctx context.Context) ([]GradeRow, error)
	SalaryRanks(ctx context.Context) ([]RankRow, error)
	RunningSalary(ctx context.Context) ([]RunningRow, error)
	SalaryLeadLag(ctx context.Context, order LeadLagOrder) ([]LeadLagRow, error)
	DepartmentsAboveAverage(ctx context.Context) ([]DepartmentAverage, error)
	Salaries(ctx context.Context) ([]float64, error)
	View(ctx context.Context, name ViewName) ([]Row, error)
}

type DocumentSource interface {
	MissingIdentifier(ctx context.Context, field string) (MissingIdentifierResult, error)
	QualificationFrequency(ctx context.Context) (QualificationFrequency, error)
	CityDistribution(ctx context.Context) ([]CountRow, error)
	StateDistribution(ctx context.Context) ([]CountRow, error)
	GenderDistribution(ctx context.Context) (GenderStats, error)
	BloodGroupDistribution(ctx context.Context, withMembers bool) ([]BloodGroupRow, error)
	EmployeeQualifications(ctx context.Context, employeeID int64) (*EmployeeQualifications, error)
}

type Options struct {
	LeadLagOrder LeadLagOrder
	BloodMembers bool
	MissingField string
	EmployeeID   *int64
}

type Dashboard struct {
	GeneratedAt time.Time `json:"generatedAt"`

	SalaryGrades            []GradeRow          `json:"salaryGrades"`
	SalaryRanks             []RankRow           `json:"salaryRanks"`
	RunningSalary           []RunningRow        `json:"runningSalary"`
	LeadLagOrder            LeadLagOrder        `json:"leadLagOrder"`
	SalaryLeadLag           []LeadLagRow        `json:"salaryLeadLag"`
	DepartmentsAboveAverage []DepartmentAverage `json:"departmentsAboveAverage"`
	SalarySummary           SalarySummary       `json:"salarySummary"`
	TopEarners              []Row               `json:"topEarners"`
	LowPerformers           []Row               `json:"lowPerformers"`
	PromotionCandidates     []Row               `json:"promotionCandidates"`
	ExperiencedEmployees    []Row               `json:"experiencedEmployees"`

	MissingIdentifier MissingIdentifierResult `json:"missingIdentifier"`
	Qualifications    QualificationFrequency  `json:"qualifications"`
	Cities            []CountRow              `json:"cities"`
	States            []CountRow              `json:"states"`
	Gender            GenderStats             `json:"gender"`
	BloodGroups       []BloodGroupRow         `json:"bloodGroups"`
	Employee          *EmployeeQualifications `json:"employee,omitempty"`

	// Warnings names the aggregates that failed and were left empty.
	Warnings []string `json:"warnings,omitempty"`
}

type Service struct {
	Relational RelationalSource
	Documents  DocumentSource

	now func() time.Time
}

func NewService(rel RelationalSource, docs DocumentSource) *Service {
	return &Service{Relational: rel, Documents: docs, now: time.Now}
}

func emptyDashboard(now time.Time, order LeadLagOrder, field string) *Dashboard {
	return &Dashboard{
		GeneratedAt:             now,
		SalaryGrades:            []GradeRow{},
		SalaryRanks:             []RankRow{},
		RunningSalary:           []RunningRow{},
		LeadLagOrder:            order,
		SalaryLeadLag:           []LeadLagRow{},
		DepartmentsAboveAverage: []DepartmentAverage{},
		TopEarners:              []Row{},
		LowPerformers:           []Row{},
		PromotionCandidates:     []Row{},
		ExperiencedEmployees:    []Row{},
		MissingIdentifier:       MissingIdentifierResult{Field: field, Records: []IdentifierGap{}},
		Qualifications:          QualificationFrequency{Counts: []CountRow{}},
		Cities:                  []CountRow{},
		States:                  []CountRow{},
		BloodGroups:             []BloodGroupRow{},
	}
}

// Dashboard runs every aggregate and merges the results. A failing aggregate is logged and left
// empty; cancellation of ctx aborts the whole run.
func (s *Service) Dashboard(ctx context.Context, opts Options) (*Dashboard, error) {
	order, ok := ParseLeadLagOrder(string(opts.LeadLagOrder))
	if !ok {
		order = OrderByEmployee
	}
	field := opts.MissingField
	if field == "" {
		field = DefaultMissingField
	}
	d := emptyDashboard(s.now(), order, field)

	steps := []aggregateStep{
		{"salaryGrades", func() (err error) { d.SalaryGrades, err = orEmpty(s.Relational.SalaryGrades(ctx)); return }},
		{"salaryRanks", func() (err error) { d.SalaryRanks, err = orEmpty(s.Relational.SalaryRanks(ctx)); return }},
		{"runningSalary", func() (err error) { d.RunningSalary, err = orEmpty(s.Relational.RunningSalary(ctx)); return }},
		{"salaryLeadLag", func() (err error) { d.SalaryLeadLag, err = orEmpty(s.Relational.SalaryLeadLag(ctx, order)); return }},
		{"departmentsAboveAverage", func() (err error) {
			d.DepartmentsAboveAverage, err = orEmpty(s.Relational.DepartmentsAboveAverage(ctx))
			return
		}},
		{"salarySummary", func() error {
			salaries, err := s.Relational.Salaries(ctx)
			if err != nil {
				return err
			}
			d.SalarySummary, err = SummarizeSalaries(salaries)
			return err
		}},
		{"topEarners", func() (err error) { d.TopEarners, err = orEmpty(s.Relational.View(ctx, ViewTopEarners)); return }},
		{"lowPerformers", func() (err error) { d.LowPerformers, err = orEmpty(s.Relational.View(ctx, ViewLowPerformers)); return }},
		{"promotionCandidates", func() (err error) {
			d.PromotionCandidates, err = orEmpty(s.Relational.View(ctx, ViewPromotionCandidates))
			return
		}},
		{"experiencedEmployees", func() (err error) {
			d.ExperiencedEmployees, err = orEmpty(s.Relational.View(ctx, ViewExperiencedEmployees))
			return
		}},
		{"missingIdentifier", func() error {
			res, err := s.Documents.MissingIdentifier(ctx, field)
			if err != nil {
				return err
			}
			d.MissingIdentifier = res
			return nil
		}},
		{"qualifications", func() error {
			res, err := s.Documents.QualificationFrequency(ctx)
			if err != nil {
				return err
			}
			d.Qualifications = res
			return nil
		}},
		{"cities", func() (err error) { d.Cities, err = orEmpty(s.Documents.CityDistribution(ctx)); return }},
		{"states", func() (err error) { d.States, err = orEmpty(s.Documents.StateDistribution(ctx)); return }},
		{"gender", func() (err error) { d.Gender, err = s.Documents.GenderDistribution(ctx); return }},
		{"bloodGroups", func() (err error) {
			d.BloodGroups, err = orEmpty(s.Documents.BloodGroupDistribution(ctx, opts.BloodMembers))
			return
		}},
	}
	if opts.EmployeeID != nil {
		employeeID := *opts.EmployeeID
		steps = append(steps, aggregateStep{"employee", func() (err error) {
			d.Employee, err = s.Documents.EmployeeQualifications(ctx, employeeID)
			return
		}})
	}

	for _, step := range steps {
		err := step.run()
		if err == nil {
			continue
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		log.WithError(err).WithField("aggregate", step.name).Warn("dashboard aggregate failed")
		d.Warnings = append(d.Warnings, step.name)
	}
	return d, nil
}

type aggregateStep struct {
	name string
	run  func() error
}

func orEmpty[T any](rows []T, err error) ([]T, error) {
	if err != nil {
		return []T{}, err
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}

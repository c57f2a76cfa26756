package reports

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"hrportal/internal/domain/analytics"
)

const missingValue = "n/a"

// BuildDocument flattens a dashboard into titled tables. Every renderer draws from the same Document.
func BuildDocument(d *analytics.Dashboard, meta CompanyMeta) Document {
	doc := Document{Meta: meta.Normalize(), GeneratedAt: time.Now().UTC()}
	if d == nil {
		return doc
	}
	if !d.GeneratedAt.IsZero() {
		doc.GeneratedAt = d.GeneratedAt.UTC()
	}
	doc.Warnings = append(doc.Warnings, d.Warnings...)

	doc.Sections = append(doc.Sections,
		salaryGradeSection(d.SalaryGrades),
		salaryRankSection(d.SalaryRanks),
		runningSection(d.RunningSalary),
		leadLagSection(d.SalaryLeadLag, d.LeadLagOrder),
		departmentSection(d.DepartmentsAboveAverage),
		summarySection(d.SalarySummary),
		viewSection("Top earners per department", d.TopEarners),
		viewSection("Low performers", d.LowPerformers),
		viewSection("Promotion candidates", d.PromotionCandidates),
		viewSection("Experienced employees", d.ExperiencedEmployees),
		missingSection(d.MissingIdentifier),
		countSection("Qualifications", "Qualification", d.Qualifications.Counts, "Source: "+d.Qualifications.Source),
		countSection("Employees by city", "City", d.Cities, ""),
		countSection("Employees by state", "State", d.States, ""),
		genderSection(d.Gender),
		bloodGroupSection(d.BloodGroups),
	)
	if d.Employee != nil {
		doc.Sections = append(doc.Sections, employeeSection(d.Employee))
	}
	return doc
}

func salaryGradeSection(rows []analytics.GradeRow) Section {
	s := Section{Title: "Salary grades", Columns: []string{"Employee", "Name", "Department", "Salary", "Grade"}}
	for _, r := range rows {
		s.Rows = append(s.Rows, []string{id(r.EmpID), r.Name, r.Department, money(r.CurrentSalary), r.Grade})
	}
	return s
}

func salaryRankSection(rows []analytics.RankRow) Section {
	s := Section{Title: "Salary ranking", Columns: []string{"Rank", "Employee", "Name", "Salary"}}
	for _, r := range rows {
		s.Rows = append(s.Rows, []string{id(r.Rank), id(r.EmpID), r.Name, money(r.CurrentSalary)})
	}
	return s
}

func runningSection(rows []analytics.RunningRow) Section {
	s := Section{Title: "Running salary totals", Columns: []string{"Employee", "Salary", "Running sum", "Running average"}}
	for _, r := range rows {
		s.Rows = append(s.Rows, []string{id(r.EmpID), money(r.CurrentSalary), money(r.RunningSum), money(r.RunningAvg)})
	}
	return s
}

func leadLagSection(rows []analytics.LeadLagRow, order analytics.LeadLagOrder) Section {
	s := Section{
		Title:   "Salary comparison with neighbours",
		Note:    "Ordered by " + string(order),
		Columns: []string{"Employee", "Hire date", "Salary", "Previous", "Next"},
	}
	for _, r := range rows {
		s.Rows = append(s.Rows, []string{id(r.EmpID), date(r.HireDate), money(r.CurrentSalary), money(r.PreviousSalary), money(r.NextSalary)})
	}
	return s
}

func departmentSection(rows []analytics.DepartmentAverage) Section {
	s := Section{Title: "Departments above the company average", Columns: []string{"Department", "Average salary", "Company average"}}
	for _, r := range rows {
		avg, overall := r.AverageSalary, r.OverallAverage
		s.Rows = append(s.Rows, []string{r.Department, money(&avg), money(&overall)})
	}
	return s
}

func summarySection(sum analytics.SalarySummary) Section {
	s := Section{Title: "Salary distribution", Columns: []string{"Measure", "Value"}}
	if sum.Count == 0 {
		return s
	}
	values := []struct {
		label string
		v     float64
	}{
		{"Minimum", sum.Min}, {"25th percentile", sum.P25}, {"Median", sum.Median}, {"Mean", sum.Mean},
		{"75th percentile", sum.P75}, {"90th percentile", sum.P90}, {"Maximum", sum.Max},
	}
	s.Rows = append(s.Rows, []string{"Employees with salary", strconv.Itoa(sum.Count)})
	for _, v := range values {
		v := v
		s.Rows = append(s.Rows, []string{v.label, money(&v.v)})
	}
	return s
}

// viewSection renders an opaque view; columns are the sorted union of the row keys.
func viewSection(title string, rows []analytics.Row) Section {
	s := Section{Title: title}
	seen := map[string]struct{}{}
	for _, r := range rows {
		for k := range r {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				s.Columns = append(s.Columns, k)
			}
		}
	}
	sort.Strings(s.Columns)
	for _, r := range rows {
		line := make([]string, len(s.Columns))
		for i, col := range s.Columns {
			line[i] = cell(r[col])
		}
		s.Rows = append(s.Rows, line)
	}
	return s
}

func missingSection(res analytics.MissingIdentifierResult) Section {
	s := Section{
		Title:   "Records missing " + res.Field,
		Note:    fmt.Sprintf("%d record(s) without %s", res.Count, res.Field),
		Columns: []string{"Name", "Record"},
	}
	for _, r := range res.Records {
		s.Rows = append(s.Rows, []string{r.Name, r.ID})
	}
	return s
}

func countSection(title, label string, rows []analytics.CountRow, note string) Section {
	s := Section{Title: title, Note: note, Columns: []string{label, "Employees"}}
	for _, r := range rows {
		s.Rows = append(s.Rows, []string{r.Value, strconv.FormatInt(r.Count, 10)})
	}
	return s
}

func genderSection(g analytics.GenderStats) Section {
	return Section{
		Title:   "Gender distribution",
		Columns: []string{"Group", "Employees", "Share"},
		Rows: [][]string{
			{"Male", strconv.FormatInt(g.Male, 10), percent(g.MalePercent)},
			{"Female", strconv.FormatInt(g.Female, 10), percent(g.FemalePercent)},
			{"Total", strconv.FormatInt(g.Total, 10), ""},
		},
	}
}

func bloodGroupSection(rows []analytics.BloodGroupRow) Section {
	withMembers := false
	for _, r := range rows {
		if len(r.EmployeeIDs) > 0 {
			withMembers = true
			break
		}
	}
	s := Section{Title: "Blood groups", Columns: []string{"Group", "Employees"}}
	if withMembers {
		s.Columns = append(s.Columns, "Members")
	}
	for _, r := range rows {
		line := []string{r.Group, strconv.FormatInt(r.Count, 10)}
		if withMembers {
			line = append(line, joinIDs(r.EmployeeIDs))
		}
		s.Rows = append(s.Rows, line)
	}
	return s
}

func employeeSection(e *analytics.EmployeeQualifications) Section {
	s := Section{
		Title:   fmt.Sprintf("Employee %d: %s", e.EmployeeID, e.Name),
		Note:    "Source: " + e.Source,
		Columns: []string{"Kind", "Detail"},
	}
	for _, q := range e.Qualifications {
		s.Rows = append(s.Rows, []string{"Qualification", q})
	}
	for _, x := range e.Experiences {
		s.Rows = append(s.Rows, []string{"Experience", x})
	}
	return s
}

func id(v int64) string { return strconv.FormatInt(v, 10) }

func money(v *float64) string {
	if v == nil {
		return missingValue
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func percent(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}

func date(t *time.Time) string {
	if t == nil {
		return missingValue
	}
	return t.Format("2006-01-02")
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, v := range ids {
		parts[i] = id(v)
	}
	return strings.Join(parts, ", ")
}

func cell(v any) string {
	switch t := v.(type) {
	case nil:
		return missingValue
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', 2, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', 2, 64)
	case time.Time:
		return t.Format("2006-01-02")
	default:
		return fmt.Sprint(t)
	}
}

package analytics

import "time"

type LeadLagOrder string

const (
	OrderByEmployee LeadLagOrder = "employee"
	OrderByHireDate LeadLagOrder = "hire_date"
)

func ParseLeadLagOrder(value string) (LeadLagOrder, bool) {
	switch LeadLagOrder(value) {
	case "", OrderByEmployee:
		return OrderByEmployee, true
	case OrderByHireDate:
		return OrderByHireDate, true
	default:
		return "", false
	}
}

type GradeRow struct {
	EmpID         int64    `json:"empId"`
	Name          string   `json:"name"`
	Department    string   `json:"department"`
	CurrentSalary *float64 `json:"currentSalary"`
	Grade         string   `json:"grade"`
}

type RankRow struct {
	EmpID         int64    `json:"empId"`
	Name          string   `json:"name"`
	CurrentSalary *float64 `json:"currentSalary"`
	Rank          int64    `json:"rank"`
}

type RunningRow struct {
	EmpID         int64    `json:"empId"`
	CurrentSalary *float64 `json:"currentSalary"`
	RunningSum    *float64 `json:"runningSum"`
	RunningAvg    *float64 `json:"runningAvg"`
}

// LeadLagRow carries the neighbouring salaries; the first and last rows have nil neighbours.
type LeadLagRow struct {
	EmpID          int64      `json:"empId"`
	HireDate       *time.Time `json:"hireDate,omitempty"`
	CurrentSalary  *float64   `json:"currentSalary"`
	LastIncrement  *time.Time `json:"lastIncrement,omitempty"`
	PreviousSalary *float64   `json:"previousSalary"`
	NextSalary     *float64   `json:"nextSalary"`
}

type DepartmentAverage struct {
	Department     string  `json:"department"`
	AverageSalary  float64 `json:"averageSalary"`
	OverallAverage float64 `json:"overallAverage"`
}

// Row is one record from an opaque reporting view, keyed by column name.
type Row map[string]any

type CountRow struct {
	Value string `bson:"_id" json:"value"`
	Count int64  `bson:"count" json:"count"`
}

type IdentifierGap struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

type MissingIdentifierResult struct {
	Field   string          `json:"field"`
	Count   int             `json:"count"`
	Records []IdentifierGap `json:"records"`
}

const (
	SourceQualifications = "qualifications"
	SourcePersonnel      = "personnel"
)

type QualificationFrequency struct {
	Source string     `json:"source"`
	Counts []CountRow `json:"counts"`
}

type GenderStats struct {
	Total         int64   `json:"total"`
	Male          int64   `json:"male"`
	Female        int64   `json:"female"`
	MalePercent   float64 `json:"malePercent"`
	FemalePercent float64 `json:"femalePercent"`
}

type BloodGroupRow struct {
	Group       string  `bson:"_id" json:"group"`
	Count       int64   `bson:"count" json:"count"`
	EmployeeIDs []int64 `bson:"employee_ids,omitempty" json:"employeeIds,omitempty"`
}

type EmployeeQualifications struct {
	EmployeeID     int64    `json:"employeeId"`
	Name           string   `json:"name"`
	Source         string   `json:"source"`
	Qualifications []string `json:"qualifications"`
	Experiences    []string `json:"experiences"`
}

type SalarySummary struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P25    float64 `json:"p25"`
	P75    float64 `json:"p75"`
	P90    float64 `json:"p90"`
}

package employee

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound    = errors.New("employee not found")
	ErrEmailExists = errors.New("employee email already exists")
)

const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"

	MaxPerformanceRating = 5.0

	// MaxSalary is the largest value a NUMERIC(12,2) salary column holds.
	MaxSalary = 9999999999.99
)

var Genders = []string{GenderMale, GenderFemale, GenderOther}

type Employee struct {
	ID        int64      `json:"empId"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	DOB       *time.Time `json:"dob,omitempty"`
	Gender    string     `json:"gender,omitempty"`
	Email     string     `json:"email,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	HireDate  *time.Time `json:"hireDate,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type ProfessionalInfo struct {
	EmpID             int64      `json:"empId"`
	Designation       string     `json:"designation,omitempty"`
	Department        string     `json:"department,omitempty"`
	CurrentSalary     *float64   `json:"currentSalary,omitempty"`
	PreviousSalary    *float64   `json:"previousSalary,omitempty"`
	LastIncrement     *time.Time `json:"lastIncrement,omitempty"`
	Skills            []string   `json:"skills"`
	PerformanceRating *float64   `json:"performanceRating,omitempty"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

type EmployeeWithProfessional struct {
	Employee
	Professional *ProfessionalInfo `json:"professional,omitempty"`
}

// CanonicalGender returns the canonical spelling of a recognised gender, matching case-insensitively.
func CanonicalGender(value string) (string, bool) {
	value = strings.TrimSpace(value)
	for _, g := range Genders {
		if strings.EqualFold(g, value) {
			return g, true
		}
	}
	return "", false
}

// NormalizeSkills trims each skill and drops empties and case-insensitive duplicates.
func NormalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := map[string]struct{}{}
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			continue
		}
		key := strings.ToLower(skill)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, skill)
	}
	return out
}

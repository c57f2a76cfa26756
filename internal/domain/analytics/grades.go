package analytics

const (
	GradeHigh   = "High"
	GradeMedium = "Medium"
	GradeLow    = "Low"

	// HighSalaryThreshold is exclusive; MediumSalaryFloor is inclusive.
	HighSalaryThreshold = 70000.0
	MediumSalaryFloor   = 50000.0
)

// GradeFor classifies a salary: above 70000 is High, 50000 through 70000 is Medium, anything else is Low.
func GradeFor(salary float64) string {
	switch {
	case salary > HighSalaryThreshold:
		return GradeHigh
	case salary >= MediumSalaryFloor:
		return GradeMedium
	default:
		return GradeLow
	}
}

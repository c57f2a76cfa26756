package analytics

import (
	"github.com/montanaflynn/stats"
)

// SummarizeSalaries describes the salary population. An empty population yields zeros.
// Percentiles use the nearest-rank method so tiny populations still produce values.
func SummarizeSalaries(salaries []float64) (SalarySummary, error) {
	if len(salaries) == 0 {
		return SalarySummary{}, nil
	}
	data := stats.LoadRawData(salaries)
	summary := SalarySummary{Count: len(salaries)}

	var err error
	if summary.Min, err = stats.Min(data); err != nil {
		return SalarySummary{}, err
	}
	if summary.Max, err = stats.Max(data); err != nil {
		return SalarySummary{}, err
	}
	if summary.Mean, err = stats.Mean(data); err != nil {
		return SalarySummary{}, err
	}
	if summary.Median, err = stats.Median(data); err != nil {
		return SalarySummary{}, err
	}
	if summary.P25, err = stats.PercentileNearestRank(data, 25); err != nil {
		return SalarySummary{}, err
	}
	if summary.P75, err = stats.PercentileNearestRank(data, 75); err != nil {
		return SalarySummary{}, err
	}
	if summary.P90, err = stats.PercentileNearestRank(data, 90); err != nil {
		return SalarySummary{}, err
	}
	summary.Mean = round2(summary.Mean)
	return summary, nil
}

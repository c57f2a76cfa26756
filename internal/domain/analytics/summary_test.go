package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeSalaries(t *testing.T) {
	summary, err := SummarizeSalaries([]float64{80000, 40000, 60000, 50000, 70000})
	require.NoError(t, err)
	assert.Equal(t, SalarySummary{
		Count:  5,
		Min:    40000,
		Max:    80000,
		Mean:   60000,
		Median: 60000,
		P25:    50000,
		P75:    70000,
		P90:    80000,
	}, summary)
}

func TestSummarizeSalariesSmallAndEmpty(t *testing.T) {
	summary, err := SummarizeSalaries(nil)
	require.NoError(t, err)
	assert.Equal(t, SalarySummary{}, summary)

	summary, err = SummarizeSalaries([]float64{45000, 55000})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Count)
	assert.Equal(t, 45000.0, summary.P25)
	assert.Equal(t, 50000.0, summary.Median)
	assert.Equal(t, 55000.0, summary.P90)
}

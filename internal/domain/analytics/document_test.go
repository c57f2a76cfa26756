package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestComputeGenderStats(t *testing.T) {
	tests := []struct {
		name                string
		total, male, female int64
		wantMale, wantFem   float64
	}{
		{name: "empty", total: 0, male: 0, female: 0},
		{name: "even", total: 4, male: 2, female: 2, wantMale: 50, wantFem: 50},
		{name: "thirds", total: 3, male: 1, female: 2, wantMale: 33.33, wantFem: 66.67},
		{name: "other genders", total: 10, male: 3, female: 5, wantMale: 30, wantFem: 50},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeGenderStats(tc.total, tc.male, tc.female)
			assert.InDelta(t, tc.wantMale, got.MalePercent, 1e-9)
			assert.InDelta(t, tc.wantFem, got.FemalePercent, 1e-9)
			assert.LessOrEqual(t, got.MalePercent+got.FemalePercent, 100+1e-9)
		})
	}
}

func TestComputeGenderStatsNeverExceedsHundred(t *testing.T) {
	halfCent := ComputeGenderStats(20000, 1, 19999)
	assert.LessOrEqual(t, halfCent.MalePercent+halfCent.FemalePercent, 100+1e-9)

	for total := int64(1); total <= 300; total++ {
		for male := int64(0); male <= total; male++ {
			got := ComputeGenderStats(total, male, total-male)
			if got.MalePercent+got.FemalePercent > 100+1e-9 {
				t.Fatalf("total=%d male=%d sums to %v", total, male, got.MalePercent+got.FemalePercent)
			}
		}
	}
}

func TestValidFieldName(t *testing.T) {
	assert.True(t, ValidFieldName("pan"))
	assert.True(t, ValidFieldName("contact.email"))
	assert.False(t, ValidFieldName("$where"))
	assert.False(t, ValidFieldName("pan.$"))
	assert.False(t, ValidFieldName(""))
}

func TestQualificationPipelineSelectsSource(t *testing.T) {
	normalized := qualificationPipeline(true)
	assert.Equal(t, "$unwind", normalized[0][0].Key)

	fallback := qualificationPipeline(false)
	assert.Equal(t, "$project", fallback[0][0].Key)
	project := fallback[0][0].Value.(bson.D)
	ifNull := project[0].Value.(bson.D)[0]
	assert.Equal(t, "$ifNull", ifNull.Key)
	assert.Equal(t, bson.A{"$qualification", "$qualifications"}, ifNull.Value)
}

func TestBloodGroupPipelineMembers(t *testing.T) {
	without := bloodGroupPipeline(false)[0][0].Value.(bson.D)
	assert.Len(t, without, 2)

	with := bloodGroupPipeline(true)[0][0].Value.(bson.D)
	assert.Len(t, with, 3)
	assert.Equal(t, "employee_ids", with[2].Key)
}

func TestMissingFieldFilter(t *testing.T) {
	filter := missingFieldFilter("pan")
	clauses := filter["$or"].(bson.A)
	assert.Len(t, clauses, 3)
}

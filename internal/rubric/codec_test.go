package rubric

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coachdesk-api/internal/models"
)

func sampleCriteria() []models.Criterion {
	return []models.Criterion{
		{
			Name:   "Completeness",
			Weight: 60,
			Levels: []models.Level{
				{Description: "Missing most deliverables", Range: [2]float64{0, 40}},
				{Description: "Partial coverage", Range: [2]float64{41, 70}},
				{Description: "All deliverables present", Range: [2]float64{71, 100}},
			},
		},
		{
			Name:   "Clarity",
			Weight: 40,
			Levels: []models.Level{
				{Description: "Hard to follow", Range: [2]float64{0, 50}},
				{Description: "Clear and structured", Range: [2]float64{51, 100}},
			},
		},
	}
}

func TestCriteriaRoundTrip(t *testing.T) {
	original := sampleCriteria()

	encoded, err := EncodeCriteria(original)
	require.NoError(t, err)

	decoded, err := ParseCriteria(&encoded)
	require.NoError(t, err)
	require.Equal(t, original, decoded)
}

func TestParseMalformedCriteriaDefaultsToEmpty(t *testing.T) {
	raw := `{"not": "a list"`
	decoded, err := ParseCriteria(&raw)
	require.Error(t, err)
	require.NotNil(t, decoded)
	require.Empty(t, decoded)
}

func TestParseNullCriteria(t *testing.T) {
	decoded, err := ParseCriteria(nil)
	require.NoError(t, err)
	require.Empty(t, decoded)

	empty := "  "
	decoded, err = ParseCriteria(&empty)
	require.NoError(t, err)
	require.Empty(t, decoded)
}

func TestValidateCriteria(t *testing.T) {
	require.NoError(t, ValidateCriteria(sampleCriteria()))

	missingLevels := []models.Criterion{{Name: "Empty", Weight: 10}}
	require.Error(t, ValidateCriteria(missingLevels))

	unnamed := []models.Criterion{{Weight: 10, Levels: []models.Level{{Description: "x"}}}}
	require.Error(t, ValidateCriteria(unnamed))
}

func TestValidateRubric(t *testing.T) {
	valid := models.Rubric{Scope: sampleCriteria(), Quality: sampleCriteria()}
	require.NoError(t, ValidateRubric(valid))

	invalid := models.Rubric{Scope: sampleCriteria(), Quality: []models.Criterion{{Name: "x", Weight: 1}}}
	err := ValidateRubric(invalid)
	require.Error(t, err)
	require.Contains(t, err.Error(), "quality")
}

func TestTotalWeight(t *testing.T) {
	require.Equal(t, 100, models.TotalWeight(sampleCriteria()))
	require.Zero(t, models.TotalWeight(nil))
}

package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFinalGradeRoundsHalfUp(t *testing.T) {
	result := GradingResult{
		Scope:   GradingSection{OverallGrade: 80},
		Quality: GradingSection{OverallGrade: 90},
	}
	require.Equal(t, 85, result.FinalGrade())

	result.Quality.OverallGrade = 91
	require.Equal(t, 86, result.FinalGrade())
}

func TestNormalizeClampsGradesAndLevels(t *testing.T) {
	result := GradingResult{
		Scope: GradingSection{
			OverallGrade: 140,
			Criteria: []CriterionGrade{
				{Name: "Completeness", Grade: -5, ChosenLevel: 12},
			},
		},
		Quality: GradingSection{OverallGrade: -1},
	}
	result.Normalize()

	require.Equal(t, 100, result.Scope.OverallGrade)
	require.Equal(t, 0, result.Scope.Criteria[0].Grade)
	require.Equal(t, 10, result.Scope.Criteria[0].ChosenLevel)
	require.Equal(t, 0, result.Quality.OverallGrade)
}

func TestTotalWeight(t *testing.T) {
	criteria := []Criterion{{Name: "A", Weight: 40}, {Name: "B", Weight: 60}}
	require.Equal(t, 100, TotalWeight(criteria))
	require.Zero(t, TotalWeight(nil))
}

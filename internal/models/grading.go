package models

import "math"

// CriterionGrade is the grade a single rubric criterion received.
// ChosenLevel indexes into the criterion's ordered level list.
type CriterionGrade struct {
	Name        string `json:"name"`
	Grade       int    `json:"grade"`
	ChosenLevel int    `json:"chosen_level"`
	Comment     string `json:"comment"`
}

// GradingSection holds the per-criterion grades and the overall verdict for
// one half of the rubric (scope or quality).
type GradingSection struct {
	Criteria       []CriterionGrade `json:"criteria"`
	OverallGrade   int              `json:"overall_grade"`
	OverallComment string           `json:"overall_comment"`
}

// GradingResult is the evaluator's output for one learner.
type GradingResult struct {
	UserID  int64          `json:"user_id"`
	Scope   GradingSection `json:"scope"`
	Quality GradingSection `json:"quality"`
}

// FinalGrade combines the two section grades into the published grade.
func (r GradingResult) FinalGrade() int {
	return int(math.Round(float64(r.Scope.OverallGrade+r.Quality.OverallGrade) / 2))
}

// ClampGrade bounds a grade to the [0,100] scale.
func ClampGrade(grade int) int {
	if grade < 0 {
		return 0
	}
	if grade > 100 {
		return 100
	}
	return grade
}

// ClampLevel bounds a chosen level to the [0,10] range the editor allows.
func ClampLevel(level int) int {
	if level < 0 {
		return 0
	}
	if level > 10 {
		return 10
	}
	return level
}

// Normalize clamps every grade and chosen level in the result in place.
func (r *GradingResult) Normalize() {
	normalizeSection(&r.Scope)
	normalizeSection(&r.Quality)
}

func normalizeSection(section *GradingSection) {
	section.OverallGrade = ClampGrade(section.OverallGrade)
	for i := range section.Criteria {
		section.Criteria[i].Grade = ClampGrade(section.Criteria[i].Grade)
		section.Criteria[i].ChosenLevel = ClampLevel(section.Criteria[i].ChosenLevel)
	}
}

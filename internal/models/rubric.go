package models

// Level is one rung of a rubric criterion: a description and the numeric
// score range it covers. Levels are ordered; grading results reference them
// by index.
type Level struct {
	Description string     `json:"description"`
	Range       [2]float64 `json:"range"`
}

// Criterion is a weighted rubric criterion with its ordered levels.
type Criterion struct {
	Name   string  `json:"name"`
	Weight int     `json:"weight"`
	Levels []Level `json:"levels"`
}

// Rubric pairs the two criteria lists an assignment is graded against.
// The score fields are present only when the grading service returns a
// previously stored rubric.
type Rubric struct {
	Scope       []Criterion `json:"Scope"`
	Quality     []Criterion `json:"Quality"`
	MaxScore    *float64    `json:"max_score,omitempty"`
	PassedScore *float64    `json:"passed_score,omitempty"`
	FinalScore  *float64    `json:"final_score,omitempty"`
}

// TotalWeight sums the weights of a criteria list.
func TotalWeight(criteria []Criterion) int {
	total := 0
	for _, criterion := range criteria {
		total += criterion.Weight
	}
	return total
}

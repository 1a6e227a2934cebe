package models

// Task is a gradable assignment within a course. ScopeRubric and
// QualityRubric are decoded from the JSON payloads embedded in the
// assignment record; a malformed payload decodes to an empty list.
type Task struct {
	ID                     string      `json:"id"`
	CourseID               string      `json:"course_id"`
	Title                  string      `json:"title"`
	Description            string      `json:"description"`
	TotalSubmissions       int         `json:"total_submissions"`
	ScoredSubmissions      int         `json:"scored_submissions"`
	PendingSubmissions     int         `json:"pending_submissions"`
	UniqueSubmissions      int         `json:"unique_submissions"`
	TotalUniqueSubmissions int         `json:"total_unique_submissions,omitempty"`
	DueDate                string      `json:"due_date,omitempty"`
	MaxPoints              *float64    `json:"max_points,omitempty"`
	Type                   string      `json:"type,omitempty"`
	SubmissionTypes        string      `json:"submission_types,omitempty"`
	ScopeRubric            []Criterion `json:"scope_rubric"`
	QualityRubric          []Criterion `json:"quality_rubric"`
}

// PendingTask is a dashboard line item for an assignment with submissions
// awaiting review.
type PendingTask struct {
	ID          string `json:"id"`
	CourseID    string `json:"course_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Count       int    `json:"count"`
}

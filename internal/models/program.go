package models

// Program is a course offering attached to a journey through the
// journey_programs join relation.
type Program struct {
	ID          string `json:"id"`
	JourneyID   string `json:"journey_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	StartDate   string `json:"start_date,omitempty"`
	Status      string `json:"status"`
}

// Course is the coach-facing view of a program with its derived task counts.
type Course struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Type         string `json:"type"`
	Thumbnail    string `json:"thumbnail,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	LearnerCount int    `json:"learner_count"`
	TotalTasks   int    `json:"total_tasks"`
	ScoredTasks  int    `json:"scored_tasks"`
}

// PendingTasks returns the number of tasks still awaiting a score.
// Never negative, even when the two counts come from separate queries.
func (c Course) PendingTasks() int {
	if pending := c.TotalTasks - c.ScoredTasks; pending > 0 {
		return pending
	}
	return 0
}

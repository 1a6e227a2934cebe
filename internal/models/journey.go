package models

// GraduationStatus is the lifecycle state of a learner within a journey.
type GraduationStatus string

const (
	GraduationGraduated  GraduationStatus = "graduated"
	GraduationInProgress GraduationStatus = "in_progress"
)

// Journey is a top-level learner cohort assigned to a coach. Journeys are
// owned by the remote data store; the derived assignment counts are filled
// in by the aggregation layer.
type Journey struct {
	ID                 string `json:"id"`
	Title              string `json:"title"`
	Learners           int    `json:"learners"`
	PendingAssignments int    `json:"pending_assignments"`
	ScoredAssignments  int    `json:"scored_assignments"`
}

// JourneyLearner is a learner's membership row in a journey.
type JourneyLearner struct {
	ID         string           `json:"id"`
	JourneyID  string           `json:"journey_id"`
	UserID     string           `json:"user_id"`
	Graduation GraduationStatus `json:"graduation_status"`
}

// JourneySummary is the per-journey learner breakdown shown on the dashboard.
type JourneySummary struct {
	JourneyID    string `json:"journey_id"`
	JourneyTitle string `json:"journey_title"`
	Learners     int    `json:"learners_count"`
}

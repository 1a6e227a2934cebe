package dto

import (
	"github.com/noah-isme/coachdesk-api/internal/models"
	"github.com/noah-isme/coachdesk-api/internal/stats"
)

// DashboardResponse is the coach dashboard aggregate: journeys with their
// learner rolls, learner statistics, assignment totals, and the pending
// task list.
type DashboardResponse struct {
	Journeys         []models.Journey        `json:"journeys"`
	Learners         []models.JourneyLearner `json:"learners"`
	Stats            stats.LearnerStats      `json:"stats"`
	JourneysSummary  []models.JourneySummary `json:"journeys_summary"`
	PendingCount     int                     `json:"pending_assignments_count"`
	ScoredCount      int                     `json:"scored_assignments_count"`
	TotalAssignments int                     `json:"total_assignments_count"`
	PendingTasks     []models.PendingTask    `json:"pending_tasks"`
}

// JourneyListResponse lists a coach's journeys with their merged
// pending/scored counts.
type JourneyListResponse struct {
	Journeys []models.Journey `json:"journeys"`
}

// JourneyProgramsResponse lists the programs of one journey with the
// journey-wide assignment breakdown.
type JourneyProgramsResponse struct {
	Programs         []models.Program `json:"programs"`
	PendingByProgram map[string]int   `json:"pending_by_program"`
	ScoredByProgram  map[string]int   `json:"scored_by_program"`
	PendingCount     int              `json:"pending_assignments_count"`
	ScoredCount      int              `json:"scored_assignments_count"`
}

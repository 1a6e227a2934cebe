// Package stats derives dashboard statistics from submission row sets.
// Everything here is a pure single-pass reduction; rows with no submissions
// simply contribute zero, never an error.
package stats

import "github.com/noah-isme/coachdesk-api/internal/models"

// Totals summarises a submission row set. Scored counts rows with a
// non-null grade; AwaitingReview counts rows whose status is pending or
// under review.
type Totals struct {
	Total          int `json:"total"`
	Scored         int `json:"scored"`
	AwaitingReview int `json:"awaiting_review"`
}

// Pending is the unscored remainder, clamped to zero.
func (t Totals) Pending() int {
	if pending := t.Total - t.Scored; pending > 0 {
		return pending
	}
	return 0
}

// Summarize reduces rows into Totals.
func Summarize(rows []models.SubmissionRow) Totals {
	var totals Totals
	for _, row := range rows {
		totals.Total++
		if row.Scored() {
			totals.Scored++
		}
		if row.Status.AwaitingReview() {
			totals.AwaitingReview++
		}
	}
	return totals
}

// CountBy accumulates matching rows into a map keyed by the group function.
func CountBy(rows []models.SubmissionRow, match func(models.SubmissionRow) bool, key func(models.SubmissionRow) string) map[string]int {
	counts := make(map[string]int)
	for _, row := range rows {
		if match(row) {
			counts[key(row)]++
		}
	}
	return counts
}

// AwaitingReviewBy groups pending/under-review rows by the given key.
func AwaitingReviewBy(rows []models.SubmissionRow, key func(models.SubmissionRow) string) map[string]int {
	return CountBy(rows, func(r models.SubmissionRow) bool { return r.Status.AwaitingReview() }, key)
}

// ScoredBy groups scored rows by the given key.
func ScoredBy(rows []models.SubmissionRow, key func(models.SubmissionRow) string) map[string]int {
	return CountBy(rows, func(r models.SubmissionRow) bool { return r.Scored() }, key)
}

// ByJourney keys a row by its journey id.
func ByJourney(r models.SubmissionRow) string { return r.JourneyID }

// ByProgram keys a row by its program id.
func ByProgram(r models.SubmissionRow) string { return r.ProgramID }

// ByAssignment keys a row by its assignment id.
func ByAssignment(r models.SubmissionRow) string { return r.AssignmentID }

// Sum adds up all counts in a grouped map.
func Sum(counts map[string]int) int {
	total := 0
	for _, count := range counts {
		total += count
	}
	return total
}

// MergeJourneyCounts joins journeys with their derived counts by id,
// defaulting missing keys to zero. The input slice is not modified.
func MergeJourneyCounts(journeys []models.Journey, pending, scored map[string]int) []models.Journey {
	merged := make([]models.Journey, len(journeys))
	for i, journey := range journeys {
		journey.PendingAssignments = pending[journey.ID]
		journey.ScoredAssignments = scored[journey.ID]
		merged[i] = journey
	}
	return merged
}

// LearnerStats is the dashboard breakdown of learners across journeys.
type LearnerStats struct {
	TotalJourneys      int `json:"total_journeys"`
	TotalLearners      int `json:"total_learners"`
	ActiveLearners     int `json:"active_learners_count"`
	GraduatedLearners  int `json:"graduated_learners_count"`
	InProgressLearners int `json:"in_progress_learners_count"`
}

// SummarizeLearners reduces journey membership rows into LearnerStats.
// Active learners are those still in progress.
func SummarizeLearners(journeys []models.Journey, learners []models.JourneyLearner) LearnerStats {
	result := LearnerStats{
		TotalJourneys: len(journeys),
		TotalLearners: len(learners),
	}
	for _, learner := range learners {
		switch learner.Graduation {
		case models.GraduationGraduated:
			result.GraduatedLearners++
		case models.GraduationInProgress:
			result.InProgressLearners++
		}
	}
	result.ActiveLearners = result.InProgressLearners
	return result
}

// JourneySummaries produces the per-journey learner counts in journey order.
func JourneySummaries(journeys []models.Journey, learners []models.JourneyLearner) []models.JourneySummary {
	byJourney := make(map[string]int, len(journeys))
	for _, learner := range learners {
		byJourney[learner.JourneyID]++
	}

	summaries := make([]models.JourneySummary, 0, len(journeys))
	for _, journey := range journeys {
		summaries = append(summaries, models.JourneySummary{
			JourneyID:    journey.ID,
			JourneyTitle: journey.Title,
			Learners:     byJourney[journey.ID],
		})
	}
	return summaries
}

// NotSubmitted derives how many learners never submitted, clamped to zero.
func NotSubmitted(learnerCount, uniqueSubmitters int) int {
	if missing := learnerCount - uniqueSubmitters; missing > 0 {
		return missing
	}
	return 0
}

package models

// SubmissionStatus enumerates the states an assignment submission takes on
// the wire. The set is fixed by the remote store's schema.
type SubmissionStatus string

const (
	SubmissionPending      SubmissionStatus = "pending"
	SubmissionUnderReview  SubmissionStatus = "under_review"
	SubmissionPassed       SubmissionStatus = "passed"
	SubmissionNotPassed    SubmissionStatus = "not_passed"
	SubmissionDeclined     SubmissionStatus = "decline"
	SubmissionNotSubmitted SubmissionStatus = "not_submitted"
)

// AwaitingReview reports whether the submission still needs coach attention.
func (s SubmissionStatus) AwaitingReview() bool {
	return s == SubmissionPending || s == SubmissionUnderReview
}

// SubmissionRow is one assignment x submission tuple used by the
// aggregation layer. JourneyID is populated only by queries that join
// through journey_programs.
type SubmissionRow struct {
	AssignmentID string
	ProgramID    string
	JourneyID    string
	Status       SubmissionStatus
	Grade        *float64
}

// Scored reports whether the submission carries a grade. A null grade is
// never scored, regardless of status.
func (r SubmissionRow) Scored() bool {
	return r.Grade != nil
}

// SubmissionUser is a learner's submission joined with their profile, as
// listed on the task grading page.
type SubmissionUser struct {
	UserID         string           `json:"id"`
	FullName       string           `json:"fullName"`
	Email          string           `json:"email"`
	ProfilePicture *string          `json:"profilePicture"`
	Status         SubmissionStatus `json:"status"`
	Grade          *float64         `json:"grade"`
	FileURL        *string          `json:"submissions"`
	SubmissionID   *string          `json:"submissionId"`
}

// SelectionKey identifies a record in roster selections. Submission id is
// the stable key; the user id covers rows where the join produced none.
func (u SubmissionUser) SelectionKey() string {
	if u.SubmissionID != nil && *u.SubmissionID != "" {
		return *u.SubmissionID
	}
	return u.UserID
}

// Package grader talks to the grading backend: rubric generation, AI
// evaluation of submissions, and persistence of rubrics and grades.
package grader

import (
	"context"
	"fmt"
	"strconv"

	"github.com/noah-isme/coachdesk-api/internal/models"
)

// GradeUser is a learner record sent alongside an evaluation request. The
// grading backend keys results by the numeric user id.
type GradeUser struct {
	ID             int64   `json:"id"`
	FullName       string  `json:"fullName"`
	Email          string  `json:"email"`
	ProfilePicture *string `json:"profilePicture"`
	Status         string  `json:"status"`
	Grade          *int    `json:"grade"`
	Submissions    *string `json:"submissions"`
	SubmissionID   *int64  `json:"submissionId"`
}

// UserFromSubmission converts a roster entry into the wire form the
// grading backend expects.
func UserFromSubmission(u models.SubmissionUser) (GradeUser, error) {
	id, err := strconv.ParseInt(u.UserID, 10, 64)
	if err != nil {
		return GradeUser{}, fmt.Errorf("user id %q is not numeric: %w", u.UserID, err)
	}

	user := GradeUser{
		ID:             id,
		FullName:       u.FullName,
		Email:          u.Email,
		ProfilePicture: u.ProfilePicture,
		Status:         string(u.Status),
		Submissions:    u.FileURL,
	}
	if u.Grade != nil {
		grade := int(*u.Grade)
		user.Grade = &grade
	}
	if u.SubmissionID != nil {
		submissionID, err := strconv.ParseInt(*u.SubmissionID, 10, 64)
		if err != nil {
			return GradeUser{}, fmt.Errorf("submission id %q is not numeric: %w", *u.SubmissionID, err)
		}
		user.SubmissionID = &submissionID
	}
	return user, nil
}

// EvaluateRequest carries everything the evaluator needs. Rubrics travel as
// JSON strings; either Users or one of Solution/SolutionURL must be set.
type EvaluateRequest struct {
	TaskDescription    string      `json:"task_description"`
	JourneyName        string      `json:"journey_name"`
	ScopeRubric        string      `json:"scope_rubric"`
	RequirementsRubric string      `json:"requirements_rubric"`
	Solution           *string     `json:"solution,omitempty"`
	SolutionURL        *string     `json:"solution_url,omitempty"`
	Users              []GradeUser `json:"users"`
}

// SaveGradingRequest is the flattened grading record the backend stores,
// one per user and task.
type SaveGradingRequest struct {
	UserID                int64                   `json:"user_id"`
	ScopeOverallGrade     int                     `json:"scope_overall_grade"`
	ScopeOverallComment   string                  `json:"scope_overall_comment"`
	QualityOverallGrade   int                     `json:"quality_overall_grade"`
	QualityOverallComment string                  `json:"quality_overall_comment"`
	TaskID                string                  `json:"taskId"`
	User                  GradeUser               `json:"user"`
	ScopeCriteria         []models.CriterionGrade `json:"scope_criteria"`
	QualityCriteria       []models.CriterionGrade `json:"quality_criteria"`
}

// SaveRubricRequest persists both rubric sections for a task, each encoded
// as a JSON string.
type SaveRubricRequest struct {
	TaskID            string `json:"task_id"`
	DeliverableRubric string `json:"deliverable_rubric"`
	QualityRubric     string `json:"quality_rubric"`
}

// RubricGenerator produces a rubric for a task, returning a previously
// stored rubric when one exists.
type RubricGenerator interface {
	GenerateRubric(ctx context.Context, taskID, taskDescription string) (models.Rubric, error)
}

// Evaluator grades submissions against a rubric pair.
type Evaluator interface {
	Evaluate(ctx context.Context, req EvaluateRequest) ([]models.GradingResult, error)
}

// Persister stores rubrics and grading results.
type Persister interface {
	SaveRubric(ctx context.Context, req SaveRubricRequest) error
	SaveGradingResults(ctx context.Context, req SaveGradingRequest) error
}

package dto

import "github.com/noah-isme/coachdesk-api/internal/models"

// RubricGenerateRequest asks for a rubric for a task. The description is
// sanitized before it reaches any AI prompt.
type RubricGenerateRequest struct {
	TaskDescription string `json:"task_description" validate:"required,min=1"`
}

// RubricResponse wraps a rubric the way the generation endpoint returns it.
type RubricResponse struct {
	Rubric models.Rubric `json:"rubric"`
}

// RubricSaveRequest persists both sections of an edited rubric.
type RubricSaveRequest struct {
	Scope   []models.Criterion `json:"scope" validate:"required"`
	Quality []models.Criterion `json:"quality" validate:"required"`
}

// RubricExportRequest renders one rubric section as a workbook. The
// header becomes the sheet name and title row.
type RubricExportRequest struct {
	Header   string             `json:"header"`
	Criteria []models.Criterion `json:"criteria" validate:"required,min=1"`
}

// GradeRequest evaluates the selected learners' submissions. At most three
// learners per run; rubrics travel as criteria lists and are encoded for
// the evaluator.
type GradeRequest struct {
	TaskDescription string                  `json:"task_description" validate:"required,min=1"`
	JourneyName     string                  `json:"journey_name"`
	ScopeRubric     []models.Criterion      `json:"scope_rubric" validate:"required"`
	QualityRubric   []models.Criterion      `json:"quality_rubric" validate:"required"`
	Solution        *string                 `json:"solution,omitempty"`
	SolutionURL     *string                 `json:"solution_url,omitempty"`
	Users           []models.SubmissionUser `json:"users" validate:"max=3,dive"`
}

// GradeResponse returns the evaluator's normalized results with the final
// grade already combined per user.
type GradeResponse struct {
	Results     []models.GradingResult `json:"results"`
	FinalGrades map[int64]int          `json:"final_grades"`
}

// GradeExportRequest renders a run's results as one flat workbook.
type GradeExportRequest struct {
	Results []models.GradingResult  `json:"results" validate:"required,min=1"`
	Users   []models.SubmissionUser `json:"users"`
}

// GradeReportRequest renders one learner's graded rubric as a report.
type GradeReportRequest struct {
	Result models.GradingResult `json:"result" validate:"required"`
}

// SaveGradeRequest stores one learner's grading record.
type SaveGradeRequest struct {
	Result models.GradingResult  `json:"result" validate:"required"`
	User   models.SubmissionUser `json:"user" validate:"required"`
}

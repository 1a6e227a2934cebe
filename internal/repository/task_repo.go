package repository

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/noah-isme/coachdesk-api/internal/models"
	"github.com/noah-isme/coachdesk-api/internal/queryapi"
	"github.com/noah-isme/coachdesk-api/internal/rubric"
)

// TaskRepository fetches assignments, their submission status rows, and the
// translated titles shown on the dashboard.
type TaskRepository interface {
	StatusRowsForPrograms(ctx context.Context, programIDs []string) ([]models.SubmissionRow, error)
	StatusRowsWithJourneys(ctx context.Context, programIDs []string) ([]models.SubmissionRow, error)
	TasksForCourse(ctx context.Context, courseID string) ([]models.Task, error)
	TaskByID(ctx context.Context, taskID string) (*models.Task, error)
	PendingTitles(ctx context.Context, assignmentIDs []string) ([]models.PendingTask, error)
}

type taskRepository struct {
	executor Executor
	logger   zerolog.Logger
}

// NewTaskRepository builds the repository over the query client.
func NewTaskRepository(executor Executor, logger zerolog.Logger) TaskRepository {
	return &taskRepository{
		executor: executor,
		logger:   logger.With().Str("component", "task_repository").Logger(),
	}
}

// StatusRowsForPrograms returns one row per assignment x submission for the
// given programs. The aggregation layer derives pending and scored counts
// from these rows.
func (r *taskRepository) StatusRowsForPrograms(ctx context.Context, programIDs []string) ([]models.SubmissionRow, error) {
	if len(programIDs) == 0 {
		return nil, nil
	}

	sql := fmt.Sprintf(`
		SELECT
		  a.id,
		  a.program_id,
		  am.status,
		  am.grade
		FROM assignments a
		JOIN assignment_submissions am ON a.id = am.assignment_id
		WHERE a.program_id IN ('%s')
		AND a.deleted_at IS NULL;
	`, quoteList(programIDs))

	rows, err := r.executor.Execute(ctx, sql)
	if err != nil {
		return nil, err
	}
	return mapSubmissionRows(rows, false)
}

// StatusRowsWithJourneys is the journey-aware variant: each row also carries
// the journey the program belongs to, so counts can be grouped per journey.
func (r *taskRepository) StatusRowsWithJourneys(ctx context.Context, programIDs []string) ([]models.SubmissionRow, error) {
	if len(programIDs) == 0 {
		return nil, nil
	}

	sql := fmt.Sprintf(`
		SELECT
		  a.id,
		  a.program_id,
		  am.status,
		  am.grade,
		  jp.journey_id
		FROM assignments a
		JOIN assignment_submissions am ON a.id = am.assignment_id
		JOIN journey_programs jp ON a.program_id = jp.program_id
		WHERE a.program_id IN ('%s')
		  AND a.deleted_at IS NULL
		  AND jp.deleted_at IS NULL;
	`, quoteList(programIDs))

	rows, err := r.executor.Execute(ctx, sql)
	if err != nil {
		return nil, err
	}
	return mapSubmissionRows(rows, true)
}

func mapSubmissionRows(rows queryapi.Rows, withJourney bool) ([]models.SubmissionRow, error) {
	mapped := make([]models.SubmissionRow, 0, len(rows))
	for _, row := range rows {
		assignmentID, err := row.String(0)
		if err != nil {
			return nil, fmt.Errorf("map submission row: %w", err)
		}
		sub := models.SubmissionRow{
			AssignmentID: assignmentID,
			ProgramID:    row.StringOr(1, ""),
			Status:       models.SubmissionStatus(row.StringOr(2, "")),
			Grade:        row.FloatPtr(3),
		}
		if withJourney {
			sub.JourneyID = row.StringOr(4, "")
		}
		mapped = append(mapped, sub)
	}
	return mapped, nil
}

// TasksForCourse returns the course's assignments with their submission
// counts, ordered by deadline. Counts are clamped in the query and again at
// the mapping boundary.
func (r *taskRepository) TasksForCourse(ctx context.Context, courseID string) ([]models.Task, error) {
	sql := fmt.Sprintf(`
		SELECT
		  a.id,
		  a.program_id AS courseId,
		  at.title,
		  at.description,
		  GREATEST((SELECT COUNT(*) FROM assignment_submissions WHERE assignment_id = a.id AND status != 'not_submitted'), 0) AS totalSubmissions,
		  GREATEST((SELECT COUNT(*) FROM assignment_submissions WHERE assignment_id = a.id AND grade IS NOT NULL), 0) AS scoredSubmissions,
		  GREATEST((SELECT COUNT(*) FROM assignment_submissions WHERE assignment_id = a.id AND status = 'not_submitted'), 0) AS pendingSubmissions,
		  a.deadline AS dueDate,
		  GREATEST((SELECT COUNT(DISTINCT student_id) FROM assignment_submissions WHERE assignment_id = a.id AND status != 'not_submitted' ), 0) AS uniqueSubmissions
		FROM assignments a
		LEFT JOIN (
		  SELECT assignment_id, MAX(id) AS max_id
		  FROM assignment_translations
		  GROUP BY assignment_id
		) at_max ON a.id = at_max.assignment_id
		LEFT JOIN assignment_translations at ON at_max.max_id = at.id
		WHERE a.program_id = '%s'
		  AND a.deleted_at IS NULL
		ORDER BY a.deadline ASC
	`, quoteLiteral(courseID))

	rows, err := r.executor.Execute(ctx, sql)
	if err != nil {
		return nil, err
	}

	tasks := make([]models.Task, 0, len(rows))
	totalUnique := 0
	for _, row := range rows {
		id, err := row.String(0)
		if err != nil {
			return nil, fmt.Errorf("map task: %w", err)
		}
		task := models.Task{
			ID:                 id,
			CourseID:           row.StringOr(1, ""),
			Title:              row.StringOr(2, "Untitled Task"),
			Description:        row.StringOr(3, "No description available"),
			TotalSubmissions:   row.CountAt(4),
			ScoredSubmissions:  row.CountAt(5),
			PendingSubmissions: row.CountAt(6),
			DueDate:            row.DateOr(7, ""),
			UniqueSubmissions:  row.CountAt(8),
		}
		totalUnique += task.UniqueSubmissions
		tasks = append(tasks, task)
	}
	for i := range tasks {
		tasks[i].TotalUniqueSubmissions = totalUnique
	}
	return tasks, nil
}

// TaskByID returns the full assignment record including its rubric
// payloads, or nil when no assignment matches. A malformed rubric payload
// is logged and decoded as an empty list.
func (r *taskRepository) TaskByID(ctx context.Context, taskID string) (*models.Task, error) {
	sql := fmt.Sprintf(`
		SELECT
		  a.id,
		  a.program_id,
		  at.title,
		  at.description,
		  (SELECT COUNT(*) FROM assignment_submissions s WHERE assignment_id = a.id and s.status != 'not_submitted') as totalSubmissions,
		  (SELECT COUNT(*) FROM assignment_submissions WHERE assignment_id = a.id AND grade is not null) as scoredSubmissions,
		  deadline as dueDate,
		  grade as maxPoints,
		  scope_evaluation,
		  quality_evaluation,
		  type,
		  submission_types
		FROM assignments a
		LEFT JOIN (
		    SELECT assignment_id, MAX(id) AS max_id
		    FROM assignment_translations
		    GROUP BY assignment_id
		  ) at_max ON a.id = at_max.assignment_id
		  LEFT JOIN assignment_translations at ON at_max.max_id = at.id
		WHERE a.id = '%s' AND deleted_at IS NULL
	`, quoteLiteral(taskID))

	rows, err := r.executor.Execute(ctx, sql)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	row := rows[0]
	id, err := row.String(0)
	if err != nil {
		return nil, fmt.Errorf("map task: %w", err)
	}

	scope, err := rubric.ParseCriteria(row.NullString(8))
	if err != nil {
		r.logger.Warn().Err(err).Str("task_id", id).Msg("malformed scope rubric payload")
	}
	quality, err := rubric.ParseCriteria(row.NullString(9))
	if err != nil {
		r.logger.Warn().Err(err).Str("task_id", id).Msg("malformed quality rubric payload")
	}

	return &models.Task{
		ID:                id,
		CourseID:          row.StringOr(1, ""),
		Title:             row.StringOr(2, "Untitled Task"),
		Description:       row.StringOr(3, "No description available"),
		TotalSubmissions:  row.CountAt(4),
		ScoredSubmissions: row.CountAt(5),
		DueDate:           row.DateOr(6, ""),
		MaxPoints:         row.FloatPtr(7),
		ScopeRubric:       scope,
		QualityRubric:     quality,
		Type:              row.StringOr(10, ""),
		SubmissionTypes:   row.StringOr(11, ""),
	}, nil
}

// PendingTitles returns the translated title and description for each
// assignment, using the newest translation row per assignment.
func (r *taskRepository) PendingTitles(ctx context.Context, assignmentIDs []string) ([]models.PendingTask, error) {
	if len(assignmentIDs) == 0 {
		return nil, nil
	}

	sql := fmt.Sprintf(`
		SELECT
		  a.id,
		  a.program_id,
		  at.title,
		  at.description
		FROM assignments a
		LEFT JOIN (
		    SELECT assignment_id, MAX(id) AS max_id
		    FROM assignment_translations
		    GROUP BY assignment_id
		  ) at_max ON a.id = at_max.assignment_id
		  LEFT JOIN assignment_translations at ON at_max.max_id = at.id
		WHERE a.id IN ('%s')
		AND a.deleted_at IS NULL;
	`, quoteList(assignmentIDs))

	rows, err := r.executor.Execute(ctx, sql)
	if err != nil {
		return nil, err
	}

	titles := make([]models.PendingTask, 0, len(rows))
	for _, row := range rows {
		id, err := row.String(0)
		if err != nil {
			return nil, fmt.Errorf("map pending task: %w", err)
		}
		titles = append(titles, models.PendingTask{
			ID:          id,
			CourseID:    row.StringOr(1, ""),
			Title:       row.StringOr(2, "Untitled Task"),
			Description: row.StringOr(3, "No description available"),
		})
	}
	return titles, nil
}

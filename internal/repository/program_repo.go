package repository

import (
	"context"
	"fmt"

	"github.com/noah-isme/coachdesk-api/internal/models"
	"github.com/noah-isme/coachdesk-api/internal/queryapi"
)

// ProgramJourney pairs a program with the journey it belongs to.
type ProgramJourney struct {
	ProgramID string
	JourneyID string
}

// ProgramRepository fetches programs (courses) and their derived counts.
type ProgramRepository interface {
	ProgramsForJourneys(ctx context.Context, journeyIDs []string) ([]ProgramJourney, error)
	ProgramsForJourney(ctx context.Context, journeyID string) ([]models.Program, error)
	ListByCoach(ctx context.Context, coachID string) ([]models.Course, error)
	CourseByID(ctx context.Context, courseID string) (*models.Course, error)
}

type programRepository struct {
	executor Executor
}

// NewProgramRepository builds the repository over the query client.
func NewProgramRepository(executor Executor) ProgramRepository {
	return &programRepository{executor: executor}
}

// ProgramsForJourneys returns program/journey pairs for the given journeys,
// excluding soft-deleted rows.
func (r *programRepository) ProgramsForJourneys(ctx context.Context, journeyIDs []string) ([]ProgramJourney, error) {
	if len(journeyIDs) == 0 {
		return nil, nil
	}

	sql := fmt.Sprintf(`
		SELECT
		  p.id AS program_id,
		  jp.journey_id
		FROM journey_programs jp
		JOIN programs p ON jp.program_id = p.id
		WHERE jp.journey_id IN ('%s')
		  AND p.deleted_at IS NULL
		  AND jp.deleted_at IS NULL
	`, quoteList(journeyIDs))

	rows, err := r.executor.Execute(ctx, sql)
	if err != nil {
		return nil, err
	}

	pairs := make([]ProgramJourney, 0, len(rows))
	for _, row := range rows {
		programID, err := row.String(0)
		if err != nil {
			return nil, fmt.Errorf("map journey program: %w", err)
		}
		pairs = append(pairs, ProgramJourney{
			ProgramID: programID,
			JourneyID: row.StringOr(1, ""),
		})
	}
	return pairs, nil
}

// ProgramsForJourney returns the journey's programs with their English
// translations, in journey order.
func (r *programRepository) ProgramsForJourney(ctx context.Context, journeyID string) ([]models.Program, error) {
	sql := fmt.Sprintf(`
		SELECT
		  p.id AS program_id,
		  jp.journey_id,
		  jp.id AS journey_program_id,
		  pt.title,
		  pt.description,
		  p.type,
		  p.start_date,
		  p.status
		FROM journey_programs jp
		JOIN programs p ON jp.program_id = p.id
		JOIN (
		  SELECT program_id, MIN(id) AS min_id
		  FROM program_translations
		  WHERE locale = 'en'
		  GROUP BY program_id
		) pt_min ON p.id = pt_min.program_id
		JOIN program_translations pt ON pt_min.min_id = pt.id
		WHERE jp.journey_id = '%s'
		  AND p.deleted_at IS NULL
		  AND jp.deleted_at IS NULL
		ORDER BY jp.order
	`, quoteLiteral(journeyID))

	rows, err := r.executor.Execute(ctx, sql)
	if err != nil {
		return nil, err
	}

	programs := make([]models.Program, 0, len(rows))
	for _, row := range rows {
		id, err := row.String(0)
		if err != nil {
			return nil, fmt.Errorf("map program: %w", err)
		}
		programs = append(programs, models.Program{
			ID:          id,
			JourneyID:   row.StringOr(1, ""),
			Title:       row.StringOr(3, "Untitled Program"),
			Description: row.StringOr(4, "No description available"),
			Type:        row.StringOr(5, ""),
			StartDate:   row.StringOr(6, ""),
			Status:      row.StringOr(7, ""),
		})
	}
	return programs, nil
}

// ListByCoach returns the coach's courses with learner and task counts,
// newest first.
func (r *programRepository) ListByCoach(ctx context.Context, coachID string) ([]models.Course, error) {
	sql := fmt.Sprintf(`
		SELECT
		  p.id,
		  p.slug as title,
		  p.type,
		  p.thumbnail,
		  p.image_cover as imageUrl,
		  (SELECT COUNT(DISTINCT jl.user_id)
		   FROM journeys_learners jl
		   JOIN users u ON jl.user_id = u.id
		   WHERE jl.last_accessed_program_id = p.id AND u.role_name = 'learner') as learnerCount,
		  (SELECT COUNT(*) FROM assignments a
		   JOIN assignment_submissions s ON a.id = s.assignment_id
		   WHERE a.program_id = p.id and s.status != 'not_submitted') as totalTasks,
		  (SELECT COUNT(*) FROM assignments a
		   JOIN assignment_submissions s ON a.id = s.assignment_id
		   WHERE a.program_id = p.id and s.status != 'not_submitted' and s.grade is not null) as scoredTasks,
		  p.specifications as description
		FROM programs p
		WHERE p.coach_id = '%s'
		ORDER BY p.created_at DESC
	`, quoteLiteral(coachID))

	rows, err := r.executor.Execute(ctx, sql)
	if err != nil {
		return nil, err
	}

	courses := make([]models.Course, 0, len(rows))
	for _, row := range rows {
		course, err := mapCourseRow(row)
		if err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}
	return courses, nil
}

// CourseByID returns the course detail row, or nil when no course matches.
// The learner count here is per-program; callers wanting the journey-wide
// count resolve it through the journey repository.
func (r *programRepository) CourseByID(ctx context.Context, courseID string) (*models.Course, error) {
	sql := fmt.Sprintf(`
		SELECT
		  p.id,
		  p.slug,
		  p.type,
		  p.thumbnail,
		  p.image_cover as imageUrl,
		  (SELECT COUNT(DISTINCT jl.user_id)
		   FROM journeys_learners jl
		   JOIN users u ON jl.user_id = u.id
		   WHERE jl.last_accessed_program_id = p.id AND u.role_name = 'learner') as learnerCount,
		  (SELECT COUNT(*) FROM assignments a
		   JOIN assignment_submissions s ON a.id = s.assignment_id
		   WHERE a.program_id = p.id and s.status != 'not_submitted') as totalTasks,
		  (SELECT COUNT(*) FROM assignments a
		   JOIN assignment_submissions s ON a.id = s.assignment_id
		   WHERE a.program_id = p.id and s.status != 'not_submitted' and s.grade is not null) as scoredTasks,
		  p.specifications as description
		FROM programs p
		WHERE p.id = '%s' AND p.deleted_at IS NULL
	`, quoteLiteral(courseID))

	rows, err := r.executor.Execute(ctx, sql)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	course, err := mapCourseRow(rows[0])
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// mapCourseRow maps the shared nine-column course tuple. The slug doubles
// as the title.
func mapCourseRow(row queryapi.Row) (models.Course, error) {
	id, err := row.String(0)
	if err != nil {
		return models.Course{}, fmt.Errorf("map course: %w", err)
	}
	return models.Course{
		ID:           id,
		Title:        row.StringOr(1, "Untitled Program"),
		Type:         row.StringOr(2, ""),
		Thumbnail:    row.StringOr(3, ""),
		ImageURL:     row.StringOr(4, ""),
		LearnerCount: row.CountAt(5),
		TotalTasks:   row.CountAt(6),
		ScoredTasks:  row.CountAt(7),
		Description:  row.StringOr(8, "No description available"),
	}, nil
}

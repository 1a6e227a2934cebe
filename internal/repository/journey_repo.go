package repository

import (
	"context"
	"fmt"

	"github.com/noah-isme/coachdesk-api/internal/models"
)

// JourneyRepository fetches journeys, memberships, and journey lookups for
// a coach. Journey titles come from the slug column; a null slug maps to
// "Untitled Journey".
type JourneyRepository interface {
	ListByCoach(ctx context.Context, coachID string) ([]models.Journey, error)
	ListIDsByCoach(ctx context.Context, coachID string) ([]models.Journey, error)
	LearnersByJourneys(ctx context.Context, journeyIDs []string) ([]models.JourneyLearner, error)
	JourneyIDForProgram(ctx context.Context, programID string) (string, error)
	LearnerCount(ctx context.Context, journeyID string) (int, error)
}

type journeyRepository struct {
	executor Executor
}

// NewJourneyRepository builds the repository over the query client.
func NewJourneyRepository(executor Executor) JourneyRepository {
	return &journeyRepository{executor: executor}
}

// ListByCoach returns the coach's journeys with their learner counts.
func (r *journeyRepository) ListByCoach(ctx context.Context, coachID string) ([]models.Journey, error) {
	sql := fmt.Sprintf(`
		SELECT
		  j.id,
		  j.slug,
		  (
		    SELECT COUNT(*) AS count
		    FROM journeys_learners jl
		    WHERE jl.journey_id = j.id
		  ) AS learner_count
		FROM journeys j
		JOIN journey_coaches jc ON j.id = jc.journey_id
		WHERE jc.coach_id = '%s';
	`, quoteLiteral(coachID))

	rows, err := r.executor.Execute(ctx, sql)
	if err != nil {
		return nil, err
	}

	journeys := make([]models.Journey, 0, len(rows))
	for _, row := range rows {
		id, err := row.String(0)
		if err != nil {
			return nil, fmt.Errorf("map journey: %w", err)
		}
		journeys = append(journeys, models.Journey{
			ID:       id,
			Title:    row.StringOr(1, "Untitled Journey"),
			Learners: row.CountAt(2),
		})
	}
	return journeys, nil
}

// ListIDsByCoach returns id and title only, excluding soft-deleted rows.
func (r *journeyRepository) ListIDsByCoach(ctx context.Context, coachID string) ([]models.Journey, error) {
	sql := fmt.Sprintf(`
		SELECT
		  j.id,
		  j.slug
		FROM journeys j
		JOIN journey_coaches jc ON j.id = jc.journey_id
		WHERE jc.coach_id = '%s'
		AND jc.deleted_at IS NULL
		AND j.deleted_at IS NULL;
	`, quoteLiteral(coachID))

	rows, err := r.executor.Execute(ctx, sql)
	if err != nil {
		return nil, err
	}

	journeys := make([]models.Journey, 0, len(rows))
	for _, row := range rows {
		id, err := row.String(0)
		if err != nil {
			return nil, fmt.Errorf("map journey: %w", err)
		}
		journeys = append(journeys, models.Journey{
			ID:    id,
			Title: row.StringOr(1, "Untitled Journey"),
		})
	}
	return journeys, nil
}

// LearnersByJourneys returns membership rows for the given journeys. A null
// graduation column maps to in_progress.
func (r *journeyRepository) LearnersByJourneys(ctx context.Context, journeyIDs []string) ([]models.JourneyLearner, error) {
	if len(journeyIDs) == 0 {
		return nil, nil
	}

	sql := fmt.Sprintf(`
		SELECT
		  jl.id,
		  jl.journey_id,
		  jl.user_id,
		  jl.graduated
		FROM journeys_learners jl
		WHERE jl.journey_id IN ('%s');
	`, quoteList(journeyIDs))

	rows, err := r.executor.Execute(ctx, sql)
	if err != nil {
		return nil, err
	}

	learners := make([]models.JourneyLearner, 0, len(rows))
	for _, row := range rows {
		learners = append(learners, models.JourneyLearner{
			ID:         row.StringOr(0, ""),
			JourneyID:  row.StringOr(1, ""),
			UserID:     row.StringOr(2, ""),
			Graduation: models.GraduationStatus(row.StringOr(3, string(models.GraduationInProgress))),
		})
	}
	return learners, nil
}

// JourneyIDForProgram resolves the journey a program belongs to. Empty when
// the program is not attached to any journey.
func (r *journeyRepository) JourneyIDForProgram(ctx context.Context, programID string) (string, error) {
	sql := fmt.Sprintf(`
		SELECT j.id FROM journeys j
		JOIN journey_programs jp ON j.id = jp.journey_id
		WHERE jp.program_id = '%s'
	`, quoteLiteral(programID))

	rows, err := r.executor.Execute(ctx, sql)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", nil
	}
	return rows[0].StringOr(0, ""), nil
}

// LearnerCount counts a journey's learners.
func (r *journeyRepository) LearnerCount(ctx context.Context, journeyID string) (int, error) {
	sql := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM journeys_learners jl
		WHERE jl.journey_id = '%s'
	`, quoteLiteral(journeyID))

	rows, err := r.executor.Execute(ctx, sql)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].CountAt(0), nil
}

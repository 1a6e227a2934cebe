package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/coachdesk-api/internal/cache"
	"github.com/noah-isme/coachdesk-api/internal/dto"
	"github.com/noah-isme/coachdesk-api/internal/models"
	"github.com/noah-isme/coachdesk-api/internal/pipeline"
	"github.com/noah-isme/coachdesk-api/internal/repository"
	"github.com/noah-isme/coachdesk-api/internal/stats"
)

// DashboardService produces the coach dashboard aggregate.
type DashboardService interface {
	GetDashboard(ctx context.Context, coachID string) (dto.DashboardResponse, error)
}

type dashboardService struct {
	journeys repository.JourneyRepository
	programs repository.ProgramRepository
	tasks    repository.TaskRepository
	cache    *cache.Store
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// NewDashboardService builds the dashboard aggregator.
func NewDashboardService(journeys repository.JourneyRepository, programs repository.ProgramRepository, tasks repository.TaskRepository, store *cache.Store, ttl time.Duration, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		journeys: journeys,
		programs: programs,
		tasks:    tasks,
		cache:    store,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "dashboard_service").Logger(),
	}
}

// DashboardCacheKey names the cache slot for one coach's dashboard.
func DashboardCacheKey(coachID string) string {
	return fmt.Sprintf("dashboard:coach:%s", coachID)
}

func (s *dashboardService) GetDashboard(ctx context.Context, coachID string) (dto.DashboardResponse, error) {
	return cache.Fetch(ctx, s.cache, DashboardCacheKey(coachID), s.cacheTTL, func(ctx context.Context) (dto.DashboardResponse, error) {
		return s.build(ctx, coachID)
	})
}

// build runs the dependent fetch chain. Each stage needs the previous
// stage's output; a failure anywhere aborts the rest and names the stage.
func (s *dashboardService) build(ctx context.Context, coachID string) (dto.DashboardResponse, error) {
	journeysStage := pipeline.Stage[string, []models.Journey]{
		Name: "journeys",
		Run: func(ctx context.Context, coachID string) ([]models.Journey, error) {
			return s.journeys.ListIDsByCoach(ctx, coachID)
		},
	}

	journeys, err := pipeline.Exec(ctx, journeysStage, coachID)
	if err != nil {
		return dto.DashboardResponse{}, err
	}
	if len(journeys) == 0 {
		return emptyDashboard(), nil
	}

	journeyIDs := make([]string, 0, len(journeys))
	for _, journey := range journeys {
		journeyIDs = append(journeyIDs, journey.ID)
	}

	learnersStage := pipeline.Stage[[]string, []models.JourneyLearner]{
		Name: "learners",
		Run: func(ctx context.Context, ids []string) ([]models.JourneyLearner, error) {
			return s.journeys.LearnersByJourneys(ctx, ids)
		},
	}
	learners, err := pipeline.Exec(ctx, learnersStage, journeyIDs)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	programsStage := pipeline.Stage[[]string, []repository.ProgramJourney]{
		Name: "programs",
		Run: func(ctx context.Context, ids []string) ([]repository.ProgramJourney, error) {
			return s.programs.ProgramsForJourneys(ctx, ids)
		},
	}
	programPairs, err := pipeline.Exec(ctx, programsStage, journeyIDs)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	programIDs := make([]string, 0, len(programPairs))
	for _, pair := range programPairs {
		programIDs = append(programIDs, pair.ProgramID)
	}

	submissionsStage := pipeline.Stage[[]string, []models.SubmissionRow]{
		Name: "submissions",
		Run: func(ctx context.Context, ids []string) ([]models.SubmissionRow, error) {
			return s.tasks.StatusRowsForPrograms(ctx, ids)
		},
	}
	rows, err := pipeline.Exec(ctx, submissionsStage, programIDs)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	learnerStats := stats.SummarizeLearners(journeys, learners)
	summaries := stats.JourneySummaries(journeys, learners)
	totals := stats.Summarize(rows)

	response := dto.DashboardResponse{
		Journeys:         journeys,
		Learners:         learners,
		Stats:            learnerStats,
		JourneysSummary:  summaries,
		PendingCount:     totals.AwaitingReview,
		ScoredCount:      totals.Scored,
		TotalAssignments: totals.AwaitingReview + totals.Scored,
		PendingTasks:     []models.PendingTask{},
	}

	if len(rows) == 0 {
		return response, nil
	}

	pendingByAssignment := stats.AwaitingReviewBy(rows, stats.ByAssignment)
	pendingIDs := make([]string, 0, len(pendingByAssignment))
	for id := range pendingByAssignment {
		pendingIDs = append(pendingIDs, id)
	}

	if len(pendingIDs) > 0 {
		titlesStage := pipeline.Stage[[]string, []models.PendingTask]{
			Name: "pending_titles",
			Run: func(ctx context.Context, ids []string) ([]models.PendingTask, error) {
				return s.tasks.PendingTitles(ctx, ids)
			},
		}
		titles, err := pipeline.Exec(ctx, titlesStage, pendingIDs)
		if err != nil {
			return dto.DashboardResponse{}, err
		}
		for i := range titles {
			titles[i].Count = pendingByAssignment[titles[i].ID]
		}
		response.PendingTasks = titles
	}

	return response, nil
}

func emptyDashboard() dto.DashboardResponse {
	return dto.DashboardResponse{
		Journeys:        []models.Journey{},
		Learners:        []models.JourneyLearner{},
		JourneysSummary: []models.JourneySummary{},
		PendingTasks:    []models.PendingTask{},
	}
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/coachdesk-api/internal/cache"
	"github.com/noah-isme/coachdesk-api/internal/dto"
	"github.com/noah-isme/coachdesk-api/internal/models"
	"github.com/noah-isme/coachdesk-api/internal/repository"
	"github.com/noah-isme/coachdesk-api/internal/stats"
)

// JourneyService serves the journeys page: journeys with their assignment
// counts and the programs of a selected journey.
type JourneyService interface {
	ListJourneys(ctx context.Context, coachID string) (dto.JourneyListResponse, error)
	ProgramsForJourney(ctx context.Context, journeyID string) (dto.JourneyProgramsResponse, error)
}

type journeyService struct {
	journeys repository.JourneyRepository
	programs repository.ProgramRepository
	tasks    repository.TaskRepository
	cache    *cache.Store
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// NewJourneyService builds the journey page service.
func NewJourneyService(journeys repository.JourneyRepository, programs repository.ProgramRepository, tasks repository.TaskRepository, store *cache.Store, ttl time.Duration, logger zerolog.Logger) JourneyService {
	return &journeyService{
		journeys: journeys,
		programs: programs,
		tasks:    tasks,
		cache:    store,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "journey_service").Logger(),
	}
}

// JourneysCacheKey names the cache slot for one coach's journey list.
func JourneysCacheKey(coachID string) string {
	return fmt.Sprintf("journeys:coach:%s", coachID)
}

// ListJourneys returns the coach's journeys with learner counts and the
// per-journey pending/scored assignment counts merged in.
func (s *journeyService) ListJourneys(ctx context.Context, coachID string) (dto.JourneyListResponse, error) {
	return cache.Fetch(ctx, s.cache, JourneysCacheKey(coachID), s.cacheTTL, func(ctx context.Context) (dto.JourneyListResponse, error) {
		journeys, err := s.journeys.ListByCoach(ctx, coachID)
		if err != nil {
			return dto.JourneyListResponse{}, err
		}
		if len(journeys) == 0 {
			return dto.JourneyListResponse{Journeys: []models.Journey{}}, nil
		}

		journeyIDs := make([]string, 0, len(journeys))
		for _, journey := range journeys {
			journeyIDs = append(journeyIDs, journey.ID)
		}

		pairs, err := s.programs.ProgramsForJourneys(ctx, journeyIDs)
		if err != nil {
			return dto.JourneyListResponse{}, err
		}

		programIDs := make([]string, 0, len(pairs))
		for _, pair := range pairs {
			programIDs = append(programIDs, pair.ProgramID)
		}

		rows, err := s.tasks.StatusRowsWithJourneys(ctx, programIDs)
		if err != nil {
			return dto.JourneyListResponse{}, err
		}

		pending := stats.AwaitingReviewBy(rows, stats.ByJourney)
		scored := stats.ScoredBy(rows, stats.ByJourney)
		return dto.JourneyListResponse{Journeys: stats.MergeJourneyCounts(journeys, pending, scored)}, nil
	})
}

// ProgramsForJourney returns the journey's programs with the pending and
// scored breakdown per program.
func (s *journeyService) ProgramsForJourney(ctx context.Context, journeyID string) (dto.JourneyProgramsResponse, error) {
	key := fmt.Sprintf("journey:%s:programs", journeyID)
	return cache.Fetch(ctx, s.cache, key, s.cacheTTL, func(ctx context.Context) (dto.JourneyProgramsResponse, error) {
		programs, err := s.programs.ProgramsForJourney(ctx, journeyID)
		if err != nil {
			return dto.JourneyProgramsResponse{}, err
		}
		if len(programs) == 0 {
			return emptyJourneyPrograms(), nil
		}

		programIDs := make([]string, 0, len(programs))
		for _, program := range programs {
			programIDs = append(programIDs, program.ID)
		}

		rows, err := s.tasks.StatusRowsForPrograms(ctx, programIDs)
		if err != nil {
			return dto.JourneyProgramsResponse{}, err
		}

		pending := stats.AwaitingReviewBy(rows, stats.ByProgram)
		scored := stats.ScoredBy(rows, stats.ByProgram)
		return dto.JourneyProgramsResponse{
			Programs:         programs,
			PendingByProgram: pending,
			ScoredByProgram:  scored,
			PendingCount:     stats.Sum(pending),
			ScoredCount:      stats.Sum(scored),
		}, nil
	})
}

func emptyJourneyPrograms() dto.JourneyProgramsResponse {
	return dto.JourneyProgramsResponse{
		Programs:         []models.Program{},
		PendingByProgram: map[string]int{},
		ScoredByProgram:  map[string]int{},
	}
}

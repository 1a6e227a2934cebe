package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/coachdesk-api/internal/cache"
	"github.com/noah-isme/coachdesk-api/internal/models"
	"github.com/noah-isme/coachdesk-api/internal/repository"
)

// ProfileService serves the authenticated coach's profile.
type ProfileService interface {
	Profile(ctx context.Context, coachID string) (models.CoachProfile, error)
}

type profileService struct {
	coaches  repository.CoachRepository
	cache    *cache.Store
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// NewProfileService builds the profile service.
func NewProfileService(coaches repository.CoachRepository, store *cache.Store, ttl time.Duration, logger zerolog.Logger) ProfileService {
	return &profileService{
		coaches:  coaches,
		cache:    store,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "profile_service").Logger(),
	}
}

func (s *profileService) Profile(ctx context.Context, coachID string) (models.CoachProfile, error) {
	key := fmt.Sprintf("profile:coach:%s", coachID)
	return cache.Fetch(ctx, s.cache, key, s.cacheTTL, func(ctx context.Context) (models.CoachProfile, error) {
		profile, err := s.coaches.Profile(ctx, coachID)
		if err != nil {
			return models.CoachProfile{}, err
		}
		if profile == nil {
			return models.CoachProfile{}, ErrCoachNotFound
		}
		return *profile, nil
	})
}

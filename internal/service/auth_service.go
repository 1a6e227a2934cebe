package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/noah-isme/coachdesk-api/internal/dto"
	"github.com/noah-isme/coachdesk-api/internal/repository"
)

// ErrCoachNotFound is returned when the coach id has no users row in the
// remote store.
var ErrCoachNotFound = errors.New("coach not found")

// AuthService verifies a coach against the data store and issues session
// tokens. Logout is client-side token discard; there is no server session.
type AuthService interface {
	Login(ctx context.Context, coachID string) (dto.LoginResponse, error)
}

type authService struct {
	coaches  repository.CoachRepository
	secret   []byte
	tokenTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewAuthService builds the auth service signing tokens with the given
// HMAC secret.
func NewAuthService(coaches repository.CoachRepository, secret string, tokenTTL time.Duration, logger zerolog.Logger) AuthService {
	return &authService{
		coaches:  coaches,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		logger:   logger.With().Str("component", "auth_service").Logger(),
		now:      time.Now,
	}
}

// Login checks that the coach exists and returns a signed token with the
// coach's profile.
func (s *authService) Login(ctx context.Context, coachID string) (dto.LoginResponse, error) {
	profile, err := s.coaches.Profile(ctx, coachID)
	if err != nil {
		return dto.LoginResponse{}, err
	}
	if profile == nil {
		return dto.LoginResponse{}, ErrCoachNotFound
	}

	now := s.now()
	claims := jwt.MapClaims{
		"sub":      profile.ID,
		"coach_id": profile.ID,
		"name":     profile.FullName,
		"iat":      now.Unix(),
		"exp":      now.Add(s.tokenTTL).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return dto.LoginResponse{}, fmt.Errorf("sign token: %w", err)
	}

	s.logger.Info().Str("coach_id", profile.ID).Msg("coach logged in")
	return dto.LoginResponse{Token: token, Profile: *profile}, nil
}

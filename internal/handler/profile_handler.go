package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/coachdesk-api/internal/service"
	"github.com/noah-isme/coachdesk-api/internal/utils"
)

// ProfileHandler serves the authenticated coach's profile.
type ProfileHandler struct {
	service service.ProfileService
	logger  zerolog.Logger
}

// NewProfileHandler constructs the handler.
func NewProfileHandler(service service.ProfileService, logger zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		service: service,
		logger:  logger.With().Str("component", "profile_handler").Logger(),
	}
}

// Register attaches the profile endpoint to the router group.
func (h *ProfileHandler) Register(router fiber.Router) {
	router.Get("", h.profile)
}

func (h *ProfileHandler) profile(c *fiber.Ctx) error {
	coachID := coachIDFromContext(c)
	if coachID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "coach not authenticated")
	}

	profile, err := h.service.Profile(c.UserContext(), coachID)
	if err != nil {
		if errors.Is(err, service.ErrCoachNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "coach not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("profile lookup failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "profile lookup failed")
	}

	return utils.SendSuccess(c, "profile retrieved", profile)
}

package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/coachdesk-api/internal/service"
	"github.com/noah-isme/coachdesk-api/internal/utils"
)

// JourneyHandler wires journey HTTP routes.
type JourneyHandler struct {
	service service.JourneyService
	logger  zerolog.Logger
}

// NewJourneyHandler constructs the handler.
func NewJourneyHandler(service service.JourneyService, logger zerolog.Logger) *JourneyHandler {
	return &JourneyHandler{
		service: service,
		logger:  logger.With().Str("component", "journey_handler").Logger(),
	}
}

// Register attaches journey endpoints to the router group.
func (h *JourneyHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id/programs", h.programs)
}

func (h *JourneyHandler) list(c *fiber.Ctx) error {
	coachID := coachIDFromContext(c)
	if coachID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "coach not authenticated")
	}

	journeys, err := h.service.ListJourneys(c.UserContext(), coachID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("journey list failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "journey list failed")
	}

	return utils.SendSuccess(c, "journeys retrieved", journeys)
}

func (h *JourneyHandler) programs(c *fiber.Ctx) error {
	journeyID := strings.TrimSpace(c.Params("id"))
	if journeyID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "journey id required")
	}

	programs, err := h.service.ProgramsForJourney(c.UserContext(), journeyID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Str("journey_id", journeyID).Msg("journey programs failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "journey programs failed")
	}

	return utils.SendSuccess(c, "journey programs retrieved", programs)
}

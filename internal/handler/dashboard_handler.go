package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/coachdesk-api/internal/pipeline"
	"github.com/noah-isme/coachdesk-api/internal/service"
	"github.com/noah-isme/coachdesk-api/internal/utils"
)

// DashboardHandler serves the coach dashboard aggregate.
type DashboardHandler struct {
	service service.DashboardService
	logger  zerolog.Logger
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service service.DashboardService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger.With().Str("component", "dashboard_handler").Logger(),
	}
}

// Register attaches the dashboard endpoint to the router group.
func (h *DashboardHandler) Register(router fiber.Router) {
	router.Get("", h.dashboard)
}

func (h *DashboardHandler) dashboard(c *fiber.Ctx) error {
	coachID := coachIDFromContext(c)
	if coachID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "coach not authenticated")
	}

	dashboard, err := h.service.GetDashboard(c.UserContext(), coachID)
	if err != nil {
		logger := requestLogger(h.logger, c)
		if stage := pipeline.FailedStage(err); stage != "" {
			logger.Error().Err(err).Str("stage", stage).Msg("dashboard load failed")
		} else {
			logger.Error().Err(err).Msg("dashboard load failed")
		}
		return utils.SendError(c, fiber.StatusInternalServerError, "dashboard load failed")
	}

	return utils.SendSuccess(c, "dashboard retrieved", dashboard)
}

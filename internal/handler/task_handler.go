package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/coachdesk-api/internal/roster"
	"github.com/noah-isme/coachdesk-api/internal/service"
	"github.com/noah-isme/coachdesk-api/internal/utils"
)

// TaskHandler wires task HTTP routes.
type TaskHandler struct {
	service service.TaskService
	logger  zerolog.Logger
}

// NewTaskHandler constructs the handler.
func NewTaskHandler(service service.TaskService, logger zerolog.Logger) *TaskHandler {
	return &TaskHandler{
		service: service,
		logger:  logger.With().Str("component", "task_handler").Logger(),
	}
}

// Register attaches task endpoints to the router group.
func (h *TaskHandler) Register(router fiber.Router) {
	router.Get("/:id", h.get)
	router.Get("/:id/users", h.users)
}

func (h *TaskHandler) get(c *fiber.Ctx) error {
	taskID := strings.TrimSpace(c.Params("id"))
	if taskID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "task id required")
	}

	task, err := h.service.TaskByID(c.UserContext(), taskID)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "task not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Str("task_id", taskID).Msg("task lookup failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "task lookup failed")
	}

	return utils.SendSuccess(c, "task retrieved", task)
}

func (h *TaskHandler) users(c *fiber.Ctx) error {
	taskID := strings.TrimSpace(c.Params("id"))
	if taskID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "task id required")
	}

	response, err := h.service.UsersForTask(c.UserContext(), taskID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Str("task_id", taskID).Msg("task users failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "task users failed")
	}

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		list := roster.New(response.Users)
		list.SetQuery(search)
		response.Users = list.Filtered()
	}

	return utils.SendSuccess(c, "task users retrieved", response)
}

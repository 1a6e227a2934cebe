package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/coachdesk-api/internal/service"
	"github.com/noah-isme/coachdesk-api/internal/utils"
)

// CourseHandler wires course HTTP routes.
type CourseHandler struct {
	service service.CourseService
	logger  zerolog.Logger
}

// NewCourseHandler constructs the handler.
func NewCourseHandler(service service.CourseService, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		service: service,
		logger:  logger.With().Str("component", "course_handler").Logger(),
	}
}

// Register attaches course endpoints to the router group.
func (h *CourseHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Get("/:id/tasks", h.tasks)
}

func (h *CourseHandler) list(c *fiber.Ctx) error {
	coachID := coachIDFromContext(c)
	if coachID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "coach not authenticated")
	}

	courses, err := h.service.ListCourses(c.UserContext(), coachID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("course list failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "course list failed")
	}

	return utils.SendSuccess(c, "courses retrieved", courses)
}

func (h *CourseHandler) get(c *fiber.Ctx) error {
	courseID := strings.TrimSpace(c.Params("id"))
	if courseID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "course id required")
	}

	course, err := h.service.CourseByID(c.UserContext(), courseID)
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "course not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Str("course_id", courseID).Msg("course lookup failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "course lookup failed")
	}

	return utils.SendSuccess(c, "course retrieved", course)
}

func (h *CourseHandler) tasks(c *fiber.Ctx) error {
	courseID := strings.TrimSpace(c.Params("id"))
	if courseID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "course id required")
	}

	tasks, err := h.service.TasksForCourse(c.UserContext(), courseID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Str("course_id", courseID).Msg("course tasks failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "course tasks failed")
	}

	return utils.SendSuccess(c, "course tasks retrieved", tasks)
}

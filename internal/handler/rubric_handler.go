package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/coachdesk-api/internal/dto"
	"github.com/noah-isme/coachdesk-api/internal/service"
	"github.com/noah-isme/coachdesk-api/internal/utils"
	"github.com/noah-isme/coachdesk-api/pkg/grader"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// RubricHandler wires rubric generation, persistence, and export routes.
type RubricHandler struct {
	service   service.RubricService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewRubricHandler constructs the handler.
func NewRubricHandler(service service.RubricService, validator *validator.Validate, logger zerolog.Logger) *RubricHandler {
	return &RubricHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "rubric_handler").Logger(),
	}
}

// Register attaches rubric endpoints to the task router group.
func (h *RubricHandler) Register(router fiber.Router) {
	router.Post("/:id/rubric/generate", h.generate)
	router.Post("/:id/rubric", h.save)
	router.Post("/:id/rubric/export", h.export)
}

func (h *RubricHandler) generate(c *fiber.Ctx) error {
	taskID := strings.TrimSpace(c.Params("id"))
	if taskID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "task id required")
	}

	var payload dto.RubricGenerateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.Generate(c.UserContext(), taskID, payload.TaskDescription)
	if err != nil {
		return h.handleError(c, err, "rubric generation failed")
	}

	return utils.SendSuccess(c, "rubric generated", response)
}

func (h *RubricHandler) save(c *fiber.Ctx) error {
	taskID := strings.TrimSpace(c.Params("id"))
	if taskID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "task id required")
	}

	var payload dto.RubricSaveRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Save(c.UserContext(), taskID, payload); err != nil {
		return h.handleError(c, err, "rubric save failed")
	}

	return utils.SendSuccess(c, "rubric saved", nil)
}

func (h *RubricHandler) export(c *fiber.Ctx) error {
	taskID := strings.TrimSpace(c.Params("id"))
	if taskID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "task id required")
	}

	var payload dto.RubricExportRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	header := strings.TrimSpace(payload.Header)
	if header == "" {
		header = "Rubric"
	}

	buf, err := h.service.Export(header, payload.Criteria)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Str("task_id", taskID).Msg("rubric export failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "rubric export failed")
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("%s_%s.xlsx", strings.ReplaceAll(strings.ToLower(header), " ", "_"), taskID)))
	return c.Send(buf.Bytes())
}

func (h *RubricHandler) handleError(c *fiber.Ctx, err error, message string) error {
	var remoteErr *grader.RemoteError
	switch {
	case errors.As(err, &remoteErr):
		requestLogger(h.logger, c).Error().Err(err).Int("status", remoteErr.StatusCode).Msg(message)
		return utils.SendError(c, fiber.StatusBadGateway, remoteErr.Detail)
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(message)
		return utils.SendError(c, fiber.StatusUnprocessableEntity, err.Error())
	}
}

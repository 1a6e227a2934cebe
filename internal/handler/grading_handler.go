package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/coachdesk-api/internal/dto"
	"github.com/noah-isme/coachdesk-api/internal/service"
	"github.com/noah-isme/coachdesk-api/internal/utils"
	"github.com/noah-isme/coachdesk-api/pkg/grader"
)

// GradingHandler wires AI grading routes including the progress websocket.
type GradingHandler struct {
	service   service.GradingService
	hub       *service.ProgressHub
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewGradingHandler constructs the handler.
func NewGradingHandler(service service.GradingService, hub *service.ProgressHub, validator *validator.Validate, logger zerolog.Logger) *GradingHandler {
	return &GradingHandler{
		service:   service,
		hub:       hub,
		validator: validator,
		logger:    logger.With().Str("component", "grading_handler").Logger(),
	}
}

// Register attaches grading endpoints to the task router group.
func (h *GradingHandler) Register(router fiber.Router) {
	router.Post("/:id/grade", h.evaluate)
	router.Post("/:id/grades", h.save)
	router.Post("/:id/grades/export", h.export)
	router.Post("/:id/grades/report", h.report)

	router.Use("/:id/grades/feed", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/:id/grades/feed", websocket.New(h.progress))
}

func (h *GradingHandler) evaluate(c *fiber.Ctx) error {
	taskID := strings.TrimSpace(c.Params("id"))
	if taskID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "task id required")
	}

	var payload dto.GradeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.Evaluate(c.UserContext(), taskID, payload)
	if err != nil {
		return h.handleError(c, err, "evaluation failed")
	}

	return utils.SendSuccess(c, "submissions evaluated", response)
}

func (h *GradingHandler) save(c *fiber.Ctx) error {
	taskID := strings.TrimSpace(c.Params("id"))
	if taskID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "task id required")
	}

	var payload dto.SaveGradeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.SaveResult(c.UserContext(), taskID, payload); err != nil {
		return h.handleError(c, err, "grading save failed")
	}

	return utils.SendSuccess(c, "grading result saved", nil)
}

func (h *GradingHandler) export(c *fiber.Ctx) error {
	taskID := strings.TrimSpace(c.Params("id"))
	if taskID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "task id required")
	}

	var payload dto.GradeExportRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	buf, err := h.service.ExportResults(c.UserContext(), taskID, payload.Results, payload.Users)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Str("task_id", taskID).Msg("grading export failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "grading export failed")
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("grading_results_%s.xlsx", taskID)))
	return c.Send(buf.Bytes())
}

func (h *GradingHandler) report(c *fiber.Ctx) error {
	taskID := strings.TrimSpace(c.Params("id"))
	if taskID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "task id required")
	}

	var payload dto.GradeReportRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	buf, err := h.service.ExportUserReport(payload.Result)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Str("task_id", taskID).Msg("grading report failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "grading report failed")
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("grading_report_user_%d.xlsx", payload.Result.UserID)))
	return c.Send(buf.Bytes())
}

func (h *GradingHandler) progress(conn *websocket.Conn) {
	taskID := strings.TrimSpace(conn.Params("id"))
	if taskID == "" {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(fiber.StatusBadRequest, "task id required"))
		_ = conn.Close()
		return
	}

	events, cancel := h.hub.Subscribe(taskID)
	defer cancel()
	defer conn.Close()

	h.logger.Info().Str("task_id", taskID).Msg("progress websocket connected")
	for event := range events {
		if err := conn.WriteJSON(event); err != nil {
			break
		}
		if event.Stage == service.StageDone || event.Stage == service.StageFailed {
			break
		}
	}
	h.logger.Info().Str("task_id", taskID).Msg("progress websocket disconnected")
}

func (h *GradingHandler) handleError(c *fiber.Ctx, err error, message string) error {
	var remoteErr *grader.RemoteError
	switch {
	case errors.Is(err, service.ErrTooManyUsers), errors.Is(err, service.ErrNothingToGrade):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &remoteErr):
		requestLogger(h.logger, c).Error().Err(err).Int("status", remoteErr.StatusCode).Msg(message)
		return utils.SendError(c, fiber.StatusBadGateway, remoteErr.Detail)
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(message)
		return utils.SendError(c, fiber.StatusInternalServerError, message)
	}
}

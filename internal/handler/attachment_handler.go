package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/coachdesk-api/internal/service"
	"github.com/noah-isme/coachdesk-api/internal/utils"
)

// AttachmentHandler proxies submission file downloads.
type AttachmentHandler struct {
	service service.AttachmentService
	logger  zerolog.Logger
}

// NewAttachmentHandler constructs the handler.
func NewAttachmentHandler(service service.AttachmentService, logger zerolog.Logger) *AttachmentHandler {
	return &AttachmentHandler{
		service: service,
		logger:  logger.With().Str("component", "attachment_handler").Logger(),
	}
}

// Register attaches the download endpoint to the router group.
func (h *AttachmentHandler) Register(router fiber.Router) {
	router.Get("/download", h.download)
}

func (h *AttachmentHandler) download(c *fiber.Ctx) error {
	fileURL := strings.TrimSpace(c.Query("url"))
	if fileURL == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "url query parameter required")
	}

	attachment, err := h.service.Download(c.UserContext(), fileURL)
	if err != nil {
		if errors.Is(err, service.ErrAttachmentTooLarge) {
			return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Str("url", fileURL).Msg("attachment download failed")
		return utils.SendError(c, fiber.StatusBadGateway, "attachment download failed")
	}

	c.Set(fiber.HeaderContentType, attachment.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", attachment.Filename))
	return c.Send(attachment.Data)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
)

// Submission files come off a CDN; anything bigger than this is not a
// gradable document.
const maxAttachmentSize = 64 << 20

// ErrAttachmentTooLarge is returned when a submission file exceeds the
// download limit.
var ErrAttachmentTooLarge = errors.New("attachment exceeds size limit")

// Attachment is a downloaded submission file with its sniffed content type.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// AttachmentService fetches submission files so coaches can download them
// through the API instead of hitting the CDN directly.
type AttachmentService interface {
	Download(ctx context.Context, fileURL string) (Attachment, error)
}

type attachmentService struct {
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewAttachmentService builds the attachment downloader.
func NewAttachmentService(logger zerolog.Logger) AttachmentService {
	return &attachmentService{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger.With().Str("component", "attachment_service").Logger(),
	}
}

// Download fetches the file and sniffs its content type from the bytes.
// The upstream's declared type is ignored; CDN metadata is unreliable for
// user uploads.
func (s *attachmentService) Download(ctx context.Context, fileURL string) (Attachment, error) {
	parsed, err := url.Parse(fileURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return Attachment{}, fmt.Errorf("invalid file url")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return Attachment{}, fmt.Errorf("build download request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return Attachment{}, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Attachment{}, fmt.Errorf("download file: upstream returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAttachmentSize+1))
	if err != nil {
		return Attachment{}, fmt.Errorf("read file: %w", err)
	}
	if len(data) > maxAttachmentSize {
		return Attachment{}, ErrAttachmentTooLarge
	}

	filename := path.Base(parsed.Path)
	if unescaped, err := url.PathUnescape(filename); err == nil {
		filename = unescaped
	}
	if filename == "" || filename == "." || filename == "/" {
		filename = "attachment"
	}

	mime := mimetype.Detect(data)
	s.logger.Debug().Str("filename", filename).Str("content_type", mime.String()).Int("bytes", len(data)).Msg("attachment downloaded")

	return Attachment{
		Filename:    strings.ReplaceAll(filename, `"`, ""),
		ContentType: mime.String(),
		Data:        data,
	}, nil
}

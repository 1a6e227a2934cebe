package grader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/coachdesk-api/internal/models"
)

var (
	graderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "coachdesk",
		Subsystem: "grader",
		Name:      "request_duration_seconds",
		Help:      "Duration of grading backend requests",
	}, []string{"endpoint"})

	graderFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coachdesk",
		Subsystem: "grader",
		Name:      "request_failures_total",
		Help:      "Number of failed grading backend requests",
	}, []string{"endpoint"})
)

// RemoteError is a failure the grading backend reported.
type RemoteError struct {
	StatusCode int
	Detail     string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("grading backend returned %d: %s", e.StatusCode, e.Detail)
}

// RemoteClient implements RubricGenerator, Evaluator, and Persister
// against the grading backend's HTTP API.
type RemoteClient struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
	tracer     trace.Tracer
}

// NewRemoteClient builds a client for the grading backend. Evaluation
// requests run AI models; the timeout is sized for that.
func NewRemoteClient(baseURL string, logger zerolog.Logger) *RemoteClient {
	return &RemoteClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		logger:     logger.With().Str("component", "grader").Logger(),
		tracer:     otel.Tracer("github.com/noah-isme/coachdesk-api/pkg/grader"),
	}
}

type rubricEnvelope struct {
	Rubric json.RawMessage `json:"rubric"`
}

// GenerateRubric asks the backend for a rubric. The backend returns the
// stored rubric when the task already has one, a freshly generated one
// otherwise.
func (c *RemoteClient) GenerateRubric(ctx context.Context, taskID, taskDescription string) (models.Rubric, error) {
	var envelope rubricEnvelope
	payload := map[string]string{
		"task_id":          taskID,
		"task_description": taskDescription,
	}
	if err := c.post(ctx, "/generate_rubric", payload, &envelope); err != nil {
		return models.Rubric{}, err
	}

	var rubric models.Rubric
	if err := json.Unmarshal(envelope.Rubric, &rubric); err != nil {
		return models.Rubric{}, fmt.Errorf("decode rubric: %w", err)
	}
	return rubric, nil
}

// Evaluate grades the submissions in the request. The backend returns one
// result per user with a submission file; users without one are skipped.
func (c *RemoteClient) Evaluate(ctx context.Context, req EvaluateRequest) ([]models.GradingResult, error) {
	var results []models.GradingResult
	if err := c.post(ctx, "/evaluate", req, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// SaveRubric persists both rubric sections for a task.
func (c *RemoteClient) SaveRubric(ctx context.Context, req SaveRubricRequest) error {
	return c.post(ctx, "/save_rubric", req, nil)
}

// SaveGradingResults stores one learner's grading record.
func (c *RemoteClient) SaveGradingResults(ctx context.Context, req SaveGradingRequest) error {
	return c.post(ctx, "/save_grading_results", req, nil)
}

func (c *RemoteClient) post(parent context.Context, endpoint string, payload any, out any) error {
	ctx, span := c.tracer.Start(parent, "grader.post", trace.WithAttributes(
		attribute.String("grader.endpoint", endpoint),
	))
	defer span.End()

	start := time.Now()
	err := c.doPost(ctx, endpoint, payload, out)
	graderDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		graderFailures.WithLabelValues(endpoint).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "grading backend request failed")
	}
	return err
}

func (c *RemoteClient) doPost(ctx context.Context, endpoint string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("grading backend unreachable")
		return fmt.Errorf("grading backend unreachable: %w", err)
	}
	defer resp.Body.Close()

	// A proxy or load balancer answering with an HTML page must not be
	// decoded as a grading payload.
	contentType := resp.Header.Get("Content-Type")
	if mediaType, _, err := mime.ParseMediaType(contentType); err != nil || mediaType != "application/json" {
		c.logger.Error().Str("endpoint", endpoint).Str("content_type", contentType).Msg("grading backend returned non-JSON response")
		return &RemoteError{StatusCode: resp.StatusCode, Detail: "non-JSON response"}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RemoteError{StatusCode: resp.StatusCode, Detail: decodeDetail(resp.Body)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// decodeDetail extracts the backend's error detail field, falling back to
// the raw body.
func decodeDetail(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return ""
	}
	var envelope struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Detail != "" {
		return envelope.Detail
	}
	return strings.TrimSpace(string(raw))
}

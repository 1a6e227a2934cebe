package queryapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
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
)

var (
	queryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "coachdesk",
		Subsystem: "queryapi",
		Name:      "execute_duration_seconds",
		Help:      "Duration of remote query executions",
	})

	queryOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coachdesk",
		Subsystem: "queryapi",
		Name:      "execute_total",
		Help:      "Remote query executions by outcome",
	}, []string{"outcome"})
)

// ErrUnavailable indicates the query endpoint could not be reached at all,
// as opposed to a failure it reported itself.
var ErrUnavailable = errors.New("unable to connect to the server")

// ServerError is a failure reported by the query endpoint. Its message is
// surfaced to the caller verbatim.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return e.Message
}

// Client executes raw SQL against the remote query endpoint. It never
// panics across its boundary; every failure is a typed error.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     zerolog.Logger
	tracer     trace.Tracer
}

// New builds a query client for the given base URL.
func New(baseURL string, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger.With().Str("component", "queryapi").Logger(),
		tracer:     otel.Tracer("github.com/noah-isme/coachdesk-api/internal/queryapi"),
	}
}

// WithToken sets the bearer token sent with every query request.
func (c *Client) WithToken(token string) *Client {
	c.token = strings.TrimSpace(token)
	return c
}

type queryRequest struct {
	SQL string `json:"sql"`
}

type queryEnvelope struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Data    *struct {
		Rows [][]any `json:"rows"`
	} `json:"data"`
	// Metabase replies place rows at the top level of the dataset payload.
	Rows [][]any `json:"rows"`
}

// Execute runs the SQL text and returns the result rows. An empty result is
// not an error. Connectivity failures wrap ErrUnavailable; failures reported
// by the endpoint are returned as *ServerError with the message unchanged.
func (c *Client) Execute(ctx context.Context, sql string) (Rows, error) {
	ctx, span := c.tracer.Start(ctx, "queryapi.execute")
	defer span.End()

	start := time.Now()
	rows, err := c.execute(ctx, sql)
	queryDuration.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		queryOutcomes.WithLabelValues("ok").Inc()
		span.SetAttributes(attribute.Int("queryapi.rows", len(rows)))
	case errors.Is(err, ErrUnavailable):
		queryOutcomes.WithLabelValues("unavailable").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "endpoint unavailable")
	default:
		queryOutcomes.WithLabelValues("server_error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
	}

	return rows, err
}

func (c *Client) execute(ctx context.Context, sql string) (Rows, error) {
	body, err := json.Marshal(queryRequest{SQL: sql})
	if err != nil {
		return nil, fmt.Errorf("encode query request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/query", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build query request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Msg("query endpoint unreachable")
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var envelope queryEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: malformed response", ErrUnavailable)
	}

	if envelope.Error {
		return nil, &ServerError{Message: envelope.Message}
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		message := envelope.Message
		if message == "" {
			message = fmt.Sprintf("query endpoint returned status %d", resp.StatusCode)
		}
		return nil, &ServerError{Message: message}
	}

	raw := envelope.Rows
	if envelope.Data != nil {
		raw = envelope.Data.Rows
	}

	rows := make(Rows, 0, len(raw))
	for _, r := range raw {
		rows = append(rows, Row(r))
	}
	return rows, nil
}

// Health probes the query endpoint root.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ServerError{Message: fmt.Sprintf("health check returned status %d", resp.StatusCode)}
	}
	return nil
}

package grader

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/coachdesk-api/internal/models"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "coachdesk",
		Subsystem: "ai",
		Name:      "completion_duration_seconds",
		Help:      "Duration of AI completion requests",
	}, []string{"model", "operation"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coachdesk",
		Subsystem: "ai",
		Name:      "completion_failures_total",
		Help:      "Number of AI completion failures",
	}, []string{"model", "operation"})
)

// OpenAIConfig defines configuration options for the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIProvider implements RubricGenerator and Evaluator directly against
// the OpenAI chat completion API, for deployments without a separate
// grading backend. It does not persist anything; pair it with a Persister.
type OpenAIProvider struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIProvider builds a provider using the given configuration.
func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 4096
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(openai.DefaultConfig(cfg.APIKey)),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/noah-isme/coachdesk-api/pkg/grader/openai"),
		logger: logger,
	}, nil
}

// GenerateRubric produces a fresh rubric from the task description. The
// stored-rubric shortcut lives in the remote backend; this provider always
// generates.
func (p *OpenAIProvider) GenerateRubric(parent context.Context, taskID, taskDescription string) (models.Rubric, error) {
	ctx, span := p.tracer.Start(parent, "openai.generate_rubric", trace.WithAttributes(
		attribute.String("model", p.cfg.Model),
		attribute.String("task.id", taskID),
	))
	defer span.End()

	content, err := p.complete(ctx, "generate_rubric", rubricSystemPrompt(), buildRubricPrompt(taskDescription))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return models.Rubric{}, err
	}

	var rubric models.Rubric
	if err := json.Unmarshal([]byte(content), &rubric); err != nil {
		aiFailures.WithLabelValues(p.cfg.Model, "generate_rubric").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return models.Rubric{}, fmt.Errorf("parse rubric json: %w", err)
	}
	return rubric, nil
}

// Evaluate grades each user's submission against the rubric pair. Users
// without a submission file are skipped, matching the remote backend.
func (p *OpenAIProvider) Evaluate(parent context.Context, req EvaluateRequest) ([]models.GradingResult, error) {
	ctx, span := p.tracer.Start(parent, "openai.evaluate", trace.WithAttributes(
		attribute.String("model", p.cfg.Model),
		attribute.Int("users", len(req.Users)),
	))
	defer span.End()

	results := make([]models.GradingResult, 0, len(req.Users))
	for _, user := range req.Users {
		if user.Submissions == nil || *user.Submissions == "" {
			continue
		}

		content, err := p.complete(ctx, "evaluate", evaluatorSystemPrompt(), buildEvaluatePrompt(req, *user.Submissions))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

		var result models.GradingResult
		if err := json.Unmarshal([]byte(content), &result); err != nil {
			aiFailures.WithLabelValues(p.cfg.Model, "evaluate").Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("parse grading json: %w", err)
		}
		result.UserID = user.ID
		result.Normalize()
		results = append(results, result)
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("no valid submissions found in the users list")
	}
	return results, nil
}

func (p *OpenAIProvider) complete(ctx context.Context, operation, system, user string) (string, error) {
	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.cfg.Model,
		MaxTokens:   p.cfg.MaxTokens,
		Temperature: p.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	aiDuration.WithLabelValues(p.cfg.Model, operation).Observe(time.Since(start).Seconds())
	if err != nil {
		aiFailures.WithLabelValues(p.cfg.Model, operation).Inc()
		return "", fmt.Errorf("openai %s: %w", operation, err)
	}

	if len(resp.Choices) == 0 {
		aiFailures.WithLabelValues(p.cfg.Model, operation).Inc()
		return "", fmt.Errorf("no choices returned from openai")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func rubricSystemPrompt() string {
	return "You are an educational assessment designer. Respond with a JSON object with keys Scope and Quality, each an arr" +
		"ay of criteria. Every criterion has name, weight (integer, weights per array sum to 100), and levels: an ordered arr" +
		"ay of objects with description and range, a two-number [min,max] score interval."
}

func buildRubricPrompt(taskDescription string) string {
	builder := strings.Builder{}
	builder.WriteString("Design a grading rubric for the following task.\n\n# Task\n")
	builder.WriteString(taskDescription)
	builder.WriteString("\n\nScope criteria measure deliverable completeness; Quality criteria measure how well it was done.\nReturn JSON.")
	return builder.String()
}

func evaluatorSystemPrompt() string {
	return "You are an automated grader. Respond with a JSON object with keys scope and quality. Each holds criteria (array" +
		" of {name, grade, chosen_level, comment}), overall_grade (integer 0-100), and overall_comment. chosen_level indexes" +
		" the rubric level the work reached."
}

func buildEvaluatePrompt(req EvaluateRequest, submissionURL string) string {
	builder := strings.Builder{}
	builder.WriteString("# Task\n")
	builder.WriteString(req.TaskDescription)
	builder.WriteString("\n\n## Journey\n")
	builder.WriteString(req.JourneyName)
	builder.WriteString("\n\n## Scope Rubric\n")
	builder.WriteString(req.ScopeRubric)
	builder.WriteString("\n\n## Quality Rubric\n")
	builder.WriteString(req.RequirementsRubric)
	builder.WriteString("\n\n## Submission\n")
	builder.WriteString(submissionURL)
	if req.Solution != nil && *req.Solution != "" {
		builder.WriteString("\n\n## Submission Content\n")
		builder.WriteString(*req.Solution)
	}
	builder.WriteString("\nReturn JSON.")
	return builder.String()
}

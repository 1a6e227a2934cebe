package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/coachdesk-api/internal/dto"
	"github.com/noah-isme/coachdesk-api/internal/models"
	"github.com/noah-isme/coachdesk-api/internal/rubric"
	"github.com/noah-isme/coachdesk-api/pkg/export"
	"github.com/noah-isme/coachdesk-api/pkg/grader"
)

// RubricService generates, validates, persists, and exports task rubrics.
type RubricService interface {
	Generate(ctx context.Context, taskID, taskDescription string) (dto.RubricResponse, error)
	Save(ctx context.Context, taskID string, req dto.RubricSaveRequest) error
	Export(section string, criteria []models.Criterion) (*bytes.Buffer, error)
}

type rubricService struct {
	generator grader.RubricGenerator
	persister grader.Persister
	tasks     TaskService
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewRubricService builds the rubric service.
func NewRubricService(generator grader.RubricGenerator, persister grader.Persister, tasks TaskService, logger zerolog.Logger) RubricService {
	return &rubricService{
		generator: generator,
		persister: persister,
		tasks:     tasks,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "rubric_service").Logger(),
	}
}

// Generate asks the provider for a rubric and validates it before it is
// accepted. Task descriptions come from a rich-text editor; they are
// stripped to plain text before reaching any prompt.
func (s *rubricService) Generate(ctx context.Context, taskID, taskDescription string) (dto.RubricResponse, error) {
	cleaned := s.sanitizer.Sanitize(taskDescription)

	generated, err := s.generator.GenerateRubric(ctx, taskID, cleaned)
	if err != nil {
		return dto.RubricResponse{}, err
	}

	if err := rubric.ValidateRubric(generated); err != nil {
		s.logger.Error().Err(err).Str("task_id", taskID).Msg("generated rubric failed validation")
		return dto.RubricResponse{}, err
	}

	return dto.RubricResponse{Rubric: generated}, nil
}

// Save validates both sections and persists them as JSON strings. The
// task's cached detail is dropped so the next read sees the new rubric.
func (s *rubricService) Save(ctx context.Context, taskID string, req dto.RubricSaveRequest) error {
	saved := models.Rubric{Scope: req.Scope, Quality: req.Quality}
	if err := rubric.ValidateRubric(saved); err != nil {
		return err
	}

	scope, err := rubric.EncodeCriteria(req.Scope)
	if err != nil {
		return err
	}
	quality, err := rubric.EncodeCriteria(req.Quality)
	if err != nil {
		return err
	}

	if err := s.persister.SaveRubric(ctx, grader.SaveRubricRequest{
		TaskID:            taskID,
		DeliverableRubric: scope,
		QualityRubric:     quality,
	}); err != nil {
		return err
	}

	s.tasks.Invalidate(ctx, taskID, "")
	s.logger.Info().Str("task_id", taskID).Msg("rubric saved")
	return nil
}

// Export renders one rubric section as an xlsx workbook.
func (s *rubricService) Export(section string, criteria []models.Criterion) (*bytes.Buffer, error) {
	f, err := export.RubricWorkbook(section, criteria)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render workbook: %w", err)
	}
	return buf, nil
}

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/coachdesk-api/internal/dto"
	"github.com/noah-isme/coachdesk-api/internal/models"
	"github.com/noah-isme/coachdesk-api/internal/rubric"
	"github.com/noah-isme/coachdesk-api/pkg/export"
	"github.com/noah-isme/coachdesk-api/pkg/grader"
)

// MaxUsersPerRun caps how many learners one evaluation run may grade.
const MaxUsersPerRun = 3

var (
	// ErrTooManyUsers is returned when a run selects more learners than
	// the evaluator accepts.
	ErrTooManyUsers = fmt.Errorf("at most %d users can be graded per run", MaxUsersPerRun)

	// ErrNothingToGrade is returned when neither users nor a solution were
	// provided.
	ErrNothingToGrade = errors.New("either solution, solution_url, or users must be provided")
)

// GradingService runs AI evaluations, persists the results, and exports
// them as workbooks.
type GradingService interface {
	Evaluate(ctx context.Context, taskID string, req dto.GradeRequest) (dto.GradeResponse, error)
	SaveResult(ctx context.Context, taskID string, req dto.SaveGradeRequest) error
	ExportResults(ctx context.Context, taskID string, results []models.GradingResult, users []models.SubmissionUser) (*bytes.Buffer, error)
	ExportUserReport(result models.GradingResult) (*bytes.Buffer, error)
}

type gradingService struct {
	evaluator   grader.Evaluator
	persister   grader.Persister
	tasks       TaskService
	hub         *ProgressHub
	nats        *nats.Conn
	natsSubject string
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
}

// gradingEvent is the message published after a grading record lands.
type gradingEvent struct {
	TaskID     string    `json:"task_id"`
	UserID     int64     `json:"user_id"`
	FinalGrade int       `json:"final_grade"`
	SavedAt    time.Time `json:"saved_at"`
}

// NewGradingService builds the grading service. natsConn may be nil; event
// publishing is then skipped.
func NewGradingService(evaluator grader.Evaluator, persister grader.Persister, tasks TaskService, hub *ProgressHub, natsConn *nats.Conn, natsSubject string, logger zerolog.Logger) GradingService {
	return &gradingService{
		evaluator:   evaluator,
		persister:   persister,
		tasks:       tasks,
		hub:         hub,
		nats:        natsConn,
		natsSubject: natsSubject,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "grading_service").Logger(),
	}
}

// Evaluate grades the selected learners' submissions. Results come back
// normalized, with grades clamped to [0,100] and chosen levels to [0,10],
// and the final grade combined per user.
func (s *gradingService) Evaluate(ctx context.Context, taskID string, req dto.GradeRequest) (dto.GradeResponse, error) {
	if len(req.Users) > MaxUsersPerRun {
		return dto.GradeResponse{}, ErrTooManyUsers
	}
	if len(req.Users) == 0 && req.Solution == nil && req.SolutionURL == nil {
		return dto.GradeResponse{}, ErrNothingToGrade
	}

	scope, err := rubric.EncodeCriteria(req.ScopeRubric)
	if err != nil {
		return dto.GradeResponse{}, err
	}
	quality, err := rubric.EncodeCriteria(req.QualityRubric)
	if err != nil {
		return dto.GradeResponse{}, err
	}

	users := make([]grader.GradeUser, 0, len(req.Users))
	for _, user := range req.Users {
		converted, err := grader.UserFromSubmission(user)
		if err != nil {
			return dto.GradeResponse{}, err
		}
		users = append(users, converted)
	}

	s.hub.Publish(ProgressEvent{TaskID: taskID, Stage: StageStarted})

	results, err := s.evaluator.Evaluate(ctx, grader.EvaluateRequest{
		TaskDescription:    s.sanitizer.Sanitize(req.TaskDescription),
		JourneyName:        req.JourneyName,
		ScopeRubric:        scope,
		RequirementsRubric: quality,
		Solution:           req.Solution,
		SolutionURL:        req.SolutionURL,
		Users:              users,
	})
	if err != nil {
		s.hub.Publish(ProgressEvent{TaskID: taskID, Stage: StageFailed, Message: err.Error()})
		return dto.GradeResponse{}, err
	}

	response := dto.GradeResponse{
		Results:     make([]models.GradingResult, 0, len(results)),
		FinalGrades: make(map[int64]int, len(results)),
	}
	for _, result := range results {
		result.Normalize()
		response.Results = append(response.Results, result)
		response.FinalGrades[result.UserID] = result.FinalGrade()
		s.hub.Publish(ProgressEvent{TaskID: taskID, UserID: result.UserID, Stage: StageEvaluated})
	}

	s.hub.Publish(ProgressEvent{TaskID: taskID, Stage: StageDone})
	return response, nil
}

// SaveResult stores one learner's grading record, drops the task's caches,
// and publishes a grading event.
func (s *gradingService) SaveResult(ctx context.Context, taskID string, req dto.SaveGradeRequest) error {
	result := req.Result
	result.Normalize()

	user, err := grader.UserFromSubmission(req.User)
	if err != nil {
		return err
	}

	if err := s.persister.SaveGradingResults(ctx, grader.SaveGradingRequest{
		UserID:                result.UserID,
		ScopeOverallGrade:     result.Scope.OverallGrade,
		ScopeOverallComment:   result.Scope.OverallComment,
		QualityOverallGrade:   result.Quality.OverallGrade,
		QualityOverallComment: result.Quality.OverallComment,
		TaskID:                taskID,
		User:                  user,
		ScopeCriteria:         result.Scope.Criteria,
		QualityCriteria:       result.Quality.Criteria,
	}); err != nil {
		s.hub.Publish(ProgressEvent{TaskID: taskID, UserID: result.UserID, Stage: StageFailed, Message: err.Error()})
		return err
	}

	courseID := ""
	if detail, err := s.tasks.TaskByID(ctx, taskID); err == nil {
		courseID = detail.Task.CourseID
	}
	s.tasks.Invalidate(ctx, taskID, courseID)

	s.hub.Publish(ProgressEvent{TaskID: taskID, UserID: result.UserID, Stage: StageSaved})
	s.publishEvent(gradingEvent{
		TaskID:     taskID,
		UserID:     result.UserID,
		FinalGrade: result.FinalGrade(),
		SavedAt:    time.Now(),
	})

	s.logger.Info().Str("task_id", taskID).Int64("user_id", result.UserID).Int("final_grade", result.FinalGrade()).Msg("grading result saved")
	return nil
}

func (s *gradingService) publishEvent(event gradingEvent) {
	if s.nats == nil || s.natsSubject == "" {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn().Err(err).Msg("encode grading event failed")
		return
	}
	if err := s.nats.Publish(s.natsSubject, payload); err != nil {
		s.logger.Warn().Err(err).Msg("publish grading event failed")
	}
}

// ExportResults renders the task's grading results as one flat workbook.
func (s *gradingService) ExportResults(_ context.Context, taskID string, results []models.GradingResult, users []models.SubmissionUser) (*bytes.Buffer, error) {
	f, err := export.GradingResultsWorkbook(taskID, results, users)
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

// ExportUserReport renders one learner's graded rubric as a report
// workbook.
func (s *gradingService) ExportUserReport(result models.GradingResult) (*bytes.Buffer, error) {
	f, err := export.UserReportWorkbook(result)
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

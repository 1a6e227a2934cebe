package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coachdesk-api/internal/dto"
	"github.com/noah-isme/coachdesk-api/internal/models"
	"github.com/noah-isme/coachdesk-api/pkg/grader"
)

type fakeEvaluator struct {
	lastReq grader.EvaluateRequest
	results []models.GradingResult
	err     error
}

func (f *fakeEvaluator) Evaluate(_ context.Context, req grader.EvaluateRequest) ([]models.GradingResult, error) {
	f.lastReq = req
	return f.results, f.err
}

type fakePersister struct {
	savedRubrics []grader.SaveRubricRequest
	savedGrades  []grader.SaveGradingRequest
	err          error
}

func (f *fakePersister) SaveRubric(_ context.Context, req grader.SaveRubricRequest) error {
	if f.err != nil {
		return f.err
	}
	f.savedRubrics = append(f.savedRubrics, req)
	return nil
}

func (f *fakePersister) SaveGradingResults(_ context.Context, req grader.SaveGradingRequest) error {
	if f.err != nil {
		return f.err
	}
	f.savedGrades = append(f.savedGrades, req)
	return nil
}

type fakeTaskService struct {
	invalidated []string
}

func (f *fakeTaskService) TaskByID(context.Context, string) (dto.TaskDetailResponse, error) {
	return dto.TaskDetailResponse{Task: models.Task{ID: "task-1", CourseID: "c1"}}, nil
}

func (f *fakeTaskService) UsersForTask(context.Context, string) (dto.TaskUsersResponse, error) {
	return dto.TaskUsersResponse{}, nil
}

func (f *fakeTaskService) Invalidate(_ context.Context, taskID, courseID string) {
	f.invalidated = append(f.invalidated, taskID, courseID)
}

func submissionUser(id string) models.SubmissionUser {
	file := "https://cdn.example.net/report.pdf"
	return models.SubmissionUser{UserID: id, FullName: "Sara Adel", Email: "sara@example.com", FileURL: &file}
}

func sampleCriteria() []models.Criterion {
	return []models.Criterion{{
		Name:   "Completeness",
		Weight: 100,
		Levels: []models.Level{{Description: "done", Range: [2]float64{0, 100}}},
	}}
}

func TestEvaluateCapsUsers(t *testing.T) {
	svc := NewGradingService(&fakeEvaluator{}, &fakePersister{}, &fakeTaskService{}, nil, nil, "", zerolog.Nop())

	req := dto.GradeRequest{
		TaskDescription: "Build an API",
		ScopeRubric:     sampleCriteria(),
		QualityRubric:   sampleCriteria(),
		Users: []models.SubmissionUser{
			submissionUser("1"), submissionUser("2"), submissionUser("3"), submissionUser("4"),
		},
	}
	_, err := svc.Evaluate(context.Background(), "task-1", req)
	require.ErrorIs(t, err, ErrTooManyUsers)
}

func TestEvaluateRequiresWork(t *testing.T) {
	svc := NewGradingService(&fakeEvaluator{}, &fakePersister{}, &fakeTaskService{}, nil, nil, "", zerolog.Nop())

	_, err := svc.Evaluate(context.Background(), "task-1", dto.GradeRequest{
		TaskDescription: "Build an API",
		ScopeRubric:     sampleCriteria(),
		QualityRubric:   sampleCriteria(),
	})
	require.ErrorIs(t, err, ErrNothingToGrade)
}

func TestEvaluateNormalizesAndCombines(t *testing.T) {
	evaluator := &fakeEvaluator{results: []models.GradingResult{{
		UserID: 7,
		Scope: models.GradingSection{
			Criteria:     []models.CriterionGrade{{Name: "Completeness", Grade: 140, ChosenLevel: 12}},
			OverallGrade: 80,
		},
		Quality: models.GradingSection{OverallGrade: 91},
	}}}
	hub := NewProgressHub()
	events, cancel := hub.Subscribe("task-1")
	defer cancel()

	svc := NewGradingService(evaluator, &fakePersister{}, &fakeTaskService{}, hub, nil, "", zerolog.Nop())
	response, err := svc.Evaluate(context.Background(), "task-1", dto.GradeRequest{
		TaskDescription: "<p>Build an API</p>",
		JourneyName:     "Backend",
		ScopeRubric:     sampleCriteria(),
		QualityRubric:   sampleCriteria(),
		Users:           []models.SubmissionUser{submissionUser("7")},
	})
	require.NoError(t, err)

	require.Len(t, response.Results, 1)
	require.Equal(t, 100, response.Results[0].Scope.Criteria[0].Grade)
	require.Equal(t, 10, response.Results[0].Scope.Criteria[0].ChosenLevel)
	require.Equal(t, 86, response.FinalGrades[7])

	// Rich text is stripped before it reaches the evaluator.
	require.Equal(t, "Build an API", evaluator.lastReq.TaskDescription)
	require.NotEmpty(t, evaluator.lastReq.ScopeRubric)

	require.Equal(t, StageStarted, (<-events).Stage)
	evaluated := <-events
	require.Equal(t, StageEvaluated, evaluated.Stage)
	require.Equal(t, int64(7), evaluated.UserID)
	require.Equal(t, StageDone, (<-events).Stage)
}

func TestEvaluateFailurePublishesFailedStage(t *testing.T) {
	hub := NewProgressHub()
	events, cancel := hub.Subscribe("task-1")
	defer cancel()

	svc := NewGradingService(&fakeEvaluator{err: errors.New("X")}, &fakePersister{}, &fakeTaskService{}, hub, nil, "", zerolog.Nop())
	_, err := svc.Evaluate(context.Background(), "task-1", dto.GradeRequest{
		TaskDescription: "Build an API",
		ScopeRubric:     sampleCriteria(),
		QualityRubric:   sampleCriteria(),
		Users:           []models.SubmissionUser{submissionUser("7")},
	})
	require.Error(t, err)
	require.Equal(t, "X", err.Error())

	require.Equal(t, StageStarted, (<-events).Stage)
	failed := <-events
	require.Equal(t, StageFailed, failed.Stage)
	require.Equal(t, "X", failed.Message)
}

func TestSaveResultFlattensAndInvalidates(t *testing.T) {
	persister := &fakePersister{}
	tasks := &fakeTaskService{}

	svc := NewGradingService(&fakeEvaluator{}, persister, tasks, nil, nil, "", zerolog.Nop())
	err := svc.SaveResult(context.Background(), "task-1", dto.SaveGradeRequest{
		Result: models.GradingResult{
			UserID: 7,
			Scope: models.GradingSection{
				Criteria:       []models.CriterionGrade{{Name: "Completeness", Grade: 80, ChosenLevel: 2, Comment: "ok"}},
				OverallGrade:   80,
				OverallComment: "solid",
			},
			Quality: models.GradingSection{OverallGrade: 90, OverallComment: "clean"},
		},
		User: submissionUser("7"),
	})
	require.NoError(t, err)

	require.Len(t, persister.savedGrades, 1)
	saved := persister.savedGrades[0]
	require.Equal(t, int64(7), saved.UserID)
	require.Equal(t, "task-1", saved.TaskID)
	require.Equal(t, 80, saved.ScopeOverallGrade)
	require.Equal(t, 90, saved.QualityOverallGrade)
	require.Equal(t, "Sara Adel", saved.User.FullName)
	require.Len(t, saved.ScopeCriteria, 1)

	require.Equal(t, []string{"task-1", "c1"}, tasks.invalidated)
}

func TestSaveResultPersistFailureSkipsInvalidation(t *testing.T) {
	tasks := &fakeTaskService{}
	svc := NewGradingService(&fakeEvaluator{}, &fakePersister{err: errors.New("store down")}, tasks, nil, nil, "", zerolog.Nop())

	err := svc.SaveResult(context.Background(), "task-1", dto.SaveGradeRequest{
		Result: models.GradingResult{UserID: 7},
		User:   submissionUser("7"),
	})
	require.Error(t, err)
	require.Empty(t, tasks.invalidated)
}

func TestRubricServiceSaveEncodesSections(t *testing.T) {
	persister := &fakePersister{}
	tasks := &fakeTaskService{}

	svc := NewRubricService(nil, persister, tasks, zerolog.Nop())
	err := svc.Save(context.Background(), "task-1", dto.RubricSaveRequest{
		Scope:   sampleCriteria(),
		Quality: sampleCriteria(),
	})
	require.NoError(t, err)

	require.Len(t, persister.savedRubrics, 1)
	require.Equal(t, "task-1", persister.savedRubrics[0].TaskID)
	require.Contains(t, persister.savedRubrics[0].DeliverableRubric, `"Completeness"`)
	require.Equal(t, []string{"task-1", ""}, tasks.invalidated)
}

func TestRubricServiceSaveRejectsInvalidCriteria(t *testing.T) {
	persister := &fakePersister{}
	svc := NewRubricService(nil, persister, &fakeTaskService{}, zerolog.Nop())

	err := svc.Save(context.Background(), "task-1", dto.RubricSaveRequest{
		Scope:   []models.Criterion{{Name: "", Weight: 100}},
		Quality: sampleCriteria(),
	})
	require.Error(t, err)
	require.Empty(t, persister.savedRubrics)
}

func TestProgressHubDropsSlowSubscribers(t *testing.T) {
	hub := NewProgressHub()
	events, cancel := hub.Subscribe("task-1")
	defer cancel()

	for i := 0; i < progressBufferSize+5; i++ {
		hub.Publish(ProgressEvent{TaskID: "task-1", Stage: StageEvaluated})
	}

	received := 0
	timeout := time.After(time.Second)
	for {
		select {
		case <-events:
			received++
			if received == progressBufferSize {
				return
			}
		case <-timeout:
			t.Fatalf("received %d events, want %d", received, progressBufferSize)
		}
	}
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coachdesk-api/internal/cache"
	"github.com/noah-isme/coachdesk-api/internal/models"
	"github.com/noah-isme/coachdesk-api/internal/pipeline"
	"github.com/noah-isme/coachdesk-api/internal/repository"
)

type fakeJourneyRepo struct {
	journeys []models.Journey
	learners []models.JourneyLearner
	err      error
}

func (f *fakeJourneyRepo) ListByCoach(context.Context, string) ([]models.Journey, error) {
	return f.journeys, f.err
}

func (f *fakeJourneyRepo) ListIDsByCoach(context.Context, string) ([]models.Journey, error) {
	return f.journeys, f.err
}

func (f *fakeJourneyRepo) LearnersByJourneys(context.Context, []string) ([]models.JourneyLearner, error) {
	return f.learners, nil
}

func (f *fakeJourneyRepo) JourneyIDForProgram(context.Context, string) (string, error) {
	return "j1", nil
}

func (f *fakeJourneyRepo) LearnerCount(context.Context, string) (int, error) {
	return len(f.learners), nil
}

type fakeProgramRepo struct {
	pairs    []repository.ProgramJourney
	courses  []models.Course
	programs []models.Program
}

func (f *fakeProgramRepo) ProgramsForJourneys(context.Context, []string) ([]repository.ProgramJourney, error) {
	return f.pairs, nil
}

func (f *fakeProgramRepo) ProgramsForJourney(context.Context, string) ([]models.Program, error) {
	return f.programs, nil
}

func (f *fakeProgramRepo) ListByCoach(context.Context, string) ([]models.Course, error) {
	return f.courses, nil
}

func (f *fakeProgramRepo) CourseByID(context.Context, string) (*models.Course, error) {
	if len(f.courses) == 0 {
		return nil, nil
	}
	return &f.courses[0], nil
}

type fakeTaskRepo struct {
	rows      []models.SubmissionRow
	titles    []models.PendingTask
	tasks     []models.Task
	task      *models.Task
	rowsErr   error
	titlesErr error
}

func (f *fakeTaskRepo) StatusRowsForPrograms(context.Context, []string) ([]models.SubmissionRow, error) {
	return f.rows, f.rowsErr
}

func (f *fakeTaskRepo) StatusRowsWithJourneys(context.Context, []string) ([]models.SubmissionRow, error) {
	return f.rows, f.rowsErr
}

func (f *fakeTaskRepo) TasksForCourse(context.Context, string) ([]models.Task, error) {
	return f.tasks, nil
}

func (f *fakeTaskRepo) TaskByID(context.Context, string) (*models.Task, error) {
	return f.task, nil
}

func (f *fakeTaskRepo) PendingTitles(context.Context, []string) ([]models.PendingTask, error) {
	return f.titles, f.titlesErr
}

func testCache(t *testing.T) *cache.Store {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.New(client, zerolog.Nop())
}

func grade(v float64) *float64 { return &v }

func TestGetDashboardAggregates(t *testing.T) {
	journeys := &fakeJourneyRepo{
		journeys: []models.Journey{{ID: "j1", Title: "Backend"}, {ID: "j2", Title: "Frontend"}},
		learners: []models.JourneyLearner{
			{ID: "l1", JourneyID: "j1", UserID: "u1", Graduation: models.GraduationGraduated},
			{ID: "l2", JourneyID: "j1", UserID: "u2", Graduation: models.GraduationInProgress},
			{ID: "l3", JourneyID: "j2", UserID: "u3", Graduation: models.GraduationInProgress},
		},
	}
	programs := &fakeProgramRepo{pairs: []repository.ProgramJourney{{ProgramID: "p1", JourneyID: "j1"}}}
	tasks := &fakeTaskRepo{
		rows: []models.SubmissionRow{
			{AssignmentID: "a1", ProgramID: "p1", Status: models.SubmissionPending},
			{AssignmentID: "a1", ProgramID: "p1", Status: models.SubmissionUnderReview},
			{AssignmentID: "a2", ProgramID: "p1", Status: models.SubmissionPassed, Grade: grade(90)},
		},
		titles: []models.PendingTask{{ID: "a1", CourseID: "p1", Title: "Build an API"}},
	}

	svc := NewDashboardService(journeys, programs, tasks, testCache(t), time.Minute, zerolog.Nop())
	response, err := svc.GetDashboard(context.Background(), "coach-1")
	require.NoError(t, err)

	require.Equal(t, 2, response.Stats.TotalJourneys)
	require.Equal(t, 3, response.Stats.TotalLearners)
	require.Equal(t, 1, response.Stats.GraduatedLearners)
	require.Equal(t, 2, response.Stats.ActiveLearners)

	require.Equal(t, 2, response.PendingCount)
	require.Equal(t, 1, response.ScoredCount)
	require.Equal(t, 3, response.TotalAssignments)

	require.Len(t, response.PendingTasks, 1)
	require.Equal(t, "Build an API", response.PendingTasks[0].Title)
	require.Equal(t, 2, response.PendingTasks[0].Count)

	require.Len(t, response.JourneysSummary, 2)
	require.Equal(t, 2, response.JourneysSummary[0].Learners)
}

func TestGetDashboardEmptyJourneys(t *testing.T) {
	svc := NewDashboardService(&fakeJourneyRepo{}, &fakeProgramRepo{}, &fakeTaskRepo{}, testCache(t), time.Minute, zerolog.Nop())

	response, err := svc.GetDashboard(context.Background(), "coach-1")
	require.NoError(t, err)
	require.Empty(t, response.Journeys)
	require.Zero(t, response.TotalAssignments)
	require.NotNil(t, response.PendingTasks)
}

func TestGetDashboardNamesFailedStage(t *testing.T) {
	journeys := &fakeJourneyRepo{journeys: []models.Journey{{ID: "j1"}}}
	tasks := &fakeTaskRepo{rowsErr: errors.New("X")}
	programs := &fakeProgramRepo{pairs: []repository.ProgramJourney{{ProgramID: "p1", JourneyID: "j1"}}}

	svc := NewDashboardService(journeys, programs, tasks, nil, time.Minute, zerolog.Nop())
	_, err := svc.GetDashboard(context.Background(), "coach-1")
	require.Error(t, err)
	require.Equal(t, "X", err.Error())
	require.Equal(t, "submissions", pipeline.FailedStage(err))
}

func TestGetDashboardServedFromCache(t *testing.T) {
	journeys := &fakeJourneyRepo{journeys: []models.Journey{{ID: "j1", Title: "Backend"}}}
	store := testCache(t)

	svc := NewDashboardService(journeys, &fakeProgramRepo{}, &fakeTaskRepo{}, store, time.Minute, zerolog.Nop())
	first, err := svc.GetDashboard(context.Background(), "coach-1")
	require.NoError(t, err)

	// The second read must not hit the repositories again.
	journeys.err = errors.New("remote store down")
	second, err := svc.GetDashboard(context.Background(), "coach-1")
	require.NoError(t, err)
	require.Equal(t, first.Stats, second.Stats)
}

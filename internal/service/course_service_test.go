package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coachdesk-api/internal/models"
	"github.com/noah-isme/coachdesk-api/internal/repository"
)

type fakeSubmissionRepo struct {
	users []models.SubmissionUser
	err   error
}

func (f *fakeSubmissionRepo) UsersForTask(context.Context, string) ([]models.SubmissionUser, error) {
	return f.users, f.err
}

func TestListCoursesSortsMostPendingFirst(t *testing.T) {
	programs := &fakeProgramRepo{courses: []models.Course{
		{ID: "c1", Title: "Fundamentals", TotalTasks: 10, ScoredTasks: 9},
		{ID: "c2", Title: "Capstone", TotalTasks: 8, ScoredTasks: 2},
		{ID: "c3", Title: "Warmup", TotalTasks: 3, ScoredTasks: 3},
	}}
	svc := NewCourseService(&fakeJourneyRepo{}, programs, &fakeTaskRepo{}, testCache(t), time.Minute, zerolog.Nop())

	response, err := svc.ListCourses(context.Background(), "42")
	require.NoError(t, err)

	require.Equal(t, 21, response.TotalTasks)
	require.Equal(t, 14, response.ScoredTasks)
	require.Equal(t, 7, response.PendingTasks)

	require.Equal(t, "c2", response.MostPending[0].CourseID)
	require.Equal(t, 6, response.MostPending[0].Pending)
	require.Equal(t, "c1", response.MostPending[1].CourseID)
	require.Equal(t, "c3", response.MostPending[2].CourseID)
}

func TestCourseByIDWidensLearnerCount(t *testing.T) {
	journeys := &fakeJourneyRepo{learners: []models.JourneyLearner{
		{ID: "l1", JourneyID: "j1"}, {ID: "l2", JourneyID: "j1"}, {ID: "l3", JourneyID: "j1"},
	}}
	programs := &fakeProgramRepo{courses: []models.Course{{ID: "c1", Title: "Fundamentals", LearnerCount: 1}}}
	svc := NewCourseService(journeys, programs, &fakeTaskRepo{}, testCache(t), time.Minute, zerolog.Nop())

	response, err := svc.CourseByID(context.Background(), "c1")
	require.NoError(t, err)
	require.Equal(t, 3, response.Course.LearnerCount)
}

func TestCourseByIDMissingCourse(t *testing.T) {
	svc := NewCourseService(&fakeJourneyRepo{}, &fakeProgramRepo{}, &fakeTaskRepo{}, testCache(t), time.Minute, zerolog.Nop())

	_, err := svc.CourseByID(context.Background(), "missing")
	require.ErrorIs(t, err, ErrCourseNotFound)
}

func TestTasksForCourseDerivesPendingTotals(t *testing.T) {
	tasks := &fakeTaskRepo{tasks: []models.Task{
		{ID: "t1", TotalSubmissions: 5, ScoredSubmissions: 2, PendingSubmissions: 3},
		{ID: "t2", TotalSubmissions: 2, ScoredSubmissions: 4, PendingSubmissions: 0},
	}}
	svc := NewCourseService(&fakeJourneyRepo{}, &fakeProgramRepo{}, tasks, testCache(t), time.Minute, zerolog.Nop())

	response, err := svc.TasksForCourse(context.Background(), "c1")
	require.NoError(t, err)

	// Over-scored tasks never drive the pending total negative.
	require.Equal(t, 3, response.PendingTasks)
	require.Equal(t, 3, response.PendingSubmissions)
}

func TestTaskByIDAttachesCourse(t *testing.T) {
	tasks := &fakeTaskRepo{task: &models.Task{ID: "t1", CourseID: "c1", Title: "Build an API"}}
	programs := &fakeProgramRepo{courses: []models.Course{{ID: "c1", Title: "Fundamentals"}}}
	svc := NewTaskService(tasks, programs, &fakeSubmissionRepo{}, &fakeJourneyRepo{}, testCache(t), time.Minute, zerolog.Nop())

	response, err := svc.TaskByID(context.Background(), "t1")
	require.NoError(t, err)
	require.Equal(t, "Build an API", response.Task.Title)
	require.NotNil(t, response.Course)
	require.Equal(t, "Fundamentals", response.Course.Title)
}

func TestTaskByIDMissingTask(t *testing.T) {
	svc := NewTaskService(&fakeTaskRepo{}, &fakeProgramRepo{}, &fakeSubmissionRepo{}, &fakeJourneyRepo{}, testCache(t), time.Minute, zerolog.Nop())

	_, err := svc.TaskByID(context.Background(), "missing")
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestUsersForTaskCountsNotSubmitted(t *testing.T) {
	journeys := &fakeJourneyRepo{learners: []models.JourneyLearner{
		{ID: "l1", JourneyID: "j1"}, {ID: "l2", JourneyID: "j1"},
		{ID: "l3", JourneyID: "j1"}, {ID: "l4", JourneyID: "j1"},
	}}
	tasks := &fakeTaskRepo{task: &models.Task{ID: "t1", CourseID: "c1"}}
	submissions := &fakeSubmissionRepo{users: []models.SubmissionUser{
		{UserID: "1"}, {UserID: "2"}, {UserID: "3"},
	}}
	svc := NewTaskService(tasks, &fakeProgramRepo{}, submissions, journeys, testCache(t), time.Minute, zerolog.Nop())

	response, err := svc.UsersForTask(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, response.Users, 3)
	require.Equal(t, 1, response.NotSubmitted)
}

func TestInvalidateDropsTaskAndCourseKeys(t *testing.T) {
	store := testCache(t)
	tasks := &fakeTaskRepo{task: &models.Task{ID: "t1", CourseID: "c1"}}
	svc := NewTaskService(tasks, &fakeProgramRepo{courses: []models.Course{{ID: "c1"}}}, &fakeSubmissionRepo{}, &fakeJourneyRepo{}, store, time.Minute, zerolog.Nop())

	first, err := svc.TaskByID(context.Background(), "t1")
	require.NoError(t, err)
	require.Equal(t, "t1", first.Task.ID)

	tasks.task = &models.Task{ID: "t1", CourseID: "c1", Title: "Renamed"}
	svc.Invalidate(context.Background(), "t1", "c1")

	second, err := svc.TaskByID(context.Background(), "t1")
	require.NoError(t, err)
	require.Equal(t, "Renamed", second.Task.Title)
}

func TestListJourneysMergesCounts(t *testing.T) {
	journeys := &fakeJourneyRepo{journeys: []models.Journey{{ID: "j1", Title: "Backend", Learners: 12}}}
	programs := &fakeProgramRepo{pairs: []repository.ProgramJourney{{ProgramID: "p1", JourneyID: "j1"}}}
	tasks := &fakeTaskRepo{rows: []models.SubmissionRow{
		{AssignmentID: "a1", ProgramID: "p1", JourneyID: "j1", Status: models.SubmissionPending},
		{AssignmentID: "a2", ProgramID: "p1", JourneyID: "j1", Status: models.SubmissionPassed, Grade: grade(90)},
	}}

	svc := NewJourneyService(journeys, programs, tasks, testCache(t), time.Minute, zerolog.Nop())
	response, err := svc.ListJourneys(context.Background(), "42")
	require.NoError(t, err)

	require.Len(t, response.Journeys, 1)
	require.Equal(t, 1, response.Journeys[0].PendingAssignments)
	require.Equal(t, 1, response.Journeys[0].ScoredAssignments)
}

func TestProgramsForJourneyBreakdown(t *testing.T) {
	programs := &fakeProgramRepo{programs: []models.Program{
		{ID: "p1", JourneyID: "j1", Title: "Module One"},
		{ID: "p2", JourneyID: "j1", Title: "Module Two"},
	}}
	tasks := &fakeTaskRepo{rows: []models.SubmissionRow{
		{AssignmentID: "a1", ProgramID: "p1", Status: models.SubmissionPending},
		{AssignmentID: "a2", ProgramID: "p1", Status: models.SubmissionUnderReview},
		{AssignmentID: "a3", ProgramID: "p2", Status: models.SubmissionPassed, Grade: grade(70)},
	}}

	svc := NewJourneyService(&fakeJourneyRepo{}, programs, tasks, testCache(t), time.Minute, zerolog.Nop())
	response, err := svc.ProgramsForJourney(context.Background(), "j1")
	require.NoError(t, err)

	require.Equal(t, 2, response.PendingByProgram["p1"])
	require.Equal(t, 1, response.ScoredByProgram["p2"])
	require.Equal(t, 2, response.PendingCount)
	require.Equal(t, 1, response.ScoredCount)
}

package repository

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coachdesk-api/internal/queryapi"
)

type fakeExecutor struct {
	rows queryapi.Rows
	err  error
	last string
}

func (f *fakeExecutor) Execute(_ context.Context, sql string) (queryapi.Rows, error) {
	f.last = sql
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func TestJourneyListByCoachDefaultsTitle(t *testing.T) {
	exec := &fakeExecutor{rows: queryapi.Rows{
		{"j1", nil, float64(4)},
		{"j2", "backend-journey", float64(-2)},
	}}
	repo := NewJourneyRepository(exec)

	journeys, err := repo.ListByCoach(context.Background(), "coach-1")
	require.NoError(t, err)
	require.Len(t, journeys, 2)
	require.Equal(t, "Untitled Journey", journeys[0].Title)
	require.Equal(t, 4, journeys[0].Learners)
	require.Equal(t, "backend-journey", journeys[1].Title)
	require.Equal(t, 0, journeys[1].Learners)
}

func TestJourneyListByCoachEscapesID(t *testing.T) {
	exec := &fakeExecutor{}
	repo := NewJourneyRepository(exec)

	_, err := repo.ListByCoach(context.Background(), "x' OR '1'='1")
	require.NoError(t, err)
	require.Contains(t, exec.last, "'x'' OR ''1''=''1'")
}

func TestCourseRowMapping(t *testing.T) {
	exec := &fakeExecutor{rows: queryapi.Rows{
		{"c1", "go-backend", "bootcamp", "thumb.png", "cover.png", float64(12), float64(30), float64(18), nil},
	}}
	repo := NewProgramRepository(exec)

	course, err := repo.CourseByID(context.Background(), "c1")
	require.NoError(t, err)
	require.NotNil(t, course)
	require.Equal(t, "go-backend", course.Title)
	require.Equal(t, "No description available", course.Description)
	require.Equal(t, 12, course.LearnerCount)
	require.Equal(t, 12, course.PendingTasks())
}

func TestCourseByIDNoRows(t *testing.T) {
	repo := NewProgramRepository(&fakeExecutor{})

	course, err := repo.CourseByID(context.Background(), "missing")
	require.NoError(t, err)
	require.Nil(t, course)
}

func TestProgramsForJourneyDefaults(t *testing.T) {
	exec := &fakeExecutor{rows: queryapi.Rows{
		{"p1", "j1", "jp1", nil, nil, "course", "2026-01-05", "active"},
	}}
	repo := NewProgramRepository(exec)

	programs, err := repo.ProgramsForJourney(context.Background(), "j1")
	require.NoError(t, err)
	require.Len(t, programs, 1)
	require.Equal(t, "Untitled Program", programs[0].Title)
	require.Equal(t, "No description available", programs[0].Description)
}

func TestStatusRowsMapping(t *testing.T) {
	grade := 80.0
	exec := &fakeExecutor{rows: queryapi.Rows{
		{"a1", "p1", "pending", nil, "j1"},
		{"a2", "p1", "passed", grade, "j1"},
	}}
	repo := NewTaskRepository(exec, zerolog.Nop())

	rows, err := repo.StatusRowsWithJourneys(context.Background(), []string{"p1"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.True(t, rows[0].Status.AwaitingReview())
	require.False(t, rows[0].Scored())
	require.True(t, rows[1].Scored())
	require.Equal(t, "j1", rows[1].JourneyID)
}

func TestStatusRowsEmptyProgramListSkipsQuery(t *testing.T) {
	exec := &fakeExecutor{}
	repo := NewTaskRepository(exec, zerolog.Nop())

	rows, err := repo.StatusRowsForPrograms(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, rows)
	require.Empty(t, exec.last)
}

func TestTasksForCourseTotalsUniqueSubmissions(t *testing.T) {
	exec := &fakeExecutor{rows: queryapi.Rows{
		{"a1", "c1", "Task One", "desc", float64(5), float64(2), float64(1), "2026-03-01T00:00:00Z", float64(3)},
		{"a2", "c1", nil, nil, float64(-1), float64(0), float64(0), nil, float64(2)},
	}}
	repo := NewTaskRepository(exec, zerolog.Nop())

	tasks, err := repo.TasksForCourse(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	require.Equal(t, "2026-03-01", tasks[0].DueDate)
	require.Equal(t, "Untitled Task", tasks[1].Title)
	require.Equal(t, 0, tasks[1].TotalSubmissions)
	require.Equal(t, 5, tasks[0].TotalUniqueSubmissions)
	require.Equal(t, 5, tasks[1].TotalUniqueSubmissions)
}

func TestTaskByIDParsesRubrics(t *testing.T) {
	scope := `[{"name":"Completeness","weight":60,"levels":[{"description":"All parts done","range":[0,100]}]}]`
	exec := &fakeExecutor{rows: queryapi.Rows{
		{"a1", "c1", "Task One", "desc", float64(5), float64(2), "2026-03-01T00:00:00Z", float64(100), scope, "{broken", "project", "file"},
	}}
	repo := NewTaskRepository(exec, zerolog.Nop())

	task, err := repo.TaskByID(context.Background(), "a1")
	require.NoError(t, err)
	require.NotNil(t, task)
	require.Len(t, task.ScopeRubric, 1)
	require.Equal(t, "Completeness", task.ScopeRubric[0].Name)
	require.Empty(t, task.QualityRubric)
	require.NotNil(t, task.MaxPoints)
	require.Equal(t, 100.0, *task.MaxPoints)
}

func TestUsersForTaskResolvesFileURL(t *testing.T) {
	exec := &fakeExecutor{rows: queryapi.Rows{
		{"u1", "Sara Adel", "sara@example.com", nil, "pending", nil, `{"upload":["/files/report.pdf","extra.pdf"]}`, "s1"},
		{"u2", "Omar Khaled", "omar@example.com", "avatar.png", "passed", 90.0, `{broken`, "s2"},
		{"u3", "Nour Ali", "nour@example.com", nil, "pending", nil, `{"upload":[]}`, nil},
	}}
	repo := NewSubmissionRepository(exec, "https://cdn.example.net/production/", zerolog.Nop())

	users, err := repo.UsersForTask(context.Background(), "a1")
	require.NoError(t, err)
	require.Len(t, users, 3)

	require.NotNil(t, users[0].FileURL)
	require.Equal(t, "https://cdn.example.net/production/files/report.pdf", *users[0].FileURL)
	require.Equal(t, "s1", users[0].SelectionKey())

	require.Nil(t, users[1].FileURL)
	require.NotNil(t, users[1].Grade)

	require.Nil(t, users[2].FileURL)
	require.Equal(t, "u3", users[2].SelectionKey())
}

func TestFirstSubmissionFileOrderAndShapes(t *testing.T) {
	path, err := firstSubmissionFile(`{"b":["second.pdf"],"a":["won't win"]}`)
	require.NoError(t, err)
	require.Equal(t, "second.pdf", path)

	path, err = firstSubmissionFile(`{"note":"not a list"}`)
	require.NoError(t, err)
	require.Empty(t, path)

	_, err = firstSubmissionFile(`[]`)
	require.Error(t, err)
}

func TestUsersForTaskPropagatesServerError(t *testing.T) {
	exec := &fakeExecutor{err: &queryapi.ServerError{Message: "X"}}
	repo := NewSubmissionRepository(exec, "https://cdn.example.net", zerolog.Nop())

	_, err := repo.UsersForTask(context.Background(), "a1")
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "X"))
}

func TestPendingTitlesDefaults(t *testing.T) {
	exec := &fakeExecutor{rows: queryapi.Rows{
		{"a1", "c1", nil, nil},
	}}
	repo := NewTaskRepository(exec, zerolog.Nop())

	titles, err := repo.PendingTitles(context.Background(), []string{"a1"})
	require.NoError(t, err)
	require.Len(t, titles, 1)
	require.Equal(t, "Untitled Task", titles[0].Title)
	require.Equal(t, "No description available", titles[0].Description)
}

func TestCoachProfileMapsRow(t *testing.T) {
	exec := &fakeExecutor{rows: queryapi.Rows{
		{"Mona Hassan", "mona@example.com", "+201000000000", "active"},
	}}
	repo := NewCoachRepository(exec)

	profile, err := repo.Profile(context.Background(), "coach-1")
	require.NoError(t, err)
	require.NotNil(t, profile)
	require.Equal(t, "Mona Hassan", profile.FullName)

	exec.rows = nil
	profile, err = repo.Profile(context.Background(), "coach-1")
	require.NoError(t, err)
	require.Nil(t, profile)
}

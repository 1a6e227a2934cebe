package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/coachdesk-api/internal/cache"
	"github.com/noah-isme/coachdesk-api/internal/dto"
	"github.com/noah-isme/coachdesk-api/internal/models"
	"github.com/noah-isme/coachdesk-api/internal/repository"
	"github.com/noah-isme/coachdesk-api/internal/stats"
)

// ErrTaskNotFound is returned when no assignment matches the requested id.
var ErrTaskNotFound = errors.New("task not found")

// TaskService serves the task grading page: the task with its rubrics, the
// course summary, and the roster of learners who submitted.
type TaskService interface {
	TaskByID(ctx context.Context, taskID string) (dto.TaskDetailResponse, error)
	UsersForTask(ctx context.Context, taskID string) (dto.TaskUsersResponse, error)
	Invalidate(ctx context.Context, taskID, courseID string)
}

type taskService struct {
	tasks       repository.TaskRepository
	programs    repository.ProgramRepository
	submissions repository.SubmissionRepository
	journeys    repository.JourneyRepository
	cache       *cache.Store
	cacheTTL    time.Duration
	logger      zerolog.Logger
}

// NewTaskService builds the task page service.
func NewTaskService(tasks repository.TaskRepository, programs repository.ProgramRepository, submissions repository.SubmissionRepository, journeys repository.JourneyRepository, store *cache.Store, ttl time.Duration, logger zerolog.Logger) TaskService {
	return &taskService{
		tasks:       tasks,
		programs:    programs,
		submissions: submissions,
		journeys:    journeys,
		cache:       store,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "task_service").Logger(),
	}
}

// TaskCacheKey names the cache slot for one task's detail.
func TaskCacheKey(taskID string) string {
	return fmt.Sprintf("task:%s", taskID)
}

// TaskUsersCacheKey names the cache slot for one task's roster.
func TaskUsersCacheKey(taskID string) string {
	return fmt.Sprintf("task:%s:users", taskID)
}

// TaskByID returns the task with its rubrics and its course summary.
func (s *taskService) TaskByID(ctx context.Context, taskID string) (dto.TaskDetailResponse, error) {
	return cache.Fetch(ctx, s.cache, TaskCacheKey(taskID), s.cacheTTL, func(ctx context.Context) (dto.TaskDetailResponse, error) {
		task, err := s.tasks.TaskByID(ctx, taskID)
		if err != nil {
			return dto.TaskDetailResponse{}, err
		}
		if task == nil {
			return dto.TaskDetailResponse{}, ErrTaskNotFound
		}

		response := dto.TaskDetailResponse{Task: *task}
		if task.CourseID != "" {
			course, err := s.programs.CourseByID(ctx, task.CourseID)
			if err != nil {
				return dto.TaskDetailResponse{}, err
			}
			response.Course = course
		}
		return response, nil
	})
}

// UsersForTask returns every learner with a submission record for the
// task, plus how many journey learners never submitted.
func (s *taskService) UsersForTask(ctx context.Context, taskID string) (dto.TaskUsersResponse, error) {
	return cache.Fetch(ctx, s.cache, TaskUsersCacheKey(taskID), s.cacheTTL, func(ctx context.Context) (dto.TaskUsersResponse, error) {
		users, err := s.submissions.UsersForTask(ctx, taskID)
		if err != nil {
			return dto.TaskUsersResponse{}, err
		}
		if users == nil {
			users = []models.SubmissionUser{}
		}

		response := dto.TaskUsersResponse{Users: users}

		task, err := s.tasks.TaskByID(ctx, taskID)
		if err != nil || task == nil || task.CourseID == "" {
			return response, nil
		}
		journeyID, err := s.journeys.JourneyIDForProgram(ctx, task.CourseID)
		if err != nil || journeyID == "" {
			return response, nil
		}
		learnerCount, err := s.journeys.LearnerCount(ctx, journeyID)
		if err != nil {
			return response, nil
		}
		response.NotSubmitted = stats.NotSubmitted(learnerCount, len(users))
		return response, nil
	})
}

// Invalidate drops the task's cached detail and roster along with its
// course's task list, after a grading or rubric mutation.
func (s *taskService) Invalidate(ctx context.Context, taskID, courseID string) {
	keys := []string{TaskCacheKey(taskID), TaskUsersCacheKey(taskID)}
	if courseID != "" {
		keys = append(keys, CourseCacheKey(courseID), CourseTasksCacheKey(courseID))
	}
	s.cache.Invalidate(ctx, keys...)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/coachdesk-api/internal/cache"
	"github.com/noah-isme/coachdesk-api/internal/dto"
	"github.com/noah-isme/coachdesk-api/internal/models"
	"github.com/noah-isme/coachdesk-api/internal/repository"
)

// ErrCourseNotFound is returned when no course matches the requested id.
var ErrCourseNotFound = errors.New("course not found")

// CourseService serves the courses page and course detail views.
type CourseService interface {
	ListCourses(ctx context.Context, coachID string) (dto.CourseListResponse, error)
	CourseByID(ctx context.Context, courseID string) (dto.CourseDetailResponse, error)
	TasksForCourse(ctx context.Context, courseID string) (dto.CourseTasksResponse, error)
}

type courseService struct {
	journeys repository.JourneyRepository
	programs repository.ProgramRepository
	tasks    repository.TaskRepository
	cache    *cache.Store
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// NewCourseService builds the course page service.
func NewCourseService(journeys repository.JourneyRepository, programs repository.ProgramRepository, tasks repository.TaskRepository, store *cache.Store, ttl time.Duration, logger zerolog.Logger) CourseService {
	return &courseService{
		journeys: journeys,
		programs: programs,
		tasks:    tasks,
		cache:    store,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "course_service").Logger(),
	}
}

// CourseCacheKey names the cache slot for one course's detail.
func CourseCacheKey(courseID string) string {
	return fmt.Sprintf("course:%s", courseID)
}

// CourseTasksCacheKey names the cache slot for one course's task list.
func CourseTasksCacheKey(courseID string) string {
	return fmt.Sprintf("course:%s:tasks", courseID)
}

// ListCourses returns the coach's courses with cross-course totals and the
// per-course unscored counts sorted most pending first.
func (s *courseService) ListCourses(ctx context.Context, coachID string) (dto.CourseListResponse, error) {
	key := fmt.Sprintf("courses:coach:%s", coachID)
	return cache.Fetch(ctx, s.cache, key, s.cacheTTL, func(ctx context.Context) (dto.CourseListResponse, error) {
		courses, err := s.programs.ListByCoach(ctx, coachID)
		if err != nil {
			return dto.CourseListResponse{}, err
		}

		response := dto.CourseListResponse{
			Courses:     courses,
			MostPending: make([]dto.CoursePending, 0, len(courses)),
		}
		for _, course := range courses {
			response.TotalTasks += course.TotalTasks
			response.ScoredTasks += course.ScoredTasks
			response.PendingTasks += course.PendingTasks()
			response.MostPending = append(response.MostPending, dto.CoursePending{
				CourseID: course.ID,
				Title:    course.Title,
				Pending:  course.PendingTasks(),
			})
		}
		sort.SliceStable(response.MostPending, func(i, j int) bool {
			return response.MostPending[i].Pending > response.MostPending[j].Pending
		})
		if response.Courses == nil {
			response.Courses = []models.Course{}
		}
		return response, nil
	})
}

// CourseByID returns the course detail with the learner count widened to
// the whole journey the course belongs to.
func (s *courseService) CourseByID(ctx context.Context, courseID string) (dto.CourseDetailResponse, error) {
	return cache.Fetch(ctx, s.cache, CourseCacheKey(courseID), s.cacheTTL, func(ctx context.Context) (dto.CourseDetailResponse, error) {
		course, err := s.programs.CourseByID(ctx, courseID)
		if err != nil {
			return dto.CourseDetailResponse{}, err
		}
		if course == nil {
			return dto.CourseDetailResponse{}, ErrCourseNotFound
		}

		journeyID, err := s.journeys.JourneyIDForProgram(ctx, courseID)
		if err != nil {
			return dto.CourseDetailResponse{}, err
		}
		if journeyID != "" {
			count, err := s.journeys.LearnerCount(ctx, journeyID)
			if err != nil {
				return dto.CourseDetailResponse{}, err
			}
			course.LearnerCount = count
		}

		return dto.CourseDetailResponse{Course: *course}, nil
	})
}

// TasksForCourse returns the course's tasks with the derived pending
// totals: unscored submissions and not-yet-submitted counts across tasks.
func (s *courseService) TasksForCourse(ctx context.Context, courseID string) (dto.CourseTasksResponse, error) {
	return cache.Fetch(ctx, s.cache, CourseTasksCacheKey(courseID), s.cacheTTL, func(ctx context.Context) (dto.CourseTasksResponse, error) {
		tasks, err := s.tasks.TasksForCourse(ctx, courseID)
		if err != nil {
			return dto.CourseTasksResponse{}, err
		}

		response := dto.CourseTasksResponse{Tasks: tasks}
		if response.Tasks == nil {
			response.Tasks = []models.Task{}
		}
		for _, task := range tasks {
			if pending := task.TotalSubmissions - task.ScoredSubmissions; pending > 0 {
				response.PendingTasks += pending
			}
			response.PendingSubmissions += task.PendingSubmissions
		}
		return response, nil
	})
}

package dto

import "github.com/noah-isme/coachdesk-api/internal/models"

// CoursePending pairs a course with its unscored task count, for the
// most-pending-first list on the courses page.
type CoursePending struct {
	CourseID string `json:"course_id"`
	Title    string `json:"title"`
	Pending  int    `json:"pending"`
}

// CourseListResponse lists a coach's courses with cross-course totals.
type CourseListResponse struct {
	Courses      []models.Course `json:"courses"`
	TotalTasks   int             `json:"total_tasks"`
	ScoredTasks  int             `json:"scored_tasks"`
	PendingTasks int             `json:"pending_tasks"`
	MostPending  []CoursePending `json:"most_pending"`
}

// CourseDetailResponse is one course with its journey-wide learner count
// already resolved.
type CourseDetailResponse struct {
	Course models.Course `json:"course"`
}

// CourseTasksResponse lists a course's tasks with the derived pending
// totals across them.
type CourseTasksResponse struct {
	Tasks              []models.Task `json:"tasks"`
	PendingTasks       int           `json:"pending_tasks"`
	PendingSubmissions int           `json:"pending_submissions"`
}

// TaskDetailResponse pairs a task with its course summary.
type TaskDetailResponse struct {
	Task   models.Task    `json:"task"`
	Course *models.Course `json:"course,omitempty"`
}

// TaskUsersResponse lists the learners who submitted a task.
type TaskUsersResponse struct {
	Users        []models.SubmissionUser `json:"users"`
	NotSubmitted int                     `json:"not_submitted"`
}

package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/coachdesk-api/internal/models"
)

// SubmissionRepository fetches the learners who submitted a task, resolving
// each submission's first uploaded file into a CDN URL.
type SubmissionRepository interface {
	UsersForTask(ctx context.Context, taskID string) ([]models.SubmissionUser, error)
}

type submissionRepository struct {
	executor   Executor
	cdnBaseURL string
	logger     zerolog.Logger
}

// NewSubmissionRepository builds the repository over the query client.
// cdnBaseURL is prefixed onto submission file paths.
func NewSubmissionRepository(executor Executor, cdnBaseURL string, logger zerolog.Logger) SubmissionRepository {
	return &submissionRepository{
		executor:   executor,
		cdnBaseURL: strings.TrimRight(cdnBaseURL, "/"),
		logger:     logger.With().Str("component", "submission_repository").Logger(),
	}
}

// UsersForTask returns every learner with a submission record for the task,
// joined with their profile and submission data.
func (r *submissionRepository) UsersForTask(ctx context.Context, taskID string) ([]models.SubmissionUser, error) {
	sql := fmt.Sprintf(`
		SELECT
		  u.id,
		  u.full_name as fullName,
		  u.email,
		  u.avatar as profilePicture,
		  s.status,
		  s.grade,
		  sd.submissions,
		  sd.id
		FROM assignment_submissions s
		JOIN users u ON s.student_id = u.id
		JOIN assignment_submission_data sd ON s.id = sd.assignment_submission_id
		WHERE s.assignment_id = '%s'
	`, quoteLiteral(taskID))

	rows, err := r.executor.Execute(ctx, sql)
	if err != nil {
		return nil, err
	}

	users := make([]models.SubmissionUser, 0, len(rows))
	for _, row := range rows {
		userID, err := row.String(0)
		if err != nil {
			return nil, fmt.Errorf("map submission user: %w", err)
		}

		user := models.SubmissionUser{
			UserID:         userID,
			FullName:       row.StringOr(1, ""),
			Email:          row.StringOr(2, ""),
			ProfilePicture: row.NullString(3),
			Status:         models.SubmissionStatus(row.StringOr(4, "")),
			Grade:          row.FloatPtr(5),
			SubmissionID:   row.NullString(7),
		}

		if raw := row.NullString(6); raw != nil {
			path, err := firstSubmissionFile(*raw)
			if err != nil {
				r.logger.Warn().Err(err).Str("user_id", userID).Msg("malformed submission data payload")
			} else if path != "" {
				url := r.cdnBaseURL + "/" + strings.TrimPrefix(path, "/")
				user.FileURL = &url
			}
		}

		users = append(users, user)
	}
	return users, nil
}

// firstSubmissionFile extracts the first file path from a submissions JSON
// payload: an object keyed by submission field, each holding a list of
// paths. Only the first key in document order is considered, matching how
// the payload is written.
func firstSubmissionFile(raw string) (string, error) {
	dec := json.NewDecoder(strings.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("decode submissions json: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return "", fmt.Errorf("decode submissions json: expected object, got %v", tok)
	}

	if !dec.More() {
		return "", nil
	}
	if _, err := dec.Token(); err != nil {
		return "", fmt.Errorf("decode submissions json: %w", err)
	}

	var value json.RawMessage
	if err := dec.Decode(&value); err != nil {
		return "", fmt.Errorf("decode submissions json: %w", err)
	}

	var files []string
	if err := json.Unmarshal(value, &files); err != nil {
		// The first value is not a list of paths; there is no file.
		return "", nil
	}
	if len(files) > 0 {
		return files[0], nil
	}
	return "", nil
}

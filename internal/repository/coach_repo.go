package repository

import (
	"context"
	"fmt"

	"github.com/noah-isme/coachdesk-api/internal/models"
)

// CoachRepository fetches coach profile rows.
type CoachRepository interface {
	Profile(ctx context.Context, coachID string) (*models.CoachProfile, error)
}

type coachRepository struct {
	executor Executor
}

// NewCoachRepository builds the repository over the query client.
func NewCoachRepository(executor Executor) CoachRepository {
	return &coachRepository{executor: executor}
}

// Profile returns the coach's users row, or nil when no row matches.
func (r *coachRepository) Profile(ctx context.Context, coachID string) (*models.CoachProfile, error) {
	if coachID == "" {
		return nil, nil
	}

	sql := fmt.Sprintf(`
		SELECT
		  full_name,
		  email,
		  mobile,
		  status
		FROM users
		WHERE id = '%s'
	`, quoteLiteral(coachID))

	rows, err := r.executor.Execute(ctx, sql)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	row := rows[0]
	fullName, err := row.String(0)
	if err != nil {
		return nil, fmt.Errorf("map coach profile: %w", err)
	}

	return &models.CoachProfile{
		ID:          coachID,
		FullName:    fullName,
		Email:       row.StringOr(1, ""),
		PhoneNumber: row.StringOr(2, ""),
		Status:      row.StringOr(3, ""),
	}, nil
}

package dto

import "github.com/noah-isme/coachdesk-api/internal/models"

// LoginRequest authenticates a coach by id. The id must exist in the
// remote data store.
type LoginRequest struct {
	CoachID string `json:"coach_id" validate:"required,min=1"`
}

// LoginResponse carries the issued token and the coach's profile.
type LoginResponse struct {
	Token   string              `json:"token"`
	Profile models.CoachProfile `json:"profile"`
}

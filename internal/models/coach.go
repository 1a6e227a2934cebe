package models

// CoachProfile is the authenticated coach's profile row from the users table.
type CoachProfile struct {
	ID          string `json:"id"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Status      string `json:"status"`
}

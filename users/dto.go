package users

import "time"

// UserProfileResponse represents the data returned for a user account.
// There is deliberately no password field of any kind here.
type UserProfileResponse struct {
	ID        int64     `json:"id" example:"1"`
	Username  string    `json:"username" example:"alice"`
	Email     string    `json:"email" example:"alice@example.com"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at" example:"2023-01-15T10:30:00Z"`
}

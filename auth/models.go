package auth

import "time"

// User represents an account as stored in the users table. The password
// hash is excluded from JSON serialization and must never reach a client.
type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	Roles          []string  `json:"roles"`
	CreatedAt      time.Time `json:"created_at"`
}

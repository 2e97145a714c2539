// Package users provides user profile plumbing around the authentication
// core: the current-user endpoint and the admin-only user listing.
package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/stadium-tickets-go/apperror"
)

// UserService provides read access to user accounts.
type UserService struct {
	db *pgxpool.Pool
}

// NewUserService creates a new UserService.
func NewUserService(db *pgxpool.Pool) *UserService {
	return &UserService{db: db}
}

// GetProfile retrieves a user's profile by ID. The password hash never
// leaves the database through this path.
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*UserProfileResponse, error) {
	var profile UserProfileResponse
	err := s.db.QueryRow(ctx,
		`SELECT u.id, u.username, u.email, u.created_at,
		        COALESCE(array_agg(r.name) FILTER (WHERE r.name IS NOT NULL), '{}')
		 FROM users u
		 LEFT JOIN user_roles ur ON ur.user_id = u.id
		 LEFT JOIN roles r ON r.id = ur.role_id
		 WHERE u.id = $1
		 GROUP BY u.id`,
		userID,
	).Scan(&profile.ID, &profile.Username, &profile.Email, &profile.CreatedAt, &profile.Roles)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user not found with id: %d", userID), nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user profile", err)
	}
	return &profile, nil
}

// GetAll lists every user account with their roles.
func (s *UserService) GetAll(ctx context.Context) ([]UserProfileResponse, error) {
	rows, err := s.db.Query(ctx,
		`SELECT u.id, u.username, u.email, u.created_at,
		        COALESCE(array_agg(r.name) FILTER (WHERE r.name IS NOT NULL), '{}')
		 FROM users u
		 LEFT JOIN user_roles ur ON ur.user_id = u.id
		 LEFT JOIN roles r ON r.id = ur.role_id
		 GROUP BY u.id
		 ORDER BY u.id`)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list users", err)
	}
	defer rows.Close()

	users := []UserProfileResponse{}
	for rows.Next() {
		var profile UserProfileResponse
		if err := rows.Scan(&profile.ID, &profile.Username, &profile.Email, &profile.CreatedAt, &profile.Roles); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan user", err)
		}
		users = append(users, profile)
	}
	return users, rows.Err()
}

// AuthService: credential verification, user registration and live
// identity resolution. It owns the SQL for the users, roles and
// user_roles tables; other packages only see Identity values and
// apperror kinds.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/stadium-tickets-go/apperror"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint
// violations.
const pgUniqueViolation = "23505"

// AuthService provides authentication-related services.
type AuthService struct {
	db    *pgxpool.Pool
	codec *TokenCodec
}

// NewAuthService creates a new AuthService.
func NewAuthService(db *pgxpool.Pool, codec *TokenCodec) *AuthService {
	return &AuthService{db: db, codec: codec}
}

// Register creates a new user with the default USER role. The password is
// hashed with bcrypt; duplicate usernames and emails surface as conflicts.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.NewInternalError("failed to hash password", err)
	}

	user := &User{
		Username:       req.Username,
		Email:          strings.ToLower(req.Email),
		HashedPassword: string(hashedPassword),
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to begin transaction", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = tx.QueryRow(ctx,
		`INSERT INTO users (username, email, password)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		user.Username, user.Email, user.HashedPassword,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			if strings.Contains(pgErr.ConstraintName, "username") {
				return nil, apperror.NewConflictError("username already exists", nil)
			}
			if strings.Contains(pgErr.ConstraintName, "email") {
				return nil, apperror.NewConflictError("email already exists", nil)
			}
		}
		return nil, apperror.NewDatabaseError("failed to create user", err)
	}

	// New accounts always start with the USER role; the role row itself is
	// guaranteed by the schema migration.
	_, err = tx.Exec(ctx,
		`INSERT INTO user_roles (user_id, role_id)
		 SELECT $1, id FROM roles WHERE name = $2`,
		user.ID, RoleUser,
	)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to assign default role", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperror.NewDatabaseError("failed to commit user registration", err)
	}

	user.Roles = []string{RoleUser}
	return user, nil
}

// Login authenticates a user by username and password and returns a
// signed token plus the caller's identity. Unknown usernames and wrong
// passwords produce the same generic failure.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, err := s.getUserByUsername(ctx, req.Username)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewAuthError("invalid username or password", nil)
		}
		log.Printf("database error during login for %q: %v", req.Username, err)
		return nil, apperror.NewDatabaseError("failed to look up user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		return nil, apperror.NewAuthError("invalid username or password", nil)
	}

	return s.issueFor(user)
}

// PasswordlessLogin authenticates by username alone. The caller still
// receives an ordinary token; only the password check is skipped.
func (s *AuthService) PasswordlessLogin(ctx context.Context, req PasswordlessLoginRequest) (*TokenResponse, error) {
	user, err := s.getUserByUsername(ctx, req.Username)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewAuthError("invalid username", nil)
		}
		return nil, apperror.NewDatabaseError("failed to look up user", err)
	}
	return s.issueFor(user)
}

// issueFor signs a token for the user and assembles the login response.
func (s *AuthService) issueFor(user *User) (*TokenResponse, error) {
	token, expiresAt, err := s.codec.Issue(user.Username)
	if err != nil {
		return nil, apperror.NewInternalError("failed to issue token", err)
	}
	return &TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt.Unix(),
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Roles:     user.Roles,
	}, nil
}

// Resolve implements IdentityResolver: it maps a verified token subject
// to the user's current identity, re-reading the role set from the
// database. Nothing is cached between requests.
func (s *AuthService) Resolve(ctx context.Context, username string) (*Identity, error) {
	user, err := s.getUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return &Identity{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Roles:    user.Roles,
	}, nil
}

// getUserByUsername loads a user and their role names in one query.
func (s *AuthService) getUserByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	err := s.db.QueryRow(ctx,
		`SELECT u.id, u.username, u.email, u.password, u.created_at,
		        COALESCE(array_agg(r.name) FILTER (WHERE r.name IS NOT NULL), '{}')
		 FROM users u
		 LEFT JOIN user_roles ur ON ur.user_id = u.id
		 LEFT JOIN roles r ON r.id = ur.role_id
		 WHERE u.username = $1
		 GROUP BY u.id`,
		username,
	).Scan(&user.ID, &user.Username, &user.Email, &user.HashedPassword, &user.CreatedAt, &user.Roles)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user with username '%s' not found", username), nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user by username", err)
	}
	return &user, nil
}

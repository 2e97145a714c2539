// Request and response payloads for the auth endpoints.
package auth

// RegisterRequest represents the registration request payload.
type RegisterRequest struct {
	Username string `json:"username" example:"newuser"`
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"strongpassword123"`
}

// LoginRequest represents the password login request payload.
type LoginRequest struct {
	Username string `json:"username" example:"alice"`
	Password string `json:"password" example:"strongpassword123"`
}

// PasswordlessLoginRequest carries only a username. The endpoint exists
// for demo and integration-test flows where password verification is
// intentionally skipped.
type PasswordlessLoginRequest struct {
	Username string `json:"username" example:"alice"`
}

// TokenResponse is returned on successful login: the signed token plus
// the identity and role set it was issued for.
type TokenResponse struct {
	Token     string   `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	TokenType string   `json:"token_type" example:"Bearer"`
	ExpiresAt int64    `json:"expires_at" example:"1735689600"`
	ID        int64    `json:"id" example:"1"`
	Username  string   `json:"username" example:"alice"`
	Email     string   `json:"email" example:"alice@example.com"`
	Roles     []string `json:"roles"`
}

// HTTP handlers for the auth endpoints, plus the shared writeJSON /
// WriteError response helpers used across the feature packages.
package auth

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/user/stadium-tickets-go/apperror"
)

// Handlers wraps the AuthService to provide HTTP handlers.
type Handlers struct {
	service *AuthService
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *AuthService) *Handlers {
	return &Handlers{service: service}
}

// HandleLogin godoc
// @Summary Authenticate user and issue a token
// @Description Authenticates a user with username and password, then returns a signed token together with the caller's identity and roles.
// @Tags Auth
// @Accept json
// @Produce json
// @Param loginBody body auth.LoginRequest true "User login credentials"
// @Success 200 {object} auth.TokenResponse "Login successful"
// @Failure 400 {object} apperror.ErrorResponse "Invalid request body"
// @Failure 401 {object} apperror.ErrorResponse "Invalid username or password"
// @Router /api/auth/login [post]
func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		if req.Username == "" || req.Password == "" {
			WriteError(w, r, apperror.NewBadRequestError("username and password are required", nil))
			return
		}

		resp, err := h.service.Login(r.Context(), req)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// HandlePasswordlessLogin godoc
// @Summary Passwordless authentication
// @Description Authenticates a user with username only and returns a signed token. Intended for demo and integration-test flows.
// @Tags Auth
// @Accept json
// @Produce json
// @Param loginBody body auth.PasswordlessLoginRequest true "Username"
// @Success 200 {object} auth.TokenResponse "Login successful"
// @Failure 401 {object} apperror.ErrorResponse "Unknown username"
// @Router /api/auth/login/passwordless [post]
func (h *Handlers) HandlePasswordlessLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PasswordlessLoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		if req.Username == "" {
			WriteError(w, r, apperror.NewBadRequestError("username is required", nil))
			return
		}

		resp, err := h.service.PasswordlessLogin(r.Context(), req)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// HandleRegister godoc
// @Summary User registration
// @Description Registers a new user with the default USER role.
// @Tags Auth
// @Accept json
// @Produce json
// @Param registerBody body auth.RegisterRequest true "User registration details"
// @Success 201 {object} auth.User "User created"
// @Failure 400 {object} apperror.ErrorResponse "Invalid input"
// @Failure 409 {object} apperror.ErrorResponse "Username or email already exists"
// @Router /api/auth/register [post]
func (h *Handlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		if req.Username == "" || req.Email == "" || req.Password == "" {
			WriteError(w, r, apperror.NewBadRequestError("username, email, and password are required", nil))
			return
		}

		user, err := h.service.Register(r.Context(), req)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, user)
	}
}

// writeJSON serializes data to JSON with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		}
	}
}

// WriteJSON is the exported variant used by the other feature packages.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, data)
}

// WriteError converts any error into a standardized JSON error response.
// Errors that are not apperror kinds are wrapped as internal errors so the
// client only ever sees a generic message; the detail is logged.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewInternalError("an unexpected error occurred", err)
	}
	if appErr.StatusCode() >= http.StatusInternalServerError {
		log.Printf("error processing %s %s: %v", r.Method, r.URL.Path, appErr)
	}
	writeJSON(w, appErr.StatusCode(), appErr.ToResponse())
}

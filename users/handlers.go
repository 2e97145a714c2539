package users

import (
	"net/http"

	"github.com/user/stadium-tickets-go/apperror"
	"github.com/user/stadium-tickets-go/auth"
)

// UserHandlers provides HTTP handlers for user endpoints.
type UserHandlers struct {
	service *UserService
}

// NewUserHandlers creates new UserHandlers.
func NewUserHandlers(service *UserService) *UserHandlers {
	return &UserHandlers{service: service}
}

// HandleGetCurrentUser godoc
// @Summary Get the current user's profile
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} users.UserProfileResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Router /api/users/me [get]
func (h *UserHandlers) HandleGetCurrentUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			// The route gate should have rejected this already.
			auth.WriteError(w, r, apperror.NewAuthError("authentication required", nil))
			return
		}

		profile, err := h.service.GetProfile(r.Context(), identity.UserID)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, profile)
	}
}

// HandleGetAllUsers godoc
// @Summary List all users
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} users.UserProfileResponse
// @Failure 403 {object} apperror.ErrorResponse
// @Router /api/users [get]
func (h *UserHandlers) HandleGetAllUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := h.service.GetAll(r.Context())
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, users)
	}
}

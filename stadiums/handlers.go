package stadiums

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/stadium-tickets-go/apperror"
	"github.com/user/stadium-tickets-go/auth"
)

// Handlers wraps the stadium Service to provide HTTP handlers.
type Handlers struct {
	service *Service
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.NewBadRequestError("invalid id parameter", err)
	}
	return id, nil
}

// HandleGetAll godoc
// @Summary List all stadiums
// @Tags Stadiums
// @Produce json
// @Success 200 {array} stadiums.Stadium
// @Router /api/stadiums [get]
func (h *Handlers) HandleGetAll() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := h.service.GetAll(r.Context())
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, list)
	}
}

// HandleGetByID godoc
// @Summary Get a stadium by ID
// @Tags Stadiums
// @Produce json
// @Param id path int true "Stadium ID"
// @Success 200 {object} stadiums.Stadium
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/stadiums/{id} [get]
func (h *Handlers) HandleGetByID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		st, err := h.service.GetByID(r.Context(), id)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, st)
	}
}

// HandleCreate godoc
// @Summary Create a stadium
// @Tags Stadiums
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param stadiumBody body stadiums.Stadium true "Stadium details"
// @Success 201 {object} stadiums.Stadium
// @Failure 400 {object} apperror.ErrorResponse
// @Router /api/stadiums [post]
func (h *Handlers) HandleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var st Stadium
		if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		created, err := h.service.Create(r.Context(), &st)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusCreated, created)
	}
}

// HandleUpdate godoc
// @Summary Update a stadium
// @Tags Stadiums
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Stadium ID"
// @Param stadiumBody body stadiums.Stadium true "New stadium fields"
// @Success 200 {object} stadiums.Stadium
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/stadiums/{id} [put]
func (h *Handlers) HandleUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		var st Stadium
		if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		updated, err := h.service.Update(r.Context(), id, &st)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, updated)
	}
}

// HandleDelete godoc
// @Summary Delete a stadium
// @Description Deletes a stadium together with its matches and their tickets.
// @Tags Stadiums
// @Security BearerAuth
// @Param id path int true "Stadium ID"
// @Success 204 "Stadium deleted"
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/stadiums/{id} [delete]
func (h *Handlers) HandleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		if err := h.service.Delete(r.Context(), id); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

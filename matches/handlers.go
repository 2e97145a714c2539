package matches

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/stadium-tickets-go/apperror"
	"github.com/user/stadium-tickets-go/auth"
)

// Handlers wraps the match Service to provide HTTP handlers.
type Handlers struct {
	service *Service
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.NewBadRequestError("invalid "+name+" parameter", err)
	}
	return id, nil
}

// HandleGetAll godoc
// @Summary List all matches
// @Tags Matches
// @Produce json
// @Success 200 {array} matches.Match
// @Router /api/matches [get]
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
// @Summary Get a match by ID
// @Tags Matches
// @Produce json
// @Param id path int true "Match ID"
// @Success 200 {object} matches.Match
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/matches/{id} [get]
func (h *Handlers) HandleGetByID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		m, err := h.service.GetByID(r.Context(), id)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, m)
	}
}

// HandleByStadium godoc
// @Summary List matches at a stadium
// @Tags Matches
// @Produce json
// @Param stadiumID path int true "Stadium ID"
// @Success 200 {array} matches.Match
// @Router /api/matches/stadium/{stadiumID} [get]
func (h *Handlers) HandleByStadium() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stadiumID, err := idParam(r, "stadiumID")
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		list, err := h.service.ByStadium(r.Context(), stadiumID)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, list)
	}
}

// HandleCreate godoc
// @Summary Create a match
// @Tags Matches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param matchBody body matches.Match true "Match details"
// @Success 201 {object} matches.Match
// @Failure 400 {object} apperror.ErrorResponse "Stadium is required"
// @Router /api/matches [post]
func (h *Handlers) HandleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var m Match
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		created, err := h.service.Create(r.Context(), &m)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusCreated, created)
	}
}

// HandleUpdate godoc
// @Summary Update a match
// @Tags Matches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Match ID"
// @Param matchBody body matches.Match true "New match fields"
// @Success 200 {object} matches.Match
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/matches/{id} [put]
func (h *Handlers) HandleUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		var m Match
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		updated, err := h.service.Update(r.Context(), id, &m)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, updated)
	}
}

// HandleDelete godoc
// @Summary Delete a match
// @Description Deletes a match together with its tickets.
// @Tags Matches
// @Security BearerAuth
// @Param id path int true "Match ID"
// @Success 204 "Match deleted"
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/matches/{id} [delete]
func (h *Handlers) HandleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
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

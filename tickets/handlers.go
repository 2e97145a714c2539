// HTTP handlers for the ticket endpoints. Authorization is applied by the
// router: reads are public, purchase and cancel require authentication,
// inventory management requires the ADMIN role.
package tickets

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/stadium-tickets-go/apperror"
	"github.com/user/stadium-tickets-go/auth"
)

// Handlers wraps the booking Service to provide HTTP handlers.
type Handlers struct {
	service Service
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service Service) *Handlers {
	return &Handlers{service: service}
}

// idParam parses a numeric URL parameter.
func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.NewBadRequestError("invalid "+name+" parameter", err)
	}
	return id, nil
}

// HandleGetAll godoc
// @Summary List all tickets
// @Tags Tickets
// @Produce json
// @Success 200 {array} tickets.Ticket
// @Router /api/tickets [get]
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
// @Summary Get a ticket by ID
// @Tags Tickets
// @Produce json
// @Param id path int true "Ticket ID"
// @Success 200 {object} tickets.Ticket
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/tickets/{id} [get]
func (h *Handlers) HandleGetByID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		t, err := h.service.GetByID(r.Context(), id)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, t)
	}
}

// HandleByMatch godoc
// @Summary List tickets for a match
// @Description Lists a match's tickets, optionally filtered by ?status=FREE|SOLD.
// @Tags Tickets
// @Produce json
// @Param matchID path int true "Match ID"
// @Param status query string false "Filter by status"
// @Success 200 {array} tickets.Ticket
// @Router /api/tickets/match/{matchID} [get]
func (h *Handlers) HandleByMatch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID, err := idParam(r, "matchID")
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		var list []Ticket
		if status := r.URL.Query().Get("status"); status != "" {
			list, err = h.service.ByMatchAndStatus(r.Context(), matchID, status)
		} else {
			list, err = h.service.ByMatch(r.Context(), matchID)
		}
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, list)
	}
}

// HandleByStatus godoc
// @Summary List tickets by status
// @Tags Tickets
// @Produce json
// @Param status path string true "FREE or SOLD"
// @Success 200 {array} tickets.Ticket
// @Router /api/tickets/status/{status} [get]
func (h *Handlers) HandleByStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := h.service.ByStatus(r.Context(), chi.URLParam(r, "status"))
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, list)
	}
}

// HandleCountByMatch godoc
// @Summary Count a match's tickets in a status
// @Tags Tickets
// @Produce json
// @Param matchID path int true "Match ID"
// @Param status query string true "FREE or SOLD"
// @Success 200 {object} tickets.CountResponse
// @Router /api/tickets/match/{matchID}/count [get]
func (h *Handlers) HandleCountByMatch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID, err := idParam(r, "matchID")
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		status := r.URL.Query().Get("status")
		if status == "" {
			auth.WriteError(w, r, apperror.NewBadRequestError("status query parameter is required", nil))
			return
		}
		count, err := h.service.CountByMatchAndStatus(r.Context(), matchID, status)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, CountResponse{Count: count})
	}
}

// HandleBySeat godoc
// @Summary Look up the ticket for a seat
// @Tags Tickets
// @Produce json
// @Param matchID path int true "Match ID"
// @Param row query string true "Seat row"
// @Param number query string true "Seat number"
// @Success 200 {object} tickets.Ticket
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/tickets/match/{matchID}/seat [get]
func (h *Handlers) HandleBySeat() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID, err := idParam(r, "matchID")
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		row := r.URL.Query().Get("row")
		number := r.URL.Query().Get("number")
		if row == "" || number == "" {
			auth.WriteError(w, r, apperror.NewBadRequestError("row and number query parameters are required", nil))
			return
		}
		t, err := h.service.BySeat(r.Context(), matchID, row, number)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, t)
	}
}

// HandlePurchase godoc
// @Summary Purchase a ticket
// @Description Transitions a FREE ticket to SOLD. A ticket that is already sold cannot be purchased again until it is canceled.
// @Tags Tickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param purchaseBody body tickets.PurchaseRequest true "Ticket to purchase"
// @Success 200 {object} tickets.Ticket
// @Failure 400 {object} apperror.ErrorResponse "Ticket is not available for purchase"
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/tickets [post]
func (h *Handlers) HandlePurchase() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PurchaseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		if req.TicketID == 0 {
			auth.WriteError(w, r, apperror.NewBadRequestError("ticket_id is required", nil))
			return
		}

		t, err := h.service.Purchase(r.Context(), req.TicketID)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, t)
	}
}

// HandleCancel godoc
// @Summary Cancel a purchased ticket
// @Description Transitions a SOLD ticket back to FREE.
// @Tags Tickets
// @Security BearerAuth
// @Param id path int true "Ticket ID"
// @Success 204 "Ticket canceled"
// @Failure 400 {object} apperror.ErrorResponse "Ticket is not sold"
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/tickets/{id} [delete]
func (h *Handlers) HandleCancel() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		if _, err := h.service.Cancel(r.Context(), id); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleRegisterSeat godoc
// @Summary Register a seat for a match
// @Description Creates ticket inventory. The new ticket always starts FREE regardless of any status in the payload.
// @Tags Tickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param matchID path int true "Match ID"
// @Param seatBody body tickets.RegisterSeatRequest true "Seat details"
// @Success 201 {object} tickets.Ticket
// @Failure 400 {object} apperror.ErrorResponse "Seat already exists for this match"
// @Failure 404 {object} apperror.ErrorResponse "Match not found"
// @Router /api/matches/{matchID}/tickets [post]
func (h *Handlers) HandleRegisterSeat() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID, err := idParam(r, "matchID")
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		var req RegisterSeatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		t, err := h.service.RegisterSeat(r.Context(), matchID, req.SeatRow, req.SeatNumber, req.Price)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusCreated, t)
	}
}

// HandleUpdateSeat godoc
// @Summary Update a ticket (administrative)
// @Description Edits seat coordinates, price and status directly. Moving to a seat held by a different ticket is rejected.
// @Tags Tickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Ticket ID"
// @Param seatBody body tickets.UpdateSeatRequest true "New ticket fields"
// @Success 200 {object} tickets.Ticket
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/tickets/{id} [put]
func (h *Handlers) HandleUpdateSeat() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		var req UpdateSeatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		t, err := h.service.UpdateSeat(r.Context(), id, req.SeatRow, req.SeatNumber, req.Price, req.Status)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, t)
	}
}

// HandleDelete godoc
// @Summary Delete a ticket permanently
// @Tags Tickets
// @Security BearerAuth
// @Param id path int true "Ticket ID"
// @Success 204 "Ticket deleted"
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/tickets/{id}/permanent [delete]
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

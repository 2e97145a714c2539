// Request payloads for the ticket endpoints.
package tickets

import "github.com/shopspring/decimal"

// PurchaseRequest identifies the ticket to purchase.
type PurchaseRequest struct {
	TicketID int64 `json:"ticket_id" example:"1"`
}

// RegisterSeatRequest creates ticket inventory for a match. A supplied
// status is accepted but ignored: registered seats always start FREE.
type RegisterSeatRequest struct {
	SeatRow    string          `json:"seat_row" example:"A"`
	SeatNumber string          `json:"seat_number" example:"12"`
	Price      decimal.Decimal `json:"price" example:"50.00"`
	Status     string          `json:"status,omitempty" example:"FREE"`
}

// UpdateSeatRequest is the administrative edit payload. Unlike purchase
// and cancel, it may set the status directly.
type UpdateSeatRequest struct {
	SeatRow    string          `json:"seat_row" example:"A"`
	SeatNumber string          `json:"seat_number" example:"12"`
	Price      decimal.Decimal `json:"price" example:"50.00"`
	Status     string          `json:"status" example:"FREE"`
}

// CountResponse wraps a ticket count.
type CountResponse struct {
	Count int64 `json:"count" example:"42"`
}

// Package tickets implements the booking engine: seat registration,
// purchase and cancellation under a one-ticket-per-seat-per-match
// uniqueness constraint and a FREE⇄SOLD status state machine.
//
// Booking state lives exclusively in the persistent store, reached
// through the narrow Store interface below. The store is the sole
// arbiter of consistency: status transitions and seat registration are
// made atomic at the store level (transactions, row locks, the unique
// seat index), never by in-process locking, because multiple instances
// of this service may run against the same database.
package tickets

import (
	"github.com/shopspring/decimal"
)

// Ticket statuses. There are no others: a ticket is either on sale or
// sold, and moves between the two only via purchase and cancel (or the
// administrative update path).
const (
	StatusFree = "FREE"
	StatusSold = "SOLD"
)

// Ticket represents one seat for one match.
type Ticket struct {
	ID         int64           `json:"id"`
	MatchID    int64           `json:"match_id"`
	SeatRow    string          `json:"seat_row"`
	SeatNumber string          `json:"seat_number"`
	Price      decimal.Decimal `json:"price"`
	Status     string          `json:"status"`
}

// SeatKey uniquely addresses one sellable unit of a match.
type SeatKey struct {
	MatchID    int64
	SeatRow    string
	SeatNumber string
}

// Key returns the ticket's seat key.
func (t *Ticket) Key() SeatKey {
	return SeatKey{MatchID: t.MatchID, SeatRow: t.SeatRow, SeatNumber: t.SeatNumber}
}

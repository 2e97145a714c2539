package tickets

import (
	"context"
	"errors"
)

// Sentinel errors reported by Store implementations. The service layer
// translates them into the application error taxonomy; they never cross
// the HTTP boundary directly.
var (
	// ErrTicketNotFound indicates the referenced ticket does not exist.
	ErrTicketNotFound = errors.New("ticket not found")
	// ErrMatchNotFound indicates the referenced match does not exist.
	ErrMatchNotFound = errors.New("match not found")
	// ErrSeatTaken indicates another ticket already occupies the seat key.
	ErrSeatTaken = errors.New("seat already exists for this match")
	// ErrStatusMismatch indicates a transition was attempted from a status
	// the ticket is not currently in.
	ErrStatusMismatch = errors.New("ticket is not in the required status")
)

// Store is the persistence collaborator for the booking engine. Each
// method is atomic with respect to the records it touches:
//
//   - Insert and Update fail with ErrSeatTaken when the (match, seat row,
//     seat number) key is already held by a different ticket, evaluated
//     atomically against concurrent writers.
//   - Transition performs the read-check-write of a status change under
//     isolation that prevents two concurrent transitions from both
//     observing the old status and both writing the new one.
//
// Query methods are pure reads reflecting the latest committed state.
type Store interface {
	Insert(ctx context.Context, t *Ticket) error
	GetByID(ctx context.Context, id int64) (*Ticket, error)
	Update(ctx context.Context, t *Ticket) error
	Delete(ctx context.Context, id int64) error

	// Transition atomically moves the ticket from one status to another
	// and returns the updated ticket. It fails with ErrStatusMismatch when
	// the ticket is not currently in the from status.
	Transition(ctx context.Context, id int64, from, to string) (*Ticket, error)

	GetAll(ctx context.Context) ([]Ticket, error)
	ByMatch(ctx context.Context, matchID int64) ([]Ticket, error)
	ByStatus(ctx context.Context, status string) ([]Ticket, error)
	ByMatchAndStatus(ctx context.Context, matchID int64, status string) ([]Ticket, error)
	CountByMatchAndStatus(ctx context.Context, matchID int64, status string) (int64, error)
	BySeat(ctx context.Context, key SeatKey) (*Ticket, error)
}

package tickets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/user/stadium-tickets-go/apperror"
)

// Seat coordinate limits matching the ticket table's column widths.
const maxSeatLen = 5

// Service defines the booking engine operations. All failures are
// reported as apperror kinds; store sentinels never escape this layer.
type Service interface {
	RegisterSeat(ctx context.Context, matchID int64, seatRow, seatNumber string, price decimal.Decimal) (*Ticket, error)
	Purchase(ctx context.Context, ticketID int64) (*Ticket, error)
	Cancel(ctx context.Context, ticketID int64) (*Ticket, error)
	UpdateSeat(ctx context.Context, ticketID int64, seatRow, seatNumber string, price decimal.Decimal, status string) (*Ticket, error)
	Delete(ctx context.Context, ticketID int64) error

	GetAll(ctx context.Context) ([]Ticket, error)
	GetByID(ctx context.Context, ticketID int64) (*Ticket, error)
	ByMatch(ctx context.Context, matchID int64) ([]Ticket, error)
	ByStatus(ctx context.Context, status string) ([]Ticket, error)
	ByMatchAndStatus(ctx context.Context, matchID int64, status string) ([]Ticket, error)
	CountByMatchAndStatus(ctx context.Context, matchID int64, status string) (int64, error)
	BySeat(ctx context.Context, matchID int64, seatRow, seatNumber string) (*Ticket, error)
}

type serviceImpl struct {
	store Store
}

// NewService creates the booking engine over a Store.
func NewService(store Store) Service {
	return &serviceImpl{store: store}
}

// validateSeat checks seat coordinates against the persisted layout.
func validateSeat(seatRow, seatNumber string) error {
	if seatRow == "" || seatNumber == "" {
		return apperror.NewValidationError("seat row and seat number are required", nil)
	}
	// VARCHAR(5) limits characters, not bytes.
	if utf8.RuneCountInString(seatRow) > maxSeatLen || utf8.RuneCountInString(seatNumber) > maxSeatLen {
		return apperror.NewValidationError(fmt.Sprintf("seat row and seat number must be at most %d characters", maxSeatLen), nil)
	}
	return nil
}

// RegisterSeat creates a new ticket for a seat. Whatever status the
// caller supplied upstream is irrelevant: new inventory always starts
// FREE. Duplicate seat keys and unknown matches fail; the store evaluates
// the uniqueness check atomically, so concurrent registrations of the
// same seat produce exactly one winner.
func (s *serviceImpl) RegisterSeat(ctx context.Context, matchID int64, seatRow, seatNumber string, price decimal.Decimal) (*Ticket, error) {
	if matchID == 0 {
		return nil, apperror.NewValidationError("match is required for a ticket", nil)
	}
	if err := validateSeat(seatRow, seatNumber); err != nil {
		return nil, err
	}
	if price.IsNegative() {
		return nil, apperror.NewValidationError("price must not be negative", nil)
	}

	t := &Ticket{
		MatchID:    matchID,
		SeatRow:    seatRow,
		SeatNumber: seatNumber,
		Price:      price,
		Status:     StatusFree,
	}

	if err := s.store.Insert(ctx, t); err != nil {
		switch {
		case errors.Is(err, ErrSeatTaken):
			return nil, apperror.NewValidationError("seat already exists for this match", nil)
		case errors.Is(err, ErrMatchNotFound):
			return nil, apperror.NewNotFoundError(fmt.Sprintf("match not found with id: %d", matchID), nil)
		default:
			return nil, apperror.NewDatabaseError("failed to register seat", err)
		}
	}
	return t, nil
}

// Purchase transitions a ticket FREE→SOLD. Purchasing a ticket that is
// not FREE fails: a seat is a scarce resource and a second purchase must
// never silently succeed.
func (s *serviceImpl) Purchase(ctx context.Context, ticketID int64) (*Ticket, error) {
	t, err := s.store.Transition(ctx, ticketID, StatusFree, StatusSold)
	if err != nil {
		switch {
		case errors.Is(err, ErrTicketNotFound):
			return nil, apperror.NewNotFoundError(fmt.Sprintf("ticket not found with id: %d", ticketID), nil)
		case errors.Is(err, ErrStatusMismatch):
			return nil, apperror.NewStateError("ticket is not available for purchase", nil)
		default:
			return nil, apperror.NewDatabaseError("failed to purchase ticket", err)
		}
	}
	return t, nil
}

// Cancel transitions a ticket SOLD→FREE, releasing the seat back to
// inventory.
func (s *serviceImpl) Cancel(ctx context.Context, ticketID int64) (*Ticket, error) {
	t, err := s.store.Transition(ctx, ticketID, StatusSold, StatusFree)
	if err != nil {
		switch {
		case errors.Is(err, ErrTicketNotFound):
			return nil, apperror.NewNotFoundError(fmt.Sprintf("ticket not found with id: %d", ticketID), nil)
		case errors.Is(err, ErrStatusMismatch):
			return nil, apperror.NewStateError("ticket is not sold, cannot be canceled", nil)
		default:
			return nil, apperror.NewDatabaseError("failed to cancel ticket", err)
		}
	}
	return t, nil
}

// UpdateSeat is the administrative edit path: it may move a ticket to
// different seat coordinates (only if the target seat is not occupied by
// a different ticket) and may overwrite the status directly, bypassing
// the purchase/cancel transitions.
func (s *serviceImpl) UpdateSeat(ctx context.Context, ticketID int64, seatRow, seatNumber string, price decimal.Decimal, status string) (*Ticket, error) {
	if err := validateSeat(seatRow, seatNumber); err != nil {
		return nil, err
	}
	status = strings.ToUpper(status)
	if status != StatusFree && status != StatusSold {
		return nil, apperror.NewValidationError(fmt.Sprintf("status must be %s or %s", StatusFree, StatusSold), nil)
	}

	t, err := s.store.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, ErrTicketNotFound) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("ticket not found with id: %d", ticketID), nil)
		}
		return nil, apperror.NewDatabaseError("failed to load ticket", err)
	}

	t.SeatRow = seatRow
	t.SeatNumber = seatNumber
	t.Price = price
	t.Status = status

	if err := s.store.Update(ctx, t); err != nil {
		switch {
		case errors.Is(err, ErrSeatTaken):
			return nil, apperror.NewValidationError("seat already exists for this match", nil)
		case errors.Is(err, ErrTicketNotFound):
			return nil, apperror.NewNotFoundError(fmt.Sprintf("ticket not found with id: %d", ticketID), nil)
		default:
			return nil, apperror.NewDatabaseError("failed to update ticket", err)
		}
	}
	return t, nil
}

// Delete removes a ticket entirely.
func (s *serviceImpl) Delete(ctx context.Context, ticketID int64) error {
	if err := s.store.Delete(ctx, ticketID); err != nil {
		if errors.Is(err, ErrTicketNotFound) {
			return apperror.NewNotFoundError(fmt.Sprintf("ticket not found with id: %d", ticketID), nil)
		}
		return apperror.NewDatabaseError("failed to delete ticket", err)
	}
	return nil
}

func (s *serviceImpl) GetAll(ctx context.Context) ([]Ticket, error) {
	tickets, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list tickets", err)
	}
	return tickets, nil
}

func (s *serviceImpl) GetByID(ctx context.Context, ticketID int64) (*Ticket, error) {
	t, err := s.store.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, ErrTicketNotFound) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("ticket not found with id: %d", ticketID), nil)
		}
		return nil, apperror.NewDatabaseError("failed to load ticket", err)
	}
	return t, nil
}

func (s *serviceImpl) ByMatch(ctx context.Context, matchID int64) ([]Ticket, error) {
	tickets, err := s.store.ByMatch(ctx, matchID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list tickets by match", err)
	}
	return tickets, nil
}

func (s *serviceImpl) ByStatus(ctx context.Context, status string) ([]Ticket, error) {
	tickets, err := s.store.ByStatus(ctx, strings.ToUpper(status))
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list tickets by status", err)
	}
	return tickets, nil
}

func (s *serviceImpl) ByMatchAndStatus(ctx context.Context, matchID int64, status string) ([]Ticket, error) {
	tickets, err := s.store.ByMatchAndStatus(ctx, matchID, strings.ToUpper(status))
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list tickets by match and status", err)
	}
	return tickets, nil
}

func (s *serviceImpl) CountByMatchAndStatus(ctx context.Context, matchID int64, status string) (int64, error) {
	count, err := s.store.CountByMatchAndStatus(ctx, matchID, strings.ToUpper(status))
	if err != nil {
		return 0, apperror.NewDatabaseError("failed to count tickets", err)
	}
	return count, nil
}

func (s *serviceImpl) BySeat(ctx context.Context, matchID int64, seatRow, seatNumber string) (*Ticket, error) {
	t, err := s.store.BySeat(ctx, SeatKey{MatchID: matchID, SeatRow: seatRow, SeatNumber: seatNumber})
	if err != nil {
		if errors.Is(err, ErrTicketNotFound) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("no ticket for match %d seat %s/%s", matchID, seatRow, seatNumber), nil)
		}
		return nil, apperror.NewDatabaseError("failed to look up seat", err)
	}
	return t, nil
}

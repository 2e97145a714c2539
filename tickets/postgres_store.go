package tickets

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgreSQL error codes relevant to booking writes.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// PostgresStore is the production Store backed by the ticket table. Seat
// uniqueness is enforced by the ticket_match_seat_key constraint, so a
// duplicate registration race leaves exactly one winner regardless of how
// many instances write concurrently.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a PostgresStore.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

const ticketColumns = "id, match_id, seat_row, seat_number, price, status"

func scanTicket(row pgx.Row) (*Ticket, error) {
	var t Ticket
	err := row.Scan(&t.ID, &t.MatchID, &t.SeatRow, &t.SeatNumber, &t.Price, &t.Status)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func collectTickets(rows pgx.Rows) ([]Ticket, error) {
	defer rows.Close()
	tickets := []Ticket{}
	for rows.Next() {
		var t Ticket
		if err := rows.Scan(&t.ID, &t.MatchID, &t.SeatRow, &t.SeatNumber, &t.Price, &t.Status); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

// mapWriteError translates constraint violations into store sentinels.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return ErrSeatTaken
		case pgForeignKeyViolation:
			return ErrMatchNotFound
		}
	}
	return err
}

// Insert writes a new ticket row. The unique seat index arbitrates
// concurrent registrations of the same key; the match foreign key rejects
// unknown matches.
func (s *PostgresStore) Insert(ctx context.Context, t *Ticket) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO ticket (match_id, seat_row, seat_number, price, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		t.MatchID, t.SeatRow, t.SeatNumber, t.Price, t.Status,
	).Scan(&t.ID)
	if err != nil {
		return mapWriteError(err)
	}
	return nil
}

// GetByID fetches one ticket.
func (s *PostgresStore) GetByID(ctx context.Context, id int64) (*Ticket, error) {
	t, err := scanTicket(s.db.QueryRow(ctx,
		`SELECT `+ticketColumns+` FROM ticket WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return t, nil
}

// Update overwrites all mutable ticket fields. Seat moves onto an
// occupied key fail through the same unique constraint as Insert.
func (s *PostgresStore) Update(ctx context.Context, t *Ticket) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE ticket
		 SET seat_row = $1, seat_number = $2, price = $3, status = $4
		 WHERE id = $5`,
		t.SeatRow, t.SeatNumber, t.Price, t.Status, t.ID,
	)
	if err != nil {
		return mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTicketNotFound
	}
	return nil
}

// Delete removes a ticket row.
func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM ticket WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTicketNotFound
	}
	return nil
}

// Transition performs the status change inside a transaction, locking the
// row first so two concurrent transitions cannot both read the old status
// and both write the new one. A failed precondition rolls the whole
// transaction back, leaving no partial state.
func (s *PostgresStore) Transition(ctx context.Context, id int64, from, to string) (*Ticket, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	t, err := scanTicket(tx.QueryRow(ctx,
		`SELECT `+ticketColumns+` FROM ticket WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}

	if t.Status != from {
		return nil, ErrStatusMismatch
	}

	if _, err := tx.Exec(ctx, `UPDATE ticket SET status = $1 WHERE id = $2`, to, id); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	t.Status = to
	return t, nil
}

// GetAll returns every ticket.
func (s *PostgresStore) GetAll(ctx context.Context) ([]Ticket, error) {
	rows, err := s.db.Query(ctx, `SELECT `+ticketColumns+` FROM ticket ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return collectTickets(rows)
}

// ByMatch returns all tickets for a match.
func (s *PostgresStore) ByMatch(ctx context.Context, matchID int64) ([]Ticket, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+ticketColumns+` FROM ticket WHERE match_id = $1 ORDER BY id`, matchID)
	if err != nil {
		return nil, err
	}
	return collectTickets(rows)
}

// ByStatus returns all tickets in a status.
func (s *PostgresStore) ByStatus(ctx context.Context, status string) ([]Ticket, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+ticketColumns+` FROM ticket WHERE status = $1 ORDER BY id`, status)
	if err != nil {
		return nil, err
	}
	return collectTickets(rows)
}

// ByMatchAndStatus returns a match's tickets in a status.
func (s *PostgresStore) ByMatchAndStatus(ctx context.Context, matchID int64, status string) ([]Ticket, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+ticketColumns+` FROM ticket WHERE match_id = $1 AND status = $2 ORDER BY id`,
		matchID, status)
	if err != nil {
		return nil, err
	}
	return collectTickets(rows)
}

// CountByMatchAndStatus counts a match's tickets in a status.
func (s *PostgresStore) CountByMatchAndStatus(ctx context.Context, matchID int64, status string) (int64, error) {
	var count int64
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM ticket WHERE match_id = $1 AND status = $2`,
		matchID, status,
	).Scan(&count)
	return count, err
}

// BySeat looks up the ticket occupying a seat key, if any.
func (s *PostgresStore) BySeat(ctx context.Context, key SeatKey) (*Ticket, error) {
	t, err := scanTicket(s.db.QueryRow(ctx,
		`SELECT `+ticketColumns+` FROM ticket
		 WHERE match_id = $1 AND seat_row = $2 AND seat_number = $3`,
		key.MatchID, key.SeatRow, key.SeatNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return t, nil
}

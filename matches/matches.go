// Package matches provides CRUD for scheduled fixtures. A match belongs
// to a stadium and owns its tickets: deleting a match removes its tickets
// through the schema's cascade rule.
package matches

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/stadium-tickets-go/apperror"
)

const pgForeignKeyViolation = "23503"

// Match is a scheduled fixture at a stadium.
type Match struct {
	ID        int64     `json:"id"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	MatchDate time.Time `json:"match_date"`
	StadiumID int64     `json:"stadium_id"`
}

// Service provides match CRUD over the database pool.
type Service struct {
	db *pgxpool.Pool
}

// NewService creates a match Service.
func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

const matchColumns = "id, home_team, away_team, match_date, stadium_id"

func collectMatches(rows pgx.Rows) ([]Match, error) {
	defer rows.Close()
	matches := []Match{}
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.ID, &m.HomeTeam, &m.AwayTeam, &m.MatchDate, &m.StadiumID); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan match", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// GetAll returns every match.
func (s *Service) GetAll(ctx context.Context) ([]Match, error) {
	rows, err := s.db.Query(ctx, `SELECT `+matchColumns+` FROM match ORDER BY match_date`)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list matches", err)
	}
	return collectMatches(rows)
}

// GetByID returns one match.
func (s *Service) GetByID(ctx context.Context, id int64) (*Match, error) {
	var m Match
	err := s.db.QueryRow(ctx,
		`SELECT `+matchColumns+` FROM match WHERE id = $1`, id,
	).Scan(&m.ID, &m.HomeTeam, &m.AwayTeam, &m.MatchDate, &m.StadiumID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("match not found with id: %d", id), nil)
		}
		return nil, apperror.NewDatabaseError("failed to get match", err)
	}
	return &m, nil
}

// ByStadium returns all matches scheduled at a stadium.
func (s *Service) ByStadium(ctx context.Context, stadiumID int64) ([]Match, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+matchColumns+` FROM match WHERE stadium_id = $1 ORDER BY match_date`, stadiumID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list matches by stadium", err)
	}
	return collectMatches(rows)
}

// Create inserts a new match. The stadium reference must exist.
func (s *Service) Create(ctx context.Context, m *Match) (*Match, error) {
	if m.StadiumID == 0 {
		return nil, apperror.NewValidationError("stadium is required for a match", nil)
	}
	if m.HomeTeam == "" || m.AwayTeam == "" {
		return nil, apperror.NewValidationError("home team and away team are required", nil)
	}
	if m.MatchDate.IsZero() {
		return nil, apperror.NewValidationError("match date is required", nil)
	}

	err := s.db.QueryRow(ctx,
		`INSERT INTO match (home_team, away_team, match_date, stadium_id)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		m.HomeTeam, m.AwayTeam, m.MatchDate, m.StadiumID,
	).Scan(&m.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("stadium not found with id: %d", m.StadiumID), nil)
		}
		return nil, apperror.NewDatabaseError("failed to create match", err)
	}
	return m, nil
}

// applyDefaults fills unset update fields from the existing row, so a
// partial update cannot silently zero the stadium reference or the date.
func applyDefaults(existing, m *Match) {
	if m.StadiumID == 0 {
		m.StadiumID = existing.StadiumID
	}
	if m.MatchDate.IsZero() {
		m.MatchDate = existing.MatchDate
	}
}

// Update overwrites a match's fields.
func (s *Service) Update(ctx context.Context, id int64, m *Match) (*Match, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	applyDefaults(existing, m)
	if m.HomeTeam == "" || m.AwayTeam == "" {
		return nil, apperror.NewValidationError("home team and away team are required", nil)
	}

	_, err = s.db.Exec(ctx,
		`UPDATE match SET home_team = $1, away_team = $2, match_date = $3, stadium_id = $4 WHERE id = $5`,
		m.HomeTeam, m.AwayTeam, m.MatchDate, m.StadiumID, id,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("stadium not found with id: %d", m.StadiumID), nil)
		}
		return nil, apperror.NewDatabaseError("failed to update match", err)
	}
	m.ID = id
	return m, nil
}

// Delete removes a match and, through the cascade, its tickets.
func (s *Service) Delete(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM match WHERE id = $1`, id)
	if err != nil {
		return apperror.NewDatabaseError("failed to delete match", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("match not found with id: %d", id), nil)
	}
	return nil
}

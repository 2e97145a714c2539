// Package stadiums provides CRUD for stadiums. It is plumbing around the
// booking core: a stadium exists so that matches can reference it, and
// deleting one cascades through its matches to their tickets.
package stadiums

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/stadium-tickets-go/apperror"
)

// Stadium is a venue where matches are scheduled.
type Stadium struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	City     string `json:"city"`
	Capacity int    `json:"capacity"`
}

// Service provides stadium CRUD over the database pool.
type Service struct {
	db *pgxpool.Pool
}

// NewService creates a stadium Service.
func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

// GetAll returns every stadium.
func (s *Service) GetAll(ctx context.Context) ([]Stadium, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name, city, capacity FROM stadium ORDER BY id`)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list stadiums", err)
	}
	defer rows.Close()

	stadiums := []Stadium{}
	for rows.Next() {
		var st Stadium
		if err := rows.Scan(&st.ID, &st.Name, &st.City, &st.Capacity); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan stadium", err)
		}
		stadiums = append(stadiums, st)
	}
	return stadiums, rows.Err()
}

// GetByID returns one stadium.
func (s *Service) GetByID(ctx context.Context, id int64) (*Stadium, error) {
	var st Stadium
	err := s.db.QueryRow(ctx,
		`SELECT id, name, city, capacity FROM stadium WHERE id = $1`, id,
	).Scan(&st.ID, &st.Name, &st.City, &st.Capacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("stadium not found with id: %d", id), nil)
		}
		return nil, apperror.NewDatabaseError("failed to get stadium", err)
	}
	return &st, nil
}

// Create inserts a new stadium.
func (s *Service) Create(ctx context.Context, st *Stadium) (*Stadium, error) {
	if st.Name == "" || st.City == "" {
		return nil, apperror.NewValidationError("name and city are required", nil)
	}
	if st.Capacity <= 0 {
		return nil, apperror.NewValidationError("capacity must be positive", nil)
	}

	err := s.db.QueryRow(ctx,
		`INSERT INTO stadium (name, city, capacity) VALUES ($1, $2, $3) RETURNING id`,
		st.Name, st.City, st.Capacity,
	).Scan(&st.ID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to create stadium", err)
	}
	return st, nil
}

// Update overwrites a stadium's fields.
func (s *Service) Update(ctx context.Context, id int64, st *Stadium) (*Stadium, error) {
	if st.Name == "" || st.City == "" {
		return nil, apperror.NewValidationError("name and city are required", nil)
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE stadium SET name = $1, city = $2, capacity = $3 WHERE id = $4`,
		st.Name, st.City, st.Capacity, id,
	)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to update stadium", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperror.NewNotFoundError(fmt.Sprintf("stadium not found with id: %d", id), nil)
	}
	st.ID = id
	return st, nil
}

// Delete removes a stadium. Its matches, and their tickets, go with it
// via the schema's cascade rules.
func (s *Service) Delete(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM stadium WHERE id = $1`, id)
	if err != nil {
		return apperror.NewDatabaseError("failed to delete stadium", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("stadium not found with id: %d", id), nil)
	}
	return nil
}

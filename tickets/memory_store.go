package tickets

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store used by the test suite. It honors the
// same error contract and atomicity guarantees as PostgresStore, with a
// single mutex standing in for the database's transaction isolation.
type MemoryStore struct {
	mu      sync.Mutex
	nextID  int64
	byID    map[int64]*Ticket
	bySeat  map[SeatKey]int64
	matches map[int64]bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:  1,
		byID:    make(map[int64]*Ticket),
		bySeat:  make(map[SeatKey]int64),
		matches: make(map[int64]bool),
	}
}

// AddMatch registers a known match ID, standing in for the foreign key a
// real database would enforce.
func (s *MemoryStore) AddMatch(matchID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[matchID] = true
}

func (s *MemoryStore) Insert(ctx context.Context, t *Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.matches[t.MatchID] {
		return ErrMatchNotFound
	}
	if _, taken := s.bySeat[t.Key()]; taken {
		return ErrSeatTaken
	}

	t.ID = s.nextID
	s.nextID++
	copied := *t
	s.byID[t.ID] = &copied
	s.bySeat[t.Key()] = t.ID
	return nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id int64) (*Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.byID[id]
	if !ok {
		return nil, ErrTicketNotFound
	}
	copied := *t
	return &copied, nil
}

func (s *MemoryStore) Update(ctx context.Context, t *Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.byID[t.ID]
	if !ok {
		return ErrTicketNotFound
	}
	if holder, taken := s.bySeat[t.Key()]; taken && holder != t.ID {
		return ErrSeatTaken
	}

	delete(s.bySeat, existing.Key())
	copied := *t
	s.byID[t.ID] = &copied
	s.bySeat[t.Key()] = t.ID
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.byID[id]
	if !ok {
		return ErrTicketNotFound
	}
	delete(s.bySeat, t.Key())
	delete(s.byID, id)
	return nil
}

func (s *MemoryStore) Transition(ctx context.Context, id int64, from, to string) (*Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.byID[id]
	if !ok {
		return nil, ErrTicketNotFound
	}
	if t.Status != from {
		return nil, ErrStatusMismatch
	}
	t.Status = to
	copied := *t
	return &copied, nil
}

func (s *MemoryStore) GetAll(ctx context.Context) ([]Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tickets := []Ticket{}
	for _, t := range s.byID {
		tickets = append(tickets, *t)
	}
	return tickets, nil
}

func (s *MemoryStore) ByMatch(ctx context.Context, matchID int64) ([]Ticket, error) {
	return s.filter(func(t *Ticket) bool { return t.MatchID == matchID })
}

func (s *MemoryStore) ByStatus(ctx context.Context, status string) ([]Ticket, error) {
	return s.filter(func(t *Ticket) bool { return t.Status == status })
}

func (s *MemoryStore) ByMatchAndStatus(ctx context.Context, matchID int64, status string) ([]Ticket, error) {
	return s.filter(func(t *Ticket) bool { return t.MatchID == matchID && t.Status == status })
}

func (s *MemoryStore) CountByMatchAndStatus(ctx context.Context, matchID int64, status string) (int64, error) {
	tickets, err := s.ByMatchAndStatus(ctx, matchID, status)
	if err != nil {
		return 0, err
	}
	return int64(len(tickets)), nil
}

func (s *MemoryStore) BySeat(ctx context.Context, key SeatKey) (*Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.bySeat[key]
	if !ok {
		return nil, ErrTicketNotFound
	}
	copied := *s.byID[id]
	return &copied, nil
}

func (s *MemoryStore) filter(keep func(*Ticket) bool) ([]Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tickets := []Ticket{}
	for _, t := range s.byID {
		if keep(t) {
			tickets = append(tickets, *t)
		}
	}
	return tickets, nil
}

package devbackend

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNoActiveRound     = errors.New("no active round for betting")
	ErrInvalidRoundState = errors.New("invalid round state")
	ErrTicketNotFound    = errors.New("ticket not found")
)

// Round is one betting period. Results stay nil until they are stored after closing.
type Round struct {
	ID        uuid.UUID
	StartedAt time.Time
	Closed    bool
	Results   []int
}

// Ticket is one accepted submission.
type Ticket struct {
	ID        uuid.UUID
	RoundID   uuid.UUID
	OwnerID   string
	Numbers   []int
	CreatedAt time.Time
}

// Store keeps rounds and tickets in memory.
type Store struct {
	mu      sync.RWMutex
	rounds  []*Round // ordered by StartedAt
	tickets map[uuid.UUID]*Ticket
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{
		tickets: make(map[uuid.UUID]*Ticket),
		now:     time.Now,
	}
}

func (s *Store) activeRoundLocked() *Round {
	for i := len(s.rounds) - 1; i >= 0; i-- {
		if !s.rounds[i].Closed {
			return s.rounds[i]
		}
	}
	return nil
}

func (s *Store) lastRoundLocked() *Round {
	if len(s.rounds) == 0 {
		return nil
	}
	return s.rounds[len(s.rounds)-1]
}

func (s *Store) ticketCountLocked(roundID uuid.UUID) int {
	count := 0
	for _, t := range s.tickets {
		if t.RoundID == roundID {
			count++
		}
	}
	return count
}

// NewRound opens a round unless one is already open. It reports whether a round was created.
func (s *Store) NewRound() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeRoundLocked() != nil {
		return false
	}
	s.rounds = append(s.rounds, &Round{ID: uuid.New(), StartedAt: s.now()})
	return true
}

// CloseRound closes the open round, if any.
func (s *Store) CloseRound() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.activeRoundLocked()
	if r == nil {
		return false
	}
	r.Closed = true
	return true
}

// StoreResults records the drawn numbers on the last round, which must be closed and not yet drawn.
func (s *Store) StoreResults(numbers []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.lastRoundLocked()
	if r == nil || !r.Closed || len(r.Results) > 0 {
		return ErrInvalidRoundState
	}
	r.Results = append([]int(nil), numbers...)
	return nil
}

// AddTicket stores a ticket on the open round.
func (s *Store) AddTicket(ownerID string, numbers []int) (*Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.activeRoundLocked()
	if r == nil {
		return nil, ErrNoActiveRound
	}
	t := &Ticket{
		ID:        uuid.New(),
		RoundID:   r.ID,
		OwnerID:   ownerID,
		Numbers:   numbers,
		CreatedAt: s.now(),
	}
	s.tickets[t.ID] = t
	return t, nil
}

// Ticket returns a ticket together with the round it belongs to.
func (s *Store) Ticket(id uuid.UUID) (Ticket, Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tickets[id]
	if !ok {
		return Ticket{}, Round{}, ErrTicketNotFound
	}
	for _, r := range s.rounds {
		if r.ID == t.RoundID {
			return *t, *r, nil
		}
	}
	return *t, Round{}, nil
}

// Status is the public round status as served on /ticket-status.
type Status struct {
	ActiveRound *StatusRound `json:"active_round"`
	TicketCount int          `json:"ticket_count"`
	Results     []int        `json:"results"`
}

type StatusRound struct {
	ID        string `json:"id"`
	StartedAt string `json:"started_at"`
	Closed    bool   `json:"closed"`
}

// Status reports the open round if there is one, otherwise the last round and its results.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if active := s.activeRoundLocked(); active != nil {
		return Status{
			ActiveRound: &StatusRound{
				ID:        active.ID.String(),
				StartedAt: active.StartedAt.Format(time.RFC3339),
				Closed:    active.Closed,
			},
			TicketCount: s.ticketCountLocked(active.ID),
		}
	}
	if last := s.lastRoundLocked(); last != nil {
		return Status{
			TicketCount: s.ticketCountLocked(last.ID),
			Results:     last.Results,
		}
	}
	return Status{}
}

package bookings

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/dental-booking/internal/schedule"
	"github.com/wolfman30/dental-booking/pkg/logging"
)

// Store owns the booking collection for a session. The backend is picked once
// at construction; the only later change is a one-way switch to the local
// backend when a remote create fails.
type Store struct {
	mu       sync.Mutex
	primary  Backend
	local    *LocalBackend
	degraded bool
	snapshot []Booking

	clock  schedule.Clock
	newID  func() string
	logger *logging.Logger
}

// StoreOption customizes a Store.
type StoreOption func(*Store)

func WithClock(c schedule.Clock) StoreOption {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

func WithIDGenerator(gen func() string) StoreOption {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

func WithLogger(logger *logging.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore builds a store over primary, falling back to local. A nil primary
// means local mode from the start; local may be nil when no fallback exists.
func NewStore(primary Backend, local *LocalBackend, opts ...StoreOption) *Store {
	if primary == nil && local == nil {
		panic("bookings: at least one backend required")
	}
	s := &Store{
		primary: primary,
		local:   local,
		clock:   schedule.SystemClock{},
		newID:   uuid.NewString,
		logger:  logging.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// active must be called with mu held.
func (s *Store) active() Backend {
	if s.primary == nil || s.degraded {
		return s.local
	}
	return s.primary
}

// ActiveBackend names the backend currently serving the session.
func (s *Store) ActiveBackend() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active().Name()
}

// Degraded reports whether the session fell back from remote to local.
func (s *Store) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

// Create stores a new pending booking. A failed remote write moves the rest of
// the session onto the local backend and the record is written there instead.
func (s *Store) Create(ctx context.Context, f Fields) (Booking, error) {
	rec := Booking{
		ID:        s.newID(),
		Name:      strings.TrimSpace(f.Name),
		Phone:     strings.TrimSpace(f.Phone),
		Email:     strings.TrimSpace(f.Email),
		Service:   strings.TrimSpace(f.Service),
		Date:      f.Date,
		Time:      f.Time,
		Status:    StatusPending,
		Notes:     strings.TrimSpace(f.Notes),
		CreatedAt: s.clock.Now().UTC().Truncate(time.Millisecond),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	backend := s.active()
	stored, err := backend.Insert(ctx, rec)
	if err == nil {
		s.remember(stored)
		return stored, nil
	}
	if backend.Name() == BackendLocal || s.local == nil {
		return Booking{}, &PersistenceError{Op: "create", Backend: backend.Name(), Err: err}
	}

	s.logger.Warn("remote create failed; switching session to local store",
		"booking_id", rec.ID,
		"error", err,
	)
	s.degraded = true
	s.snapshot = nil

	stored, localErr := s.local.Insert(ctx, rec)
	if localErr != nil {
		return Booking{}, &PersistenceError{Op: "create", Backend: BackendLocal, Err: errors.Join(err, localErr)}
	}
	s.remember(stored)
	return stored, nil
}

// SetStatus moves id to status. Re-applying the current status is a no-op.
// A failed write leaves the cached view untouched.
func (s *Store) SetStatus(ctx context.Context, id string, status Status) (Booking, error) {
	if !status.Valid() {
		verr := NewValidationError()
		verr.Add("status", "unknown status")
		return Booking{}, verr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	backend := s.active()
	current, err := backend.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNoRecord) {
			return Booking{}, &NotFoundError{ID: id}
		}
		return Booking{}, &PersistenceError{Op: "set_status", Backend: backend.Name(), Err: err}
	}
	if current.Status == status {
		return current, nil
	}
	if !CanTransition(current.Status, status) {
		return Booking{}, &IllegalTransitionError{ID: id, From: current.Status, To: status}
	}

	updated, err := backend.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, ErrNoRecord) {
			return Booking{}, &NotFoundError{ID: id}
		}
		return Booking{}, &PersistenceError{Op: "set_status", Backend: backend.Name(), Err: err}
	}
	s.remember(updated)
	return updated, nil
}

// List returns every known booking. When the backend read fails the last
// good snapshot comes back together with the PersistenceError.
func (s *Store) List(ctx context.Context) ([]Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	backend := s.active()
	records, err := backend.List(ctx)
	if err != nil {
		return cloneBookings(s.snapshot), &PersistenceError{Op: "list", Backend: backend.Name(), Err: err}
	}
	s.snapshot = cloneBookings(records)
	return cloneBookings(records), nil
}

// BookedSlots returns the labels held by non-cancelled bookings on date.
func (s *Store) BookedSlots(ctx context.Context, date schedule.Date) (schedule.SlotSet, error) {
	records, err := s.List(ctx)
	return schedule.BookedTimes(date, records), err
}

// remember must be called with mu held.
func (s *Store) remember(b Booking) {
	for i := range s.snapshot {
		if s.snapshot[i].ID == b.ID {
			s.snapshot[i] = b
			return
		}
	}
	s.snapshot = append(s.snapshot, b)
}

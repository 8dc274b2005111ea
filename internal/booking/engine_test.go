package booking

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-seat-booking/internal/model"
	"github.com/iliyamo/event-seat-booking/internal/repository"
)

// memStore is an in-memory stand-in for the MySQL repositories.  It
// honors the same contract the engine depends on: Create validates
// existence, duplicates and capacity atomically under one lock, and
// returns the repository sentinel errors.
type memStore struct {
	mu       sync.Mutex
	events   map[uint64]model.Event
	bookings map[uint64]model.Booking
	nextID   uint64
}

func newMemStore(events ...model.Event) *memStore {
	s := &memStore{
		events:   make(map[uint64]model.Event),
		bookings: make(map[uint64]model.Booking),
	}
	for _, e := range events {
		s.events[e.ID] = e
	}
	return s
}

func (s *memStore) GetByIDEvent(ctx context.Context, id uint64) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, repository.ErrEventNotFound
	}
	return &e, nil
}

// eventView adapts memStore to the EventStore interface.
type eventView struct{ s *memStore }

func (v eventView) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	return v.s.GetByIDEvent(ctx, id)
}

func (s *memStore) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	return &b, nil
}

func (s *memStore) FindByEventAndUser(ctx context.Context, eventID uint64, userID string) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.EventID == eventID && b.UserID == userID {
			out := b
			return &out, nil
		}
	}
	return nil, repository.ErrBookingNotFound
}

func (s *memStore) ListByEvent(ctx context.Context, eventID uint64) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Booking, 0)
	for id := s.nextID; id > 0; id-- { // IDs are assigned in creation order
		if b, ok := s.bookings[id]; ok && b.EventID == eventID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *memStore) ListByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Booking, 0)
	for id := s.nextID; id > 0; id-- {
		if b, ok := s.bookings[id]; ok && b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *memStore) CountByEvent(ctx context.Context, eventID uint64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countLocked(eventID), nil
}

func (s *memStore) countLocked(eventID uint64) int {
	n := 0
	for _, b := range s.bookings {
		if b.EventID == eventID {
			n++
		}
	}
	return n
}

func (s *memStore) Create(ctx context.Context, eventID uint64, userID string) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[eventID]
	if !ok {
		return nil, repository.ErrEventNotFound
	}
	for _, b := range s.bookings {
		if b.EventID == eventID && b.UserID == userID {
			return nil, repository.ErrDuplicateBooking
		}
	}
	if s.countLocked(eventID) >= int(e.TotalSeats) {
		return nil, repository.ErrNoSeatsAvailable
	}
	s.nextID++
	b := model.Booking{ID: s.nextID, EventID: eventID, UserID: userID, CreatedAt: time.Now().UTC()}
	s.bookings[b.ID] = b
	return &b, nil
}

func (s *memStore) Delete(ctx context.Context, id uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[id]; !ok {
		return false, nil
	}
	delete(s.bookings, id)
	return true, nil
}

func newTestEngine(events ...model.Event) (*Engine, *memStore) {
	s := newMemStore(events...)
	return NewEngine(eventView{s}, s), s
}

func TestReserveSeatScenario(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(model.Event{ID: 1, Name: "Launch Night", TotalSeats: 1})

	alice, err := engine.ReserveSeat(ctx, 1, "alice")
	require.NoError(t, err)
	require.Equal(t, uint64(1), alice.EventID)
	require.Equal(t, "alice", alice.UserID)

	_, err = engine.ReserveSeat(ctx, 1, "alice")
	require.ErrorIs(t, err, ErrAlreadyBooked)

	_, err = engine.ReserveSeat(ctx, 1, "bob")
	require.ErrorIs(t, err, ErrSoldOut)

	_, err = engine.CancelBooking(ctx, alice.ID)
	require.NoError(t, err)

	bob, err := engine.ReserveSeat(ctx, 1, "bob")
	require.NoError(t, err)
	require.Equal(t, "bob", bob.UserID)
}

func TestReserveSeatEventNotFound(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine()

	_, err := engine.ReserveSeat(ctx, 42, "alice")
	require.ErrorIs(t, err, ErrEventNotFound)
}

func TestReserveSeatRejectionIsIdempotent(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(model.Event{ID: 1, Name: "Meetup", TotalSeats: 3})

	_, err := engine.ReserveSeat(ctx, 1, "alice")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := engine.ReserveSeat(ctx, 1, "alice")
		require.ErrorIs(t, err, ErrAlreadyBooked)
	}
}

func TestCancelBooking(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(model.Event{ID: 1, Name: "Meetup", TotalSeats: 2})

	_, err := engine.CancelBooking(ctx, 99)
	require.ErrorIs(t, err, ErrBookingNotFound)

	b, err := engine.ReserveSeat(ctx, 1, "alice")
	require.NoError(t, err)

	cancelled, err := engine.CancelBooking(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, b.ID, cancelled.ID)

	_, err = engine.CancelBooking(ctx, b.ID)
	require.ErrorIs(t, err, ErrBookingNotFound)
}

// raceLostStore simulates a concurrent cancel winning between the
// engine's lookup and its delete.
type raceLostStore struct {
	*memStore
}

func (s raceLostStore) Delete(ctx context.Context, id uint64) (bool, error) {
	return false, nil
}

func TestCancelBookingDeleteRace(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(model.Event{ID: 1, Name: "Meetup", TotalSeats: 2})
	engine := NewEngine(eventView{store}, raceLostStore{store})

	b, err := engine.ReserveSeat(ctx, 1, "alice")
	require.NoError(t, err)

	_, err = engine.CancelBooking(ctx, b.ID)
	require.ErrorIs(t, err, ErrCancelFailed)
}

func TestListingsEmptyNotError(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(model.Event{ID: 1, Name: "Meetup", TotalSeats: 2})

	byEvent, err := engine.EventBookings(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, byEvent)

	// Unknown event is also an empty list, not an error.
	byEvent, err = engine.EventBookings(ctx, 404)
	require.NoError(t, err)
	require.Empty(t, byEvent)

	byUser, err := engine.UserBookings(ctx, "nobody")
	require.NoError(t, err)
	require.Empty(t, byUser)
}

func TestListingsNewestFirst(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(model.Event{ID: 1, Name: "Meetup", TotalSeats: 5})

	users := []string{"alice", "bob", "carol"}
	for _, u := range users {
		_, err := engine.ReserveSeat(ctx, 1, u)
		require.NoError(t, err)
	}

	got, err := engine.EventBookings(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "carol", got[0].UserID)
	require.Equal(t, "bob", got[1].UserID)
	require.Equal(t, "alice", got[2].UserID)
}

func TestConcurrentReservationsNeverOversell(t *testing.T) {
	ctx := context.Background()
	const totalSeats = 5
	const numRequests = 100
	engine, store := newTestEngine(model.Event{ID: 1, Name: "The Big Gig", TotalSeats: totalSeats})

	var reserved, soldOut, unexpected int32
	var wg sync.WaitGroup
	wg.Add(numRequests)
	for i := 0; i < numRequests; i++ {
		go func(n int) {
			defer wg.Done()
			_, err := engine.ReserveSeat(ctx, 1, fmt.Sprintf("user-%d", n))
			switch {
			case err == nil:
				atomic.AddInt32(&reserved, 1)
			case err == ErrSoldOut:
				atomic.AddInt32(&soldOut, 1)
			default:
				atomic.AddInt32(&unexpected, 1)
			}
		}(i)
	}
	wg.Wait()

	require.Equal(t, int32(totalSeats), reserved)
	require.Equal(t, int32(numRequests-totalSeats), soldOut)
	require.Zero(t, unexpected)

	count, err := store.CountByEvent(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, totalSeats, count)
}

func TestConcurrentDuplicatePair(t *testing.T) {
	ctx := context.Background()
	const attempts = 50
	engine, store := newTestEngine(model.Event{ID: 1, Name: "Solo Show", TotalSeats: 1})

	// Same never-before-booked pair raced against itself: exactly one
	// attempt wins, every loser sees the duplicate, never the capacity.
	var reserved, alreadyBooked, unexpected int32
	var wg sync.WaitGroup
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			defer wg.Done()
			_, err := engine.ReserveSeat(ctx, 1, "carol")
			switch {
			case err == nil:
				atomic.AddInt32(&reserved, 1)
			case err == ErrAlreadyBooked:
				atomic.AddInt32(&alreadyBooked, 1)
			default:
				atomic.AddInt32(&unexpected, 1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), reserved)
	require.Equal(t, int32(attempts-1), alreadyBooked)
	require.Zero(t, unexpected)

	count, err := store.CountByEvent(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

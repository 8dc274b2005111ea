// Package booking implements the reservation protocol: an event must
// exist, a user may hold at most one booking per event, and the number
// of live bookings for an event may never exceed its seat capacity.
//
// The engine holds no state between calls.  All cross-request
// coordination is delegated to the store: the unique key on
// (event, user) is the authority on duplicates, and the store's Create
// runs the capacity check and the insert atomically.  The engine's own
// pre-checks are a fast path for cheaper rejections and friendlier
// errors; they are advisory only, because two concurrent requests can
// both pass them before either inserts.
package booking

import (
	"context"
	"errors"

	"github.com/iliyamo/event-seat-booking/internal/model"
	"github.com/iliyamo/event-seat-booking/internal/repository"
)

// Sentinel errors returned by the engine.  These are the tagged
// outcomes of the protocol: callers branch on them with errors.Is and
// may show the message verbatim.  Anything else coming out of the
// engine is a storage or infrastructure failure, propagated unchanged.
var (
	ErrEventNotFound   = errors.New("event not found")
	ErrAlreadyBooked   = errors.New("user already has a booking for this event")
	ErrSoldOut         = errors.New("no available seats for this event")
	ErrBookingNotFound = errors.New("booking not found")
	ErrCancelFailed    = errors.New("failed to cancel booking")
)

// EventStore is the slice of the event catalog the engine reads.
// Implementations return repository.ErrEventNotFound for unknown IDs.
type EventStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Event, error)
}

// BookingStore is the storage gateway for bookings.  Create must be
// atomic with respect to both invariants: it returns
// repository.ErrDuplicateBooking when the (event, user) unique key
// would be violated, repository.ErrNoSeatsAvailable when the event is
// at capacity, and repository.ErrEventNotFound when the event does not
// exist.  The list operations return point-in-time snapshots ordered by
// creation time descending, empty when nothing matches.
type BookingStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	FindByEventAndUser(ctx context.Context, eventID uint64, userID string) (*model.Booking, error)
	ListByEvent(ctx context.Context, eventID uint64) ([]model.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]model.Booking, error)
	CountByEvent(ctx context.Context, eventID uint64) (int, error)
	Create(ctx context.Context, eventID uint64, userID string) (*model.Booking, error)
	Delete(ctx context.Context, id uint64) (bool, error)
}

// Engine applies the reservation rules on top of the stores.
type Engine struct {
	events   EventStore
	bookings BookingStore
}

// NewEngine constructs an Engine.  Both stores must be non-nil.
func NewEngine(events EventStore, bookings BookingStore) *Engine {
	if events == nil || bookings == nil {
		panic("nil store passed to NewEngine")
	}
	return &Engine{events: events, bookings: bookings}
}

// ReserveSeat books one seat at an event for a user.
//
// The pre-checks (existence, duplicate) reject most bad requests
// without opening a write transaction.  Correctness does not rest on
// them: the store's Create re-validates everything behind the event row
// lock, and a duplicate detected there — whether by the re-check or by
// the unique key itself — is translated to the same ErrAlreadyBooked
// the pre-check produces, so repeating a rejected call yields the same
// rejection.  Capacity is deliberately not pre-checked here: a count
// read outside the transaction could misreport a racing duplicate pair
// as sold out, so that verdict belongs to Create alone.
func (e *Engine) ReserveSeat(ctx context.Context, eventID uint64, userID string) (*model.Booking, error) {
	// Rule 1: the event must exist.
	if _, err := e.events.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	// Rule 2: no duplicate booking (advisory; the unique key decides).
	if _, err := e.bookings.FindByEventAndUser(ctx, eventID, userID); err == nil {
		return nil, ErrAlreadyBooked
	} else if !errors.Is(err, repository.ErrBookingNotFound) {
		return nil, err
	}

	// Rule 3, capacity, and the authoritative re-check of rules 1 and 2
	// all happen atomically inside Create.
	b, err := e.bookings.Create(ctx, eventID, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateBooking):
			return nil, ErrAlreadyBooked
		case errors.Is(err, repository.ErrNoSeatsAvailable):
			return nil, ErrSoldOut
		case errors.Is(err, repository.ErrEventNotFound):
			// Event deleted between the pre-check and the insert.
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return b, nil
}

// EventBookings returns all bookings for an event, newest first.  An
// unknown event yields an empty slice, not an error; the engine does
// not distinguish "no bookings" from "no event".
func (e *Engine) EventBookings(ctx context.Context, eventID uint64) ([]model.Booking, error) {
	return e.bookings.ListByEvent(ctx, eventID)
}

// UserBookings returns all bookings held by a user, newest first.  An
// unknown user yields an empty slice.
func (e *Engine) UserBookings(ctx context.Context, userID string) ([]model.Booking, error) {
	return e.bookings.ListByUser(ctx, userID)
}

// CancelBooking deletes a booking and returns the record that was
// removed.  The lookup before the delete distinguishes
// ErrBookingNotFound from ErrCancelFailed: a delete that affects zero
// rows after a successful lookup (a concurrent cancel won the race)
// must not report success.  Cancelling frees the seat for subsequent
// reservations but carries no atomicity relative to reservations
// already in flight.
func (e *Engine) CancelBooking(ctx context.Context, id uint64) (*model.Booking, error) {
	b, err := e.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	deleted, err := e.bookings.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, ErrCancelFailed
	}
	return b, nil
}

// Package repository contains data access logic for bookings.  The
// bookings table carries the unique key on (event_id, user_id) that the
// reservation protocol depends on: an application-level check-then-insert
// is not atomic under concurrency, so the constraint is the authority on
// duplicates and Create serializes capacity checks on the event row.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/event-seat-booking/internal/model"
)

// ErrBookingNotFound indicates that a booking was not located in the DB.
var ErrBookingNotFound = errors.New("booking not found")

// ErrDuplicateBooking indicates that the (event_id, user_id) unique key
// would be violated: the user already holds a booking for the event.
var ErrDuplicateBooking = errors.New("duplicate booking")

// ErrNoSeatsAvailable indicates that the event has reached its seat
// capacity and no further booking can be inserted.
var ErrNoSeatsAvailable = errors.New("no seats available")

// BookingRepo manages persistence for bookings.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// GetByID fetches a single booking.  When no booking with the given ID
// exists, ErrBookingNotFound is returned.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	const q = `SELECT id, event_id, user_id, created_at FROM bookings WHERE id = ?`
	var b model.Booking
	err := r.db.QueryRowContext(ctx, q, id).Scan(&b.ID, &b.EventID, &b.UserID, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

// FindByEventAndUser fetches the booking held by a user for an event, if
// any.  When none exists, ErrBookingNotFound is returned.
func (r *BookingRepo) FindByEventAndUser(ctx context.Context, eventID uint64, userID string) (*model.Booking, error) {
	const q = `SELECT id, event_id, user_id, created_at FROM bookings WHERE event_id = ? AND user_id = ? LIMIT 1`
	var b model.Booking
	err := r.db.QueryRowContext(ctx, q, eventID, userID).Scan(&b.ID, &b.EventID, &b.UserID, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

// ListByEvent returns all bookings for an event ordered by creation time
// descending (newest first).  When there are none, or the event does not
// exist at all, an empty slice is returned; that discrimination is left
// to callers needing it.
func (r *BookingRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.Booking, error) {
	const q = `SELECT id, event_id, user_id, created_at FROM bookings WHERE event_id = ? ORDER BY created_at DESC, id DESC`
	return r.list(ctx, q, eventID)
}

// ListByUser returns all bookings held by a user across events ordered by
// creation time descending.  An unknown user yields an empty slice.
func (r *BookingRepo) ListByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	const q = `SELECT id, event_id, user_id, created_at FROM bookings WHERE user_id = ? ORDER BY created_at DESC, id DESC`
	return r.list(ctx, q, userID)
}

func (r *BookingRepo) list(ctx context.Context, q string, arg any) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	bookings := make([]model.Booking, 0)
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.ID, &b.EventID, &b.UserID, &b.CreatedAt); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// CountByEvent returns the number of live bookings for an event.
func (r *BookingRepo) CountByEvent(ctx context.Context, eventID uint64) (int, error) {
	const q = `SELECT COUNT(*) FROM bookings WHERE event_id = ?`
	var n int
	if err := r.db.QueryRowContext(ctx, q, eventID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Create inserts a booking, enforcing both reservation invariants inside
// a single transaction:
//
//  1. The event row is locked with SELECT ... FOR UPDATE, so concurrent
//     reservations for the same event serialize around the capacity
//     boundary instead of both reading a stale count.
//  2. Behind the lock the duplicate check runs before the capacity check,
//     so a user racing their own retry on a full event is told about the
//     duplicate, not about the capacity.  The unique key remains the
//     backstop: a 1062 from the insert still maps to ErrDuplicateBooking.
//
// Returned errors: ErrEventNotFound when the event does not exist,
// ErrDuplicateBooking when the user already holds a booking, and
// ErrNoSeatsAvailable when the event is at capacity.
func (r *BookingRepo) Create(ctx context.Context, eventID uint64, userID string) (*model.Booking, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lock the event row; every concurrent Create for this event blocks
	// here until we commit or roll back.
	var totalSeats uint32
	err = tx.QueryRowContext(ctx,
		`SELECT total_seats FROM events WHERE id = ? FOR UPDATE`, eventID,
	).Scan(&totalSeats)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("lock event row: %w", err)
	}

	// Duplicate check behind the lock.  Must precede the capacity check:
	// on a full event a duplicate attempt reports the duplicate.
	var dup int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE event_id = ? AND user_id = ?`, eventID, userID,
	).Scan(&dup)
	if err != nil {
		return nil, fmt.Errorf("check duplicate: %w", err)
	}
	if dup > 0 {
		return nil, ErrDuplicateBooking
	}

	// Capacity check behind the lock.
	var count int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE event_id = ?`, eventID,
	).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}
	if count >= int(totalSeats) {
		return nil, ErrNoSeatsAvailable
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (event_id, user_id) VALUES (?, ?)`, eventID, userID,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrDuplicateBooking
		}
		return nil, fmt.Errorf("insert booking: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	b := model.Booking{ID: uint64(id)}
	// Query back the row to populate the DB-assigned timestamp.
	err = tx.QueryRowContext(ctx,
		`SELECT id, event_id, user_id, created_at FROM bookings WHERE id = ?`, b.ID,
	).Scan(&b.ID, &b.EventID, &b.UserID, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return &b, nil
}

// Delete removes a booking by ID and reports whether a row was removed.
// A plain delete: no seat-hold or waitlist promotion occurs, and no
// guarantee is made relative to in-flight reservations beyond the row
// lock Create takes on the event.
func (r *BookingRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

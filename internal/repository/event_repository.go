// Package repository contains data access logic for event catalog
// operations.  An Event is a bookable occasion with a fixed seat
// capacity.  Events are owned by organizers; the booking engine only
// reads them.
package repository

import (
	"context"      // context for controlling query lifetime
	"database/sql" // sql provides DB abstraction
	"errors"       // errors for sentinel definitions

	"github.com/iliyamo/event-seat-booking/internal/model"
)

// ErrEventNotFound indicates that an event was not located in the DB.
var ErrEventNotFound = errors.New("event not found")

// EventRepo manages persistence for events.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// DB exposes the underlying sql.DB.  It allows callers to begin
// transactions spanning multiple repositories.
func (r *EventRepo) DB() *sql.DB { return r.db }

// Create inserts a new event.  On success the generated ID and
// DB-default timestamps are populated on the given Event.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	const q = `INSERT INTO events (name, total_seats) VALUES (?, ?)`
	res, err := r.db.ExecContext(ctx, q, e.Name, e.TotalSeats)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	// Query back the full row to populate timestamps and defaults
	const sel = `SELECT id, name, total_seats, created_at, updated_at FROM events WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, e.ID).Scan(
		&e.ID, &e.Name, &e.TotalSeats, &e.CreatedAt, &e.UpdatedAt,
	)
}

// GetByID fetches a single event.  When no event with the given ID
// exists, ErrEventNotFound is returned.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	const q = `SELECT id, name, total_seats, created_at, updated_at FROM events WHERE id = ?`
	var e model.Event
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&e.ID, &e.Name, &e.TotalSeats, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &e, nil
}

// List returns all events ordered by ID ascending.  When no events
// exist, an empty slice is returned.
func (r *EventRepo) List(ctx context.Context) ([]model.Event, error) {
	const q = `SELECT id, name, total_seats, created_at, updated_at FROM events ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]model.Event, 0)
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.TotalSeats, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Update changes the name and seat capacity of an event.  It returns
// ErrEventNotFound when the event does not exist.  Shrinking capacity
// below the current booking count is allowed; existing bookings are
// never revoked, the event simply stops accepting new ones.
func (r *EventRepo) Update(ctx context.Context, id uint64, name string, totalSeats uint32) (*model.Event, error) {
	const q = `UPDATE events SET name = ?, total_seats = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, name, totalSeats, id)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// MySQL reports zero affected rows both for a missing row and for
		// a no-op update, so confirm existence before deciding.
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes an event.  It returns ErrEventNotFound when no row was
// removed and ErrConflict when the event still has live bookings (the
// foreign key on bookings restricts the delete).
func (r *EventRepo) Delete(ctx context.Context, id uint64) error {
	const q = `DELETE FROM events WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		if isForeignKeyRestrict(err) {
			return ErrConflict
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEventNotFound
	}
	return nil
}

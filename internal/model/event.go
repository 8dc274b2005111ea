package model

import "time"

// Event represents a bookable occasion with a fixed seat capacity.
// Events are created and managed by organizers; the booking engine
// only ever reads them.  This struct corresponds to a row in the
// `events` table.
//
// Fields:
//  ID         – primary key identifier.
//  Name       – display name of the event.
//  TotalSeats – capacity ceiling; the number of live bookings may
//               never exceed this value.
//  CreatedAt  – timestamp when the event was created.
//  UpdatedAt  – timestamp of last update.
type Event struct {
	ID         uint64    `json:"id"`          // events.id
	Name       string    `json:"name"`        // events.name
	TotalSeats uint32    `json:"total_seats"` // events.total_seats
	CreatedAt  time.Time `json:"created_at"`  // events.created_at
	UpdatedAt  time.Time `json:"updated_at"`  // events.updated_at
}

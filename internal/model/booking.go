package model

import "time"

// Booking records a single user's claim on one seat at one event.
// The pair (EventID, UserID) is unique across all live bookings;
// the constraint lives in the database because an application-level
// check-then-insert is not atomic under concurrency.  Bookings are
// created by a successful reservation and destroyed by cancellation,
// never updated in place.
//
// Fields:
//  ID        – primary key identifier, assigned by storage on insert.
//  EventID   – event being booked.
//  UserID    – opaque caller-supplied user identifier.
//  CreatedAt – assignment timestamp, set by storage on insert.
type Booking struct {
	ID        uint64    `json:"id"`         // bookings.id
	EventID   uint64    `json:"event_id"`   // bookings.event_id
	UserID    string    `json:"user_id"`    // bookings.user_id
	CreatedAt time.Time `json:"created_at"` // bookings.created_at
}

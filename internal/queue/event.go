// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingCreatedEvent is published when a reservation succeeds.  It
// carries enough information for downstream consumers to log, notify or
// feed analytics without querying the primary database.
type BookingCreatedEvent struct {
	BookingID  uint64 `json:"booking_id"`
	EventID    uint64 `json:"event_id"`
	EventName  string `json:"event_name"`
	UserID     string `json:"user_id"`
	TotalSeats uint32 `json:"total_seats"`
	SeatsTaken int    `json:"seats_taken"`
	CreatedAt  string `json:"created_at"`
}

// BookingCancelledEvent is published when a booking is cancelled.
type BookingCancelledEvent struct {
	BookingID   uint64 `json:"booking_id"`
	EventID     uint64 `json:"event_id"`
	UserID      string `json:"user_id"`
	CancelledAt string `json:"cancelled_at"`
}

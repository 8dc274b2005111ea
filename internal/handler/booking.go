package handler

import (
	"context" // background contexts for fire-and-forget publishing
	"errors"  // errors.Is comparisons against engine outcomes
	"log"     // logging of ignored publish failures
	"net/http"
	"strconv" // parsing path parameters
	"strings" // trimming user identifiers
	"time"    // timestamps and publish timeouts

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/event-seat-booking/internal/booking"
	"github.com/iliyamo/event-seat-booking/internal/model"
	"github.com/iliyamo/event-seat-booking/internal/queue"
	queue_publisher "github.com/iliyamo/event-seat-booking/internal/service"
)

// BookingHandler maps the reservation engine's outcomes onto the HTTP
// surface.  Business-rule rejections come back from the engine as
// sentinel errors and are rendered as 400/404 responses with the
// engine's stable message; anything else is a 500.  Successful state
// changes additionally publish a message to the broker, fire-and-forget.
type BookingHandler struct {
	Engine   *booking.Engine
	Events   booking.EventStore   // read-only event access for message enrichment
	Bookings booking.BookingStore // count access for message enrichment
}

// NewBookingHandler constructs a BookingHandler.  All dependencies must
// be non-nil.
func NewBookingHandler(engine *booking.Engine, events booking.EventStore, bookings booking.BookingStore) *BookingHandler {
	if engine == nil || events == nil || bookings == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Engine: engine, Events: events, Bookings: bookings}
}

// reserveResponse is the envelope shared by all booking endpoints.
type reserveResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Booking *model.Booking `json:"booking,omitempty"`
}

// Reserve handles POST /v1/bookings/reserve.  The body must carry a
// positive event_id and a non-empty user_id; the user_id is an opaque
// caller-supplied identifier and is not validated beyond that.
//
// Outcome mapping: success 201; event not found, duplicate booking and
// sold out 400 with the engine's message; storage failures 500.
func (h *BookingHandler) Reserve(c echo.Context) error {
	var body struct {
		EventID uint64 `json:"event_id"`
		UserID  string `json:"user_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, reserveResponse{Success: false, Message: "invalid request body"})
	}
	userID := strings.TrimSpace(body.UserID)
	if body.EventID == 0 || userID == "" {
		return c.JSON(http.StatusBadRequest, reserveResponse{Success: false, Message: "event_id and user_id are required"})
	}

	b, err := h.Engine.ReserveSeat(c.Request().Context(), body.EventID, userID)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrEventNotFound),
			errors.Is(err, booking.ErrAlreadyBooked),
			errors.Is(err, booking.ErrSoldOut):
			return c.JSON(http.StatusBadRequest, reserveResponse{Success: false, Message: err.Error()})
		}
		log.Printf("booking-handler: reserve failed: %v", err)
		return c.JSON(http.StatusInternalServerError, reserveResponse{Success: false, Message: "internal server error"})
	}

	h.publishCreated(*b)
	return c.JSON(http.StatusCreated, reserveResponse{
		Success: true,
		Message: "Booking created successfully",
		Booking: b,
	})
}

// ListByEvent handles GET /v1/bookings/event/:id.  Unknown events yield
// an empty list, not an error.
func (h *BookingHandler) ListByEvent(c echo.Context) error {
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || eventID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid event id"})
	}
	bookings, err := h.Engine.EventBookings(c.Request().Context(), eventID)
	if err != nil {
		log.Printf("booking-handler: list by event failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "internal server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "bookings": bookings})
}

// ListByUser handles GET /v1/bookings/user/:userId.
func (h *BookingHandler) ListByUser(c echo.Context) error {
	userID := strings.TrimSpace(c.Param("userId"))
	if userID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid user id"})
	}
	bookings, err := h.Engine.UserBookings(c.Request().Context(), userID)
	if err != nil {
		log.Printf("booking-handler: list by user failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "internal server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "bookings": bookings})
}

// Cancel handles DELETE /v1/bookings/:id.  A missing booking is a 404;
// a delete that raced a concurrent cancel after a successful lookup is
// reported as a failure, not silently treated as success.
func (h *BookingHandler) Cancel(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, reserveResponse{Success: false, Message: "invalid booking id"})
	}
	b, err := h.Engine.CancelBooking(c.Request().Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrBookingNotFound):
			return c.JSON(http.StatusNotFound, reserveResponse{Success: false, Message: err.Error()})
		case errors.Is(err, booking.ErrCancelFailed):
			return c.JSON(http.StatusInternalServerError, reserveResponse{Success: false, Message: err.Error()})
		}
		log.Printf("booking-handler: cancel failed: %v", err)
		return c.JSON(http.StatusInternalServerError, reserveResponse{Success: false, Message: "internal server error"})
	}

	h.publishCancelled(*b)
	return c.JSON(http.StatusOK, reserveResponse{Success: true, Message: "Booking cancelled successfully"})
}

// publishCreated emits a booking.created message in the background.  The
// request does not wait on the broker and a publish failure never fails
// the reservation; it is logged inside the publisher.
func (h *BookingHandler) publishCreated(b model.Booking) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		ev := queue.BookingCreatedEvent{
			BookingID: b.ID,
			EventID:   b.EventID,
			UserID:    b.UserID,
			CreatedAt: b.CreatedAt.UTC().Format(time.RFC3339),
		}
		if event, err := h.Events.GetByID(ctx, b.EventID); err == nil {
			ev.EventName = event.Name
			ev.TotalSeats = event.TotalSeats
		}
		if n, err := h.Bookings.CountByEvent(ctx, b.EventID); err == nil {
			ev.SeatsTaken = n
		}
		_ = queue_publisher.PublishBookingCreated(ctx, ev)
	}()
}

// publishCancelled emits a booking.cancelled message in the background.
func (h *BookingHandler) publishCancelled(b model.Booking) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue_publisher.PublishBookingCancelled(ctx, queue.BookingCancelledEvent{
			BookingID:   b.ID,
			EventID:     b.EventID,
			UserID:      b.UserID,
			CancelledAt: time.Now().UTC().Format(time.RFC3339),
		})
	}()
}

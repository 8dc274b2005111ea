package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-seat-booking/internal/handler"
)

// RegisterBookings registers the reservation endpoints.  These are
// public: callers identify themselves with an opaque user_id in the
// request, and validation beyond presence is deliberately not this
// service's concern.  The rate limiter (may be nil) is applied only to
// the reserve route, the single write hot spot.
func RegisterBookings(e *echo.Echo, h *handler.BookingHandler, rateLimit echo.MiddlewareFunc) {
	g := e.Group("/v1/bookings")
	if rateLimit != nil {
		g.POST("/reserve", h.Reserve, rateLimit)
	} else {
		g.POST("/reserve", h.Reserve)
	}
	g.GET("/event/:id", h.ListByEvent)
	g.GET("/user/:userId", h.ListByUser)
	g.DELETE("/:id", h.Cancel)
}

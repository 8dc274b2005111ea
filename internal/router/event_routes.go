package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-seat-booking/internal/handler"
	"github.com/iliyamo/event-seat-booking/internal/middleware"
)

// RegisterEvents registers the event catalog routes.  Reads are public
// and wrapped in the response cache; create, update and delete require
// an organizer token.  The cache middleware may be nil when Redis is
// not configured.
func RegisterEvents(e *echo.Echo, h *handler.EventHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	// Public browse endpoints for callers choosing an event to book.
	public := e.Group("/v1/events")
	if cache != nil {
		public.Use(cache)
	}
	public.GET("", h.ListEvents)
	public.GET("/:id", h.GetEvent)

	// Organizer endpoints require a valid access token with the
	// ORGANIZER role.
	organizer := e.Group("/v1/events")
	organizer.Use(middleware.JWTAuth(jwtSecret))
	organizer.Use(middleware.RequireRole("ORGANIZER"))
	organizer.POST("", h.CreateEvent)
	organizer.PUT("/:id", h.UpdateEvent)
	organizer.DELETE("/:id", h.DeleteEvent)
}

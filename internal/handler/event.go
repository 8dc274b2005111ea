package handler // handler package contains organizer event catalog handlers

import (
	"errors"   // errors for sentinel comparisons
	"net/http" // http provides status code constants
	"strconv"  // strconv parses string identifiers to numeric types
	"strings"  // strings offers trimming utilities

	"github.com/labstack/echo/v4" // echo is the web framework used for handlers

	"github.com/iliyamo/event-seat-booking/internal/model"
	"github.com/iliyamo/event-seat-booking/internal/repository"
)

// EventHandler exposes the event catalog: public reads plus
// JWT-protected create/update/delete for organizers.  The booking
// engine never mutates events; it only reads them through the
// repository this handler owns.
type EventHandler struct {
	Repo *repository.EventRepo
}

// NewEventHandler constructs an EventHandler.  The repository must be non-nil.
func NewEventHandler(repo *repository.EventRepo) *EventHandler {
	if repo == nil {
		panic("nil repository passed to NewEventHandler")
	}
	return &EventHandler{Repo: repo}
}

// CreateEvent handles POST /v1/events and creates a new event.
func (h *EventHandler) CreateEvent(c echo.Context) error {
	var body struct {
		Name       string `json:"name"`        // display name of the event
		TotalSeats uint32 `json:"total_seats"` // capacity ceiling
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	event := &model.Event{Name: name, TotalSeats: body.TotalSeats}
	if err := h.Repo.Create(c.Request().Context(), event); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create event"})
	}
	return c.JSON(http.StatusCreated, event)
}

// ListEvents handles GET /v1/events and returns all events.
func (h *EventHandler) ListEvents(c echo.Context) error {
	items, err := h.Repo.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetEvent handles GET /v1/events/:id and returns a single event.
func (h *EventHandler) GetEvent(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	event, err := h.Repo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, event)
}

// UpdateEvent handles PUT /v1/events/:id and updates name and capacity.
// Shrinking capacity below the live booking count stops new
// reservations without revoking existing bookings.
func (h *EventHandler) UpdateEvent(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var body struct {
		Name       string `json:"name"`
		TotalSeats uint32 `json:"total_seats"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	updated, err := h.Repo.Update(c.Request().Context(), id, name, body.TotalSeats)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteEvent handles DELETE /v1/events/:id.  Events with live bookings
// cannot be deleted; the foreign key restricts the delete and the
// handler reports a conflict.
func (h *EventHandler) DeleteEvent(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	if err := h.Repo.Delete(c.Request().Context(), id); err != nil {
		switch {
		case errors.Is(err, repository.ErrEventNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "event has active bookings"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-seat-booking/internal/booking"
	"github.com/iliyamo/event-seat-booking/internal/model"
	"github.com/iliyamo/event-seat-booking/internal/repository"
)

// fakeStore backs the handler tests with the same atomicity contract
// the MySQL repositories provide.
type fakeStore struct {
	mu       sync.Mutex
	events   map[uint64]model.Event
	bookings map[uint64]model.Booking
	nextID   uint64
}

func newFakeStore(events ...model.Event) *fakeStore {
	s := &fakeStore{events: map[uint64]model.Event{}, bookings: map[uint64]model.Booking{}}
	for _, e := range events {
		s.events[e.ID] = e
	}
	return s
}

type fakeEvents struct{ s *fakeStore }

func (f fakeEvents) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	e, ok := f.s.events[id]
	if !ok {
		return nil, repository.ErrEventNotFound
	}
	return &e, nil
}

func (s *fakeStore) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	return &b, nil
}

func (s *fakeStore) FindByEventAndUser(ctx context.Context, eventID uint64, userID string) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.EventID == eventID && b.UserID == userID {
			out := b
			return &out, nil
		}
	}
	return nil, repository.ErrBookingNotFound
}

func (s *fakeStore) ListByEvent(ctx context.Context, eventID uint64) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Booking, 0)
	for id := s.nextID; id > 0; id-- {
		if b, ok := s.bookings[id]; ok && b.EventID == eventID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeStore) ListByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Booking, 0)
	for id := s.nextID; id > 0; id-- {
		if b, ok := s.bookings[id]; ok && b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeStore) CountByEvent(ctx context.Context, eventID uint64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.bookings {
		if b.EventID == eventID {
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) Create(ctx context.Context, eventID uint64, userID string) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[eventID]
	if !ok {
		return nil, repository.ErrEventNotFound
	}
	n := 0
	for _, b := range s.bookings {
		if b.EventID == eventID {
			if b.UserID == userID {
				return nil, repository.ErrDuplicateBooking
			}
			n++
		}
	}
	if n >= int(e.TotalSeats) {
		return nil, repository.ErrNoSeatsAvailable
	}
	s.nextID++
	b := model.Booking{ID: s.nextID, EventID: eventID, UserID: userID, CreatedAt: time.Now().UTC()}
	s.bookings[b.ID] = b
	return &b, nil
}

func (s *fakeStore) Delete(ctx context.Context, id uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[id]; !ok {
		return false, nil
	}
	delete(s.bookings, id)
	return true, nil
}

func newTestHandler(events ...model.Event) *BookingHandler {
	s := newFakeStore(events...)
	engine := booking.NewEngine(fakeEvents{s}, s)
	return NewBookingHandler(engine, fakeEvents{s}, s)
}

func doRequest(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func newTestServer(h *BookingHandler) *echo.Echo {
	e := echo.New()
	e.POST("/v1/bookings/reserve", h.Reserve)
	e.GET("/v1/bookings/event/:id", h.ListByEvent)
	e.GET("/v1/bookings/user/:userId", h.ListByUser)
	e.DELETE("/v1/bookings/:id", h.Cancel)
	return e
}

func TestReserveStatusMapping(t *testing.T) {
	h := newTestHandler(model.Event{ID: 1, Name: "Launch Night", TotalSeats: 1})
	e := newTestServer(h)

	// Missing fields.
	rec := doRequest(e, http.MethodPost, "/v1/bookings/reserve", `{"event_id":1}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown event.
	rec = doRequest(e, http.MethodPost, "/v1/bookings/reserve", `{"event_id":99,"user_id":"alice"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "event not found")

	// First reservation succeeds.
	rec = doRequest(e, http.MethodPost, "/v1/bookings/reserve", `{"event_id":1,"user_id":"alice"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		Success bool           `json:"success"`
		Booking *model.Booking `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.NotNil(t, resp.Booking)
	require.Equal(t, "alice", resp.Booking.UserID)

	// Duplicate pair.
	rec = doRequest(e, http.MethodPost, "/v1/bookings/reserve", `{"event_id":1,"user_id":"alice"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "user already has a booking for this event")

	// Capacity reached for a different user.
	rec = doRequest(e, http.MethodPost, "/v1/bookings/reserve", `{"event_id":1,"user_id":"bob"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "no available seats for this event")
}

func TestListBookings(t *testing.T) {
	h := newTestHandler(model.Event{ID: 1, Name: "Meetup", TotalSeats: 5})
	e := newTestServer(h)

	// Empty lists come back 200 with an empty array, not an error.
	rec := doRequest(e, http.MethodGet, "/v1/bookings/event/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"bookings":[]`)

	rec = doRequest(e, http.MethodGet, "/v1/bookings/user/nobody", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"bookings":[]`)

	doRequest(e, http.MethodPost, "/v1/bookings/reserve", `{"event_id":1,"user_id":"alice"}`)
	doRequest(e, http.MethodPost, "/v1/bookings/reserve", `{"event_id":1,"user_id":"bob"}`)

	rec = doRequest(e, http.MethodGet, "/v1/bookings/event/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Bookings []model.Booking `json:"bookings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Bookings, 2)
	require.Equal(t, "bob", resp.Bookings[0].UserID) // newest first

	rec = doRequest(e, http.MethodGet, "/v1/bookings/user/alice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Bookings, 1)
}

func TestCancelStatusMapping(t *testing.T) {
	h := newTestHandler(model.Event{ID: 1, Name: "Meetup", TotalSeats: 1})
	e := newTestServer(h)

	// Never-issued ID.
	rec := doRequest(e, http.MethodDelete, "/v1/bookings/123", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(e, http.MethodPost, "/v1/bookings/reserve", `{"event_id":1,"user_id":"alice"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		Booking *model.Booking `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	// Cancel frees the seat; a second cancel is a 404.
	rec = doRequest(e, http.MethodDelete, "/v1/bookings/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doRequest(e, http.MethodDelete, "/v1/bookings/1", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(e, http.MethodPost, "/v1/bookings/reserve", `{"event_id":1,"user_id":"bob"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
}

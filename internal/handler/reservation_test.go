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

	"github.com/inoryu-os/ai-reservation-system/internal/booking"
	"github.com/inoryu-os/ai-reservation-system/internal/clock"
	"github.com/inoryu-os/ai-reservation-system/internal/middleware"
	"github.com/inoryu-os/ai-reservation-system/internal/model"
	"github.com/inoryu-os/ai-reservation-system/internal/repository"
)

// fakeStore backs the engine with an in-memory reservation table so
// handlers can be exercised without a database.
type fakeStore struct {
	mu           sync.Mutex
	rooms        []model.Room
	nextID       uint64
	reservations map[uint64]model.Reservation
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rooms: []model.Room{
			{ID: 1, Name: "Room A", Capacity: 4},
			{ID: 2, Name: "Room B", Capacity: 6},
		},
		nextID:       1,
		reservations: make(map[uint64]model.Reservation),
	}
}

func (s *fakeStore) List(ctx context.Context) ([]model.Room, error) {
	out := make([]model.Room, len(s.rooms))
	copy(out, s.rooms)
	return out, nil
}

func (s *fakeStore) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	if !ok {
		return nil, repository.ErrReservationNotFound
	}
	return &r, nil
}

func (s *fakeStore) CreateIfFree(ctx context.Context, res *model.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var name string
	for _, rm := range s.rooms {
		if rm.ID == res.RoomID {
			name = rm.Name
		}
	}
	if name == "" {
		return repository.ErrRoomNotFound
	}
	for _, r := range s.reservations {
		if r.RoomID == res.RoomID && r.StartTime.Before(res.EndTime) && res.StartTime.Before(r.EndTime) {
			return repository.ErrConflict
		}
	}
	res.ID = s.nextID
	s.nextID++
	res.RoomName = name
	res.CreatedAt = time.Now()
	s.reservations[res.ID] = *res
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, id uint64, requester string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	if !ok {
		return repository.ErrReservationNotFound
	}
	if requester != "" && r.Requester != requester {
		return repository.ErrForbidden
	}
	delete(s.reservations, id)
	return nil
}

func (s *fakeStore) ListBetween(ctx context.Context, from, to time.Time) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Reservation, 0)
	for _, r := range s.reservations {
		if !r.StartTime.Before(from) && r.StartTime.Before(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeStore) ListByRequester(ctx context.Context, requester string, from, to *time.Time) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Reservation, 0)
	for _, r := range s.reservations {
		if r.Requester == requester {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeStore) BookedRoomIDs(ctx context.Context, start, end time.Time) (map[uint64]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	booked := make(map[uint64]bool)
	for _, r := range s.reservations {
		if r.StartTime.Before(end) && start.Before(r.EndTime) {
			booked[r.RoomID] = true
		}
	}
	return booked, nil
}

func newTestEngine() *booking.Engine {
	store := newFakeStore()
	return booking.NewEngine(store, store, clock.New(9),
		booking.Hours{Open: 7, Close: 22}, true)
}

// request performs one HTTP round trip through Echo with the identity
// middleware installed, the way the router wires it.
func request(t *testing.T, eng *booking.Engine, method, target, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	rh := NewReservationHandler(eng)
	roomh := NewRoomHandler(eng)

	api := e.Group("/api")
	api.Use(middleware.WithRequester())
	api.POST("/reservations", rh.Create)
	api.GET("/reservations/:date", rh.ListByDate)
	api.GET("/my-reservations", rh.ListMine)
	api.DELETE("/reservations/:id", rh.Cancel)
	api.GET("/rooms", roomh.List)
	api.GET("/rooms/available", roomh.Available)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if user != "" {
		req.Header.Set(middleware.RequesterHeader, user)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return out
}

func TestCreateReservationEndpoint(t *testing.T) {
	eng := newTestEngine()

	rec := request(t, eng, http.MethodPost, "/api/reservations", "alice",
		`{"room_id":1,"date":"2025-10-24","start_time":"09:00","end_time":"10:00"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201\nbody: %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	res, _ := body["reservation"].(map[string]any)
	if res == nil {
		t.Fatal("response has no reservation object")
	}
	if res["room_name"] != "Room A" || res["user_name"] != "alice" {
		t.Errorf("reservation = %v", res)
	}
	if res["start_time"] != "09:00" || res["end_time"] != "10:00" || res["date"] != "2025-10-24" {
		t.Errorf("rendered times = %v", res)
	}
}

func TestCreateReservationStatusMapping(t *testing.T) {
	eng := newTestEngine()

	// Occupy the slot first.
	rec := request(t, eng, http.MethodPost, "/api/reservations", "alice",
		`{"room_id":1,"date":"2025-10-24","start_time":"09:00","end_time":"10:00"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("setup create failed: %d", rec.Code)
	}

	cases := []struct {
		name string
		body string
		code int
		kind string
	}{
		{"overlap", `{"room_id":1,"date":"2025-10-24","start_time":"09:30","end_time":"10:30"}`,
			http.StatusConflict, "conflict"},
		{"unknown room", `{"room_id":99,"date":"2025-10-24","start_time":"09:00","end_time":"10:00"}`,
			http.StatusNotFound, "not_found"},
		{"before opening", `{"room_id":2,"date":"2025-10-24","start_time":"06:30","end_time":"08:00"}`,
			http.StatusBadRequest, "out_of_hours"},
		{"inverted range", `{"room_id":2,"date":"2025-10-24","start_time":"10:00","end_time":"09:00"}`,
			http.StatusBadRequest, "ordering"},
		{"garbled time", `{"room_id":2,"date":"2025-10-24","start_time":"late","end_time":"later"}`,
			http.StatusBadRequest, "format"},
		{"missing fields", `{"room_id":2}`,
			http.StatusBadRequest, "missing_field"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := request(t, eng, http.MethodPost, "/api/reservations", "bob", tc.body)
			if rec.Code != tc.code {
				t.Errorf("status = %d, want %d\nbody: %s", rec.Code, tc.code, rec.Body.String())
			}
			if body := decode(t, rec); body["kind"] != tc.kind {
				t.Errorf("kind = %v, want %s", body["kind"], tc.kind)
			}
		})
	}
}

func TestAnonymousCallerBooksAsGuest(t *testing.T) {
	eng := newTestEngine()

	rec := request(t, eng, http.MethodPost, "/api/reservations", "",
		`{"room_id":1,"date":"2025-10-24","start_time":"09:00","end_time":"10:00"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	res, _ := decode(t, rec)["reservation"].(map[string]any)
	if res["user_name"] != middleware.DefaultRequester {
		t.Errorf("user_name = %v, want %q", res["user_name"], middleware.DefaultRequester)
	}
}

func TestCancelEndpoint(t *testing.T) {
	eng := newTestEngine()

	rec := request(t, eng, http.MethodPost, "/api/reservations", "alice",
		`{"room_id":1,"date":"2025-10-24","start_time":"09:00","end_time":"10:00"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("setup create failed: %d", rec.Code)
	}

	// A different caller may not cancel alice's booking.
	rec = request(t, eng, http.MethodDelete, "/api/reservations/1", "mallory", "")
	if rec.Code != http.StatusForbidden {
		t.Errorf("foreign cancel status = %d, want 403", rec.Code)
	}

	rec = request(t, eng, http.MethodDelete, "/api/reservations/1", "alice", "")
	if rec.Code != http.StatusOK {
		t.Errorf("owner cancel status = %d, want 200\nbody: %s", rec.Code, rec.Body.String())
	}

	rec = request(t, eng, http.MethodDelete, "/api/reservations/1", "alice", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("repeat cancel status = %d, want 404", rec.Code)
	}

	rec = request(t, eng, http.MethodDelete, "/api/reservations/zero", "alice", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", rec.Code)
	}
}

func TestListEndpoints(t *testing.T) {
	eng := newTestEngine()

	for _, body := range []string{
		`{"room_id":1,"date":"2025-10-24","start_time":"09:00","end_time":"10:00"}`,
		`{"room_id":2,"date":"2025-10-24","start_time":"11:00","end_time":"12:00"}`,
	} {
		if rec := request(t, eng, http.MethodPost, "/api/reservations", "alice", body); rec.Code != http.StatusCreated {
			t.Fatalf("setup create failed: %d", rec.Code)
		}
	}
	if rec := request(t, eng, http.MethodPost, "/api/reservations", "bob",
		`{"room_id":1,"date":"2025-10-24","start_time":"13:00","end_time":"14:00"}`); rec.Code != http.StatusCreated {
		t.Fatalf("setup create failed: %d", rec.Code)
	}

	rec := request(t, eng, http.MethodGet, "/api/reservations/2025-10-24", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("day listing status = %d", rec.Code)
	}
	list, _ := decode(t, rec)["reservations"].([]any)
	if len(list) != 3 {
		t.Errorf("day listing has %d entries, want 3", len(list))
	}

	rec = request(t, eng, http.MethodGet, "/api/my-reservations", "bob", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("my-reservations status = %d", rec.Code)
	}
	body := decode(t, rec)
	if body["user_name"] != "bob" {
		t.Errorf("user_name = %v, want bob", body["user_name"])
	}
	mine, _ := body["reservations"].([]any)
	if len(mine) != 1 {
		t.Errorf("bob has %d reservations, want 1", len(mine))
	}

	rec = request(t, eng, http.MethodGet, "/api/reservations/not-a-date", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad date status = %d, want 400", rec.Code)
	}
}

func TestRoomEndpoints(t *testing.T) {
	eng := newTestEngine()

	rec := request(t, eng, http.MethodGet, "/api/rooms", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("rooms status = %d", rec.Code)
	}
	rooms, _ := decode(t, rec)["rooms"].([]any)
	if len(rooms) != 2 {
		t.Errorf("catalog has %d rooms, want 2", len(rooms))
	}

	// Book Room A, then the same slot should only offer Room B.
	if rec := request(t, eng, http.MethodPost, "/api/reservations", "alice",
		`{"room_id":1,"date":"2025-10-24","start_time":"10:00","end_time":"11:00"}`); rec.Code != http.StatusCreated {
		t.Fatalf("setup create failed: %d", rec.Code)
	}

	rec = request(t, eng, http.MethodGet,
		"/api/rooms/available?date=2025-10-24&start_time=10:00&duration_minutes=60", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("availability status = %d\nbody: %s", rec.Code, rec.Body.String())
	}
	free, _ := decode(t, rec)["rooms"].([]any)
	if len(free) != 1 {
		t.Fatalf("%d rooms free, want 1", len(free))
	}
	room, _ := free[0].(map[string]any)
	if room["name"] != "Room B" {
		t.Errorf("free room = %v, want Room B", room)
	}

	rec = request(t, eng, http.MethodGet,
		"/api/rooms/available?date=2025-10-24&start_time=10:00&duration_minutes=abc", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad duration status = %d, want 400", rec.Code)
	}
}

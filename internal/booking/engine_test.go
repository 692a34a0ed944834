package booking

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/inoryu-os/ai-reservation-system/internal/clock"
	"github.com/inoryu-os/ai-reservation-system/internal/model"
	"github.com/inoryu-os/ai-reservation-system/internal/repository"
)

// memStore is an in-memory store implementing both RoomStore and
// ReservationStore.  A single mutex around CreateIfFree and Delete gives
// the same check-then-act atomicity the SQL transactions provide.
type memStore struct {
	mu           sync.Mutex
	rooms        []model.Room
	nextID       uint64
	reservations map[uint64]model.Reservation
}

func newMemStore(rooms ...model.Room) *memStore {
	return &memStore{rooms: rooms, nextID: 1, reservations: make(map[uint64]model.Reservation)}
}

func (s *memStore) List(ctx context.Context) ([]model.Room, error) {
	out := make([]model.Room, len(s.rooms))
	copy(out, s.rooms)
	return out, nil
}

func (s *memStore) CreateIfFree(ctx context.Context, res *model.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var room *model.Room
	for i := range s.rooms {
		if s.rooms[i].ID == res.RoomID {
			room = &s.rooms[i]
			break
		}
	}
	if room == nil {
		return repository.ErrRoomNotFound
	}
	for _, r := range s.reservations {
		if r.RoomID == res.RoomID && r.StartTime.Before(res.EndTime) && res.StartTime.Before(r.EndTime) {
			return repository.ErrConflict
		}
	}
	res.ID = s.nextID
	s.nextID++
	res.RoomName = room.Name
	res.CreatedAt = time.Now()
	s.reservations[res.ID] = *res
	return nil
}

func (s *memStore) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	if !ok {
		return nil, repository.ErrReservationNotFound
	}
	return &r, nil
}

func (s *memStore) Delete(ctx context.Context, id uint64, requester string) error {
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

func (s *memStore) ListBetween(ctx context.Context, from, to time.Time) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Reservation
	for _, r := range s.reservations {
		if !r.StartTime.Before(from) && r.StartTime.Before(to) {
			out = append(out, r)
		}
	}
	sortReservations(out)
	return out, nil
}

func (s *memStore) ListByRequester(ctx context.Context, requester string, from, to *time.Time) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Reservation
	for _, r := range s.reservations {
		if r.Requester != requester {
			continue
		}
		if from != nil && to != nil && (r.StartTime.Before(*from) || !r.StartTime.Before(*to)) {
			continue
		}
		out = append(out, r)
	}
	sortReservations(out)
	return out, nil
}

func (s *memStore) BookedRoomIDs(ctx context.Context, start, end time.Time) (map[uint64]bool, error) {
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

func sortReservations(rs []model.Reservation) {
	sort.Slice(rs, func(i, j int) bool {
		if !rs[i].StartTime.Equal(rs[j].StartTime) {
			return rs[i].StartTime.Before(rs[j].StartTime)
		}
		return rs[i].RoomID < rs[j].RoomID
	})
}

func newTestEngine(ownerCheck bool, rooms ...model.Room) (*Engine, *memStore) {
	store := newMemStore(rooms...)
	clk := clock.New(9)
	eng := NewEngine(store, store, clk, Hours{Open: 7, Close: 22}, ownerCheck)
	return eng, store
}

var testRooms = []model.Room{
	{ID: 1, Name: "Room A", Capacity: 4},
	{ID: 2, Name: "Room B", Capacity: 6},
}

func TestCreateThenOverlapThenAdjacent(t *testing.T) {
	eng, _ := newTestEngine(true, testRooms...)
	ctx := context.Background()

	first, err := eng.Create(ctx, 1, "alice", "2025-10-24", "09:00", "10:00")
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if first.ID == 0 || first.RoomName != "Room A" {
		t.Errorf("first = %+v, want assigned id and room name", first)
	}

	if _, err := eng.Create(ctx, 1, "bob", "2025-10-24", "09:30", "10:30"); !IsKind(err, KindConflict) {
		t.Errorf("overlapping create err = %v, want %s", err, KindConflict)
	}

	// Back-to-back with the first booking must succeed.
	if _, err := eng.Create(ctx, 1, "bob", "2025-10-24", "10:00", "11:00"); err != nil {
		t.Errorf("adjacent create failed: %v", err)
	}

	// The same slot on another room is free.
	if _, err := eng.Create(ctx, 2, "carol", "2025-10-24", "09:00", "10:00"); err != nil {
		t.Errorf("create on other room failed: %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	eng, _ := newTestEngine(true, testRooms...)
	ctx := context.Background()

	cases := []struct {
		name      string
		roomID    uint64
		requester string
		date      string
		start     string
		end       string
		kind      Kind
	}{
		{"before opening", 1, "alice", "2025-10-24", "06:30", "08:00", KindOutOfHours},
		{"ends after closing", 1, "alice", "2025-10-24", "21:30", "22:30", KindOutOfHours},
		{"end before start", 1, "alice", "2025-10-24", "10:00", "09:00", KindOrdering},
		{"zero length", 1, "alice", "2025-10-24", "10:00", "10:00", KindOrdering},
		{"bad date", 1, "alice", "october 24", "09:00", "10:00", KindFormat},
		{"bad time", 1, "alice", "2025-10-24", "nine", "10:00", KindFormat},
		{"no requester", 1, "", "2025-10-24", "09:00", "10:00", KindMissingField},
		{"no date", 1, "alice", "", "09:00", "10:00", KindMissingField},
		{"unknown room", 99, "alice", "2025-10-24", "09:00", "10:00", KindNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := eng.Create(ctx, tc.roomID, tc.requester, tc.date, tc.start, tc.end)
			if !IsKind(err, tc.kind) {
				t.Errorf("Create err = %v, want kind %s", err, tc.kind)
			}
		})
	}
}

func TestConcurrentCreateExactlyOneWins(t *testing.T) {
	eng, store := newTestEngine(true, testRooms...)
	ctx := context.Background()

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = eng.Create(ctx, 1, "user", "2025-10-24", "09:00", "10:00")
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case IsKind(err, KindConflict):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("%d creates succeeded, want exactly 1", wins)
	}
	if got := len(store.reservations); got != 1 {
		t.Errorf("store holds %d reservations, want 1", got)
	}
}

func TestListByDate(t *testing.T) {
	eng, _ := newTestEngine(true, testRooms...)
	ctx := context.Background()

	mustCreate(t, eng, 2, "bob", "2025-10-24", "09:00", "10:00")
	mustCreate(t, eng, 1, "alice", "2025-10-24", "09:00", "10:00")
	mustCreate(t, eng, 1, "alice", "2025-10-25", "09:00", "10:00")

	got, err := eng.ListByDate(ctx, "2025-10-24")
	if err != nil {
		t.Fatalf("ListByDate failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListByDate returned %d reservations, want 2", len(got))
	}
	// Equal starts order by room id.
	if got[0].RoomID != 1 || got[1].RoomID != 2 {
		t.Errorf("order = rooms %d,%d, want 1,2", got[0].RoomID, got[1].RoomID)
	}

	empty, err := eng.ListByDate(ctx, "2025-12-01")
	if err != nil {
		t.Fatalf("ListByDate on empty day failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("empty day returned %d reservations", len(empty))
	}

	if _, err := eng.ListByDate(ctx, "not-a-date"); !IsKind(err, KindFormat) {
		t.Errorf("bad date err = %v, want %s", err, KindFormat)
	}
}

func TestListByRequester(t *testing.T) {
	eng, _ := newTestEngine(true, testRooms...)
	ctx := context.Background()

	mustCreate(t, eng, 1, "alice", "2025-10-24", "09:00", "10:00")
	mustCreate(t, eng, 2, "alice", "2025-10-25", "09:00", "10:00")
	mustCreate(t, eng, 1, "bob", "2025-10-24", "11:00", "12:00")

	all, err := eng.ListByRequester(ctx, "alice", "")
	if err != nil {
		t.Fatalf("ListByRequester failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("alice has %d reservations, want 2", len(all))
	}

	day, err := eng.ListByRequester(ctx, "alice", "2025-10-24")
	if err != nil {
		t.Fatalf("ListByRequester with date failed: %v", err)
	}
	if len(day) != 1 || day[0].RoomID != 1 {
		t.Errorf("narrowed result = %+v, want alice's room 1 booking", day)
	}

	if _, err := eng.ListByRequester(ctx, "", ""); !IsKind(err, KindMissingField) {
		t.Errorf("empty requester err = %v, want %s", err, KindMissingField)
	}
}

func TestCancel(t *testing.T) {
	eng, _ := newTestEngine(true, testRooms...)
	ctx := context.Background()

	res := mustCreate(t, eng, 1, "alice", "2025-10-24", "09:00", "10:00")

	if _, err := eng.Cancel(ctx, res.ID, "mallory"); !IsKind(err, KindForbidden) {
		t.Errorf("foreign cancel err = %v, want %s", err, KindForbidden)
	}

	freed, err := eng.Cancel(ctx, res.ID, "alice")
	if err != nil {
		t.Fatalf("owner cancel failed: %v", err)
	}
	if freed.ID != res.ID {
		t.Errorf("freed id = %d, want %d", freed.ID, res.ID)
	}
	// The returned reservation describes the slot that was freed.
	if freed.RoomName != "Room A" || !freed.StartTime.Equal(res.StartTime) {
		t.Errorf("freed reservation = %+v, want the cancelled booking's details", freed)
	}

	// Second cancel races with nothing to remove.
	if _, err := eng.Cancel(ctx, res.ID, "alice"); !IsKind(err, KindNotFound) {
		t.Errorf("repeat cancel err = %v, want %s", err, KindNotFound)
	}

	// The slot is bookable again.
	if _, err := eng.Create(ctx, 1, "bob", "2025-10-24", "09:00", "10:00"); err != nil {
		t.Errorf("rebooking freed slot failed: %v", err)
	}
}

func TestCancelWithoutOwnerCheck(t *testing.T) {
	eng, _ := newTestEngine(false, testRooms...)
	ctx := context.Background()

	res := mustCreate(t, eng, 1, "alice", "2025-10-24", "09:00", "10:00")
	if _, err := eng.Cancel(ctx, res.ID, "mallory"); err != nil {
		t.Errorf("cancel with ownership policy off failed: %v", err)
	}
}

func TestFindAvailableRooms(t *testing.T) {
	eng, _ := newTestEngine(true, testRooms...)
	ctx := context.Background()

	mustCreate(t, eng, 1, "alice", "2025-10-24", "10:00", "11:00")

	free, err := eng.FindAvailableRooms(ctx, "2025-10-24", "10:00", 60)
	if err != nil {
		t.Fatalf("FindAvailableRooms failed: %v", err)
	}
	if len(free) != 1 || free[0].ID != 2 {
		t.Errorf("free rooms = %+v, want only Room B", free)
	}

	// Back-to-back probe right after the booking frees Room A again.
	free, err = eng.FindAvailableRooms(ctx, "2025-10-24", "11:00", 60)
	if err != nil {
		t.Fatalf("FindAvailableRooms failed: %v", err)
	}
	if len(free) != 2 {
		t.Errorf("free rooms after the booking = %d, want 2", len(free))
	}

	if _, err := eng.FindAvailableRooms(ctx, "2025-10-24", "10:00", 0); !IsKind(err, KindDuration) {
		t.Errorf("zero duration err = %v, want %s", err, KindDuration)
	}
	if _, err := eng.FindAvailableRooms(ctx, "2025-10-24", "10:00", -30); !IsKind(err, KindDuration) {
		t.Errorf("negative duration err = %v, want %s", err, KindDuration)
	}
	// 21:30 + 60min ends past closing.
	if _, err := eng.FindAvailableRooms(ctx, "2025-10-24", "21:30", 60); !IsKind(err, KindOutOfHours) {
		t.Errorf("late probe err = %v, want %s", err, KindOutOfHours)
	}
	if _, err := eng.FindAvailableRooms(ctx, "2025-10-24", "bad", 60); !IsKind(err, KindFormat) {
		t.Errorf("bad start err = %v, want %s", err, KindFormat)
	}
}

func mustCreate(t *testing.T, eng *Engine, roomID uint64, requester, date, start, end string) *model.Reservation {
	t.Helper()
	res, err := eng.Create(context.Background(), roomID, requester, date, start, end)
	if err != nil {
		t.Fatalf("Create(%d, %s, %s, %s-%s) failed: %v", roomID, requester, date, start, end, err)
	}
	return res
}

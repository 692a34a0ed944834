package booking

import (
    "context"
    "errors"
    "fmt"
    "time"

    "github.com/inoryu-os/ai-reservation-system/internal/clock"
    "github.com/inoryu-os/ai-reservation-system/internal/model"
    "github.com/inoryu-os/ai-reservation-system/internal/repository"
)

// RoomStore is the catalog access the engine needs.  The catalog is
// read-only at request time.
type RoomStore interface {
    List(ctx context.Context) ([]model.Room, error)
}

// ReservationStore is the reservation persistence the engine needs.
// CreateIfFree and Delete are the atomic units: the conflict check plus
// insert, and the existence/ownership check plus delete, each happen
// inside a single storage transaction.  Implementations signal expected
// failures with the repository sentinel errors.
type ReservationStore interface {
    CreateIfFree(ctx context.Context, res *model.Reservation) error
    GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
    Delete(ctx context.Context, id uint64, requester string) error
    ListBetween(ctx context.Context, from, to time.Time) ([]model.Reservation, error)
    ListByRequester(ctx context.Context, requester string, from, to *time.Time) ([]model.Reservation, error)
    BookedRoomIDs(ctx context.Context, start, end time.Time) (map[uint64]bool, error)
}

// Engine orchestrates validation, conflict detection and persistence for
// reservation operations.  It owns the business rules; concurrency
// correctness is delegated to the store's transactional operations.
type Engine struct {
    rooms        RoomStore
    reservations ReservationStore
    clk          *clock.Clock
    hours        Hours
    ownerCheck   bool
}

// NewEngine constructs an Engine.  ownerCheck selects the cancel policy:
// when true, cancelling requires the requester to match the original
// booker.
func NewEngine(rooms RoomStore, reservations ReservationStore, clk *clock.Clock, hours Hours, ownerCheck bool) *Engine {
    if rooms == nil || reservations == nil || clk == nil {
        panic("nil dependency passed to NewEngine")
    }
    return &Engine{rooms: rooms, reservations: reservations, clk: clk, hours: hours, ownerCheck: ownerCheck}
}

// Clock exposes the engine's time normalizer so callers (handlers, the
// assistant) format instants consistently.
func (e *Engine) Clock() *clock.Clock { return e.clk }

// Hours exposes the configured business window.
func (e *Engine) Hours() Hours { return e.hours }

// Rooms returns the room catalog ordered by id.
func (e *Engine) Rooms(ctx context.Context) ([]model.Room, error) {
    rooms, err := e.rooms.List(ctx)
    if err != nil {
        return nil, storageError(err)
    }
    return rooms, nil
}

// Create validates the request, normalizes the strings to instants and
// asks the store to atomically check for conflicts and insert.  The
// returned reservation carries the generated id and the resolved room
// display name.  A reservation only ever comes into existence through
// this path.
func (e *Engine) Create(ctx context.Context, roomID uint64, requester, date, start, end string) (*model.Reservation, error) {
    if requester == "" {
        return nil, newError(KindMissingField, "requester is required")
    }
    if err := Validate(roomID, date, start, end, e.hours); err != nil {
        return nil, err
    }
    startAt, err := e.clk.Parse(date, start)
    if err != nil {
        return nil, newError(KindFormat, fmt.Sprintf("date %q must be YYYY-MM-DD", date))
    }
    endAt, err := e.clk.Parse(date, end)
    if err != nil {
        return nil, newError(KindFormat, fmt.Sprintf("end time %q must be HH:MM", end))
    }

    res := &model.Reservation{
        RoomID:    roomID,
        Requester: requester,
        StartTime: startAt,
        EndTime:   endAt,
    }
    if err := e.reservations.CreateIfFree(ctx, res); err != nil {
        switch {
        case errors.Is(err, repository.ErrRoomNotFound):
            return nil, newError(KindNotFound, fmt.Sprintf("room %d does not exist", roomID))
        case errors.Is(err, repository.ErrConflict):
            return nil, newError(KindConflict, "the requested time slot is already reserved")
        default:
            return nil, storageError(err)
        }
    }
    return res, nil
}

// ListByDate returns every reservation starting on the given calendar
// day, across all rooms, ordered by start instant then room id.  The day
// is resolved to an instant range in the anchored zone.
func (e *Engine) ListByDate(ctx context.Context, date string) ([]model.Reservation, error) {
    from, to, err := e.clk.DayRange(date)
    if err != nil {
        return nil, newError(KindFormat, fmt.Sprintf("date %q must be YYYY-MM-DD", date))
    }
    out, err := e.reservations.ListBetween(ctx, from, to)
    if err != nil {
        return nil, storageError(err)
    }
    return out, nil
}

// ListByRequester returns the requester's reservations ordered by start
// instant.  A non-empty date narrows the result to that calendar day.
func (e *Engine) ListByRequester(ctx context.Context, requester, date string) ([]model.Reservation, error) {
    if requester == "" {
        return nil, newError(KindMissingField, "requester is required")
    }
    var from, to *time.Time
    if date != "" {
        f, t, err := e.clk.DayRange(date)
        if err != nil {
            return nil, newError(KindFormat, fmt.Sprintf("date %q must be YYYY-MM-DD", date))
        }
        from, to = &f, &t
    }
    out, err := e.reservations.ListByRequester(ctx, requester, from, to)
    if err != nil {
        return nil, storageError(err)
    }
    return out, nil
}

// Cancel deletes the reservation with the given id and returns the
// removed reservation so callers can report what was freed.  With the
// ownership policy active the requester must match the original booker.
// The read happens before the delete purely to enrich the result;
// existence and ownership are still re-validated inside the store's
// delete transaction, so a lost race with another cancel reports
// not-found.
func (e *Engine) Cancel(ctx context.Context, id uint64, requester string) (*model.Reservation, error) {
    res, err := e.reservations.GetByID(ctx, id)
    if err != nil {
        if errors.Is(err, repository.ErrReservationNotFound) {
            return nil, newError(KindNotFound, fmt.Sprintf("reservation %d does not exist", id))
        }
        return nil, storageError(err)
    }

    owner := ""
    if e.ownerCheck {
        owner = requester
    }
    if err := e.reservations.Delete(ctx, id, owner); err != nil {
        switch {
        case errors.Is(err, repository.ErrReservationNotFound):
            return nil, newError(KindNotFound, fmt.Sprintf("reservation %d does not exist", id))
        case errors.Is(err, repository.ErrForbidden):
            return nil, newError(KindForbidden, "only the requester who booked a reservation can cancel it")
        default:
            return nil, storageError(err)
        }
    }
    return res, nil
}

// FindAvailableRooms computes end = start + durationMinutes and returns
// every room in the catalog with no reservation overlapping the
// candidate interval, ordered by room id.  The availability query is
// read-only and reserves nothing.
func (e *Engine) FindAvailableRooms(ctx context.Context, date, start string, durationMinutes int) ([]model.Room, error) {
    if durationMinutes <= 0 {
        return nil, newError(KindDuration, "duration must be a positive number of minutes")
    }
    startAt, err := e.clk.Parse(date, start)
    if err != nil {
        return nil, newError(KindFormat, "date must be YYYY-MM-DD and start time HH:MM")
    }
    endAt := startAt.Add(time.Duration(durationMinutes) * time.Minute)
    if !e.withinHours(startAt, endAt) {
        return nil, newError(KindOutOfHours,
            fmt.Sprintf("the requested interval leaves the %02d:00-%02d:00 business window", e.hours.Open, e.hours.Close))
    }

    booked, err := e.reservations.BookedRoomIDs(ctx, startAt, endAt)
    if err != nil {
        return nil, storageError(err)
    }
    rooms, err := e.rooms.List(ctx)
    if err != nil {
        return nil, storageError(err)
    }
    free := make([]model.Room, 0, len(rooms))
    for _, rm := range rooms {
        if !booked[rm.ID] {
            free = append(free, rm)
        }
    }
    return free, nil
}

// withinHours reports whether [start, end) stays inside the business
// window of start's calendar day.  An interval spilling into the next
// day is out of hours by definition.
func (e *Engine) withinHours(start, end time.Time) bool {
    if e.clk.FormatDate(start) != e.clk.FormatDate(end) {
        return false
    }
    loc := e.clk.Location()
    s := start.In(loc)
    t := end.In(loc)
    startMin := s.Hour()*60 + s.Minute()
    endMin := t.Hour()*60 + t.Minute()
    return startMin >= e.hours.Open*60 && endMin <= e.hours.Close*60
}

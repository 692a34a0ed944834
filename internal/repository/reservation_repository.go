package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/inoryu-os/ai-reservation-system/internal/model"
)

// ReservationRepo provides persistence for reservations.  Each
// reservation binds a room to a half-open interval [start_time,
// end_time).  All instants are stored in UTC; conversion to the display
// zone happens in the clock at the boundary.  The reservations table is
// the only shared mutable state in the service, so everything that must
// be atomic lives here.
type ReservationRepo struct {
    db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// CreateIfFree inserts the reservation only if its interval does not
// overlap any existing reservation on the same room.  The conflict check
// and the insert run in a single transaction that first locks the room
// row with SELECT ... FOR UPDATE, so two concurrent calls targeting the
// same room serialize and exactly one of two overlapping requests can
// succeed.  Calls for different rooms lock different rows and do not
// block each other.
//
// On success the generated id and timestamps are populated on res.  It
// returns ErrRoomNotFound when the room id is unknown and ErrConflict
// when an overlap exists.
func (r *ReservationRepo) CreateIfFree(ctx context.Context, res *model.Reservation) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    // Lock the room row for the duration of the check-then-insert.  This
    // also re-validates that the room still exists inside the transaction.
    const lockQ = `SELECT name FROM rooms WHERE id = ? FOR UPDATE`
    if err := tx.QueryRowContext(ctx, lockQ, res.RoomID).Scan(&res.RoomName); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return ErrRoomNotFound
        }
        return err
    }

    // Half-open overlap: existing.start < candidate.end AND existing.end
    // > candidate.start.  Filtering is by instant range only; intervals
    // crossing midnight are still caught.
    const overlapQ = `SELECT EXISTS (
                        SELECT 1 FROM reservations
                        WHERE room_id = ? AND start_time < ? AND end_time > ?
                      )`
    var conflict bool
    if err := tx.QueryRowContext(ctx, overlapQ,
        res.RoomID, res.EndTime.UTC(), res.StartTime.UTC()).Scan(&conflict); err != nil {
        return err
    }
    if conflict {
        return ErrConflict
    }

    const insQ = `INSERT INTO reservations (room_id, user_name, start_time, end_time) VALUES (?, ?, ?, ?)`
    result, err := tx.ExecContext(ctx, insQ,
        res.RoomID, res.Requester, res.StartTime.UTC(), res.EndTime.UTC())
    if err != nil {
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    res.ID = uint64(id)

    // Query back the row to populate the DB-assigned creation timestamp.
    const sel = `SELECT created_at FROM reservations WHERE id = ?`
    if err := tx.QueryRowContext(ctx, sel, res.ID).Scan(&res.CreatedAt); err != nil {
        return err
    }

    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// GetByID returns a single reservation with its room name joined in.
// ErrReservationNotFound is returned when no row exists.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
    const q = `SELECT r.id, r.room_id, rm.name, r.user_name, r.start_time, r.end_time, r.created_at
               FROM reservations r
               JOIN rooms rm ON rm.id = r.room_id
               WHERE r.id = ?`
    var m model.Reservation
    err := r.db.QueryRowContext(ctx, q, id).Scan(
        &m.ID, &m.RoomID, &m.RoomName, &m.Requester, &m.StartTime, &m.EndTime, &m.CreatedAt)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrReservationNotFound
        }
        return nil, err
    }
    return &m, nil
}

// Delete removes a reservation by id, optionally enforcing that it was
// booked by requester.  Existence and ownership are checked inside the
// delete transaction so a cancel racing with another cancel simply
// reports ErrReservationNotFound.  When requester is non-empty and does
// not match the stored booker, ErrForbidden is returned and nothing is
// deleted.
func (r *ReservationRepo) Delete(ctx context.Context, id uint64, requester string) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    const q = `SELECT user_name FROM reservations WHERE id = ? FOR UPDATE`
    var owner string
    if err := tx.QueryRowContext(ctx, q, id).Scan(&owner); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return ErrReservationNotFound
        }
        return err
    }
    if requester != "" && owner != requester {
        return ErrForbidden
    }

    if _, err := tx.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// ListBetween returns every reservation whose start instant falls in the
// half-open range [from, to), across all rooms, ordered by start instant
// then room id.  Day listings are built on this; matching is by instant
// range, never by formatting dates back to strings.
func (r *ReservationRepo) ListBetween(ctx context.Context, from, to time.Time) ([]model.Reservation, error) {
    const q = `SELECT r.id, r.room_id, rm.name, r.user_name, r.start_time, r.end_time, r.created_at
               FROM reservations r
               JOIN rooms rm ON rm.id = r.room_id
               WHERE r.start_time >= ? AND r.start_time < ?
               ORDER BY r.start_time ASC, r.room_id ASC`
    return r.queryList(ctx, q, from.UTC(), to.UTC())
}

// ListByRequester returns the reservations booked under the given
// requester name, ordered by start instant ascending.  When from/to are
// non-nil the result is narrowed to starts within [from, to).
func (r *ReservationRepo) ListByRequester(ctx context.Context, requester string, from, to *time.Time) ([]model.Reservation, error) {
    q := `SELECT r.id, r.room_id, rm.name, r.user_name, r.start_time, r.end_time, r.created_at
          FROM reservations r
          JOIN rooms rm ON rm.id = r.room_id
          WHERE r.user_name = ?`
    args := []interface{}{requester}
    if from != nil && to != nil {
        q += ` AND r.start_time >= ? AND r.start_time < ?`
        args = append(args, from.UTC(), to.UTC())
    }
    q += ` ORDER BY r.start_time ASC, r.room_id ASC`
    return r.queryList(ctx, q, args...)
}

// DeleteBetween removes every reservation starting in the half-open
// range [from, to) and reports how many rows were removed.  Used by the
// seeder to clear a day before repopulating it.
func (r *ReservationRepo) DeleteBetween(ctx context.Context, from, to time.Time) (int64, error) {
    const q = `DELETE FROM reservations WHERE start_time >= ? AND start_time < ?`
    result, err := r.db.ExecContext(ctx, q, from.UTC(), to.UTC())
    if err != nil {
        return 0, err
    }
    return result.RowsAffected()
}

// BookedRoomIDs returns the set of room ids that have at least one
// reservation overlapping the half-open candidate interval [start, end).
// Availability queries subtract this set from the catalog.
func (r *ReservationRepo) BookedRoomIDs(ctx context.Context, start, end time.Time) (map[uint64]bool, error) {
    const q = `SELECT DISTINCT room_id FROM reservations
               WHERE start_time < ? AND end_time > ?`
    rows, err := r.db.QueryContext(ctx, q, end.UTC(), start.UTC())
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    booked := make(map[uint64]bool)
    for rows.Next() {
        var id uint64
        if err := rows.Scan(&id); err != nil {
            return nil, err
        }
        booked[id] = true
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return booked, nil
}

// queryList runs a reservation query with bound arguments and scans the
// result rows into models.
func (r *ReservationRepo) queryList(ctx context.Context, q string, args ...interface{}) ([]model.Reservation, error) {
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Reservation, 0)
    for rows.Next() {
        var m model.Reservation
        if err := rows.Scan(&m.ID, &m.RoomID, &m.RoomName, &m.Requester,
            &m.StartTime, &m.EndTime, &m.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, m)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

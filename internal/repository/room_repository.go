package repository // repository holds data access logic for domain entities

import (
    "context"      // context is used to manage deadlines and cancellation
    "database/sql" // sql provides DB primitives
    "strings"

    "github.com/inoryu-os/ai-reservation-system/internal/config"
    "github.com/inoryu-os/ai-reservation-system/internal/model"
)

// RoomRepo provides access to the meeting-room catalog.  The catalog is
// written only by Sync at startup; all request-time access is read-only.
type RoomRepo struct {
    db *sql.DB // db is the underlying database connection
}

// NewRoomRepo constructs a RoomRepo with the given DB handle.
func NewRoomRepo(db *sql.DB) *RoomRepo {
    return &RoomRepo{db: db}
}

// Sync reconciles the rooms table with the configured catalog.  Rooms
// present in the configuration but missing from the database are inserted
// in configuration order so ids stay deterministic; existing rooms get
// their capacity refreshed; rooms present in the
// database but absent from the configuration are deleted, and the foreign
// key cascade removes their reservations.  The whole reconciliation runs
// in one transaction.  It returns the catalog as stored, ordered by id.
func (r *RoomRepo) Sync(ctx context.Context, rooms []config.RoomConfig) ([]model.Room, error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    existing := make(map[string]bool)
    rows, err := tx.QueryContext(ctx, `SELECT name FROM rooms`)
    if err != nil {
        return nil, err
    }
    for rows.Next() {
        var name string
        if err := rows.Scan(&name); err != nil {
            rows.Close()
            return nil, err
        }
        existing[name] = true
    }
    if err := rows.Err(); err != nil {
        rows.Close()
        return nil, err
    }
    rows.Close()

    // Insert configured rooms that are not in the database yet, keeping
    // configuration order.  Rooms that already exist get their capacity
    // refreshed in case the configuration changed.
    for _, rc := range rooms {
        if existing[rc.Name] {
            if _, err := tx.ExecContext(ctx,
                `UPDATE rooms SET capacity = ? WHERE name = ?`, rc.Capacity, rc.Name); err != nil {
                return nil, err
            }
            continue
        }
        if _, err := tx.ExecContext(ctx,
            `INSERT INTO rooms (name, capacity) VALUES (?, ?)`, rc.Name, rc.Capacity); err != nil {
            return nil, err
        }
    }

    // Delete rooms no longer configured.  ON DELETE CASCADE removes their
    // reservations together with the room.
    configured := make(map[string]bool, len(rooms))
    for _, rc := range rooms {
        configured[rc.Name] = true
    }
    var stale []interface{}
    var placeholders []string
    for name := range existing {
        if !configured[name] {
            stale = append(stale, name)
            placeholders = append(placeholders, "?")
        }
    }
    if len(stale) > 0 {
        q := `DELETE FROM rooms WHERE name IN (` + strings.Join(placeholders, ",") + `)`
        if _, err := tx.ExecContext(ctx, q, stale...); err != nil {
            return nil, err
        }
    }

    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    return r.List(ctx)
}

// List returns every room in the catalog ordered by id ascending.
func (r *RoomRepo) List(ctx context.Context) ([]model.Room, error) {
    const q = `SELECT id, name, capacity FROM rooms ORDER BY id ASC`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Room, 0)
    for rows.Next() {
        var m model.Room
        if err := rows.Scan(&m.ID, &m.Name, &m.Capacity); err != nil {
            return nil, err
        }
        out = append(out, m)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

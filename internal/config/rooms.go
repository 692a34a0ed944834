package config

// rooms.go loads the static meeting-room catalog.  The catalog is process
// configuration, not user data: on startup the database is synced to match
// it (rooms are added or removed, removals cascade to their reservations).

import (
    "encoding/json"
    "log"
    "os"
)

// RoomConfig describes one meeting room in the catalog.
type RoomConfig struct {
    Name     string `json:"name"`     // unique display name of the room
    Capacity uint32 `json:"capacity"` // number of seats
}

// defaultRooms is used when ROOMS_CONFIG is not set.  It mirrors the
// catalog the service has shipped with historically.
var defaultRooms = []RoomConfig{
    {Name: "Room A", Capacity: 4},
    {Name: "Room B", Capacity: 6},
    {Name: "Room C", Capacity: 8},
    {Name: "Room D", Capacity: 12},
}

// LoadRooms reads the room catalog from the ROOMS_CONFIG environment
// variable, a JSON array like [{"name":"Room A","capacity":4}, ...].
// Order is preserved so insertion order in the database is deterministic.
// A malformed value or an empty catalog is a fatal configuration error;
// an unset variable falls back to the default catalog.
func LoadRooms() []RoomConfig {
    raw := os.Getenv("ROOMS_CONFIG")
    if raw == "" {
        out := make([]RoomConfig, len(defaultRooms))
        copy(out, defaultRooms)
        return out
    }
    var rooms []RoomConfig
    if err := json.Unmarshal([]byte(raw), &rooms); err != nil {
        log.Fatalf("invalid ROOMS_CONFIG: %v", err)
    }
    if len(rooms) == 0 {
        log.Fatal("ROOMS_CONFIG must list at least one room")
    }
    for _, r := range rooms {
        if r.Name == "" || r.Capacity == 0 {
            log.Fatalf("invalid room in ROOMS_CONFIG: %+v", r)
        }
    }
    return rooms
}

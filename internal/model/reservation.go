package model

import "time"

// Reservation records a booking of one room for a half-open time
// interval [StartTime, EndTime).  For a fixed room no two reservations
// may overlap; back-to-back bookings (one ending exactly when another
// starts) are allowed.  There is no update-in-place: changing a booking
// is cancel-then-recreate.
//
// Fields:
//  ID        – primary key identifier, assigned on creation.
//  RoomID    – room being reserved.
//  RoomName  – display name of the room, populated by joins on read.
//  Requester – free-form identity of whoever booked (unauthenticated).
//  StartTime – inclusive start instant.
//  EndTime   – exclusive end instant; always after StartTime.
//  CreatedAt – creation timestamp.
type Reservation struct {
    ID        uint64    // reservations.id
    RoomID    uint64    // reservations.room_id
    RoomName  string    // rooms.name (joined)
    Requester string    // reservations.user_name
    StartTime time.Time // reservations.start_time
    EndTime   time.Time // reservations.end_time
    CreatedAt time.Time // reservations.created_at
}

package model

// Room represents one meeting room in the catalog.  Rooms come from
// static configuration and are synced into the database at startup;
// outside that sync they are read-only.  Deleting a room cascades to its
// reservations.
//
// Fields:
//  ID       – primary key identifier.
//  Name     – unique display name of the room.
//  Capacity – number of seats in the room.
type Room struct {
    ID       uint64 `json:"id"`       // rooms.id
    Name     string `json:"name"`     // rooms.name
    Capacity uint32 `json:"capacity"` // rooms.capacity
}

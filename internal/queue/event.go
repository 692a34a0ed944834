// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names used by the publisher and the logging consumer.
const (
    CreatedQueueName   = "reservation.created"
    CancelledQueueName = "reservation.cancelled"
)

// ReservationCreatedEvent is published after a reservation commits.  It
// carries enough information for downstream consumers to log or notify
// without querying the primary database.  Times are rendered in the
// service's display zone.
type ReservationCreatedEvent struct {
    ReservationID uint64 `json:"reservation_id"`
    RoomID        uint64 `json:"room_id"`
    RoomName      string `json:"room_name"`
    Requester     string `json:"user_name"`
    Date          string `json:"date"`
    StartTime     string `json:"start_time"`
    EndTime       string `json:"end_time"`
    CreatedAt     string `json:"created_at"`
}

// ReservationCancelledEvent is published after a reservation is deleted.
// It carries the same room and interval details as the created event so
// the activity log shows which slot was freed.
type ReservationCancelledEvent struct {
    ReservationID uint64 `json:"reservation_id"`
    RoomID        uint64 `json:"room_id"`
    RoomName      string `json:"room_name"`
    Requester     string `json:"user_name"`
    Date          string `json:"date"`
    StartTime     string `json:"start_time"`
    EndTime       string `json:"end_time"`
    CancelledAt   string `json:"cancelled_at"`
}

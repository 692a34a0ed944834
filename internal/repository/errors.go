// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// reservation engine to distinguish between different failure scenarios
// without inspecting driver-specific errors. For example, ErrConflict
// signals that an insert would overlap an existing booking, while
// ErrRoomNotFound and ErrReservationNotFound indicate stale or unknown
// identifiers supplied by the caller.
package repository

import "errors"

// ErrRoomNotFound is returned when a room lookup fails.
var ErrRoomNotFound = errors.New("room not found")

// ErrReservationNotFound is returned when a reservation lookup or delete
// targets an id that does not exist. A delete racing with another cancel
// reports this rather than failing loudly.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrForbidden is returned when the caller attempts an operation on a
// reservation booked under a different requester name while the
// ownership policy is active.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an insert cannot proceed because the
// requested interval overlaps an existing reservation on the same room.
// The engine translates this into its conflict error kind.
var ErrConflict = errors.New("reservation conflict")

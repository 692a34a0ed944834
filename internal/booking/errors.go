// Package booking implements the reservation consistency engine: input
// validation, conflict detection, availability computation and the
// orchestration of atomic create/cancel operations against the store.
package booking

import (
    "errors"
    "fmt"
)

// Kind is a stable, machine-readable classification of a reservation
// failure.  Handlers map kinds to HTTP statuses; the assistant maps them
// to conversational replies.  The human-readable message travels next to
// the kind and is safe to show to end users.
type Kind string

const (
    KindMissingField Kind = "missing_field" // a required field is absent or empty
    KindFormat       Kind = "format"        // date or time string does not match its layout
    KindOutOfHours   Kind = "out_of_hours"  // interval leaves the configured business window
    KindOrdering     Kind = "ordering"      // end is not after start
    KindConflict     Kind = "conflict"      // interval overlaps an existing reservation
    KindNotFound     Kind = "not_found"     // unknown room or reservation id
    KindDuration     Kind = "duration"      // non-positive duration
    KindForbidden    Kind = "forbidden"     // requester does not own the reservation
    KindStorage      Kind = "storage"       // underlying persistence failure
)

// Error carries a kind plus a human-readable message.  Validation and
// conflict errors are expected, recoverable conditions; only KindStorage
// wraps an unexpected lower-level failure.
type Error struct {
    Kind    Kind
    Message string
    cause   error
}

func (e *Error) Error() string {
    if e.cause != nil {
        return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
    }
    return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error { return e.cause }

// newError builds an expected-failure Error with no cause.
func newError(kind Kind, message string) *Error {
    return &Error{Kind: kind, Message: message}
}

// storageError wraps an unexpected persistence failure.
func storageError(cause error) *Error {
    return &Error{Kind: KindStorage, Message: "storage failure", cause: cause}
}

// KindOf extracts the Kind from err.  The second return is false when err
// is not a booking error, in which case callers should treat it as a
// storage-level failure.
func KindOf(err error) (Kind, bool) {
    var be *Error
    if errors.As(err, &be) {
        return be.Kind, true
    }
    return "", false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
    k, ok := KindOf(err)
    return ok && k == kind
}

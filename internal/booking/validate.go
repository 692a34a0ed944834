package booking

import (
    "fmt"
    "time"

    "github.com/inoryu-os/ai-reservation-system/internal/clock"
)

// Hours is the configured daily business window.  A reservation must
// start no earlier than Open o'clock and end no later than Close o'clock
// on its calendar day.
type Hours struct {
    Open  int // first hour a reservation may start (e.g. 7)
    Close int // last hour a reservation may end (e.g. 22)
}

// Validate enforces the request-level invariants for a reservation:
//
//  1. room id, date, start and end are all present;
//  2. start and end parse as 24-hour HH:MM;
//  3. the interval stays inside the business window;
//  4. start is strictly before end.
//
// Validation is pure: it never touches storage and says nothing about
// conflicts.  The window check is minute-precise, so an end of 22:30
// against a closing hour of 22 is rejected even though its hour equals
// the bound.
func Validate(roomID uint64, date, start, end string, hours Hours) error {
    if roomID == 0 || date == "" || start == "" || end == "" {
        return newError(KindMissingField, "room, date, start time and end time are all required")
    }
    startMin, err := minuteOfDay(start)
    if err != nil {
        return newError(KindFormat, fmt.Sprintf("start time %q must be HH:MM", start))
    }
    endMin, err := minuteOfDay(end)
    if err != nil {
        return newError(KindFormat, fmt.Sprintf("end time %q must be HH:MM", end))
    }
    if startMin < hours.Open*60 || endMin > hours.Close*60 {
        return newError(KindOutOfHours,
            fmt.Sprintf("reservations must stay between %02d:00 and %02d:00", hours.Open, hours.Close))
    }
    if startMin >= endMin {
        return newError(KindOrdering, "end time must be after start time")
    }
    return nil
}

// minuteOfDay parses an HH:MM string into minutes since midnight.
func minuteOfDay(s string) (int, error) {
    t, err := time.Parse(clock.TimeLayout, s)
    if err != nil {
        return 0, err
    }
    return t.Hour()*60 + t.Minute(), nil
}

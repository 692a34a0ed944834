package clock // package clock normalizes dates and times of day into zone-anchored instants

import (
    "fmt"
    "time"
)

// Layouts used at the API boundary.  All reservation input and output is
// expressed as a calendar date plus a 24-hour wall-clock time; instants
// exist only inside the service.
const (
    DateLayout = "2006-01-02" // YYYY-MM-DD
    TimeLayout = "15:04"      // HH:MM, 24-hour
)

// slotMinutes is the granularity of the suggestion helpers.  Reservations
// themselves may start on any minute; only the rounding helpers snap.
const slotMinutes = 30

// Clock converts between boundary strings and instants anchored to a
// single fixed UTC offset.  The service deliberately supports exactly one
// zone: every date and HH:MM string is interpreted in it, and every
// instant is rendered back in it.
type Clock struct {
    loc *time.Location
}

// New builds a Clock with a fixed offset from UTC, e.g. 9 for UTC+9.
func New(offsetHours int) *Clock {
    name := fmt.Sprintf("UTC%+d", offsetHours)
    return &Clock{loc: time.FixedZone(name, offsetHours*3600)}
}

// Location exposes the anchored zone for callers that format on their own.
func (c *Clock) Location() *time.Location { return c.loc }

// Now returns the current instant in the anchored zone.
func (c *Clock) Now() time.Time { return time.Now().In(c.loc) }

// Parse combines a calendar date (YYYY-MM-DD) and a time of day (HH:MM)
// into a single instant in the anchored zone.  It fails when either
// string does not match its layout.
func (c *Clock) Parse(date, timeOfDay string) (time.Time, error) {
    t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+timeOfDay, c.loc)
    if err != nil {
        return time.Time{}, fmt.Errorf("invalid date/time %q %q: %w", date, timeOfDay, err)
    }
    return t, nil
}

// ParseDate parses a bare calendar date into midnight of that day in the
// anchored zone.
func (c *Clock) ParseDate(date string) (time.Time, error) {
    t, err := time.ParseInLocation(DateLayout, date, c.loc)
    if err != nil {
        return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
    }
    return t, nil
}

// FormatDate renders an instant as YYYY-MM-DD in the anchored zone.
// FormatDate and FormatTime round-trip with Parse for any instant Parse
// produced.
func (c *Clock) FormatDate(t time.Time) string { return t.In(c.loc).Format(DateLayout) }

// FormatTime renders an instant as HH:MM in the anchored zone.
func (c *Clock) FormatTime(t time.Time) string { return t.In(c.loc).Format(TimeLayout) }

// DayRange returns the half-open instant range [midnight, next midnight)
// covering the given calendar date.  Day filtering must use this range,
// not date-string equality, so bookings are matched by instant.
func (c *Clock) DayRange(date string) (time.Time, time.Time, error) {
    from, err := c.ParseDate(date)
    if err != nil {
        return time.Time{}, time.Time{}, err
    }
    return from, from.AddDate(0, 0, 1), nil
}

// RoundDownToHalfHour zeroes seconds and sub-second precision and snaps
// the minute down to the largest multiple of 30 not after it.
func RoundDownToHalfHour(t time.Time) time.Time {
    return t.Truncate(time.Duration(slotMinutes) * time.Minute)
}

// NextHalfHourSlot returns the first half-hour boundary strictly after t.
// An instant already on a boundary still advances by a full slot, so the
// result is never the input itself.
func NextHalfHourSlot(t time.Time) time.Time {
    return RoundDownToHalfHour(t).Add(time.Duration(slotMinutes) * time.Minute)
}

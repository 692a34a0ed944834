package booking

import (
    "time"

    "github.com/inoryu-os/ai-reservation-system/internal/model"
)

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect.  Two ranges overlap iff aStart < bEnd AND
// bStart < aEnd, which makes back-to-back bookings (one ending exactly
// when the other starts) conflict-free.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
    return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// HasConflict reports whether the candidate interval [start, end) on the
// given room overlaps any reservation in existing.  Reservations for
// other rooms are skipped, so callers may pass an unfiltered set.  The
// comparison is instant-based; no calendar-date pre-filtering happens
// here, so intervals near midnight are handled correctly.
func HasConflict(roomID uint64, start, end time.Time, existing []model.Reservation) bool {
    for _, r := range existing {
        if r.RoomID != roomID {
            continue
        }
        if Overlaps(r.StartTime, r.EndTime, start, end) {
            return true
        }
    }
    return false
}

package schedule

import "time"

// Period is an inclusive Monday-Sunday calendar date range in the business
// timezone. Start and End are midnight-anchored in that timezone.
type Period struct {
	Start time.Time
	End   time.Time
}

// EndExclusive returns the first instant after the period, for use as the
// upper bound of half-open storage queries (occurred_at < EndExclusive).
func (p Period) EndExclusive() time.Time {
	return p.End.AddDate(0, 0, 1)
}

// LastCompletedWeek returns the most recently completed Monday-Sunday week
// relative to now, evaluated in loc.
//
// The week ending "today" never counts as complete: the end boundary is the
// most recent Sunday strictly before today. When today is itself a Sunday
// this jumps back a full seven days rather than zero, so an in-progress week
// is never closed early. Repeated invocations within the same week resolve to
// the same period, which makes scheduled reruns naturally idempotent.
func LastCompletedWeek(now time.Time, loc *time.Location) Period {
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	// Weekday is days-since-Sunday; Sunday itself maps to a full week back.
	offset := int(today.Weekday())
	if offset == 0 {
		offset = 7
	}

	end := today.AddDate(0, 0, -offset)
	start := end.AddDate(0, 0, -6)
	return Period{Start: start, End: end}
}

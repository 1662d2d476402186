package calendar

import (
	"errors"
	"time"
)

var (
	ErrInvalidTimeRange = errors.New("invalid time range")
	ErrSlotStep         = errors.New("slot step must be positive")
)

// ClockFormat is the wall-clock layout used for slot labels.
const ClockFormat = "15:04"

// TimeRange is the half-open interval [Start, End).
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// NewTimeRange validates that both bounds are set and Start < End.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return TimeRange{}, ErrInvalidTimeRange
	}
	return TimeRange{Start: start, End: end}, nil
}

// RangeFor builds [start, start+d).
func RangeFor(start time.Time, d time.Duration) TimeRange {
	return TimeRange{Start: start, End: start.Add(d)}
}

// Overlaps is the only overlap predicate in the codebase. Touching ranges
// (one ends exactly when the other starts) do not overlap.
func (r TimeRange) Overlaps(o TimeRange) bool {
	return r.Start.Before(o.End) && o.Start.Before(r.End)
}

// Within reports whether r lies entirely inside outer.
func (r TimeRange) Within(outer TimeRange) bool {
	return !r.Start.Before(outer.Start) && !r.End.After(outer.End)
}

func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// SlotStarts enumerates first, first+step, ... up to and including last.
// At most limit starts are produced so malformed input always terminates;
// truncated is true when the limit cut the sequence short.
func SlotStarts(first, last time.Time, step time.Duration, limit int) (starts []time.Time, truncated bool, err error) {
	if step <= 0 {
		return nil, false, ErrSlotStep
	}
	if limit <= 0 || last.Before(first) {
		return []time.Time{}, false, nil
	}

	starts = make([]time.Time, 0, limit)
	for cur := first; !cur.After(last); cur = cur.Add(step) {
		if len(starts) == limit {
			return starts, true, nil
		}
		starts = append(starts, cur)
	}
	return starts, false, nil
}

// AtClock returns the instant at which loc's wall clock shows offset past
// midnight on the civil date y-m-d. An offset of 24h is next midnight.
func AtClock(year int, month time.Month, day int, offset time.Duration, loc *time.Location) time.Time {
	h := int(offset / time.Hour)
	m := int(offset % time.Hour / time.Minute)
	s := int(offset % time.Minute / time.Second)
	ns := int(offset % time.Second)
	return time.Date(year, month, day, h, m, s, ns, loc)
}

// DayBounds returns [local midnight, next local midnight) of the civil date.
func DayBounds(year int, month time.Month, day int, loc *time.Location) TimeRange {
	start := time.Date(year, month, day, 0, 0, 0, 0, loc)
	return TimeRange{Start: start, End: start.AddDate(0, 0, 1)}
}

// DateKey formats a civil date as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

package calendar

import (
	"reflect"
	"testing"
	"time"
)

func mustTime(t *testing.T, year int, month time.Month, day, hour, min int) time.Time {
	t.Helper()
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

//
// TimeRange / Overlaps
//

func TestNewTimeRange_RejectsEmptyAndInverted(t *testing.T) {
	if _, err := NewTimeRange(time.Time{}, time.Time{}); err != ErrInvalidTimeRange {
		t.Fatalf("expected ErrInvalidTimeRange for zero times, got %v", err)
	}
	start := mustTime(t, 2025, 1, 1, 12, 0)
	if _, err := NewTimeRange(start, start); err != ErrInvalidTimeRange {
		t.Fatalf("expected ErrInvalidTimeRange for empty range, got %v", err)
	}
	if _, err := NewTimeRange(start, start.Add(-time.Minute)); err != ErrInvalidTimeRange {
		t.Fatalf("expected ErrInvalidTimeRange for inverted range, got %v", err)
	}
}

func TestOverlaps_TouchingEndsDoNotConflict(t *testing.T) {
	a := TimeRange{Start: mustTime(t, 2025, 1, 1, 19, 0), End: mustTime(t, 2025, 1, 1, 20, 30)}
	b := TimeRange{Start: mustTime(t, 2025, 1, 1, 20, 30), End: mustTime(t, 2025, 1, 1, 22, 0)}

	if a.Overlaps(b) || b.Overlaps(a) {
		t.Fatalf("expected touching ranges not to overlap")
	}
}

func TestOverlaps_PartialAndContained(t *testing.T) {
	outer := TimeRange{Start: mustTime(t, 2025, 1, 1, 18, 0), End: mustTime(t, 2025, 1, 1, 21, 0)}
	inner := TimeRange{Start: mustTime(t, 2025, 1, 1, 19, 0), End: mustTime(t, 2025, 1, 1, 20, 0)}
	tail := TimeRange{Start: mustTime(t, 2025, 1, 1, 20, 59), End: mustTime(t, 2025, 1, 1, 22, 0)}

	if !outer.Overlaps(inner) || !inner.Overlaps(outer) {
		t.Fatalf("expected containment to overlap")
	}
	if !outer.Overlaps(tail) || !tail.Overlaps(outer) {
		t.Fatalf("expected one-minute overlap to count")
	}
}

func TestWithin(t *testing.T) {
	outer := TimeRange{Start: mustTime(t, 2025, 1, 1, 17, 0), End: mustTime(t, 2025, 1, 1, 22, 0)}
	if !RangeFor(mustTime(t, 2025, 1, 1, 20, 30), 90*time.Minute).Within(outer) {
		t.Fatalf("expected range ending at close to be within")
	}
	if RangeFor(mustTime(t, 2025, 1, 1, 21, 0), 90*time.Minute).Within(outer) {
		t.Fatalf("expected range past close not to be within")
	}
}

//
// SlotStarts
//

func TestSlotStarts_InclusiveLast(t *testing.T) {
	first := mustTime(t, 2025, 1, 1, 17, 0)
	last := mustTime(t, 2025, 1, 1, 20, 30)

	starts, truncated, err := SlotStarts(first, last, 30*time.Minute, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if truncated {
		t.Fatalf("did not expect truncation")
	}
	if len(starts) != 8 {
		t.Fatalf("expected 8 starts, got %d", len(starts))
	}
	if !starts[7].Equal(last) {
		t.Fatalf("expected last start %v, got %v", last, starts[7])
	}
}

func TestSlotStarts_CapTruncates(t *testing.T) {
	first := mustTime(t, 2025, 1, 1, 0, 0)
	last := mustTime(t, 2025, 1, 1, 23, 30)

	starts, truncated, err := SlotStarts(first, last, 30*time.Minute, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !truncated {
		t.Fatalf("expected truncation")
	}
	if len(starts) != 30 {
		t.Fatalf("expected 30 starts, got %d", len(starts))
	}
}

func TestSlotStarts_LastBeforeFirst(t *testing.T) {
	starts, _, err := SlotStarts(mustTime(t, 2025, 1, 1, 12, 0), mustTime(t, 2025, 1, 1, 11, 0), 30*time.Minute, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(starts) != 0 {
		t.Fatalf("expected no starts, got %d", len(starts))
	}
}

func TestSlotStarts_InvalidStep(t *testing.T) {
	if _, _, err := SlotStarts(mustTime(t, 2025, 1, 1, 12, 0), mustTime(t, 2025, 1, 1, 13, 0), 0, 30); err != ErrSlotStep {
		t.Fatalf("expected ErrSlotStep, got %v", err)
	}
}

func TestDayBounds_LocalMidnight(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	day := DayBounds(2025, 3, 14, loc)

	if day.Duration() != 24*time.Hour {
		t.Fatalf("expected 24h day, got %v", day.Duration())
	}
	if got := day.Start.UTC(); !got.Equal(mustTime(t, 2025, 3, 13, 21, 0)) {
		t.Fatalf("unexpected UTC start %v", got)
	}
}

//
// Paginate
//

func TestPaginate_Basic(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
	page := Paginate(items, 1, 5)

	if len(page.Items) != 5 {
		t.Fatalf("expected 5 items on page 1, got %d", len(page.Items))
	}
	if page.HasPrev {
		t.Fatalf("expected HasPrev=false on first page")
	}
	if !page.HasNext {
		t.Fatalf("expected HasNext=true on first page")
	}
	if page.Total != len(items) {
		t.Fatalf("expected Total=%d, got %d", len(items), page.Total)
	}
}

func TestPaginate_LastPage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6}
	page := Paginate(items, 2, 4)

	if !reflect.DeepEqual(page.Items, []int{5, 6}) {
		t.Fatalf("unexpected last page items %v", page.Items)
	}
	if !page.HasPrev || page.HasNext {
		t.Fatalf("unexpected flags prev=%v next=%v", page.HasPrev, page.HasNext)
	}
}

func TestPaginate_PastEnd(t *testing.T) {
	page := Paginate([]int{1, 2, 3}, 5, 2)
	if len(page.Items) != 0 || page.HasNext {
		t.Fatalf("expected empty page without next, got %+v", page)
	}
}

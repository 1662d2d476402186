package scheduler

import (
	"github.com/google/uuid"

	"github.com/Leganyst/table-reservations/internal/calendar"
	"github.com/Leganyst/table-reservations/internal/model"
)

// ReservedRange is the interval a reservation holds its tables for.
func ReservedRange(r *model.Reservation) calendar.TimeRange {
	return calendar.TimeRange{Start: r.ReservationTime, End: r.EndTime()}
}

// IsCandidateFree reports whether every table of c is free for the whole of iv.
// Only pending and confirmed reservations block; others in the slice are ignored.
func IsCandidateFree(c Candidate, iv calendar.TimeRange, reservations []model.Reservation) bool {
	for _, id := range c.TableIDs() {
		if !isTableFree(id, iv, reservations) {
			return false
		}
	}
	return true
}

func isTableFree(tableID uuid.UUID, iv calendar.TimeRange, reservations []model.Reservation) bool {
	for i := range reservations {
		r := &reservations[i]
		if !r.Status.IsActive() || !holdsTable(r, tableID) {
			continue
		}
		if iv.Overlaps(ReservedRange(r)) {
			return false
		}
	}
	return true
}

func holdsTable(r *model.Reservation, tableID uuid.UUID) bool {
	for _, id := range r.OccupiedTableIDs() {
		if id == tableID {
			return true
		}
	}
	return false
}

// FirstFree returns the first candidate, in rank order, that is free for iv.
func FirstFree(candidates []Candidate, iv calendar.TimeRange, reservations []model.Reservation) (Candidate, bool) {
	for _, c := range candidates {
		if IsCandidateFree(c, iv, reservations) {
			return c, true
		}
	}
	return Candidate{}, false
}

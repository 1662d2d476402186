package scheduler

import (
	"time"

	"github.com/Leganyst/table-reservations/internal/model"
)

// ResolveTurnTime picks the first rule whose party-size range contains
// partySize. When no rule matches it returns fallback and matched=false.
func ResolveTurnTime(rules []model.TurnTimeRule, partySize int, fallback time.Duration) (turn time.Duration, matched bool) {
	for _, r := range rules {
		if r.Matches(partySize) {
			return time.Duration(r.DurationMinutes) * time.Minute, true
		}
	}
	return fallback, false
}

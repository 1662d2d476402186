package scheduler

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Leganyst/table-reservations/internal/calendar"
	"github.com/Leganyst/table-reservations/internal/model"
)

// Settings bound the availability search.
type Settings struct {
	SlotInterval    time.Duration
	MaxSlotsPerDay  int
	DefaultTurnTime time.Duration
	MaxTurnTime     time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		SlotInterval:    30 * time.Minute,
		MaxSlotsPerDay:  30,
		DefaultTurnTime: 120 * time.Minute,
		MaxTurnTime:     480 * time.Minute,
	}
}

// Snapshot is the read-only input of one scheduling decision: a restaurant's
// configuration plus its pending/confirmed reservations around the date.
type Snapshot struct {
	Restaurant   model.Restaurant
	Tables       []model.Table // configured order
	Hours        []model.OperatingHours
	Rules        []model.TurnTimeRule
	Blackouts    []model.BlackoutPeriod
	Reservations []model.Reservation
}

type Slot struct {
	Time      string // HH:MM, restaurant-local
	Start     time.Time
	Available bool
	TableID   *uuid.UUID
	// Second table when the slot is served by a joined pair.
	JoinedTableID *uuid.UUID
}

type Result struct {
	Slots    []Slot
	TurnTime time.Duration
	Warnings []ConfigurationWarning
	TimedOut bool
}

// Window is one bookable opening of a day in absolute time.
type Window struct {
	Open  time.Time
	Close time.Time
	// LastStart is the latest start whose turn time still ends by Close.
	LastStart time.Time
}

// Calculator projects availability. It never writes.
type Calculator struct {
	settings Settings
}

func NewCalculator(s Settings) *Calculator {
	return &Calculator{settings: s}
}

func (c *Calculator) Settings() Settings { return c.settings }

// TurnTime resolves the duration for partySize and reports configuration
// problems. ok=false means nothing can be booked with it.
func (c *Calculator) TurnTime(rules []model.TurnTimeRule, partySize int) (turn time.Duration, warnings []ConfigurationWarning, ok bool) {
	turn, matched := ResolveTurnTime(rules, partySize, c.settings.DefaultTurnTime)
	if !matched {
		warnings = append(warnings, warnf(WarnTurnTimeDefaulted,
			"no turn-time rule covers party size %d, using %s", partySize, turn))
	}
	if turn <= 0 || turn > c.settings.MaxTurnTime {
		warnings = append(warnings, warnf(WarnTurnTimeOutOfRange,
			"turn time %s outside (0, %s]", turn, c.settings.MaxTurnTime))
		return turn, warnings, false
	}
	return turn, warnings, true
}

// Windows returns the bookable openings of the civil date for a turn time,
// ordered by opening time. Blackout dates and weekdays without hours yield none.
func (c *Calculator) Windows(snap *Snapshot, date time.Time, turn time.Duration) ([]Window, []ConfigurationWarning) {
	year, month, day := date.Date()
	for _, b := range snap.Blackouts {
		if b.Covers(year, month, day) {
			return nil, nil
		}
	}

	weekday := int(time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Weekday())
	hours := make([]model.OperatingHours, 0, 2)
	for _, h := range snap.Hours {
		if h.DayOfWeek == weekday {
			hours = append(hours, h)
		}
	}
	sort.SliceStable(hours, func(i, j int) bool { return hours[i].Open() < hours[j].Open() })

	loc := snap.Restaurant.Location()
	var (
		windows  []Window
		warnings []ConfigurationWarning
	)
	for _, h := range hours {
		if h.Open() > h.Close() {
			warnings = append(warnings, warnf(WarnHoursInverted,
				"opening %s is after closing %s", h.OpenTime.String(), h.CloseTime.String()))
			continue
		}
		open := calendar.AtClock(year, month, day, h.Open(), loc)
		closeAt := calendar.AtClock(year, month, day, h.Close(), loc)
		last := closeAt.Add(-turn)
		if open.After(last) {
			warnings = append(warnings, warnf(WarnTurnExceedsHours,
				"turn time %s does not fit between %s and %s", turn, h.OpenTime.String(), h.CloseTime.String()))
			continue
		}
		windows = append(windows, Window{Open: open, Close: closeAt, LastStart: last})
	}
	return windows, warnings
}

// Compute produces the slot sequence for partySize on the civil date of date.
// The search stops when ctx is done; a timed-out result has no slots.
func (c *Calculator) Compute(ctx context.Context, snap *Snapshot, date time.Time, partySize int) Result {
	turn, warnings, ok := c.TurnTime(snap.Rules, partySize)
	res := Result{TurnTime: turn, Warnings: warnings, Slots: []Slot{}}
	if !ok {
		return res
	}

	windows, windowWarnings := c.Windows(snap, date, turn)
	res.Warnings = append(res.Warnings, windowWarnings...)
	if len(windows) == 0 {
		return res
	}

	candidates := MatchTables(partySize, snap.Tables)
	loc := snap.Restaurant.Location()
	remaining := c.settings.MaxSlotsPerDay

	for _, w := range windows {
		if remaining <= 0 {
			break
		}
		starts, truncated, err := calendar.SlotStarts(w.Open, w.LastStart, c.settings.SlotInterval, remaining)
		if err != nil {
			res.Warnings = append(res.Warnings, warnf(WarnTurnTimeOutOfRange, "slot interval: %v", err))
			return res
		}
		if truncated {
			res.Warnings = append(res.Warnings, warnf(WarnSlotCapReached,
				"slot enumeration stopped after %d slots", c.settings.MaxSlotsPerDay))
		}
		remaining -= len(starts)

		for _, start := range starts {
			if ctx.Err() != nil {
				res.Slots = []Slot{}
				res.TimedOut = true
				res.Warnings = append(res.Warnings, warnf(WarnTimedOut, "availability search aborted: %v", ctx.Err()))
				return res
			}
			res.Slots = append(res.Slots, evaluateSlot(start, turn, loc, candidates, snap.Reservations))
		}
	}
	return res
}

func evaluateSlot(start time.Time, turn time.Duration, loc *time.Location, candidates []Candidate, reservations []model.Reservation) Slot {
	slot := Slot{
		Time:  start.In(loc).Format(calendar.ClockFormat),
		Start: start,
	}
	cand, ok := FirstFree(candidates, calendar.RangeFor(start, turn), reservations)
	if !ok {
		return slot
	}
	slot.Available = true
	primary := cand.Primary().ID
	slot.TableID = &primary
	if cand.IsJoin() {
		second := cand.Tables[1].ID
		slot.JoinedTableID = &second
	}
	return slot
}

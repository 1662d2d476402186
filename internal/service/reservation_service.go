package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/Leganyst/table-reservations/internal/calendar"
	"github.com/Leganyst/table-reservations/internal/config"
	"github.com/Leganyst/table-reservations/internal/lock"
	"github.com/Leganyst/table-reservations/internal/model"
	"github.com/Leganyst/table-reservations/internal/repository"
	"github.com/Leganyst/table-reservations/internal/scheduler"
)

type ReservationService struct {
	db *gorm.DB

	restaurants  repository.RestaurantRepository
	reservations repository.ReservationRepository
	events       repository.EventRepository

	guard    lock.Guard
	calc     *scheduler.Calculator
	limits   config.SchedulerConfig
	validate *validator.Validate
	log      *zap.Logger
	now      func() time.Time
}

type Option func(*ReservationService)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *ReservationService) { s.now = now }
}

func NewReservationService(
	db *gorm.DB,
	guard lock.Guard,
	cfg config.SchedulerConfig,
	log *zap.Logger,
	opts ...Option,
) *ReservationService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &ReservationService{
		db:           db,
		restaurants:  repository.NewGormRestaurantRepository(db),
		reservations: repository.NewGormReservationRepository(db),
		events:       repository.NewGormEventRepository(db),
		guard:        guard,
		calc: scheduler.NewCalculator(scheduler.Settings{
			SlotInterval:    cfg.SlotInterval(),
			MaxSlotsPerDay:  cfg.MaxSlotsPerDay,
			DefaultTurnTime: time.Duration(cfg.DefaultTurnTimeMin) * time.Minute,
			MaxTurnTime:     time.Duration(cfg.MaxTurnTimeMin) * time.Minute,
		}),
		limits:   cfg,
		validate: validator.New(),
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Availability is the answer to one GetAvailability call.
type Availability struct {
	RestaurantID uuid.UUID
	Date         time.Time // restaurant-local midnight
	PartySize    int
	scheduler.Result
}

// GetAvailability lists the slots of a restaurant-local civil date for a
// party. Only the year, month and day of date are used.
//
// An unknown restaurant yields an empty result. Configuration problems are
// logged and reported as warnings. When the search exceeds its deadline the
// result is empty and TimedOut is set; none of these are errors.
func (s *ReservationService) GetAvailability(ctx context.Context, restaurantID uuid.UUID, date time.Time, partySize int) (*Availability, error) {
	if err := s.checkPartySize(partySize); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.limits.AvailabilityTimeout())
	defer cancel()

	out := &Availability{
		RestaurantID: restaurantID,
		PartySize:    partySize,
		Result:       scheduler.Result{Slots: []scheduler.Slot{}},
	}

	rest, err := s.restaurants.GetByID(ctx, restaurantID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.log.Debug("availability for unknown restaurant", zap.String("restaurant_id", restaurantID.String()))
		out.Date = calendar.DayBounds(date.Year(), date.Month(), date.Day(), time.UTC).Start
		return out, nil
	}
	if err != nil {
		if s.timedOut(ctx, out) {
			return out, nil
		}
		return nil, fmt.Errorf("get restaurant: %w", err)
	}

	loc := rest.Location()
	day := calendar.DayBounds(date.Year(), date.Month(), date.Day(), loc)
	out.Date = day.Start

	snap, err := s.loadSnapshot(ctx, rest, day)
	if err != nil {
		if s.timedOut(ctx, out) {
			return out, nil
		}
		return nil, fmt.Errorf("load restaurant snapshot: %w", err)
	}

	out.Result = s.calc.Compute(ctx, snap, day.Start, partySize)
	scheduler.LogWarnings(s.log, out.Warnings,
		zap.String("restaurant_id", rest.ID.String()),
		zap.String("date", calendar.DateKey(day.Start)),
	)
	return out, nil
}

// timedOut fills out as a timed-out result when ctx has expired.
func (s *ReservationService) timedOut(ctx context.Context, out *Availability) bool {
	if ctx.Err() == nil {
		return false
	}
	out.Slots = []scheduler.Slot{}
	out.TimedOut = true
	s.log.Warn("availability search timed out",
		zap.String("restaurant_id", out.RestaurantID.String()),
		zap.Error(ctx.Err()),
	)
	return true
}

// loadSnapshot reads the restaurant configuration and the reservations that
// can overlap day, in parallel. Only for use outside a transaction.
func (s *ReservationService) loadSnapshot(ctx context.Context, rest *model.Restaurant, day calendar.TimeRange) (*scheduler.Snapshot, error) {
	snap := &scheduler.Snapshot{Restaurant: *rest}
	g, gctx := errgroup.WithContext(ctx)
	for _, step := range s.snapshotSteps(s.restaurants, s.reservations, snap, day) {
		step := step
		g.Go(func() error { return step(gctx) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

// loadSnapshotTx is loadSnapshot on a transaction, one query at a time.
func (s *ReservationService) loadSnapshotTx(ctx context.Context, tx *gorm.DB, rest *model.Restaurant, day calendar.TimeRange) (*scheduler.Snapshot, error) {
	snap := &scheduler.Snapshot{Restaurant: *rest}
	for _, step := range s.snapshotSteps(s.restaurants.WithTx(tx), s.reservations.WithTx(tx), snap, day) {
		if err := step(ctx); err != nil {
			return nil, err
		}
	}
	return snap, nil
}

func (s *ReservationService) snapshotSteps(
	restaurants repository.RestaurantRepository,
	reservations repository.ReservationRepository,
	snap *scheduler.Snapshot,
	day calendar.TimeRange,
) []func(ctx context.Context) error {
	id := snap.Restaurant.ID
	// A reservation starting up to the longest turn time before midnight can
	// still hold a table after it.
	from := day.Start.Add(-time.Duration(s.limits.MaxTurnTimeMin) * time.Minute)

	return []func(ctx context.Context) error{
		func(ctx context.Context) (err error) {
			snap.Tables, err = restaurants.ListTables(ctx, id)
			return wrap(err, "list tables")
		},
		func(ctx context.Context) (err error) {
			snap.Hours, err = restaurants.ListOperatingHours(ctx, id)
			return wrap(err, "list operating hours")
		},
		func(ctx context.Context) (err error) {
			snap.Rules, err = restaurants.ListTurnTimeRules(ctx, id)
			return wrap(err, "list turn time rules")
		},
		func(ctx context.Context) (err error) {
			snap.Blackouts, err = restaurants.ListBlackoutPeriods(ctx, id)
			return wrap(err, "list blackout periods")
		},
		func(ctx context.Context) (err error) {
			snap.Reservations, err = reservations.ListActiveStartingBetween(ctx, id, from, day.End)
			return wrap(err, "list reservations")
		},
	}
}

func wrap(err error, what string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", what, err)
}

func (s *ReservationService) checkPartySize(partySize int) error {
	if partySize < s.limits.MinPartySize || partySize > s.limits.MaxPartySize {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidPartySize,
			partySize, s.limits.MinPartySize, s.limits.MaxPartySize)
	}
	return nil
}

// GetReservation returns a single reservation.
func (s *ReservationService) GetReservation(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	return res, nil
}

// ListReservations pages through the reservations of a restaurant-local date
// in start order, whatever their status.
func (s *ReservationService) ListReservations(
	ctx context.Context,
	restaurantID uuid.UUID,
	date time.Time,
	page, pageSize int,
) (calendar.Page[model.Reservation], error) {
	rest, err := s.restaurants.GetByID(ctx, restaurantID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return calendar.Page[model.Reservation]{}, ErrRestaurantNotFound
	}
	if err != nil {
		return calendar.Page[model.Reservation]{}, fmt.Errorf("get restaurant: %w", err)
	}

	day := calendar.DayBounds(date.Year(), date.Month(), date.Day(), rest.Location())
	items, _, err := s.reservations.ListByRestaurantAndRange(ctx, rest.ID, day.Start, day.End, 0, 0)
	if err != nil {
		return calendar.Page[model.Reservation]{}, fmt.Errorf("list reservations: %w", err)
	}
	return calendar.Paginate(items, page, pageSize), nil
}

// Events returns the audit trail of a reservation.
func (s *ReservationService) Events(ctx context.Context, reservationID uuid.UUID) ([]model.Event, error) {
	events, err := s.events.ListByReservation(ctx, reservationID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

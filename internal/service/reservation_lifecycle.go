package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Leganyst/table-reservations/internal/calendar"
	"github.com/Leganyst/table-reservations/internal/lock"
	"github.com/Leganyst/table-reservations/internal/model"
	"github.com/Leganyst/table-reservations/internal/scheduler"
)

// transitions is the reservation state machine. Statuses missing from the
// map are terminal.
var transitions = map[model.ReservationStatus][]model.ReservationStatus{
	model.ReservationStatusPending: {
		model.ReservationStatusConfirmed,
		model.ReservationStatusCancelled,
	},
	model.ReservationStatusConfirmed: {
		model.ReservationStatusCancelled,
		model.ReservationStatusCompleted,
		model.ReservationStatusNoShow,
	},
}

func canTransition(from, to model.ReservationStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type CreateReservationInput struct {
	RestaurantID    uuid.UUID `validate:"required"`
	ReservationTime time.Time `validate:"required"`
	PartySize       int
	// Minutes; replaces the restaurant's turn-time rules for this booking.
	TurnTimeOverride *int `validate:"omitempty,gt=0"`
	AutoConfirm      bool

	UserID       *uuid.UUID
	GuestName    string `validate:"omitempty,max=255"`
	GuestContact string `validate:"omitempty,max=255"`
}

func (s *ReservationService) validateCreate(in *CreateReservationInput) error {
	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			switch verrs[0].Field() {
			case "RestaurantID":
				return ErrRestaurantNotFound
			case "ReservationTime":
				return fmt.Errorf("%w: reservation time is required", ErrInvalidInput)
			}
			return fmt.Errorf("%w: %s failed %q", ErrInvalidInput, verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.checkPartySize(in.PartySize); err != nil {
		return err
	}
	if in.ReservationTime.Before(s.now()) {
		return ErrPastTime
	}
	return nil
}

// CreateReservation books the first free table set for the requested
// interval. The check and the insert run under the restaurant-day lock, so
// concurrent calls for the same date see each other's writes.
func (s *ReservationService) CreateReservation(ctx context.Context, in CreateReservationInput) (*model.Reservation, error) {
	if err := s.validateCreate(&in); err != nil {
		return nil, err
	}

	rest, err := s.restaurants.GetByID(ctx, in.RestaurantID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRestaurantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get restaurant: %w", err)
	}

	start := in.ReservationTime.UTC().Truncate(time.Second)
	local := start.In(rest.Location())
	day := calendar.DayBounds(local.Year(), local.Month(), local.Day(), rest.Location())

	var created *model.Reservation
	err = s.guard.WithLock(ctx, s.db, lock.Key(rest.ID, local), func(tx *gorm.DB) error {
		snap, err := s.loadSnapshotTx(ctx, tx, rest, day)
		if err != nil {
			return err
		}

		turn, err := s.turnTimeFor(snap, &in)
		if err != nil {
			return err
		}
		iv := calendar.RangeFor(start, turn)

		windows, warnings := s.calc.Windows(snap, day.Start, turn)
		scheduler.LogWarnings(s.log, warnings,
			zap.String("restaurant_id", rest.ID.String()),
			zap.String("date", calendar.DateKey(day.Start)),
		)
		if !insideAnyWindow(iv, windows) {
			return fmt.Errorf("%w: %s is outside opening hours", ErrNoAvailability, local.Format(calendar.ClockFormat))
		}

		cand, ok := scheduler.FirstFree(scheduler.MatchTables(in.PartySize, snap.Tables), iv, snap.Reservations)
		if !ok {
			return ErrNoAvailability
		}

		status := model.ReservationStatusPending
		if in.AutoConfirm {
			status = model.ReservationStatusConfirmed
		}
		tableID := cand.Primary().ID
		res := &model.Reservation{
			RestaurantID:    rest.ID,
			TableID:         &tableID,
			UserID:          in.UserID,
			GuestName:       in.GuestName,
			GuestContact:    in.GuestContact,
			ReservationTime: start,
			PartySize:       in.PartySize,
			TurnTimeUsed:    int(iv.Duration() / time.Minute),
			Status:          status,
		}
		if cand.IsJoin() {
			joined := cand.Tables[1].ID
			res.JoinedTableID = &joined
		}

		if err := s.reservations.WithTx(tx).Create(ctx, res); err != nil {
			return fmt.Errorf("create reservation: %w", err)
		}
		details := datatypes.JSONMap{
			"status":     string(res.Status),
			"table_id":   tableID.String(),
			"party_size": res.PartySize,
			"turn_time":  res.TurnTimeUsed,
		}
		if res.JoinedTableID != nil {
			details["joined_table_id"] = res.JoinedTableID.String()
		}
		if err := s.appendEvent(ctx, tx, res, model.EventTypeReservationCreated, details); err != nil {
			return err
		}
		created = res
		return nil
	})
	if lock.IsConflict(err) {
		s.log.Info("reservation lost the restaurant-day lock",
			zap.String("restaurant_id", rest.ID.String()), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrNoAvailability, err)
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("reservation created",
		zap.String("reservation_id", created.ID.String()),
		zap.String("restaurant_id", rest.ID.String()),
		zap.Time("at", created.ReservationTime),
		zap.Int("party_size", created.PartySize),
		zap.String("status", string(created.Status)),
	)
	return created, nil
}

func (s *ReservationService) turnTimeFor(snap *scheduler.Snapshot, in *CreateReservationInput) (time.Duration, error) {
	if in.TurnTimeOverride != nil {
		turn := time.Duration(*in.TurnTimeOverride) * time.Minute
		if turn > s.calc.Settings().MaxTurnTime {
			return 0, fmt.Errorf("%w: turn time override %s above %s", ErrInvalidInput, turn, s.calc.Settings().MaxTurnTime)
		}
		return turn, nil
	}
	turn, warnings, ok := s.calc.TurnTime(snap.Rules, in.PartySize)
	scheduler.LogWarnings(s.log, warnings, zap.String("restaurant_id", snap.Restaurant.ID.String()))
	if !ok {
		return 0, ErrNoAvailability
	}
	return turn, nil
}

// insideAnyWindow reports whether iv fits in one of windows. Empty or
// inverted windows hold nothing.
func insideAnyWindow(iv calendar.TimeRange, windows []scheduler.Window) bool {
	for _, w := range windows {
		open, err := calendar.NewTimeRange(w.Open, w.Close)
		if err != nil {
			continue
		}
		if iv.Within(open) {
			return true
		}
	}
	return false
}

// CancelReservation cancels a pending or confirmed reservation if the
// restaurant's cancellation policy allows it. A refusal is a *PolicyError.
func (s *ReservationService) CancelReservation(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	return s.changeStatus(ctx, id, model.ReservationStatusCancelled, func(tx *gorm.DB, res *model.Reservation) error {
		policy, err := s.restaurants.WithTx(tx).GetCancellationPolicy(ctx, res.RestaurantID)
		if err != nil {
			return fmt.Errorf("get cancellation policy: %w", err)
		}
		decision := scheduler.EvaluateCancellation(policy, res.ReservationTime, s.now())
		if !decision.Allowed() {
			return &PolicyError{Verdict: decision.Verdict, Fee: decision.Fee, Remaining: decision.Remaining}
		}
		return nil
	})
}

// ConfirmReservation moves a pending reservation to confirmed. Confirming an
// already confirmed reservation returns it unchanged.
func (s *ReservationService) ConfirmReservation(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	return s.changeStatus(ctx, id, model.ReservationStatusConfirmed, nil)
}

func (s *ReservationService) CompleteReservation(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	return s.changeStatus(ctx, id, model.ReservationStatusCompleted, nil)
}

func (s *ReservationService) MarkNoShow(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	return s.changeStatus(ctx, id, model.ReservationStatusNoShow, nil)
}

// changeStatus applies one transition under the restaurant-day lock. check,
// when set, runs inside the transaction before the write and can veto it.
func (s *ReservationService) changeStatus(
	ctx context.Context,
	id uuid.UUID,
	to model.ReservationStatus,
	check func(tx *gorm.DB, res *model.Reservation) error,
) (*model.Reservation, error) {
	current, err := s.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	rest, err := s.restaurants.GetByID(ctx, current.RestaurantID)
	if err != nil {
		return nil, fmt.Errorf("get restaurant: %w", err)
	}
	local := current.ReservationTime.In(rest.Location())

	var updated *model.Reservation
	err = s.guard.WithLock(ctx, s.db, lock.Key(rest.ID, local), func(tx *gorm.DB) error {
		repo := s.reservations.WithTx(tx)
		res, err := repo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("reload reservation: %w", err)
		}
		if res.Status == to && to == model.ReservationStatusConfirmed {
			updated = res
			return nil
		}
		if res.Status.IsTerminal() || !canTransition(res.Status, to) {
			return transitionError(res.Status, to)
		}
		if check != nil {
			if err := check(tx, res); err != nil {
				return err
			}
		}

		var cancelledAt *time.Time
		if to == model.ReservationStatusCancelled {
			now := s.now().UTC()
			cancelledAt = &now
		}
		if err := repo.UpdateStatus(ctx, res.ID, to, cancelledAt); err != nil {
			return fmt.Errorf("update status: %w", err)
		}

		from := res.Status
		res.Status = to
		res.CancelledAt = cancelledAt

		eventType := model.EventTypeReservationStatusChanged
		if to == model.ReservationStatusCancelled {
			eventType = model.EventTypeReservationCancelled
		}
		if err := s.appendEvent(ctx, tx, res, eventType, datatypes.JSONMap{
			"from": string(from),
			"to":   string(to),
		}); err != nil {
			return err
		}
		updated = res
		return nil
	})
	if lock.IsConflict(err) {
		return nil, fmt.Errorf("reservation %s is being changed concurrently: %w", id, err)
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("reservation status changed",
		zap.String("reservation_id", updated.ID.String()),
		zap.String("status", string(updated.Status)),
	)
	return updated, nil
}

func (s *ReservationService) appendEvent(ctx context.Context, tx *gorm.DB, res *model.Reservation, t model.EventType, details datatypes.JSONMap) error {
	id := res.ID
	err := s.events.WithTx(tx).Append(ctx, &model.Event{
		EventType:     t,
		RestaurantID:  res.RestaurantID,
		ReservationID: &id,
		Details:       details,
	})
	if err != nil {
		return fmt.Errorf("append %s event: %w", t, err)
	}
	return nil
}

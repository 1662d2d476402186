package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Leganyst/table-reservations/internal/calendar"
	"github.com/Leganyst/table-reservations/internal/model"
	"github.com/Leganyst/table-reservations/internal/service"
)

var ErrUnknownCommand = errors.New("unknown command type")

// Reservations is the part of *service.ReservationService the transports use.
type Reservations interface {
	GetAvailability(ctx context.Context, restaurantID uuid.UUID, date time.Time, partySize int) (*service.Availability, error)
	CreateReservation(ctx context.Context, in service.CreateReservationInput) (*model.Reservation, error)
	CancelReservation(ctx context.Context, id uuid.UUID) (*model.Reservation, error)
	ConfirmReservation(ctx context.Context, id uuid.UUID) (*model.Reservation, error)
	CompleteReservation(ctx context.Context, id uuid.UUID) (*model.Reservation, error)
	MarkNoShow(ctx context.Context, id uuid.UUID) (*model.Reservation, error)
	GetReservation(ctx context.Context, id uuid.UUID) (*model.Reservation, error)
	ListReservations(ctx context.Context, restaurantID uuid.UUID, date time.Time, page, pageSize int) (calendar.Page[model.Reservation], error)
}

// Dispatcher decodes a JSON payload for a command type, runs it and returns
// the response view.
type Dispatcher struct {
	svc      Reservations
	validate *validator.Validate
}

func NewDispatcher(svc Reservations) *Dispatcher {
	return &Dispatcher{svc: svc, validate: validator.New()}
}

func (d *Dispatcher) Dispatch(ctx context.Context, t Type, payload json.RawMessage) (any, error) {
	switch t {
	case TypeGetAvailability:
		var req AvailabilityRequest
		if err := d.decode(payload, &req); err != nil {
			return nil, err
		}
		date, _ := time.Parse(DateLayout, req.Date)
		av, err := d.svc.GetAvailability(ctx, uuid.MustParse(req.RestaurantID), date, req.PartySize)
		if err != nil {
			return nil, err
		}
		return NewAvailabilityView(av), nil

	case TypeCreateReservation:
		var req CreateReservationRequest
		if err := d.decode(payload, &req); err != nil {
			return nil, err
		}
		at, _ := time.Parse(time.RFC3339, req.ReservationTime)
		in := service.CreateReservationInput{
			RestaurantID:     uuid.MustParse(req.RestaurantID),
			ReservationTime:  at,
			PartySize:        req.PartySize,
			TurnTimeOverride: req.TurnTimeOverrideMinutes,
			AutoConfirm:      req.AutoConfirm,
			GuestName:        req.GuestName,
			GuestContact:     req.GuestContact,
		}
		if req.UserID != "" {
			userID := uuid.MustParse(req.UserID)
			in.UserID = &userID
		}
		return d.reservation(d.svc.CreateReservation(ctx, in))

	case TypeCancelReservation, TypeConfirmReservation, TypeCompleteReservation, TypeMarkNoShow, TypeGetReservation:
		var req ReservationRequest
		if err := d.decode(payload, &req); err != nil {
			return nil, err
		}
		id := uuid.MustParse(req.ReservationID)
		switch t {
		case TypeCancelReservation:
			return d.reservation(d.svc.CancelReservation(ctx, id))
		case TypeConfirmReservation:
			return d.reservation(d.svc.ConfirmReservation(ctx, id))
		case TypeCompleteReservation:
			return d.reservation(d.svc.CompleteReservation(ctx, id))
		case TypeMarkNoShow:
			return d.reservation(d.svc.MarkNoShow(ctx, id))
		default:
			return d.reservation(d.svc.GetReservation(ctx, id))
		}

	case TypeListReservations:
		var req ListReservationsRequest
		if err := d.decode(payload, &req); err != nil {
			return nil, err
		}
		date, _ := time.Parse(DateLayout, req.Date)
		page, err := d.svc.ListReservations(ctx, uuid.MustParse(req.RestaurantID), date, req.Page, req.PageSize)
		if err != nil {
			return nil, err
		}
		return NewReservationPageView(page), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, t)
}

func (d *Dispatcher) reservation(r *model.Reservation, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return NewReservationView(r), nil
}

// decode unmarshals and validates a payload. Once it succeeds, ids, dates and
// instants in the request are known to parse.
func (d *Dispatcher) decode(payload json.RawMessage, dst any) error {
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return fmt.Errorf("%w: invalid payload: %v", service.ErrInvalidInput, err)
	}
	if err := d.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s failed %q", service.ErrInvalidInput, verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", service.ErrInvalidInput, err)
	}
	return nil
}

// Package command is the transport-neutral request/response surface of the
// reservation service. The gRPC and AMQP transports both decode into these
// payloads and run them through a Dispatcher.
package command

import (
	"time"

	"github.com/Leganyst/table-reservations/internal/calendar"
	"github.com/Leganyst/table-reservations/internal/model"
	"github.com/Leganyst/table-reservations/internal/service"
)

// Type names one operation.
type Type string

const (
	TypeGetAvailability     Type = "GetAvailability"
	TypeCreateReservation   Type = "CreateReservation"
	TypeCancelReservation   Type = "CancelReservation"
	TypeConfirmReservation  Type = "ConfirmReservation"
	TypeCompleteReservation Type = "CompleteReservation"
	TypeMarkNoShow          Type = "MarkNoShow"
	TypeGetReservation      Type = "GetReservation"
	TypeListReservations    Type = "ListReservations"
)

// Types lists every supported operation.
var Types = []Type{
	TypeGetAvailability,
	TypeCreateReservation,
	TypeCancelReservation,
	TypeConfirmReservation,
	TypeCompleteReservation,
	TypeMarkNoShow,
	TypeGetReservation,
	TypeListReservations,
}

// DateLayout is the wire format of civil dates.
const DateLayout = "2006-01-02"

// Request payloads

type AvailabilityRequest struct {
	RestaurantID string `json:"restaurant_id" validate:"required,uuid"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	PartySize    int    `json:"party_size"`
}

type CreateReservationRequest struct {
	RestaurantID            string `json:"restaurant_id" validate:"required,uuid"`
	ReservationTime         string `json:"reservation_time" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	PartySize               int    `json:"party_size"`
	TurnTimeOverrideMinutes *int   `json:"turn_time_override_minutes,omitempty"`
	AutoConfirm             bool   `json:"auto_confirm"`
	UserID                  string `json:"user_id,omitempty" validate:"omitempty,uuid"`
	GuestName               string `json:"guest_name,omitempty"`
	GuestContact            string `json:"guest_contact,omitempty"`
}

// ReservationRequest addresses one reservation (cancel, confirm, complete,
// no-show, get).
type ReservationRequest struct {
	ReservationID string `json:"reservation_id" validate:"required,uuid"`
}

type ListReservationsRequest struct {
	RestaurantID string `json:"restaurant_id" validate:"required,uuid"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	Page         int    `json:"page" validate:"gte=0"`
	PageSize     int    `json:"page_size" validate:"gte=0,lte=100"`
}

// Response payloads

type ReservationView struct {
	ID              string `json:"id"`
	RestaurantID    string `json:"restaurant_id"`
	TableID         string `json:"table_id,omitempty"`
	JoinedTableID   string `json:"joined_table_id,omitempty"`
	UserID          string `json:"user_id,omitempty"`
	GuestName       string `json:"guest_name,omitempty"`
	GuestContact    string `json:"guest_contact,omitempty"`
	ReservationTime string `json:"reservation_time"`
	EndTime         string `json:"end_time"`
	PartySize       int    `json:"party_size"`
	TurnTimeMinutes int    `json:"turn_time_minutes"`
	Status          string `json:"status"`
	CancelledAt     string `json:"cancelled_at,omitempty"`
}

type SlotView struct {
	Time          string `json:"time"`
	Start         string `json:"start"`
	Available     bool   `json:"available"`
	TableID       string `json:"table_id,omitempty"`
	JoinedTableID string `json:"joined_table_id,omitempty"`
}

type WarningView struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

type AvailabilityView struct {
	RestaurantID    string        `json:"restaurant_id"`
	Date            string        `json:"date"`
	PartySize       int           `json:"party_size"`
	TurnTimeMinutes int           `json:"turn_time_minutes"`
	TimedOut        bool          `json:"timed_out"`
	Slots           []SlotView    `json:"slots"`
	Warnings        []WarningView `json:"warnings,omitempty"`
}

type ReservationPageView struct {
	Items    []ReservationView `json:"items"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	Total    int               `json:"total"`
	HasNext  bool              `json:"has_next"`
	HasPrev  bool              `json:"has_prev"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func NewReservationView(r *model.Reservation) ReservationView {
	v := ReservationView{
		ID:              r.ID.String(),
		RestaurantID:    r.RestaurantID.String(),
		GuestName:       r.GuestName,
		GuestContact:    r.GuestContact,
		ReservationTime: formatTime(r.ReservationTime),
		EndTime:         formatTime(r.EndTime()),
		PartySize:       r.PartySize,
		TurnTimeMinutes: r.TurnTimeUsed,
		Status:          string(r.Status),
	}
	if r.TableID != nil {
		v.TableID = r.TableID.String()
	}
	if r.JoinedTableID != nil {
		v.JoinedTableID = r.JoinedTableID.String()
	}
	if r.UserID != nil {
		v.UserID = r.UserID.String()
	}
	if r.CancelledAt != nil {
		v.CancelledAt = formatTime(*r.CancelledAt)
	}
	return v
}

func NewAvailabilityView(a *service.Availability) AvailabilityView {
	v := AvailabilityView{
		RestaurantID:    a.RestaurantID.String(),
		Date:            a.Date.Format(DateLayout),
		PartySize:       a.PartySize,
		TurnTimeMinutes: int(a.TurnTime / time.Minute),
		TimedOut:        a.TimedOut,
		Slots:           make([]SlotView, 0, len(a.Slots)),
	}
	for _, s := range a.Slots {
		sv := SlotView{Time: s.Time, Start: formatTime(s.Start), Available: s.Available}
		if s.TableID != nil {
			sv.TableID = s.TableID.String()
		}
		if s.JoinedTableID != nil {
			sv.JoinedTableID = s.JoinedTableID.String()
		}
		v.Slots = append(v.Slots, sv)
	}
	for _, w := range a.Warnings {
		v.Warnings = append(v.Warnings, WarningView{Code: string(w.Code), Detail: w.Detail})
	}
	return v
}

func NewReservationPageView(p calendar.Page[model.Reservation]) ReservationPageView {
	v := ReservationPageView{
		Items:    make([]ReservationView, 0, len(p.Items)),
		Page:     p.Page,
		PageSize: p.PageSize,
		Total:    p.Total,
		HasNext:  p.HasNext,
		HasPrev:  p.HasPrev,
	}
	for i := range p.Items {
		v.Items = append(v.Items, NewReservationView(&p.Items[i]))
	}
	return v
}

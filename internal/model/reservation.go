package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
	ReservationStatusCompleted ReservationStatus = "completed"
	ReservationStatusNoShow    ReservationStatus = "no_show"
)

// ActiveReservationStatuses are the statuses that hold a table.
var ActiveReservationStatuses = []ReservationStatus{
	ReservationStatusPending,
	ReservationStatusConfirmed,
}

func (s ReservationStatus) IsActive() bool {
	return s == ReservationStatusPending || s == ReservationStatusConfirmed
}

func (s ReservationStatus) IsTerminal() bool {
	switch s {
	case ReservationStatusCancelled, ReservationStatusCompleted, ReservationStatusNoShow:
		return true
	}
	return false
}

// reservations. Rows are never deleted; cancellation is a status change.
type Reservation struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	RestaurantID uuid.UUID `gorm:"type:uuid;not null;index"`

	// Canonical table. For a joined booking this is the first table of the pair.
	TableID *uuid.UUID `gorm:"type:uuid;index"`
	// Second table of a joined booking.
	JoinedTableID *uuid.UUID `gorm:"type:uuid;index"`

	// Registered user, or nil for a guest identified by GuestName/GuestContact.
	UserID       *uuid.UUID `gorm:"type:uuid;index"`
	GuestName    string     `gorm:"type:varchar(255)"`
	GuestContact string     `gorm:"type:varchar(255)"`

	ReservationTime time.Time `gorm:"not null;index"`
	PartySize       int       `gorm:"not null"`
	// Minutes reserved, fixed at creation.
	TurnTimeUsed int `gorm:"not null"`

	Status      ReservationStatus `gorm:"type:varchar(32);not null;index"`
	CancelledAt *time.Time

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Restaurant *Restaurant `gorm:"foreignKey:RestaurantID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (r *Reservation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// EndTime is the exclusive end of the reserved interval.
func (r *Reservation) EndTime() time.Time {
	return r.ReservationTime.Add(time.Duration(r.TurnTimeUsed) * time.Minute)
}

// OccupiedTableIDs lists every table this reservation holds.
func (r *Reservation) OccupiedTableIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, 2)
	if r.TableID != nil {
		ids = append(ids, *r.TableID)
	}
	if r.JoinedTableID != nil {
		ids = append(ids, *r.JoinedTableID)
	}
	return ids
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Audit event type.
type EventType string

const (
	EventTypeReservationCreated       EventType = "reservation_created"
	EventTypeReservationCancelled     EventType = "reservation_cancelled"
	EventTypeReservationStatusChanged EventType = "reservation_status_changed"
)

// Event is the audit trail, written in the same transaction as the change it records.
type Event struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	EventType EventType `gorm:"type:varchar(64);not null;index"`

	CreatedAt time.Time `gorm:"not null;index"`

	RestaurantID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	ReservationID *uuid.UUID `gorm:"type:uuid;index"`

	Details datatypes.JSONMap

	Reservation *Reservation `gorm:"foreignKey:ReservationID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// tables
type Table struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	RestaurantID uuid.UUID `gorm:"type:uuid;not null;index"`

	Name string `gorm:"type:varchar(64);not null"`

	// Configured order; the table matcher scans tables in this order.
	Position int `gorm:"not null;default:0;index"`

	CapacityMin int `gorm:"not null"`
	CapacityMax int `gorm:"not null"`

	// May be combined with exactly one other joinable table.
	IsJoinable bool `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (t *Table) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Fits reports whether partySize lies inside the table's capacity range.
func (t Table) Fits(partySize int) bool {
	return t.CapacityMin <= partySize && partySize <= t.CapacityMax
}

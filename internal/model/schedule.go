package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// operating_hours: one row per (day of week, open, close). No rows for a
// weekday means the restaurant is closed that day.
type OperatingHours struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	RestaurantID uuid.UUID `gorm:"type:uuid;not null;index"`

	// Same numbering as time.Weekday (0 = Sunday).
	DayOfWeek int `gorm:"not null;index"`

	// Restaurant-local wall clock, no zone.
	OpenTime  datatypes.Time `gorm:"not null"`
	CloseTime datatypes.Time `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (OperatingHours) TableName() string { return "operating_hours" }

func (h *OperatingHours) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// Open returns the opening wall-clock time as an offset from midnight.
func (h OperatingHours) Open() time.Duration { return time.Duration(h.OpenTime) }

// Close returns the closing wall-clock time as an offset from midnight.
func (h OperatingHours) Close() time.Duration { return time.Duration(h.CloseTime) }

// blackout_periods: inclusive date ranges with no bookable capacity.
type BlackoutPeriod struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	RestaurantID uuid.UUID `gorm:"type:uuid;not null;index"`

	StartDate datatypes.Date `gorm:"not null"`
	EndDate   datatypes.Date `gorm:"not null"`

	Reason string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (b *BlackoutPeriod) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Covers reports whether the civil date y-m-d falls inside the period.
func (b BlackoutPeriod) Covers(year int, month time.Month, day int) bool {
	d := civilDay(year, month, day)
	start := time.Time(b.StartDate)
	end := time.Time(b.EndDate)
	return !d.Before(civilDay(start.Date())) && !d.After(civilDay(end.Date()))
}

func civilDay(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

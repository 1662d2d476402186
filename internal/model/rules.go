package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// turn_time_rules: how long a party of a given size occupies a table.
type TurnTimeRule struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	RestaurantID uuid.UUID `gorm:"type:uuid;not null;index"`

	PartySizeMin    int `gorm:"not null"`
	PartySizeMax    int `gorm:"not null"`
	DurationMinutes int `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (r *TurnTimeRule) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (r TurnTimeRule) Matches(partySize int) bool {
	return r.PartySizeMin <= partySize && partySize <= r.PartySizeMax
}

// cancellation_policies: at most one per restaurant.
type CancellationPolicy struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	RestaurantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`

	// nil means there is no free-cancellation window.
	HoursBeforeNoFee *int

	// At most one fee model is set; both may be nil.
	FeePercentage  *float64
	FixedFeeAmount *float64

	AllowOnlineCancellation bool `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (p *CancellationPolicy) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

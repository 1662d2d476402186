package model

import "gorm.io/gorm"

// AutoMigrate migrates every entity of the reservation core.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Restaurant{},
		&Table{},
		&OperatingHours{},
		&BlackoutPeriod{},
		&TurnTimeRule{},
		&CancellationPolicy{},
		&Reservation{},
		&Event{},
	)
}

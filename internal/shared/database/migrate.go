package database

import (
	"fmt"

	"gorm.io/gorm"

	"seatly/internal/bookings"
	"seatly/internal/events"
	"seatly/internal/users"
)

// Migrate applies the schema for every registered model.
func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("enable uuid-ossp: %w", err)
	}

	if err := db.AutoMigrate(
		&users.User{},
		&events.Event{},
		&bookings.Booking{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Package lock serializes writers that touch the same restaurant-day.
//
// A Guard runs fn inside a database transaction while holding the lock for
// key. Readers never take it.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/table-reservations/internal/config"
)

// ErrLockTimeout is returned when the lock could not be acquired in time.
var ErrLockTimeout = errors.New("reservation lock not acquired")

type Guard interface {
	WithLock(ctx context.Context, db *gorm.DB, key string, fn func(tx *gorm.DB) error) error
}

// Key is the lock key of one restaurant on one restaurant-local civil date.
func Key(restaurantID uuid.UUID, localDate time.Time) string {
	return fmt.Sprintf("reservation:%s:%s", restaurantID, localDate.Format("2006-01-02"))
}

// ForDriver picks the guard matching the database in use. SQLite runs with a
// single connection inside one process, so an in-process lock is enough there.
func ForDriver(driver string, timeout time.Duration) Guard {
	if driver == config.DriverPostgres {
		return NewPostgresGuard(timeout)
	}
	return NewLocalGuard(timeout)
}

package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// SQLSTATE codes that mean another writer won the race.
const (
	sqlStateLockNotAvailable     = "55P03"
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

// PostgresGuard takes a transaction-scoped advisory lock, so the lock is
// released on commit or rollback and is shared by every service instance.
type PostgresGuard struct {
	timeout time.Duration
}

func NewPostgresGuard(timeout time.Duration) *PostgresGuard {
	return &PostgresGuard{timeout: timeout}
}

func (g *PostgresGuard) WithLock(ctx context.Context, db *gorm.DB, key string, fn func(tx *gorm.DB) error) error {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if g.timeout > 0 {
			// SET does not take bind parameters.
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", g.timeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key).Error; err != nil {
			return err
		}
		return fn(tx)
	})
	if IsConflict(err) {
		return fmt.Errorf("%w: %v", ErrLockTimeout, err)
	}
	return err
}

// IsConflict reports whether err is a lock timeout or a Postgres concurrency
// failure (lock not available, serialization failure, deadlock).
func IsConflict(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrLockTimeout) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateLockNotAvailable, sqlStateSerializationFailure, sqlStateDeadlockDetected:
			return true
		}
	}
	return false
}

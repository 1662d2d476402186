package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Leganyst/table-reservations/internal/config"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.Exec(`CREATE TABLE counters (id INTEGER PRIMARY KEY, n INTEGER NOT NULL)`).Error; err != nil {
		t.Fatalf("create table: %v", err)
	}
	if err := db.Exec(`INSERT INTO counters (id, n) VALUES (1, 0)`).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	return db
}

func TestKey_IsPerRestaurantAndDate(t *testing.T) {
	id := uuid.MustParse("7a1c9f1e-2f44-4d8e-9c55-0a0b3c1d2e3f")
	day := time.Date(2030, 6, 14, 23, 30, 0, 0, time.UTC)

	if got := Key(id, day); got != "reservation:7a1c9f1e-2f44-4d8e-9c55-0a0b3c1d2e3f:2030-06-14" {
		t.Fatalf("unexpected key %q", got)
	}
	if Key(id, day) == Key(id, day.AddDate(0, 0, 1)) {
		t.Fatalf("different dates must not share a key")
	}
}

func TestForDriver(t *testing.T) {
	if _, ok := ForDriver(config.DriverPostgres, time.Second).(*PostgresGuard); !ok {
		t.Fatalf("postgres should use advisory locks")
	}
	if _, ok := ForDriver(config.DriverSQLite, time.Second).(*LocalGuard); !ok {
		t.Fatalf("sqlite should use the local guard")
	}
}

func TestLocalGuard_SerializesSameKey(t *testing.T) {
	db := openDB(t)
	g := NewLocalGuard(5 * time.Second)

	var (
		wg      sync.WaitGroup
		inside  int32
		maxSeen int32
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := g.WithLock(context.Background(), db, "k", func(tx *gorm.DB) error {
				n := atomic.AddInt32(&inside, 1)
				if n > atomic.LoadInt32(&maxSeen) {
					atomic.StoreInt32(&maxSeen, n)
				}
				var cur int
				if err := tx.Raw(`SELECT n FROM counters WHERE id = 1`).Scan(&cur).Error; err != nil {
					return err
				}
				time.Sleep(time.Millisecond)
				err := tx.Exec(`UPDATE counters SET n = ? WHERE id = 1`, cur+1).Error
				atomic.AddInt32(&inside, -1)
				return err
			})
			if err != nil {
				t.Errorf("WithLock: %v", err)
			}
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Fatalf("expected at most one holder, saw %d", maxSeen)
	}
	var n int
	if err := db.Raw(`SELECT n FROM counters WHERE id = 1`).Scan(&n).Error; err != nil {
		t.Fatalf("read counter: %v", err)
	}
	if n != 20 {
		t.Fatalf("lost updates: counter = %d, want 20", n)
	}
	if len(g.locks) != 0 {
		t.Fatalf("expected lock table to be empty, has %d", len(g.locks))
	}
}

func TestLocalGuard_RollsBackOnError(t *testing.T) {
	db := openDB(t)
	g := NewLocalGuard(time.Second)
	boom := errors.New("boom")

	err := g.WithLock(context.Background(), db, "k", func(tx *gorm.DB) error {
		if err := tx.Exec(`UPDATE counters SET n = 99 WHERE id = 1`).Error; err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	var n int
	db.Raw(`SELECT n FROM counters WHERE id = 1`).Scan(&n)
	if n != 0 {
		t.Fatalf("expected rollback, counter = %d", n)
	}
}

func TestLocalGuard_TimesOut(t *testing.T) {
	g := NewLocalGuard(20 * time.Millisecond)

	release, err := g.acquire(context.Background(), "k")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer release()

	if _, err := g.acquire(context.Background(), "k"); !errors.Is(err, ErrLockTimeout) {
		t.Fatalf("expected ErrLockTimeout, got %v", err)
	}
	if !IsConflict(ErrLockTimeout) {
		t.Fatalf("lock timeout should count as a conflict")
	}
}

func TestLocalGuard_CallerCancellation(t *testing.T) {
	g := NewLocalGuard(time.Minute)
	release, _ := g.acquire(context.Background(), "k")
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := g.acquire(ctx, "k"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestLocalGuard_DistinctKeysDoNotBlock(t *testing.T) {
	g := NewLocalGuard(50 * time.Millisecond)

	releases := make([]func(), 0, 5)
	for i := 0; i < 5; i++ {
		release, err := g.acquire(context.Background(), fmt.Sprintf("k%d", i))
		if err != nil {
			t.Fatalf("acquire k%d: %v", i, err)
		}
		releases = append(releases, release)
	}
	for _, release := range releases {
		release()
	}
	if len(g.locks) != 0 {
		t.Fatalf("expected lock table to be empty, has %d", len(g.locks))
	}
}

func TestIsConflict_PostgresCodes(t *testing.T) {
	for _, code := range []string{"55P03", "40001", "40P01"} {
		err := fmt.Errorf("exec: %w", &pgconn.PgError{Code: code})
		if !IsConflict(err) {
			t.Fatalf("code %s should be a conflict", code)
		}
	}
	if IsConflict(&pgconn.PgError{Code: "23505"}) {
		t.Fatalf("unique violation is not a lock conflict")
	}
	if IsConflict(nil) || IsConflict(errors.New("other")) {
		t.Fatalf("unexpected conflict")
	}
}

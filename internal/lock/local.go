package lock

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"
)

// LocalGuard is a keyed mutex. Entries are dropped once nobody holds or waits
// for them, so the map does not grow with the number of dates ever booked.
type LocalGuard struct {
	timeout time.Duration

	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	sem  chan struct{}
	refs int
}

func NewLocalGuard(timeout time.Duration) *LocalGuard {
	return &LocalGuard{timeout: timeout, locks: make(map[string]*keyLock)}
}

func (g *LocalGuard) WithLock(ctx context.Context, db *gorm.DB, key string, fn func(tx *gorm.DB) error) error {
	release, err := g.acquire(ctx, key)
	if err != nil {
		return err
	}
	defer release()

	return db.WithContext(ctx).Transaction(fn)
}

func (g *LocalGuard) acquire(ctx context.Context, key string) (func(), error) {
	g.mu.Lock()
	l, ok := g.locks[key]
	if !ok {
		l = &keyLock{sem: make(chan struct{}, 1)}
		g.locks[key] = l
	}
	l.refs++
	g.mu.Unlock()

	waitCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	select {
	case l.sem <- struct{}{}:
		return func() {
			<-l.sem
			g.unref(key, l)
		}, nil
	case <-waitCtx.Done():
		g.unref(key, l)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ErrLockTimeout
	}
}

func (g *LocalGuard) unref(key string, l *keyLock) {
	g.mu.Lock()
	defer g.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(g.locks, key)
	}
}

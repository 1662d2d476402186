package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// runUntilSignal runs fn with a context cancelled on SIGINT or SIGTERM.
func runUntilSignal(fn func(ctx context.Context) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return fn(ctx)
}

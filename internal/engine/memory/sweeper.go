package memory

import (
	"context"
	"errors"
	"time"
)

// Sweep removes every expired entry and returns how many were dropped.
func (e *Engine) Sweep() int {
	now := e.clock.Now()
	removed := 0
	for _, b := range e.buckets {
		b.mu.Lock()
		for _, ent := range b.entries {
			if ent.expired(now) {
				b.removeLocked(ent)
				removed++
			}
		}
		b.mu.Unlock()
	}
	return removed
}

// RunSweeper sweeps expired entries every ExpiryInterval until ctx is cancelled.
// Returns nil on graceful shutdown.
func (e *Engine) RunSweeper(ctx context.Context) error {
	e.logger.InfoContext(ctx, "starting expiry sweeper", "interval", e.opts.ExpiryInterval)

	ticker := time.NewTicker(e.opts.ExpiryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.InfoContext(ctx, "expiry sweeper stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			if n := e.Sweep(); n > 0 {
				e.logger.DebugContext(ctx, "expired entries swept", "count", n)
			}
		}
	}
}

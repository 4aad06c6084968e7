package state

import (
	"context"
	"log/slog"
	"time"

	"github.com/guggenheimg/cakebot/core/logger"
)

// RunSweeper periodically evicts sessions idle longer than maxIdle.
// It blocks until ctx is done and is meant to run as a background job
// next to the bot loop.
func RunSweeper(ctx context.Context, m Manager, interval, maxIdle time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := m.Sweep(maxIdle); n > 0 {
				logger.Info(ctx, "tg", "session.sweep",
					slog.Int("evicted", n),
					slog.Duration("max_idle", maxIdle),
				)
			}
		}
	}
}

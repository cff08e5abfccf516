package services

import (
	"context"
	"time"
)

// Sweeper drops idle state older than its TTL.
type Sweeper interface {
	Sweep(now time.Time) int
}

// RunSweeper calls Sweep on every sweeper each interval until ctx is done.
func RunSweeper(ctx context.Context, every time.Duration, sweepers ...Sweeper) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			var n int
			for _, s := range sweepers {
				n += s.Sweep(now)
			}
			if n > 0 {
				loggerFrom(ctx).Debug().Int("swept", n).Msg("expired engine state dropped")
			}
		}
	}
}

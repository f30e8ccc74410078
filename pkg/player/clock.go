package player

import (
	"context"
	"time"
)

// Clock suspends playback between events.
type Clock interface {
	// Wait blocks for d or until ctx is done, whichever comes first, and
	// returns ctx.Err() in the latter case.
	Wait(ctx context.Context, d time.Duration) error
}

// WallClock waits in real time.
type WallClock struct{}

// Wait implements Clock.
func (WallClock) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

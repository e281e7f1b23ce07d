package validator

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// newLimiter builds the single token bucket shared by all workers.
// The configured delay is the minimum spacing between any two requests
// in the whole run, regardless of which worker issues them. A zero or
// negative delay disables limiting.
//
// Burst is 1 so tokens cannot accumulate while workers are busy: after
// an idle stretch the next two requests are still spaced by the delay.
func newLimiter(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}

// sleep waits for the duration or until the context is cancelled,
// whichever comes first. Used for retry backoff so an interrupted run
// does not hang in a backoff timer.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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

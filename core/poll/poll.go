package poll

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrBudgetExhausted is returned when the condition did not hold within the
// configured number of attempts.
var ErrBudgetExhausted = errors.New("poll: budget exhausted")

// CheckFunc reports whether the awaited condition holds. Returning a non-nil
// error aborts the wait immediately; transient failures should be handled
// inside the function by returning (false, nil).
type CheckFunc func(ctx context.Context) (done bool, err error)

// SleepFunc blocks for the given duration or until the context is canceled.
type SleepFunc func(ctx context.Context, d time.Duration) error

const (
	defaultInterval    = 10 * time.Second
	defaultMaxAttempts = 60
)

// Policy is a fixed-interval polling policy with a bounded attempt budget.
// The zero value polls every 10 seconds for up to 60 attempts using real time.
type Policy struct {
	// Interval between attempts.
	Interval time.Duration

	// MaxAttempts caps the number of condition checks before giving up.
	MaxAttempts int

	// Sleep is the blocking function used between attempts.
	// Tests inject a no-op implementation to run without real delays.
	Sleep SleepFunc
}

// Wait runs fn until it reports done, the attempt budget is exhausted, or the
// context is canceled. The first check happens immediately, before any sleep.
func (p Policy) Wait(ctx context.Context, fn CheckFunc) error {
	interval := p.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = realSleep
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		done, err := fn(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		if attempt == maxAttempts {
			break
		}
		if err := sleep(ctx, interval); err != nil {
			return err
		}
	}

	return fmt.Errorf("%w after %d attempts (interval %s)", ErrBudgetExhausted, maxAttempts, interval)
}

func realSleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

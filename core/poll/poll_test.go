package poll_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/certpipe/core/poll"
)

// noSleep advances instantly so tests run without real delays.
func noSleep(ctx context.Context, d time.Duration) error { return nil }

func TestWaitSucceedsWhenConditionHolds(t *testing.T) {
	p := poll.Policy{Interval: time.Second, MaxAttempts: 5, Sleep: noSleep}

	calls := 0
	err := p.Wait(context.Background(), func(ctx context.Context) (bool, error) {
		calls++
		return calls == 3, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWaitExhaustsBudget(t *testing.T) {
	p := poll.Policy{Interval: time.Second, MaxAttempts: 4, Sleep: noSleep}

	calls := 0
	err := p.Wait(context.Background(), func(ctx context.Context) (bool, error) {
		calls++
		return false, nil
	})

	assert.ErrorIs(t, err, poll.ErrBudgetExhausted)
	assert.Equal(t, 4, calls)
}

func TestWaitPropagatesCheckError(t *testing.T) {
	p := poll.Policy{Interval: time.Second, MaxAttempts: 10, Sleep: noSleep}
	boom := errors.New("boom")

	calls := 0
	err := p.Wait(context.Background(), func(ctx context.Context) (bool, error) {
		calls++
		return false, boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestWaitStopsOnCanceledContext(t *testing.T) {
	p := poll.Policy{Interval: time.Second, MaxAttempts: 10, Sleep: noSleep}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Wait(ctx, func(ctx context.Context) (bool, error) {
		t.Fatal("check must not run after cancellation")
		return false, nil
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestWaitSleepsBetweenAttempts(t *testing.T) {
	var slept []time.Duration
	p := poll.Policy{
		Interval:    2 * time.Second,
		MaxAttempts: 3,
		Sleep: func(ctx context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		},
	}

	_ = p.Wait(context.Background(), func(ctx context.Context) (bool, error) {
		return false, nil
	})

	// No sleep after the final attempt.
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, slept)
}

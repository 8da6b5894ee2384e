package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances only when the limiter sleeps
type fakeClock struct {
	current time.Time
	slept   []time.Duration
}

func (c *fakeClock) now() time.Time { return c.current }

func (c *fakeClock) sleep(_ context.Context, d time.Duration) error {
	c.slept = append(c.slept, d)
	c.current = c.current.Add(d)
	return nil
}

func newTestInterval(interval time.Duration) (*Interval, *fakeClock) {
	clock := &fakeClock{current: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewInterval(interval)
	l.now = clock.now
	l.sleep = clock.sleep
	return l, clock
}

func TestIntervalFirstCallDoesNotWait(t *testing.T) {
	l, clock := newTestInterval(300 * time.Millisecond)

	require.NoError(t, l.Throttle(context.Background()))
	assert.Empty(t, clock.slept)
}

func TestIntervalWaitsRemainder(t *testing.T) {
	l, clock := newTestInterval(300 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, l.Throttle(ctx))
	clock.current = clock.current.Add(100 * time.Millisecond)
	require.NoError(t, l.Throttle(ctx))

	require.Len(t, clock.slept, 1)
	assert.Equal(t, 200*time.Millisecond, clock.slept[0])
}

func TestIntervalNoWaitAfterGap(t *testing.T) {
	l, clock := newTestInterval(300 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, l.Throttle(ctx))
	clock.current = clock.current.Add(time.Second)
	require.NoError(t, l.Throttle(ctx))

	assert.Empty(t, clock.slept)
}

func TestIntervalSpacingBetweenReturns(t *testing.T) {
	l, clock := newTestInterval(300 * time.Millisecond)
	ctx := context.Background()

	var returns []time.Time
	for i := 0; i < 4; i++ {
		require.NoError(t, l.Throttle(ctx))
		returns = append(returns, clock.now())
	}

	for i := 1; i < len(returns); i++ {
		assert.GreaterOrEqual(t, returns[i].Sub(returns[i-1]), 300*time.Millisecond)
	}
}

func TestIntervalReset(t *testing.T) {
	l, clock := newTestInterval(300 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, l.Throttle(ctx))
	l.Reset()
	require.NoError(t, l.Throttle(ctx))

	assert.Empty(t, clock.slept)
}

func TestIntervalCancelledContext(t *testing.T) {
	l := NewInterval(time.Hour)
	require.NoError(t, l.Throttle(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := l.Throttle(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIntervalRealTiming(t *testing.T) {
	l := NewInterval(50 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, l.Throttle(ctx))
	start := time.Now()
	require.NoError(t, l.Throttle(ctx))

	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter defines the interface for request pacing
type Limiter interface {
	// Throttle blocks until the next request may be sent
	Throttle(ctx context.Context) error
	// Reset forgets the last request time
	Reset()
}

// Interval enforces a minimum spacing between consecutive requests. The
// spacing is measured between the returns of successive Throttle calls.
type Interval struct {
	minInterval time.Duration
	lastRequest time.Time
	mu          sync.Mutex

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewInterval creates a limiter allowing one request per minInterval
func NewInterval(minInterval time.Duration) *Interval {
	return &Interval{
		minInterval: minInterval,
		now:         time.Now,
		sleep:       sleepContext,
	}
}

// Throttle waits out the remainder of the interval since the previous call
func (l *Interval) Throttle(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.lastRequest.IsZero() {
		if wait := l.minInterval - l.now().Sub(l.lastRequest); wait > 0 {
			if err := l.sleep(ctx, wait); err != nil {
				return err
			}
		}
	}

	l.lastRequest = l.now()
	return nil
}

// Reset lets the next request through immediately
func (l *Interval) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lastRequest = time.Time{}
}

// MinInterval returns the configured spacing
func (l *Interval) MinInterval() time.Duration {
	return l.minInterval
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

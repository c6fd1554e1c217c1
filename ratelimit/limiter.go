// Package ratelimit counts requests per client over a sliding window.
package ratelimit

import (
	"context"
	"time"
)

// Store records a hit for key if fewer than limit hits fall inside the
// window ending at now. Check and record must be atomic.
type Store interface {
	Take(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (Result, error)
}

type Result struct {
	Allowed bool
	// Count is the number of hits in the window after this call.
	Count int
	// ResetAt is when the oldest hit in the window expires.
	ResetAt time.Time
}

type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

type Limiter struct {
	store  Store
	limit  int
	window time.Duration
	now    func() time.Time
}

func New(store Store, limit int, window time.Duration) *Limiter {
	return &Limiter{store: store, limit: limit, window: window, now: time.Now}
}

func (l *Limiter) Limit() int {
	return l.limit
}

func (l *Limiter) Window() time.Duration {
	return l.window
}

// Allow takes one slot for key. Rejected requests do not use up a slot.
func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := l.now()

	res, err := l.store.Take(ctx, key, now, l.window, l.limit)
	if err != nil {
		return Decision{}, err
	}

	d := Decision{
		Allowed:   res.Allowed,
		Limit:     l.limit,
		Remaining: max(l.limit-res.Count, 0),
		ResetAt:   res.ResetAt,
	}
	if !res.Allowed {
		d.RetryAfter = max(res.ResetAt.Sub(now), 0)
	}
	return d, nil
}

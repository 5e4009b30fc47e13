// Package ratelimit provides best-effort per-client request limiting for the
// public contact endpoint. The default store is in-process memory; a Redis
// store can be swapped in when the service runs on more than one instance.
package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Result is the outcome of a limiter check.
type Result struct {
	Allowed    bool
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Limiter decides whether a request from the given client identity may
// proceed.
type Limiter interface {
	Check(ctx context.Context, identity string) (Result, error)
}

// Store persists per-identity request timestamps.
type Store interface {
	Get(identity string) []time.Time
	Set(identity string, stamps []time.Time)
	Prune(idleBefore time.Time)
}

// sweepProbability is the fraction of checks that trigger a stale-identity
// sweep. Keeps memory bounded without a background goroutine, which matters
// on serverless hosts that freeze between requests.
const sweepProbability = 0.1

// FixedWindow counts requests per identity inside a trailing window.
// Rejected requests are not recorded, so a blocked client does not push its
// own reset time further out.
type FixedWindow struct {
	mu     sync.Mutex
	store  Store
	max    int
	window time.Duration

	now  func() time.Time
	rand func() float64
}

// NewFixedWindow creates a limiter allowing max requests per window.
func NewFixedWindow(store Store, max int, window time.Duration) *FixedWindow {
	return &FixedWindow{
		store:  store,
		max:    max,
		window: window,
		now:    time.Now,
		rand:   rand.Float64,
	}
}

// Check prunes expired timestamps for the identity, then either records the
// request or rejects it. The mutex makes the read-prune-append sequence
// atomic across concurrent requests in the same process.
func (f *FixedWindow) Check(_ context.Context, identity string) (Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	cutoff := now.Add(-f.window)

	stamps := f.store.Get(identity)
	live := stamps[:0]
	for _, ts := range stamps {
		if ts.After(cutoff) {
			live = append(live, ts)
		}
	}

	if len(live) >= f.max {
		resetAt := live[0].Add(f.window)
		f.store.Set(identity, live)
		return Result{
			Allowed:    false,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: resetAt.Sub(now),
		}, nil
	}

	live = append(live, now)
	f.store.Set(identity, live)

	if f.rand() < sweepProbability {
		f.store.Prune(now.Add(-2 * f.window))
	}

	return Result{
		Allowed:   true,
		Remaining: f.max - len(live),
		ResetAt:   now.Add(f.window),
	}, nil
}

var _ Limiter = (*FixedWindow)(nil)

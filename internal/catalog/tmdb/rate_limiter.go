package tmdb

import (
	"context"
	"sync"
	"time"
)

// rateLimiter is a sliding window limiter: at most maxRequests calls may start
// within any window.
type rateLimiter struct {
	mu          sync.Mutex
	requests    []time.Time
	maxRequests int
	window      time.Duration
	now         func() time.Time
}

func newRateLimiter(maxRequests int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		maxRequests: maxRequests,
		window:      window,
		requests:    make([]time.Time, 0, maxRequests),
		now:         time.Now,
	}
}

// wait blocks until a request slot frees up or ctx is done.
func (r *rateLimiter) wait(ctx context.Context) error {
	for {
		delay := r.reserve()
		if delay <= 0 {
			return nil
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// reserve records a request and returns 0 when a slot is free, otherwise how
// long until the oldest request leaves the window.
func (r *rateLimiter) reserve() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	cutoff := now.Add(-r.window)
	kept := r.requests[:0]
	for _, req := range r.requests {
		if req.After(cutoff) {
			kept = append(kept, req)
		}
	}
	r.requests = kept

	if len(r.requests) < r.maxRequests {
		r.requests = append(r.requests, now)
		return 0
	}
	// 10ms of slack so the oldest request has really expired when we retry.
	return r.window - now.Sub(r.requests[0]) + 10*time.Millisecond
}

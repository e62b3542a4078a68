package handlers

import (
	"sync"
	"time"
)

const (
	minuteWindow = time.Minute
	hourWindow   = time.Hour
	dayWindow    = 24 * time.Hour
)

// RateLimiter is a fixed-window per-key counter. Windows reset lazily on the
// first request after expiry; stale keys are swept opportunistically.
type RateLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	counts map[string]*windowCount
	now    func() time.Time
}

type windowCount struct {
	start time.Time
	n     int
}

// NewRateLimiter builds a limiter allowing limit requests per window per key.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:  limit,
		window: window,
		counts: make(map[string]*windowCount),
		now:    time.Now,
	}
}

// Allow records one request for the key and reports whether it fits the
// current window's budget.
func (r *RateLimiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	wc, ok := r.counts[key]
	if !ok || now.Sub(wc.start) >= r.window {
		r.counts[key] = &windowCount{start: now, n: 1}
		r.sweepLocked(now)
		return r.limit >= 1
	}
	wc.n++
	return wc.n <= r.limit
}

// sweepLocked drops expired windows so the map does not grow unbounded.
func (r *RateLimiter) sweepLocked(now time.Time) {
	if len(r.counts) < 1024 {
		return
	}
	for k, wc := range r.counts {
		if now.Sub(wc.start) >= r.window {
			delete(r.counts, k)
		}
	}
}

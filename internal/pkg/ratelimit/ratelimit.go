// Package ratelimit implements a fixed-window request limiter keyed by an
// opaque client identifier (normally the client IP).
package ratelimit

import (
	"sync"
	"time"
)

// entry tracks request counts for one key within the current window.
type entry struct {
	count   int
	resetAt time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock injects a time source; used by tests to control window expiry.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// WithSweepInterval overrides how often expired entries are evicted.
func WithSweepInterval(interval time.Duration) Option {
	return func(l *Limiter) {
		l.sweepInterval = interval
	}
}

// Limiter is a fixed-window counter: the first request for a key opens a
// window, subsequent requests within the window increment the counter, and
// requests beyond max are denied until the window elapses. State is held
// in-process only; there is no cross-process coordination.
type Limiter struct {
	max           int
	window        time.Duration
	now           func() time.Time
	sweepInterval time.Duration

	mu      sync.Mutex
	entries map[string]*entry

	stopOnce sync.Once
	stopCh   chan struct{}
}

// New creates a Limiter allowing max requests per window for each key and
// starts a background sweep that evicts expired entries so the key map does
// not grow without bound.
func New(max int, window time.Duration, opts ...Option) *Limiter {
	l := &Limiter{
		max:           max,
		window:        window,
		now:           time.Now,
		sweepInterval: window,
		entries:       make(map[string]*entry),
		stopCh:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}

	go l.sweepLoop()

	return l
}

// Allow reports whether a request for key is within the limit. The first
// request after a window has elapsed resets the counter regardless of the
// prior count.
func (l *Limiter) Allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok || now.After(e.resetAt) {
		l.entries[key] = &entry{count: 1, resetAt: now.Add(l.window)}
		return true
	}

	e.count++
	return e.count <= l.max
}

// Len returns the number of tracked keys; intended for tests and diagnostics.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Sweep removes entries whose window has elapsed.
func (l *Limiter) Sweep() {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, e := range l.entries {
		if now.After(e.resetAt) {
			delete(l.entries, key)
		}
	}
}

// Stop terminates the background sweep goroutine.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		close(l.stopCh)
	})
}

func (l *Limiter) sweepLoop() {
	ticker := time.NewTicker(l.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.Sweep()
		case <-l.stopCh:
			return
		}
	}
}

// Package ratelimit implements sliding-window-log admission control for
// inbound chat events, keyed by user ID.
package ratelimit

import (
	"strconv"
	"sync"
	"time"
)

// idleFactor controls retention: an identifier whose newest entry is
// older than idleFactor windows is dropped during sweeps, so memory
// stays bounded by the set of recently active identifiers.
const idleFactor = 3

// Limiter is a sliding-window-log rate limiter. Unlike a token bucket it
// keeps the exact timestamps of admitted requests inside the trailing
// window, so the limit holds over any window-sized interval.
type Limiter struct {
	mu        sync.Mutex
	windows   map[string][]time.Time
	limit     int
	window    time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// New creates a Limiter that admits at most limit requests per
// identifier within any trailing window.
func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		windows: make(map[string][]time.Time),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// Allow reports whether a request from id is admitted. A rejected
// attempt is not recorded, so hammering past the limit does not extend
// the rejection.
func (l *Limiter) Allow(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.maybeSweep(now)

	cutoff := now.Add(-l.window)
	entries := l.windows[id]

	kept := entries[:0]
	for _, t := range entries {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= l.limit {
		l.windows[id] = kept
		return false
	}

	l.windows[id] = append(kept, now)
	return true
}

// AllowUser is Allow keyed by a numeric user ID.
func (l *Limiter) AllowUser(userID int64) bool {
	return l.Allow(strconv.FormatInt(userID, 10))
}

// maybeSweep drops identifiers idle for more than idleFactor windows.
// Runs at most once per window, amortized across Allow calls.
func (l *Limiter) maybeSweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	l.lastSweep = now

	idleCutoff := now.Add(-idleFactor * l.window)
	for id, entries := range l.windows {
		if len(entries) == 0 || entries[len(entries)-1].Before(idleCutoff) {
			delete(l.windows, id)
		}
	}
}

// Tracked returns the number of identifiers currently held. Used by
// tests and the analytics surface.
func (l *Limiter) Tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// idleEviction is how long a client may stay quiet before its limiter
// is dropped during sweeps.
const idleEviction = 5 * time.Minute

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter implements per-IP rate limiting for the admin surface.
// Limiters are keyed on the remote host only (never the ephemeral
// port), and idle clients are evicted so the map stays bounded.
type RateLimiter struct {
	clients   map[string]*client
	mu        sync.Mutex
	r         rate.Limit
	b         int
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*client),
		r:       rate.Limit(requestsPerSecond),
		b:       burst,
		now:     time.Now,
	}
}

// clientIP strips the port from a RemoteAddr. Two connections from the
// same host must share one limiter.
func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

// getLimiter returns the rate limiter for a given IP
func (rl *RateLimiter) getLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.maybeSweep(now)

	c, exists := rl.clients[ip]
	if !exists {
		c = &client{limiter: rate.NewLimiter(rl.r, rl.b)}
		rl.clients[ip] = c
	}
	c.lastSeen = now

	return c.limiter
}

// maybeSweep drops clients idle past idleEviction. Runs at most once
// per eviction interval, amortized across requests. Caller holds mu.
func (rl *RateLimiter) maybeSweep(now time.Time) {
	if now.Sub(rl.lastSweep) < idleEviction {
		return
	}
	rl.lastSweep = now

	cutoff := now.Add(-idleEviction)
	for ip, c := range rl.clients {
		if c.lastSeen.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

// tracked returns the number of client limiters currently held.
func (rl *RateLimiter) tracked() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// Limit is a middleware that rate limits requests
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limiter := rl.getLimiter(clientIP(r.RemoteAddr))

		if !limiter.Allow() {
			w.Header().Set("Content-Type", "application/json")
			http.Error(w, `{"error": "Rate limit exceeded. Please try again later."}`, http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

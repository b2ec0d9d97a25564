package middleware

import (
	"net/http"
	"sync"
	"time"
)

const (
	limiterSweepEvery = 3 * time.Minute
	limiterIdleEvict  = 10 * time.Minute
)

// clientBucket is a token bucket for one caller.
type clientBucket struct {
	tokens   float64
	lastSeen time.Time
}

// RateLimiter throttles callers per client IP. Tokens refill continuously at
// perSecond up to burst; a request spends one token.
type RateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientBucket
	perSecond float64
	burst     float64
}

// NewRateLimiter creates a limiter allowing perSecond sustained requests with
// the given burst per IP, and starts the idle-entry sweeper.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		clients:   make(map[string]*clientBucket),
		perSecond: perSecond,
		burst:     float64(burst),
	}
	go rl.sweep()
	return rl
}

// Allow reports whether a request from ip may proceed.
func (rl *RateLimiter) Allow(ip string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.clients[ip]
	if !ok {
		b = &clientBucket{tokens: rl.burst, lastSeen: now}
		rl.clients[ip] = b
	}

	b.tokens += now.Sub(b.lastSeen).Seconds() * rl.perSecond
	if b.tokens > rl.burst {
		b.tokens = rl.burst
	}
	b.lastSeen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// sweep drops buckets for clients that went quiet, keeping the map bounded.
func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(limiterSweepEvery)
	defer ticker.Stop()
	for range ticker.C {
		idleSince := time.Now().Add(-limiterIdleEvict)
		rl.mu.Lock()
		for ip, b := range rl.clients {
			if b.lastSeen.Before(idleSince) {
				delete(rl.clients, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// RateLimit rejects requests over the per-IP budget with 429. The client IP
// comes from X-Real-Ip when chi's RealIP middleware runs first, falling back
// to the socket address.
func RateLimit(perSecond float64, burst int) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(perSecond, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.RemoteAddr
			if realIP := r.Header.Get("X-Real-Ip"); realIP != "" {
				ip = realIP
			}
			if !limiter.Allow(ip) {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

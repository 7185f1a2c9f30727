package middleware

import (
	"net/http"
	"sync"
	"time"
)

const (
	// Idle buckets older than visitorTTL are evicted.
	visitorTTL    = 10 * time.Minute
	sweepInterval = 5 * time.Minute
)

// RateLimiter applies a per-client token bucket. Buckets refill
// continuously at rate tokens per second up to burst; a request costs one
// token. Booking is a low-frequency action per patient, so the limiter only
// needs to stop floods, not shape traffic.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*tokenBucket
	rate    float64
	burst   float64
}

type tokenBucket struct {
	tokens   float64
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing rate requests/sec with the
// given burst size per client address.
func NewRateLimiter(rate float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*tokenBucket),
		rate:    rate,
		burst:   float64(burst),
	}
	go rl.sweep()
	return rl
}

// Allow reports whether the client at addr may proceed, taking one token.
func (rl *RateLimiter) Allow(addr string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.clients[addr]
	if !ok {
		rl.clients[addr] = &tokenBucket{tokens: rl.burst - 1, lastSeen: now}
		return true
	}

	refilled := b.tokens + now.Sub(b.lastSeen).Seconds()*rl.rate
	if refilled > rl.burst {
		refilled = rl.burst
	}
	b.lastSeen = now

	if refilled < 1 {
		b.tokens = refilled
		return false
	}
	b.tokens = refilled - 1
	return true
}

// sweep evicts buckets that have been idle long enough to be full again,
// keeping the map from growing with one entry per address ever seen.
func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-visitorTTL)
		rl.mu.Lock()
		for addr, b := range rl.clients {
			if b.lastSeen.Before(cutoff) {
				delete(rl.clients, addr)
			}
		}
		rl.mu.Unlock()
	}
}

// clientAddr prefers the address resolved by chi's RealIP middleware, which
// runs earlier in the chain, over the raw peer address.
func clientAddr(r *http.Request) string {
	if ip := r.Header.Get("X-Real-Ip"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// RateLimit rejects requests exceeding the configured per-client rate with
// 429 Too Many Requests.
func RateLimit(rate float64, burst int) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(rate, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(clientAddr(r)) {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

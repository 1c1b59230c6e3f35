package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// idleTTL is how long a caller's limiter survives without requests.
const idleTTL = 10 * time.Minute

// sweepInterval bounds how often Allow scans for idle callers.
const sweepInterval = idleTTL / 2

type callerLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per caller key.
type RateLimiter struct {
	mu      sync.Mutex
	callers map[string]*callerLimiter
	burst   int
	refill  rate.Limit
	now     func() time.Time

	// lastSweep is guarded by mu.
	lastSweep time.Time
}

// NewRateLimiter allows burst requests at once and refillPerSec afterwards.
func NewRateLimiter(burst, refillPerSec int) *RateLimiter {
	return &RateLimiter{
		callers: make(map[string]*callerLimiter),
		burst:   burst,
		refill:  rate.Limit(refillPerSec),
		now:     time.Now,
	}
}

// Allow consumes one token from key's bucket.
func (rl *RateLimiter) Allow(key string) bool {
	now := rl.now()

	rl.mu.Lock()
	if now.Sub(rl.lastSweep) >= sweepInterval {
		rl.sweepLocked(now)
	}
	c, ok := rl.callers[key]
	if !ok {
		c = &callerLimiter{limiter: rate.NewLimiter(rl.refill, rl.burst)}
		rl.callers[key] = c
	}
	c.lastSeen = now
	rl.mu.Unlock()

	return c.limiter.AllowN(now, 1)
}

// retryAfter is the whole number of seconds until one token is refilled.
func (rl *RateLimiter) retryAfter() int {
	if rl.refill <= 0 {
		return int(idleTTL.Seconds())
	}
	return int(math.Ceil(1 / float64(rl.refill)))
}

// Sweep drops limiters idle for longer than idleTTL and returns how many are left.
// Allow also sweeps every sweepInterval, so calling it is optional.
func (rl *RateLimiter) Sweep() int {
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.sweepLocked(now)
	return len(rl.callers)
}

func (rl *RateLimiter) sweepLocked(now time.Time) {
	cutoff := now.Add(-idleTTL)
	for key, c := range rl.callers {
		if c.lastSeen.Before(cutoff) {
			delete(rl.callers, key)
		}
	}
	rl.lastSweep = now
}

// RateLimitMiddleware limits each caller (account + client IP).
// burst: requests allowed at once; refillPerSec: sustained rate.
func RateLimitMiddleware(burst, refillPerSec int) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(burst, refillPerSec)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublic(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			key := GetAccountFromContext(r.Context()) + ":" + clientIP(r)
			if !limiter.Allow(key) {
				w.Header().Set("Retry-After", strconv.Itoa(limiter.retryAfter()))
				http.Error(w, "rate limit exceeded, please try again later", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port from RemoteAddr
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

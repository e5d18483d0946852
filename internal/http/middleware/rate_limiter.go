package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"ats-portal/internal/guard"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL       = 10 * time.Minute
	limiterSweepInterval = time.Minute
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanos
}

// RateLimiter implements token bucket rate limiting per identity. Buckets
// idle for longer than limiterIdleTTL have refilled and are dropped.
type RateLimiter struct {
	limiters  sync.Map // key -> *limiterEntry
	rate      rate.Limit
	burst     int
	lastSweep atomic.Int64
	now       func() time.Time
}

// NewRateLimiter creates a new rate limiter
// requestsPerSecond: number of requests allowed per second
// burst: maximum burst size
func NewRateLimiter(requestsPerSecond int, burst int) *RateLimiter {
	rl := &RateLimiter{
		rate:  rate.Limit(requestsPerSecond),
		burst: burst,
		now:   time.Now,
	}
	rl.lastSweep.Store(rl.now().UnixNano())
	return rl
}

// NewStrictRateLimiter is used for login and token exchange
func NewStrictRateLimiter() *RateLimiter {
	return NewRateLimiter(5, 10)
}

// NewGlobalRateLimiter applies to every request
func NewGlobalRateLimiter() *RateLimiter {
	return NewRateLimiter(100, 200)
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	now := rl.now()
	rl.maybeSweep(now)

	raw, ok := rl.limiters.Load(key)
	if !ok {
		raw, _ = rl.limiters.LoadOrStore(key, &limiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)})
	}
	entry := raw.(*limiterEntry)
	entry.lastSeen.Store(now.UnixNano())
	return entry.limiter
}

// maybeSweep runs Sweep at most once per limiterSweepInterval, on whichever
// request gets there first.
func (rl *RateLimiter) maybeSweep(now time.Time) {
	last := rl.lastSweep.Load()
	if now.UnixNano()-last < int64(limiterSweepInterval) {
		return
	}
	if !rl.lastSweep.CompareAndSwap(last, now.UnixNano()) {
		return
	}
	rl.Sweep(now.Add(-limiterIdleTTL))
}

// Sweep drops buckets not used since cutoff and returns how many it removed
func (rl *RateLimiter) Sweep(cutoff time.Time) int {
	removed := 0
	rl.limiters.Range(func(key, value any) bool {
		if value.(*limiterEntry).lastSeen.Load() < cutoff.UnixNano() {
			rl.limiters.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// Len returns the number of tracked buckets
func (rl *RateLimiter) Len() int {
	n := 0
	rl.limiters.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Allow checks if a request should be allowed for the given key
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// Middleware limits signed-in users per session and everyone else per client IP
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := "ip:" + c.RealIP()
			if s := guard.SessionFrom(c); s != nil {
				key = "session:" + s.TokenHash
			}

			limiter := rl.getLimiter(key)
			header := c.Response().Header()
			header.Set("X-RateLimit-Limit", strconv.Itoa(rl.burst))

			if !limiter.Allow() {
				header.Set("X-RateLimit-Remaining", "0")
				header.Set("Retry-After", "1")
				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"error": "rate limit exceeded",
				})
			}

			header.Set("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens())))
			return next(c)
		}
	}
}

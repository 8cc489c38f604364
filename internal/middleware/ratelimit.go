package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/iliyamo/room-reservation/internal/config"
)

// RateLimiter keeps one token bucket per client key (the caller's
// network address).  Buckets are created lazily on first sight of a key
// and refill greedily: tokens accrue continuously up to the capacity,
// which x/time/rate implements natively.  The map lock is held only for
// lookup and insert; token consumption happens inside the bucket's own
// lock, so unrelated clients never contend on each other's buckets.
//
// Idle buckets are swept inline once per TTL.  A re-created bucket
// starts full, exactly like an idle bucket that refilled to capacity,
// so eviction never changes the observable throttling behaviour.
type RateLimiter struct {
	mu          sync.Mutex
	buckets     map[string]*clientBucket
	limit       rate.Limit
	burst       int
	ttl         time.Duration
	lastCleanup time.Time
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter builds a limiter from configuration.  With the default
// configuration (capacity 1, one token per second) a client gets exactly
// one admission per second on the reservation write endpoints.
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		buckets:     make(map[string]*clientBucket),
		limit:       rate.Every(cfg.RefillInterval),
		burst:       cfg.Capacity,
		ttl:         cfg.TTL,
		lastCleanup: time.Now(),
	}
}

// Admit consumes one token from the key's bucket, creating it on first
// use.  It reports whether the request may proceed.
func (rl *RateLimiter) Admit(key string) bool {
	return rl.bucketFor(key).Allow()
}

// bucketFor returns the limiter for the key, creating it if absent and
// sweeping stale entries while the map lock is already held.
func (rl *RateLimiter) bucketFor(key string) *rate.Limiter {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastCleanup) > rl.ttl {
		for k, b := range rl.buckets {
			if now.Sub(b.lastSeen) > rl.ttl {
				delete(rl.buckets, k)
			}
		}
		rl.lastCleanup = now
	}

	b, ok := rl.buckets[key]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter
}

// NewTokenBucket wraps the limiter as Echo middleware for the write
// routes.  The client key is the caller's network address as echo
// resolves it.  Denied requests get a 429 with a plain-text overload
// body; the limiter is orthogonal to authentication and applies before
// any lifecycle logic runs.
func NewTokenBucket(cfg config.RateLimitConfig) echo.MiddlewareFunc {
	if !cfg.Enabled {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	rl := NewRateLimiter(cfg)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.RealIP()
			if key == "" {
				key = "unknown"
			}
			if !rl.Admit(key) {
				c.Response().Header().Set("Retry-After", "1")
				return c.String(http.StatusTooManyRequests, "Too many requests")
			}
			return next(c)
		}
	}
}

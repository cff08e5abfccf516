// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements the edge rate limiter: an in-memory token bucket per
// operator (or per client IP when no operator is known). Buckets live in a
// lock-free map and idle ones are swept every few thousand lookups.
//
// Allocation replays detected by IdempotencyValidator skip the limiter so a
// client retrying a submission it already paid for is never throttled.
//
// The limiter is process-local and guards the upstream enterprise-access API
// from bursts; it is not an authorization mechanism.
package middleware

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/puzpuzpuz/xsync/v4"
	"golang.org/x/time/rate"
)

// keyFunc selects the identity used to key a rate-limit bucket.
type keyFunc func(*gin.Context) string

// KeyByOperatorOrIP keys buckets by OperatorID, falling back to the client
// IP for anonymous requests so they do not share one DefaultOperator bucket.
//
// Keys are prefixed so operator and IP namespaces never collide
// ("op:abc123" vs "ip:203.0.113.7").
func KeyByOperatorOrIP() keyFunc {
	return func(c *gin.Context) string {
		if op := OperatorID(c); op != DefaultOperator {
			return "op:" + op
		}
		return "ip:" + c.ClientIP()
	}
}

// bucket is one identity's limiter and its last use (unix nanos).
type bucket struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// RateLimiter is a per-key token-bucket limiter. Safe for concurrent use.
type RateLimiter struct {
	rps     rate.Limit
	burst   int
	keyFn   keyFunc
	buckets *xsync.Map[string, *bucket]

	ttl     time.Duration
	lookups atomic.Uint64
	sweepN  uint64
	now     func() time.Time
}

// NewRateLimiter returns a limiter granting rps tokens per second with the
// given burst (coerced to at least 1), keyed by keyFn.
func NewRateLimiter(rps float64, burst int, keyFn keyFunc) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		keyFn:   keyFn,
		buckets: xsync.NewMap[string, *bucket](),
		ttl:     10 * time.Minute,
		sweepN:  5000,
		now:     time.Now,
	}
}

// limiterFor returns the bucket limiter for key, creating it on first use.
// Every sweepN lookups, buckets idle for at least ttl are dropped first so a
// stale bucket is not refreshed by the lookup that should evict it.
func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	now := rl.now()
	if rl.lookups.Add(1)%rl.sweepN == 0 {
		rl.sweep(now)
	}

	b, ok := rl.buckets.Load(key)
	if !ok {
		b, _ = rl.buckets.LoadOrStore(key, &bucket{limiter: rate.NewLimiter(rl.rps, rl.burst)})
	}
	b.lastSeen.Store(now.UnixNano())
	return b.limiter
}

func (rl *RateLimiter) sweep(now time.Time) {
	cutoff := now.Add(-rl.ttl).UnixNano()
	rl.buckets.Range(func(k string, b *bucket) bool {
		if b.lastSeen.Load() <= cutoff {
			rl.buckets.Delete(k)
		}
		return true
	})
}

// IsRateBypass reports whether IdempotencyValidator marked this request as a
// replay that should not consume tokens.
func IsRateBypass(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyRateBypass) // set by IdempotencyValidator
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Handler returns the Gin middleware. A denied request gets 429 with
// Retry-After: 1 and the standard error envelope:
//
//	{"request_id": "<uuid>", "code": "rate_limited", "message": "rate limit exceeded"}
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) {
			c.Next()
			return
		}

		if rl.limiterFor(rl.keyFn(c)).Allow() {
			c.Next()
			return
		}

		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": c.Writer.Header().Get("X-Request-ID"),
			"code":       "rate_limited",
			"message":    "rate limit exceeded",
		})
	}
}

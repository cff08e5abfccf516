// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file validates the Idempotency-Key header. Allocation submits are the
// only requests that spend budget, so only routes carrying a :policyId param
// consult the stored outcomes; a key on any other route is validated and
// then ignored. Handlers read the result through GetIdempotencyKey and
// IsReplay, and the rate limiter skips requests marked as replays.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey carries the client-chosen key of an allocation submit.
const HeaderIdempotencyKey = "Idempotency-Key"

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay"
	ctxKeyRateBypass = "rate.bypass"

	defaultMaxKeyLen = 200
)

var defaultKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// IdempotencyOptions tunes key validation. Zero values select a 200 byte
// limit and the token pattern ^[A-Za-z0-9._~\-:]+$.
type IdempotencyOptions struct {
	MaxLen  int
	Pattern *regexp.Regexp
}

// IdempotencyLookup reports whether (operatorID, policyID, key) has a stored,
// unexpired outcome at now. Expiry is the lookup's concern.
type IdempotencyLookup func(ctx context.Context, operatorID, policyID, key string, now time.Time) (bool, error)

// GetIdempotencyKey returns the validated key, if the request carried one.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	s := c.GetString(ctxKeyIdemKey)
	return s, s != ""
}

// IsReplay reports whether a stored outcome exists for this request's key.
func IsReplay(c *gin.Context) bool {
	return c.GetBool(ctxKeyIdemReplay)
}

// IdempotencyValidator rejects malformed keys with 400 bad_idempotency_key
// and marks policy-scoped requests whose key has a stored outcome as replays.
// A failing lookup is logged and treated as a miss; it never blocks the
// request.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = defaultMaxKeyLen
	}
	pattern := opts.Pattern
	if pattern == nil {
		pattern = defaultKeyPattern
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pattern.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "bad_idempotency_key",
				"message":    "invalid Idempotency-Key",
			})
			return
		}
		c.Set(ctxKeyIdemKey, key)

		policyID := c.Param("policyId")
		if lookup == nil || policyID == "" {
			c.Next()
			return
		}
		hit, err := lookup(c.Request.Context(), OperatorID(c), policyID, key, time.Now().UTC())
		switch {
		case err != nil:
			LoggerFrom(c).Warn().Err(err).Str("policy_id", policyID).Msg("idempotency lookup failed")
		case hit:
			c.Set(ctxKeyIdemReplay, true)
			c.Set(ctxKeyRateBypass, true)
		}
		c.Next()
	}
}

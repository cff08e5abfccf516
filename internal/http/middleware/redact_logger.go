// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements RedactingLogger, the access logger. Learner emails
// reach the API in allocation bodies and in the list search query
// (?search=ann@example.com), so the logger never records bodies and scrubs
// email addresses and phone numbers from query strings and header values.
// Policy, session and view identifiers are operational data and are logged
// as-is.
//
// Usage:
//
//	r.Use(middleware.RequestID())
//	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
//	    MaskHeaders: []string{"X-Upstream-Token"},
//	}))
package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// loggerKey is the Gin context key of the request-scoped logger.
const loggerKey = "logger"

// RedactOptions configures RedactingLogger.
//
// MaskHeaders names extra headers whose values are replaced with
// "[REDACTED]". Matching is case-insensitive; Authorization, Cookie and
// Set-Cookie are always masked.
type RedactOptions struct {
	MaskHeaders []string
}

var (
	emailRE = regexp.MustCompile(`(?i)[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}`)
	// Digits only, so hex runs inside UUIDs never match.
	phoneRE = regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
)

// scrub replaces emails, then phone numbers, in s.
func scrub(s string) string {
	if s == "" {
		return s
	}
	s = emailRE.ReplaceAllString(s, "[REDACTED:email]")
	return phoneRE.ReplaceAllString(s, "[REDACTED:phone]")
}

// RedactingLogger logs one line per request and attaches a request-scoped
// logger (request_id, operator_id) to the Gin context and the request
// context, where services pick it up with zerolog.Ctx.
//
// The line carries method, route, scrubbed query and headers, the route's
// resource ids, status, bytes, latency, and whether the request was an
// idempotent replay. Level is info, warn for 4xx, error for 5xx or when
// handlers recorded errors.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	masked := map[string]struct{}{
		"authorization": {},
		"cookie":        {},
		"set-cookie":    {},
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			masked[h] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		start := time.Now()

		rid, _ := c.Get(requestIDKey)
		operator := OperatorID(c)
		rl := log.With().
			Str("request_id", asString(rid)).
			Str("operator_id", operator).
			Logger()
		c.Set(loggerKey, &rl)
		c.Request = c.Request.WithContext(rl.WithContext(c.Request.Context()))

		headers := make(map[string]string, len(c.Request.Header))
		for k, vv := range c.Request.Header {
			if _, ok := masked[strings.ToLower(k)]; ok {
				headers[k] = "[REDACTED]"
				continue
			}
			headers[k] = scrub(strings.Join(vv, ", "))
		}
		query := truncate(scrub(c.Request.URL.RawQuery), maxQueryLogLength)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		reqID := c.Writer.Header().Get(requestIDHeader)
		if reqID == "" {
			reqID = c.GetHeader(requestIDHeader)
		}
		status := c.Writer.Status()

		var ev *zerolog.Event
		switch {
		case status >= 500 || len(c.Errors) > 0:
			ev = log.Error()
			if len(c.Errors) > 0 {
				ev = ev.Str("errors", c.Errors.String())
			}
		case status >= 400:
			ev = log.Warn()
		default:
			ev = log.Info()
		}

		ids := zerolog.Dict()
		for _, p := range c.Params {
			ids = ids.Str(p.Key, p.Value)
		}

		ev.
			Str("request_id", reqID).
			Str("operator_id", operator).
			Str("method", c.Request.Method).
			Str("path", route).
			Dict("params", ids).
			Str("query", query).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Bool("replayed", IsReplay(c)).
			Interface("headers", headers).
			Msg("http_request")
	}
}

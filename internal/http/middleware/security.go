// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file sets response hardening headers. assignd serves JSON only, so no
// Content-Security-Policy is sent; responses carry learner emails and budget
// figures and are not stored by browsers unless a route opts into
// revalidation.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// SecurityOptions configures SecurityHeaders.
//
// HSTS is sent only when EnableHSTS is set and the request arrived over
// HTTPS, directly or per X-Forwarded-Proto. HSTSMaxAge <= 0 means 180 days.
// ExposeHeaders are added to Access-Control-Expose-Headers next to
// X-Request-ID. RevalidateRoutes are full Gin paths whose handlers answer
// If-None-Match; with NoStore they get "private, no-cache" so browsers keep
// the body and revalidate.
type SecurityOptions struct {
	EnableHSTS       bool
	HSTSMaxAge       time.Duration
	NoStore          bool
	EnablePolicy     bool
	ExposeHeaders    []string
	RevalidateRoutes []string
}

// SecurityHeaders always sets nosniff, DENY framing and no-referrer. With
// EnablePolicy it adds Permissions-Policy and X-Permitted-Cross-Domain-Policies,
// and with NoStore the no-store cache trio (Cache-Control, Pragma, Expires).
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	static := [][2]string{
		{"X-Content-Type-Options", "nosniff"},
		{"X-Frame-Options", "DENY"},
		{"Referrer-Policy", "no-referrer"},
	}
	if opt.EnablePolicy {
		static = append(static,
			[2]string{"Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()"},
			[2]string{"X-Permitted-Cross-Domain-Policies", "none"},
		)
	}

	maxAge := opt.HSTSMaxAge
	if maxAge <= 0 {
		maxAge = 180 * 24 * time.Hour
	}
	hsts := "max-age=" + strconv.Itoa(int(maxAge.Seconds())) + "; includeSubDomains; preload"

	revalidate := make(map[string]bool, len(opt.RevalidateRoutes))
	for _, route := range opt.RevalidateRoutes {
		revalidate[route] = true
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		for _, kv := range static {
			h.Set(kv[0], kv[1])
		}

		switch {
		case !opt.NoStore:
		case revalidate[c.FullPath()]:
			h.Set("Cache-Control", "private, no-cache")
		default:
			h.Set("Cache-Control", "no-store")
			h.Set("Pragma", "no-cache")
			h.Set("Expires", "0")
		}

		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hsts)
		}

		if h.Get(requestIDHeader) != "" {
			exposeHeaders(h, requestIDHeader)
			exposeHeaders(h, opt.ExposeHeaders...)
		}

		c.Next()
	}
}

// isHTTPS reports whether the incoming request used HTTPS either directly
// (r.TLS != nil) or via a reverse proxy that set X-Forwarded-Proto: https.
func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// exposeHeaders appends names to Access-Control-Expose-Headers without
// clobbering or duplicating what is already there.
func exposeHeaders(h http.Header, names ...string) {
	const hdr = "Access-Control-Expose-Headers"
	for _, name := range names {
		cur := h.Get(hdr)
		switch {
		case cur == "":
			h.Set(hdr, name)
		case !strings.Contains(cur, name):
			h.Set(hdr, cur+", "+name)
		}
	}
}

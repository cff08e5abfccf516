package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type lookupCall struct {
	operator, policy, key string
	now                   time.Time
}

// idemRouter mounts the validator in front of the allocation submit route and
// a bulk route, recording what handlers observed.
func idemRouter(opts IdempotencyOptions, lookup IdempotencyLookup, seen *[]string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), IdempotencyValidator(opts, lookup))
	record := func(c *gin.Context) {
		key, _ := GetIdempotencyKey(c)
		*seen = append(*seen, fmt.Sprintf("%s|replay=%t|bypass=%t", key, IsReplay(c), IsRateBypass(c)))
		c.Status(http.StatusCreated)
	}
	r.POST("/policies/:policyId/allocations", record)
	r.POST("/views/:viewId/bulk/:kind", record)
	return r
}

func send(r *gin.Engine, path, key, operator string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	if operator != "" {
		req.Header.Set(HeaderUserID, operator)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotencyValidator_ReplayDetection(t *testing.T) {
	var calls []lookupCall
	lookup := func(_ context.Context, operator, policy, key string, now time.Time) (bool, error) {
		calls = append(calls, lookupCall{operator, policy, key, now})
		return key == "stored-1", nil
	}
	var seen []string
	r := idemRouter(IdempotencyOptions{}, lookup, &seen)

	cases := []struct {
		name, path, key, operator string
		want                      string
		lookups                   int
	}{
		{"no key", "/policies/p-1/allocations", "", "", "|replay=false|bypass=false", 0},
		{"miss", "/policies/p-1/allocations", "new-1", "ops-a", "new-1|replay=false|bypass=false", 1},
		{"hit", "/policies/p-1/allocations", "stored-1", "ops-a", "stored-1|replay=true|bypass=true", 1},
		{"bulk route is inert", "/views/v-1/bulk/remind", "stored-1", "ops-a", "stored-1|replay=false|bypass=false", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			calls, seen = nil, nil
			if w := send(r, tc.path, tc.key, tc.operator); w.Code != http.StatusCreated {
				t.Fatalf("status = %d", w.Code)
			}
			if len(seen) != 1 || seen[0] != tc.want {
				t.Fatalf("handler saw %v; want %q", seen, tc.want)
			}
			if len(calls) != tc.lookups {
				t.Fatalf("lookups = %d; want %d", len(calls), tc.lookups)
			}
		})
	}

	calls = nil
	send(r, "/policies/p-9/allocations", "k-1", "")
	if len(calls) != 1 {
		t.Fatalf("lookups = %d", len(calls))
	}
	got := calls[0]
	if got.operator != DefaultOperator || got.policy != "p-9" || got.key != "k-1" || got.now.Location() != time.UTC {
		t.Fatalf("lookup args = %+v", got)
	}
}

func TestIdempotencyValidator_RejectsMalformedKeys(t *testing.T) {
	lookup := func(context.Context, string, string, string, time.Time) (bool, error) {
		t.Fatal("lookup must not run for a rejected key")
		return false, nil
	}
	cases := []struct {
		name string
		opts IdempotencyOptions
		key  string
	}{
		{"whitespace", IdempotencyOptions{}, "has space"},
		{"too long for default", IdempotencyOptions{}, strings.Repeat("k", 201)},
		{"too long for custom", IdempotencyOptions{MaxLen: 5}, "abcdef"},
		{"custom pattern", IdempotencyOptions{Pattern: regexp.MustCompile(`^[0-9]+$`)}, "abc123"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var seen []string
			r := idemRouter(tc.opts, lookup, &seen)
			req := httptest.NewRequest(http.MethodPost, "/policies/p-1/allocations", nil)
			req.Header.Set(HeaderIdempotencyKey, tc.key)
			req.Header.Set(requestIDHeader, "rid-bad")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			var body map[string]any
			_ = json.Unmarshal(w.Body.Bytes(), &body)
			if w.Code != http.StatusBadRequest || body["code"] != "bad_idempotency_key" || body["request_id"] != "rid-bad" {
				t.Fatalf("status=%d body=%v", w.Code, body)
			}
			if len(seen) != 0 {
				t.Fatal("handler ran for a rejected key")
			}
		})
	}

	var seen []string
	r := idemRouter(IdempotencyOptions{}, nil, &seen)
	if w := send(r, "/policies/p-1/allocations", strings.Repeat("k", 200), ""); w.Code != http.StatusCreated {
		t.Fatalf("200-byte key rejected: %d", w.Code)
	}
}

func TestIdempotencyValidator_LookupErrorIsAMiss(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	lookup := func(context.Context, string, string, string, time.Time) (bool, error) {
		return true, errors.New("database is locked")
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(loggerKey, &logger); c.Next() })
	r.Use(IdempotencyValidator(IdempotencyOptions{}, lookup))
	r.POST("/policies/:policyId/allocations", func(c *gin.Context) {
		if IsReplay(c) || IsRateBypass(c) {
			t.Fatal("a failed lookup must not mark a replay")
		}
		c.Status(http.StatusCreated)
	})

	if w := send(r, "/policies/p-1/allocations", "k-1", ""); w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}
	out := buf.String()
	if !strings.Contains(out, `"level":"warn"`) || !strings.Contains(out, "database is locked") || !strings.Contains(out, `"policy_id":"p-1"`) {
		t.Fatalf("log = %s", out)
	}
}

func TestIdempotencyAccessors_IgnoreForeignValues(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if k, ok := GetIdempotencyKey(c); ok || k != "" || IsReplay(c) {
		t.Fatal("zero context should report nothing")
	}
	c.Set(ctxKeyIdemKey, 123)
	c.Set(ctxKeyIdemReplay, "yes")
	if _, ok := GetIdempotencyKey(c); ok || IsReplay(c) {
		t.Fatal("non-string key or non-bool replay flag must read as absent")
	}
}

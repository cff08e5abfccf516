package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func captureLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })
	log.Logger = zerolog.New(&buf) // plain JSON lines
	return &buf
}

// logLines decodes every JSON log line in buf.
func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var m map[string]any
		if json.Unmarshal([]byte(line), &m) == nil {
			out = append(out, m)
		}
	}
	return out
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/allocations/:sessionId", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(requestIDKey))
	})

	cases := []struct {
		name, incoming string
	}{
		{"generated", ""},
		{"propagated", "abc-123"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/allocations/s-1", nil)
			if tc.incoming != "" {
				req.Header.Set(strings.ToLower(requestIDHeader), tc.incoming)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			got := w.Header().Get(requestIDHeader)
			if got == "" || got != w.Body.String() {
				t.Fatalf("header %q, context %q", got, w.Body.String())
			}
			if tc.incoming != "" && got != tc.incoming {
				t.Fatalf("request id = %q; want %q", got, tc.incoming)
			}
		})
	}
}

func TestRecovery_PanicsToJSON500AndLogs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID(), RedactingLogger(RedactOptions{}), Recovery())
	r.POST("/policies/:policyId/allocations", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/policies/pol-1/allocations", nil)
	req.Header.Set(requestIDHeader, "rid-panic")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 from Recovery, got %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json body: %v", err)
	}
	if body["code"] != "internal_error" || body["request_id"] != "rid-panic" {
		t.Fatalf("unexpected body: %v", body)
	}

	var found bool
	for _, m := range logLines(t, buf) {
		if m["message"] == "panic recovered" {
			found = true
			if m["route"] != "/policies/:policyId/allocations" || m["operator_id"] != DefaultOperator {
				t.Fatalf("panic log = %v", m)
			}
		}
	}
	if !found {
		t.Fatalf("expected panic log, got:\n%s", buf.String())
	}
}

func TestRecovery_PanicAfterWrite_NoJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	_ = captureLogger(t)

	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/panic-after-write", func(c *gin.Context) {
		c.String(http.StatusOK, "partial-body")
		panic("late kaboom")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic-after-write", nil))
	if strings.Contains(strings.ToLower(w.Header().Get("Content-Type")), "application/json") {
		t.Fatalf("expected no JSON error body when panic after write; body=%q", w.Body.String())
	}
}

func TestLoggerFrom_FallbackAndRequestScoped(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID())
	r.GET("/plain", func(c *gin.Context) {
		LoggerFrom(c).Info().Msg("fallback")
		c.Status(http.StatusOK)
	})
	scoped := r.Group("", RedactingLogger(RedactOptions{}))
	scoped.GET("/scoped", func(c *gin.Context) {
		LoggerFrom(c).Info().Msg("scoped")
		zerolog.Ctx(c.Request.Context()).Info().Msg("from-service")
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/plain", nil))
	req := httptest.NewRequest(http.MethodGet, "/scoped", nil)
	req.Header.Set(requestIDHeader, "rid-ctx")
	req.Header.Set(HeaderUserID, "admin-1")
	r.ServeHTTP(httptest.NewRecorder(), req)

	seen := map[string]bool{}
	for _, m := range logLines(t, buf) {
		msg, _ := m["message"].(string)
		seen[msg] = true
		switch msg {
		case "fallback":
			if _, ok := m["request_id"]; ok {
				t.Fatalf("fallback logger unexpectedly had request_id: %v", m)
			}
		case "scoped", "from-service":
			if m["request_id"] != "rid-ctx" || m["operator_id"] != "admin-1" {
				t.Fatalf("%s log missing request fields: %v", msg, m)
			}
		}
	}
	for _, msg := range []string{"fallback", "scoped", "from-service"} {
		if !seen[msg] {
			t.Fatalf("%q not logged: %s", msg, buf.String())
		}
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"abcdefgh", 5, "abcde…"},
		{"abc", 0, "abc"},
		{"abc", -1, "abc"},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.max); got != tc.want {
			t.Errorf("truncate(%q, %d) = %q; want %q", tc.in, tc.max, got, tc.want)
		}
	}
	if asString("x") != "x" || asString(123) != "" || asString(nil) != "" {
		t.Fatalf("asString mismatch")
	}
}

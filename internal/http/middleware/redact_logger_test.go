package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRedactingLogger_ScrubsLearnerPII(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID(), RedactingLogger(RedactOptions{MaskHeaders: []string{"X-Upstream-Token"}}))
	r.GET("/configurations/:configId/views/:viewId", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	q := "search=ann.lee%2Btag@example.com&phone=+1-555-123-4567&page=2"
	req := httptest.NewRequest(http.MethodGet, "/configurations/cfg-1/views/123e4567-e89b-12d3-a456-426614174000?"+q, nil)
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("Cookie", "sid=topsecret")
	req.Header.Set("X-Upstream-Token", "shhh")
	req.Header.Set("X-Note", "learner bob@example.com phone 555-123-4567")
	req.Header.Set(HeaderUserID, "admin-1")
	req.Header.Set(requestIDHeader, "rid-1")
	r.ServeHTTP(httptest.NewRecorder(), req)

	lines := logLines(t, buf)
	if len(lines) != 1 {
		t.Fatalf("want one access line, got %d: %s", len(lines), buf.String())
	}
	line := lines[0]
	if line["level"] != "info" || line["path"] != "/configurations/:configId/views/:viewId" {
		t.Fatalf("line = %v", line)
	}
	if line["request_id"] != "rid-1" || line["operator_id"] != "admin-1" || line["replayed"] != false {
		t.Fatalf("identity fields = %v", line)
	}
	params, _ := line["params"].(map[string]any)
	if params["configId"] != "cfg-1" || params["viewId"] != "123e4567-e89b-12d3-a456-426614174000" {
		t.Fatalf("resource ids must be logged verbatim: %v", params)
	}
	query, _ := line["query"].(string)
	if strings.Contains(query, "example.com") || !strings.Contains(query, "[REDACTED:email]") || !strings.Contains(query, "[REDACTED:phone]") || !strings.Contains(query, "page=2") {
		t.Fatalf("query = %q", query)
	}

	headers, _ := line["headers"].(map[string]any)
	for _, h := range []string{"Authorization", "Cookie", "X-Upstream-Token"} {
		if headers[h] != "[REDACTED]" {
			t.Fatalf("%s must be masked: %v", h, headers[h])
		}
	}
	if headers["X-Note"] != "learner [REDACTED:email] phone [REDACTED:phone]" {
		t.Fatalf("X-Note = %v", headers["X-Note"])
	}
	if strings.Contains(buf.String(), "bob@example.com") {
		t.Fatalf("learner email leaked: %s", buf.String())
	}
}

func TestRedactingLogger_LevelsAndRequestIDFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RedactingLogger(RedactOptions{}))
	r.GET("/warn", func(c *gin.Context) { c.Status(http.StatusConflict) })
	r.GET("/error", func(c *gin.Context) { c.Status(http.StatusBadGateway) })
	r.GET("/errs", func(c *gin.Context) {
		_ = c.Error(http.ErrAbortHandler)
		c.Status(http.StatusOK)
	})

	for path, rid := range map[string]string{"/warn": "rid-warn", "/error": "rid-err", "/errs": "rid-errs"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set(requestIDHeader, rid)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	want := map[string]string{"rid-warn": "warn", "rid-err": "error", "rid-errs": "error"}
	for _, m := range logLines(t, buf) {
		rid, _ := m["request_id"].(string)
		if lvl, ok := want[rid]; ok {
			if m["level"] != lvl {
				t.Fatalf("%s level = %v; want %s", rid, m["level"], lvl)
			}
			delete(want, rid)
		}
	}
	if len(want) != 0 {
		t.Fatalf("missing lines for %v: %s", want, buf.String())
	}
}

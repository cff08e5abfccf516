// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, the upstream enterprise-access API, engine
// debounce windows, rate limiting, and observability.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "assignd")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// UpstreamConfig points the engine at the enterprise-access backend.
type UpstreamConfig struct {
	BaseURL string        // UPSTREAM_BASE_URL, absolute
	Timeout time.Duration // UPSTREAM_TIMEOUT per call
	Token   string        // UPSTREAM_TOKEN, sent as a bearer token when set
	RPS     float64       // UPSTREAM_RPS outbound token rate
	Burst   int           // UPSTREAM_BURST outbound bucket size
}

// EngineConfig holds the assignment engine's tunables.
type EngineConfig struct {
	ValidationDebounce time.Duration // quiet period before validating typed emails
	ListDebounce       time.Duration // coalescing window for list fetches
	BudgetCacheTTL     time.Duration // max age of cached budget aggregates
	MaxLearnerEmails   int           // upper bound on learners per allocation
	SessionTTL         time.Duration // idle lifetime of allocation sessions and list views
	DefaultPageSize    int
	MaxPageSize        int
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// App
	DBPath string // SQLite path for idempotency and tracking records

	Upstream UpstreamConfig
	Engine   EngineConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

	// Observability
	OTEL OTELConfig
}

// Load reads configuration from environment variables, applies defaults,
// normalizes values and validates the result. Invalid numbers, booleans and
// durations in the environment fall back to their defaults; out-of-range
// values are reported by Validate.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           getenv("GIN_MODE", "release"),

		// Logging / Docs
		LogLevel:       getenv("LOG_LEVEL", "info"),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    getenv("API_BASE_PATH", "/api/v1"),

		// App
		DBPath: getenv("DB_PATH", "assignd.db"),

		Upstream: UpstreamConfig{
			BaseURL: getenv("UPSTREAM_BASE_URL", ""),
			Timeout: getdur("UPSTREAM_TIMEOUT", 10*time.Second),
			Token:   getenv("UPSTREAM_TOKEN", ""),
			RPS:     getfloat("UPSTREAM_RPS", 20),
			Burst:   getint("UPSTREAM_BURST", 40),
		},
		Engine: EngineConfig{
			ValidationDebounce: getdur("VALIDATION_DEBOUNCE", 300*time.Millisecond),
			ListDebounce:       getdur("LIST_DEBOUNCE", 300*time.Millisecond),
			BudgetCacheTTL:     getdur("BUDGET_CACHE_TTL", time.Minute),
			MaxLearnerEmails:   getint("MAX_LEARNER_EMAILS", 1000),
			SessionTTL:         getdur("SESSION_TTL", 30*time.Minute),
			DefaultPageSize:    getint("DEFAULT_PAGE_SIZE", 25),
			MaxPageSize:        getint("MAX_PAGE_SIZE", 100),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Idempotency
		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "assignd"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}
	cfg.normalize()
	return cfg, cfg.Validate()
}

// normalize canonicalizes free-form values in place.
func (c *Config) normalize() {
	c.GinMode = strings.ToLower(strings.TrimSpace(c.GinMode))
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		c.GinMode = "release"
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "warning" {
		c.LogLevel = "warn"
	}
	c.APIBasePath = "/" + strings.Trim(strings.TrimSpace(c.APIBasePath), "/")
	c.Upstream.BaseURL = strings.TrimRight(strings.TrimSpace(c.Upstream.BaseURL), "/")
}

// Validate reports every invalid setting at once, joined into one error.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, msg string) {
		if !ok {
			errs = append(errs, errors.New(msg))
		}
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q must be one of: debug, info, warn, error, fatal, panic", c.LogLevel))
	}
	check(strings.TrimSpace(c.Port) != "", "PORT must not be empty")
	check(c.ReadTimeout > 0 && c.ReadHeaderTimeout > 0 && c.WriteTimeout > 0 && c.IdleTimeout > 0,
		"timeouts must be positive durations")
	check(c.MaxHeaderBytes > 0, "MAX_HEADER_BYTES must be > 0")
	check(strings.TrimSpace(c.DBPath) != "", "DB_PATH must not be empty")

	u, err := url.Parse(c.Upstream.BaseURL)
	check(err == nil && u.Scheme != "" && u.Host != "", "UPSTREAM_BASE_URL must be an absolute URL")
	check(c.Upstream.Timeout > 0, "UPSTREAM_TIMEOUT must be > 0")
	check(c.Upstream.RPS > 0 && c.Upstream.Burst >= 1, "UPSTREAM_RPS must be > 0 and UPSTREAM_BURST >= 1")

	e := c.Engine
	check(e.ValidationDebounce >= 0 && e.ListDebounce >= 0, "debounce windows must be >= 0")
	check(e.BudgetCacheTTL > 0 && e.SessionTTL > 0, "BUDGET_CACHE_TTL and SESSION_TTL must be > 0")
	check(e.MaxLearnerEmails >= 1, "MAX_LEARNER_EMAILS must be >= 1")
	check(e.DefaultPageSize >= 1 && e.MaxPageSize >= e.DefaultPageSize,
		"DEFAULT_PAGE_SIZE must be >= 1 and <= MAX_PAGE_SIZE")

	check(c.RateRPS >= 0, "RATE_RPS must be >= 0")
	check(c.RateBurst >= 1, "RATE_BURST must be >= 1")
	check(c.Security.HSTSMaxAge >= 0, "HSTS_MAX_AGE must be >= 0")
	check(c.IdempotencyTTL > 0, "IDEMPOTENCY_TTL must be > 0")
	check(c.OTEL.SampleRatio >= 0 && c.OTEL.SampleRatio <= 1, "OTEL_TRACES_SAMPLER_ARG must be in [0,1]")

	return errors.Join(errs...)
}

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

// parsed reads k with parse, returning def when unset or unparsable.
func parsed[T any](k string, def T, parse func(string) (T, error)) T {
	v, ok := os.LookupEnv(k)
	if !ok || strings.TrimSpace(v) == "" {
		return def
	}
	out, err := parse(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return out
}

func getint(k string, def int) int { return parsed(k, def, strconv.Atoi) }

func getdur(k string, def time.Duration) time.Duration {
	return parsed(k, def, time.ParseDuration)
}

func getfloat(k string, def float64) float64 {
	return parsed(k, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

func getbool(k string, def bool) bool {
	return parsed(k, def, func(s string) (bool, error) {
		switch strings.ToLower(s) {
		case "1", "true", "yes", "y", "on":
			return true, nil
		case "0", "false", "no", "n", "off":
			return false, nil
		}
		return false, strconv.ErrSyntax
	})
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

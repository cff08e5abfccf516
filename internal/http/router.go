// Package httpapi mounts the assignd JSON API on Gin: allocation sessions,
// cached budgets, assignment list views with bulk actions, and tracking
// events. RegisterRoutes installs the middleware chain and builds the engine
// services the handlers and the background sweeper share.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-budget-assign/internal/budgetcache"
	"github.com/tbourn/go-budget-assign/internal/config"
	"github.com/tbourn/go-budget-assign/internal/domain"
	_ "github.com/tbourn/go-budget-assign/internal/http/docs"
	"github.com/tbourn/go-budget-assign/internal/http/handlers"
	"github.com/tbourn/go-budget-assign/internal/http/middleware"
	"github.com/tbourn/go-budget-assign/internal/query"
	"github.com/tbourn/go-budget-assign/internal/repo"
	"github.com/tbourn/go-budget-assign/internal/services"
	"github.com/tbourn/go-budget-assign/internal/validation"
)

// trackingRepoShim adapts the repository free functions to the
// services.TrackingRepo interface expected by the TrackingService. This keeps
// services decoupled from the concrete repo package while reusing existing
// functions.
type trackingRepoShim struct{}

// CreateTrackingEvent proxies repo.CreateTrackingEvent.
func (trackingRepoShim) CreateTrackingEvent(ctx context.Context, db *gorm.DB, ev *domain.TrackingEvent) error {
	return repo.CreateTrackingEvent(ctx, db, ev)
}

// CountTrackingEvents proxies repo.CountTrackingEvents (pagination support).
func (trackingRepoShim) CountTrackingEvents(ctx context.Context, db *gorm.DB, f repo.TrackingFilter) (int64, error) {
	return repo.CountTrackingEvents(ctx, db, f)
}

// ListTrackingEventsPage proxies repo.ListTrackingEventsPage (pagination support).
func (trackingRepoShim) ListTrackingEventsPage(ctx context.Context, db *gorm.DB, f repo.TrackingFilter, offset, limit int) ([]domain.TrackingEvent, error) {
	return repo.ListTrackingEventsPage(ctx, db, f, offset, limit)
}

// Upstream is the enterprise-access surface the engine calls.
type Upstream interface {
	services.Allocator
	services.AssignmentLister
	services.BulkActor
	budgetcache.Source
}

// Engine holds the long-lived services wired by RegisterRoutes. The caller
// owns their background sweeping.
type Engine struct {
	Allocations *services.AllocationCoordinator
	Views       *services.Views
	Budgets     *budgetcache.Cache
	Tracking    *services.TrackingService
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), idempotency and rate
// limiting, CORS and security headers, health and metrics endpoints, and then
// mounts the versioned public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Idempotency validator (before rate limiter to allow bypass on replay)
//  8. Rate limiter (per operator/IP, bypass on replay)
//  9. CORS and Security headers
//  10. Gzip for list payloads
func RegisterRoutes(r *gin.Engine, db *gorm.DB, up Upstream, cfg config.Config) *Engine {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			"X-Upstream-Token",
		},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics("/metrics", "/health"))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Idempotency validation (before rate limiting, so replays are free)
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{},
		func(ctx context.Context, operatorID, policyID, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, operatorID, policyID, key, now)
			if errors.Is(err, repo.ErrNotFound) {
				return false, nil
			}
			if err != nil {
				return false, err
			}
			// A pending reservation is not a replay; it still pays the rate limit.
			return !rec.Pending(), nil
		},
	))

	// 8) Token-bucket rate limiter per operator/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByOperatorOrIP())
	r.Use(rl.Handler())

	// 9) CORS, then security headers
	r.Use(corsHandlers(cfg.CORS.AllowedOrigins)...)

	// Security headers (HSTS only when enabled and request is HTTPS).
	// The tracking list answers If-None-Match, so it is revalidated rather
	// than never stored.
	trackingRoute := strings.TrimRight(cfg.APIBasePath, "/") + "/tracking-events"
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:       cfg.Security.EnableHSTS,
		HSTSMaxAge:       cfg.Security.HSTSMaxAge,
		NoStore:          true,
		EnablePolicy:     true,
		ExposeHeaders:    []string{"ETag", "Idempotency-Replayed"},
		RevalidateRoutes: []string{trackingRoute},
	}))

	// 10) Compress responses; assignment pages can be large.
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// API docs
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← upstream/cache/db
	eng := newEngine(db, up, cfg)
	h := handlers.New(eng.Allocations, eng.Budgets, eng.Views, services.NewBulkCoordinator(up, eng.Budgets, eng.Tracking), eng.Tracking, handlers.Options{
		DB:              db,
		IdempotencyTTL:  cfg.IdempotencyTTL,
		Columns:         query.AssignmentColumns,
		DefaultPageSize: cfg.Engine.DefaultPageSize,
		MaxPageSize:     cfg.Engine.MaxPageSize,
	})

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Allocations
		api.POST("/policies/:policyId/allocations/validate", h.ValidateAllocation)
		api.POST("/policies/:policyId/allocations", h.CreateAllocation)
		api.GET("/allocations/:sessionId", h.GetAllocation)
		api.PUT("/allocations/:sessionId/draft", h.UpdateAllocationDraft)
		api.POST("/allocations/:sessionId/submit", h.SubmitAllocation)
		api.POST("/allocations/:sessionId/retry", h.RetryAllocation)
		api.POST("/allocations/:sessionId/exit", h.ExitAllocation)

		// Budgets
		api.GET("/policies/:policyId/budget", h.GetBudget)
		api.GET("/enterprises/:enterpriseId/budgets", h.ListBudgets)

		// List views
		api.POST("/configurations/:configId/views", h.CreateView)
		api.GET("/views/:viewId", h.GetView)
		api.PUT("/views/:viewId/state", h.UpdateViewState)
		api.POST("/views/:viewId/refresh", h.RefreshView)
		api.DELETE("/views/:viewId", h.DeleteView)

		// Bulk
		api.POST("/views/:viewId/bulk/:kind/confirm", h.ConfirmBulk)
		api.POST("/views/:viewId/bulk/:kind", h.PerformBulk)

		// Tracking
		api.GET("/tracking-events", h.ListTrackingEvents)
	}
	return eng
}

// newEngine builds the engine services from configuration.
func newEngine(db *gorm.DB, up Upstream, cfg config.Config) *Engine {
	cache := budgetcache.New(up, cfg.Engine.BudgetCacheTTL)
	tracking := services.NewTrackingService(db, trackingRepoShim{})

	coord := services.NewAllocationCoordinator(up, cache, cache, validation.Validator{MaxEmails: cfg.Engine.MaxLearnerEmails}, tracking)
	coord.Classifier.Logger = &log.Logger
	if cfg.Engine.ValidationDebounce > 0 {
		coord.Debounce = cfg.Engine.ValidationDebounce
	}
	if cfg.Engine.SessionTTL > 0 {
		coord.TTL = cfg.Engine.SessionTTL
	}

	views := services.NewViews(up, tracking)
	if cfg.Engine.ListDebounce > 0 {
		views.Delay = cfg.Engine.ListDebounce
	}
	if cfg.Engine.SessionTTL > 0 {
		views.TTL = cfg.Engine.SessionTTL
	}
	if cfg.Engine.DefaultPageSize > 0 {
		views.Defaults = domain.TableQueryState{PageSize: cfg.Engine.DefaultPageSize}
	}

	return &Engine{Allocations: coord, Views: views, Budgets: cache, Tracking: tracking}
}

// corsHandlers allows every origin when none are configured, otherwise
// echoes allowlisted origins. Credentials are never allowed. The explicit
// ACAO writer runs first so even requests without an Origin header (health
// health checks, tests) carry the header.
func corsHandlers(origins []string) []gin.HandlerFunc {
	base := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Authorization", "If-None-Match",
			middleware.HeaderUserID, middleware.HeaderIdempotencyKey,
		},
		ExposeHeaders: []string{"X-Request-ID", "Content-Length", "ETag", "Idempotency-Replayed"},
		MaxAge:        12 * time.Hour,
	}

	if len(origins) == 0 {
		base.AllowAllOrigins = true
		return []gin.HandlerFunc{
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(base),
		}
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	base.AllowOrigins = origins
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			origin := c.GetHeader("Origin")
			if _, ok := allowed[origin]; ok && origin != "" {
				c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
				c.Writer.Header().Add("Vary", "Origin")
			}
			c.Next()
		},
		cors.New(base),
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}

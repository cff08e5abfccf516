// Package handlers exposes the engine over a JSON API.
//
// Handlers are transport-thin: they validate input, call the engine
// services and translate results into HTTP responses (including
// conditional and idempotent responses). The services own all state.
package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tbourn/go-budget-assign/internal/domain"
	"github.com/tbourn/go-budget-assign/internal/http/middleware"
	"github.com/tbourn/go-budget-assign/internal/query"
	"github.com/tbourn/go-budget-assign/internal/repo"
	"github.com/tbourn/go-budget-assign/internal/services"
	"github.com/tbourn/go-budget-assign/internal/utils"
	"github.com/tbourn/go-budget-assign/internal/validation"
)

//
// Service contracts (context-aware)
//

// AllocationService drives allocation sessions.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type AllocationService interface {
	Open(ctx context.Context, operatorID string, req domain.AllocationRequest) (services.AllocationSnapshot, error)
	Get(operatorID, sessionID string) (services.AllocationSnapshot, error)
	UpdateDraft(operatorID, sessionID string, emails, groupEmails []string) (services.AllocationSnapshot, error)
	Submit(ctx context.Context, operatorID, sessionID string) (services.AllocationSnapshot, error)
	Retry(ctx context.Context, operatorID, sessionID string) (services.AllocationSnapshot, error)
	Exit(operatorID, sessionID string) (services.AllocationSnapshot, error)
	Validate(ctx context.Context, policyID string, in validation.Input, available *decimal.Decimal) (validation.Verdict, error)
}

// BudgetService returns cached budget aggregates.
type BudgetService interface {
	Budget(ctx context.Context, policyID string) (domain.BudgetAggregates, error)
	Budgets(ctx context.Context, enterpriseID string) ([]domain.BudgetAggregates, error)
}

// ViewService is the registry of open list views.
type ViewService interface {
	Create(operatorID, configID, policyID, enterpriseID string) *services.ListView
	Get(operatorID, viewID string) (*services.ListView, error)
	Delete(operatorID, viewID string) error
}

// BulkService runs bulk remind and cancel against a view.
type BulkService interface {
	Confirm(v *services.ListView, kind services.BulkKind, scope services.BulkScope) (services.BulkConfirmation, error)
	Perform(ctx context.Context, v *services.ListView, kind services.BulkKind, scope services.BulkScope) (services.BulkOutcome, error)
}

// TrackingService lists recorded analytics events.
type TrackingService interface {
	ListPage(ctx context.Context, f repo.TrackingFilter, page, pageSize int) ([]domain.TrackingEvent, int64, error)
}

//
// Handler wiring
//

// Options carries transport settings that are not services.
type Options struct {
	// DB backs idempotent allocation submits. Nil disables replay.
	DB             *gorm.DB
	IdempotencyTTL time.Duration
	// Columns maps table column ids for order_by parsing.
	Columns         query.ColumnMap
	DefaultPageSize int
	MaxPageSize     int
}

// Handlers groups the HTTP endpoints of the engine.
type Handlers struct {
	allocSvc  AllocationService
	budgetSvc BudgetService
	viewSvc   ViewService
	bulkSvc   BulkService
	trackSvc  TrackingService
	opt       Options
}

// New constructs and returns a Handlers instance bound to the given services.
func New(alloc AllocationService, budgets BudgetService, views ViewService, bulk BulkService, tracking TrackingService, opt Options) *Handlers {
	if opt.IdempotencyTTL <= 0 {
		opt.IdempotencyTTL = 24 * time.Hour
	}
	if opt.Columns == nil {
		opt.Columns = query.AssignmentColumns
	}
	if opt.DefaultPageSize <= 0 {
		opt.DefaultPageSize = 25
	}
	if opt.MaxPageSize <= 0 {
		opt.MaxPageSize = 100
	}
	return &Handlers{
		allocSvc:  alloc,
		budgetSvc: budgets,
		viewSvc:   views,
		bulkSvc:   bulk,
		trackSvc:  tracking,
		opt:       opt,
	}
}

// userID is the operator the request acts for.
func userID(c *gin.Context) string { return middleware.OperatorID(c) }

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

func newPagination(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// clampPagination parses and bounds page and page_size query params,
// returning (page, pageSize).
func clampPagination(c *gin.Context, defaultPageSize, maxPageSize int) (page, pageSize int) {
	page, pageSize = utils.ClampPage(
		utils.AtoiDefault(c.Query("page"), 1),
		utils.AtoiDefault(c.Query("page_size"), defaultPageSize),
		defaultPageSize, maxPageSize,
	)
	return
}

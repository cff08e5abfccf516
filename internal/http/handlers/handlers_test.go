package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-budget-assign/internal/debounce"
	"github.com/tbourn/go-budget-assign/internal/domain"
	"github.com/tbourn/go-budget-assign/internal/enterpriseaccess"
	"github.com/tbourn/go-budget-assign/internal/http/middleware"
	"github.com/tbourn/go-budget-assign/internal/query"
	"github.com/tbourn/go-budget-assign/internal/repo"
	"github.com/tbourn/go-budget-assign/internal/services"
	"github.com/tbourn/go-budget-assign/internal/validation"
)

// ---------- test DB + repo shim ----------

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Unique DSN per call to avoid cross-test contamination
	dsn := fmt.Sprintf("file:handlers_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Minimal shim implementing services.TrackingRepo using the repo package (like router.go)
type testTrackingRepo struct{}

func (testTrackingRepo) CreateTrackingEvent(ctx context.Context, db *gorm.DB, ev *domain.TrackingEvent) error {
	return repo.CreateTrackingEvent(ctx, db, ev)
}

func (testTrackingRepo) CountTrackingEvents(ctx context.Context, db *gorm.DB, f repo.TrackingFilter) (int64, error) {
	return repo.CountTrackingEvents(ctx, db, f)
}

func (testTrackingRepo) ListTrackingEventsPage(ctx context.Context, db *gorm.DB, f repo.TrackingFilter, offset, limit int) ([]domain.TrackingEvent, error) {
	return repo.ListTrackingEventsPage(ctx, db, f, offset, limit)
}

// ---------- fake enterprise-access backend ----------

// stubUpstream stands in for the enterprise-access client and the budget
// cache in one value.
type stubUpstream struct {
	mu        sync.Mutex
	allocs    []domain.AllocationRequest
	allocErr  error
	budget    domain.BudgetAggregates
	budgetErr error
	page      domain.AssignmentPage
	lists     []query.Params
	bulk      []string
	invalid   int
}

func (s *stubUpstream) Allocate(_ context.Context, req domain.AllocationRequest) (domain.AllocationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allocs = append(s.allocs, req)
	if s.allocErr != nil {
		return domain.AllocationResult{}, s.allocErr
	}
	var res domain.AllocationResult
	for _, e := range req.LearnerEmails {
		email := e
		res.Created = append(res.Created, domain.ContentAssignment{UUID: uuid.NewString(), LearnerEmail: &email})
	}
	return res, nil
}

func (s *stubUpstream) ListAssignments(_ context.Context, _ string, params query.Params) (domain.AssignmentPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists = append(s.lists, params)
	return s.page, nil
}

func (s *stubUpstream) record(op string, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bulk = append(s.bulk, op)
	return nil
}

func (s *stubUpstream) Remind(_ context.Context, configID string, _ []string) error {
	return s.record("remind", configID)
}

func (s *stubUpstream) RemindAll(_ context.Context, configID string, _ query.Params) error {
	return s.record("remind-all", configID)
}

func (s *stubUpstream) Cancel(_ context.Context, configID string, _ []string) error {
	return s.record("cancel", configID)
}

func (s *stubUpstream) CancelAll(_ context.Context, configID string, _ query.Params) error {
	return s.record("cancel-all", configID)
}

func (s *stubUpstream) Budget(_ context.Context, policyID string) (domain.BudgetAggregates, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.budgetErr != nil {
		return domain.BudgetAggregates{}, s.budgetErr
	}
	b := s.budget
	b.PolicyID = policyID
	return b, nil
}

func (s *stubUpstream) Budgets(ctx context.Context, _ string) ([]domain.BudgetAggregates, error) {
	b, err := s.Budget(ctx, "pol-1")
	if err != nil {
		return nil, err
	}
	return []domain.BudgetAggregates{b}, nil
}

func (s *stubUpstream) InvalidateMutation(string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalid++
}

func (s *stubUpstream) allocCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.allocs)
}

func (s *stubUpstream) lastList() query.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.lists) == 0 {
		return nil
	}
	return s.lists[len(s.lists)-1]
}

func assignment(id string, state domain.LearnerState) domain.ContentAssignment {
	email := id + "@example.com"
	a := domain.ContentAssignment{UUID: id, LearnerEmail: &email, ContentKey: "edX+DemoX", ContentQuantity: -19900, LearnerState: state}
	if state == domain.LearnerStateFailed {
		a.ErrorReason = &domain.ErrorReason{ActionType: domain.StepNotifying, ErrorReason: "bounced"}
	}
	return a
}

func notInCatalog() error {
	return &enterpriseaccess.APIError{Status: http.StatusUnprocessableEntity, Body: []byte(`[{"reason":"content_not_in_catalog"}]`)}
}

// ---------- environment ----------

var farFuture = time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)

type testEnv struct {
	r     *gin.Engine
	up    *stubUpstream
	db    *gorm.DB
	sched *debounce.FakeScheduler
}

func newEnv(t *testing.T) testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := testEnv{
		up: &stubUpstream{
			budget: domain.BudgetAggregates{
				EnterpriseID:  "ent-1",
				DisplayName:   "Engineering",
				SpendLimitUSD: decimal.RequireFromString("1000"),
			},
			page: domain.AssignmentPage{
				Count: 2, NumPages: 1, CurrentPage: 1,
				Results: []domain.ContentAssignment{
					assignment("w1", domain.LearnerStateWaiting),
					assignment("n1", domain.LearnerStateNotifying),
				},
			},
		},
		db:    newTestDB(t),
		sched: &debounce.FakeScheduler{},
	}

	tracking := services.NewTrackingService(env.db, testTrackingRepo{})
	coord := services.NewAllocationCoordinator(env.up, env.up, env.up, validation.Validator{MaxEmails: 100}, tracking)
	coord.Scheduler = env.sched
	views := services.NewViews(env.up, tracking)
	views.Scheduler = env.sched
	bulk := services.NewBulkCoordinator(env.up, env.up, tracking)
	t.Cleanup(func() { views.Sweep(farFuture) })

	h := New(coord, env.up, views, bulk, tracking, Options{DB: env.db})

	r := gin.New()
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, nil))
	api := r.Group("/api/v1")
	api.POST("/policies/:policyId/allocations/validate", h.ValidateAllocation)
	api.POST("/policies/:policyId/allocations", h.CreateAllocation)
	api.GET("/policies/:policyId/budget", h.GetBudget)
	api.GET("/enterprises/:enterpriseId/budgets", h.ListBudgets)
	api.GET("/allocations/:sessionId", h.GetAllocation)
	api.PUT("/allocations/:sessionId/draft", h.UpdateAllocationDraft)
	api.POST("/allocations/:sessionId/submit", h.SubmitAllocation)
	api.POST("/allocations/:sessionId/retry", h.RetryAllocation)
	api.POST("/allocations/:sessionId/exit", h.ExitAllocation)
	api.POST("/configurations/:configId/views", h.CreateView)
	api.GET("/views/:viewId", h.GetView)
	api.PUT("/views/:viewId/state", h.UpdateViewState)
	api.POST("/views/:viewId/refresh", h.RefreshView)
	api.DELETE("/views/:viewId", h.DeleteView)
	api.POST("/views/:viewId/bulk/:kind/confirm", h.ConfirmBulk)
	api.POST("/views/:viewId/bulk/:kind", h.PerformBulk)
	api.GET("/tracking-events", h.ListTrackingEvents)
	env.r = r
	return env
}

// do sends a JSON request as operator "admin-1" unless headers override it.
func (e testEnv) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderUserID, "admin-1")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

// Package services – AllocationCoordinator
//
// AllocationCoordinator drives one operator's allocation draft from
// validation through submission, failure classification and operator
// initiated retry or exit. Sessions live in memory and expire after an idle
// TTL; the backend remains the owner of the ledger.
package services

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v4"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-budget-assign/internal/debounce"
	"github.com/tbourn/go-budget-assign/internal/domain"
	"github.com/tbourn/go-budget-assign/internal/errclass"
	"github.com/tbourn/go-budget-assign/internal/metrics"
	"github.com/tbourn/go-budget-assign/internal/validation"
)

// AllocationSnapshot is the externally visible view of a session.
type AllocationSnapshot struct {
	SessionID string `json:"session_id"`
	AllocationState
	CanSubmit bool      `json:"can_submit"`
	Pending   bool      `json:"pending"`
	ExpiresAt time.Time `json:"expires_at"`
}

// allocationSession is the mutable holder around an AllocationState.
type allocationSession struct {
	id         string
	operatorID string
	budget     domain.BudgetAggregates
	live       *validation.Live
	pending    Pending

	mu      sync.Mutex
	state   AllocationState
	expires time.Time
}

func (s *allocationSession) snapshot() AllocationSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return AllocationSnapshot{
		SessionID:       s.id,
		AllocationState: s.state,
		CanSubmit:       s.state.CanSubmit() && !s.pending.Busy(),
		Pending:         s.pending.Busy(),
		ExpiresAt:       s.expires,
	}
}

// apply runs a transition under the session lock.
func (s *allocationSession) apply(f func(AllocationState) (AllocationState, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := f(s.state)
	if err != nil {
		return err
	}
	s.state = next
	return nil
}

func (s *allocationSession) budgetSnapshot() domain.BudgetAggregates {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budget
}

func (s *allocationSession) current() AllocationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// AllocationCoordinator owns the allocation sessions.
type AllocationCoordinator struct {
	Allocator   Allocator
	Budgets     BudgetReader
	Invalidator Invalidator
	Classifier  errclass.Classifier
	Validator   validation.Validator
	Tracker     Tracker

	// Debounce and Scheduler drive live draft validation.
	Debounce  time.Duration
	Scheduler debounce.Scheduler
	TTL       time.Duration
	Now       func() time.Time

	sessions *xsync.Map[string, *allocationSession]
}

// NewAllocationCoordinator wires a coordinator with an empty registry.
func NewAllocationCoordinator(a Allocator, b BudgetReader, inv Invalidator, v validation.Validator, t Tracker) *AllocationCoordinator {
	return &AllocationCoordinator{
		Allocator:   a,
		Budgets:     b,
		Invalidator: inv,
		Validator:   v,
		Tracker:     trackerOrNop(t),
		Debounce:    300 * time.Millisecond,
		TTL:         30 * time.Minute,
		Now:         time.Now,
		sessions:    xsync.NewMap[string, *allocationSession](),
	}
}

// Open starts a session over req. The budget is loaded so the draft can be
// validated against the available balance while the operator types.
func (c *AllocationCoordinator) Open(ctx context.Context, operatorID string, req domain.AllocationRequest) (AllocationSnapshot, error) {
	tr := otel.Tracer("services/AllocationCoordinator")
	ctx, span := tr.Start(ctx, "Open",
		trace.WithAttributes(
			attribute.String("operator.id", operatorID),
			attribute.String("policy.id", req.PolicyID),
		),
	)
	defer span.End()

	budget, err := c.Budgets.Budget(ctx, req.PolicyID)
	if err != nil {
		span.RecordError(err)
		return AllocationSnapshot{}, fmt.Errorf("%w: %v", ErrBudgetUnavailable, err)
	}

	s := &allocationSession{
		id:         uuid.NewString(),
		operatorID: operatorID,
		budget:     budget,
		state:      NewAllocationState(req),
		expires:    c.now().Add(c.TTL),
	}
	s.live = validation.NewLive(c.Validator, c.Debounce, c.Scheduler, func(in validation.Input, v validation.Verdict) {
		_ = s.apply(func(st AllocationState) (AllocationState, error) {
			// The draft may have changed since this run started.
			if !draftMatches(st.Request, in) {
				return st, nil
			}
			return st.Validated(v)
		})
	})
	vd := s.live.Settle(c.input(s.state.Request, budget))
	_ = s.apply(func(st AllocationState) (AllocationState, error) { return st.Validated(vd) })

	c.sessions.Store(s.id, s)
	span.SetAttributes(attribute.String("session.id", s.id))
	return s.snapshot(), nil
}

// Get returns the session snapshot.
func (c *AllocationCoordinator) Get(operatorID, sessionID string) (AllocationSnapshot, error) {
	s, err := c.session(operatorID, sessionID)
	if err != nil {
		return AllocationSnapshot{}, err
	}
	return s.snapshot(), nil
}

// UpdateDraft replaces the learner lists and schedules debounced
// validation. The submit control stays disabled until the verdict settles.
func (c *AllocationCoordinator) UpdateDraft(operatorID, sessionID string, emails, groupEmails []string) (AllocationSnapshot, error) {
	s, err := c.session(operatorID, sessionID)
	if err != nil {
		return AllocationSnapshot{}, err
	}
	if err := s.apply(func(st AllocationState) (AllocationState, error) {
		return st.EditDraft(emails, groupEmails)
	}); err != nil {
		return AllocationSnapshot{}, err
	}
	s.live.Update(c.input(s.current().Request, s.budgetSnapshot()))
	return s.snapshot(), nil
}

// Submit validates the draft against a fresh balance and sends it. A draft
// with a violation is never sent. The upstream call is not tied to the
// caller's context: exiting or disconnecting mid-request does not abort it,
// and a result that arrives after Exit is discarded.
func (c *AllocationCoordinator) Submit(ctx context.Context, operatorID, sessionID string) (AllocationSnapshot, error) {
	tr := otel.Tracer("services/AllocationCoordinator")
	ctx, span := tr.Start(ctx, "Submit",
		trace.WithAttributes(
			attribute.String("operator.id", operatorID),
			attribute.String("session.id", sessionID),
		),
	)
	defer span.End()

	s, err := c.session(operatorID, sessionID)
	if err != nil {
		return AllocationSnapshot{}, err
	}
	if !s.pending.Begin() {
		return s.snapshot(), ErrOperationPending
	}
	err = c.submit(ctx, s)
	s.pending.End()
	if err != nil {
		span.RecordError(err)
	}
	return s.snapshot(), err
}

func (c *AllocationCoordinator) submit(ctx context.Context, s *allocationSession) error {
	if err := c.revalidate(ctx, s); err != nil {
		return err
	}
	if err := s.apply(AllocationState.StartSubmit); err != nil {
		return err
	}
	c.send(ctx, s, false)
	return nil
}

// Retry re-sends the draft after a retryable failure. On success only the
// error dialog is closed by the retry itself; the success path then closes
// the assignment dialog.
func (c *AllocationCoordinator) Retry(ctx context.Context, operatorID, sessionID string) (AllocationSnapshot, error) {
	tr := otel.Tracer("services/AllocationCoordinator")
	ctx, span := tr.Start(ctx, "Retry",
		trace.WithAttributes(
			attribute.String("operator.id", operatorID),
			attribute.String("session.id", sessionID),
		),
	)
	defer span.End()

	s, err := c.session(operatorID, sessionID)
	if err != nil {
		return AllocationSnapshot{}, err
	}
	if !s.pending.Begin() {
		return s.snapshot(), ErrOperationPending
	}
	err = c.retry(ctx, s)
	s.pending.End()
	if err != nil {
		span.RecordError(err)
	}
	return s.snapshot(), err
}

func (c *AllocationCoordinator) retry(ctx context.Context, s *allocationSession) error {
	st := s.current()
	if st.Phase != PhaseFailed {
		return ErrInvalidTransition
	}
	if st.Error != nil && !st.Error.Retryable {
		return ErrNotRetryable
	}
	if err := c.revalidate(ctx, s); err != nil {
		return err
	}
	if err := s.apply(AllocationState.StartRetry); err != nil {
		return err
	}

	c.Tracker.Track(ctx, newEvent(s.operatorID, domain.EventAllocationRetried, st.Request.PolicyID, map[string]any{
		"attempt": s.current().Attempts,
	}))
	c.send(ctx, s, true)
	return nil
}

// Exit closes every dialog and discards the draft. No cache invalidation is
// performed. An in-flight submission keeps running and its result is
// dropped.
func (c *AllocationCoordinator) Exit(operatorID, sessionID string) (AllocationSnapshot, error) {
	s, err := c.session(operatorID, sessionID)
	if err != nil {
		return AllocationSnapshot{}, err
	}
	s.live.Settle(validation.Input{})
	_ = s.apply(func(st AllocationState) (AllocationState, error) { return st.Exit(), nil })
	return s.snapshot(), nil
}

// Validate checks a draft without opening a session. When available is
// nil the budget's balance is read through the cache.
func (c *AllocationCoordinator) Validate(ctx context.Context, policyID string, in validation.Input, available *decimal.Decimal) (validation.Verdict, error) {
	if available != nil {
		in.AvailableUSD = *available
	} else {
		b, err := c.Budgets.Budget(ctx, policyID)
		if err != nil {
			return validation.Verdict{}, fmt.Errorf("%w: %v", ErrBudgetUnavailable, err)
		}
		in.AvailableUSD = b.SpendAvailableUSD()
	}
	return c.Validator.Validate(in), nil
}

// Sweep drops sessions idle past their TTL and returns how many were
// removed.
func (c *AllocationCoordinator) Sweep(now time.Time) int {
	var n int
	c.sessions.Range(func(id string, s *allocationSession) bool {
		s.mu.Lock()
		expired := now.After(s.expires)
		s.mu.Unlock()
		if expired && !s.pending.Busy() {
			c.sessions.Delete(id)
			n++
		}
		return true
	})
	return n
}

// revalidate reloads the balance and validates the current draft now,
// replacing any debounced run still pending.
func (c *AllocationCoordinator) revalidate(ctx context.Context, s *allocationSession) error {
	budget, err := c.Budgets.Budget(ctx, s.current().Request.PolicyID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBudgetUnavailable, err)
	}
	s.mu.Lock()
	s.budget = budget
	s.mu.Unlock()

	vd := s.live.Settle(c.input(s.current().Request, budget))
	if err := s.apply(func(st AllocationState) (AllocationState, error) { return st.Validated(vd) }); err != nil {
		return err
	}
	if !vd.IsValid {
		return ErrValidation
	}
	return nil
}

// send performs the allocate call and applies its outcome.
func (c *AllocationCoordinator) send(ctx context.Context, s *allocationSession, retry bool) {
	st := s.current()
	budget := s.budgetSnapshot()
	req := st.Request
	if st.Verdict != nil {
		req.LearnerEmails = st.Verdict.Emails
		req.GroupEmails = nil
	}

	res, err := c.Allocator.Allocate(context.WithoutCancel(ctx), req)
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.Int("attempt", st.Attempts))

	if err == nil {
		// the ledger changed even if the operator has already left
		c.Invalidator.InvalidateMutation(req.PolicyID, budget.EnterpriseID)
	}
	if s.current().Phase == PhaseClosed {
		metrics.Allocations.WithLabelValues("discarded").Inc()
		loggerFrom(ctx).Info().Str("session_id", s.id).Msg("allocation result discarded after exit")
		return
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "allocate failed")
		cat := c.Classifier.ClassifyError(err, budget.DisplayName)
		_ = s.apply(func(st AllocationState) (AllocationState, error) { return st.Failed(cat) })
		metrics.Allocations.WithLabelValues("rejected").Inc()
		metrics.AllocationErrors.WithLabelValues(string(cat.Kind), fmt.Sprint(cat.Retryable)).Inc()
		c.Tracker.Track(ctx, newEvent(s.operatorID, domain.EventAllocationFailed, req.PolicyID, map[string]any{
			"category":    cat.Kind,
			"retryable":   cat.Retryable,
			"http_status": cat.HTTPStatus,
			"reason":      cat.ReasonCode,
			"attempt":     st.Attempts,
		}))
		return
	}

	_ = s.apply(func(st AllocationState) (AllocationState, error) {
		if retry {
			var err error
			if st, err = st.RetrySucceeded(); err != nil {
				return st, err
			}
		}
		return st.Succeeded(res)
	})
	sum := res.Summary()
	metrics.Allocations.WithLabelValues("accepted").Inc()
	metrics.LearnersAllocated.Add(float64(sum.TotalLearnersAllocated))
	c.Tracker.Track(ctx, newEvent(s.operatorID, domain.EventAllocationSubmitted, req.PolicyID, map[string]any{
		"created":   len(res.Created),
		"updated":   len(res.Updated),
		"no_change": len(res.NoChange),
		"attempt":   st.Attempts,
	}))
}

func (c *AllocationCoordinator) session(operatorID, sessionID string) (*allocationSession, error) {
	s, ok := c.sessions.Load(sessionID)
	if !ok || s.operatorID != operatorID {
		return nil, ErrSessionNotFound
	}
	now := c.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if now.After(s.expires) {
		return nil, ErrSessionNotFound
	}
	s.expires = now.Add(c.TTL)
	return s, nil
}

func (c *AllocationCoordinator) input(req domain.AllocationRequest, b domain.BudgetAggregates) validation.Input {
	return validation.Input{
		Emails:         req.LearnerEmails,
		GroupEmails:    req.GroupEmails,
		UnitPriceCents: req.ContentPriceCents,
		AvailableUSD:   b.SpendAvailableUSD(),
	}
}

// draftMatches reports whether in was built from req's learner lists.
func draftMatches(req domain.AllocationRequest, in validation.Input) bool {
	return slices.Equal(req.LearnerEmails, in.Emails) &&
		slices.Equal(req.GroupEmails, in.GroupEmails) &&
		req.ContentPriceCents == in.UnitPriceCents
}

func (c *AllocationCoordinator) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

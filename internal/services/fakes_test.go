package services

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/tbourn/go-budget-assign/internal/domain"
	"github.com/tbourn/go-budget-assign/internal/query"
)

type fakeAllocator struct {
	mu    sync.Mutex
	calls []domain.AllocationRequest
	// results are consumed in order; the last one repeats
	results []allocOutcome
	onCall  func()
}

type allocOutcome struct {
	res domain.AllocationResult
	err error
}

func (f *fakeAllocator) Allocate(_ context.Context, req domain.AllocationRequest) (domain.AllocationResult, error) {
	if f.onCall != nil {
		f.onCall()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	i := len(f.calls) - 1
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	if i < 0 {
		return domain.AllocationResult{}, nil
	}
	return f.results[i].res, f.results[i].err
}

func (f *fakeAllocator) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeBudgets struct {
	b   domain.BudgetAggregates
	err error
}

func (f *fakeBudgets) Budget(_ context.Context, policyID string) (domain.BudgetAggregates, error) {
	if f.err != nil {
		return domain.BudgetAggregates{}, f.err
	}
	b := f.b
	b.PolicyID = policyID
	return b, nil
}

func budgetWith(available string) *fakeBudgets {
	return &fakeBudgets{b: domain.BudgetAggregates{
		EnterpriseID:  "ent-1",
		DisplayName:   "Engineering",
		SpendLimitUSD: decimal.RequireFromString(available),
	}}
}

type fakeInvalidator struct {
	mu    sync.Mutex
	calls [][2]string
}

func (f *fakeInvalidator) InvalidateMutation(policyID, enterpriseID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, [2]string{policyID, enterpriseID})
}

func (f *fakeInvalidator) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeTracker struct {
	mu     sync.Mutex
	events []domain.TrackingEvent
}

func (f *fakeTracker) Track(_ context.Context, ev domain.TrackingEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
}

func (f *fakeTracker) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i] = e.Name
	}
	return out
}

func (f *fakeTracker) countOf(name string) int {
	n := 0
	for _, x := range f.names() {
		if x == name {
			n++
		}
	}
	return n
}

type listCall struct {
	configID string
	params   query.Params
}

type fakeLister struct {
	mu    sync.Mutex
	calls []listCall
	page  domain.AssignmentPage
	err   error
	// hook, when set, answers call n (1-based) instead of page/err
	hook func(n int, params query.Params) (domain.AssignmentPage, error)
}

func (f *fakeLister) ListAssignments(_ context.Context, configID string, params query.Params) (domain.AssignmentPage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, listCall{configID: configID, params: params})
	n, page, err, hook := len(f.calls), f.page, f.err, f.hook
	f.mu.Unlock()
	if hook != nil {
		return hook(n, params)
	}
	return page, err
}

func (f *fakeLister) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeLister) last() listCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

type bulkCall struct {
	op       string
	configID string
	uuids    []string
	filters  query.Params
}

type fakeBulk struct {
	mu    sync.Mutex
	calls []bulkCall
	err   error
}

func (f *fakeBulk) record(c bulkCall) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	return f.err
}

func (f *fakeBulk) Remind(_ context.Context, configID string, uuids []string) error {
	return f.record(bulkCall{op: "remind", configID: configID, uuids: uuids})
}

func (f *fakeBulk) RemindAll(_ context.Context, configID string, filters query.Params) error {
	return f.record(bulkCall{op: "remind-all", configID: configID, filters: filters})
}

func (f *fakeBulk) Cancel(_ context.Context, configID string, uuids []string) error {
	return f.record(bulkCall{op: "cancel", configID: configID, uuids: uuids})
}

func (f *fakeBulk) CancelAll(_ context.Context, configID string, filters query.Params) error {
	return f.record(bulkCall{op: "cancel-all", configID: configID, filters: filters})
}

func strp(s string) *string { return &s }

func row(uuid string, state domain.LearnerState) domain.ContentAssignment {
	a := domain.ContentAssignment{
		UUID:            uuid,
		LearnerEmail:    strp(uuid + "@example.com"),
		ContentKey:      "edX+DemoX",
		ContentQuantity: -19900,
		LearnerState:    state,
	}
	if state == domain.LearnerStateFailed {
		a.ErrorReason = &domain.ErrorReason{ActionType: domain.StepNotifying, ErrorReason: "bounced"}
	}
	return a
}

package services

import (
	"context"

	"github.com/tbourn/go-budget-assign/internal/domain"
	"github.com/tbourn/go-budget-assign/internal/query"
)

// Allocator submits allocations to the backend.
type Allocator interface {
	Allocate(ctx context.Context, req domain.AllocationRequest) (domain.AllocationResult, error)
}

// AssignmentLister fetches one page of assignments.
type AssignmentLister interface {
	ListAssignments(ctx context.Context, configID string, params query.Params) (domain.AssignmentPage, error)
}

// BulkActor performs remind and cancel, either on explicit UUIDs or on
// every assignment matching filters.
type BulkActor interface {
	Remind(ctx context.Context, configID string, uuids []string) error
	RemindAll(ctx context.Context, configID string, filters query.Params) error
	Cancel(ctx context.Context, configID string, uuids []string) error
	CancelAll(ctx context.Context, configID string, filters query.Params) error
}

// BudgetReader returns (possibly cached) budget aggregates.
type BudgetReader interface {
	Budget(ctx context.Context, policyID string) (domain.BudgetAggregates, error)
}

// Invalidator drops the budget(policy) and budgets(enterprise) cache keys.
type Invalidator interface {
	InvalidateMutation(policyID, enterpriseID string)
}

// Tracker records analytics events. Implementations must not block the
// caller for long; failures are logged and never surface to operators.
type Tracker interface {
	Track(ctx context.Context, ev domain.TrackingEvent)
}

// Package metrics exposes Prometheus collectors for engine outcomes:
// allocation submissions and their classified failures, bulk operations,
// list fetches and budget cache invalidations.
//
// Labels are drawn from small fixed sets (category, kind, scope, result) so
// cardinality stays bounded regardless of traffic.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Allocations counts allocate calls by result (accepted|rejected|discarded).
	Allocations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assign_allocations_total",
			Help: "Allocation submissions by result.",
		},
		[]string{"result"},
	)

	// AllocationErrors counts classified allocation failures.
	AllocationErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assign_allocation_errors_total",
			Help: "Classified allocation failures by category.",
		},
		[]string{"category", "retryable"},
	)

	// LearnersAllocated sums learners newly allocated (created + updated).
	LearnersAllocated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "assign_learners_allocated_total",
			Help: "Learners allocated by successful submissions.",
		},
	)

	// BulkOps counts bulk remind/cancel operations.
	BulkOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assign_bulk_operations_total",
			Help: "Bulk operations by kind, scope and result.",
		},
		[]string{"kind", "scope", "result"},
	)

	// ListFetches counts list fetches by result (applied|stale|failed).
	ListFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assign_list_fetches_total",
			Help: "Assignment list fetches by result.",
		},
		[]string{"result"},
	)

	// CacheInvalidations counts budget cache invalidations by key kind.
	CacheInvalidations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assign_budget_cache_invalidations_total",
			Help: "Budget cache invalidations by key kind.",
		},
		[]string{"key"},
	)

	// CacheLookups counts budget cache lookups by outcome (hit|miss).
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assign_budget_cache_lookups_total",
			Help: "Budget cache lookups by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		Allocations, AllocationErrors, LearnersAllocated,
		BulkOps, ListFetches, CacheInvalidations, CacheLookups,
	)
}

// Package services implements the budget assignment engine: the allocation
// coordinator, the bulk remind/cancel coordinator, the list sync controller
// and the registries that hold their per-operator state.
//
// This file centralizes service-level error values so that they can be
// consistently returned by service methods and checked by callers.
// Translation into HTTP status codes is performed at the handler layer.
package services

import "errors"

// Allocation errors.
var (
	// ErrValidation indicates the learner set has a current violation; the
	// request was not sent.
	ErrValidation = errors.New("learner set failed validation")

	// ErrNotRetryable is returned when Retry is requested for a failure whose
	// category offers only Exit.
	ErrNotRetryable = errors.New("failure is not retryable")

	// ErrInvalidTransition is returned when an operation does not apply to the
	// session's current phase (e.g. Retry without a failure).
	ErrInvalidTransition = errors.New("operation not allowed in current phase")

	// ErrSessionNotFound indicates the allocation session does not exist, has
	// expired, or belongs to another operator.
	ErrSessionNotFound = errors.New("allocation session not found")

	// ErrBudgetUnavailable is returned when the budget's available balance
	// cannot be loaded, so the cost check cannot run.
	ErrBudgetUnavailable = errors.New("budget unavailable")
)

// List and bulk errors.
var (
	// ErrViewNotFound indicates the list view does not exist or belongs to
	// another operator.
	ErrViewNotFound = errors.New("list view not found")

	// ErrNothingToAct is returned when a bulk operation has no eligible target.
	ErrNothingToAct = errors.New("no eligible assignments")

	// ErrInvalidBulkKind is returned for a bulk kind other than remind or cancel.
	ErrInvalidBulkKind = errors.New("bulk kind must be remind or cancel")

	// ErrInvalidScope is returned when a bulk scope names neither a selection
	// nor the filtered set, or both.
	ErrInvalidScope = errors.New("scope must be a selection or all filtered")
)

// ErrOperationPending is returned when the same logical operation is already
// in flight for the session or view.
var ErrOperationPending = errors.New("operation already pending")

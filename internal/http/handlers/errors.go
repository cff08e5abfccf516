// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// This file centralizes symbolic error code constants that are mapped to HTTP responses
// (via the `fail()` helper in this package) and the translation of service
// errors into status and code (`failErr`). Clients branch on the code; the
// message is for display.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "not_retryable",
//	  "message": "failure is not retryable"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-budget-assign/internal/services"
)

const (
	ErrCodeBadRequest = "bad_request"
	ErrCodeNotFound   = "not_found"
	ErrCodeInternal   = "internal_error"

	// Engine outcomes. rate_limited and bad_idempotency_key are written by
	// middleware.
	ErrCodeValidationFailed  = "validation_failed"
	ErrCodeNotRetryable      = "not_retryable"
	ErrCodePending           = "operation_pending"
	ErrCodeInvalidTransition = "invalid_transition"
	ErrCodeNothingToAct      = "nothing_to_act"
	ErrCodeBudgetUnavailable = "budget_unavailable"
	ErrCodeUpstream          = "upstream_error"
	ErrCodeMethodNotAllowed  = "method_not_allowed"

	// The same Idempotency-Key is held by a submit that has not finished.
	ErrCodeIdempotencyInFlight = "idempotency_in_progress"
)

// upstreamError is satisfied by errors carrying a backend HTTP status.
type upstreamError interface {
	StatusCode() int
}

// failErr maps a service error to a status and code and aborts the request.
func failErr(c *gin.Context, err error) {
	var up upstreamError
	switch {
	case errors.Is(err, services.ErrSessionNotFound), errors.Is(err, services.ErrViewNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, services.ErrValidation):
		fail(c, http.StatusUnprocessableEntity, ErrCodeValidationFailed, err.Error())
	case errors.Is(err, services.ErrNothingToAct):
		fail(c, http.StatusUnprocessableEntity, ErrCodeNothingToAct, err.Error())
	case errors.Is(err, services.ErrNotRetryable):
		fail(c, http.StatusConflict, ErrCodeNotRetryable, err.Error())
	case errors.Is(err, services.ErrOperationPending):
		fail(c, http.StatusConflict, ErrCodePending, err.Error())
	case errors.Is(err, services.ErrInvalidTransition):
		fail(c, http.StatusConflict, ErrCodeInvalidTransition, err.Error())
	case errors.Is(err, services.ErrInvalidBulkKind), errors.Is(err, services.ErrInvalidScope):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrBudgetUnavailable):
		fail(c, http.StatusBadGateway, ErrCodeBudgetUnavailable, err.Error())
	case errors.As(err, &up):
		fail(c, http.StatusBadGateway, ErrCodeUpstream, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

// Allocation HTTP handlers.
//
// This file exposes REST endpoints for allocation sessions:
//   - POST /policies/{policyId}/allocations/validate  (stateless check)
//   - POST /policies/{policyId}/allocations           (open and submit)
//   - GET  /allocations/{sessionId}                   (snapshot)
//   - PUT  /allocations/{sessionId}/draft             (edit learners)
//   - POST /allocations/{sessionId}/submit|retry|exit
//
// Idempotency:
// If the client supplies an Idempotency-Key header and a previous submit
// with the same key exists for (operator, policy), the handler returns the
// recorded session snapshot and sets `Idempotency-Replayed: true`. The key
// is reserved before the upstream allocate call, so a concurrent duplicate
// gets 409 instead of spending the budget twice. A failed submit releases
// the key.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/tbourn/go-budget-assign/internal/domain"
	"github.com/tbourn/go-budget-assign/internal/http/middleware"
	"github.com/tbourn/go-budget-assign/internal/repo"
	"github.com/tbourn/go-budget-assign/internal/services"
	"github.com/tbourn/go-budget-assign/internal/sysutil"
	"github.com/tbourn/go-budget-assign/internal/validation"
)

//
// DTOs
//

// ValidateAllocationRequest is the JSON payload of a stateless draft check.
type ValidateAllocationRequest struct {
	Emails            []string `json:"emails" example:"ann@example.com,bob@example.com"`
	GroupEmails       []string `json:"group_emails"`
	ContentPriceCents int64    `json:"content_price_cents" example:"19900"`
	// AvailableUSD overrides the budget's balance; omitted means read it
	// through the budget cache.
	AvailableUSD *decimal.Decimal `json:"available_usd,omitempty" swaggertype:"string" example:"1000.00"`
}

// CreateAllocationRequest is the JSON payload that opens an allocation.
type CreateAllocationRequest struct {
	ContentKey        string   `json:"content_key" binding:"required" example:"course-v1:edX+DemoX+Demo_Course"`
	ContentPriceCents int64    `json:"content_price_cents" binding:"gte=0" example:"19900"`
	LearnerEmails     []string `json:"learner_emails" example:"ann@example.com"`
	GroupEmails       []string `json:"group_emails"`
}

// UpdateDraftRequest replaces the learner lists of an open session.
type UpdateDraftRequest struct {
	LearnerEmails []string `json:"learner_emails"`
	GroupEmails   []string `json:"group_emails"`
}

//
// Handlers
//

// ValidateAllocation godoc
// @ID          validateAllocation
// @Summary     Validate an allocation draft
// @Description Checks learner emails and the cost against the budget balance without opening a session.
// @Tags        Allocations
// @Accept      json
// @Produce     json
//
// @Param       policyId  path  string  true  "Subsidy access policy ID"
// @Param       body      body  handlers.ValidateAllocationRequest  true  "Draft"
//
// @Success     200  {object}  validation.Verdict
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     502  {object}  handlers.ErrorResponse  "Budget unavailable"
// @Router      /policies/{policyId}/allocations/validate [post]
func (h *Handlers) ValidateAllocation(c *gin.Context) {
	var req ValidateAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if req.ContentPriceCents < 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content_price_cents must not be negative")
		return
	}

	in := validation.Input{
		Emails:         req.Emails,
		GroupEmails:    req.GroupEmails,
		UnitPriceCents: req.ContentPriceCents,
	}
	v, err := h.allocSvc.Validate(c.Request.Context(), c.Param("policyId"), in, req.AvailableUSD)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, v)
}

// CreateAllocation godoc
// @ID          createAllocation
// @Summary     Open and submit an allocation
// @Description Opens an allocation session for the policy and submits it. With draft=true the
// @Description session is only opened so the learner list can be edited first.
// @Description Supports idempotency via the Idempotency-Key header (same key → same result).
// @Tags        Allocations
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  string  false "Operator ID (demo header)"  example(admin-1)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       policyId         path    string  true  "Subsidy access policy ID"
// @Param       draft            query   bool    false "Open without submitting"
// @Param       body             body    handlers.CreateAllocationRequest  true  "Allocation draft"
//
// @Success     201  {object}  services.AllocationSnapshot
// @Header      201  {string}  Idempotency-Replayed  "true when a stored result was returned"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse  "Same Idempotency-Key still in progress"
// @Failure     422  {object}  services.AllocationSnapshot  "Learner set failed validation"
// @Failure     502  {object}  handlers.ErrorResponse  "Budget unavailable"
// @Router      /policies/{policyId}/allocations [post]
func (h *Handlers) CreateAllocation(c *gin.Context) {
	ctx := c.Request.Context()
	policyID := c.Param("policyId")
	operator := userID(c)

	var req CreateAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.ContentKey) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content_key required and content_price_cents must not be negative")
		return
	}
	draftOnly := sysutil.IsTruthy(c.Query("draft"))

	var reservation *domain.Idempotency
	idemKey, _ := middleware.GetIdempotencyKey(c)
	if idemKey != "" && !draftOnly && h.opt.DB != nil {
		rec, err := repo.ReserveIdempotency(ctx, h.opt.DB, operator, policyID, idemKey, h.opt.IdempotencyTTL)
		switch {
		case errors.Is(err, repo.ErrDuplicate):
			h.replayAllocation(c, operator, policyID, idemKey)
			return
		case err != nil:
			failErr(c, err)
			return
		}
		reservation = rec
	}

	snap, err := h.allocSvc.Open(ctx, operator, domain.AllocationRequest{
		PolicyID:          policyID,
		ContentKey:        strings.TrimSpace(req.ContentKey),
		ContentPriceCents: req.ContentPriceCents,
		LearnerEmails:     req.LearnerEmails,
		GroupEmails:       req.GroupEmails,
	})
	if err == nil && !draftOnly {
		snap, err = h.allocSvc.Submit(ctx, operator, snap.SessionID)
	}
	h.settleReservation(c, reservation, snap, err)
	respondSession(c, http.StatusCreated, snap, err)
}

// replayAllocation answers a submit whose key is already taken: the stored
// outcome when there is one, 409 while the first submit is still running.
func (h *Handlers) replayAllocation(c *gin.Context, operator, policyID, key string) {
	rec, err := repo.GetIdempotency(c.Request.Context(), h.opt.DB, operator, policyID, key, time.Now().UTC())
	switch {
	case errors.Is(err, repo.ErrNotFound) || (err == nil && rec.Pending()):
		fail(c, http.StatusConflict, ErrCodeIdempotencyInFlight, "a submit with this Idempotency-Key is in progress")
	case err != nil:
		failErr(c, err)
	default:
		c.Header("Idempotency-Replayed", "true")
		c.Data(rec.Status, "application/json; charset=utf-8", rec.Payload)
	}
}

// settleReservation records a successful submit on the reserved key, or
// releases the key when the submit failed so the client may retry with it.
func (h *Handlers) settleReservation(c *gin.Context, rec *domain.Idempotency, snap services.AllocationSnapshot, err error) {
	if rec == nil {
		return
	}
	ctx := context.WithoutCancel(c.Request.Context())
	lg := middleware.LoggerFrom(c).With().Str("policy_id", rec.PolicyID).Logger()
	if err != nil || snap.Phase != services.PhaseSucceeded {
		if rErr := repo.ReleaseIdempotency(ctx, h.opt.DB, rec.ID); rErr != nil {
			lg.Warn().Err(rErr).Msg("idempotency release failed")
		}
		return
	}
	payload, err := json.Marshal(snap)
	if err == nil {
		err = repo.CompleteIdempotency(ctx, h.opt.DB, rec.ID, snap.SessionID, http.StatusCreated, payload)
	}
	if err != nil {
		// The key stays pending until it expires; retries get 409, never a second spend.
		lg.Warn().Err(err).Msg("idempotency outcome not stored")
	}
}

// GetAllocation godoc
// @ID          getAllocation
// @Summary     Get an allocation session
// @Tags        Allocations
// @Produce     json
// @Param       X-User-ID  header  string  false "Operator ID (demo header)"
// @Param       sessionId  path    string  true  "Session ID"  format(uuid)
// @Success     200  {object}  services.AllocationSnapshot
// @Failure     404  {object}  handlers.ErrorResponse  "Session not found"
// @Router      /allocations/{sessionId} [get]
func (h *Handlers) GetAllocation(c *gin.Context) {
	snap, err := h.allocSvc.Get(userID(c), c.Param("sessionId"))
	respondSession(c, http.StatusOK, snap, err)
}

// UpdateAllocationDraft godoc
// @ID          updateAllocationDraft
// @Summary     Replace the learner lists of a session
// @Description Validation is debounced; the snapshot shows phase "validating" until it settles.
// @Tags        Allocations
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  false "Operator ID (demo header)"
// @Param       sessionId  path    string  true  "Session ID"  format(uuid)
// @Param       body       body    handlers.UpdateDraftRequest  true  "Learners"
// @Success     202  {object}  services.AllocationSnapshot
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Session not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Not editable in current phase"
// @Router      /allocations/{sessionId}/draft [put]
func (h *Handlers) UpdateAllocationDraft(c *gin.Context) {
	var req UpdateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	snap, err := h.allocSvc.UpdateDraft(userID(c), c.Param("sessionId"), req.LearnerEmails, req.GroupEmails)
	respondSession(c, http.StatusAccepted, snap, err)
}

// SubmitAllocation godoc
// @ID          submitAllocation
// @Summary     Submit an open allocation session
// @Tags        Allocations
// @Produce     json
// @Param       X-User-ID  header  string  false "Operator ID (demo header)"
// @Param       sessionId  path    string  true  "Session ID"  format(uuid)
// @Success     200  {object}  services.AllocationSnapshot
// @Failure     404  {object}  handlers.ErrorResponse  "Session not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Pending or invalid transition"
// @Failure     422  {object}  services.AllocationSnapshot  "Learner set failed validation"
// @Router      /allocations/{sessionId}/submit [post]
func (h *Handlers) SubmitAllocation(c *gin.Context) {
	snap, err := h.allocSvc.Submit(c.Request.Context(), userID(c), c.Param("sessionId"))
	respondSession(c, http.StatusOK, snap, err)
}

// RetryAllocation godoc
// @ID          retryAllocation
// @Summary     Retry a failed allocation
// @Description Offered only for retryable failure categories.
// @Tags        Allocations
// @Produce     json
// @Param       X-User-ID  header  string  false "Operator ID (demo header)"
// @Param       sessionId  path    string  true  "Session ID"  format(uuid)
// @Success     200  {object}  services.AllocationSnapshot
// @Failure     404  {object}  handlers.ErrorResponse  "Session not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Not retryable, pending or invalid transition"
// @Failure     422  {object}  services.AllocationSnapshot  "Learner set failed validation"
// @Router      /allocations/{sessionId}/retry [post]
func (h *Handlers) RetryAllocation(c *gin.Context) {
	snap, err := h.allocSvc.Retry(c.Request.Context(), userID(c), c.Param("sessionId"))
	respondSession(c, http.StatusOK, snap, err)
}

// ExitAllocation godoc
// @ID          exitAllocation
// @Summary     Exit an allocation session
// @Description Closes every dialog and discards the draft. A pending submission's result is dropped.
// @Tags        Allocations
// @Produce     json
// @Param       X-User-ID  header  string  false "Operator ID (demo header)"
// @Param       sessionId  path    string  true  "Session ID"  format(uuid)
// @Success     200  {object}  services.AllocationSnapshot
// @Failure     404  {object}  handlers.ErrorResponse  "Session not found"
// @Router      /allocations/{sessionId}/exit [post]
func (h *Handlers) ExitAllocation(c *gin.Context) {
	snap, err := h.allocSvc.Exit(userID(c), c.Param("sessionId"))
	respondSession(c, http.StatusOK, snap, err)
}

// respondSession writes a session snapshot. A validation failure still
// carries the snapshot so the client can render the violation.
func respondSession(c *gin.Context, status int, snap services.AllocationSnapshot, err error) {
	if err != nil {
		if errors.Is(err, services.ErrValidation) && snap.SessionID != "" {
			ok(c, http.StatusUnprocessableEntity, snap)
			return
		}
		failErr(c, err)
		return
	}
	ok(c, status, snap)
}

// List view HTTP handlers.
//
// This file exposes REST endpoints for assignment list views and the bulk
// operations that act on them:
//   - POST   /configurations/{configId}/views  (create)
//   - GET    /views/{viewId}                   (snapshot)
//   - PUT    /views/{viewId}/state             (debounced fetch)
//   - POST   /views/{viewId}/refresh           (immediate fetch)
//   - DELETE /views/{viewId}
//   - POST   /views/{viewId}/bulk/{kind}/confirm
//   - POST   /views/{viewId}/bulk/{kind}
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-budget-assign/internal/domain"
	"github.com/tbourn/go-budget-assign/internal/query"
	"github.com/tbourn/go-budget-assign/internal/services"
)

//
// DTOs
//

// CreateViewRequest opens a list view over an assignment configuration.
type CreateViewRequest struct {
	PolicyID     string                  `json:"policy_id" binding:"required" example:"b5f1c7d2-0000-4000-8000-000000000001"`
	EnterpriseID string                  `json:"enterprise_id" example:"e1a2b3c4-0000-4000-8000-000000000002"`
	State        *domain.TableQueryState `json:"state,omitempty"`
}

//
// Helpers
//

// normalizeState bounds the page size and applies the order_by query
// parameter, which takes precedence over sort_by in the body.
func (h *Handlers) normalizeState(c *gin.Context, st domain.TableQueryState) (domain.TableQueryState, bool) {
	if ob := strings.TrimSpace(c.Query("order_by")); ob != "" {
		sort, err := query.ParseOrderBy(ob, h.opt.Columns)
		if err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
			return st, false
		}
		st.SortBy = sort
	}
	if st.PageIndex < 0 {
		st.PageIndex = 0
	}
	if st.PageSize <= 0 {
		st.PageSize = h.opt.DefaultPageSize
	}
	if st.PageSize > h.opt.MaxPageSize {
		st.PageSize = h.opt.MaxPageSize
	}
	return st, true
}

// view loads the operator's view or writes a 404.
func (h *Handlers) view(c *gin.Context) (*services.ListView, bool) {
	v, err := h.viewSvc.Get(userID(c), c.Param("viewId"))
	if err != nil {
		failErr(c, err)
		return nil, false
	}
	return v, true
}

// bulkRequest parses the kind path parameter and the scope body.
func bulkRequest(c *gin.Context) (services.BulkKind, services.BulkScope, bool) {
	kind, err := services.ParseBulkKind(c.Param("kind"))
	if err != nil {
		failErr(c, err)
		return "", services.BulkScope{}, false
	}
	var scope services.BulkScope
	if err := c.ShouldBindJSON(&scope); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return "", services.BulkScope{}, false
	}
	return kind, scope, true
}

//
// Handlers
//

// CreateView godoc
// @ID          createView
// @Summary     Open an assignment list view
// @Description Creates a view and fetches its first page.
// @Tags        Views
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  false "Operator ID (demo header)"
// @Param       configId   path    string  true  "Assignment configuration ID"
// @Param       order_by   query   string  false "AIP-132 ordering, e.g. \"amount desc\""
// @Param       body       body    handlers.CreateViewRequest  true  "View"
// @Success     201  {object}  services.ViewSnapshot
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Router      /configurations/{configId}/views [post]
func (h *Handlers) CreateView(c *gin.Context) {
	var req CreateViewRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.PolicyID) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "policy_id required")
		return
	}
	var st domain.TableQueryState
	if req.State != nil {
		st = *req.State
	}
	st, valid := h.normalizeState(c, st)
	if !valid {
		return
	}

	v := h.viewSvc.Create(userID(c), c.Param("configId"), req.PolicyID, req.EnterpriseID)
	v.Sync.Fetch(st)
	v.Sync.Refresh(c.Request.Context())
	ok(c, http.StatusCreated, v.Snapshot())
}

// GetView godoc
// @ID          getView
// @Summary     Get a list view
// @Tags        Views
// @Produce     json
// @Param       X-User-ID  header  string  false "Operator ID (demo header)"
// @Param       viewId     path    string  true  "View ID"  format(uuid)
// @Success     200  {object}  services.ViewSnapshot
// @Failure     404  {object}  handlers.ErrorResponse  "View not found"
// @Router      /views/{viewId} [get]
func (h *Handlers) GetView(c *gin.Context) {
	v, found := h.view(c)
	if !found {
		return
	}
	ok(c, http.StatusOK, v.Snapshot())
}

// UpdateViewState godoc
// @ID          updateViewState
// @Summary     Change sort, filters or page of a view
// @Description Fetches are debounced; rapid changes produce one request carrying the latest state.
// @Tags        Views
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  false "Operator ID (demo header)"
// @Param       viewId     path    string  true  "View ID"  format(uuid)
// @Param       order_by   query   string  false "AIP-132 ordering, e.g. \"amount desc, recentAction\""
// @Param       body       body    domain.TableQueryState  true  "Table state"
// @Success     202  {object}  services.ViewSnapshot
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "View not found"
// @Router      /views/{viewId}/state [put]
func (h *Handlers) UpdateViewState(c *gin.Context) {
	v, found := h.view(c)
	if !found {
		return
	}
	var st domain.TableQueryState
	if err := c.ShouldBindJSON(&st); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	st, valid := h.normalizeState(c, st)
	if !valid {
		return
	}
	v.Sync.Fetch(st)
	ok(c, http.StatusAccepted, v.Snapshot())
}

// RefreshView godoc
// @ID          refreshView
// @Summary     Refetch a view now
// @Tags        Views
// @Produce     json
// @Param       X-User-ID  header  string  false "Operator ID (demo header)"
// @Param       viewId     path    string  true  "View ID"  format(uuid)
// @Success     200  {object}  services.ViewSnapshot
// @Failure     404  {object}  handlers.ErrorResponse  "View not found"
// @Router      /views/{viewId}/refresh [post]
func (h *Handlers) RefreshView(c *gin.Context) {
	v, found := h.view(c)
	if !found {
		return
	}
	v.Sync.Refresh(c.Request.Context())
	ok(c, http.StatusOK, v.Snapshot())
}

// DeleteView godoc
// @ID          deleteView
// @Summary     Close a list view
// @Tags        Views
// @Param       X-User-ID  header  string  false "Operator ID (demo header)"
// @Param       viewId     path    string  true  "View ID"  format(uuid)
// @Success     204  {string}  string  "No Content"
// @Failure     404  {object}  handlers.ErrorResponse  "View not found"
// @Router      /views/{viewId} [delete]
func (h *Handlers) DeleteView(c *gin.Context) {
	if err := h.viewSvc.Delete(userID(c), c.Param("viewId")); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}

// ConfirmBulk godoc
// @ID          confirmBulk
// @Summary     Preview a bulk remind or cancel
// @Description Returns the confirmation dialog: label with the actionable count and whether the
// @Description confirm button is disabled. Ineligible selected rows are not counted.
// @Tags        Bulk
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  false "Operator ID (demo header)"
// @Param       viewId     path    string  true  "View ID"  format(uuid)
// @Param       kind       path    string  true  "remind or cancel"  Enums(remind, cancel)
// @Param       body       body    services.BulkScope  true  "Selection or all_filtered"
// @Success     200  {object}  services.BulkConfirmation
// @Failure     400  {object}  handlers.ErrorResponse  "Bad kind or scope"
// @Failure     404  {object}  handlers.ErrorResponse  "View not found"
// @Router      /views/{viewId}/bulk/{kind}/confirm [post]
func (h *Handlers) ConfirmBulk(c *gin.Context) {
	v, found := h.view(c)
	if !found {
		return
	}
	kind, scope, valid := bulkRequest(c)
	if !valid {
		return
	}
	conf, err := h.bulkSvc.Confirm(v, kind, scope)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, conf)
}

// PerformBulk godoc
// @ID          performBulk
// @Summary     Run a bulk remind or cancel
// @Tags        Bulk
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  false "Operator ID (demo header)"
// @Param       viewId     path    string  true  "View ID"  format(uuid)
// @Param       kind       path    string  true  "remind or cancel"  Enums(remind, cancel)
// @Param       body       body    services.BulkScope  true  "Selection or all_filtered"
// @Success     200  {object}  services.BulkOutcome
// @Failure     400  {object}  handlers.ErrorResponse  "Bad kind or scope"
// @Failure     404  {object}  handlers.ErrorResponse  "View not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Already pending"
// @Failure     422  {object}  handlers.ErrorResponse  "Nothing eligible"
// @Failure     502  {object}  handlers.ErrorResponse  "Upstream failure"
// @Router      /views/{viewId}/bulk/{kind} [post]
func (h *Handlers) PerformBulk(c *gin.Context) {
	v, found := h.view(c)
	if !found {
		return
	}
	kind, scope, valid := bulkRequest(c)
	if !valid {
		return
	}
	out, err := h.bulkSvc.Perform(c.Request.Context(), v, kind, scope)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

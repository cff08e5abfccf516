// Tracking HTTP handlers.
//
//   - GET /tracking-events  (list paginated, ETag support)
//
// The dashboard's analytics relay polls this endpoint; conditional requests
// keep idle polling cheap.
package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/go-budget-assign/internal/domain"
	"github.com/tbourn/go-budget-assign/internal/repo"
	"github.com/tbourn/go-budget-assign/internal/services"
)

// ListTrackingEventsResponse wraps a page of tracking events and pagination
// information.
type ListTrackingEventsResponse struct {
	Events     []domain.TrackingEvent `json:"events"`
	Pagination Pagination             `json:"pagination"`
}

// ListTrackingEvents godoc
// @ID          listTrackingEvents
// @Summary     List tracking events (paginated)
// @Description Returns the operator's analytics events, newest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Tracking
// @Produce     json
//
// @Param       X-User-ID      header  string  false "Operator ID (demo header)"    example(admin-1)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"   example(W/\"tracking:admin-1::3:1700000000\")
// @Param       name           query   string  false "Event name"                   Enums(list_sort_filter_changed, allocation_submitted, allocation_failed, allocation_retried, bulk_action)
// @Param       page           query   int     false "Page number"                  minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"               minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListTrackingEventsResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /tracking-events [get]
func (h *Handlers) ListTrackingEvents(c *gin.Context) {
	ctx := c.Request.Context()
	f := repo.TrackingFilter{
		OperatorID: userID(c),
		Name:       strings.TrimSpace(c.Query("name")),
	}
	page, pageSize := clampPagination(c, 20, 100)

	// ETag pre-check (best effort).
	var db *gorm.DB
	if svc, ok := h.trackSvc.(*services.TrackingService); ok {
		db = svc.DB
	}
	if db != nil {
		count, maxTS, err := repo.TrackingStats(ctx, db, f)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.UnixNano()
			}
			etag := fmt.Sprintf(`W/"tracking:%s:%s:%d:%d:%d:%d"`, f.OperatorID, f.Name, page, pageSize, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, total, err := h.trackSvc.ListPage(ctx, f, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, ListTrackingEventsResponse{
		Events:     items,
		Pagination: newPagination(page, pageSize, total),
	})
}

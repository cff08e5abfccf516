package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-budget-assign/internal/sysutil"
)

// HeaderUserID carries the operator identity in development setups where no
// authenticating proxy sets one.
const HeaderUserID = "X-User-ID"

// DefaultOperator is the identity of requests that carry none.
const DefaultOperator = "demo-user"

// ctxKeyUserID is where an authenticating proxy stores the operator id.
const ctxKeyUserID = "userID"

// OperatorID returns the "userID" context value, else the trimmed X-User-ID
// header, else DefaultOperator.
func OperatorID(c *gin.Context) string {
	var header string
	if c.Request != nil {
		header = strings.TrimSpace(c.GetHeader(HeaderUserID))
	}
	return sysutil.FirstNonEmpty(c.GetString(ctxKeyUserID), header, DefaultOperator)
}

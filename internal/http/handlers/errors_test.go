package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-budget-assign/internal/enterpriseaccess"
	"github.com/tbourn/go-budget-assign/internal/services"
)

func TestFailErr_MapsServiceErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{services.ErrSessionNotFound, http.StatusNotFound, ErrCodeNotFound},
		{services.ErrViewNotFound, http.StatusNotFound, ErrCodeNotFound},
		{services.ErrValidation, http.StatusUnprocessableEntity, ErrCodeValidationFailed},
		{services.ErrNothingToAct, http.StatusUnprocessableEntity, ErrCodeNothingToAct},
		{services.ErrNotRetryable, http.StatusConflict, ErrCodeNotRetryable},
		{services.ErrOperationPending, http.StatusConflict, ErrCodePending},
		{services.ErrInvalidTransition, http.StatusConflict, ErrCodeInvalidTransition},
		{services.ErrInvalidScope, http.StatusBadRequest, ErrCodeBadRequest},
		{fmt.Errorf("%w: timeout", services.ErrBudgetUnavailable), http.StatusBadGateway, ErrCodeBudgetUnavailable},
		{fmt.Errorf("bulk cancel: %w", &enterpriseaccess.APIError{Status: 500}), http.StatusBadGateway, ErrCodeUpstream},
		{errors.New("boom"), http.StatusInternalServerError, ErrCodeInternal},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		failErr(c, tc.err)
		if w.Code != tc.status {
			t.Errorf("%v: status=%d; want %d", tc.err, w.Code, tc.status)
			continue
		}
		if er := decode[ErrorResponse](t, w); er.Code != tc.code {
			t.Errorf("%v: code=%q; want %q", tc.err, er.Code, tc.code)
		}
	}
}

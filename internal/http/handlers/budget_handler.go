// Budget HTTP handlers.
//
//   - GET /policies/{policyId}/budget         (one budget)
//   - GET /enterprises/{enterpriseId}/budgets (all budgets of an enterprise)
//
// Both read through the budget cache, which is invalidated by every
// successful allocation and bulk mutation.
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/tbourn/go-budget-assign/internal/domain"
	"github.com/tbourn/go-budget-assign/internal/services"
)

// BudgetResponse is a budget with its derived available balance.
type BudgetResponse struct {
	domain.BudgetAggregates
	SpendAvailableUSD decimal.Decimal `json:"spend_available_usd" swaggertype:"string" example:"403.00"`
}

// ListBudgetsResponse wraps an enterprise's budgets.
type ListBudgetsResponse struct {
	Budgets []BudgetResponse `json:"budgets"`
}

func budgetResponse(b domain.BudgetAggregates) BudgetResponse {
	return BudgetResponse{BudgetAggregates: b, SpendAvailableUSD: b.SpendAvailableUSD()}
}

// GetBudget godoc
// @ID          getBudget
// @Summary     Get a budget
// @Tags        Budgets
// @Produce     json
// @Param       policyId  path  string  true  "Subsidy access policy ID"
// @Success     200  {object}  handlers.BudgetResponse
// @Failure     502  {object}  handlers.ErrorResponse  "Budget unavailable"
// @Router      /policies/{policyId}/budget [get]
func (h *Handlers) GetBudget(c *gin.Context) {
	b, err := h.budgetSvc.Budget(c.Request.Context(), c.Param("policyId"))
	if err != nil {
		failErr(c, fmt.Errorf("%w: %v", services.ErrBudgetUnavailable, err))
		return
	}
	ok(c, http.StatusOK, budgetResponse(b))
}

// ListBudgets godoc
// @ID          listBudgets
// @Summary     List an enterprise's budgets
// @Tags        Budgets
// @Produce     json
// @Param       enterpriseId  path  string  true  "Enterprise customer ID"
// @Success     200  {object}  handlers.ListBudgetsResponse
// @Failure     502  {object}  handlers.ErrorResponse  "Budget unavailable"
// @Router      /enterprises/{enterpriseId}/budgets [get]
func (h *Handlers) ListBudgets(c *gin.Context) {
	bs, err := h.budgetSvc.Budgets(c.Request.Context(), c.Param("enterpriseId"))
	if err != nil {
		failErr(c, fmt.Errorf("%w: %v", services.ErrBudgetUnavailable, err))
		return
	}
	out := ListBudgetsResponse{Budgets: make([]BudgetResponse, 0, len(bs))}
	for _, b := range bs {
		out.Budgets = append(out.Budgets, budgetResponse(b))
	}
	ok(c, http.StatusOK, out)
}

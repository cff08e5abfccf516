package domain

import "github.com/shopspring/decimal"

// AllocationRequest is the draft an operator submits against a budget.
type AllocationRequest struct {
	PolicyID          string   `json:"policy_id"`
	ContentKey        string   `json:"content_key"`
	ContentPriceCents int64    `json:"content_price_cents"`
	LearnerEmails     []string `json:"learner_emails"`
	GroupEmails       []string `json:"group_emails,omitempty"`
}

// AllocationResult is the multi-outcome response to an allocate call.
type AllocationResult struct {
	Created  []ContentAssignment `json:"created"`
	Updated  []ContentAssignment `json:"updated"`
	NoChange []ContentAssignment `json:"no_change"`
}

// AllocationSummary is the toast payload derived from an AllocationResult.
type AllocationSummary struct {
	TotalLearnersAllocated        int `json:"total_learners_allocated"`
	TotalLearnersAlreadyAllocated int `json:"total_learners_already_allocated"`
}

// Summary merges the three outcome buckets into one user-facing count pair.
func (r AllocationResult) Summary() AllocationSummary {
	return AllocationSummary{
		TotalLearnersAllocated:        len(r.Created) + len(r.Updated),
		TotalLearnersAlreadyAllocated: len(r.NoChange),
	}
}

// BudgetAggregates are the balance figures of one subsidy access policy.
// Available is always derived from the other three and never stored.
type BudgetAggregates struct {
	PolicyID           string          `json:"policy_id"`
	EnterpriseID       string          `json:"enterprise_id,omitempty"`
	DisplayName        string          `json:"display_name,omitempty"`
	SpendLimitUSD      decimal.Decimal `json:"spend_limit_usd"`
	AmountAllocatedUSD decimal.Decimal `json:"amount_allocated_usd"`
	AmountRedeemedUSD  decimal.Decimal `json:"amount_redeemed_usd"`
}

// SpendAvailableUSD is limit − allocated − redeemed. The backend reports
// allocated and redeemed amounts as negative ledger values, so magnitudes
// are used.
func (b BudgetAggregates) SpendAvailableUSD() decimal.Decimal {
	return b.SpendLimitUSD.Sub(b.AmountAllocatedUSD.Abs()).Sub(b.AmountRedeemedUSD.Abs())
}

// CentsToUSD converts integer cents into a two-place decimal dollar amount.
func CentsToUSD(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

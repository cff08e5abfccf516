package enterpriseaccess

import "github.com/tbourn/go-budget-assign/internal/domain"

func allocReq(policy string) domain.AllocationRequest {
	return domain.AllocationRequest{
		PolicyID:          policy,
		ContentKey:        "edX+DemoX",
		ContentPriceCents: 19900,
		LearnerEmails:     []string{"a@a.com"},
	}
}

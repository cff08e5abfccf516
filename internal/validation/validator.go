// Package validation checks a candidate learner set before any money is
// spent. It mirrors the backend's allocation rules: well-formed emails, no
// case-insensitive duplicates, an upper bound on set size, and a projected
// cost that fits the budget's available balance.
package validation

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tbourn/go-budget-assign/internal/domain"
	"github.com/tbourn/go-budget-assign/internal/messages"
)

// ViolationType names the rule a learner set broke.
type ViolationType string

const (
	ViolationInvalidEmail       ViolationType = "invalid_email"
	ViolationDuplicate          ViolationType = "duplicate"
	ViolationTooMany            ViolationType = "too_many"
	ViolationInsufficientBudget ViolationType = "insufficient_budget"
)

// Violation is the first rule broken, with display copy.
type Violation struct {
	Type    ViolationType `json:"type"`
	Value   string        `json:"value,omitempty"`
	Message string        `json:"message"`
}

// Input is one validation request.
type Input struct {
	Emails         []string        `json:"emails"`
	GroupEmails    []string        `json:"group_emails"`
	UnitPriceCents int64           `json:"content_price_cents"`
	AvailableUSD   decimal.Decimal `json:"available_usd"`
}

// Verdict is the outcome of Validate. CostUSD and RemainingAfterUSD are nil
// while an email-level violation is present; no cost is shown for a list
// that cannot be submitted as typed.
type Verdict struct {
	IsValid           bool             `json:"is_valid"`
	TotalCount        int              `json:"total_count"`
	CostUSD           *decimal.Decimal `json:"cost_usd,omitempty"`
	RemainingAfterUSD *decimal.Decimal `json:"remaining_after_usd,omitempty"`
	Violation         *Violation       `json:"violation,omitempty"`
	// Emails is the merged, de-duplicated learner set in first-seen casing.
	Emails []string `json:"emails"`
}

// emailRE is an RFC-lite local@domain.tld shape check.
var emailRE = regexp.MustCompile(`^[^\s@]+@[^\s@.]+(\.[^\s@.]+)+$`)

// ValidEmail reports whether s has the local@domain.tld shape.
func ValidEmail(s string) bool { return emailRE.MatchString(s) }

// Validator runs the allocation rules. MaxEmails <= 0 disables the size cap.
type Validator struct {
	MaxEmails int
}

// Validate checks in and returns a verdict. Rules apply in order and the
// first failure wins: shape, duplicates, set size, balance.
func (v Validator) Validate(in Input) Verdict {
	typed := trimAll(in.Emails)
	group := trimAll(in.GroupEmails)
	merged := Merge(typed, group)

	out := Verdict{TotalCount: len(merged), Emails: merged}

	for _, e := range append(append([]string(nil), typed...), group...) {
		if !ValidEmail(e) {
			out.Violation = &Violation{Type: ViolationInvalidEmail, Value: e, Message: messages.InvalidEmail(e)}
			return out
		}
	}

	// duplicates are only reported for typed entries; a group member the
	// operator also typed is merged silently
	seen := make(map[string]struct{}, len(typed))
	for _, e := range typed {
		k := strings.ToLower(e)
		if _, dup := seen[k]; dup {
			out.Violation = &Violation{Type: ViolationDuplicate, Value: e, Message: messages.DuplicateEmail(e)}
			return out
		}
		seen[k] = struct{}{}
	}

	cost := domain.CentsToUSD(in.UnitPriceCents).Mul(decimal.NewFromInt(int64(len(merged))))
	remaining := in.AvailableUSD.Sub(cost)
	out.CostUSD = &cost
	out.RemainingAfterUSD = &remaining

	if len(merged) == 0 {
		return out
	}
	if v.MaxEmails > 0 && len(merged) > v.MaxEmails {
		out.Violation = &Violation{Type: ViolationTooMany, Message: messages.TooManyEmails(v.MaxEmails)}
		return out
	}
	if cost.GreaterThan(in.AvailableUSD) {
		out.Violation = &Violation{Type: ViolationInsufficientBudget, Message: messages.InsufficientBudget()}
		return out
	}

	out.IsValid = true
	return out
}

// Merge concatenates lists and de-duplicates case-insensitively, keeping the
// first-seen casing.
func Merge(lists ...[]string) []string {
	var n int
	for _, l := range lists {
		n += len(l)
	}
	seen := make(map[string]struct{}, n)
	out := make([]string, 0, n)
	for _, l := range lists {
		for _, e := range l {
			k := strings.ToLower(e)
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, e)
		}
	}
	return out
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Package errclass classifies failed allocation responses into the fixed
// error taxonomy that drives the error dialog: which copy to show and
// whether Retry is offered.
package errclass

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-budget-assign/internal/domain"
	"github.com/tbourn/go-budget-assign/internal/messages"
)

// Server-supplied reason codes.
const (
	ReasonContentNotInCatalog     = "content_not_in_catalog"
	ReasonNotEnoughValueInSubsidy = "not_enough_value_in_subsidy"
	ReasonPolicySpendLimitReached = "policy_spend_limit_reached"
)

// StatusError is implemented by upstream errors that carry an HTTP status
// and the raw response body.
type StatusError interface {
	error
	StatusCode() int
	ResponseBody() []byte
}

// Classifier maps failures to categories. The zero value logs through the
// global zerolog logger.
type Classifier struct {
	Logger *zerolog.Logger
}

// Classify maps an HTTP status and reason code to a category. budgetName is
// interpolated into the content_not_in_catalog title when known.
//
// Only 422 responses carry a business reason; anything else, including a
// missing or unrecognized reason, is unknown and retryable.
func (c Classifier) Classify(status int, reason, budgetName string) domain.ErrorCategory {
	cat := category(status, reason, budgetName)
	c.logger().Warn().
		Str("category", string(cat.Kind)).
		Bool("retryable", cat.Retryable).
		Int("http_status", status).
		Str("reason", reason).
		Msg("allocation failed")
	return cat
}

// ClassifyError classifies an error returned by the allocate call. Errors
// that carry no upstream response (transport failures, timeouts) fall into
// the unknown bucket.
func (c Classifier) ClassifyError(err error, budgetName string) domain.ErrorCategory {
	var se StatusError
	if errors.As(err, &se) {
		status, reason := ParseFailure(se.StatusCode(), se.ResponseBody())
		return c.Classify(status, reason, budgetName)
	}
	cat := category(0, "", budgetName)
	c.logger().Warn().Err(err).
		Str("category", string(cat.Kind)).
		Bool("retryable", cat.Retryable).
		Msg("allocation failed without upstream response")
	return cat
}

func category(status int, reason, budgetName string) domain.ErrorCategory {
	base := domain.ErrorCategory{HTTPStatus: status, ReasonCode: reason}
	if status == http.StatusUnprocessableEntity {
		switch reason {
		case ReasonContentNotInCatalog:
			base.Kind = domain.ErrorContentNotInCatalog
			base.Retryable = false
			base.Title = messages.NotInCatalogTitle(budgetName)
			base.Body = messages.Sprintf(messages.KeyNotInCatalogBody)
			return base
		case ReasonNotEnoughValueInSubsidy:
			base.Kind = domain.ErrorInsufficientBalance
			base.Retryable = true
			base.Title = messages.Sprintf(messages.KeyNotEnoughBalanceTitle)
			base.Body = messages.Sprintf(messages.KeyInsufficientBalanceBody)
			return base
		case ReasonPolicySpendLimitReached:
			base.Kind = domain.ErrorSpendLimitReached
			base.Retryable = true
			base.Title = messages.Sprintf(messages.KeyNotEnoughBalanceTitle)
			base.Body = messages.Sprintf(messages.KeySpendLimitReachedBody)
			return base
		}
	}
	base.Kind = domain.ErrorUnknown
	base.Retryable = true
	base.Title = messages.Sprintf(messages.KeySomethingWentWrongTitle)
	base.Body = messages.Sprintf(messages.KeySomethingWentWrongBody)
	return base
}

func (c Classifier) logger() *zerolog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return &log.Logger
}

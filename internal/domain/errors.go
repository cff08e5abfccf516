package domain

// ErrorKind is the category a failed allocation is classified into.
type ErrorKind string

const (
	ErrorContentNotInCatalog ErrorKind = "content_not_in_catalog"
	ErrorInsufficientBalance ErrorKind = "insufficient_balance"
	ErrorSpendLimitReached   ErrorKind = "spend_limit_reached"
	ErrorUnknown             ErrorKind = "unknown"
)

// ErrorCategory is the classified outcome of a failed allocation together
// with the copy shown in the error dialog.
type ErrorCategory struct {
	Kind      ErrorKind `json:"kind"`
	Retryable bool      `json:"retryable"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	// HTTPStatus and ReasonCode are kept for logging and analytics.
	HTTPStatus int    `json:"http_status,omitempty"`
	ReasonCode string `json:"reason_code,omitempty"`
}

// ErrorAction is an exit offered by the error dialog.
type ErrorAction string

const (
	ErrorActionRetry ErrorAction = "retry"
	ErrorActionExit  ErrorAction = "exit"
)

// Actions lists the exits the error dialog offers. Exit is always present;
// retry only for retryable categories.
func (c ErrorCategory) Actions() []ErrorAction {
	if c.Retryable {
		return []ErrorAction{ErrorActionRetry, ErrorActionExit}
	}
	return []ErrorAction{ErrorActionExit}
}

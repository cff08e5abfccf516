// Package messages holds the operator-facing copy produced by the engine:
// validation messages, error dialog titles and bodies, and pluralized bulk
// outcome toasts. Copy is resolved through an x/text catalog so plural rules
// live with the strings rather than in call sites.
package messages

import (
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Catalog keys.
const (
	KeyInvalidEmail   = "validation.invalid_email"
	KeyDuplicateEmail = "validation.duplicate_email"
	KeyTooManyEmails  = "validation.too_many"
	KeyInsufficient   = "validation.insufficient_budget"

	KeyNotInCatalogTitle       = "error.not_in_catalog.title"
	KeyNotInCatalogTitleNoName = "error.not_in_catalog.title_no_name"
	KeyNotInCatalogBody        = "error.not_in_catalog.body"
	KeyNotEnoughBalanceTitle   = "error.balance.title"
	KeyInsufficientBalanceBody = "error.balance.body"
	KeySpendLimitReachedBody   = "error.spend_limit.body"
	KeySomethingWentWrongTitle = "error.unknown.title"
	KeySomethingWentWrongBody  = "error.unknown.body"

	KeyRemindConfirm = "bulk.remind.confirm"
	KeyCancelConfirm = "bulk.cancel.confirm"
	KeyReminded      = "bulk.remind.done"
	KeyCanceled      = "bulk.cancel.done"

	KeyAllocated = "allocation.done"
)

var printer = newPrinter()

func newPrinter() *message.Printer {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	en := language.English

	_ = b.SetString(en, KeyInvalidEmail, "%s is not a valid email.")
	_ = b.SetString(en, KeyDuplicateEmail, "%s was entered more than once.")
	_ = b.SetString(en, KeyTooManyEmails, "You can assign this course to at most %d learners at a time.")
	_ = b.SetString(en, KeyInsufficient, "The total assignment cost exceeds your available balance.")

	_ = b.SetString(en, KeyNotInCatalogTitle, "This course is not in your %s budget's catalog")
	_ = b.SetString(en, KeyNotInCatalogTitleNoName, "This course is not in your budget's catalog")
	_ = b.SetString(en, KeyNotInCatalogBody, "This course can't be assigned from this budget. Choose a course from the budget's catalog.")
	_ = b.SetString(en, KeyNotEnoughBalanceTitle, "Not enough balance")
	_ = b.SetString(en, KeyInsufficientBalanceBody, "The budget doesn't have enough balance left for this assignment. Remove some learners and try again.")
	_ = b.SetString(en, KeySpendLimitReachedBody, "This assignment would exceed the budget's spend limit. Remove some learners and try again.")
	_ = b.SetString(en, KeySomethingWentWrongTitle, "Something went wrong")
	_ = b.SetString(en, KeySomethingWentWrongBody, "We were unable to assign this course. Try again.")

	_ = b.SetString(en, KeyRemindConfirm, "Remind (%d)")
	_ = b.SetString(en, KeyCancelConfirm, "Cancel (%d)")
	_ = b.Set(en, KeyReminded, plural.Selectf(1, "%d",
		"=1", "Reminder sent",
		"other", "Reminders sent (%[1]d)",
	))
	_ = b.Set(en, KeyCanceled, plural.Selectf(1, "%d",
		"=1", "Assignment canceled",
		"other", "Assignments canceled (%[1]d)",
	))
	_ = b.Set(en, KeyAllocated, plural.Selectf(1, "%d",
		"=1", "Course assigned to 1 learner",
		"other", "Course assigned to %[1]d learners",
	))

	return message.NewPrinter(en, message.Catalog(b))
}

// Sprintf formats the catalog entry for key.
func Sprintf(key string, args ...any) string {
	return printer.Sprintf(key, args...)
}

// InvalidEmail is the validation message naming a malformed entry.
func InvalidEmail(v string) string { return Sprintf(KeyInvalidEmail, v) }

// DuplicateEmail is the validation message naming a repeated entry.
func DuplicateEmail(v string) string { return Sprintf(KeyDuplicateEmail, v) }

// TooManyEmails is the validation message for an oversized learner set.
func TooManyEmails(max int) string { return Sprintf(KeyTooManyEmails, max) }

// InsufficientBudget is the validation message for a learner set that costs
// more than the remaining balance.
func InsufficientBudget() string { return Sprintf(KeyInsufficient) }

// NotInCatalogTitle names the budget when known.
func NotInCatalogTitle(budgetName string) string {
	if budgetName == "" {
		return Sprintf(KeyNotInCatalogTitleNoName)
	}
	return Sprintf(KeyNotInCatalogTitle, budgetName)
}

// BulkConfirmLabel is the confirm button label, e.g. "Remind (1)".
func BulkConfirmLabel(remind bool, n int) string {
	if remind {
		return Sprintf(KeyRemindConfirm, n)
	}
	return Sprintf(KeyCancelConfirm, n)
}

// BulkOutcome is the toast after a bulk operation: singular for one target,
// "Reminders sent (n)" / "Assignments canceled (n)" otherwise.
func BulkOutcome(remind bool, n int) string {
	if remind {
		return Sprintf(KeyReminded, n)
	}
	return Sprintf(KeyCanceled, n)
}

// Allocated is the success toast headline for an allocation.
func Allocated(n int) string { return Sprintf(KeyAllocated, n) }

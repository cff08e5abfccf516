package services

import (
	"github.com/tbourn/go-budget-assign/internal/dialog"
	"github.com/tbourn/go-budget-assign/internal/domain"
	"github.com/tbourn/go-budget-assign/internal/messages"
	"github.com/tbourn/go-budget-assign/internal/validation"
)

// Phase is the lifecycle step of an allocation session.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseValidating Phase = "validating"
	PhaseSubmitting Phase = "submitting"
	PhaseSucceeded  Phase = "succeeded"
	PhaseFailed     Phase = "failed"
	PhaseClosed     Phase = "closed"
)

// Done reports whether the session accepts no further operations.
func (p Phase) Done() bool { return p == PhaseSucceeded || p == PhaseClosed }

// Toast is shown after a successful allocation.
type Toast struct {
	Message string                   `json:"message"`
	Summary domain.AllocationSummary `json:"summary"`
}

// AllocationState is an immutable snapshot of one allocation draft. Every
// transition returns a new value and leaves the receiver untouched.
type AllocationState struct {
	Phase    Phase                    `json:"phase"`
	Request  domain.AllocationRequest `json:"request"`
	Verdict  *validation.Verdict      `json:"verdict,omitempty"`
	Dialogs  dialog.Stack             `json:"dialogs"`
	Attempts int                      `json:"attempts"`
	Toast    *Toast                   `json:"toast,omitempty"`
	Error    *domain.ErrorCategory    `json:"error,omitempty"`
	Actions  []domain.ErrorAction     `json:"actions,omitempty"`
}

// NewAllocationState opens the assignment dialog over a fresh draft.
func NewAllocationState(req domain.AllocationRequest) AllocationState {
	return AllocationState{
		Phase:   PhaseIdle,
		Request: req,
		Dialogs: dialog.New(dialog.Assignment),
	}
}

// EditDraft replaces the learner lists. Allowed before the first submit and
// while an error is shown, so the operator can fix the list and retry.
func (s AllocationState) EditDraft(emails, groupEmails []string) (AllocationState, error) {
	switch s.Phase {
	case PhaseIdle, PhaseValidating, PhaseFailed:
	default:
		return s, ErrInvalidTransition
	}
	s.Request.LearnerEmails = append([]string(nil), emails...)
	s.Request.GroupEmails = append([]string(nil), groupEmails...)
	s.Verdict = nil
	if s.Phase != PhaseFailed {
		s.Phase = PhaseValidating
	}
	return s, nil
}

// Validated records a settled verdict for the current draft.
func (s AllocationState) Validated(v validation.Verdict) (AllocationState, error) {
	switch s.Phase {
	case PhaseIdle, PhaseValidating, PhaseFailed:
	default:
		return s, ErrInvalidTransition
	}
	s.Verdict = &v
	if s.Phase == PhaseIdle {
		s.Phase = PhaseValidating
	}
	return s, nil
}

// CanSubmit reports whether the submit control is enabled.
func (s AllocationState) CanSubmit() bool {
	return (s.Phase == PhaseIdle || s.Phase == PhaseValidating) &&
		s.Verdict != nil && s.Verdict.IsValid
}

// StartSubmit moves a validated draft to submitting.
func (s AllocationState) StartSubmit() (AllocationState, error) {
	if s.Phase != PhaseIdle && s.Phase != PhaseValidating {
		return s, ErrInvalidTransition
	}
	if s.Verdict == nil || !s.Verdict.IsValid {
		return s, ErrValidation
	}
	s.Phase = PhaseSubmitting
	s.Attempts++
	return s, nil
}

// Succeeded closes every dialog and shows the toast.
func (s AllocationState) Succeeded(res domain.AllocationResult) (AllocationState, error) {
	if s.Phase != PhaseSubmitting {
		return s, ErrInvalidTransition
	}
	sum := res.Summary()
	s.Phase = PhaseSucceeded
	s.Toast = &Toast{Message: messages.Allocated(sum.TotalLearnersAllocated), Summary: sum}
	s.Error = nil
	s.Actions = nil
	s.Dialogs = s.Dialogs.Clear()
	return s, nil
}

// Failed stacks the error dialog above the assignment dialog.
func (s AllocationState) Failed(cat domain.ErrorCategory) (AllocationState, error) {
	if s.Phase != PhaseSubmitting {
		return s, ErrInvalidTransition
	}
	s.Phase = PhaseFailed
	s.Error = &cat
	s.Actions = cat.Actions()
	s.Dialogs = s.Dialogs.PopIf(dialog.Error).Push(dialog.Error)
	return s, nil
}

// StartRetry re-enters submitting from a retryable failure. The error
// dialog stays open until the retry resolves.
func (s AllocationState) StartRetry() (AllocationState, error) {
	if s.Phase != PhaseFailed || s.Error == nil {
		return s, ErrInvalidTransition
	}
	if !s.Error.Retryable {
		return s, ErrNotRetryable
	}
	if s.Verdict != nil && !s.Verdict.IsValid {
		return s, ErrValidation
	}
	s.Phase = PhaseSubmitting
	s.Attempts++
	return s, nil
}

// RetrySucceeded closes only the error dialog. The assignment dialog is
// closed by the Succeeded transition that follows.
func (s AllocationState) RetrySucceeded() (AllocationState, error) {
	if s.Phase != PhaseSubmitting {
		return s, ErrInvalidTransition
	}
	s.Dialogs = s.Dialogs.PopIf(dialog.Error)
	s.Error = nil
	s.Actions = nil
	return s, nil
}

// Exit closes every dialog at once and discards the draft.
func (s AllocationState) Exit() AllocationState {
	return AllocationState{
		Phase:    PhaseClosed,
		Dialogs:  s.Dialogs.Clear(),
		Attempts: s.Attempts,
		Toast:    s.Toast,
	}
}

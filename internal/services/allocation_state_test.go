package services

import (
	"errors"
	"reflect"
	"testing"

	"github.com/tbourn/go-budget-assign/internal/dialog"
	"github.com/tbourn/go-budget-assign/internal/domain"
	"github.com/tbourn/go-budget-assign/internal/validation"
)

func validState(t *testing.T) AllocationState {
	t.Helper()
	st, err := NewAllocationState(domain.AllocationRequest{PolicyID: "p"}).
		Validated(validation.Verdict{IsValid: true, TotalCount: 1})
	if err != nil {
		t.Fatal(err)
	}
	return st
}

func mustState(t *testing.T) func(AllocationState, error) AllocationState {
	return func(st AllocationState, err error) AllocationState {
		t.Helper()
		if err != nil {
			t.Fatalf("transition: %v", err)
		}
		return st
	}
}

func TestAllocationState_SubmitRequiresValidVerdict(t *testing.T) {
	st := NewAllocationState(domain.AllocationRequest{PolicyID: "p"})
	if _, err := st.StartSubmit(); !errors.Is(err, ErrValidation) {
		t.Fatalf("submit without verdict err = %v", err)
	}
	bad, _ := st.Validated(validation.Verdict{Violation: &validation.Violation{Type: validation.ViolationDuplicate}})
	if bad.CanSubmit() {
		t.Fatal("submit must be disabled with a violation")
	}
	if _, err := bad.StartSubmit(); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v", err)
	}
}

func TestAllocationState_SuccessClosesEverything(t *testing.T) {
	st := mustState(t)(validState(t).StartSubmit())
	if st.Phase != PhaseSubmitting || st.Attempts != 1 {
		t.Fatalf("state = %+v", st)
	}
	st = mustState(t)(st.Succeeded(domain.AllocationResult{
		Created:  []domain.ContentAssignment{{UUID: "a"}},
		Updated:  []domain.ContentAssignment{{UUID: "b"}},
		NoChange: []domain.ContentAssignment{{UUID: "c"}},
	}))
	if st.Dialogs.Len() != 0 || st.Phase != PhaseSucceeded {
		t.Fatalf("state = %+v", st)
	}
	if st.Toast == nil || st.Toast.Summary.TotalLearnersAllocated != 2 || st.Toast.Summary.TotalLearnersAlreadyAllocated != 1 {
		t.Fatalf("toast = %+v", st.Toast)
	}
}

func TestAllocationState_FailureStacksErrorDialog(t *testing.T) {
	st := mustState(t)(validState(t).StartSubmit())
	st = mustState(t)(st.Failed(domain.ErrorCategory{Kind: domain.ErrorInsufficientBalance, Retryable: true}))

	want := []dialog.ID{dialog.Assignment, dialog.Error}
	if !reflect.DeepEqual(st.Dialogs.IDs(), want) {
		t.Fatalf("dialogs = %v; want %v", st.Dialogs.IDs(), want)
	}
	if !reflect.DeepEqual(st.Actions, []domain.ErrorAction{domain.ErrorActionRetry, domain.ErrorActionExit}) {
		t.Fatalf("actions = %v", st.Actions)
	}
}

func TestAllocationState_RetrySuccessRemovesOnlyErrorDialog(t *testing.T) {
	st := mustState(t)(validState(t).StartSubmit())
	st = mustState(t)(st.Failed(domain.ErrorCategory{Kind: domain.ErrorUnknown, Retryable: true}))
	st = mustState(t)(st.StartRetry())
	if st.Attempts != 2 {
		t.Fatalf("attempts = %d; want 2", st.Attempts)
	}
	if st.Dialogs.Top() != dialog.Error {
		t.Fatal("error dialog stays open while the retry is in flight")
	}
	st = mustState(t)(st.RetrySucceeded())
	if !reflect.DeepEqual(st.Dialogs.IDs(), []dialog.ID{dialog.Assignment}) {
		t.Fatalf("dialogs = %v; want only the assignment dialog", st.Dialogs.IDs())
	}
}

func TestAllocationState_RetryRefusedForTerminalCategory(t *testing.T) {
	st := mustState(t)(validState(t).StartSubmit())
	st = mustState(t)(st.Failed(domain.ErrorCategory{Kind: domain.ErrorContentNotInCatalog}))
	if !reflect.DeepEqual(st.Actions, []domain.ErrorAction{domain.ErrorActionExit}) {
		t.Fatalf("actions = %v; only exit expected", st.Actions)
	}
	if _, err := st.StartRetry(); !errors.Is(err, ErrNotRetryable) {
		t.Fatalf("err = %v", err)
	}
}

func TestAllocationState_ExitClearsAllDialogsAndDraft(t *testing.T) {
	st := mustState(t)(validState(t).StartSubmit())
	st = mustState(t)(st.Failed(domain.ErrorCategory{Kind: domain.ErrorUnknown, Retryable: true}))
	out := st.Exit()
	if out.Dialogs.Len() != 0 || out.Phase != PhaseClosed {
		t.Fatalf("exit state = %+v", out)
	}
	if out.Request.PolicyID != "" || out.Verdict != nil || out.Error != nil {
		t.Fatalf("draft should be discarded: %+v", out)
	}
	if st.Dialogs.Len() != 2 {
		t.Fatal("receiver must not change")
	}
}

func TestAllocationState_EditDraftDuringFailure(t *testing.T) {
	st := mustState(t)(validState(t).StartSubmit())
	st = mustState(t)(st.Failed(domain.ErrorCategory{Kind: domain.ErrorInsufficientBalance, Retryable: true}))
	st = mustState(t)(st.EditDraft([]string{"x@x.com"}, nil))
	if st.Phase != PhaseFailed || st.Verdict != nil {
		t.Fatalf("state = %+v", st)
	}
	if _, err := mustState(t)(validState(t).StartSubmit()).EditDraft(nil, nil); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("edit while submitting err = %v", err)
	}
}

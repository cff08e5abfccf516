// Package domain defines the core types of the budget assignment engine.
// Assignment, budget and table-state types mirror the enterprise-access API
// payloads; the GORM models at the bottom of the package back the local
// idempotency and tracking stores.
package domain

import "time"

// LearnerState is the lifecycle status of one assignment as reported by the
// backend.
type LearnerState string

const (
	LearnerStateNotifying LearnerState = "notifying"
	LearnerStateWaiting   LearnerState = "waiting"
	LearnerStateFailed    LearnerState = "failed"
	LearnerStateCancelled LearnerState = "cancelled"
	LearnerStateAccepted  LearnerState = "accepted"
)

// IsTerminal reports whether no further lifecycle action can apply.
func (s LearnerState) IsTerminal() bool {
	return s == LearnerStateCancelled || s == LearnerStateAccepted
}

// Valid reports whether s is one of the known learner states.
func (s LearnerState) Valid() bool {
	switch s {
	case LearnerStateNotifying, LearnerStateWaiting, LearnerStateFailed,
		LearnerStateCancelled, LearnerStateAccepted:
		return true
	}
	return false
}

// ActionType identifies a lifecycle step performed against an assignment.
type ActionType string

const (
	ActionLinked     ActionType = "learner_linked"
	ActionNotified   ActionType = "notified"
	ActionReminded   ActionType = "reminded"
	ActionCancelled  ActionType = "cancelled"
	ActionRedeemed   ActionType = "redeemed"
	ActionExpired    ActionType = "expired"
	ActionAutomatic  ActionType = "automatic_cancellation_notification"
	ActionFailedStep ActionType = "errored"
)

// FailedStep names the lifecycle step an errored assignment failed on.
type FailedStep string

const (
	StepLinking    FailedStep = "linking"
	StepNotifying  FailedStep = "notifying"
	StepReminding  FailedStep = "reminding"
	StepCancelling FailedStep = "cancelling"
	StepRedeeming  FailedStep = "redeeming"
)

// Action is one entry of an assignment's ordered action history.
type Action struct {
	ActionType  ActionType `json:"action_type"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ErrorReason *string    `json:"error_reason,omitempty"`
}

// RecentAction is the backend's summary of the latest action.
type RecentAction struct {
	ActionType ActionType `json:"action_type"`
	Timestamp  time.Time  `json:"timestamp"`
}

// ErrorReason is present iff LearnerState is failed.
type ErrorReason struct {
	ActionType  FailedStep `json:"action_type"`
	ErrorReason string     `json:"error_reason"`
}

// Expiration describes the earliest date an assignment can lapse.
type Expiration struct {
	Date   time.Time `json:"date"`
	Reason string    `json:"reason,omitempty"`
}

// ContentAssignment is one learner's allocated funding for a course.
//
// ContentQuantity is in cents and negative for a cost. LearnerEmail and
// ContentTitle may be null (redacted or not yet resolved).
type ContentAssignment struct {
	UUID                       string        `json:"uuid"`
	LearnerEmail               *string       `json:"learner_email"`
	ContentKey                 string        `json:"content_key"`
	ContentTitle               *string       `json:"content_title"`
	ContentQuantity            int64         `json:"content_quantity"`
	LearnerState               LearnerState  `json:"learner_state"`
	RecentAction               *RecentAction `json:"recent_action,omitempty"`
	Actions                    []Action      `json:"actions"`
	ErrorReason                *ErrorReason  `json:"error_reason"`
	EarliestPossibleExpiration *Expiration   `json:"earliest_possible_expiration,omitempty"`
}

// Consistent reports whether the errorReason/learnerState invariant holds.
func (a ContentAssignment) Consistent() bool {
	return (a.ErrorReason != nil) == (a.LearnerState == LearnerStateFailed)
}

// Clone returns a deep copy whose action history can be appended to safely.
func (a ContentAssignment) Clone() ContentAssignment {
	out := a
	if a.Actions != nil {
		out.Actions = make([]Action, len(a.Actions))
		copy(out.Actions, a.Actions)
	}
	if a.RecentAction != nil {
		ra := *a.RecentAction
		out.RecentAction = &ra
	}
	return out
}

// LearnerStateCount is one bucket of the server-side state histogram that
// accompanies each list page.
type LearnerStateCount struct {
	LearnerState LearnerState `json:"learner_state"`
	Count        int          `json:"count"`
}

// AssignmentPage is one page of the admin assignment list.
type AssignmentPage struct {
	Count              int                 `json:"count"`
	NumPages           int                 `json:"num_pages"`
	CurrentPage        int                 `json:"current_page"`
	Results            []ContentAssignment `json:"results"`
	LearnerStateCounts []LearnerStateCount `json:"learner_state_counts"`
}

// StateCount returns the server-reported count for state (0 when absent).
func (p AssignmentPage) StateCount(state LearnerState) int {
	for _, c := range p.LearnerStateCounts {
		if c.LearnerState == state {
			return c.Count
		}
	}
	return 0
}

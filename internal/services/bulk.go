// Package services – BulkCoordinator
//
// BulkCoordinator performs remind and cancel on many assignments at once,
// either on an explicit selection from the rendered page or on everything
// matching the view's current filters. In the filtered mode the backend,
// not this service, decides membership.
package services

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-budget-assign/internal/dialog"
	"github.com/tbourn/go-budget-assign/internal/domain"
	"github.com/tbourn/go-budget-assign/internal/messages"
	"github.com/tbourn/go-budget-assign/internal/metrics"
	"github.com/tbourn/go-budget-assign/internal/query"
)

// BulkKind is the bulk lifecycle action.
type BulkKind string

const (
	BulkRemind BulkKind = "remind"
	BulkCancel BulkKind = "cancel"
)

// ParseBulkKind validates a kind from the transport layer.
func ParseBulkKind(s string) (BulkKind, error) {
	switch k := BulkKind(s); k {
	case BulkRemind, BulkCancel:
		return k, nil
	}
	return "", ErrInvalidBulkKind
}

// Eligible reports whether an assignment in state can be targeted by kind.
// Remind applies only to learners still waiting; cancel to any non-terminal
// assignment.
func (k BulkKind) Eligible(state domain.LearnerState) bool {
	if k == BulkRemind {
		return state == domain.LearnerStateWaiting
	}
	return !state.IsTerminal()
}

func (k BulkKind) dialog() dialog.ID {
	if k == BulkRemind {
		return dialog.BulkRemind
	}
	return dialog.BulkCancel
}

// BulkScope selects the targets: either explicit rows or everything the
// current filters match.
type BulkScope struct {
	AssignmentUUIDs []string `json:"assignment_uuids,omitempty"`
	AllFiltered     bool     `json:"all_filtered,omitempty"`
}

func (s BulkScope) validate() error {
	if s.AllFiltered == (len(s.AssignmentUUIDs) > 0) {
		return ErrInvalidScope
	}
	return nil
}

func (s BulkScope) label() string {
	if s.AllFiltered {
		return "all_filtered"
	}
	return "selected"
}

// BulkConfirmation is the content of the confirmation dialog. The
// actionable count may be lower than the selected count; zero disables the
// confirm button but the dialog still opens.
type BulkConfirmation struct {
	Kind            BulkKind  `json:"kind"`
	Dialog          dialog.ID `json:"dialog"`
	Label           string    `json:"label"`
	SelectedCount   int       `json:"selected_count"`
	ActionableCount int       `json:"actionable_count"`
	Disabled        bool      `json:"disabled"`
	TargetUUIDs     []string  `json:"target_uuids,omitempty"`
}

// BulkOutcome reports a completed bulk operation.
type BulkOutcome struct {
	Kind     BulkKind `json:"kind"`
	Scope    string   `json:"scope"`
	Count    int      `json:"count"`
	Message  string   `json:"message"`
	Removed  int      `json:"removed_rows"`
	Reminded int      `json:"reminded_rows"`
}

// BulkCoordinator runs bulk operations against list views.
type BulkCoordinator struct {
	Actor       BulkActor
	Invalidator Invalidator
	Translator  query.Translator
	Tracker     Tracker
	Now         func() time.Time
}

// NewBulkCoordinator wires a coordinator.
func NewBulkCoordinator(a BulkActor, inv Invalidator, t Tracker) *BulkCoordinator {
	return &BulkCoordinator{Actor: a, Invalidator: inv, Tracker: trackerOrNop(t), Now: time.Now}
}

// Confirm computes the confirmation dialog for kind over scope.
//
// For a selection only rows on the rendered page count, filtered by
// eligibility. For the filtered scope the count comes from the server's
// per-state histogram of the last completed fetch.
func (b *BulkCoordinator) Confirm(v *ListView, kind BulkKind, scope BulkScope) (BulkConfirmation, error) {
	if err := scope.validate(); err != nil {
		return BulkConfirmation{}, err
	}
	out := BulkConfirmation{Kind: kind, Dialog: kind.dialog()}

	if scope.AllFiltered {
		page := v.Sync.Snapshot().Page
		out.SelectedCount = page.Count
		out.ActionableCount = filteredActionable(kind, page, b.skip(v, kind))
	} else {
		out.SelectedCount = len(scope.AssignmentUUIDs)
		out.TargetUUIDs = eligibleUUIDs(kind, v.Sync.Rows(), scope.AssignmentUUIDs, b.skip(v, kind))
		out.ActionableCount = len(out.TargetUUIDs)
	}
	out.Label = messages.BulkConfirmLabel(kind == BulkRemind, out.ActionableCount)
	out.Disabled = out.ActionableCount == 0 || v.pendingFor(kind).Busy()
	return out, nil
}

// Perform runs kind over scope. Only eligible rows are sent for a
// selection; the filtered scope re-issues the view's current filters. On
// success the rendered page is reconciled without a refetch: canceled rows
// are removed, reminded rows get a timestamped action. Both budget cache
// keys are invalidated.
func (b *BulkCoordinator) Perform(ctx context.Context, v *ListView, kind BulkKind, scope BulkScope) (BulkOutcome, error) {
	tr := otel.Tracer("services/BulkCoordinator")
	ctx, span := tr.Start(ctx, "Perform",
		trace.WithAttributes(
			attribute.String("view.id", v.ID),
			attribute.String("bulk.kind", string(kind)),
			attribute.String("bulk.scope", scope.label()),
		),
	)
	defer span.End()

	conf, err := b.Confirm(v, kind, scope)
	if err != nil {
		return BulkOutcome{}, err
	}
	if conf.ActionableCount == 0 {
		return BulkOutcome{}, ErrNothingToAct
	}
	pending := v.pendingFor(kind)
	if !pending.Begin() {
		return BulkOutcome{}, ErrOperationPending
	}
	defer pending.End()

	if err := b.call(ctx, v, kind, scope, conf.TargetUUIDs); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "bulk operation failed")
		metrics.BulkOps.WithLabelValues(string(kind), scope.label(), "failed").Inc()
		loggerFrom(ctx).Error().Err(err).
			Str("kind", string(kind)).
			Str("scope", scope.label()).
			Str("configuration_id", v.ConfigID).
			Msg("bulk operation failed")
		return BulkOutcome{}, fmt.Errorf("bulk %s: %w", kind, err)
	}

	targets := conf.TargetUUIDs
	if scope.AllFiltered {
		targets = eligibleUUIDs(kind, v.Sync.Rows(), nil, b.skip(v, kind))
	}
	out := BulkOutcome{
		Kind:    kind,
		Scope:   scope.label(),
		Count:   conf.ActionableCount,
		Message: messages.BulkOutcome(kind == BulkRemind, conf.ActionableCount),
	}
	if kind == BulkCancel {
		out.Removed = v.Sync.RemoveRows(targets)
	} else {
		out.Reminded = v.Sync.AppendAction(targets, domain.ActionReminded, b.now().UTC())
	}

	b.Invalidator.InvalidateMutation(v.PolicyID, v.EnterpriseID)
	metrics.BulkOps.WithLabelValues(string(kind), scope.label(), "ok").Inc()
	trackerOrNop(b.Tracker).Track(ctx, newEvent(v.OperatorID, domain.EventBulkAction, v.ConfigID, map[string]any{
		"kind":  kind,
		"scope": scope.label(),
		"count": conf.ActionableCount,
	}))
	return out, nil
}

func (b *BulkCoordinator) call(ctx context.Context, v *ListView, kind BulkKind, scope BulkScope, uuids []string) error {
	if scope.AllFiltered {
		filters := b.Translator.FilterParams(v.Sync.LastArgs().Filters)
		if kind == BulkRemind {
			return b.Actor.RemindAll(ctx, v.ConfigID, filters)
		}
		return b.Actor.CancelAll(ctx, v.ConfigID, filters)
	}
	if kind == BulkRemind {
		return b.Actor.Remind(ctx, v.ConfigID, uuids)
	}
	return b.Actor.Cancel(ctx, v.ConfigID, uuids)
}

func (b *BulkCoordinator) now() time.Time {
	if b.Now == nil {
		return time.Now()
	}
	return b.Now()
}

// skip returns rows that must not be targeted again before the next
// refresh: rows already reminded locally, for remind.
func (b *BulkCoordinator) skip(v *ListView, kind BulkKind) map[string]struct{} {
	if kind != BulkRemind {
		return nil
	}
	return v.Sync.RemindedLocally()
}

// eligibleUUIDs returns the rows eligible for kind, restricted to selected
// when it is non-nil and excluding skip, in page order.
func eligibleUUIDs(kind BulkKind, rows []domain.ContentAssignment, selected []string, skip map[string]struct{}) []string {
	var want map[string]struct{}
	if selected != nil {
		want = toSet(selected)
	}
	out := make([]string, 0, len(rows))
	for _, a := range rows {
		if want != nil {
			if _, ok := want[a.UUID]; !ok {
				continue
			}
		}
		if _, done := skip[a.UUID]; done {
			continue
		}
		if kind.Eligible(a.LearnerState) {
			out = append(out, a.UUID)
		}
	}
	return out
}

// filteredActionable derives the actionable count of the filtered scope
// from the server-reported state histogram, less rows reminded locally
// since the histogram was fetched.
func filteredActionable(kind BulkKind, page domain.AssignmentPage, skip map[string]struct{}) int {
	if len(page.LearnerStateCounts) == 0 {
		if kind == BulkRemind {
			return len(eligibleUUIDs(kind, page.Results, nil, skip))
		}
		return page.Count
	}
	var n int
	for _, c := range page.LearnerStateCounts {
		if kind.Eligible(c.LearnerState) {
			n += c.Count
		}
	}
	return max(n-len(skip), 0)
}

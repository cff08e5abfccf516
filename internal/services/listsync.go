package services

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-budget-assign/internal/debounce"
	"github.com/tbourn/go-budget-assign/internal/domain"
	"github.com/tbourn/go-budget-assign/internal/metrics"
	"github.com/tbourn/go-budget-assign/internal/query"
)

// ListSyncConfig configures a ListSync.
type ListSyncConfig struct {
	OperatorID string
	ConfigID   string
	Lister     AssignmentLister
	Translator query.Translator
	Columns    query.ColumnMap
	Delay      time.Duration
	Scheduler  debounce.Scheduler
	Tracker    Tracker
	// Defaults is the table state before the operator touches anything. The
	// first completed fetch is compared against it for tracking.
	Defaults domain.TableQueryState
}

// ListSnapshot is what the dashboard renders for one list.
type ListSnapshot struct {
	Args      domain.TableQueryState `json:"args"`
	Page      domain.AssignmentPage  `json:"page"`
	Loading   bool                   `json:"loading"`
	Error     string                 `json:"error,omitempty"`
	FetchedAt *time.Time             `json:"fetched_at,omitempty"`
}

// ListSync keeps one assignment list in step with the table state.
//
// Fetch is debounced; Refresh replays the latest requested args at once.
// Every request carries a monotonically increasing token and a response is
// applied only if no later request has been applied already, so a slow
// response never overwrites a newer page. A failed fetch keeps the page that
// is already rendered.
type ListSync struct {
	cfg      ListSyncConfig
	debounce *debounce.Debouncer
	tracker  Tracker

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	requested domain.TableQueryState
	token     uint64
	applied   uint64
	inflight  int
	last      *domain.TableQueryState
	page      domain.AssignmentPage
	reminded  map[string]struct{} // local reminders since the last applied fetch
	err       string
	fetchedAt *time.Time
}

// NewListSync returns an idle controller. Nothing is fetched until Fetch or
// Refresh is called.
func NewListSync(cfg ListSyncConfig) *ListSync {
	ctx, cancel := context.WithCancel(context.Background())
	return &ListSync{
		cfg:       cfg,
		debounce:  debounce.New(cfg.Delay, cfg.Scheduler),
		tracker:   trackerOrNop(cfg.Tracker),
		ctx:       ctx,
		cancel:    cancel,
		requested: cfg.Defaults.Clone(),
	}
}

// Fetch schedules a fetch of args once the debounce window has passed
// without a newer call.
func (l *ListSync) Fetch(args domain.TableQueryState) {
	args = args.Clone()
	l.mu.Lock()
	l.requested = args
	l.mu.Unlock()
	l.debounce.Trigger(func() { l.run(l.ctx, args) })
}

// Refresh drops any pending debounced fetch and fetches the latest
// requested args now. It returns once the response has been handled.
func (l *ListSync) Refresh(ctx context.Context) ListSnapshot {
	l.debounce.Cancel()
	l.mu.Lock()
	args := l.requested.Clone()
	l.mu.Unlock()
	l.run(ctx, args)
	return l.Snapshot()
}

// Close cancels any pending or in-flight fetch.
func (l *ListSync) Close() {
	l.debounce.Cancel()
	l.cancel()
}

// Snapshot returns a copy of the rendered state.
func (l *ListSync) Snapshot() ListSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return ListSnapshot{
		Args:      l.lastArgsLocked(),
		Page:      clonePage(l.page),
		Loading:   l.inflight > 0 || l.debounce.Pending(),
		Error:     l.err,
		FetchedAt: l.fetchedAt,
	}
}

// LastArgs returns the args of the most recently completed fetch, or the
// defaults before the first one.
func (l *ListSync) LastArgs() domain.TableQueryState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastArgsLocked()
}

// Rows returns a copy of the visible rows.
func (l *ListSync) Rows() []domain.ContentAssignment {
	l.mu.Lock()
	defer l.mu.Unlock()
	return clonePage(l.page).Results
}

// RemoveRows drops the given rows from the visible page and adjusts the
// counts. It is applied only after the backend confirmed a cancel.
func (l *ListSync) RemoveRows(uuids []string) int {
	drop := toSet(uuids)
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := make([]domain.ContentAssignment, 0, len(l.page.Results))
	removed := make(map[domain.LearnerState]int)
	for _, a := range l.page.Results {
		if _, ok := drop[a.UUID]; ok {
			removed[a.LearnerState]++
			continue
		}
		kept = append(kept, a)
	}
	n := len(l.page.Results) - len(kept)
	if n == 0 {
		return 0
	}
	page := clonePage(l.page)
	page.Results = kept
	page.Count = max(page.Count-n, 0)
	for i := range page.LearnerStateCounts {
		c := &page.LearnerStateCounts[i]
		c.Count = max(c.Count-removed[c.LearnerState], 0)
	}
	l.page = page
	return n
}

// AppendAction records action on the given rows locally so the dashboard
// does not offer an immediate duplicate before the next refresh.
func (l *ListSync) AppendAction(uuids []string, action domain.ActionType, at time.Time) int {
	hit := toSet(uuids)
	l.mu.Lock()
	defer l.mu.Unlock()

	page := clonePage(l.page)
	var n int
	for i, a := range page.Results {
		if _, ok := hit[a.UUID]; !ok {
			continue
		}
		ts := at
		a.Actions = append(a.Actions, domain.Action{ActionType: action, CompletedAt: &ts})
		a.RecentAction = &domain.RecentAction{ActionType: action, Timestamp: at}
		page.Results[i] = a
		n++
		if action == domain.ActionReminded {
			if l.reminded == nil {
				l.reminded = make(map[string]struct{})
			}
			l.reminded[a.UUID] = struct{}{}
		}
	}
	l.page = page
	return n
}

// RemindedLocally returns the rows reminded since the last applied fetch.
func (l *ListSync) RemindedLocally() map[string]struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]struct{}, len(l.reminded))
	for k := range l.reminded {
		out[k] = struct{}{}
	}
	return out
}

func (l *ListSync) run(ctx context.Context, args domain.TableQueryState) {
	tr := otel.Tracer("services/ListSync")
	ctx, span := tr.Start(ctx, "Fetch",
		trace.WithAttributes(
			attribute.String("configuration.id", l.cfg.ConfigID),
			attribute.Int("page_index", args.PageIndex),
		),
	)
	defer span.End()

	l.mu.Lock()
	l.token++
	tok := l.token
	l.inflight++
	l.mu.Unlock()

	params := l.cfg.Translator.ToQueryParams(args, l.cfg.Columns)
	page, err := l.cfg.Lister.ListAssignments(ctx, l.cfg.ConfigID, params)

	l.mu.Lock()
	l.inflight--
	if tok <= l.applied {
		l.mu.Unlock()
		metrics.ListFetches.WithLabelValues("stale").Inc()
		span.SetAttributes(attribute.Bool("stale", true))
		return
	}
	if err != nil {
		if l.ctx.Err() != nil {
			l.mu.Unlock()
			return
		}
		l.applied = tok
		l.err = err.Error()
		l.mu.Unlock()

		span.RecordError(err)
		span.SetStatus(codes.Error, "list fetch failed")
		metrics.ListFetches.WithLabelValues("failed").Inc()
		loggerFrom(ctx).Error().Err(err).
			Str("configuration_id", l.cfg.ConfigID).
			Msg("assignment list fetch failed; keeping previous page")
		return
	}

	prev := l.lastArgsLocked()
	now := time.Now().UTC()
	l.applied = tok
	l.last = &args
	l.page = page
	l.reminded = nil
	l.err = ""
	l.fetchedAt = &now
	l.mu.Unlock()

	metrics.ListFetches.WithLabelValues("applied").Inc()
	if !domain.SameSortAndFilters(prev, args) {
		l.tracker.Track(ctx, newEvent(l.cfg.OperatorID, domain.EventListSortFilterChanged, l.cfg.ConfigID, map[string]any{
			"sort_by": args.SortBy,
			"filters": args.Filters,
		}))
	}
}

func (l *ListSync) lastArgsLocked() domain.TableQueryState {
	if l.last == nil {
		return l.cfg.Defaults.Clone()
	}
	return l.last.Clone()
}

func clonePage(p domain.AssignmentPage) domain.AssignmentPage {
	out := p
	if p.Results != nil {
		out.Results = make([]domain.ContentAssignment, len(p.Results))
		for i, a := range p.Results {
			out.Results[i] = a.Clone()
		}
	}
	if p.LearnerStateCounts != nil {
		out.LearnerStateCounts = append([]domain.LearnerStateCount(nil), p.LearnerStateCounts...)
	}
	return out
}

func toSet(ss []string) map[string]struct{} {
	out := make(map[string]struct{}, len(ss))
	for _, s := range ss {
		out[s] = struct{}{}
	}
	return out
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-budget-assign/internal/debounce"
	"github.com/tbourn/go-budget-assign/internal/domain"
	"github.com/tbourn/go-budget-assign/internal/query"
)

type listFixture struct {
	l      *ListSync
	lister *fakeLister
	trk    *fakeTracker
	sched  *debounce.FakeScheduler
}

func newListFixture(t *testing.T) listFixture {
	t.Helper()
	f := listFixture{
		lister: &fakeLister{page: pageOf(row("w1", domain.LearnerStateWaiting))},
		trk:    &fakeTracker{},
		sched:  &debounce.FakeScheduler{},
	}
	f.l = NewListSync(ListSyncConfig{
		OperatorID: "op-1",
		ConfigID:   "cfg-1",
		Lister:     f.lister,
		Columns:    query.AssignmentColumns,
		Delay:      300 * time.Millisecond,
		Scheduler:  f.sched,
		Tracker:    f.trk,
		Defaults:   domain.TableQueryState{PageSize: 25},
	})
	t.Cleanup(f.l.Close)
	return f
}

func pageOf(rows ...domain.ContentAssignment) domain.AssignmentPage {
	counts := map[domain.LearnerState]int{}
	for _, r := range rows {
		counts[r.LearnerState]++
	}
	p := domain.AssignmentPage{Count: len(rows), NumPages: 1, CurrentPage: 1, Results: rows}
	for _, s := range []domain.LearnerState{domain.LearnerStateNotifying, domain.LearnerStateWaiting, domain.LearnerStateFailed} {
		if counts[s] > 0 {
			p.LearnerStateCounts = append(p.LearnerStateCounts, domain.LearnerStateCount{LearnerState: s, Count: counts[s]})
		}
	}
	return p
}

func searchFor(s string) domain.TableQueryState {
	return domain.TableQueryState{
		PageSize: 25,
		Filters:  []domain.Filter{{ID: query.FilterAssignmentDetails, Value: s}},
	}
}

func TestListSync_RapidChangesProduceOneFetch(t *testing.T) {
	f := newListFixture(t)
	for _, s := range []string{"b", "bo", "bob", "bob@", "bob@x"} {
		f.l.Fetch(searchFor(s))
		f.sched.Advance(50 * time.Millisecond)
	}
	if f.lister.count() != 0 {
		t.Fatalf("fetched %d times before the window closed", f.lister.count())
	}
	if !f.l.Snapshot().Loading {
		t.Fatal("a pending fetch counts as loading")
	}
	f.sched.Advance(300 * time.Millisecond)

	if f.lister.count() != 1 {
		t.Fatalf("fetches = %d; want 1", f.lister.count())
	}
	if got := f.lister.last().params[query.ParamSearch]; got != "bob@x" {
		t.Fatalf("search = %q; want final value", got)
	}
	if f.l.Snapshot().Loading {
		t.Fatal("loading should clear once applied")
	}
}

func TestListSync_AmountSortIsReversedOnTheWire(t *testing.T) {
	f := newListFixture(t)
	for _, tc := range []struct {
		desc bool
		want string
	}{
		{false, "-content_quantity"},
		{true, "content_quantity"},
	} {
		f.l.Fetch(domain.TableQueryState{PageSize: 25, SortBy: []domain.SortColumn{{ID: "amount", Desc: tc.desc}}})
		f.sched.Advance(time.Second)
		if got := f.lister.last().params[query.ParamOrdering]; got != tc.want {
			t.Errorf("desc=%v ordering = %q; want %q", tc.desc, got, tc.want)
		}
	}
}

func TestListSync_StaleResponseNeverOverwritesNewer(t *testing.T) {
	f := newListFixture(t)
	older := pageOf(row("old", domain.LearnerStateWaiting))
	newer := pageOf(row("new", domain.LearnerStateWaiting))
	f.lister.hook = func(n int, _ query.Params) (domain.AssignmentPage, error) {
		if n == 1 {
			// a later request completes while the first is still in flight
			f.l.Fetch(searchFor("newer"))
			f.l.Refresh(context.Background())
			return older, nil
		}
		return newer, nil
	}

	f.l.Fetch(searchFor("older"))
	f.sched.Advance(time.Second)

	snap := f.l.Snapshot()
	if len(snap.Page.Results) != 1 || snap.Page.Results[0].UUID != "new" {
		t.Fatalf("rows = %+v; want the newer page", snap.Page.Results)
	}
	if got := domain.FilterValues(snap.Args.Filters[0].Value); got[0] != "newer" {
		t.Fatalf("last args = %v", got)
	}
}

func TestListSync_FailureKeepsPreviousPage(t *testing.T) {
	f := newListFixture(t)
	f.l.Refresh(context.Background())

	f.lister.mu.Lock()
	f.lister.err = errors.New("502 bad gateway")
	f.lister.mu.Unlock()
	snap := f.l.Refresh(context.Background())

	if snap.Loading {
		t.Fatal("loading must clear after a failure")
	}
	if snap.Error == "" {
		t.Fatal("failure should be recorded")
	}
	if len(snap.Page.Results) != 1 || snap.Page.Results[0].UUID != "w1" {
		t.Fatalf("previous page lost: %+v", snap.Page.Results)
	}
}

func TestListSync_TracksOnlyMeaningfulChanges(t *testing.T) {
	f := newListFixture(t)
	ctx := context.Background()

	f.l.Refresh(ctx)
	if n := f.trk.countOf(domain.EventListSortFilterChanged); n != 0 {
		t.Fatalf("default fetch tracked %d events", n)
	}

	sorted := domain.TableQueryState{PageSize: 25, SortBy: []domain.SortColumn{{ID: "recentAction", Desc: true}}}
	f.l.Fetch(sorted)
	f.sched.Advance(time.Second)
	if n := f.trk.countOf(domain.EventListSortFilterChanged); n != 1 {
		t.Fatalf("events = %d; want 1", n)
	}

	f.l.Refresh(ctx)
	paged := sorted.Clone()
	paged.PageIndex = 3
	paged.PageSize = 50
	f.l.Fetch(paged)
	f.sched.Advance(time.Second)
	if n := f.trk.countOf(domain.EventListSortFilterChanged); n != 1 {
		t.Fatalf("refresh or paging must not track; events = %d", n)
	}
}

func TestListSync_RefreshReplaysLatestArgs(t *testing.T) {
	f := newListFixture(t)
	f.l.Fetch(searchFor("ann"))
	f.l.Refresh(context.Background())

	if f.lister.count() != 1 {
		t.Fatalf("fetches = %d; the debounced call must be dropped", f.lister.count())
	}
	if got := f.lister.last().params[query.ParamSearch]; got != "ann" {
		t.Fatalf("search = %q", got)
	}
	f.sched.Advance(time.Second)
	if f.lister.count() != 1 {
		t.Fatal("debounced fetch fired after refresh")
	}
}

func TestListSync_LocalReconciliation(t *testing.T) {
	f := newListFixture(t)
	f.lister.page = pageOf(
		row("w1", domain.LearnerStateWaiting),
		row("w2", domain.LearnerStateWaiting),
		row("f1", domain.LearnerStateFailed),
	)
	f.l.Refresh(context.Background())

	if n := f.l.RemoveRows([]string{"w1", "f1", "unknown"}); n != 2 {
		t.Fatalf("removed = %d", n)
	}
	page := f.l.Snapshot().Page
	if page.Count != 1 || page.StateCount(domain.LearnerStateWaiting) != 1 || page.StateCount(domain.LearnerStateFailed) != 0 {
		t.Fatalf("page = %+v", page)
	}

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	if n := f.l.AppendAction([]string{"w2"}, domain.ActionReminded, at); n != 1 {
		t.Fatalf("appended = %d", n)
	}
	got := f.l.Rows()[0]
	if got.RecentAction == nil || got.RecentAction.ActionType != domain.ActionReminded || !got.RecentAction.Timestamp.Equal(at) {
		t.Fatalf("recent action = %+v", got.RecentAction)
	}
	if len(got.Actions) != 1 || got.Actions[0].ActionType != domain.ActionReminded {
		t.Fatalf("actions = %+v", got.Actions)
	}
}

package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v4"

	"github.com/tbourn/go-budget-assign/internal/debounce"
	"github.com/tbourn/go-budget-assign/internal/domain"
	"github.com/tbourn/go-budget-assign/internal/query"
)

// ListView is one operator's open assignment list for an assignment
// configuration. Bulk operations act on the view's rendered page and its
// current filters.
type ListView struct {
	ID           string    `json:"id"`
	OperatorID   string    `json:"operator_id"`
	ConfigID     string    `json:"configuration_id"`
	PolicyID     string    `json:"policy_id"`
	EnterpriseID string    `json:"enterprise_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`

	Sync *ListSync `json:"-"`

	remind  Pending
	cancel  Pending
	mu      sync.Mutex
	expires time.Time
}

// pendingFor returns the guard of one bulk kind.
func (v *ListView) pendingFor(kind BulkKind) *Pending {
	if kind == BulkRemind {
		return &v.remind
	}
	return &v.cancel
}

// ViewSnapshot is a view together with its list state.
type ViewSnapshot struct {
	*ListView
	List          ListSnapshot `json:"list"`
	RemindPending bool         `json:"remind_pending"`
	CancelPending bool         `json:"cancel_pending"`
}

// Snapshot returns the view's current state.
func (v *ListView) Snapshot() ViewSnapshot {
	return ViewSnapshot{
		ListView:      v,
		List:          v.Sync.Snapshot(),
		RemindPending: v.remind.Busy(),
		CancelPending: v.cancel.Busy(),
	}
}

// Views is the registry of open list views.
type Views struct {
	Lister     AssignmentLister
	Translator query.Translator
	Columns    query.ColumnMap
	Delay      time.Duration
	Scheduler  debounce.Scheduler
	Tracker    Tracker
	Defaults   domain.TableQueryState
	TTL        time.Duration
	Now        func() time.Time

	m *xsync.Map[string, *ListView]
}

// NewViews returns an empty registry over lister.
func NewViews(lister AssignmentLister, t Tracker) *Views {
	return &Views{
		Lister:   lister,
		Columns:  query.AssignmentColumns,
		Delay:    300 * time.Millisecond,
		Tracker:  trackerOrNop(t),
		Defaults: domain.TableQueryState{PageSize: 25},
		TTL:      30 * time.Minute,
		Now:      time.Now,
		m:        xsync.NewMap[string, *ListView](),
	}
}

// Create opens a view. The list is empty until the first Fetch or Refresh.
func (r *Views) Create(operatorID, configID, policyID, enterpriseID string) *ListView {
	now := r.now()
	v := &ListView{
		ID:           uuid.NewString(),
		OperatorID:   operatorID,
		ConfigID:     configID,
		PolicyID:     policyID,
		EnterpriseID: enterpriseID,
		CreatedAt:    now.UTC(),
		expires:      now.Add(r.TTL),
	}
	v.Sync = NewListSync(ListSyncConfig{
		OperatorID: operatorID,
		ConfigID:   configID,
		Lister:     r.Lister,
		Translator: r.Translator,
		Columns:    r.Columns,
		Delay:      r.Delay,
		Scheduler:  r.Scheduler,
		Tracker:    r.Tracker,
		Defaults:   r.Defaults,
	})
	r.m.Store(v.ID, v)
	return v
}

// Get returns the operator's view and extends its lifetime.
func (r *Views) Get(operatorID, viewID string) (*ListView, error) {
	v, ok := r.m.Load(viewID)
	if !ok || v.OperatorID != operatorID {
		return nil, ErrViewNotFound
	}
	now := r.now()
	v.mu.Lock()
	defer v.mu.Unlock()
	if now.After(v.expires) {
		return nil, ErrViewNotFound
	}
	v.expires = now.Add(r.TTL)
	return v, nil
}

// Delete closes and removes the operator's view.
func (r *Views) Delete(operatorID, viewID string) error {
	v, err := r.Get(operatorID, viewID)
	if err != nil {
		return err
	}
	r.m.Delete(viewID)
	v.Sync.Close()
	return nil
}

// Sweep closes views idle past their TTL.
func (r *Views) Sweep(now time.Time) int {
	var n int
	r.m.Range(func(id string, v *ListView) bool {
		v.mu.Lock()
		expired := now.After(v.expires)
		v.mu.Unlock()
		if expired && !v.remind.Busy() && !v.cancel.Busy() {
			r.m.Delete(id)
			v.Sync.Close()
			n++
		}
		return true
	})
	return n
}

func (r *Views) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

// Package budgetcache caches budget aggregates behind the two logical
// invalidation keys the engine uses: budget(policyId) and
// budgets(enterpriseId). Any successful allocate, remind or cancel
// invalidates both so the available balance is never served stale after a
// mutation.
package budgetcache

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-budget-assign/internal/domain"
	"github.com/tbourn/go-budget-assign/internal/metrics"
)

// Source loads aggregates from the backend.
type Source interface {
	GetBudget(ctx context.Context, policyID string) (domain.BudgetAggregates, error)
	ListBudgets(ctx context.Context, enterpriseID string) ([]domain.BudgetAggregates, error)
}

// KeyBudget is the invalidation key of one policy's aggregates.
func KeyBudget(policyID string) string { return "budget:" + policyID }

// KeyBudgets is the invalidation key of an enterprise's budget list.
func KeyBudgets(enterpriseID string) string { return "budgets:" + enterpriseID }

type entry struct {
	one     domain.BudgetAggregates
	list    []domain.BudgetAggregates
	expires time.Time
}

// Cache is a TTL cache over Source. It is safe for concurrent use.
type Cache struct {
	src Source
	ttl time.Duration
	now func() time.Time

	entries *xsync.Map[string, entry]
	// epoch advances on every invalidation; a load that started before an
	// invalidation must not repopulate the entry it raced with.
	epoch atomic.Uint64
}

// New returns a cache. ttl <= 0 disables caching (every lookup loads).
func New(src Source, ttl time.Duration) *Cache {
	return &Cache{
		src:     src,
		ttl:     ttl,
		now:     time.Now,
		entries: xsync.NewMap[string, entry](),
	}
}

// Budget returns one policy's aggregates.
func (c *Cache) Budget(ctx context.Context, policyID string) (domain.BudgetAggregates, error) {
	key := KeyBudget(policyID)
	if e, ok := c.lookup(key); ok {
		return e.one, nil
	}
	epoch := c.epoch.Load()
	b, err := c.src.GetBudget(ctx, policyID)
	if err != nil {
		return domain.BudgetAggregates{}, err
	}
	c.store(key, entry{one: b}, epoch)
	return b, nil
}

// Budgets returns the budget list of an enterprise.
func (c *Cache) Budgets(ctx context.Context, enterpriseID string) ([]domain.BudgetAggregates, error) {
	key := KeyBudgets(enterpriseID)
	if e, ok := c.lookup(key); ok {
		return append([]domain.BudgetAggregates(nil), e.list...), nil
	}
	epoch := c.epoch.Load()
	bs, err := c.src.ListBudgets(ctx, enterpriseID)
	if err != nil {
		return nil, err
	}
	c.store(key, entry{list: bs}, epoch)
	return append([]domain.BudgetAggregates(nil), bs...), nil
}

// Invalidate drops the given keys.
func (c *Cache) Invalidate(keys ...string) {
	c.epoch.Add(1)
	for _, k := range keys {
		c.entries.Delete(k)
		kind, _, _ := strings.Cut(k, ":")
		metrics.CacheInvalidations.WithLabelValues(kind).Inc()
		log.Debug().Str("key", k).Msg("budget cache invalidated")
	}
}

// InvalidateMutation drops both keys affected by a mutation against policyID.
// An unknown enterprise id only drops the single-budget key.
func (c *Cache) InvalidateMutation(policyID, enterpriseID string) {
	keys := []string{KeyBudget(policyID)}
	if enterpriseID != "" {
		keys = append(keys, KeyBudgets(enterpriseID))
	}
	c.Invalidate(keys...)
}

// Cached reports whether key currently holds a live entry.
func (c *Cache) Cached(key string) bool {
	e, ok := c.entries.Load(key)
	return ok && c.now().Before(e.expires)
}

func (c *Cache) lookup(key string) (entry, bool) {
	e, ok := c.entries.Load(key)
	if ok && c.now().Before(e.expires) {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return e, true
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()
	return entry{}, false
}

func (c *Cache) store(key string, e entry, epoch uint64) {
	if c.ttl <= 0 || c.epoch.Load() != epoch {
		return
	}
	e.expires = c.now().Add(c.ttl)
	c.entries.Store(key, e)
}

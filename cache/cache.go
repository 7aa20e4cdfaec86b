// Package cache implements the spec's Component C: a process-wide (or,
// here, per-run since the spec asks for a context object rather than true
// global state) memoization map for indicator series, keyed by
// (kind, params, symbol, timeframe, date range). It is the reason parameter
// search is fast: an indicator parameterized over period in {5..50} computed
// across N trials reduces to N cache fills instead of N*bars recomputations.
package cache

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/quantkit/backtestcore/indicator"
	"github.com/quantkit/backtestcore/metrics"
	"github.com/quantkit/backtestcore/types"
)

// Key uniquely identifies one memoized indicator series.
type Key struct {
	Kind      indicator.Kind
	Period    int
	Period2   int
	Period3   int
	Mult      float64
	AFStep    float64
	AFMax     float64
	Gamma     float64
	SymbolID  string
	Timeframe string
	Start     time.Time
	End       time.Time
}

func keyFromConfig(cfg indicator.Config, symbolID, timeframe string, start, end time.Time) Key {
	return Key{
		Kind: cfg.Kind, Period: cfg.Period, Period2: cfg.Period2, Period3: cfg.Period3,
		Mult: cfg.Multiplier, AFStep: cfg.AFStep, AFMax: cfg.AFMax, Gamma: cfg.Gamma,
		SymbolID: symbolID, Timeframe: timeframe, Start: start, End: end,
	}
}

func (k Key) groupKey() string {
	return fmt.Sprintf("%d|%d|%d|%d|%g|%g|%g|%g|%s|%s|%d|%d",
		k.Kind, k.Period, k.Period2, k.Period3, k.Mult, k.AFStep, k.AFMax, k.Gamma,
		k.SymbolID, k.Timeframe, k.Start.UnixNano(), k.End.UnixNano())
}

// entry holds an immutable-once-written result plus its hit/miss bookkeeping.
type entry struct {
	result indicator.Result
}

// Cache is a concurrent, single-flight indicator memoization map. Multiple
// readers are always safe; the first writer for a key computes, subsequent
// concurrent readers for the same key wait on that computation rather than
// recomputing — this is what makes indicator reuse across optimizer trials
// cheap instead of merely correct.
type Cache struct {
	mu       sync.RWMutex
	entries  map[string]entry
	order    []string // least- to most-recently used, for LRU eviction when maxEntries > 0
	group    singleflight.Group
	maxEntries int

	hits   uint64
	misses uint64
}

// New creates a cache. maxEntries <= 0 means unbounded (kept for the
// duration of a run, per the spec's default eviction policy).
func New(maxEntries int) *Cache {
	return &Cache{entries: make(map[string]entry), maxEntries: maxEntries}
}

// Get returns the indicator series for cfg over bars in [start,end),
// computing and memoizing it on first access. bars must already be the
// slice corresponding to [start,end) for (symbolID, timeframe).
func (c *Cache) Get(bars []types.Bar, cfg indicator.Config, symbolID, timeframe string, start, end time.Time) (indicator.Result, error) {
	key := keyFromConfig(cfg, symbolID, timeframe, start, end)
	gk := key.groupKey()

	c.mu.RLock()
	if e, ok := c.entries[gk]; ok {
		c.mu.RUnlock()
		c.touch(gk)
		c.recordHit()
		return e.result, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do(gk, func() (interface{}, error) {
		// Re-check: another goroutine may have filled it while we queued
		// behind the singleflight call for a *different* key that hashed
		// the same group bucket is impossible (keys are exact strings),
		// but a fill can race the RLock check above, so check once more.
		c.mu.RLock()
		if e, ok := c.entries[gk]; ok {
			c.mu.RUnlock()
			return e.result, nil
		}
		c.mu.RUnlock()

		res, err := indicator.Compute(bars, cfg)
		if err != nil {
			return indicator.Result{}, err
		}
		c.put(gk, res)
		return res, nil
	})
	if err != nil {
		return indicator.Result{}, err
	}
	c.recordMiss()
	return v.(indicator.Result), nil
}

func (c *Cache) put(gk string, res indicator.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[gk]; exists {
		return
	}
	c.entries[gk] = entry{result: res}
	c.order = append(c.order, gk)
	if c.maxEntries > 0 && len(c.order) > c.maxEntries {
		evict := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, evict)
	}
}

// touch moves gk to the most-recently-used end of the eviction order.
func (c *Cache) touch(gk string) {
	if c.maxEntries <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, k := range c.order {
		if k == gk {
			c.order = append(append(c.order[:i:i], c.order[i+1:]...), gk)
			return
		}
	}
}

func (c *Cache) recordHit() {
	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
	metrics.CacheHits.Inc()
}

func (c *Cache) recordMiss() {
	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
	metrics.CacheMisses.Inc()
}

// Stats returns (hits, misses) for observability/testing — enabling or
// disabling the cache must change these numbers but never the resulting
// series (cache transparency, per the spec's testable properties).
func (c *Cache) Stats() (hits, misses uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

// Len reports the number of memoized entries, for tests asserting LRU
// eviction bounds.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

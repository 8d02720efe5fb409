package engine

import (
	"sync"
	"sync/atomic"
	"time"

	pdp_model "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/pdp/model"
)

// DecisionCache memoizes decisions per (actor, action, resource) for a
// short TTL. Stored and returned decisions are deep copies.
type DecisionCache struct {
	mu         sync.RWMutex
	entries    map[pdp_model.CacheKey]pdp_model.CacheEntry
	byActor    map[string]map[pdp_model.CacheKey]struct{}
	ttl        time.Duration
	maxEntries int
	now        func() time.Time

	// generations, bumped by InvalidateActor and Purge
	seq      uint64
	actorGen map[string]uint64
	purgeGen uint64

	hits          atomic.Uint64
	misses        atomic.Uint64
	invalidations atomic.Uint64
	evictions     atomic.Uint64
}

// NewDecisionCache returns a cache with the given TTL (5m when unset). A
// positive maxEntries bounds its size.
func NewDecisionCache(ttl time.Duration, maxEntries int, now func() time.Time) *DecisionCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if now == nil {
		now = time.Now
	}
	return &DecisionCache{
		entries:    make(map[pdp_model.CacheKey]pdp_model.CacheEntry),
		byActor:    make(map[string]map[pdp_model.CacheKey]struct{}),
		actorGen:   make(map[string]uint64),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        now,
	}
}

func (c *DecisionCache) TTL() time.Duration {
	return c.ttl
}

// Get returns a copy of the cached decision if it has not expired.
func (c *DecisionCache) Get(key pdp_model.CacheKey) (*pdp_model.PermissionDecision, bool) {
	now := c.now()

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && now.Before(entry.ExpiresAt) {
		c.hits.Add(1)
		return entry.Decision.Clone(), true
	}
	if ok {
		c.mu.Lock()
		if current, still := c.entries[key]; still && !now.Before(current.ExpiresAt) {
			c.removeLocked(key)
		}
		c.mu.Unlock()
	}
	c.misses.Add(1)
	return nil, false
}

func (c *DecisionCache) Set(key pdp_model.CacheKey, d *pdp_model.PermissionDecision) {
	if d == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(key, d)
}

// Generation returns a token that changes whenever the entries of actorID
// are invalidated or the cache is purged.
func (c *DecisionCache) Generation(actorID string) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generationLocked(actorID)
}

// SetIfCurrent stores d only if actorID's generation still equals gen, so a
// decision computed before an invalidation is never cached after it.
func (c *DecisionCache) SetIfCurrent(key pdp_model.CacheKey, d *pdp_model.PermissionDecision, gen uint64) bool {
	if d == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generationLocked(key.ActorID) != gen {
		return false
	}
	c.setLocked(key, d)
	return true
}

func (c *DecisionCache) generationLocked(actorID string) uint64 {
	return max(c.actorGen[actorID], c.purgeGen)
}

func (c *DecisionCache) setLocked(key pdp_model.CacheKey, d *pdp_model.PermissionDecision) {
	now := c.now()
	if _, exists := c.entries[key]; !exists && c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.evictLocked(now)
	}
	c.entries[key] = pdp_model.CacheEntry{
		Decision:  d.Clone(),
		StoredAt:  now,
		ExpiresAt: now.Add(c.ttl),
	}
	keys, ok := c.byActor[key.ActorID]
	if !ok {
		keys = make(map[pdp_model.CacheKey]struct{})
		c.byActor[key.ActorID] = keys
	}
	keys[key] = struct{}{}
}

// InvalidateActor drops every entry of actorID and returns how many were removed.
func (c *DecisionCache) InvalidateActor(actorID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := c.byActor[actorID]
	for key := range keys {
		delete(c.entries, key)
	}
	delete(c.byActor, actorID)
	c.seq++
	c.actorGen[actorID] = c.seq
	c.invalidations.Add(1)
	return len(keys)
}

func (c *DecisionCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[pdp_model.CacheKey]pdp_model.CacheEntry)
	c.byActor = make(map[string]map[pdp_model.CacheKey]struct{})
	c.seq++
	c.purgeGen = c.seq
	c.actorGen = make(map[string]uint64)
	c.invalidations.Add(1)
}

func (c *DecisionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *DecisionCache) Stats() pdp_model.CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return pdp_model.CacheStats{
		Entries:       len(c.entries),
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Invalidations: c.invalidations.Load(),
		Evictions:     c.evictions.Load(),
	}
}

// evictLocked drops expired entries, and the oldest one if none expired.
func (c *DecisionCache) evictLocked(now time.Time) {
	var (
		oldestKey pdp_model.CacheKey
		oldestAt  time.Time
		found     bool
		expired   int
	)
	for key, entry := range c.entries {
		if !now.Before(entry.ExpiresAt) {
			c.removeLocked(key)
			expired++
			continue
		}
		if !found || entry.StoredAt.Before(oldestAt) {
			oldestKey, oldestAt, found = key, entry.StoredAt, true
		}
	}
	c.evictions.Add(uint64(expired))
	if expired == 0 && found {
		c.removeLocked(oldestKey)
		c.evictions.Add(1)
	}
}

func (c *DecisionCache) removeLocked(key pdp_model.CacheKey) {
	delete(c.entries, key)
	if keys, ok := c.byActor[key.ActorID]; ok {
		delete(keys, key)
		if len(keys) == 0 {
			delete(c.byActor, key.ActorID)
		}
	}
}

package cache

import (
	"sync"
	"time"

	"taskdeck/internal/core/domain"
)

// Key identifies one cached query result. Invalidation is scoped by the
// Owner component, so there is no pattern matching over serialized key
// strings.
type Key struct {
	Owner string
	Op    string
	Arg   string
}

type entry struct {
	tasks     []domain.Task
	expiresAt time.Time
}

// QueryCache is a TTL cache for per-owner query results. A nil *QueryCache
// is valid and disables caching.
type QueryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[Key]entry
}

func NewQueryCache(ttl time.Duration) *QueryCache {
	if ttl <= 0 {
		return nil
	}
	return &QueryCache{
		ttl:     ttl,
		entries: make(map[Key]entry),
	}
}

func (c *QueryCache) Get(k Key) ([]domain.Task, bool) {
	if c == nil {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.entries[k]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if time.Now().After(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; another goroutine may have
		// refreshed the entry.
		if cur, ok := c.entries[k]; ok && time.Now().After(cur.expiresAt) {
			delete(c.entries, k)
		}
		c.mu.Unlock()
		return nil, false
	}

	return cloneTasks(e.tasks), true
}

func (c *QueryCache) Put(k Key, tasks []domain.Task) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[k] = entry{
		tasks:     cloneTasks(tasks),
		expiresAt: time.Now().Add(c.ttl),
	}
}

// InvalidateOwner drops every cached result for the given owner. Mutations
// call this so stale listings never outlive a write.
func (c *QueryCache) InvalidateOwner(owner string) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.Owner == owner {
			delete(c.entries, k)
		}
	}
}

func cloneTasks(tasks []domain.Task) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Clone())
	}
	return out
}

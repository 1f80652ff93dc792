package repository

import (
	"sync"
	"time"

	"github.com/duynhne/stats-service/internal/core/domain"
)

// SnapshotCache holds per-user stats snapshots with a TTL. It is an
// optimization only: a miss, expiry or invalidation always falls back
// to recomputation from the session store, never to stale data.
type SnapshotCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]snapshotEntry
}

type snapshotEntry struct {
	snapshot domain.UserStatsSnapshot
	storedAt time.Time
}

// NewSnapshotCache creates a cache with the given TTL. A zero TTL
// disables caching entirely (Get always misses).
func NewSnapshotCache(ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{
		ttl:     ttl,
		entries: make(map[string]snapshotEntry),
	}
}

// Get returns the cached snapshot for the user if it is still fresh.
func (c *SnapshotCache) Get(userID string) (*domain.UserStatsSnapshot, bool) {
	if c.ttl <= 0 {
		return nil, false
	}

	c.mu.RLock()
	entry, ok := c.entries[userID]
	c.mu.RUnlock()

	if !ok || time.Since(entry.storedAt) > c.ttl {
		return nil, false
	}
	snap := entry.snapshot
	return &snap, true
}

// Peek returns the cached snapshot even when stale. Used to compare a
// pre-ingest snapshot for milestone classification and consistency
// checks; never used to answer reads.
func (c *SnapshotCache) Peek(userID string) (*domain.UserStatsSnapshot, bool) {
	c.mu.RLock()
	entry, ok := c.entries[userID]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	snap := entry.snapshot
	return &snap, true
}

// Put stores a freshly computed snapshot.
func (c *SnapshotCache) Put(userID string, snap domain.UserStatsSnapshot) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	c.entries[userID] = snapshotEntry{snapshot: snap, storedAt: time.Now()}
	c.mu.Unlock()
}

// Invalidate drops the user's cached snapshot.
func (c *SnapshotCache) Invalidate(userID string) {
	c.mu.Lock()
	delete(c.entries, userID)
	c.mu.Unlock()
}

package domain

// SnapshotCache caches derived stats snapshots per user. The cache is
// never authoritative: implementations must let every miss fall back
// to recomputation from the session record log.
type SnapshotCache interface {
	// Get returns the cached snapshot if present and still fresh.
	Get(userID string) (*UserStatsSnapshot, bool)

	// Peek returns the cached snapshot even when stale. Only for
	// before/after comparisons, never for answering reads.
	Peek(userID string) (*UserStatsSnapshot, bool)

	// Put stores a freshly computed snapshot.
	Put(userID string, snap UserStatsSnapshot)

	// Invalidate drops the user's cached snapshot.
	Invalidate(userID string)
}

package domain

import (
	"context"
	"time"
)

// SessionRepository is the data-access contract for the append-only
// session record log. Implementations live in internal/core/repository.
//
// Required semantics:
//   - Append is atomic per record and read-after-write consistent:
//     a ListByUser on the same repository after a successful Append
//     observes the appended record.
//   - No update or delete operations exist; records are immutable.
type SessionRepository interface {
	// Append persists a completed session and returns the stored
	// record. The boolean is false when rec carries an idempotency
	// key that already exists for the user; in that case the
	// previously stored record is returned and nothing is inserted.
	Append(ctx context.Context, rec SessionRecord) (*SessionRecord, bool, error)

	// ListByUser returns the user's records ascending by occurred_at.
	// A non-nil since bounds the scan to records at or after it.
	ListByUser(ctx context.Context, userID string, since *time.Time) ([]SessionRecord, error)

	// ListRecent returns up to limit records, most recent first.
	ListRecent(ctx context.Context, userID string, limit int) ([]SessionRecord, error)
}

// GoalRepository reads and writes per-user goal configuration.
type GoalRepository interface {
	// Get returns the user's configured goals.
	// Returns (nil, nil) when the user has never configured any.
	Get(ctx context.Context, userID string) (*GoalConfig, error)

	// Upsert stores the user's goal configuration.
	Upsert(ctx context.Context, userID string, cfg GoalConfig) error
}

package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/duynhne/stats-service/internal/core/domain"
)

// MemoryStore is an in-memory implementation of both
// domain.SessionRepository and domain.GoalRepository.
// It is thread-safe and suitable for development/testing.
// For production, use the pgx repositories.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]domain.SessionRecord // userID -> records, ascending by OccurredAt
	byKey    map[string]domain.SessionRecord   // userID + "\x00" + idempotencyKey
	goals    map[string]domain.GoalConfig
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string][]domain.SessionRecord),
		byKey:    make(map[string]domain.SessionRecord),
		goals:    make(map[string]domain.GoalConfig),
	}
}

func idemKey(userID, key string) string {
	return userID + "\x00" + key
}

// Append stores a session record. Mirrors the Postgres unique-index
// behavior: a duplicate (user, idempotency key) returns the original
// record without inserting.
func (m *MemoryStore) Append(_ context.Context, rec domain.SessionRecord) (*domain.SessionRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec.IdempotencyKey != "" {
		if existing, ok := m.byKey[idemKey(rec.UserID, rec.IdempotencyKey)]; ok {
			return &existing, false, nil
		}
	}

	records := append(m.sessions[rec.UserID], rec)
	sort.Slice(records, func(i, j int) bool {
		return records[i].OccurredAt.Before(records[j].OccurredAt)
	})
	m.sessions[rec.UserID] = records

	if rec.IdempotencyKey != "" {
		m.byKey[idemKey(rec.UserID, rec.IdempotencyKey)] = rec
	}
	return &rec, true, nil
}

// ListByUser returns the user's records ascending by occurred_at.
func (m *MemoryStore) ListByUser(_ context.Context, userID string, since *time.Time) ([]domain.SessionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.SessionRecord
	for _, rec := range m.sessions[userID] {
		if since != nil && rec.OccurredAt.Before(*since) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// ListRecent returns up to limit records, most recent first.
func (m *MemoryStore) ListRecent(_ context.Context, userID string, limit int) ([]domain.SessionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := m.sessions[userID]
	var out []domain.SessionRecord
	for i := len(records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, records[i])
	}
	return out, nil
}

// Get returns the user's configured goals, or (nil, nil) when unset.
func (m *MemoryStore) Get(_ context.Context, userID string) (*domain.GoalConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cfg, ok := m.goals[userID]
	if !ok {
		return nil, nil
	}
	return &cfg, nil
}

// Upsert stores the user's goal configuration.
func (m *MemoryStore) Upsert(_ context.Context, userID string, cfg domain.GoalConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.goals[userID] = cfg
	return nil
}

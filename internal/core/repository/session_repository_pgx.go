// Package repository contains the data-access implementations behind
// the domain repository interfaces: pgx-backed for production and an
// in-memory variant for development and tests.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duynhne/stats-service/internal/core/domain"
)

// PgxSessionRepository implements domain.SessionRepository using pgxpool.
type PgxSessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new PgxSessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *PgxSessionRepository {
	return &PgxSessionRepository{pool: pool}
}

// Append inserts a session record. Records carrying an idempotency key
// rely on the partial unique index on (user_id, idempotency_key): a
// retried insert hits ON CONFLICT DO NOTHING and the original record is
// re-read and returned with inserted=false. No per-user lock is taken;
// the index is what makes concurrent retries safe.
func (r *PgxSessionRepository) Append(ctx context.Context, rec domain.SessionRecord) (*domain.SessionRecord, bool, error) {
	var key *string
	if rec.IdempotencyKey != "" {
		key = &rec.IdempotencyKey
	}

	query := `
		INSERT INTO practice_sessions (id, user_id, session_type, occurred_at, duration_ms, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, idempotency_key) WHERE idempotency_key IS NOT NULL DO NOTHING
		RETURNING id
	`

	var insertedID string
	err := r.pool.QueryRow(ctx, query,
		rec.ID, rec.UserID, rec.SessionType, rec.OccurredAt, rec.DurationMs, key,
	).Scan(&insertedID)
	if err == nil {
		return &rec, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("insert session: %w", err)
	}

	// Conflict path: the (user, key) pair already exists.
	existing, err := r.getByIdempotencyKey(ctx, rec.UserID, rec.IdempotencyKey)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		// Row vanished between insert and select; records are never
		// deleted, so this indicates an aggregator-visible bug.
		return nil, false, fmt.Errorf("idempotency conflict for user %s but no stored record", rec.UserID)
	}
	return existing, false, nil
}

func (r *PgxSessionRepository) getByIdempotencyKey(ctx context.Context, userID, key string) (*domain.SessionRecord, error) {
	query := `
		SELECT id, user_id, session_type, occurred_at, duration_ms, COALESCE(idempotency_key, '')
		FROM practice_sessions
		WHERE user_id = $1 AND idempotency_key = $2
	`

	var rec domain.SessionRecord
	err := r.pool.QueryRow(ctx, query, userID, key).Scan(
		&rec.ID, &rec.UserID, &rec.SessionType, &rec.OccurredAt, &rec.DurationMs, &rec.IdempotencyKey,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select session by idempotency key: %w", err)
	}
	return &rec, nil
}

// ListByUser returns the user's records ascending by occurred_at,
// optionally bounded to records at or after since.
func (r *PgxSessionRepository) ListByUser(ctx context.Context, userID string, since *time.Time) ([]domain.SessionRecord, error) {
	query := `
		SELECT id, user_id, session_type, occurred_at, duration_ms, COALESCE(idempotency_key, '')
		FROM practice_sessions
		WHERE user_id = $1 AND ($2::timestamptz IS NULL OR occurred_at >= $2)
		ORDER BY occurred_at ASC
	`

	rows, err := r.pool.Query(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	return scanSessionRows(rows)
}

// ListRecent returns up to limit records, most recent first.
func (r *PgxSessionRepository) ListRecent(ctx context.Context, userID string, limit int) ([]domain.SessionRecord, error) {
	query := `
		SELECT id, user_id, session_type, occurred_at, duration_ms, COALESCE(idempotency_key, '')
		FROM practice_sessions
		WHERE user_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent sessions: %w", err)
	}
	defer rows.Close()

	return scanSessionRows(rows)
}

func scanSessionRows(rows pgx.Rows) ([]domain.SessionRecord, error) {
	var records []domain.SessionRecord
	for rows.Next() {
		var rec domain.SessionRecord
		if err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.SessionType, &rec.OccurredAt, &rec.DurationMs, &rec.IdempotencyKey,
		); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session rows: %w", err)
	}
	return records, nil
}

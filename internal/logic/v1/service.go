package v1

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/stats-service/internal/core/domain"
	"github.com/duynhne/stats-service/middleware"
)

// Ingestion bounds. Events outside these are rejected before any write.
const (
	maxDurationMs        = 6 * 60 * 60 * 1000 // one session longer than 6h is not plausible
	maxIdempotencyKeyLen = 128
	maxRecentLimit       = 50
	defaultRecentLimit   = 5
)

// StatsService implements the ingestion and read paths of the
// analytics engine. It depends on repository interfaces (injected via
// constructor) and MUST NOT access the database or SQL directly.
type StatsService struct {
	sessions domain.SessionRepository
	goals    domain.GoalRepository
	cache    domain.SnapshotCache

	// now is swappable for deterministic tests.
	now func() time.Time
}

// NewStatsService creates a StatsService with the given dependencies.
func NewStatsService(sessions domain.SessionRepository, goals domain.GoalRepository, cache domain.SnapshotCache) *StatsService {
	return &StatsService{
		sessions: sessions,
		goals:    goals,
		cache:    cache,
		now:      time.Now,
	}
}

// CompleteSession ingests a session-completion event: validate, append
// exactly once, recompute the snapshot from the full history, evaluate
// goals and classify milestones against the pre-ingest snapshot.
//
// A request that carries an idempotency key already seen for this user
// short-circuits to recomputation over the existing record: the retry
// gets the same fresh snapshot but no milestone events, since the
// crossing was already reported on the first attempt.
func (s *StatsService) CompleteSession(ctx context.Context, userID string, req domain.CompleteSessionRequest) (*domain.CompleteSessionResponse, error) {
	ctx, span := middleware.StartSpan(ctx, "stats.complete_session", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("session.type", req.SessionType),
	))
	defer span.End()

	rec, err := s.validateCompletion(userID, req)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("request.valid", false))
		return nil, err
	}

	stored, inserted, err := s.sessions.Append(ctx, *rec)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("append session for user %s: %w", userID, err)
	}
	span.SetAttributes(attribute.Bool("session.inserted", inserted))

	// The history read happens after our own durable write, so the
	// fresh snapshot always reflects at least the record just stored.
	history, err := s.sessions.ListByUser(ctx, userID, nil)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list sessions for user %s: %w", userID, err)
	}

	snap := ComputeSnapshot(history, s.now())
	s.checkConsistency(ctx, userID, snap)

	var milestones []domain.MilestoneEvent
	if inserted {
		middleware.SessionsIngested.WithLabelValues(string(stored.SessionType)).Inc()
		prev := s.previousSnapshot(userID, history, stored.ID)
		milestones = ClassifyMilestones(prev, snap)
		for _, m := range milestones {
			middleware.MilestonesEmitted.WithLabelValues(string(m.Type)).Inc()
		}
	} else {
		middleware.IdempotentReplays.Inc()
		logger := middleware.LoggerFromContext(ctx)
		logger.Info().
			Str("user_id", userID).
			Str("idempotency_key", req.IdempotencyKey).
			Msg("Duplicate session event deduplicated")
	}

	progress, err := s.evaluateForUser(ctx, userID, snap)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.cache.Put(userID, snap)

	return &domain.CompleteSessionResponse{
		Snapshot:     snap,
		GoalProgress: progress,
		Milestones:   milestones,
		Duplicate:    !inserted,
	}, nil
}

// GetStats returns the user's current snapshot and goal progress,
// served from the cache when fresh and recomputed from the store
// otherwise. A cache miss never surfaces to the caller as an error or
// as zeroed stats.
func (s *StatsService) GetStats(ctx context.Context, userID string) (*domain.StatsResponse, error) {
	ctx, span := middleware.StartSpan(ctx, "stats.get", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	if userID == "" {
		return nil, fmt.Errorf("missing user id: %w", ErrInvalidSession)
	}

	snap, ok := s.cache.Get(userID)
	if ok {
		middleware.SnapshotCacheHits.Inc()
		span.SetAttributes(attribute.Bool("cache.hit", true))
	} else {
		middleware.SnapshotCacheMisses.Inc()
		span.SetAttributes(attribute.Bool("cache.hit", false))

		history, err := s.sessions.ListByUser(ctx, userID, nil)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("list sessions for user %s: %w", userID, err)
		}
		fresh := ComputeSnapshot(history, s.now())
		s.checkConsistency(ctx, userID, fresh)
		s.cache.Put(userID, fresh)
		snap = &fresh
	}

	progress, err := s.evaluateForUser(ctx, userID, *snap)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return &domain.StatsResponse{Snapshot: *snap, GoalProgress: progress}, nil
}

// RecentSessions returns the user's most recent records for the
// dashboard strip. The limit is clamped to a sane range.
func (s *StatsService) RecentSessions(ctx context.Context, userID string, limit int) ([]domain.SessionRecord, error) {
	ctx, span := middleware.StartSpan(ctx, "stats.recent_sessions", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	records, err := s.sessions.ListRecent(ctx, userID, limit)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list recent sessions for user %s: %w", userID, err)
	}
	return records, nil
}

// UpdateGoals stores new goal targets after validating them. Values
// outside the allowed bounds are rejected, not clamped.
func (s *StatsService) UpdateGoals(ctx context.Context, userID string, req domain.UpdateGoalsRequest) (*domain.GoalConfig, error) {
	ctx, span := middleware.StartSpan(ctx, "stats.update_goals", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int("goals.daily", req.DailyGoal),
		attribute.Int("goals.weekly", req.WeeklyGoal),
	))
	defer span.End()

	if req.DailyGoal < 1 || req.DailyGoal > domain.MaxDailyGoal {
		return nil, fmt.Errorf("daily goal %d outside [1,%d]: %w", req.DailyGoal, domain.MaxDailyGoal, ErrInvalidGoalConfig)
	}
	if req.WeeklyGoal < 1 || req.WeeklyGoal > domain.MaxWeeklyGoal {
		return nil, fmt.Errorf("weekly goal %d outside [1,%d]: %w", req.WeeklyGoal, domain.MaxWeeklyGoal, ErrInvalidGoalConfig)
	}

	cfg := domain.GoalConfig{DailyGoal: req.DailyGoal, WeeklyGoal: req.WeeklyGoal}
	if err := s.goals.Upsert(ctx, userID, cfg); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("store goals for user %s: %w", userID, err)
	}

	s.cache.Invalidate(userID)
	return &cfg, nil
}

// validateCompletion checks the event before any write (fail closed).
func (s *StatsService) validateCompletion(userID string, req domain.CompleteSessionRequest) (*domain.SessionRecord, error) {
	if userID == "" {
		return nil, fmt.Errorf("missing user id: %w", ErrInvalidSession)
	}

	st := domain.SessionType(req.SessionType)
	if !domain.ValidSessionTypes[st] {
		return nil, fmt.Errorf("session type %q: %w", req.SessionType, ErrInvalidSession)
	}
	if req.DurationMs < 0 {
		return nil, fmt.Errorf("negative duration %d: %w", req.DurationMs, ErrInvalidSession)
	}
	if req.DurationMs > maxDurationMs {
		return nil, fmt.Errorf("duration %dms exceeds %dms: %w", req.DurationMs, int64(maxDurationMs), ErrInvalidSession)
	}
	if len(req.IdempotencyKey) > maxIdempotencyKeyLen {
		return nil, fmt.Errorf("idempotency key longer than %d: %w", maxIdempotencyKeyLen, ErrInvalidSession)
	}

	return &domain.SessionRecord{
		ID:             uuid.New(),
		UserID:         userID,
		SessionType:    st,
		OccurredAt:     s.now().UTC(),
		DurationMs:     req.DurationMs,
		IdempotencyKey: req.IdempotencyKey,
	}, nil
}

// previousSnapshot reconstructs the pre-ingest snapshot used for
// milestone classification: the cached snapshot when one exists and
// was computed on the same UTC day (an older one counts today's
// sessions against a different day), otherwise a recomputation over
// the history minus the new record.
func (s *StatsService) previousSnapshot(userID string, history []domain.SessionRecord, newID uuid.UUID) domain.UserStatsSnapshot {
	if cached, ok := s.cache.Peek(userID); ok && dayKey(cached.ComputedAt) == dayKey(s.now()) {
		return *cached
	}

	before := make([]domain.SessionRecord, 0, len(history))
	for _, rec := range history {
		if rec.ID != newID {
			before = append(before, rec)
		}
	}
	return ComputeSnapshot(before, s.now())
}

// checkConsistency compares a fresh recomputation against the cached
// snapshot. The record log is append-only, so the derived total can
// only grow; a shrink means the aggregator or store misbehaved and is
// logged and counted, never swallowed.
func (s *StatsService) checkConsistency(ctx context.Context, userID string, fresh domain.UserStatsSnapshot) {
	cached, ok := s.cache.Peek(userID)
	if !ok {
		return
	}
	if cached.TotalSessions > fresh.TotalSessions {
		middleware.ComputeInconsistencies.Inc()
		logger := middleware.LoggerFromContext(ctx)
		logger.Error().
			Str("user_id", userID).
			Int("cached_total", cached.TotalSessions).
			Int("fresh_total", fresh.TotalSessions).
			Err(ErrComputeInconsistency).
			Msg("Cached snapshot ahead of recomputation")
	}
}

// evaluateForUser loads the user's goal config (defaults when unset)
// and evaluates progress against the snapshot.
func (s *StatsService) evaluateForUser(ctx context.Context, userID string, snap domain.UserStatsSnapshot) (domain.GoalProgress, error) {
	cfg, err := s.goals.Get(ctx, userID)
	if err != nil {
		return domain.GoalProgress{}, fmt.Errorf("load goals for user %s: %w", userID, err)
	}
	if cfg == nil {
		defaults := domain.DefaultGoalConfig()
		cfg = &defaults
	}
	return EvaluateGoals(snap, *cfg)
}

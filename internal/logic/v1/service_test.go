package v1

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynhne/stats-service/internal/core/domain"
	"github.com/duynhne/stats-service/internal/core/repository"
)

func newTestService(t *testing.T) (*StatsService, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	svc := NewStatsService(store, store, repository.NewSnapshotCache(time.Minute))
	svc.now = func() time.Time { return testNow }
	return svc, store
}

func completion(sessionType string, key string) domain.CompleteSessionRequest {
	return domain.CompleteSessionRequest{
		SessionType:    sessionType,
		DurationMs:     60000,
		IdempotencyKey: key,
	}
}

func TestCompleteSession_FirstSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.CompleteSession(ctx, "u1", completion("audio_practice", ""))
	require.NoError(t, err)

	assert.False(t, resp.Duplicate)
	assert.Equal(t, 1, resp.Snapshot.TotalSessions)
	assert.Equal(t, 1, resp.Snapshot.TodaySessions)
	assert.Equal(t, 1, resp.Snapshot.CurrentStreakDays)

	// First session of the day crosses the 1-per-day milestone.
	assert.Equal(t, []domain.MilestoneEvent{{Type: domain.MilestoneDaily, Value: 1}}, resp.Milestones)

	// Default goals apply when the user never configured any.
	assert.Equal(t, domain.DefaultDailyGoal, resp.GoalProgress.DailyGoal)
	assert.Equal(t, domain.DefaultWeeklyGoal, resp.GoalProgress.WeeklyGoal)
	assert.Equal(t, 33.3, resp.GoalProgress.DailyPercentage)
}

func TestCompleteSession_IdempotentRetry(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	first, err := svc.CompleteSession(ctx, "u1", completion("interview", "retry-key-1"))
	require.NoError(t, err)
	require.False(t, first.Duplicate)

	second, err := svc.CompleteSession(ctx, "u1", completion("interview", "retry-key-1"))
	require.NoError(t, err)

	assert.True(t, second.Duplicate)
	assert.Equal(t, first.Snapshot.TotalSessions, second.Snapshot.TotalSessions)
	assert.Equal(t, first.Snapshot.CurrentStreakDays, second.Snapshot.CurrentStreakDays)

	// The replay must not re-announce milestones already reported.
	assert.Empty(t, second.Milestones)

	// Exactly one record was stored.
	records, err := store.ListByUser(ctx, "u1", nil)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestCompleteSession_DistinctKeysBothStored(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.CompleteSession(ctx, "u1", completion("general", "key-a"))
	require.NoError(t, err)
	resp, err := svc.CompleteSession(ctx, "u1", completion("general", "key-b"))
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Snapshot.TotalSessions)

	records, err := store.ListByUser(ctx, "u1", nil)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestCompleteSession_ValidationFailsClosed(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		user string
		req  domain.CompleteSessionRequest
	}{
		{"missing user", "", completion("audio_practice", "")},
		{"unknown session type", "u1", completion("scored_drill", "")},
		{"negative duration", "u1", domain.CompleteSessionRequest{SessionType: "audio_practice", DurationMs: -1}},
		{"implausible duration", "u1", domain.CompleteSessionRequest{SessionType: "audio_practice", DurationMs: 7 * 60 * 60 * 1000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CompleteSession(ctx, tt.user, tt.req)
			assert.ErrorIs(t, err, ErrInvalidSession)
		})
	}

	// No rejected event ever produced a write.
	records, err := store.ListByUser(ctx, "u1", nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCompleteSession_LifetimeMilestoneOnce(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var tenth *domain.CompleteSessionResponse
	for i := 0; i < 11; i++ {
		resp, err := svc.CompleteSession(ctx, "u1", completion("audio_practice", ""))
		require.NoError(t, err)
		if resp.Snapshot.TotalSessions == 10 {
			tenth = resp
		} else {
			for _, m := range resp.Milestones {
				assert.NotEqual(t, domain.MilestoneLifetime, m.Type)
			}
		}
	}

	require.NotNil(t, tenth)
	assert.Contains(t, tenth.Milestones, domain.MilestoneEvent{Type: domain.MilestoneLifetime, Value: 10})
}

func TestGetStats_CacheMissRecomputes(t *testing.T) {
	store := repository.NewMemoryStore()
	// Zero TTL disables the cache entirely; every read must fall back
	// to full recomputation rather than stale or zeroed data.
	svc := NewStatsService(store, store, repository.NewSnapshotCache(0))
	svc.now = func() time.Time { return testNow }
	ctx := context.Background()

	_, err := svc.CompleteSession(ctx, "u1", completion("audio_practice", ""))
	require.NoError(t, err)
	_, err = svc.CompleteSession(ctx, "u1", completion("interview", ""))
	require.NoError(t, err)

	resp, err := svc.GetStats(ctx, "u1")
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Snapshot.TotalSessions)
	assert.Equal(t, 2, resp.Snapshot.TodaySessions)
	assert.Equal(t, 1, resp.Snapshot.CurrentStreakDays)
}

func TestGetStats_CachedAndRecomputedAgree(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CompleteSession(ctx, "u1", completion("audio_practice", ""))
	require.NoError(t, err)

	cached, err := svc.GetStats(ctx, "u1")
	require.NoError(t, err)

	freshSvc := NewStatsService(svc.sessions, svc.goals, repository.NewSnapshotCache(0))
	freshSvc.now = svc.now
	fresh, err := freshSvc.GetStats(ctx, "u1")
	require.NoError(t, err)
	fresh.Snapshot.ComputedAt = cached.Snapshot.ComputedAt

	assert.Equal(t, cached.Snapshot.TotalSessions, fresh.Snapshot.TotalSessions)
	assert.Equal(t, cached.Snapshot.CurrentStreakDays, fresh.Snapshot.CurrentStreakDays)
	assert.Equal(t, cached.GoalProgress, fresh.GoalProgress)
}

func TestUpdateGoals(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cfg, err := svc.UpdateGoals(ctx, "u1", domain.UpdateGoalsRequest{DailyGoal: 5, WeeklyGoal: 20})
	require.NoError(t, err)
	assert.Equal(t, &domain.GoalConfig{DailyGoal: 5, WeeklyGoal: 20}, cfg)

	// Subsequent reads evaluate against the stored goals.
	resp, err := svc.GetStats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 5, resp.GoalProgress.DailyGoal)
	assert.Equal(t, 20, resp.GoalProgress.WeeklyGoal)
}

func TestUpdateGoals_RejectsOutOfRange(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  domain.UpdateGoalsRequest
	}{
		{"zero daily", domain.UpdateGoalsRequest{DailyGoal: 0, WeeklyGoal: 15}},
		{"daily above bound", domain.UpdateGoalsRequest{DailyGoal: domain.MaxDailyGoal + 1, WeeklyGoal: 15}},
		{"zero weekly", domain.UpdateGoalsRequest{DailyGoal: 3, WeeklyGoal: 0}},
		{"weekly above bound", domain.UpdateGoalsRequest{DailyGoal: 3, WeeklyGoal: domain.MaxWeeklyGoal + 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateGoals(ctx, "u1", tt.req)
			assert.ErrorIs(t, err, ErrInvalidGoalConfig)
		})
	}
}

func TestRecentSessions_LimitClamped(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		_, err := svc.CompleteSession(ctx, "u1", completion("audio_practice", ""))
		require.NoError(t, err)
	}

	records, err := svc.RecentSessions(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Len(t, records, defaultRecentLimit)

	records, err = svc.RecentSessions(ctx, "u1", 100)
	require.NoError(t, err)
	assert.Len(t, records, 8)
}

package v1

import "github.com/duynhne/stats-service/internal/core/domain"

// Milestone thresholds per stat. Each fires once, on the ingestion
// that moves the value from below the threshold to at-or-above it.
var (
	dailyMilestones    = []int{1, 3, 5}
	streakMilestones   = []int{7, 14, 30}
	lifetimeMilestones = []int{10, 25, 50, 100, 200, 500}
)

// ClassifyMilestones compares the snapshots before and after an
// ingestion and returns the achievement events crossed by it. Values
// already past a threshold never re-fire, which is why the previous
// snapshot is required rather than just the new one.
func ClassifyMilestones(prev, curr domain.UserStatsSnapshot) []domain.MilestoneEvent {
	var events []domain.MilestoneEvent
	events = appendCrossed(events, domain.MilestoneDaily, prev.TodaySessions, curr.TodaySessions, dailyMilestones)
	events = appendCrossed(events, domain.MilestoneStreak, prev.CurrentStreakDays, curr.CurrentStreakDays, streakMilestones)
	events = appendCrossed(events, domain.MilestoneLifetime, prev.TotalSessions, curr.TotalSessions, lifetimeMilestones)
	return events
}

func appendCrossed(events []domain.MilestoneEvent, typ domain.MilestoneType, before, after int, thresholds []int) []domain.MilestoneEvent {
	for _, t := range thresholds {
		if before < t && after >= t {
			events = append(events, domain.MilestoneEvent{Type: typ, Value: t})
		}
	}
	return events
}

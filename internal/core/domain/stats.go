package domain

import "time"

// UserStatsSnapshot is the derived, user-facing view of a user's
// session history. It is never a source of truth: any copy of it can
// be discarded and recomputed from the SessionRecord log.
type UserStatsSnapshot struct {
	TotalSessions     int   `json:"totalSessions"`
	TodaySessions     int   `json:"todaySessions"`
	WeeklySessions    int   `json:"weeklySessions"` // rolling 7-day window ending now
	CurrentStreakDays int   `json:"currentStreakDays"`
	AverageDurationMs int64 `json:"averageDurationMs"`
	TotalPracticeMs   int64 `json:"totalPracticeMs"`

	// DailyActivity holds per-day session counts for the last seven
	// UTC calendar days, index 0 = today, index 6 = six days ago.
	DailyActivity [7]int `json:"dailyActivity"`

	ComputedAt time.Time `json:"computedAt"`
}

// Default goals applied when a user has not configured their own.
const (
	DefaultDailyGoal  = 3
	DefaultWeeklyGoal = 15
)

// Configured goal bounds. Updates outside these are rejected rather
// than clamped, so a misconfigured client is never silently corrected.
const (
	MaxDailyGoal  = 10
	MaxWeeklyGoal = 50
)

// GoalConfig is a user's configured practice targets. It is owned by
// profile settings; this engine only reads it.
type GoalConfig struct {
	DailyGoal  int `json:"dailyGoal"`
	WeeklyGoal int `json:"weeklyGoal"`
}

// DefaultGoalConfig returns the targets used when no row exists.
func DefaultGoalConfig() GoalConfig {
	return GoalConfig{DailyGoal: DefaultDailyGoal, WeeklyGoal: DefaultWeeklyGoal}
}

// GoalProgress reports how a snapshot measures against a GoalConfig.
type GoalProgress struct {
	DailyProgress    int     `json:"dailyProgress"`
	DailyGoal        int     `json:"dailyGoal"`
	DailyPercentage  float64 `json:"dailyPercentage"`
	DailyMet         bool    `json:"dailyMet"`
	WeeklyProgress   int     `json:"weeklyProgress"`
	WeeklyGoal       int     `json:"weeklyGoal"`
	WeeklyPercentage float64 `json:"weeklyPercentage"`
	WeeklyMet        bool    `json:"weeklyMet"`
}

// MilestoneType classifies achievement events.
type MilestoneType string

const (
	MilestoneDaily    MilestoneType = "daily"
	MilestoneStreak   MilestoneType = "streak"
	MilestoneLifetime MilestoneType = "lifetime"
)

// MilestoneEvent is emitted once when a stat crosses a fixed threshold.
type MilestoneEvent struct {
	Type  MilestoneType `json:"type"`
	Value int           `json:"value"`
}

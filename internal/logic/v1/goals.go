package v1

import (
	"fmt"
	"math"

	"github.com/duynhne/stats-service/internal/core/domain"
)

// EvaluateGoals measures a snapshot against the user's configured
// targets. A non-positive goal is invalid configuration and fails fast
// rather than dividing by zero or being silently replaced.
func EvaluateGoals(snap domain.UserStatsSnapshot, cfg domain.GoalConfig) (domain.GoalProgress, error) {
	if cfg.DailyGoal <= 0 {
		return domain.GoalProgress{}, fmt.Errorf("daily goal %d: %w", cfg.DailyGoal, ErrInvalidGoalConfig)
	}
	if cfg.WeeklyGoal <= 0 {
		return domain.GoalProgress{}, fmt.Errorf("weekly goal %d: %w", cfg.WeeklyGoal, ErrInvalidGoalConfig)
	}

	return domain.GoalProgress{
		DailyProgress:    snap.TodaySessions,
		DailyGoal:        cfg.DailyGoal,
		DailyPercentage:  goalPercentage(snap.TodaySessions, cfg.DailyGoal),
		DailyMet:         snap.TodaySessions >= cfg.DailyGoal,
		WeeklyProgress:   snap.WeeklySessions,
		WeeklyGoal:       cfg.WeeklyGoal,
		WeeklyPercentage: goalPercentage(snap.WeeklySessions, cfg.WeeklyGoal),
		WeeklyMet:        snap.WeeklySessions >= cfg.WeeklyGoal,
	}, nil
}

// goalPercentage returns progress toward a goal, capped at 100 and
// rounded to one decimal place for display.
func goalPercentage(progress, goal int) float64 {
	pct := 100 * float64(progress) / float64(goal)
	if pct > 100 {
		pct = 100
	}
	return math.Round(pct*10) / 10
}

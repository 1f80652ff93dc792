package v1

import (
	"time"

	"github.com/duynhne/stats-service/internal/core/domain"
)

const secondsPerDay = 86400

// dayKey maps an instant to its UTC calendar day, as a day number
// since the Unix epoch. All streak math runs on these keys.
func dayKey(t time.Time) int64 {
	return t.UTC().Unix() / secondsPerDay
}

// ComputeSnapshot derives a user's stats from their full session
// history. It is pure: same records and clock always produce the same
// snapshot, so any cached copy can be discarded and rebuilt.
//
// The weekly count uses a rolling 7-day window ending at now, not the
// ISO calendar week; the two differ at week boundaries and the rolling
// window is the documented choice here.
//
// A single pass over the records collapses the history into counters
// and a distinct-day set; the streak walk then touches one key per
// day, so its cost is bounded by distinct practice days rather than
// raw session count.
func ComputeSnapshot(records []domain.SessionRecord, now time.Time) domain.UserStatsSnapshot {
	now = now.UTC()
	today := dayKey(now)
	weekStart := now.Add(-7 * 24 * time.Hour)

	snap := domain.UserStatsSnapshot{ComputedAt: now}
	days := make(map[int64]struct{})

	for _, rec := range records {
		snap.TotalSessions++
		snap.TotalPracticeMs += rec.DurationMs

		day := dayKey(rec.OccurredAt)
		days[day] = struct{}{}

		if day == today {
			snap.TodaySessions++
		}
		if !rec.OccurredAt.Before(weekStart) && !rec.OccurredAt.After(now) {
			snap.WeeklySessions++
		}
		if offset := today - day; offset >= 0 && offset < 7 {
			snap.DailyActivity[offset]++
		}
	}

	if snap.TotalSessions > 0 {
		snap.AverageDurationMs = snap.TotalPracticeMs / int64(snap.TotalSessions)
	}

	snap.CurrentStreakDays = streakFromDays(days, today)
	return snap
}

// streakFromDays walks backward from today counting consecutive
// present days. A missing today does not break an existing streak —
// the user may simply not have practiced yet — but any earlier gap
// terminates the count.
func streakFromDays(days map[int64]struct{}, today int64) int {
	day := today
	if _, ok := days[day]; !ok {
		day--
	}

	streak := 0
	for {
		if _, ok := days[day]; !ok {
			break
		}
		streak++
		day--
	}
	return streak
}

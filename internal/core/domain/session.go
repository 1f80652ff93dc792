// Package domain holds the data model and repository contracts for the
// session analytics engine. The Logic layer depends on these interfaces
// only — never on SQL or pgx directly.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionType is the closed set of practice session kinds. The engine
// treats the type as informational only; it never affects streak or
// goal math.
type SessionType string

const (
	SessionTypeAudioPractice SessionType = "audio_practice"
	SessionTypeInterview     SessionType = "interview"
	SessionTypeFluency       SessionType = "fluency_conversation"
	SessionTypeGeneral       SessionType = "general"
)

// ValidSessionTypes is the allow-list checked at ingestion.
var ValidSessionTypes = map[SessionType]bool{
	SessionTypeAudioPractice: true,
	SessionTypeInterview:     true,
	SessionTypeFluency:       true,
	SessionTypeGeneral:       true,
}

// SessionRecord is one completed practice session. Records are
// immutable once written: the store exposes inserts only, and all
// derived statistics are recomputable by replaying them.
type SessionRecord struct {
	ID             uuid.UUID   `json:"id"`
	UserID         string      `json:"userId"`
	SessionType    SessionType `json:"sessionType"`
	OccurredAt     time.Time   `json:"occurredAt"` // UTC; all calendar-day math uses this clock
	DurationMs     int64       `json:"durationMs"`
	IdempotencyKey string      `json:"-"`
}

// CompleteSessionRequest is the body of POST /sessions/complete.
type CompleteSessionRequest struct {
	SessionType    string `json:"sessionType" binding:"required"`
	DurationMs     int64  `json:"durationMs"`
	IdempotencyKey string `json:"idempotencyKey"`
}

// CompleteSessionResponse is returned after a session is ingested.
// Duplicate is true when the request was answered from an existing
// record via its idempotency key.
type CompleteSessionResponse struct {
	Snapshot     UserStatsSnapshot `json:"snapshot"`
	GoalProgress GoalProgress      `json:"goalProgress"`
	Milestones   []MilestoneEvent  `json:"milestones"`
	Duplicate    bool              `json:"duplicate"`
}

// StatsResponse is returned by GET /sessions/stats.
type StatsResponse struct {
	Snapshot     UserStatsSnapshot `json:"snapshot"`
	GoalProgress GoalProgress      `json:"goalProgress"`
}

// UpdateGoalsRequest is the body of PUT /goals. No binding tags on the
// values: a zero goal must reach the logic layer so it is rejected as
// invalid configuration, not swallowed as a missing field.
type UpdateGoalsRequest struct {
	DailyGoal  int `json:"dailyGoal"`
	WeeklyGoal int `json:"weeklyGoal"`
}

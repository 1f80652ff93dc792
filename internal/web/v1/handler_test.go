package v1

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynhne/stats-service/internal/core/domain"
	"github.com/duynhne/stats-service/internal/core/repository"
	logicv1 "github.com/duynhne/stats-service/internal/logic/v1"
	"github.com/duynhne/stats-service/middleware"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore()
	svc := logicv1.NewStatsService(store, store, repository.NewSnapshotCache(time.Minute))
	handler := NewHandler(svc)

	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(middleware.RequireUser())
	handler.RegisterRoutes(api)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set(middleware.UserIDHeader, userID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCompleteSessionEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/sessions/complete", "u1",
		`{"sessionType":"audio_practice","durationMs":60000}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp domain.CompleteSessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Snapshot.TotalSessions)
	assert.Equal(t, 1, resp.Snapshot.CurrentStreakDays)
	assert.False(t, resp.Duplicate)
	assert.Equal(t, []domain.MilestoneEvent{{Type: domain.MilestoneDaily, Value: 1}}, resp.Milestones)
}

func TestCompleteSessionEndpoint_Idempotent(t *testing.T) {
	r := newTestRouter(t)
	body := `{"sessionType":"interview","durationMs":30000,"idempotencyKey":"abc-1"}`

	first := doJSON(t, r, http.MethodPost, "/api/v1/sessions/complete", "u1", body)
	require.Equal(t, http.StatusOK, first.Code)

	second := doJSON(t, r, http.MethodPost, "/api/v1/sessions/complete", "u1", body)
	require.Equal(t, http.StatusOK, second.Code)

	var resp domain.CompleteSessionResponse
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &resp))
	assert.True(t, resp.Duplicate)
	assert.Equal(t, 1, resp.Snapshot.TotalSessions)
	assert.Empty(t, resp.Milestones)
}

func TestCompleteSessionEndpoint_Validation(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing body", "", http.StatusBadRequest},
		{"missing session type", `{"durationMs":1000}`, http.StatusBadRequest},
		{"unknown session type", `{"sessionType":"scored_drill"}`, http.StatusBadRequest},
		{"negative duration", `{"sessionType":"interview","durationMs":-5}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/v1/sessions/complete", "u1", tt.body)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestEndpoints_RequireUser(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/v1/sessions/stats", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/sessions/complete", "",
		`{"sessionType":"interview"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetStatsEndpoint(t *testing.T) {
	r := newTestRouter(t)

	// A user with no history gets a zeroed snapshot, not an error.
	w := doJSON(t, r, http.MethodGet, "/api/v1/sessions/stats", "u1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp domain.StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Snapshot.TotalSessions)
	assert.Equal(t, domain.DefaultDailyGoal, resp.GoalProgress.DailyGoal)
}

func TestUpdateGoalsEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPut, "/api/v1/goals", "u1",
		`{"dailyGoal":5,"weeklyGoal":25}`)
	require.Equal(t, http.StatusOK, w.Code)

	// Out-of-range goals are rejected, not clamped.
	w = doJSON(t, r, http.MethodPut, "/api/v1/goals", "u1",
		`{"dailyGoal":99,"weeklyGoal":25}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// The stored goals drive subsequent progress reads.
	w = doJSON(t, r, http.MethodGet, "/api/v1/sessions/stats", "u1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp domain.StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.GoalProgress.DailyGoal)
	assert.Equal(t, 25, resp.GoalProgress.WeeklyGoal)
}

func TestRecentSessionsEndpoint(t *testing.T) {
	r := newTestRouter(t)

	for i := 0; i < 3; i++ {
		w := doJSON(t, r, http.MethodPost, "/api/v1/sessions/complete", "u1",
			`{"sessionType":"general","durationMs":1000}`)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doJSON(t, r, http.MethodGet, "/api/v1/sessions/recent?limit=2", "u1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Sessions []domain.SessionRecord `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Sessions, 2)

	w = doJSON(t, r, http.MethodGet, "/api/v1/sessions/recent?limit=oops", "u1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

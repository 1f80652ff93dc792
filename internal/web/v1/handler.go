// Package v1 exposes the session analytics API over HTTP.
package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/stats-service/internal/core/domain"
	logicv1 "github.com/duynhne/stats-service/internal/logic/v1"
	"github.com/duynhne/stats-service/middleware"
)

// Handler groups HTTP handlers for the stats API v1.
// Dependencies are injected via the constructor — no global state.
type Handler struct {
	stats *logicv1.StatsService
}

// NewHandler creates a new Handler with the given StatsService.
func NewHandler(stats *logicv1.StatsService) *Handler {
	return &Handler{stats: stats}
}

// RegisterRoutes registers all stats API v1 routes on the given router
// group. Every route assumes middleware.RequireUser has run.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sessions/complete", h.CompleteSession)
	rg.GET("/sessions/stats", h.GetStats)
	rg.GET("/sessions/recent", h.RecentSessions)
	rg.PUT("/goals", h.UpdateGoals)
}

// CompleteSession handles POST /sessions/complete: ingest one
// session-completion event and return the fresh snapshot, goal
// progress and any milestones crossed.
func (h *Handler) CompleteSession(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	logger := middleware.LoggerFromContext(ctx)
	userID := middleware.UserID(c)

	var req domain.CompleteSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		span.RecordError(err)
		logger.Error().Err(err).Msg("Invalid request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	span.SetAttributes(attribute.Bool("request.valid", true))

	response, err := h.stats.CompleteSession(ctx, userID, req)
	if err != nil {
		span.RecordError(err)
		logger.Error().Err(err).Str("user_id", userID).Msg("Session ingestion failed")

		switch {
		case errors.Is(err, logicv1.ErrInvalidSession):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, logicv1.ErrInvalidGoalConfig):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			// Storage failures are retryable with the same idempotency
			// key; nothing was double-counted.
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	logger.Info().
		Str("user_id", userID).
		Int("total_sessions", response.Snapshot.TotalSessions).
		Int("streak_days", response.Snapshot.CurrentStreakDays).
		Bool("duplicate", response.Duplicate).
		Int("milestones", len(response.Milestones)).
		Msg("Session ingested")
	c.JSON(http.StatusOK, response)
}

// GetStats handles GET /sessions/stats.
func (h *Handler) GetStats(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	logger := middleware.LoggerFromContext(ctx)
	userID := middleware.UserID(c)

	response, err := h.stats.GetStats(ctx, userID)
	if err != nil {
		span.RecordError(err)
		logger.Error().Err(err).Str("user_id", userID).Msg("Stats read failed")

		switch {
		case errors.Is(err, logicv1.ErrInvalidSession):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, logicv1.ErrInvalidGoalConfig):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, response)
}

// RecentSessions handles GET /sessions/recent?limit=N.
func (h *Handler) RecentSessions(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	logger := middleware.LoggerFromContext(ctx)
	userID := middleware.UserID(c)

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
		limit = n
	}

	records, err := h.stats.RecentSessions(ctx, userID, limit)
	if err != nil {
		span.RecordError(err)
		logger.Error().Err(err).Str("user_id", userID).Msg("Recent sessions read failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if records == nil {
		records = []domain.SessionRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"sessions": records})
}

// UpdateGoals handles PUT /goals.
func (h *Handler) UpdateGoals(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	logger := middleware.LoggerFromContext(ctx)
	userID := middleware.UserID(c)

	var req domain.UpdateGoalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		span.RecordError(err)
		logger.Error().Err(err).Msg("Invalid request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg, err := h.stats.UpdateGoals(ctx, userID, req)
	if err != nil {
		span.RecordError(err)
		logger.Error().Err(err).Str("user_id", userID).Msg("Goal update failed")

		switch {
		case errors.Is(err, logicv1.ErrInvalidGoalConfig):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	logger.Info().
		Str("user_id", userID).
		Int("daily_goal", cfg.DailyGoal).
		Int("weekly_goal", cfg.WeeklyGoal).
		Msg("Goals updated")
	c.JSON(http.StatusOK, cfg)
}

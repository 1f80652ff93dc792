package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duynhne/stats-service/internal/core/domain"
)

// PgxGoalRepository implements domain.GoalRepository using pgxpool.
type PgxGoalRepository struct {
	pool *pgxpool.Pool
}

// NewGoalRepository creates a new PgxGoalRepository.
func NewGoalRepository(pool *pgxpool.Pool) *PgxGoalRepository {
	return &PgxGoalRepository{pool: pool}
}

// Get returns the user's configured goals.
// Returns (nil, nil) when the user has never configured any.
func (r *PgxGoalRepository) Get(ctx context.Context, userID string) (*domain.GoalConfig, error) {
	query := `SELECT daily_goal, weekly_goal FROM user_goals WHERE user_id = $1`

	var cfg domain.GoalConfig
	err := r.pool.QueryRow(ctx, query, userID).Scan(&cfg.DailyGoal, &cfg.WeeklyGoal)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select goals: %w", err)
	}
	return &cfg, nil
}

// Upsert stores the user's goal configuration.
func (r *PgxGoalRepository) Upsert(ctx context.Context, userID string, cfg domain.GoalConfig) error {
	query := `
		INSERT INTO user_goals (user_id, daily_goal, weekly_goal, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id) DO UPDATE
		SET daily_goal = EXCLUDED.daily_goal,
		    weekly_goal = EXCLUDED.weekly_goal,
		    updated_at = now()
	`

	if _, err := r.pool.Exec(ctx, query, userID, cfg.DailyGoal, cfg.WeeklyGoal); err != nil {
		return fmt.Errorf("upsert goals: %w", err)
	}
	return nil
}

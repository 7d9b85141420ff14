package gamification

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/speakeasy-practice/backend/internal/models"
)

// Store persists gamification state in Postgres.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ── Core Gamification CRUD ──────────────────────────────

func (s *Store) GetOrCreateGamification(ctx context.Context, userID int64) (*models.UserGamification, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_gamification (user_id) VALUES ($1)
		 ON CONFLICT (user_id) DO NOTHING`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert gamification: %w", err)
	}

	var g models.UserGamification
	err = s.db.QueryRowContext(ctx,
		`SELECT user_id, total_xp, current_streak, longest_streak, last_active_date,
		        gems, daily_goal_target, daily_goal_progress, daily_goal_date,
		        responses_total, responses_passed_total,
		        sessions_completed_total, perfect_sessions_total, best_level,
		        created_at, updated_at
		 FROM user_gamification WHERE user_id = $1`,
		userID,
	).Scan(&g.UserID, &g.TotalXP, &g.CurrentStreak, &g.LongestStreak, &g.LastActiveDate,
		&g.Gems, &g.DailyGoalTarget, &g.DailyGoalProgress, &g.DailyGoalDate,
		&g.ResponsesTotal, &g.ResponsesPassedTotal,
		&g.SessionsCompletedTotal, &g.PerfectSessionsTotal, &g.BestLevel,
		&g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get gamification: %w", err)
	}
	return &g, nil
}

func (s *Store) UpdateGamification(ctx context.Context, userID int64, g *models.UserGamification) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE user_gamification SET
		    current_streak = $2, longest_streak = $3, last_active_date = $4,
		    gems = $5, daily_goal_target = $6, daily_goal_progress = $7, daily_goal_date = $8,
		    sessions_completed_total = $9, perfect_sessions_total = $10, best_level = $11,
		    updated_at = NOW()
		 WHERE user_id = $1`,
		userID, g.CurrentStreak, g.LongestStreak, g.LastActiveDate,
		g.Gems, g.DailyGoalTarget, g.DailyGoalProgress, g.DailyGoalDate,
		g.SessionsCompletedTotal, g.PerfectSessionsTotal, g.BestLevel,
	)
	if err != nil {
		return fmt.Errorf("update gamification: %w", err)
	}
	return nil
}

func (s *Store) IncrementCounters(ctx context.Context, userID int64, passed bool) error {
	passedInc := 0
	if passed {
		passedInc = 1
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE user_gamification SET
		    responses_total = responses_total + 1,
		    responses_passed_total = responses_passed_total + $2,
		    updated_at = NOW()
		 WHERE user_id = $1`,
		userID, passedInc,
	)
	return err
}

// ── XP Operations ───────────────────────────────────────

func (s *Store) AddXP(ctx context.Context, userID int64, amount int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE user_gamification SET total_xp = total_xp + $2, updated_at = NOW() WHERE user_id = $1`,
		userID, amount,
	)
	return err
}

func (s *Store) LogXPEvent(ctx context.Context, userID int64, eventType string, xpAmount int, metadata map[string]interface{}) error {
	var metaJSON *string
	if metadata != nil {
		b, err := json.Marshal(metadata)
		if err == nil {
			s := string(b)
			metaJSON = &s
		}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO xp_events (user_id, event_type, xp_amount, metadata)
		 VALUES ($1, $2, $3, $4)`,
		userID, eventType, xpAmount, metaJSON,
	)
	return err
}

// ── Achievements & Gems ─────────────────────────────────

func (s *Store) GetUserAchievements(ctx context.Context, userID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT achievement FROM achievements WHERE user_id = $1 ORDER BY earned_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("get achievements: %w", err)
	}
	defer rows.Close()

	achievements := []string{}
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		achievements = append(achievements, a)
	}
	return achievements, rows.Err()
}

func (s *Store) AwardAchievement(ctx context.Context, userID int64, achievement string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO achievements (user_id, achievement) VALUES ($1, $2)
		 ON CONFLICT (user_id, achievement) DO NOTHING`,
		userID, achievement,
	)
	return err
}

func (s *Store) AwardGems(ctx context.Context, userID int64, amount int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE user_gamification SET gems = gems + $2, updated_at = NOW() WHERE user_id = $1`,
		userID, amount,
	)
	return err
}

func (s *Store) SetDailyGoalTarget(ctx context.Context, userID int64, target int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE user_gamification SET daily_goal_target = $2, updated_at = NOW() WHERE user_id = $1`,
		userID, target,
	)
	return err
}

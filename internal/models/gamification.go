package models

import "time"

// ── Core Gamification Structs ─────────────────────────────

type UserGamification struct {
	UserID                 int64      `json:"user_id"`
	TotalXP                int64      `json:"total_xp"`
	CurrentStreak          int        `json:"current_streak"`
	LongestStreak          int        `json:"longest_streak"`
	LastActiveDate         *time.Time `json:"last_active_date"`
	Gems                   int        `json:"gems"`
	DailyGoalTarget        int        `json:"daily_goal_target"`
	DailyGoalProgress      int        `json:"daily_goal_progress"`
	DailyGoalDate          time.Time  `json:"daily_goal_date"`
	ResponsesTotal         int        `json:"responses_total"`
	ResponsesPassedTotal   int        `json:"responses_passed_total"`
	SessionsCompletedTotal int        `json:"sessions_completed_total"`
	PerfectSessionsTotal   int        `json:"perfect_sessions_total"`
	BestLevel              string     `json:"best_level,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

type XPEvent struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	EventType string    `json:"event_type"`
	XPAmount  int       `json:"xp_amount"`
	Metadata  string    `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Achievement struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Achievement string    `json:"achievement"`
	EarnedAt    time.Time `json:"earned_at"`
}

// ── Request Types ─────────────────────────────────────────

type SetDailyGoalRequest struct {
	Target int `json:"target"`
}

// ── Response Types ────────────────────────────────────────

type GamificationResponse struct {
	TotalXP                int64    `json:"total_xp"`
	CurrentStreak          int      `json:"current_streak"`
	LongestStreak          int      `json:"longest_streak"`
	Gems                   int      `json:"gems"`
	DailyGoalTarget        int      `json:"daily_goal_target"`
	DailyGoalProgress      int      `json:"daily_goal_progress"`
	ResponsesTotal         int      `json:"responses_total"`
	ResponsesPassedTotal   int      `json:"responses_passed_total"`
	SessionsCompletedTotal int      `json:"sessions_completed_total"`
	PerfectSessionsTotal   int      `json:"perfect_sessions_total"`
	BestLevel              string   `json:"best_level,omitempty"`
	Achievements           []string `json:"achievements"`
}

type SessionCompleteRewards struct {
	XPBreakdown          XPBreakdown   `json:"xp_breakdown"`
	GemsEarned           int           `json:"gems_earned"`
	Streak               StreakInfo    `json:"streak"`
	DailyGoal            DailyGoalInfo `json:"daily_goal"`
	AchievementsUnlocked []string      `json:"achievements_unlocked"`
}

type XPBreakdown struct {
	ComboBonuses      int     `json:"combo_bonuses"`
	SessionCompletion int     `json:"session_completion"`
	LevelBonus        int     `json:"level_bonus"`
	Subtotal          int     `json:"subtotal"`
	StreakMultiplier  float64 `json:"streak_multiplier"`
	TotalXP           int     `json:"total_xp"`
}

type StreakInfo struct {
	Current    int     `json:"current"`
	Multiplier float64 `json:"multiplier"`
}

type DailyGoalInfo struct {
	Progress  int  `json:"progress"`
	Target    int  `json:"target"`
	Completed bool `json:"completed"`
}

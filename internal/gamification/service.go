package gamification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/speakeasy-practice/backend/internal/logging"
	"github.com/speakeasy-practice/backend/internal/models"
)

// ErrInvalidDailyGoal is returned by SetDailyGoal for unsupported targets.
var ErrInvalidDailyGoal = errors.New("target must be 5, 10, 20, or 30")

// Repository is the persistence surface used by Service. *Store implements it.
type Repository interface {
	GetOrCreateGamification(ctx context.Context, userID int64) (*models.UserGamification, error)
	UpdateGamification(ctx context.Context, userID int64, g *models.UserGamification) error
	IncrementCounters(ctx context.Context, userID int64, passed bool) error
	AddXP(ctx context.Context, userID int64, amount int) error
	LogXPEvent(ctx context.Context, userID int64, eventType string, xpAmount int, metadata map[string]interface{}) error
	GetUserAchievements(ctx context.Context, userID int64) ([]string, error)
	AwardAchievement(ctx context.Context, userID int64, achievement string) error
	AwardGems(ctx context.Context, userID int64, amount int) error
	SetDailyGoalTarget(ctx context.Context, userID int64, target int) error
}

// SessionSummary describes a finished practice session.
type SessionSummary struct {
	SessionID string
	Kind      models.SessionKind
	Correct   int
	Total     int
	MaxCombo  int
	Level     string
}

type Service struct {
	store Repository
	now   func() time.Time
}

func NewService(store Repository) *Service {
	return &Service{store: store, now: time.Now}
}

var streakMilestones = map[int]int{
	3: 10, 7: 25, 14: 50, 30: 100, 60: 200, 100: 500, 365: 1000,
}

var validDailyGoals = map[int]bool{5: true, 10: true, 20: true, 30: true}

// ── Per-Response XP (called from SubmitResponse) ────────

// RecordResponse counts a scored response toward the user's totals, streak
// and daily goal, and awards XP when it passed. combo is the number of
// consecutive passes including this one. Returns the XP awarded.
func (s *Service) RecordResponse(ctx context.Context, userID int64, score float64, passed bool, combo int) (int, error) {
	logger := logging.FromContext(ctx)

	if _, err := s.store.GetOrCreateGamification(ctx, userID); err != nil {
		return 0, err
	}
	if err := s.store.IncrementCounters(ctx, userID, passed); err != nil {
		return 0, fmt.Errorf("increment counters: %w", err)
	}
	if err := s.UpdateStreak(ctx, userID); err != nil {
		logger.Warn().Err(err).Msg("failed to update streak")
	}
	if err := s.UpdateDailyGoal(ctx, userID, 1); err != nil {
		logger.Warn().Err(err).Msg("failed to update daily goal")
	}

	if !passed {
		return 0, nil
	}

	base := ResponseXP(score)
	comboBonus := ComboXP(combo)
	xpAwarded := base + comboBonus
	if xpAwarded == 0 {
		return 0, nil
	}

	if err := s.store.AddXP(ctx, userID, xpAwarded); err != nil {
		return 0, fmt.Errorf("add xp: %w", err)
	}
	if err := s.store.LogXPEvent(ctx, userID, "response_passed", xpAwarded, map[string]interface{}{
		"score":       score,
		"base_xp":     base,
		"combo":       combo,
		"combo_bonus": comboBonus,
	}); err != nil {
		logger.Warn().Err(err).Msg("failed to log xp event")
	}

	return xpAwarded, nil
}

// ── Streak ──────────────────────────────────────────────

func (s *Service) UpdateStreak(ctx context.Context, userID int64) error {
	gam, err := s.store.GetOrCreateGamification(ctx, userID)
	if err != nil {
		return err
	}

	today := s.now().UTC().Truncate(24 * time.Hour)

	if gam.LastActiveDate != nil {
		lastActive := gam.LastActiveDate.UTC().Truncate(24 * time.Hour)
		if lastActive.Equal(today) {
			return nil
		}

		daysSinceLast := int(today.Sub(lastActive).Hours() / 24)
		if daysSinceLast == 1 {
			gam.CurrentStreak++
		} else {
			gam.CurrentStreak = 1
		}
	} else {
		gam.CurrentStreak = 1
	}

	if gam.CurrentStreak > gam.LongestStreak {
		gam.LongestStreak = gam.CurrentStreak
	}
	gam.LastActiveDate = &today

	if gems, ok := streakMilestones[gam.CurrentStreak]; ok {
		gam.Gems += gems
		if err := s.store.LogXPEvent(ctx, userID, "streak_milestone", 0, map[string]interface{}{
			"streak":       gam.CurrentStreak,
			"gems_awarded": gems,
		}); err != nil {
			logger := logging.FromContext(ctx)
			logger.Warn().Err(err).Msg("failed to log streak milestone")
		}
	}

	return s.store.UpdateGamification(ctx, userID, gam)
}

// ── Daily Goal ──────────────────────────────────────────

func (s *Service) UpdateDailyGoal(ctx context.Context, userID int64, responses int) error {
	gam, err := s.store.GetOrCreateGamification(ctx, userID)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	if now.Format(time.DateOnly) != gam.DailyGoalDate.UTC().Format(time.DateOnly) {
		gam.DailyGoalProgress = 0
		gam.DailyGoalDate = now
	}

	wasCompleted := gam.DailyGoalProgress >= gam.DailyGoalTarget
	gam.DailyGoalProgress += responses
	nowCompleted := gam.DailyGoalProgress >= gam.DailyGoalTarget

	if !wasCompleted && nowCompleted {
		gam.Gems += 5
		if err := s.store.LogXPEvent(ctx, userID, "daily_goal", 0, map[string]interface{}{
			"gems_awarded": 5,
			"target":       gam.DailyGoalTarget,
		}); err != nil {
			logger := logging.FromContext(ctx)
			logger.Warn().Err(err).Msg("failed to log daily goal")
		}
	}

	return s.store.UpdateGamification(ctx, userID, gam)
}

func (s *Service) SetDailyGoal(ctx context.Context, userID int64, target int) error {
	if !validDailyGoals[target] {
		return ErrInvalidDailyGoal
	}
	if _, err := s.store.GetOrCreateGamification(ctx, userID); err != nil {
		return err
	}
	return s.store.SetDailyGoalTarget(ctx, userID, target)
}

// ── Session Completion ──────────────────────────────────

// CompleteSession awards the session-level bonuses. Per-response XP was
// already granted by RecordResponse.
func (s *Service) CompleteSession(ctx context.Context, userID int64, sum SessionSummary) (*models.SessionCompleteRewards, error) {
	logger := logging.FromContext(ctx)

	gam, err := s.store.GetOrCreateGamification(ctx, userID)
	if err != nil {
		return nil, err
	}

	isPerfect := sum.Total > 0 && sum.Correct == sum.Total

	comboXP := CalculateComboXPTotal(sum.MaxCombo)
	sessionXP := SessionCompletionXP(sum.Correct, sum.Total)
	levelXP := LevelBonus(sum.Level)
	subtotal := comboXP + sessionXP + levelXP

	multiplier := StreakMultiplier(gam.CurrentStreak)
	totalXP := ApplyStreakMultiplier(subtotal, multiplier)

	if totalXP > 0 {
		if err := s.store.AddXP(ctx, userID, totalXP); err != nil {
			return nil, fmt.Errorf("add session xp: %w", err)
		}
		if err := s.store.LogXPEvent(ctx, userID, "session_complete", totalXP, map[string]interface{}{
			"session_id": sum.SessionID,
			"kind":       sum.Kind,
			"combo_xp":   comboXP,
			"session_xp": sessionXP,
			"level_xp":   levelXP,
			"multiplier": multiplier,
			"correct":    sum.Correct,
			"total":      sum.Total,
		}); err != nil {
			logger.Warn().Err(err).Msg("failed to log xp event")
		}
	}

	gam.SessionsCompletedTotal++
	if isPerfect {
		gam.PerfectSessionsTotal++
	}
	if levelRank(sum.Level) > levelRank(gam.BestLevel) {
		gam.BestLevel = sum.Level
	}

	gemsEarned := 0
	if isPerfect {
		gemsEarned += 10
	}
	gam.Gems += gemsEarned

	if err := s.store.UpdateGamification(ctx, userID, gam); err != nil {
		return nil, err
	}

	// Re-read to pick up total_xp and counters written by other statements
	gam, err = s.store.GetOrCreateGamification(ctx, userID)
	if err != nil {
		return nil, err
	}

	newAchievements, achievementGems := s.awardAchievements(ctx, userID, gam)
	gemsEarned += achievementGems

	return &models.SessionCompleteRewards{
		XPBreakdown: models.XPBreakdown{
			ComboBonuses:      comboXP,
			SessionCompletion: sessionXP,
			LevelBonus:        levelXP,
			Subtotal:          subtotal,
			StreakMultiplier:  multiplier,
			TotalXP:           totalXP,
		},
		GemsEarned: gemsEarned,
		Streak: models.StreakInfo{
			Current:    gam.CurrentStreak,
			Multiplier: multiplier,
		},
		DailyGoal: models.DailyGoalInfo{
			Progress:  gam.DailyGoalProgress,
			Target:    gam.DailyGoalTarget,
			Completed: gam.DailyGoalProgress >= gam.DailyGoalTarget,
		},
		AchievementsUnlocked: newAchievements,
	}, nil
}

func (s *Service) awardAchievements(ctx context.Context, userID int64, gam *models.UserGamification) ([]string, int) {
	logger := logging.FromContext(ctx)

	existing, err := s.store.GetUserAchievements(ctx, userID)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load achievements")
		return []string{}, 0
	}
	existingSet := make(map[string]bool, len(existing))
	for _, a := range existing {
		existingSet[a] = true
	}

	unlocked := []string{}
	gems := 0
	for _, a := range CheckAchievements(gam) {
		if existingSet[a] {
			continue
		}
		if err := s.store.AwardAchievement(ctx, userID, a); err != nil {
			logger.Warn().Err(err).Str("achievement", a).Msg("failed to award achievement")
			continue
		}
		unlocked = append(unlocked, a)
		if def, ok := Achievements[a]; ok && def.Gems > 0 {
			if err := s.store.AwardGems(ctx, userID, def.Gems); err != nil {
				logger.Warn().Err(err).Str("achievement", a).Msg("failed to award gems")
				continue
			}
			gems += def.Gems
		}
	}
	return unlocked, gems
}

// ── Get Gamification State ──────────────────────────────

func (s *Service) GetGamification(ctx context.Context, userID int64) (*models.GamificationResponse, error) {
	gam, err := s.store.GetOrCreateGamification(ctx, userID)
	if err != nil {
		return nil, err
	}

	achievements, err := s.store.GetUserAchievements(ctx, userID)
	if err != nil {
		achievements = []string{}
	}

	// Progress from a previous day does not count toward today's goal
	dailyProgress := gam.DailyGoalProgress
	if s.now().UTC().Format(time.DateOnly) != gam.DailyGoalDate.UTC().Format(time.DateOnly) {
		dailyProgress = 0
	}

	return &models.GamificationResponse{
		TotalXP:                gam.TotalXP,
		CurrentStreak:          gam.CurrentStreak,
		LongestStreak:          gam.LongestStreak,
		Gems:                   gam.Gems,
		DailyGoalTarget:        gam.DailyGoalTarget,
		DailyGoalProgress:      dailyProgress,
		ResponsesTotal:         gam.ResponsesTotal,
		ResponsesPassedTotal:   gam.ResponsesPassedTotal,
		SessionsCompletedTotal: gam.SessionsCompletedTotal,
		PerfectSessionsTotal:   gam.PerfectSessionsTotal,
		BestLevel:              gam.BestLevel,
		Achievements:           achievements,
	}, nil
}

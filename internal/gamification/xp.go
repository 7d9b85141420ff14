package gamification

import (
	"math"

	"github.com/speakeasy-practice/backend/internal/models"
)

// ResponseXP returns XP for a passed response based on its score (0-100).
// Scores at or below the pass threshold earn nothing.
func ResponseXP(score float64) int {
	if score <= 70 {
		return 0
	}
	if score <= 80 {
		return 5
	}
	if score <= 90 {
		return 8
	}
	return 12
}

// ComboXP returns bonus XP for consecutive passed responses in a session.
func ComboXP(consecutivePassed int) int {
	switch {
	case consecutivePassed < 3:
		return 0
	case consecutivePassed == 3:
		return 3
	case consecutivePassed == 4:
		return 5
	case consecutivePassed == 5:
		return 8
	default:
		return 10
	}
}

// StreakMultiplier returns the XP multiplier for a daily streak.
func StreakMultiplier(currentStreak int) float64 {
	if currentStreak < 3 {
		return 1.0
	}
	if currentStreak < 7 {
		return 1.15
	}
	if currentStreak < 14 {
		return 1.25
	}
	if currentStreak < 30 {
		return 1.5
	}
	return 2.0
}

// SessionCompletionXP returns bonus XP for finishing a session.
func SessionCompletionXP(correct, total int) int {
	if total == 0 {
		return 0
	}
	accuracy := float64(correct) / float64(total)

	if correct == total {
		return 25 // Perfect session
	}
	if accuracy >= 0.8 {
		return 10
	}
	return 0
}

// LevelBonus rewards the level reached in an evaluation session.
func LevelBonus(level string) int {
	switch level {
	case models.LevelAdvanced:
		return 50
	case models.LevelUpperIntermediate:
		return 30
	case models.LevelIntermediate:
		return 20
	case models.LevelElementary:
		return 10
	case models.LevelBeginner:
		return 5
	}
	return 0
}

// CalculateComboXPTotal computes total combo XP from the max combo in a session.
func CalculateComboXPTotal(comboMax int) int {
	total := 0
	for i := 3; i <= comboMax; i++ {
		total += ComboXP(i)
	}
	return total
}

// ApplyStreakMultiplier rounds the multiplied XP to the nearest integer.
func ApplyStreakMultiplier(xp int, multiplier float64) int {
	return int(math.Round(float64(xp) * multiplier))
}

// levelRank orders levels so the best one reached can be kept.
func levelRank(level string) int {
	switch level {
	case models.LevelAdvanced:
		return 5
	case models.LevelUpperIntermediate:
		return 4
	case models.LevelIntermediate:
		return 3
	case models.LevelElementary:
		return 2
	case models.LevelBeginner:
		return 1
	}
	return 0
}

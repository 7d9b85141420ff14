package gamification

import (
	"fmt"

	"github.com/speakeasy-practice/backend/internal/models"
)

// AchievementDef defines a single achievement.
type AchievementDef struct {
	Name        string
	Description string
	Gems        int
}

// Achievements maps achievement keys to their definitions.
var Achievements = map[string]AchievementDef{
	"first_session":      {Name: "First Words", Description: "Complete your first session", Gems: 50},
	"streak_3":           {Name: "Getting Started", Description: "3-day streak", Gems: 10},
	"streak_7":           {Name: "Week Warrior", Description: "7-day streak", Gems: 25},
	"streak_14":          {Name: "Dedicated", Description: "14-day streak", Gems: 50},
	"streak_30":          {Name: "Monthly Master", Description: "30-day streak", Gems: 100},
	"streak_100":         {Name: "Centurion", Description: "100-day streak", Gems: 500},
	"perfect_1":          {Name: "Flawless", Description: "First perfect session", Gems: 10},
	"perfect_10":         {Name: "Perfectionist", Description: "10 perfect sessions", Gems: 50},
	"perfect_50":         {Name: "Silver Tongue", Description: "50 perfect sessions", Gems: 200},
	"responses_100":      {Name: "Chatterbox", Description: "Give 100 responses", Gems: 25},
	"responses_500":      {Name: "Conversationalist", Description: "Give 500 responses", Gems: 50},
	"responses_1000":     {Name: "Orator", Description: "Give 1000 responses", Gems: 100},
	"xp_1000":            {Name: "Rising Star", Description: "Earn 1,000 total XP", Gems: 10},
	"xp_10000":           {Name: "Powerhouse", Description: "Earn 10,000 total XP", Gems: 50},
	"xp_50000":           {Name: "Legend", Description: "Earn 50,000 total XP", Gems: 200},
	"level_intermediate": {Name: "Finding Your Voice", Description: "Reach Intermediate in an evaluation", Gems: 25},
	"level_upper":        {Name: "Fluent Flow", Description: "Reach Upper Intermediate in an evaluation", Gems: 50},
	"level_advanced":     {Name: "Native Ear", Description: "Reach Advanced in an evaluation", Gems: 100},
}

// CheckAchievements returns achievement keys the user has qualified for
// based on their current gamification state. The caller is responsible for
// checking which ones are already earned and only awarding new ones.
func CheckAchievements(gam *models.UserGamification) []string {
	var earned []string

	// Session milestones
	if gam.SessionsCompletedTotal >= 1 {
		earned = append(earned, "first_session")
	}

	// Streak milestones
	for _, n := range []int{3, 7, 14, 30, 100} {
		if gam.CurrentStreak >= n {
			earned = append(earned, fmt.Sprintf("streak_%d", n))
		}
	}

	// Perfect session milestones
	if gam.PerfectSessionsTotal >= 1 {
		earned = append(earned, "perfect_1")
	}
	if gam.PerfectSessionsTotal >= 10 {
		earned = append(earned, "perfect_10")
	}
	if gam.PerfectSessionsTotal >= 50 {
		earned = append(earned, "perfect_50")
	}

	// Response milestones
	if gam.ResponsesTotal >= 100 {
		earned = append(earned, "responses_100")
	}
	if gam.ResponsesTotal >= 500 {
		earned = append(earned, "responses_500")
	}
	if gam.ResponsesTotal >= 1000 {
		earned = append(earned, "responses_1000")
	}

	// XP milestones
	if gam.TotalXP >= 1000 {
		earned = append(earned, "xp_1000")
	}
	if gam.TotalXP >= 10000 {
		earned = append(earned, "xp_10000")
	}
	if gam.TotalXP >= 50000 {
		earned = append(earned, "xp_50000")
	}

	// Level milestones
	switch rank := levelRank(gam.BestLevel); {
	case rank >= 5:
		earned = append(earned, "level_advanced", "level_upper", "level_intermediate")
	case rank == 4:
		earned = append(earned, "level_upper", "level_intermediate")
	case rank == 3:
		earned = append(earned, "level_intermediate")
	}

	return earned
}

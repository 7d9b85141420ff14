package practice

import "github.com/speakeasy-practice/backend/internal/models"

// ScorePercent is the share of passed prompts, 0-100. An empty session scores 0.
func ScorePercent(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

// ClassifyLevel maps an evaluation percentage to a proficiency level.
func ClassifyLevel(percent float64) string {
	switch {
	case percent >= 90:
		return models.LevelAdvanced
	case percent >= 70:
		return models.LevelUpperIntermediate
	case percent >= 50:
		return models.LevelIntermediate
	case percent >= 30:
		return models.LevelElementary
	default:
		return models.LevelBeginner
	}
}

package generator

import (
	"github.com/speakeasy-practice/backend/internal/analyzer"
	"github.com/speakeasy-practice/backend/internal/textnorm"
)

const (
	QualityReject  = "reject"
	QualityFlagged = "flagged"
	QualityPassed  = "passed"
)

// Quality holds the structural checks and the diversity measure for one
// drafted set.
type Quality struct {
	AnswerCountOK   bool
	AnswersDistinct bool
	LengthsOK       bool
	Diversity       float64
}

// ComputeQuality checks a set against the shape a useful learning prompt has:
// three to five answers, no two alike after normalization, each between two
// and twenty words, and little keyword overlap between answers.
func ComputeQuality(set GeneratedSet) Quality {
	normalized := make([]string, len(set.Answers))
	for i, a := range set.Answers {
		normalized[i] = textnorm.Normalize(a)
	}

	distinct := true
	lengthsOK := true
	seen := make(map[string]bool, len(normalized))
	for _, n := range normalized {
		if seen[n] {
			distinct = false
		}
		seen[n] = true

		words := len(textnorm.Split(n))
		if n == "" || words < 2 || words > 20 {
			lengthsOK = false
		}
	}

	return Quality{
		AnswerCountOK:   len(set.Answers) >= 3 && len(set.Answers) <= MaxAnswers,
		AnswersDistinct: distinct,
		LengthsOK:       lengthsOK,
		Diversity:       diversity(normalized),
	}
}

// diversity is one minus the mean pairwise keyword overlap, where a pair's
// overlap averages the keyword score in both directions.
func diversity(answers []string) float64 {
	pairs := 0
	total := 0.0
	for i := 0; i < len(answers); i++ {
		for j := i + 1; j < len(answers); j++ {
			total += (analyzer.KeywordScore(answers[i], answers[j]) + analyzer.KeywordScore(answers[j], answers[i])) / 200
			pairs++
		}
	}
	if pairs == 0 {
		return 1
	}
	return 1 - total/float64(pairs)
}

// Score is the composite quality in [0, 1].
//
// Formula: count * 0.25 + distinct * 0.25 + lengths * 0.20 + diversity * 0.30
func (q Quality) Score() float64 {
	score := q.Diversity * 0.30
	if q.AnswerCountOK {
		score += 0.25
	}
	if q.AnswersDistinct {
		score += 0.25
	}
	if q.LengthsOK {
		score += 0.20
	}
	return score
}

// ClassifyQuality returns QualityReject below 0.50, QualityFlagged up to
// 0.70, and QualityPassed above.
func ClassifyQuality(score float64) string {
	if score < 0.50 {
		return QualityReject
	}
	if score <= 0.70 {
		return QualityFlagged
	}
	return QualityPassed
}

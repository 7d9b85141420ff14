package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/speakeasy-practice/backend/internal/textnorm"
)

// MaxAnswers is the most answer templates a drafted prompt may carry.
const MaxAnswers = 5

type Batch struct {
	Sets []GeneratedSet `json:"sets"`
}

type GeneratedSet struct {
	Question string   `json:"question"`
	Answers  []string `json:"answers"`
}

type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

// ParseResponse decodes a model response, tolerating a surrounding code
// fence, and rejects any batch that fails validateBatch.
func ParseResponse(responseBody string) (*Batch, error) {
	cleaned := stripCodeFences(responseBody)

	var batch Batch
	if err := json.Unmarshal([]byte(cleaned), &batch); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	for i := range batch.Sets {
		batch.Sets[i].Question = strings.TrimSpace(batch.Sets[i].Question)
		for j, a := range batch.Sets[i].Answers {
			batch.Sets[i].Answers[j] = strings.TrimSpace(a)
		}
	}

	if err := validateBatch(&batch); err != nil {
		return nil, err
	}

	return &batch, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSpace(s)
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}

func validateBatch(batch *Batch) error {
	if len(batch.Sets) == 0 {
		return &ValidationError{Errors: []string{"no sets in batch"}}
	}

	var errs []string
	seen := make(map[string]int)

	for i, set := range batch.Sets {
		n := i + 1

		if set.Question == "" {
			errs = append(errs, fmt.Sprintf("set %d: empty question", n))
		} else if !strings.HasSuffix(set.Question, "?") {
			errs = append(errs, fmt.Sprintf("set %d: question %q does not end with '?'", n, set.Question))
		}

		key := textnorm.Normalize(set.Question)
		if first, ok := seen[key]; ok && key != "" {
			errs = append(errs, fmt.Sprintf("set %d: duplicates the question of set %d", n, first))
		} else {
			seen[key] = n
		}

		switch {
		case len(set.Answers) == 0:
			errs = append(errs, fmt.Sprintf("set %d: no answers", n))
		case len(set.Answers) > MaxAnswers:
			errs = append(errs, fmt.Sprintf("set %d: %d answers, at most %d allowed", n, len(set.Answers), MaxAnswers))
		}

		for j, a := range set.Answers {
			if a == "" {
				errs = append(errs, fmt.Sprintf("set %d: answer %d is empty", n, j+1))
			}
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// Warnings lists soft problems in a valid batch: low-quality sets and
// questions whose keywords overlap heavily with another question.
func Warnings(batch *Batch) []string {
	var warnings []string

	for i, set := range batch.Sets {
		q := ComputeQuality(set)
		if class := ClassifyQuality(q.Score()); class != QualityPassed {
			warnings = append(warnings, fmt.Sprintf("set %d %q: quality %.2f (%s)", i+1, set.Question, q.Score(), class))
		}
	}

	tokenSets := make([]map[string]bool, len(batch.Sets))
	for i, set := range batch.Sets {
		tokenSets[i] = tokenize(set.Question)
	}
	for i := 0; i < len(batch.Sets); i++ {
		for j := i + 1; j < len(batch.Sets); j++ {
			overlap := jaccardSimilarity(tokenSets[i], tokenSets[j])
			if overlap > 0.60 {
				warnings = append(warnings, fmt.Sprintf("sets %d and %d have %.0f%% keyword overlap", i+1, j+1, overlap*100))
			}
		}
	}

	return warnings
}

func tokenize(s string) map[string]bool {
	tokens := make(map[string]bool)
	for _, word := range textnorm.ExtractKeywords(textnorm.Normalize(strings.TrimSuffix(s, "?"))) {
		tokens[strings.TrimSuffix(word, "?")] = true
	}
	return tokens
}

func jaccardSimilarity(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	intersection := 0
	for k := range a {
		if b[k] {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}

	return float64(intersection) / float64(union)
}

// Package analyzer scores a learner's spoken response against the answer
// templates of a practice prompt and picks the template to offer as a
// correction.
package analyzer

import (
	"strings"

	"github.com/speakeasy-practice/backend/internal/synonym"
	"github.com/speakeasy-practice/backend/internal/textnorm"
)

// Sub-score weights of the final score.
const (
	KeywordWeight   = 0.5
	StructureWeight = 0.2
	SemanticWeight  = 0.3
)

// Breakdown holds the three sub-scores and their weighted sum, all in [0,100].
type Breakdown struct {
	Keyword   float64 `json:"keyword"`
	Structure float64 `json:"structure"`
	Semantic  float64 `json:"semantic"`
	Final     float64 `json:"final"`
}

// Scorer compares a response with one expected phrase. It holds no mutable
// state and is safe for concurrent use.
type Scorer struct {
	synonyms synonym.Table
}

// NewScorer returns a Scorer that credits synonyms from table. A nil table
// disables synonym credit.
func NewScorer(table synonym.Table) *Scorer {
	return &Scorer{synonyms: table}
}

// Score returns the weighted final score of response against expected.
func (s *Scorer) Score(response, expected string) float64 {
	return s.Breakdown(response, expected).Final
}

// Breakdown computes every sub-score of response against expected.
//
// Formula: keyword * 0.5 + structure * 0.2 + semantic * 0.3
func (s *Scorer) Breakdown(response, expected string) Breakdown {
	b := Breakdown{
		Keyword:   KeywordScore(response, expected),
		Structure: StructureScore(response, expected),
		Semantic:  s.SemanticScore(response, expected),
	}
	b.Final = b.Keyword*KeywordWeight + b.Structure*StructureWeight + b.Semantic*SemanticWeight
	return b
}

// KeywordScore is the percentage of expected's keywords found as substrings
// of response. A keyword may match inside a longer word. Zero keywords score 0.
func KeywordScore(response, expected string) float64 {
	keywords := textnorm.ExtractKeywords(expected)
	if len(keywords) == 0 {
		return 0
	}

	matched := 0
	for _, kw := range keywords {
		if strings.Contains(response, kw) {
			matched++
		}
	}
	return float64(matched) / float64(len(keywords)) * 100
}

// StructureScore rewards similar word counts (40%) and words that line up
// position by position, ignoring case (60%).
func StructureScore(response, expected string) float64 {
	respWords := textnorm.Split(response)
	expWords := textnorm.Split(expected)

	diff := len(respWords) - len(expWords)
	if diff < 0 {
		diff = -diff
	}
	lengthScore := max(0, 100-10*float64(diff))

	n := min(len(respWords), len(expWords))
	orderScore := 0.0
	if n > 0 {
		matches := 0
		for i := 0; i < n; i++ {
			if textnorm.Lower(respWords[i]) == textnorm.Lower(expWords[i]) {
				matches++
			}
		}
		orderScore = float64(matches) / float64(n) * 100
	}

	return lengthScore*0.4 + orderScore*0.6
}

// SemanticScore normalizes both texts and combines word-set overlap (70%)
// with synonym credit (30%). Each response word missing from expected earns
// credit when one of its synonyms is an expected word. Credit is directional:
// only the response word's own synonym list is consulted.
func (s *Scorer) SemanticScore(response, expected string) float64 {
	respSet := wordSet(textnorm.Split(textnorm.Normalize(response)))
	expSet := wordSet(textnorm.Split(textnorm.Normalize(expected)))

	common := 0
	for w := range respSet {
		if _, ok := expSet[w]; ok {
			common++
		}
	}
	union := len(respSet) + len(expSet) - common
	jaccard := 0.0
	if union > 0 {
		jaccard = float64(common) / float64(union)
	}

	nonMatching, credited := 0, 0
	for w := range respSet {
		if _, ok := expSet[w]; ok {
			continue
		}
		nonMatching++
		for _, syn := range s.synonyms.Of(w) {
			if _, ok := expSet[syn]; ok {
				credited++
				break
			}
		}
	}
	synonymScore := 0.0
	if nonMatching > 0 {
		synonymScore = float64(credited) / float64(nonMatching) * 100
	}

	return jaccard*100*0.7 + synonymScore*0.3
}

func wordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

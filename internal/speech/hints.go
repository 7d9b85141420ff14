package speech

import (
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/speakeasy-practice/backend/internal/textnorm"
)

const defaultHintThreshold = 0.70

// Hint pairs a word the learner said with the expected word it probably
// stands for.
type Hint struct {
	Heard      string  `json:"heard"`
	Expected   string  `json:"expected"`
	Similarity float64 `json:"similarity"`
}

// HintOption configures a Hinter.
type HintOption func(*Hinter)

// WithHintThreshold sets the minimum Jaro-Winkler similarity for a hint.
// Default: 0.70.
func WithHintThreshold(threshold float64) HintOption {
	return func(h *Hinter) {
		h.threshold = threshold
	}
}

// Hinter finds likely mispronunciations: response words that share a Double
// Metaphone code with a missing correction word and are close in spelling.
// Hints never affect scoring. A Hinter is safe for concurrent use.
type Hinter struct {
	threshold float64
}

// NewHinter returns a Hinter with the given options applied.
func NewHinter(opts ...HintOption) *Hinter {
	h := &Hinter{threshold: defaultHintThreshold}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Hints compares response with correction word by word. Each correction word
// absent from the response is paired with the closest phonetically matching
// extra word of the response. Bracketed placeholders are skipped.
func (h *Hinter) Hints(response, correction string) []Hint {
	heard := hintWords(response)
	expected := hintWords(correction)

	inExpected := make(map[string]struct{}, len(expected))
	for _, w := range expected {
		inExpected[w] = struct{}{}
	}
	inHeard := make(map[string]struct{}, len(heard))
	var extras []string
	for _, w := range heard {
		if _, dup := inHeard[w]; dup {
			continue
		}
		inHeard[w] = struct{}{}
		if _, ok := inExpected[w]; !ok {
			extras = append(extras, w)
		}
	}

	var hints []Hint
	seen := make(map[string]struct{})
	for _, want := range expected {
		if _, ok := inHeard[want]; ok {
			continue
		}
		if _, ok := seen[want]; ok {
			continue
		}
		seen[want] = struct{}{}

		wantCodes := metaphoneCodes(want)
		var best Hint
		for _, got := range extras {
			if !sharesCode(wantCodes, metaphoneCodes(got)) {
				continue
			}
			score := matchr.JaroWinkler(got, want, false)
			if score >= h.threshold && score > best.Similarity {
				best = Hint{Heard: got, Expected: want, Similarity: score}
			}
		}
		if best.Expected != "" {
			hints = append(hints, best)
		}
	}
	return hints
}

func hintWords(text string) []string {
	var out []string
	for _, w := range strings.Fields(textnorm.Normalize(text)) {
		w = strings.Trim(w, "?")
		if w == "" || strings.ContainsAny(w, "[]") {
			continue
		}
		out = append(out, w)
	}
	return out
}

func metaphoneCodes(word string) []string {
	p, s := matchr.DoubleMetaphone(word)
	codes := make([]string, 0, 2)
	if p != "" {
		codes = append(codes, p)
	}
	if s != "" && s != p {
		codes = append(codes, s)
	}
	return codes
}

func sharesCode(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

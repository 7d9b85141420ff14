// Package phrasebank stores the practice prompts and their acceptable answer
// templates, and resolves a free-form question to the closest known prompt.
//
// A Bank holds two ordered sets: the open learning set and the fixed
// evaluation set. It is read-only after construction and safe for
// concurrent use.
package phrasebank

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/speakeasy-practice/backend/internal/textnorm"
)

// FallbackResponse is returned by ExpectedResponses when no prompt matches.
const FallbackResponse = "I'm not sure how to respond to that question."

// EvaluationSize is the number of prompts an evaluation set must hold.
const EvaluationSize = 10

// ErrInvalidBank is wrapped by every validation failure from New and Load.
var ErrInvalidBank = errors.New("invalid phrase bank")

// Set names one of the two question collections.
type Set int

const (
	Learning Set = iota
	Evaluation
)

// DefaultOrder is the set order used when a caller does not pick one.
var DefaultOrder = []Set{Learning, Evaluation}

func (s Set) String() string {
	switch s {
	case Learning:
		return "learning"
	case Evaluation:
		return "evaluation"
	default:
		return fmt.Sprintf("Set(%d)", int(s))
	}
}

// ParseSet converts "learning" or "evaluation" into a Set.
func ParseSet(name string) (Set, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "learning":
		return Learning, nil
	case "evaluation":
		return Evaluation, nil
	}
	return 0, fmt.Errorf("unknown question set %q", name)
}

// Entry is one prompt with its acceptable answers, in preference order.
type Entry struct {
	Question string   `yaml:"question" json:"question"`
	Answers  []string `yaml:"answers" json:"answers"`
}

// Bank is an immutable pair of question sets.
type Bank struct {
	sets [2][]Entry
}

// New validates the two sets and returns a Bank holding copies of them.
func New(learning, evaluation []Entry) (*Bank, error) {
	var errs []error
	if len(learning) == 0 {
		errs = append(errs, errors.New("learning set is empty"))
	}
	if len(evaluation) != EvaluationSize {
		errs = append(errs, fmt.Errorf("evaluation set has %d questions, want %d", len(evaluation), EvaluationSize))
	}
	errs = append(errs, validateEntries(Learning, learning)...)
	errs = append(errs, validateEntries(Evaluation, evaluation)...)
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBank, errors.Join(errs...))
	}

	return &Bank{sets: [2][]Entry{cloneEntries(learning), cloneEntries(evaluation)}}, nil
}

func validateEntries(set Set, entries []Entry) []error {
	var errs []error
	for i, e := range entries {
		if strings.TrimSpace(e.Question) == "" {
			errs = append(errs, fmt.Errorf("%s[%d]: empty question", set, i))
		}
		if len(e.Answers) == 0 {
			errs = append(errs, fmt.Errorf("%s[%d] %q: no answers", set, i, e.Question))
		}
		for j, a := range e.Answers {
			if strings.TrimSpace(a) == "" {
				errs = append(errs, fmt.Errorf("%s[%d] %q: answer %d is empty", set, i, e.Question, j))
			}
		}
	}
	return errs
}

func cloneEntries(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = Entry{Question: e.Question, Answers: slices.Clone(e.Answers)}
	}
	return out
}

// Questions returns the prompts of set in their stored order, or nil for an
// unknown set.
func (b *Bank) Questions(set Set) []string {
	entries := b.entries(set)
	if entries == nil {
		return nil
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Question
	}
	return out
}

// Entries returns a copy of the entries of set.
func (b *Bank) Entries(set Set) []Entry {
	return cloneEntries(b.entries(set))
}

func (b *Bank) entries(set Set) []Entry {
	if set != Learning && set != Evaluation {
		return nil
	}
	return b.sets[set]
}

// ExpectedResponses resolves question with the default set order and falls
// back to a one-element list holding FallbackResponse. It never returns an
// empty slice.
func (b *Bank) ExpectedResponses(question string) []string {
	if answers, ok := b.Lookup(question); ok {
		return answers
	}
	return []string{FallbackResponse}
}

// Lookup resolves question against the sets in order (DefaultOrder when none
// is given). Resolution runs two passes and the first hit wins:
//
//  1. containment: a known question contains the input, or the input
//     contains the known question (both lowercased);
//  2. overlap: at least half of a known question's words appear among the
//     input's words.
//
// Each pass visits every set in order before the next pass starts. Short
// inputs match eagerly; an empty question is contained in every prompt.
func (b *Bank) Lookup(question string, order ...Set) ([]string, bool) {
	if len(order) == 0 {
		order = DefaultOrder
	}
	input := strings.TrimFunc(textnorm.Lower(question), textnorm.IsSpace)

	for _, set := range order {
		for _, e := range b.entries(set) {
			q := textnorm.Lower(e.Question)
			if strings.Contains(q, input) || strings.Contains(input, q) {
				return slices.Clone(e.Answers), true
			}
		}
	}

	inputWords := textnorm.Split(input)
	for _, set := range order {
		for _, e := range b.entries(set) {
			qWords := textnorm.Split(textnorm.Lower(e.Question))
			common := 0
			for _, w := range qWords {
				if slices.Contains(inputWords, w) {
					common++
				}
			}
			if float64(common) >= float64(len(qWords))*0.5 {
				return slices.Clone(e.Answers), true
			}
		}
	}

	return nil, false
}

package analyzer

import (
	"slices"
	"strings"

	"github.com/speakeasy-practice/backend/internal/phrasebank"
	"github.com/speakeasy-practice/backend/internal/synonym"
	"github.com/speakeasy-practice/backend/internal/textnorm"
)

const (
	// PassThreshold is the score a response must strictly exceed to pass.
	PassThreshold = 70.0
	// NeutralScore is awarded when the prompt is unknown to the bank.
	NeutralScore = 50.0
	// NoCorrection is returned when a prompt has no templates to offer.
	NoCorrection = "I'm not sure what the correct answer is."
)

// Result is the outcome of one evaluation. Correction is set whenever the
// response did not pass.
type Result struct {
	Score      float64    `json:"score"`
	Passed     bool       `json:"passed"`
	Correction string     `json:"correction,omitempty"`
	Matched    bool       `json:"matched"`
	Breakdown  *Breakdown `json:"breakdown,omitempty"`
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithSetOrder sets the order in which the phrase bank sets are searched.
func WithSetOrder(order ...phrasebank.Set) Option {
	return func(e *Evaluator) {
		if len(order) > 0 {
			e.order = slices.Clone(order)
		}
	}
}

// WithScorer replaces the default synonym-backed Scorer.
func WithScorer(s *Scorer) Option {
	return func(e *Evaluator) {
		e.scorer = s
	}
}

// Evaluator grades responses to prompts from a phrase bank.
type Evaluator struct {
	bank   *phrasebank.Bank
	scorer *Scorer
	order  []phrasebank.Set
}

// NewEvaluator returns an Evaluator over bank using the default synonym table
// and set order.
func NewEvaluator(bank *phrasebank.Bank, opts ...Option) *Evaluator {
	e := &Evaluator{
		bank:   bank,
		scorer: NewScorer(synonym.Default()),
		order:  slices.Clone(phrasebank.DefaultOrder),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Bank returns the phrase bank the Evaluator reads from.
func (e *Evaluator) Bank() *phrasebank.Bank {
	return e.bank
}

// Evaluate grades response against the templates of question.
//
// A blank response scores 0. An unknown question scores NeutralScore.
// Otherwise the normalized response is scored against each template as
// stored, and the best score counts. Template keywords keep their case and
// punctuation, so a keyword like "City." never matches a normalized response.
// Passing requires a score strictly above PassThreshold.
func (e *Evaluator) Evaluate(question, response string) Result {
	res := e.score(question, response)
	res.Passed = res.Score > PassThreshold
	if !res.Passed {
		res.Correction = e.GenerateCorrection(question, response)
	}
	return res
}

// Score is Evaluate without the correction.
func (e *Evaluator) Score(question, response string) float64 {
	return e.score(question, response).Score
}

func (e *Evaluator) score(question, response string) Result {
	if strings.TrimFunc(response, textnorm.IsSpace) == "" {
		return Result{}
	}

	normQuestion := textnorm.Normalize(question)
	normResponse := textnorm.Normalize(response)

	candidates, ok := e.bank.Lookup(normQuestion, e.order...)
	if !ok || len(candidates) == 0 {
		return Result{Score: NeutralScore}
	}

	res := Result{Matched: true}
	for _, c := range candidates {
		b := e.scorer.Breakdown(normResponse, c)
		if b.Final > res.Score {
			res.Score = b.Final
			res.Breakdown = &b
		}
	}
	return res
}

// ExpectedResponses returns the templates for question in the Evaluator's
// set order, or the bank's fallback line when nothing matches.
func (e *Evaluator) ExpectedResponses(question string) []string {
	if answers, ok := e.bank.Lookup(question, e.order...); ok {
		return answers
	}
	return []string{phrasebank.FallbackResponse}
}

// GenerateCorrection returns the template closest to response. The first
// template is the baseline, and a later one replaces it only with a strictly
// higher score, so ties keep the earliest.
func (e *Evaluator) GenerateCorrection(question, response string) string {
	candidates := e.ExpectedResponses(question)
	if len(candidates) == 0 {
		return NoCorrection
	}

	normResponse := textnorm.Normalize(response)
	best, bestScore := candidates[0], 0.0
	for _, c := range candidates {
		if s := e.scorer.Score(normResponse, textnorm.Normalize(c)); s > bestScore {
			best, bestScore = c, s
		}
	}
	return best
}

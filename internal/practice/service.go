// Package practice runs learning and evaluation sessions over the phrase bank:
// it grades each response, tracks progress through the prompts, reports the
// final level, and hands rewards off to gamification.
package practice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/speakeasy-practice/backend/internal/analyzer"
	"github.com/speakeasy-practice/backend/internal/gamification"
	"github.com/speakeasy-practice/backend/internal/logging"
	"github.com/speakeasy-practice/backend/internal/metrics"
	"github.com/speakeasy-practice/backend/internal/models"
	"github.com/speakeasy-practice/backend/internal/phrasebank"
	"github.com/speakeasy-practice/backend/internal/speech"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionComplete = errors.New("session already completed")
	ErrWrongKind       = errors.New("operation not supported for this session kind")
	ErrInvalidKind     = errors.New("kind must be learning or evaluation")
	ErrPromptMissing   = errors.New("session prompt is no longer in the phrase bank")
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Repository persists sessions and attempts. GetSession returns
// ErrSessionNotFound for unknown IDs.
type Repository interface {
	CreateSession(ctx context.Context, s *models.PracticeSession) error
	GetSession(ctx context.Context, id string) (*models.PracticeSession, error)
	UpdateSession(ctx context.Context, s *models.PracticeSession) error
	ListSessions(ctx context.Context, userID int64, limit int) ([]models.PracticeSession, error)
	CreateAttempt(ctx context.Context, a *models.Attempt) error
	ListAttempts(ctx context.Context, sessionID string) ([]models.Attempt, error)
}

// Rewarder grants XP for responses and finished sessions. *gamification.Service
// implements it.
type Rewarder interface {
	RecordResponse(ctx context.Context, userID int64, score float64, passed bool, combo int) (int, error)
	CompleteSession(ctx context.Context, userID int64, sum gamification.SessionSummary) (*models.SessionCompleteRewards, error)
}

// EvaluationResult is a graded response with the line to speak back and any
// pronunciation hints.
type EvaluationResult struct {
	analyzer.Result
	Feedback string        `json:"feedback"`
	Hints    []speech.Hint `json:"hints"`
}

// Option configures a Service.
type Option func(*Service)

// WithRewarder enables XP and achievements.
func WithRewarder(r Rewarder) Option {
	return func(s *Service) {
		s.rewards = r
	}
}

// WithHinter replaces the default pronunciation Hinter.
func WithHinter(h *speech.Hinter) Option {
	return func(s *Service) {
		s.hinter = h
	}
}

type Service struct {
	repo       Repository
	bank       *phrasebank.Bank
	learning   *analyzer.Evaluator
	evaluation *analyzer.Evaluator
	hinter     *speech.Hinter
	rewards    Rewarder
	locks      sessionLocks
	now        func() time.Time
}

// NewService returns a Service over bank. Learning prompts resolve against
// the learning set first; evaluation prompts prefer the evaluation set.
func NewService(repo Repository, bank *phrasebank.Bank, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		bank:       bank,
		learning:   analyzer.NewEvaluator(bank),
		evaluation: analyzer.NewEvaluator(bank, analyzer.WithSetOrder(phrasebank.Evaluation, phrasebank.Learning)),
		hinter:     speech.NewHinter(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func setFor(kind models.SessionKind) (phrasebank.Set, error) {
	switch kind {
	case models.SessionLearning:
		return phrasebank.Learning, nil
	case models.SessionEvaluation:
		return phrasebank.Evaluation, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
}

func (s *Service) evaluatorFor(set phrasebank.Set) *analyzer.Evaluator {
	if set == phrasebank.Evaluation {
		return s.evaluation
	}
	return s.learning
}

// ── Sessions ────────────────────────────────────────────

func (s *Service) StartSession(ctx context.Context, userID int64, kind models.SessionKind) (*models.SessionResponse, error) {
	set, err := setFor(kind)
	if err != nil {
		return nil, err
	}
	questions := s.bank.Questions(set)

	sess := &models.PracticeSession{
		ID:           uuid.NewString(),
		UserID:       userID,
		Kind:         kind,
		Status:       models.StatusActive,
		TotalPrompts: len(questions),
		StartedAt:    s.now().UTC(),
	}
	if err := s.repo.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	logger := logging.FromContext(logging.WithSessionID(ctx, sess.ID))
	logger.Info().Str("kind", string(kind)).Int("prompts", sess.TotalPrompts).Msg("session started")

	return &models.SessionResponse{Session: *sess, CurrentQuestion: questions[0]}, nil
}

func (s *Service) GetSession(ctx context.Context, userID int64, id string) (*models.SessionResponse, error) {
	sess, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return &models.SessionResponse{Session: *sess, CurrentQuestion: s.currentQuestion(sess)}, nil
}

func (s *Service) ListSessions(ctx context.Context, userID int64, limit int) ([]models.PracticeSession, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	sessions, err := s.repo.ListSessions(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	if sessions == nil {
		sessions = []models.PracticeSession{}
	}
	return sessions, nil
}

func (s *Service) ListAttempts(ctx context.Context, userID int64, id string) ([]models.Attempt, error) {
	if _, err := s.load(ctx, userID, id); err != nil {
		return nil, err
	}
	attempts, err := s.repo.ListAttempts(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	if attempts == nil {
		attempts = []models.Attempt{}
	}
	return attempts, nil
}

// SubmitResponse grades text against the session's current prompt and
// records the attempt. Learning sessions stay on the prompt until Advance;
// evaluation sessions move on after every answer and complete after the last.
func (s *Service) SubmitResponse(ctx context.Context, userID int64, id string, req models.SubmitResponseRequest) (*models.SubmitResponseResult, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	sess, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if sess.Status == models.StatusCompleted {
		return nil, ErrSessionComplete
	}
	ctx = logging.WithSessionID(ctx, sess.ID)
	logger := logging.FromContext(ctx)

	set, err := setFor(sess.Kind)
	if err != nil {
		return nil, err
	}
	question := s.currentQuestion(sess)
	if question == "" {
		return nil, fmt.Errorf("%w: prompt %d of %s set", ErrPromptMissing, sess.CurrentIndex, set)
	}
	graded := s.grade(set, question, req.Text)

	// A learning prompt only counts once, however often it is repeated
	credited := graded.Passed && (sess.Kind == models.SessionEvaluation || !sess.CurrentPassed)
	switch {
	case credited:
		sess.Combo++
		sess.MaxCombo = max(sess.MaxCombo, sess.Combo)
		sess.CorrectCount++
		sess.CurrentPassed = true
	case !graded.Passed:
		sess.Combo = 0
	}
	sess.AttemptCount++

	xp := 0
	if s.rewards != nil {
		xp, err = s.rewards.RecordResponse(ctx, userID, graded.Score, credited, sess.Combo)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to record response rewards")
		}
	}

	source, confidence := responseSource(req)
	attempt := &models.Attempt{
		SessionID:   sess.ID,
		PromptIndex: sess.CurrentIndex,
		Question:    question,
		Response:    req.Text,
		Source:      source,
		Confidence:  confidence,
		Score:       graded.Score,
		Passed:      graded.Passed,
		Correction:  graded.Correction,
		XPAwarded:   xp,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.CreateAttempt(ctx, attempt); err != nil {
		return nil, fmt.Errorf("save attempt: %w", err)
	}

	var completion *models.SessionCompletion
	if sess.Kind == models.SessionEvaluation {
		sess.CurrentIndex++
		sess.CurrentPassed = false
		if sess.CurrentIndex >= sess.TotalPrompts {
			completion = s.complete(ctx, sess)
		}
	}

	if err := s.repo.UpdateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	logger.Debug().
		Int("prompt", attempt.PromptIndex).
		Float64("score", graded.Score).
		Bool("passed", graded.Passed).
		Str("source", source).
		Msg("response graded")

	return &models.SubmitResponseResult{
		Attempt:      *attempt,
		Feedback:     graded.Feedback,
		Hints:        graded.Hints,
		Session:      *sess,
		NextQuestion: s.currentQuestion(sess),
		Completion:   completion,
	}, nil
}

// Advance moves a learning session to its next prompt, completing it after
// the last one.
func (s *Service) Advance(ctx context.Context, userID int64, id string) (*models.AdvanceResult, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	sess, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if sess.Status == models.StatusCompleted {
		return nil, ErrSessionComplete
	}
	if sess.Kind != models.SessionLearning {
		return nil, ErrWrongKind
	}
	ctx = logging.WithSessionID(ctx, sess.ID)

	sess.CurrentIndex++
	sess.CurrentPassed = false

	var completion *models.SessionCompletion
	if sess.CurrentIndex >= sess.TotalPrompts {
		completion = s.complete(ctx, sess)
	}

	if err := s.repo.UpdateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	return &models.AdvanceResult{
		Session:      *sess,
		NextQuestion: s.currentQuestion(sess),
		Completion:   completion,
	}, nil
}

// complete marks sess finished and grants session rewards. The caller
// persists sess.
func (s *Service) complete(ctx context.Context, sess *models.PracticeSession) *models.SessionCompletion {
	now := s.now().UTC()
	sess.Status = models.StatusCompleted
	sess.CompletedAt = &now
	sess.CurrentIndex = sess.TotalPrompts

	completion := &models.SessionCompletion{Announcement: speech.LearningComplete}
	if sess.Kind == models.SessionEvaluation {
		percent := ScorePercent(sess.CorrectCount, sess.TotalPrompts)
		level := ClassifyLevel(percent)
		sess.ScorePercent = &percent
		sess.Level = level
		completion.ScorePercent = percent
		completion.Level = level
		completion.Announcement = speech.EvaluationComplete(percent, level)
	}

	metrics.RecordSessionCompleted(string(sess.Kind), sess.Level)
	logger := logging.FromContext(ctx)
	logger.Info().
		Int("correct", sess.CorrectCount).
		Int("total", sess.TotalPrompts).
		Str("level", sess.Level).
		Msg("session completed")

	if s.rewards != nil {
		rewards, err := s.rewards.CompleteSession(ctx, sess.UserID, gamification.SessionSummary{
			SessionID: sess.ID,
			Kind:      sess.Kind,
			Correct:   sess.CorrectCount,
			Total:     sess.TotalPrompts,
			MaxCombo:  sess.MaxCombo,
			Level:     sess.Level,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("failed to grant session rewards")
		} else {
			completion.Rewards = rewards
		}
	}
	return completion
}

func (s *Service) load(ctx context.Context, userID int64, id string) (*models.PracticeSession, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrSessionNotFound
	}
	sess, err := s.repo.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if sess.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *Service) currentQuestion(sess *models.PracticeSession) string {
	if sess.Status != models.StatusActive {
		return ""
	}
	set, err := setFor(sess.Kind)
	if err != nil {
		return ""
	}
	questions := s.bank.Questions(set)
	if sess.CurrentIndex < 0 || sess.CurrentIndex >= len(questions) {
		return ""
	}
	return questions[sess.CurrentIndex]
}

func responseSource(req models.SubmitResponseRequest) (string, float64) {
	source := models.SourceSpeech
	if strings.EqualFold(req.Source, models.SourceManual) {
		source = models.SourceManual
	}
	switch {
	case req.Confidence != nil:
		return source, min(max(*req.Confidence, 0), 1)
	case source == models.SourceManual:
		return source, speech.ManualConfidence
	default:
		return source, 0
	}
}

// ── Stateless Evaluation ────────────────────────────────

// Evaluate grades a free-standing question/response pair. setName picks the
// set searched first ("learning" by default).
func (s *Service) Evaluate(setName, question, response string) (*EvaluationResult, error) {
	set := phrasebank.Learning
	if setName != "" {
		var err error
		if set, err = phrasebank.ParseSet(setName); err != nil {
			return nil, err
		}
	}
	graded := s.grade(set, question, response)
	return &graded, nil
}

// Questions returns the prompts of the named set.
func (s *Service) Questions(setName string) ([]string, error) {
	set, err := phrasebank.ParseSet(setName)
	if err != nil {
		return nil, err
	}
	return s.bank.Questions(set), nil
}

func (s *Service) grade(set phrasebank.Set, question, response string) EvaluationResult {
	res := s.evaluatorFor(set).Evaluate(question, response)
	metrics.RecordEvaluation(set.String(), res.Score, res.Passed, res.Correction != "")

	hints := []speech.Hint{}
	if !res.Passed {
		hints = append(hints, s.hinter.Hints(response, res.Correction)...)
	}
	return EvaluationResult{
		Result:   res,
		Feedback: speech.Feedback(res.Passed, res.Correction),
		Hints:    hints,
	}
}

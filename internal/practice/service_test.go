package practice

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/speakeasy-practice/backend/internal/gamification"
	"github.com/speakeasy-practice/backend/internal/models"
	"github.com/speakeasy-practice/backend/internal/phrasebank"
	"github.com/speakeasy-practice/backend/internal/speech"
	"github.com/speakeasy-practice/backend/internal/textnorm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const unrelated = "Tell me a joke"

type fixture struct {
	svc      *Service
	repo     *MemoryStore
	gamStore *gamification.MemoryStore
	bank     *phrasebank.Bank
}

// plainBank is the default bank with every answer stored in normalized form.
// Its keywords carry no capitals or punctuation, so an answer typed back
// verbatim scores 91 and passes.
func plainBank(t *testing.T) *phrasebank.Bank {
	t.Helper()
	normalized := func(entries []phrasebank.Entry) []phrasebank.Entry {
		for i := range entries {
			for j, a := range entries[i].Answers {
				entries[i].Answers[j] = textnorm.Normalize(a)
			}
		}
		return entries
	}
	base := phrasebank.Default()
	bank, err := phrasebank.New(normalized(base.Entries(phrasebank.Learning)), normalized(base.Entries(phrasebank.Evaluation)))
	require.NoError(t, err)
	return bank
}

func newFixture(t *testing.T) fixture {
	bank := plainBank(t)
	repo := NewMemoryStore()
	gamStore := gamification.NewMemoryStore()
	svc := NewService(repo, bank, WithRewarder(gamification.NewService(gamStore)))
	return fixture{svc: svc, repo: repo, gamStore: gamStore, bank: bank}
}

// firstAnswers returns the preferred template of every prompt in set.
func (f fixture) firstAnswers(set phrasebank.Set) []string {
	var out []string
	for _, e := range f.bank.Entries(set) {
		out = append(out, e.Answers[0])
	}
	return out
}

func say(text string) models.SubmitResponseRequest {
	return models.SubmitResponseRequest{Text: text}
}

func TestClassifyLevel(t *testing.T) {
	tests := []struct {
		percent float64
		want    string
	}{
		{100, models.LevelAdvanced},
		{90, models.LevelAdvanced},
		{89.9, models.LevelUpperIntermediate},
		{70, models.LevelUpperIntermediate},
		{69.9, models.LevelIntermediate},
		{50, models.LevelIntermediate},
		{30, models.LevelElementary},
		{29.9, models.LevelBeginner},
		{0, models.LevelBeginner},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyLevel(tt.percent), "ClassifyLevel(%v)", tt.percent)
	}
}

func TestScorePercent(t *testing.T) {
	assert.InDelta(t, 70.0, ScorePercent(7, 10), 0.001)
	assert.InDelta(t, 100.0, ScorePercent(5, 5), 0.001)
	assert.Zero(t, ScorePercent(0, 0))
}

func TestStartSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	learning, err := f.svc.StartSession(ctx, 1, models.SessionLearning)
	require.NoError(t, err)
	assert.Equal(t, 5, learning.Session.TotalPrompts)
	assert.Equal(t, models.StatusActive, learning.Session.Status)
	assert.Equal(t, "How are you today?", learning.CurrentQuestion)
	assert.Len(t, learning.Session.ID, 36)

	evaluation, err := f.svc.StartSession(ctx, 1, models.SessionEvaluation)
	require.NoError(t, err)
	assert.Equal(t, 10, evaluation.Session.TotalPrompts)

	_, err = f.svc.StartSession(ctx, 1, "quiz")
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestLearningSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	answers := f.firstAnswers(phrasebank.Learning)

	start, err := f.svc.StartSession(ctx, 1, models.SessionLearning)
	require.NoError(t, err)
	id := start.Session.ID

	res, err := f.svc.SubmitResponse(ctx, 1, id, say(answers[0]))
	require.NoError(t, err)
	assert.True(t, res.Attempt.Passed)
	assert.InDelta(t, 91.0, res.Attempt.Score, 0.001)
	assert.Equal(t, speech.PerfectFeedback, res.Feedback)
	assert.Empty(t, res.Attempt.Correction)
	assert.Equal(t, "How are you today?", res.NextQuestion, "learning stays on the prompt until advanced")
	assert.Equal(t, 1, res.Session.CorrectCount)
	assert.Equal(t, 1, res.Session.Combo)
	assert.Equal(t, 12, res.Attempt.XPAwarded)

	// Repeating a passed prompt is graded but not credited again
	res, err = f.svc.SubmitResponse(ctx, 1, id, say(answers[0]))
	require.NoError(t, err)
	assert.True(t, res.Attempt.Passed)
	assert.Equal(t, 1, res.Session.CorrectCount)
	assert.Equal(t, 0, res.Attempt.XPAwarded)

	res, err = f.svc.SubmitResponse(ctx, 1, id, say(unrelated))
	require.NoError(t, err)
	assert.False(t, res.Attempt.Passed)
	assert.NotEmpty(t, res.Attempt.Correction)
	assert.Equal(t, "Almost correct! The phrase should be: "+res.Attempt.Correction, res.Feedback)
	assert.NotNil(t, res.Hints)
	assert.Equal(t, 0, res.Session.Combo)
	assert.Equal(t, 3, res.Session.AttemptCount)

	var adv *models.AdvanceResult
	for i := 1; i < 5; i++ {
		adv, err = f.svc.Advance(ctx, 1, id)
		require.NoError(t, err)
		assert.Equal(t, f.bank.Questions(phrasebank.Learning)[i], adv.NextQuestion)
		assert.Nil(t, adv.Completion)
	}

	adv, err = f.svc.Advance(ctx, 1, id)
	require.NoError(t, err)
	require.NotNil(t, adv.Completion)
	assert.Equal(t, models.StatusCompleted, adv.Session.Status)
	assert.Equal(t, speech.LearningComplete, adv.Completion.Announcement)
	assert.Empty(t, adv.NextQuestion)
	assert.NotNil(t, adv.Session.CompletedAt)
	assert.Nil(t, adv.Session.ScorePercent)

	_, err = f.svc.SubmitResponse(ctx, 1, id, say(answers[0]))
	assert.ErrorIs(t, err, ErrSessionComplete)
	_, err = f.svc.Advance(ctx, 1, id)
	assert.ErrorIs(t, err, ErrSessionComplete)
}

func TestEvaluationSession_Perfect(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	answers := f.firstAnswers(phrasebank.Evaluation)
	questions := f.bank.Questions(phrasebank.Evaluation)

	start, err := f.svc.StartSession(ctx, 1, models.SessionEvaluation)
	require.NoError(t, err)
	id := start.Session.ID

	var res *models.SubmitResponseResult
	for i, answer := range answers {
		res, err = f.svc.SubmitResponse(ctx, 1, id, say(answer))
		require.NoError(t, err)
		assert.Equal(t, questions[i], res.Attempt.Question)
		assert.True(t, res.Attempt.Passed, "prompt %d", i)
		if i < len(answers)-1 {
			assert.Equal(t, questions[i+1], res.NextQuestion)
			assert.Nil(t, res.Completion)
		}
	}

	require.NotNil(t, res.Completion)
	assert.Equal(t, models.StatusCompleted, res.Session.Status)
	assert.Equal(t, 10, res.Session.CorrectCount)
	assert.Equal(t, 10, res.Session.MaxCombo)
	assert.InDelta(t, 100.0, res.Completion.ScorePercent, 0.001)
	assert.Equal(t, models.LevelAdvanced, res.Completion.Level)
	assert.Equal(t, "Your evaluation is complete. Your score is 100 percent. Your estimated level is Advanced.",
		res.Completion.Announcement)

	require.NotNil(t, res.Completion.Rewards)
	// 66 combo + 25 perfect + 50 level, no streak multiplier on day one
	assert.Equal(t, 141, res.Completion.Rewards.XPBreakdown.TotalXP)
	assert.Contains(t, res.Completion.Rewards.AchievementsUnlocked, "level_advanced")

	gam, err := f.gamStore.GetOrCreateGamification(ctx, 1)
	require.NoError(t, err)
	// 10 x 12 per response, 66 combo along the way, 141 on completion
	assert.Equal(t, int64(120+66+141), gam.TotalXP)
	assert.Equal(t, 10, gam.ResponsesPassedTotal)
	assert.Equal(t, models.LevelAdvanced, gam.BestLevel)

	stored, err := f.svc.GetSession(ctx, 1, id)
	require.NoError(t, err)
	require.NotNil(t, stored.Session.ScorePercent)
	assert.InDelta(t, 100.0, *stored.Session.ScorePercent, 0.001)
	assert.Empty(t, stored.CurrentQuestion)
}

func TestEvaluationSession_MixedLevel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	answers := f.firstAnswers(phrasebank.Evaluation)

	start, err := f.svc.StartSession(ctx, 1, models.SessionEvaluation)
	require.NoError(t, err)

	var res *models.SubmitResponseResult
	for i, answer := range answers {
		if i >= 7 {
			answer = unrelated
		}
		res, err = f.svc.SubmitResponse(ctx, 1, start.Session.ID, say(answer))
		require.NoError(t, err)
		assert.Equal(t, i < 7, res.Attempt.Passed, "prompt %d", i)
	}

	require.NotNil(t, res.Completion)
	assert.InDelta(t, 70.0, res.Completion.ScorePercent, 0.001)
	assert.Equal(t, models.LevelUpperIntermediate, res.Completion.Level)
	assert.Equal(t, 7, res.Session.MaxCombo)
	assert.Equal(t, 0, res.Session.Combo)

	_, err = f.svc.Advance(ctx, 1, start.Session.ID)
	assert.ErrorIs(t, err, ErrSessionComplete)
}

func TestAdvance_EvaluationRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	start, err := f.svc.StartSession(ctx, 1, models.SessionEvaluation)
	require.NoError(t, err)

	_, err = f.svc.Advance(ctx, 1, start.Session.ID)
	assert.ErrorIs(t, err, ErrWrongKind)
}

func TestSessionOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	start, err := f.svc.StartSession(ctx, 1, models.SessionLearning)
	require.NoError(t, err)

	_, err = f.svc.GetSession(ctx, 2, start.Session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = f.svc.SubmitResponse(ctx, 2, start.Session.ID, say("hi"))
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = f.svc.ListAttempts(ctx, 2, start.Session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = f.svc.GetSession(ctx, 1, "not-a-uuid")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = f.svc.GetSession(ctx, 1, "0b0c6b5e-8f3b-4a57-9d2e-7d3c1f1c0a11")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestListSessionsAndAttempts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.StartSession(ctx, 1, models.SessionLearning)
	require.NoError(t, err)
	_, err = f.svc.StartSession(ctx, 1, models.SessionEvaluation)
	require.NoError(t, err)
	_, err = f.svc.StartSession(ctx, 2, models.SessionLearning)
	require.NoError(t, err)

	sessions, err := f.svc.ListSessions(ctx, 1, 0)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)

	sessions, err = f.svc.ListSessions(ctx, 3, 0)
	require.NoError(t, err)
	assert.NotNil(t, sessions)
	assert.Empty(t, sessions)

	attempts, err := f.svc.ListAttempts(ctx, 1, a.Session.ID)
	require.NoError(t, err)
	assert.NotNil(t, attempts)
	assert.Empty(t, attempts)

	_, err = f.svc.SubmitResponse(ctx, 1, a.Session.ID, say("I am fine"))
	require.NoError(t, err)
	_, err = f.svc.SubmitResponse(ctx, 1, a.Session.ID, say(""))
	require.NoError(t, err)

	attempts, err = f.svc.ListAttempts(ctx, 1, a.Session.ID)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, "I am fine", attempts[0].Response)
	assert.Zero(t, attempts[1].Score, "a blank response scores zero")
	assert.False(t, attempts[1].Passed)
}

func TestSubmitResponse_Source(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	start, err := f.svc.StartSession(ctx, 1, models.SessionLearning)
	require.NoError(t, err)
	id := start.Session.ID

	res, err := f.svc.SubmitResponse(ctx, 1, id, models.SubmitResponseRequest{Text: "I am fine", Source: "Manual"})
	require.NoError(t, err)
	assert.Equal(t, models.SourceManual, res.Attempt.Source)
	assert.InDelta(t, speech.ManualConfidence, res.Attempt.Confidence, 0.001)

	tooHigh := 1.7
	res, err = f.svc.SubmitResponse(ctx, 1, id, models.SubmitResponseRequest{Text: "I am fine", Confidence: &tooHigh})
	require.NoError(t, err)
	assert.Equal(t, models.SourceSpeech, res.Attempt.Source)
	assert.InDelta(t, 1.0, res.Attempt.Confidence, 0.001)
}

func TestSubmitResponse_WithoutRewarder(t *testing.T) {
	svc := NewService(NewMemoryStore(), plainBank(t))
	ctx := context.Background()

	start, err := svc.StartSession(ctx, 1, models.SessionLearning)
	require.NoError(t, err)
	res, err := svc.SubmitResponse(ctx, 1, start.Session.ID, say("I am fine, thank you. How about you?"))
	require.NoError(t, err)
	assert.True(t, res.Attempt.Passed)
	assert.Zero(t, res.Attempt.XPAwarded)
}

func TestSubmitResponse_ConcurrentSubmissionsAdvanceInOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	start, err := f.svc.StartSession(ctx, 1, models.SessionEvaluation)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.SubmitResponse(ctx, 1, start.Session.ID, say("I am fine, thank you."))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	attempts, err := f.svc.ListAttempts(ctx, 1, start.Session.ID)
	require.NoError(t, err)
	require.Len(t, attempts, 10)
	var indexes []int
	for _, a := range attempts {
		indexes = append(indexes, a.PromptIndex)
	}
	sort.Ints(indexes)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, indexes)

	got, err := f.svc.GetSession(ctx, 1, start.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Session.Status)
	assert.Equal(t, 10, got.Session.AttemptCount)
}

func TestSubmitResponse_PromptRemovedFromBank(t *testing.T) {
	repo := NewMemoryStore()
	bank := phrasebank.Default()
	ctx := context.Background()

	svc := NewService(repo, bank)
	start, err := svc.StartSession(ctx, 1, models.SessionLearning)
	require.NoError(t, err)
	id := start.Session.ID
	for i := 0; i < 3; i++ {
		_, err = svc.Advance(ctx, 1, id)
		require.NoError(t, err)
	}

	// The learning set shrinks under the stored session
	smaller, err := bank.WithLearning(bank.Entries(phrasebank.Learning)[:1])
	require.NoError(t, err)
	svc = NewService(repo, smaller)

	_, err = svc.SubmitResponse(ctx, 1, id, say("I went shopping"))
	assert.ErrorIs(t, err, ErrPromptMissing)

	got, err := svc.GetSession(ctx, 1, id)
	require.NoError(t, err)
	assert.Empty(t, got.CurrentQuestion)
	assert.Equal(t, 3, got.Session.CurrentIndex)
	assert.Zero(t, got.Session.AttemptCount)
}

func TestEvaluate_StoredTemplates(t *testing.T) {
	svc := NewService(NewMemoryStore(), phrasebank.Default())

	res, err := svc.Evaluate("evaluation", "How are you today?", "I am fine, thank you.")
	require.NoError(t, err)
	assert.InDelta(t, 52.867, res.Score, 0.01)
	assert.False(t, res.Passed)
	assert.Equal(t, "Almost correct! The phrase should be: I am fine, thank you.", res.Feedback)

	res, err = svc.Evaluate("learning", "What is your favorite hobby?", "I enjoy playing tennis in my free time")
	require.NoError(t, err)
	assert.InDelta(t, 79.5, res.Score, 0.01)
	assert.True(t, res.Passed)
	assert.Equal(t, speech.PerfectFeedback, res.Feedback)
}

func TestEvaluate(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Evaluate("evaluation", "How are you today?", "I am fine, thank you.")
	require.NoError(t, err)
	assert.InDelta(t, 91.0, res.Score, 0.001)
	assert.True(t, res.Passed)
	assert.Equal(t, speech.PerfectFeedback, res.Feedback)
	assert.Empty(t, res.Hints)

	res, err = f.svc.Evaluate("", "Where do you live?", "I leave in New York City.")
	require.NoError(t, err)
	if !res.Passed {
		assert.NotEmpty(t, res.Correction)
	}

	res, err = f.svc.Evaluate("", unrelated, "Why did the chicken cross the road?")
	require.NoError(t, err)
	assert.InDelta(t, 50.0, res.Score, 0.001)
	assert.False(t, res.Matched)
	assert.Equal(t, phrasebank.FallbackResponse, res.Correction)

	_, err = f.svc.Evaluate("advanced", "How are you today?", "fine")
	assert.Error(t, err)
}

func TestQuestions(t *testing.T) {
	f := newFixture(t)

	q, err := f.svc.Questions("evaluation")
	require.NoError(t, err)
	assert.Len(t, q, 10)

	q, err = f.svc.Questions("learning")
	require.NoError(t, err)
	assert.Len(t, q, 5)

	_, err = f.svc.Questions("bonus")
	assert.Error(t, err)
}

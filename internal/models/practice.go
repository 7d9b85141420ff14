package models

import (
	"time"

	"github.com/speakeasy-practice/backend/internal/speech"
)

type SessionKind string

const (
	SessionLearning   SessionKind = "learning"
	SessionEvaluation SessionKind = "evaluation"
)

type SessionStatus string

const (
	StatusActive    SessionStatus = "active"
	StatusCompleted SessionStatus = "completed"
)

// Proficiency levels reported at the end of an evaluation session.
const (
	LevelAdvanced          = "Advanced"
	LevelUpperIntermediate = "Upper Intermediate"
	LevelIntermediate      = "Intermediate"
	LevelElementary        = "Elementary"
	LevelBeginner          = "Beginner"
)

// Response sources. A typed answer is scored exactly like a transcript.
const (
	SourceSpeech = "speech"
	SourceManual = "manual"
)

// ── Core Practice Structs ────────────────────────────────

type PracticeSession struct {
	ID            string        `json:"id"`
	UserID        int64         `json:"user_id"`
	Kind          SessionKind   `json:"kind"`
	Status        SessionStatus `json:"status"`
	CurrentIndex  int           `json:"current_index"`
	TotalPrompts  int           `json:"total_prompts"`
	CurrentPassed bool          `json:"current_passed"`
	CorrectCount  int           `json:"correct_count"`
	AttemptCount  int           `json:"attempt_count"`
	Combo         int           `json:"combo"`
	MaxCombo      int           `json:"max_combo"`
	ScorePercent  *float64      `json:"score_percent,omitempty"`
	Level         string        `json:"level,omitempty"`
	StartedAt     time.Time     `json:"started_at"`
	CompletedAt   *time.Time    `json:"completed_at,omitempty"`
}

type Attempt struct {
	ID          int64     `json:"id"`
	SessionID   string    `json:"session_id"`
	PromptIndex int       `json:"prompt_index"`
	Question    string    `json:"question"`
	Response    string    `json:"response"`
	Source      string    `json:"source"`
	Confidence  float64   `json:"confidence"`
	Score       float64   `json:"score"`
	Passed      bool      `json:"passed"`
	Correction  string    `json:"correction,omitempty"`
	XPAwarded   int       `json:"xp_awarded"`
	CreatedAt   time.Time `json:"created_at"`
}

// ── Request Types ────────────────────────────────────────

type StartSessionRequest struct {
	Kind SessionKind `json:"kind"`
}

type SubmitResponseRequest struct {
	Text       string   `json:"text"`
	Confidence *float64 `json:"confidence,omitempty"`
	Source     string   `json:"source,omitempty"`
}

type EvaluateRequest struct {
	Question string `json:"question"`
	Response string `json:"response"`
	Set      string `json:"set,omitempty"`
}

// ── Response Types ───────────────────────────────────────

type SessionResponse struct {
	Session         PracticeSession `json:"session"`
	CurrentQuestion string          `json:"current_question,omitempty"`
}

type SessionCompletion struct {
	ScorePercent float64                 `json:"score_percent,omitempty"`
	Level        string                  `json:"level,omitempty"`
	Announcement string                  `json:"announcement"`
	Rewards      *SessionCompleteRewards `json:"rewards,omitempty"`
}

type SubmitResponseResult struct {
	Attempt      Attempt            `json:"attempt"`
	Feedback     string             `json:"feedback"`
	Hints        []speech.Hint      `json:"hints"`
	Session      PracticeSession    `json:"session"`
	NextQuestion string             `json:"next_question,omitempty"`
	Completion   *SessionCompletion `json:"completion,omitempty"`
}

type AdvanceResult struct {
	Session      PracticeSession    `json:"session"`
	NextQuestion string             `json:"next_question,omitempty"`
	Completion   *SessionCompletion `json:"completion,omitempty"`
}

type QuestionsResponse struct {
	Set       string   `json:"set"`
	Questions []string `json:"questions"`
}

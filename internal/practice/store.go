package practice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/speakeasy-practice/backend/internal/models"
)

// Store persists sessions and attempts in Postgres.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const sessionColumns = `id, user_id, kind, status, current_index, total_prompts, current_passed,
		        correct_count, attempt_count, combo, max_combo, score_percent, level,
		        started_at, completed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*models.PracticeSession, error) {
	var s models.PracticeSession
	err := row.Scan(&s.ID, &s.UserID, &s.Kind, &s.Status, &s.CurrentIndex, &s.TotalPrompts, &s.CurrentPassed,
		&s.CorrectCount, &s.AttemptCount, &s.Combo, &s.MaxCombo, &s.ScorePercent, &s.Level,
		&s.StartedAt, &s.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ── Sessions ────────────────────────────────────────────

func (s *Store) CreateSession(ctx context.Context, sess *models.PracticeSession) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO practice_sessions (id, user_id, kind, status, current_index, total_prompts, started_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		sess.ID, sess.UserID, sess.Kind, sess.Status, sess.CurrentIndex, sess.TotalPrompts, sess.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, id string) (*models.PracticeSession, error) {
	sess, err := scanSession(s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM practice_sessions WHERE id = $1`,
		id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

func (s *Store) UpdateSession(ctx context.Context, sess *models.PracticeSession) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE practice_sessions SET
		    status = $2, current_index = $3, current_passed = $4,
		    correct_count = $5, attempt_count = $6, combo = $7, max_combo = $8,
		    score_percent = $9, level = $10, completed_at = $11
		 WHERE id = $1`,
		sess.ID, sess.Status, sess.CurrentIndex, sess.CurrentPassed,
		sess.CorrectCount, sess.AttemptCount, sess.Combo, sess.MaxCombo,
		sess.ScorePercent, sess.Level, sess.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

func (s *Store) ListSessions(ctx context.Context, userID int64, limit int) ([]models.PracticeSession, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sessionColumns+`
		 FROM practice_sessions
		 WHERE user_id = $1
		 ORDER BY started_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.PracticeSession
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, *sess)
	}
	return sessions, rows.Err()
}

// ── Attempts ────────────────────────────────────────────

func (s *Store) CreateAttempt(ctx context.Context, a *models.Attempt) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO practice_attempts
		    (session_id, prompt_index, question, response, source, confidence, score, passed, correction, xp_awarded, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id`,
		a.SessionID, a.PromptIndex, a.Question, a.Response, a.Source, a.Confidence,
		a.Score, a.Passed, a.Correction, a.XPAwarded, a.CreatedAt,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (s *Store) ListAttempts(ctx context.Context, sessionID string) ([]models.Attempt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, prompt_index, question, response, source, confidence,
		        score, passed, correction, xp_awarded, created_at
		 FROM practice_attempts
		 WHERE session_id = $1
		 ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var attempts []models.Attempt
	for rows.Next() {
		var a models.Attempt
		if err := rows.Scan(&a.ID, &a.SessionID, &a.PromptIndex, &a.Question, &a.Response, &a.Source, &a.Confidence,
			&a.Score, &a.Passed, &a.Correction, &a.XPAwarded, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

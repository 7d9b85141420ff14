package practice

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/speakeasy-practice/backend/internal/models"
)

// MemoryStore is a process-local Repository used by the offline CLI and tests.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]models.PracticeSession
	attempts map[string][]models.Attempt
	nextID   int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]models.PracticeSession),
		attempts: make(map[string][]models.Attempt),
	}
}

func (m *MemoryStore) CreateSession(_ context.Context, s *models.PracticeSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[s.ID] = cloneSession(*s)
	return nil
}

func (m *MemoryStore) GetSession(_ context.Context, id string) (*models.PracticeSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s = cloneSession(s)
	return &s, nil
}

func (m *MemoryStore) UpdateSession(_ context.Context, s *models.PracticeSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[s.ID]; !ok {
		return ErrSessionNotFound
	}
	m.sessions[s.ID] = cloneSession(*s)
	return nil
}

func (m *MemoryStore) ListSessions(_ context.Context, userID int64, limit int) ([]models.PracticeSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.PracticeSession
	for _, s := range m.sessions {
		if s.UserID == userID {
			out = append(out, cloneSession(s))
		}
	}
	slices.SortFunc(out, func(a, b models.PracticeSession) int {
		if c := b.StartedAt.Compare(a.StartedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) CreateAttempt(_ context.Context, a *models.Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	a.ID = m.nextID
	m.attempts[a.SessionID] = append(m.attempts[a.SessionID], *a)
	return nil
}

func (m *MemoryStore) ListAttempts(_ context.Context, sessionID string) ([]models.Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.attempts[sessionID]), nil
}

func cloneSession(s models.PracticeSession) models.PracticeSession {
	if s.ScorePercent != nil {
		p := *s.ScorePercent
		s.ScorePercent = &p
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		s.CompletedAt = &t
	}
	return s
}

package gamification

import (
	"context"
	"sync"
	"time"

	"github.com/speakeasy-practice/backend/internal/models"
)

// MemoryStore is a process-local Repository used by the offline CLI and tests.
type MemoryStore struct {
	mu           sync.Mutex
	rows         map[int64]*models.UserGamification
	achievements map[int64][]string
	events       []models.XPEvent
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rows:         make(map[int64]*models.UserGamification),
		achievements: make(map[int64][]string),
	}
}

func (m *MemoryStore) GetOrCreateGamification(_ context.Context, userID int64) (*models.UserGamification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.rows[userID]
	if !ok {
		now := time.Now().UTC()
		g = &models.UserGamification{
			UserID:          userID,
			DailyGoalTarget: 10,
			DailyGoalDate:   now.Truncate(24 * time.Hour),
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		m.rows[userID] = g
	}
	cp := *g
	return &cp, nil
}

// UpdateGamification writes the same columns as the Postgres store: totals
// maintained by AddXP and IncrementCounters are left alone.
func (m *MemoryStore) UpdateGamification(_ context.Context, userID int64, g *models.UserGamification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	row := m.row(userID)
	row.CurrentStreak = g.CurrentStreak
	row.LongestStreak = g.LongestStreak
	row.LastActiveDate = g.LastActiveDate
	row.Gems = g.Gems
	row.DailyGoalTarget = g.DailyGoalTarget
	row.DailyGoalProgress = g.DailyGoalProgress
	row.DailyGoalDate = g.DailyGoalDate
	row.SessionsCompletedTotal = g.SessionsCompletedTotal
	row.PerfectSessionsTotal = g.PerfectSessionsTotal
	row.BestLevel = g.BestLevel
	row.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryStore) IncrementCounters(_ context.Context, userID int64, passed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	row := m.row(userID)
	row.ResponsesTotal++
	if passed {
		row.ResponsesPassedTotal++
	}
	return nil
}

func (m *MemoryStore) AddXP(_ context.Context, userID int64, amount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.row(userID).TotalXP += int64(amount)
	return nil
}

func (m *MemoryStore) LogXPEvent(_ context.Context, userID int64, eventType string, xpAmount int, _ map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append(m.events, models.XPEvent{
		ID:        int64(len(m.events) + 1),
		UserID:    userID,
		EventType: eventType,
		XPAmount:  xpAmount,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

func (m *MemoryStore) GetUserAchievements(_ context.Context, userID int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string{}, m.achievements[userID]...), nil
}

func (m *MemoryStore) AwardAchievement(_ context.Context, userID int64, achievement string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.achievements[userID] {
		if a == achievement {
			return nil
		}
	}
	m.achievements[userID] = append(m.achievements[userID], achievement)
	return nil
}

func (m *MemoryStore) AwardGems(_ context.Context, userID int64, amount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.row(userID).Gems += amount
	return nil
}

func (m *MemoryStore) SetDailyGoalTarget(_ context.Context, userID int64, target int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.row(userID).DailyGoalTarget = target
	return nil
}

// Events returns the XP events logged so far, oldest first.
func (m *MemoryStore) Events() []models.XPEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]models.XPEvent(nil), m.events...)
}

// row must be called with mu held. Updates against a missing row are
// no-ops in Postgres; here they create the row so callers need not care.
func (m *MemoryStore) row(userID int64) *models.UserGamification {
	g, ok := m.rows[userID]
	if !ok {
		g = &models.UserGamification{UserID: userID, DailyGoalTarget: 10}
		m.rows[userID] = g
	}
	return g
}

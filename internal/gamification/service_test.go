package gamification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/speakeasy-practice/backend/internal/auth"
	"github.com/speakeasy-practice/backend/internal/logging"
	"github.com/speakeasy-practice/backend/internal/models"
)

var testNow = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

func newTestService() (*Service, *MemoryStore) {
	store := NewMemoryStore()
	svc := NewService(store)
	svc.now = func() time.Time { return testNow }
	return svc, store
}

func seed(store *MemoryStore, g models.UserGamification) {
	store.rows[g.UserID] = &g
}

func daysAgo(n int) *time.Time {
	d := testNow.Truncate(24*time.Hour).AddDate(0, 0, -n)
	return &d
}

func get(t *testing.T, store *MemoryStore, userID int64) *models.UserGamification {
	t.Helper()
	g, err := store.GetOrCreateGamification(context.Background(), userID)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestRecordResponse_Passed(t *testing.T) {
	svc, store := newTestService()

	xp, err := svc.RecordResponse(context.Background(), 1, 91, true, 3)
	if err != nil {
		t.Fatal(err)
	}
	if xp != 15 {
		t.Errorf("xp = %d, want 15 (12 base + 3 combo)", xp)
	}

	g := get(t, store, 1)
	if g.TotalXP != 15 {
		t.Errorf("TotalXP = %d, want 15", g.TotalXP)
	}
	if g.ResponsesTotal != 1 || g.ResponsesPassedTotal != 1 {
		t.Errorf("counters = %d/%d, want 1/1", g.ResponsesPassedTotal, g.ResponsesTotal)
	}
	if g.CurrentStreak != 1 || g.LongestStreak != 1 {
		t.Errorf("streak = %d (longest %d), want 1", g.CurrentStreak, g.LongestStreak)
	}
	if g.DailyGoalProgress != 1 {
		t.Errorf("DailyGoalProgress = %d, want 1", g.DailyGoalProgress)
	}

	events := store.Events()
	if len(events) != 1 || events[0].EventType != "response_passed" || events[0].XPAmount != 15 {
		t.Errorf("events = %+v", events)
	}
}

func TestRecordResponse_Failed(t *testing.T) {
	svc, store := newTestService()

	xp, err := svc.RecordResponse(context.Background(), 1, 40, false, 0)
	if err != nil {
		t.Fatal(err)
	}
	if xp != 0 {
		t.Errorf("xp = %d, want 0", xp)
	}

	g := get(t, store, 1)
	if g.TotalXP != 0 || g.ResponsesTotal != 1 || g.ResponsesPassedTotal != 0 {
		t.Errorf("got xp=%d total=%d passed=%d", g.TotalXP, g.ResponsesTotal, g.ResponsesPassedTotal)
	}
	// Practising keeps the streak alive even without a pass
	if g.CurrentStreak != 1 {
		t.Errorf("CurrentStreak = %d, want 1", g.CurrentStreak)
	}
}

func TestUpdateStreak(t *testing.T) {
	tests := []struct {
		name        string
		last        *time.Time
		streak      int
		longest     int
		wantStreak  int
		wantLongest int
		wantGems    int
	}{
		{"first activity", nil, 0, 0, 1, 1, 0},
		{"same day", daysAgo(0), 4, 9, 4, 9, 0},
		{"consecutive day", daysAgo(1), 4, 4, 5, 5, 0},
		{"milestone", daysAgo(1), 2, 2, 3, 3, 10},
		{"missed a day", daysAgo(2), 12, 12, 1, 12, 0},
		{"long gap", daysAgo(40), 30, 30, 1, 30, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTestService()
			seed(store, models.UserGamification{
				UserID:          1,
				LastActiveDate:  tt.last,
				CurrentStreak:   tt.streak,
				LongestStreak:   tt.longest,
				DailyGoalTarget: 10,
			})

			if err := svc.UpdateStreak(context.Background(), 1); err != nil {
				t.Fatal(err)
			}
			g := get(t, store, 1)
			if g.CurrentStreak != tt.wantStreak {
				t.Errorf("CurrentStreak = %d, want %d", g.CurrentStreak, tt.wantStreak)
			}
			if g.LongestStreak != tt.wantLongest {
				t.Errorf("LongestStreak = %d, want %d", g.LongestStreak, tt.wantLongest)
			}
			if g.Gems != tt.wantGems {
				t.Errorf("Gems = %d, want %d", g.Gems, tt.wantGems)
			}
		})
	}
}

func TestUpdateDailyGoal(t *testing.T) {
	svc, store := newTestService()
	seed(store, models.UserGamification{
		UserID:            1,
		DailyGoalTarget:   10,
		DailyGoalProgress: 9,
		DailyGoalDate:     testNow.Truncate(24 * time.Hour),
	})
	ctx := context.Background()

	if err := svc.UpdateDailyGoal(ctx, 1, 1); err != nil {
		t.Fatal(err)
	}
	g := get(t, store, 1)
	if g.DailyGoalProgress != 10 || g.Gems != 5 {
		t.Errorf("progress=%d gems=%d, want 10 and 5", g.DailyGoalProgress, g.Gems)
	}

	// Already complete: no second award
	if err := svc.UpdateDailyGoal(ctx, 1, 1); err != nil {
		t.Fatal(err)
	}
	if g := get(t, store, 1); g.Gems != 5 {
		t.Errorf("gems = %d after exceeding goal, want 5", g.Gems)
	}
}

func TestUpdateDailyGoal_NewDayResets(t *testing.T) {
	svc, store := newTestService()
	seed(store, models.UserGamification{
		UserID:            1,
		DailyGoalTarget:   10,
		DailyGoalProgress: 7,
		DailyGoalDate:     *daysAgo(1),
	})

	if err := svc.UpdateDailyGoal(context.Background(), 1, 2); err != nil {
		t.Fatal(err)
	}
	if g := get(t, store, 1); g.DailyGoalProgress != 2 {
		t.Errorf("progress = %d, want 2", g.DailyGoalProgress)
	}
}

func TestCompleteSession_PerfectEvaluation(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	resp, err := svc.CompleteSession(ctx, 1, SessionSummary{
		SessionID: "s-1",
		Kind:      models.SessionEvaluation,
		Correct:   10,
		Total:     10,
		MaxCombo:  10,
		Level:     models.LevelAdvanced,
	})
	if err != nil {
		t.Fatal(err)
	}

	b := resp.XPBreakdown
	if b.ComboBonuses != 66 || b.SessionCompletion != 25 || b.LevelBonus != 50 || b.Subtotal != 141 {
		t.Errorf("breakdown = %+v", b)
	}
	if !almostEqual(b.StreakMultiplier, 1.0) || b.TotalXP != 141 {
		t.Errorf("multiplier=%v total=%d, want 1.0 and 141", b.StreakMultiplier, b.TotalXP)
	}

	wantUnlocked := []string{"first_session", "perfect_1", "level_advanced", "level_upper", "level_intermediate"}
	if strings.Join(resp.AchievementsUnlocked, ",") != strings.Join(wantUnlocked, ",") {
		t.Errorf("unlocked = %v, want %v", resp.AchievementsUnlocked, wantUnlocked)
	}
	// 10 for the perfect session plus 50+10+100+50+25 from achievements
	if resp.GemsEarned != 245 {
		t.Errorf("GemsEarned = %d, want 245", resp.GemsEarned)
	}

	g := get(t, store, 1)
	if g.TotalXP != 141 || g.Gems != 245 {
		t.Errorf("stored xp=%d gems=%d", g.TotalXP, g.Gems)
	}
	if g.SessionsCompletedTotal != 1 || g.PerfectSessionsTotal != 1 || g.BestLevel != models.LevelAdvanced {
		t.Errorf("stored counters = %+v", g)
	}

	// Achievements are awarded once
	resp, err = svc.CompleteSession(ctx, 1, SessionSummary{Kind: models.SessionEvaluation, Correct: 2, Total: 10, Level: models.LevelBeginner})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.AchievementsUnlocked) != 0 {
		t.Errorf("second session unlocked %v", resp.AchievementsUnlocked)
	}
	if g := get(t, store, 1); g.BestLevel != models.LevelAdvanced {
		t.Errorf("BestLevel downgraded to %q", g.BestLevel)
	}
}

func TestCompleteSession_StreakMultiplier(t *testing.T) {
	svc, store := newTestService()
	seed(store, models.UserGamification{UserID: 1, CurrentStreak: 7, LongestStreak: 7, DailyGoalTarget: 10})

	resp, err := svc.CompleteSession(context.Background(), 1, SessionSummary{
		Kind:     models.SessionLearning,
		Correct:  5,
		Total:    5,
		MaxCombo: 5,
	})
	if err != nil {
		t.Fatal(err)
	}
	// (16 combo + 25 completion) * 1.25 = 51.25
	if resp.XPBreakdown.Subtotal != 41 || resp.XPBreakdown.TotalXP != 51 {
		t.Errorf("breakdown = %+v", resp.XPBreakdown)
	}
	if resp.Streak.Current != 7 || !almostEqual(resp.Streak.Multiplier, 1.25) {
		t.Errorf("streak = %+v", resp.Streak)
	}
}

func TestSetDailyGoal(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	if err := svc.SetDailyGoal(ctx, 1, 7); !errors.Is(err, ErrInvalidDailyGoal) {
		t.Errorf("target 7: err = %v, want ErrInvalidDailyGoal", err)
	}
	if err := svc.SetDailyGoal(ctx, 1, 20); err != nil {
		t.Fatal(err)
	}
	if g := get(t, store, 1); g.DailyGoalTarget != 20 {
		t.Errorf("DailyGoalTarget = %d, want 20", g.DailyGoalTarget)
	}
}

func TestGetGamification_StaleDailyProgress(t *testing.T) {
	svc, store := newTestService()
	seed(store, models.UserGamification{
		UserID:            1,
		TotalXP:           300,
		DailyGoalTarget:   10,
		DailyGoalProgress: 6,
		DailyGoalDate:     *daysAgo(1),
	})

	resp, err := svc.GetGamification(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.DailyGoalProgress != 0 {
		t.Errorf("DailyGoalProgress = %d, want 0 for a previous day", resp.DailyGoalProgress)
	}
	if resp.TotalXP != 300 {
		t.Errorf("TotalXP = %d", resp.TotalXP)
	}
	if resp.Achievements == nil {
		t.Error("Achievements should be an empty list, not null")
	}
}

func TestHandler(t *testing.T) {
	svc, _ := newTestService()
	h := NewHandler(svc)

	rec := httptest.NewRecorder()
	h.GetGamification(rec, httptest.NewRequest(http.MethodGet, "/api/v1/gamification", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/gamification", nil)
	req = req.WithContext(auth.WithUserID(req.Context(), 3))
	rec = httptest.NewRecorder()
	h.GetGamification(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body models.GamificationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.DailyGoalTarget != 10 {
		t.Errorf("DailyGoalTarget = %d, want 10", body.DailyGoalTarget)
	}

	req = httptest.NewRequest(http.MethodPut, "/api/v1/gamification/daily-goal", strings.NewReader(`{"target":4}`))
	req = req.WithContext(auth.WithUserID(req.Context(), 3))
	rec = httptest.NewRecorder()
	h.SetDailyGoal(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid goal status = %d, want 400", rec.Code)
	}
}

type eventlessStore struct {
	*MemoryStore
}

func (eventlessStore) LogXPEvent(context.Context, int64, string, int, map[string]interface{}) error {
	return errors.New("event log offline")
}

func TestUpdateDailyGoal_EventLogFailureIsLogged(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(eventlessStore{store})
	svc.now = func() time.Time { return testNow }

	var buf bytes.Buffer
	ctx := logging.WithContext(context.Background(), logging.NewWithWriter(&buf, "debug", "json"))

	if err := svc.UpdateDailyGoal(ctx, 1, 10); err != nil {
		t.Fatal(err)
	}
	if g := get(t, store, 1); g.Gems != 5 {
		t.Errorf("Gems = %d, want 5", g.Gems)
	}
	if !strings.Contains(buf.String(), "failed to log daily goal") {
		t.Errorf("log = %q, want the daily goal warning", buf.String())
	}
}

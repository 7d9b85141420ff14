package practice

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gorilla/mux"
	"github.com/speakeasy-practice/backend/internal/auth"
	"github.com/speakeasy-practice/backend/internal/models"
	"github.com/speakeasy-practice/backend/internal/phrasebank"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// asUser stands in for the JWT middleware: the X-Test-User header becomes
// the authenticated user.
func asUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if v := r.Header.Get("X-Test-User"); v != "" {
			id, _ := strconv.ParseInt(v, 10, 64)
			r = r.WithContext(auth.WithUserID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

func newTestRouter() *mux.Router {
	h := NewHandler(NewService(NewMemoryStore(), phrasebank.Default()))

	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/evaluate", h.Evaluate).Methods("POST")
	api.HandleFunc("/questions", h.Questions).Methods("GET")

	protected := api.PathPrefix("").Subrouter()
	protected.Use(asUser)
	protected.HandleFunc("/sessions", h.StartSession).Methods("POST")
	protected.HandleFunc("/sessions", h.ListSessions).Methods("GET")
	protected.HandleFunc("/sessions/{id}", h.GetSession).Methods("GET")
	protected.HandleFunc("/sessions/{id}/responses", h.SubmitResponse).Methods("POST")
	protected.HandleFunc("/sessions/{id}/advance", h.Advance).Methods("POST")
	protected.HandleFunc("/sessions/{id}/attempts", h.ListAttempts).Methods("GET")
	return r
}

func do(t *testing.T, router http.Handler, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandler_SessionFlow(t *testing.T) {
	router := newTestRouter()

	rec := do(t, router, http.MethodPost, "/api/v1/sessions", "1", models.StartSessionRequest{Kind: models.SessionEvaluation})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var started models.SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &started))
	assert.Equal(t, "How are you today?", started.CurrentQuestion)
	id := started.Session.ID

	rec = do(t, router, http.MethodPost, "/api/v1/sessions/"+id+"/responses", "1", models.SubmitResponseRequest{Text: "I am fine, thank you."})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var submitted models.SubmitResponseResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &submitted))
	assert.False(t, submitted.Attempt.Passed)
	assert.Equal(t, "I am fine, thank you.", submitted.Attempt.Correction)
	assert.Equal(t, "What is your name?", submitted.NextQuestion, "evaluation moves on after every answer")

	rec = do(t, router, http.MethodGet, "/api/v1/sessions/"+id+"/attempts", "1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var attempts struct {
		Attempts []models.Attempt `json:"attempts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &attempts))
	assert.Len(t, attempts.Attempts, 1)

	rec = do(t, router, http.MethodPost, "/api/v1/sessions/"+id+"/advance", "1", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/v1/sessions/"+id, "2", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/v1/sessions?limit=5", "1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), id)
}

func TestHandler_StartSessionDefaultsToLearning(t *testing.T) {
	router := newTestRouter()

	rec := do(t, router, http.MethodPost, "/api/v1/sessions", "1", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var started models.SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &started))
	assert.Equal(t, models.SessionLearning, started.Session.Kind)

	rec = do(t, router, http.MethodPost, "/api/v1/sessions", "1", map[string]string{"kind": "exam"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_RequiresUser(t *testing.T) {
	router := newTestRouter()

	rec := do(t, router, http.MethodPost, "/api/v1/sessions", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_Evaluate(t *testing.T) {
	router := newTestRouter()

	rec := do(t, router, http.MethodPost, "/api/v1/evaluate", "", models.EvaluateRequest{
		Question: "What is your favorite hobby?",
		Response: "I enjoy playing tennis in my free time",
		Set:      "learning",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		Score    float64 `json:"score"`
		Passed   bool    `json:"passed"`
		Feedback string  `json:"feedback"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.InDelta(t, 79.5, body.Score, 0.01)
	assert.True(t, body.Passed)

	rec = do(t, router, http.MethodPost, "/api/v1/evaluate", "", models.EvaluateRequest{Response: "hello"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/v1/evaluate", "", models.EvaluateRequest{Question: "Q?", Set: "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Questions(t *testing.T) {
	router := newTestRouter()

	rec := do(t, router, http.MethodGet, "/api/v1/questions?set=evaluation", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body models.QuestionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "evaluation", body.Set)
	assert.Len(t, body.Questions, 10)

	rec = do(t, router, http.MethodGet, "/api/v1/questions", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Questions, 5)

	rec = do(t, router, http.MethodGet, "/api/v1/questions?set=other", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_WriteErrorPromptMissing(t *testing.T) {
	h := NewHandler(NewService(NewMemoryStore(), phrasebank.Default()))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/x/responses", nil)

	h.writeError(rec, req, fmt.Errorf("%w: prompt 3 of learning set", ErrPromptMissing), "Failed to submit response")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "no longer available")
}

package practice

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/speakeasy-practice/backend/internal/auth"
	"github.com/speakeasy-practice/backend/internal/logging"
	"github.com/speakeasy-practice/backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ── Sessions ────────────────────────────────────────────

func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Kind == "" {
		req.Kind = models.SessionLearning
	}

	resp, err := h.service.StartSession(r.Context(), userID, req.Kind)
	if err != nil {
		h.writeError(w, r, err, "Failed to start session")
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	resp, err := h.service.GetSession(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err, "Failed to get session")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	sessions, err := h.service.ListSessions(r.Context(), userID, intQueryParam(r, "limit", defaultListLimit))
	if err != nil {
		h.writeError(w, r, err, "Failed to list sessions")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": sessions})
}

func (h *Handler) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.SubmitResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.SubmitResponse(r.Context(), userID, mux.Vars(r)["id"], req)
	if err != nil {
		h.writeError(w, r, err, "Failed to submit response")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Advance(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	resp, err := h.service.Advance(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err, "Failed to advance session")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ListAttempts(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	attempts, err := h.service.ListAttempts(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err, "Failed to list attempts")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"attempts": attempts})
}

// ── Stateless Evaluation ────────────────────────────────

func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req models.EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Question == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "question is required"})
		return
	}

	resp, err := h.service.Evaluate(req.Set, req.Question, req.Response)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Questions(w http.ResponseWriter, r *http.Request) {
	set := r.URL.Query().Get("set")
	if set == "" {
		set = string(models.SessionLearning)
	}

	questions, err := h.service.Questions(set)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, models.QuestionsResponse{Set: set, Questions: questions})
}

// ── Helpers ─────────────────────────────────────────────

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Session not found"})
	case errors.Is(err, ErrSessionComplete):
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "Session is already complete"})
	case errors.Is(err, ErrWrongKind):
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "Only learning sessions can be advanced"})
	case errors.Is(err, ErrInvalidKind):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: ErrInvalidKind.Error()})
	case errors.Is(err, ErrPromptMissing):
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "Session prompt is no longer available"})
	default:
		logger := logging.FromContext(r.Context())
		logger.Error().Err(err).Msg(fallback)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: fallback})
	}
}

func intQueryParam(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

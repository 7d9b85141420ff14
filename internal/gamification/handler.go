package gamification

import (
	"encoding/json"
	"errors"
	"net/http"

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

func (h *Handler) GetGamification(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	resp, err := h.service.GetGamification(r.Context(), userID)
	if err != nil {
		logger := logging.FromContext(r.Context())
		logger.Error().Err(err).Msg("get gamification")
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to get gamification state"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) SetDailyGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.SetDailyGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := h.service.SetDailyGoal(r.Context(), userID, req.Target); err != nil {
		if errors.Is(err, ErrInvalidDailyGoal) {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
			return
		}
		logger := logging.FromContext(r.Context())
		logger.Error().Err(err).Msg("set daily goal")
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to set daily goal"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"daily_goal_target": req.Target})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

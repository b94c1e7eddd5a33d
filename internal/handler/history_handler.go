package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/oranihq/orani-voice-service/internal/services/history"
	"github.com/oranihq/orani-voice-service/pkg/logger"
	"go.uber.org/zap"
)

// HistoryHandler serves the merged call/message activity feed.
type HistoryHandler struct {
	history *history.Service
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(h *history.Service) *HistoryHandler {
	return &HistoryHandler{history: h}
}

// ListByUser returns calls and messages interleaved, newest first.
func (h *HistoryHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	if userID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	entries, err := h.history.ListByUser(r.Context(), userID)
	if err != nil {
		logger.Base().Error("Failed to load history", zap.String("user_id", userID), zap.Error(err))
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/oranihq/orani-voice-service/internal/cache"
	"github.com/oranihq/orani-voice-service/internal/repository"
	"github.com/oranihq/orani-voice-service/pkg/logger"
	"go.uber.org/zap"
)

// SummaryHandler serves persisted call summaries and the live transcript
// buffer for in-flight calls.
type SummaryHandler struct {
	summaries   *repository.CallSummaryRepository
	transcripts cache.TranscriptStore
}

// NewSummaryHandler creates a new summary handler
func NewSummaryHandler(summaries *repository.CallSummaryRepository, transcripts cache.TranscriptStore) *SummaryHandler {
	return &SummaryHandler{summaries: summaries, transcripts: transcripts}
}

// ListByUser returns a user's call summaries, newest first.
func (h *SummaryHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	if userID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	summaries, err := h.summaries.ListByUser(r.Context(), userID)
	if err != nil {
		logger.Base().Error("Failed to list summaries", zap.String("user_id", userID), zap.Error(err))
		http.Error(w, "failed to load summaries", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summaries)
}

// GetByCall returns the summary for one call id, 404 until it exists.
func (h *SummaryHandler) GetByCall(w http.ResponseWriter, r *http.Request) {
	callID := mux.Vars(r)["call_id"]

	summary, err := h.summaries.GetByCallID(r.Context(), callID)
	if err != nil {
		logger.Base().Error("Failed to load summary", zap.String("call_id", callID), zap.Error(err))
		http.Error(w, "failed to load summary", http.StatusInternalServerError)
		return
	}
	if summary == nil {
		http.Error(w, "summary not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

// LiveTranscript returns the buffered transcript of an in-flight call.
func (h *SummaryHandler) LiveTranscript(w http.ResponseWriter, r *http.Request) {
	callID := mux.Vars(r)["call_id"]

	transcript, ok := h.transcripts.Get(r.Context(), callID)
	if !ok {
		http.Error(w, "no transcript buffered for call", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"call_id":    callID,
		"transcript": transcript,
	})
}

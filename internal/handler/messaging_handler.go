package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/oranihq/orani-voice-service/internal/domain"
	"github.com/oranihq/orani-voice-service/internal/services/messaging"
	"github.com/oranihq/orani-voice-service/pkg/logger"
	"go.uber.org/zap"
)

// MessagingHandler handles outbound sends and thread reads.
type MessagingHandler struct {
	messaging *messaging.Service
}

// NewMessagingHandler creates a new messaging handler
func NewMessagingHandler(m *messaging.Service) *MessagingHandler {
	return &MessagingHandler{messaging: m}
}

// Send sends an SMS/MMS from the user's business number.
func (h *MessagingHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req domain.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.ToNumber == "" {
		http.Error(w, "user_id and to_number are required", http.StatusBadRequest)
		return
	}
	if req.Body == "" && len(req.MediaURLs) == 0 {
		http.Error(w, "message body or media is required", http.StatusBadRequest)
		return
	}

	message, err := h.messaging.SendMessage(r.Context(), req)
	if err != nil {
		logger.Base().Error("Failed to send message", zap.String("user_id", req.UserID), zap.Error(err))
		switch {
		case errors.Is(err, domain.ErrNotResolved):
			http.Error(w, "user has no business number", http.StatusConflict)
		case errors.Is(err, domain.ErrUpstream):
			http.Error(w, "message could not be sent", http.StatusBadGateway)
		default:
			http.Error(w, "failed to send message", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(message)
}

// ListByUser returns all of a user's messages, newest first.
func (h *MessagingHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	messages, err := h.messaging.ListByUser(r.Context(), userID)
	if err != nil {
		logger.Base().Error("Failed to list messages", zap.String("user_id", userID), zap.Error(err))
		http.Error(w, "failed to load messages", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messages)
}

// Thread returns the conversation with one customer number, oldest first.
func (h *MessagingHandler) Thread(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID := vars["user_id"]
	number := vars["number"]

	messages, err := h.messaging.Thread(r.Context(), userID, number)
	if err != nil {
		logger.Base().Error("Failed to load thread",
			zap.String("user_id", userID), zap.String("number", number), zap.Error(err))
		http.Error(w, "failed to load thread", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messages)
}

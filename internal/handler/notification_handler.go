package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/oranihq/orani-voice-service/internal/domain"
	"github.com/oranihq/orani-voice-service/internal/notify"
	"github.com/oranihq/orani-voice-service/internal/repository"
	"github.com/oranihq/orani-voice-service/pkg/logger"
	"go.uber.org/zap"
)

// NotificationHandler exposes the live event stream and push-token
// registration.
type NotificationHandler struct {
	broadcaster *notify.Broadcaster
	profiles    *repository.ProfileRepository
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(b *notify.Broadcaster, profiles *repository.ProfileRepository) *NotificationHandler {
	return &NotificationHandler{broadcaster: b, profiles: profiles}
}

// Stream serves server-sent events until the client disconnects.
func (h *NotificationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	// The server-wide write timeout would sever the stream; clear the
	// deadline for this connection so it lives until the client leaves.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		logger.Base().Warn("Could not clear write deadline for event stream", zap.Error(err))
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events, cancel := h.broadcaster.Subscribe()
	defer cancel()

	// Initial comment so proxies open the stream immediately.
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case payload, open := <-events:
			if !open {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

// RegisterFCMToken stores a device push token on the user's profile.
func (h *NotificationHandler) RegisterFCMToken(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterFCMTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.FCMToken == "" {
		http.Error(w, "user_id and fcm_token are required", http.StatusBadRequest)
		return
	}

	if err := h.profiles.UpdateFCMToken(r.Context(), req.UserID, req.FCMToken); err != nil {
		if errors.Is(err, domain.ErrNotResolved) {
			http.Error(w, "user has no profile", http.StatusNotFound)
			return
		}
		logger.Base().Error("Failed to store push token", zap.String("user_id", req.UserID), zap.Error(err))
		http.Error(w, "failed to store push token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "registered"})
}

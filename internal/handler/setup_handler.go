package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/oranihq/orani-voice-service/internal/domain"
	"github.com/oranihq/orani-voice-service/internal/services/provisioner"
	"github.com/oranihq/orani-voice-service/pkg/logger"
	"go.uber.org/zap"
)

// SetupHandler handles assistant and phone-number provisioning requests.
type SetupHandler struct {
	provisioner *provisioner.Service
}

// NewSetupHandler creates a new setup handler
func NewSetupHandler(p *provisioner.Service) *SetupHandler {
	return &SetupHandler{provisioner: p}
}

// SetupAssistant creates or replaces a user's assistant and profile.
func (h *SetupHandler) SetupAssistant(w http.ResponseWriter, r *http.Request) {
	var req domain.AssistantSetupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	assistant, err := h.provisioner.UpsertAssistant(r.Context(), req)
	if err != nil {
		logger.Base().Error("Assistant setup failed", zap.String("user_id", req.UserID), zap.Error(err))
		if errors.Is(err, domain.ErrProvisioning) {
			http.Error(w, "assistant provisioning failed", http.StatusBadGateway)
			return
		}
		http.Error(w, "assistant setup failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(assistant)
}

// SetupPhone binds a phone number to the user's assistant.
func (h *SetupHandler) SetupPhone(w http.ResponseWriter, r *http.Request) {
	var req domain.PhoneSetupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	number, err := h.provisioner.SetupPhoneNumber(r.Context(), req)
	if err != nil {
		logger.Base().Error("Phone setup failed", zap.String("user_id", req.UserID), zap.Error(err))
		switch {
		case errors.Is(err, domain.ErrNoAssistant):
			http.Error(w, "assistant must be set up before binding a number", http.StatusConflict)
		case errors.Is(err, domain.ErrProvisioning):
			http.Error(w, "phone provisioning failed", http.StatusBadGateway)
		default:
			http.Error(w, "phone setup failed", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(number)
}

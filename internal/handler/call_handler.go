package handler

import (
	"encoding/json"
	"net/http"

	"github.com/oranihq/orani-voice-service/internal/adapters/vapi"
	"github.com/oranihq/orani-voice-service/internal/domain"
	"github.com/oranihq/orani-voice-service/internal/repository"
	"github.com/oranihq/orani-voice-service/pkg/logger"
	"github.com/oranihq/orani-voice-service/pkg/twilio"
	"go.uber.org/zap"
)

// CallHandler mints softphone access tokens and places assistant-driven
// outbound calls.
type CallHandler struct {
	tokens    *twilio.AccessTokenService
	vapi      *vapi.Client
	directory *repository.DirectoryRepository
}

// NewCallHandler creates a new call handler
func NewCallHandler(tokens *twilio.AccessTokenService, client *vapi.Client, directory *repository.DirectoryRepository) *CallHandler {
	return &CallHandler{tokens: tokens, vapi: client, directory: directory}
}

// Token mints a voice access token for the softphone client. The token
// identity is the user id, matching the <Client> dial target used when
// routing inbound calls.
func (h *CallHandler) Token(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}
	if !h.tokens.Enabled() {
		http.Error(w, "voice tokens are not configured", http.StatusServiceUnavailable)
		return
	}

	token, err := h.tokens.VoiceToken(userID)
	if err != nil {
		logger.Base().Error("Failed to mint voice token", zap.String("user_id", userID), zap.Error(err))
		http.Error(w, "failed to mint voice token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"identity": userID,
		"token":    token,
	})
}

// Outbound places an assistant-initiated call to a customer number.
func (h *CallHandler) Outbound(w http.ResponseWriter, r *http.Request) {
	var req domain.OutboundCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.ToNumber == "" {
		http.Error(w, "user_id and phone_number_to_call are required", http.StatusBadRequest)
		return
	}

	assistant, err := h.directory.GetAssistantByUser(r.Context(), req.UserID)
	if err != nil || assistant == nil {
		http.Error(w, "user has no assistant", http.StatusConflict)
		return
	}

	fromNumber := req.FromNumber
	if fromNumber == "" {
		number, err := h.directory.GetNumberByUser(r.Context(), req.UserID)
		if err != nil || number == nil {
			http.Error(w, "user has no business number", http.StatusConflict)
			return
		}
		fromNumber = number.Number
	}

	local, err := h.directory.GetPhoneNumber(r.Context(), fromNumber)
	if err != nil || local == nil || local.RemotePhoneID == "" {
		http.Error(w, "number is not provisioned for outbound calls", http.StatusConflict)
		return
	}

	call, err := h.vapi.CreateOutboundCall(r.Context(), vapi.OutboundCallConfig{
		AssistantID:   assistant.RemoteAssistantID,
		PhoneNumberID: local.RemotePhoneID,
		Customer:      &vapi.Customer{Number: req.ToNumber},
		Type:          "outboundPhoneCall",
	})
	if err != nil {
		logger.Base().Error("Failed to place outbound call",
			zap.String("user_id", req.UserID), zap.Error(err))
		http.Error(w, "failed to place outbound call", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(call)
}

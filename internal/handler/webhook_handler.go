package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/oranihq/orani-voice-service/internal/services/callrouter"
	"github.com/oranihq/orani-voice-service/internal/services/messaging"
	"github.com/oranihq/orani-voice-service/internal/services/reconciler"
	"github.com/oranihq/orani-voice-service/pkg/logger"
	"go.uber.org/zap"
)

// emptyMessagingResponse acknowledges an inbound SMS without replying.
const emptyMessagingResponse = `<?xml version="1.0" encoding="UTF-8"?><Response></Response>`

// WebhookHandler terminates provider callbacks: voice webhooks from the
// call-AI provider and call/SMS webhooks from the telephony provider.
// Responses are always 200; internal failures degrade, they never bounce
// the webhook back for retry storms.
type WebhookHandler struct {
	router     *callrouter.Service
	reconciler *reconciler.Service
	messaging  *messaging.Service
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(router *callrouter.Service, rec *reconciler.Service, msg *messaging.Service) *WebhookHandler {
	return &WebhookHandler{router: router, reconciler: rec, messaging: msg}
}

// HandleVapiWebhook processes call lifecycle events from the AI provider.
func (h *WebhookHandler) HandleVapiWebhook(w http.ResponseWriter, r *http.Request) {
	var env reconciler.Envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		logger.Base().Warn("Malformed provider webhook body", zap.Error(err))
		// Ack anyway; a malformed body will not improve on redelivery.
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(reconciler.Ack{Status: "received"})
		return
	}

	ack := h.reconciler.HandleEvent(r.Context(), env)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ack)
}

// HandleInboundCall answers the telephony provider's inbound-call
// webhook with the dial instruction for the called number's owner.
func (h *WebhookHandler) HandleInboundCall(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		logger.Base().Warn("Malformed inbound call form", zap.Error(err))
	}
	called := r.FormValue("To")
	caller := r.FormValue("From")

	decision := h.router.RouteInbound(r.Context(), called, caller)

	w.Header().Set("Content-Type", "application/xml")
	w.Write([]byte(decision.TwiML))
}

// HandleDialStatus answers the post-Dial callback, redirecting unanswered
// calls to the AI assistant.
func (h *WebhookHandler) HandleDialStatus(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		logger.Base().Warn("Malformed dial status form", zap.Error(err))
	}
	dialStatus := r.FormValue("DialCallStatus")
	assistantID := r.URL.Query().Get("assistantId")

	decision := h.router.HandleDialStatus(r.Context(), dialStatus, assistantID)

	w.Header().Set("Content-Type", "application/xml")
	w.Write([]byte(decision.TwiML))
}

// HandleInboundMessage records an inbound SMS/MMS and acknowledges it
// with an empty reply document.
func (h *WebhookHandler) HandleInboundMessage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		logger.Base().Warn("Malformed inbound message form", zap.Error(err))
	}

	mediaURLs := collectMediaURLs(r)
	_, err := h.messaging.RecordInbound(r.Context(),
		r.FormValue("MessageSid"),
		r.FormValue("To"),
		r.FormValue("From"),
		r.FormValue("Body"),
		mediaURLs,
	)
	if err != nil {
		logger.Base().Error("Failed to record inbound message", zap.Error(err))
	}

	w.Header().Set("Content-Type", "application/xml")
	w.Write([]byte(emptyMessagingResponse))
}

// collectMediaURLs gathers MediaUrl0..N form fields from an MMS webhook.
func collectMediaURLs(r *http.Request) []string {
	var urls []string
	for key, values := range r.Form {
		if strings.HasPrefix(key, "MediaUrl") && len(values) > 0 && values[0] != "" {
			urls = append(urls, values[0])
		}
	}
	return urls
}

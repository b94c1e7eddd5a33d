package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/oranihq/orani-voice-service/internal/adapters/vapi"
	"github.com/oranihq/orani-voice-service/internal/cache"
	"github.com/oranihq/orani-voice-service/internal/notify"
	"github.com/oranihq/orani-voice-service/internal/repository"
	"github.com/oranihq/orani-voice-service/internal/services/callrouter"
	"github.com/oranihq/orani-voice-service/internal/services/history"
	"github.com/oranihq/orani-voice-service/internal/services/messaging"
	"github.com/oranihq/orani-voice-service/internal/services/provisioner"
	"github.com/oranihq/orani-voice-service/internal/services/reconciler"
	"github.com/oranihq/orani-voice-service/pkg/logger"
	"github.com/oranihq/orani-voice-service/pkg/twilio"
	"golang.org/x/time/rate"
)

// Dependencies carries the wired services the HTTP layer exposes.
type Dependencies struct {
	RepoManager repository.RepositoryManager
	Provisioner *provisioner.Service
	CallRouter  *callrouter.Service
	Reconciler  *reconciler.Service
	Messaging   *messaging.Service
	History     *history.Service
	Broadcaster *notify.Broadcaster
	Transcripts cache.TranscriptStore
	Tokens      *twilio.AccessTokenService
	VapiClient  *vapi.Client
}

// HandlerManager manages all handlers and their initialization
type HandlerManager struct {
	setup         *SetupHandler
	webhooks      *WebhookHandler
	summaries     *SummaryHandler
	history       *HistoryHandler
	messaging     *MessagingHandler
	notifications *NotificationHandler
	calls         *CallHandler
}

// NewHandlerManager creates and initializes all handlers
func NewHandlerManager(deps Dependencies) *HandlerManager {
	return &HandlerManager{
		setup:         NewSetupHandler(deps.Provisioner),
		webhooks:      NewWebhookHandler(deps.CallRouter, deps.Reconciler, deps.Messaging),
		summaries:     NewSummaryHandler(deps.RepoManager.Summaries(), deps.Transcripts),
		history:       NewHistoryHandler(deps.History),
		messaging:     NewMessagingHandler(deps.Messaging),
		notifications: NewNotificationHandler(deps.Broadcaster, deps.RepoManager.Profiles()),
		calls:         NewCallHandler(deps.Tokens, deps.VapiClient, deps.RepoManager.Directory()),
	}
}

// SetupAllRoutes sets up all routes with middleware
func (hm *HandlerManager) SetupAllRoutes(router *mux.Router) {
	router.Use(LoggingMiddleware)

	router.HandleFunc("/health", handleHealth).Methods("GET")

	// Provider webhooks are registered without rate limiting.
	router.HandleFunc("/webhook/vapi", hm.webhooks.HandleVapiWebhook).Methods("POST")
	router.HandleFunc("/webhook/twilio-inbound", hm.webhooks.HandleInboundCall).Methods("POST")
	router.HandleFunc("/webhook/dial-status", hm.webhooks.HandleDialStatus).Methods("POST")
	router.HandleFunc("/webhook/sms-inbound", hm.webhooks.HandleInboundMessage).Methods("POST")

	api := router.PathPrefix("/").Subrouter()
	api.Use(mux.MiddlewareFunc(RateLimitMiddleware(rate.Limit(20), 40)))

	api.HandleFunc("/setup/assistant", hm.setup.SetupAssistant).Methods("POST")
	api.HandleFunc("/setup/phone", hm.setup.SetupPhone).Methods("POST")

	api.HandleFunc("/summaries/{user_id}", hm.summaries.ListByUser).Methods("GET")
	api.HandleFunc("/summaries/call/{call_id}", hm.summaries.GetByCall).Methods("GET")
	api.HandleFunc("/history/{user_id}", hm.history.ListByUser).Methods("GET")

	api.HandleFunc("/messaging/send", hm.messaging.Send).Methods("POST")
	api.HandleFunc("/messaging/{user_id}", hm.messaging.ListByUser).Methods("GET")
	api.HandleFunc("/messaging/{user_id}/{number}", hm.messaging.Thread).Methods("GET")

	api.HandleFunc("/notifications/stream", hm.notifications.Stream).Methods("GET")
	api.HandleFunc("/notifications/register-fcm-token", hm.notifications.RegisterFCMToken).Methods("POST")

	api.HandleFunc("/calls/token", hm.calls.Token).Methods("GET")
	api.HandleFunc("/calls/outbound", hm.calls.Outbound).Methods("POST")
	api.HandleFunc("/calls/{call_id}/transcript", hm.summaries.LiveTranscript).Methods("GET")

	logger.Base().Info("all application routes registered")
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

package callrouter

import (
	"context"
	"strconv"

	"github.com/oranihq/orani-voice-service/internal/config"
	"github.com/oranihq/orani-voice-service/internal/domain"
	"github.com/oranihq/orani-voice-service/internal/notify"
	"github.com/oranihq/orani-voice-service/internal/repository"
	"github.com/oranihq/orani-voice-service/pkg/logger"
	"github.com/twilio/twilio-go/twiml"
	"go.uber.org/zap"
)

// State is the routing state of one inbound call.
type State string

const (
	StateReceived         State = "received"
	StateResolved         State = "resolved"
	StateRouted           State = "routed"
	StateAnsweredByClient State = "answered_by_client"
	StateFallbackToAI     State = "fallback_to_ai"
	StateRejected         State = "rejected"
)

// Decision carries the outcome of a routing step: the terminal (or
// emitted) state plus the call-control document handed back to the
// telephony provider.
type Decision struct {
	State          State
	UserID         string
	AssistantID    string
	TimeoutSeconds int
	TwiML          string
}

// hangupDocument is the static fallback if TwiML rendering ever fails;
// the caller must never be left on a silent line.
const hangupDocument = `<?xml version="1.0" encoding="UTF-8"?><Response><Hangup/></Response>`

// Service decides, per inbound call, whom to ring and what to do on
// no-answer. Resolution failures always degrade to a clean hangup.
type Service struct {
	directory  *repository.DirectoryRepository
	profiles   *repository.ProfileRepository
	cfg        *config.AppConfig
	dispatcher *notify.Dispatcher
}

// NewService creates a call router.
func NewService(directory *repository.DirectoryRepository, profiles *repository.ProfileRepository, cfg *config.AppConfig, dispatcher *notify.Dispatcher) *Service {
	return &Service{
		directory:  directory,
		profiles:   profiles,
		cfg:        cfg,
		dispatcher: dispatcher,
	}
}

// RouteInbound handles a fresh inbound call to calledNumber from
// callerNumber. It resolves the owning user, emits a Dial instruction
// ringing the user's softphone client with the profile-derived timeout,
// and registers the dial-status callback for the AI fallback. Any
// resolution failure rejects the call with a hangup; this method never
// returns an error to the telephony provider.
func (s *Service) RouteInbound(ctx context.Context, calledNumber, callerNumber string) Decision {
	userID, err := s.directory.ResolveUserByNumber(ctx, calledNumber)
	if err != nil {
		logger.Base().Info("Inbound call to unresolved number, rejecting",
			zap.String("called", calledNumber), zap.Error(err))
		return Decision{State: StateRejected, TwiML: s.hangup()}
	}

	profile, err := s.profiles.GetByUser(ctx, userID)
	if err != nil || profile == nil {
		logger.Base().Warn("Inbound call for user without profile, rejecting",
			zap.String("user_id", userID))
		return Decision{State: StateRejected, UserID: userID, TwiML: s.hangup()}
	}

	assistant, err := s.directory.GetAssistantByUser(ctx, userID)
	if err != nil || assistant == nil {
		logger.Base().Warn("Inbound call for user without assistant, rejecting",
			zap.String("user_id", userID))
		return Decision{State: StateRejected, UserID: userID, TwiML: s.hangup()}
	}

	// Notification is fire-and-forget: enqueue and move on. A push
	// failure must never block or fail routing.
	if profile.FCMToken != "" {
		s.dispatcher.Enqueue(profile.FCMToken, "Incoming Call", "Call from: "+callerNumber, map[string]string{
			"type":          "incoming_call",
			"caller_number": callerNumber,
		})
	}

	timeout := profile.RingTimeoutSeconds()
	doc := s.dialClient(userID, assistant.RemoteAssistantID, timeout)

	logger.Base().Info("Inbound call routed to client",
		zap.String("user_id", userID),
		zap.String("caller", callerNumber),
		zap.Int("timeout_seconds", timeout))

	return Decision{
		State:          StateRouted,
		UserID:         userID,
		AssistantID:    assistant.RemoteAssistantID,
		TimeoutSeconds: timeout,
		TwiML:          doc,
	}
}

// HandleDialStatus handles the telephony callback after the Dial attempt.
// A no-answer class status redirects the call to the AI takeover URL for
// the assistant; an answered call needs no further action. A missing
// assistant id degrades to hangup.
func (s *Service) HandleDialStatus(ctx context.Context, dialStatus, assistantID string) Decision {
	switch dialStatus {
	case domain.DialStatusNoAnswer, domain.DialStatusBusy, domain.DialStatusFailed, domain.DialStatusCanceled:
		if assistantID == "" {
			logger.Base().Error("Cannot redirect to AI: assistant id missing from dial-status callback")
			return Decision{State: StateRejected, TwiML: s.hangup()}
		}
		logger.Base().Info("Client did not answer, handing call to AI",
			zap.String("dial_status", dialStatus),
			zap.String("assistant_id", assistantID))
		return Decision{
			State:       StateFallbackToAI,
			AssistantID: assistantID,
			TwiML:       s.redirect(s.cfg.AITakeoverURL(assistantID)),
		}
	default:
		// Answered by the human client; the call is out of our hands.
		return Decision{State: StateAnsweredByClient, AssistantID: assistantID, TwiML: s.hangup()}
	}
}

func (s *Service) dialClient(userID, assistantID string, timeoutSeconds int) string {
	dial := &twiml.VoiceDial{
		Timeout: strconv.Itoa(timeoutSeconds),
		Action:  s.cfg.DialStatusCallbackURL(assistantID),
		Method:  "POST",
		InnerElements: []twiml.Element{
			&twiml.VoiceClient{Identity: userID},
		},
	}
	doc, err := twiml.Voice([]twiml.Element{dial})
	if err != nil {
		logger.Base().Error("Failed to render dial document", zap.Error(err))
		return hangupDocument
	}
	return doc
}

func (s *Service) redirect(url string) string {
	doc, err := twiml.Voice([]twiml.Element{&twiml.VoiceRedirect{Url: url}})
	if err != nil {
		logger.Base().Error("Failed to render redirect document", zap.Error(err))
		return hangupDocument
	}
	return doc
}

func (s *Service) hangup() string {
	doc, err := twiml.Voice([]twiml.Element{&twiml.VoiceHangup{}})
	if err != nil {
		return hangupDocument
	}
	return doc
}

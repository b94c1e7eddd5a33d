package reconciler

import (
	"context"
	"time"

	"github.com/oranihq/orani-voice-service/internal/cache"
	"github.com/oranihq/orani-voice-service/internal/notify"
	"github.com/oranihq/orani-voice-service/internal/repository"
	"github.com/oranihq/orani-voice-service/internal/services/summary"
	"github.com/oranihq/orani-voice-service/pkg/logger"
	"go.uber.org/zap"
)

// Envelope is the provider's webhook body: every event arrives wrapped
// in a "message" object carrying the event type and its payload.
type Envelope struct {
	Message EventMessage `json:"message"`
}

// EventMessage is the inner webhook event. Fields beyond Type are
// populated per event type; unknown fields are ignored.
type EventMessage struct {
	Type       string              `json:"type"`
	Status     string              `json:"status,omitempty"`
	Call       *CallInfo           `json:"call,omitempty"`
	Transcript *TranscriptFragment `json:"transcript,omitempty"`
	Artifact   interface{}         `json:"artifact,omitempty"`
}

// TranscriptFragment is one piece of live transcript: the speaking role
// plus the text, nested under a same-named key in the event.
type TranscriptFragment struct {
	Role       string `json:"role"`
	Transcript string `json:"transcript"`
}

// CallInfo identifies the call an event belongs to.
type CallInfo struct {
	ID          string `json:"id"`
	AssistantID string `json:"assistantId"`
	Customer    *struct {
		Number string `json:"number"`
	} `json:"customer,omitempty"`
}

// CallerNumber returns the caller's phone number if the provider sent it.
func (c *CallInfo) CallerNumber() string {
	if c == nil || c.Customer == nil {
		return ""
	}
	return c.Customer.Number
}

// Event types delivered by the voice provider.
const (
	EventStatusUpdate    = "status-update"
	EventEndOfCallReport = "end-of-call-report"
	EventTranscript      = "transcript"
)

const statusInProgress = "in-progress"

// Ack is the body returned to the provider. Webhooks are acknowledged
// unconditionally so the provider never retries into duplicate side
// effects we have already absorbed.
type Ack struct {
	Status string `json:"status"`
	CallID string `json:"call_id,omitempty"`
}

// Service reconciles provider webhook events with local state: it
// broadcasts live call activity, buffers transcript fragments and kicks
// off the summary pipeline when a call ends. Every internal failure is
// absorbed and logged; HandleEvent never fails the webhook.
type Service struct {
	directory   *repository.DirectoryRepository
	profiles    *repository.ProfileRepository
	summaries   *summary.Pipeline
	transcripts cache.TranscriptStore
	broadcaster *notify.Broadcaster
	dispatcher  *notify.Dispatcher
}

// NewService creates a webhook reconciler.
func NewService(directory *repository.DirectoryRepository, profiles *repository.ProfileRepository, summaries *summary.Pipeline, transcripts cache.TranscriptStore, broadcaster *notify.Broadcaster, dispatcher *notify.Dispatcher) *Service {
	return &Service{
		directory:   directory,
		profiles:    profiles,
		summaries:   summaries,
		transcripts: transcripts,
		broadcaster: broadcaster,
		dispatcher:  dispatcher,
	}
}

// HandleEvent processes one webhook event and always returns an ack.
func (s *Service) HandleEvent(ctx context.Context, env Envelope) Ack {
	msg := env.Message
	callID := ""
	if msg.Call != nil {
		callID = msg.Call.ID
	}

	switch msg.Type {
	case EventStatusUpdate:
		if msg.Status == statusInProgress {
			s.handleCallStarted(ctx, msg.Call)
		}
	case EventEndOfCallReport:
		if err := s.summaries.SummarizeAndStore(ctx, callID); err != nil {
			logger.Base().Error("End-of-call processing failed",
				zap.String("call_id", callID), zap.Error(err))
		} else {
			// The authoritative transcript is persisted now; the live
			// buffer is no longer needed.
			s.transcripts.Drop(ctx, callID)
		}
	case EventTranscript:
		s.handleTranscript(ctx, callID, msg.Transcript)
	default:
		logger.Base().Debug("Ignoring unhandled webhook event", zap.String("type", msg.Type))
	}

	return Ack{Status: "received", CallID: callID}
}

// handleCallStarted announces a live AI call to connected clients and
// pushes a notification to the owner's device.
func (s *Service) handleCallStarted(ctx context.Context, call *CallInfo) {
	if call == nil || call.AssistantID == "" {
		logger.Base().Warn("Call started event without assistant id, skipping")
		return
	}

	userID, err := s.directory.ResolveUserByRemoteAssistantID(ctx, call.AssistantID)
	if err != nil {
		logger.Base().Warn("Call started for unknown assistant",
			zap.String("assistant_id", call.AssistantID), zap.Error(err))
		return
	}

	caller := call.CallerNumber()
	s.broadcaster.Publish(notify.Event{
		Type:         "call_started",
		UserID:       userID,
		CallID:       call.ID,
		CallerNumber: caller,
		Timestamp:    time.Now(),
	})

	profile, err := s.profiles.GetByUser(ctx, userID)
	if err != nil || profile == nil || profile.FCMToken == "" {
		return
	}
	s.dispatcher.Enqueue(profile.FCMToken, "Call started", "AI is handling a call from "+caller, map[string]string{
		"type":    "call_started",
		"call_id": call.ID,
	})
}

// handleTranscript buffers a transcript fragment for live viewing.
func (s *Service) handleTranscript(ctx context.Context, callID string, fragment *TranscriptFragment) {
	if callID == "" || fragment == nil || fragment.Transcript == "" {
		return
	}
	line := fragment.Transcript
	if fragment.Role != "" {
		line = fragment.Role + ": " + fragment.Transcript
	}
	s.transcripts.Append(ctx, callID, line)
}

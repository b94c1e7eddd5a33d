package provisioner

import (
	"context"
	"fmt"

	"github.com/oranihq/orani-voice-service/internal/adapters/vapi"
	"github.com/oranihq/orani-voice-service/internal/config"
	"github.com/oranihq/orani-voice-service/internal/domain"
	"github.com/oranihq/orani-voice-service/internal/prompts"
	"github.com/oranihq/orani-voice-service/internal/repository"
	"github.com/oranihq/orani-voice-service/pkg/logger"
	"go.uber.org/zap"
)

// Service provisions remote assistants and phone numbers and keeps the
// local directory in sync with the provider. All operations are
// idempotent: re-running a setup converges on the same state.
type Service struct {
	vapi      *vapi.Client
	directory *repository.DirectoryRepository
	profiles  *repository.ProfileRepository
	cfg       *config.AppConfig
}

// NewService creates a provisioner.
func NewService(client *vapi.Client, directory *repository.DirectoryRepository, profiles *repository.ProfileRepository, cfg *config.AppConfig) *Service {
	return &Service{
		vapi:      client,
		directory: directory,
		profiles:  profiles,
		cfg:       cfg,
	}
}

// UpsertAssistant persists the business profile, compiles the assistant
// persona from it and creates or updates the remote assistant. The
// profile write is intentionally not rolled back when provisioning
// fails: the user's data is kept and the next attempt reuses it.
func (s *Service) UpsertAssistant(ctx context.Context, req domain.AssistantSetupRequest) (*domain.Assistant, error) {
	recordingEnabled := true
	if req.RecordingEnabled != nil {
		recordingEnabled = *req.RecordingEnabled
	}

	profile := &domain.BusinessProfile{
		UserID:           req.UserID,
		VoiceID:          req.VoiceID,
		AIName:           req.AIName,
		RingCount:        req.RingCount,
		RecordingEnabled: recordingEnabled,
		BusinessData:     req.BusinessData,
	}
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save business profile: %w", err)
	}

	cfg := s.assistantConfig(profile)

	existing, err := s.directory.GetAssistantByUser(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up assistant: %w", err)
	}

	var resource *vapi.AssistantResource
	if existing != nil && existing.RemoteAssistantID != "" {
		resource, err = s.vapi.UpdateAssistant(ctx, existing.RemoteAssistantID, cfg)
	} else {
		resource, err = s.vapi.CreateAssistant(ctx, cfg)
	}
	if err != nil {
		// Profile stays persisted; only the remote side failed.
		return nil, fmt.Errorf("%w: %v", domain.ErrProvisioning, err)
	}

	assistant, err := s.directory.UpsertAssistant(ctx, req.UserID, resource.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to record assistant binding: %w", err)
	}

	logger.Base().Info("Assistant provisioned",
		zap.String("user_id", req.UserID),
		zap.String("assistant_id", resource.ID))
	return assistant, nil
}

// SetupPhoneNumber binds a phone number to the user's assistant. The
// reconciliation is a three-way merge between the local record, the
// provider's phone-number list and the requested number, so repeated
// calls with the same input are no-ops. A user without a provisioned
// assistant cannot bind a number.
func (s *Service) SetupPhoneNumber(ctx context.Context, req domain.PhoneSetupRequest) (*domain.PhoneNumber, error) {
	assistant, err := s.directory.GetAssistantByUser(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up assistant: %w", err)
	}
	if assistant == nil || assistant.RemoteAssistantID == "" {
		return nil, fmt.Errorf("%w: user %s has no assistant to bind a number to", domain.ErrNoAssistant, req.UserID)
	}

	number := req.Number
	if number == "" {
		number, err = s.pickNumber(ctx, req.UserID)
		if err != nil {
			return nil, err
		}
	}

	remote, err := s.findRemoteNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProvisioning, err)
	}

	switch {
	case remote == nil:
		remote, err = s.vapi.CreatePhoneNumber(ctx, vapi.PhoneNumberConfig{
			Provider:         "twilio",
			Number:           number,
			TwilioAccountSID: s.cfg.TwilioAccountSID,
			TwilioAuthToken:  s.cfg.TwilioAuthToken,
			AssistantID:      assistant.RemoteAssistantID,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrProvisioning, err)
		}
		logger.Base().Info("Imported phone number to provider",
			zap.String("number", number), zap.String("phone_id", remote.ID))
	case remote.AssistantID != assistant.RemoteAssistantID:
		remote, err = s.vapi.UpdatePhoneNumber(ctx, remote.ID, assistant.RemoteAssistantID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrProvisioning, err)
		}
		logger.Base().Info("Rebound phone number to assistant",
			zap.String("number", number),
			zap.String("assistant_id", assistant.RemoteAssistantID))
	default:
		// Already bound correctly; nothing to do remotely.
	}

	record, err := s.directory.UpsertPhoneNumber(ctx, number, req.UserID, remote.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to record phone number: %w", err)
	}
	return record, nil
}

// pickNumber selects the first purchasable number from the provider pool
// when the request does not name one. Fails when the pool is empty.
func (s *Service) pickNumber(ctx context.Context, userID string) (string, error) {
	available, err := s.vapi.ListAvailableNumbers(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrProvisioning, err)
	}
	if len(available) == 0 {
		return "", fmt.Errorf("%w: no phone numbers available for user %s", domain.ErrProvisioning, userID)
	}
	return available[0].Number, nil
}

// findRemoteNumber looks the number up in the provider's list, nil when
// the provider does not know it yet.
func (s *Service) findRemoteNumber(ctx context.Context, number string) (*vapi.PhoneNumberResource, error) {
	remotes, err := s.vapi.ListPhoneNumbers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range remotes {
		if remotes[i].Number == number {
			return &remotes[i], nil
		}
	}
	return nil, nil
}

// assistantConfig compiles the remote assistant payload from a stored
// profile. Deterministic for a given profile.
func (s *Service) assistantConfig(profile *domain.BusinessProfile) vapi.AssistantConfig {
	persona := prompts.Compile(profile.BusinessData, profile.VoiceID)
	greeting := prompts.Greeting(profile.BusinessData)

	name := profile.AIName
	if name == "" {
		name = prompts.VoiceDisplayName(profile.VoiceID)
	}

	recording := profile.RecordingEnabled
	return vapi.AssistantConfig{
		Name:         name,
		ServerURL:    s.cfg.VapiWebhookURL(),
		FirstMessage: greeting,
		RecordingOn:  &recording,
		Model: &vapi.ModelConfig{
			Provider: "openai",
			Model:    "gpt-4o",
			Messages: []vapi.ModelMessage{
				{Role: "system", Content: persona},
			},
		},
		Voice: &vapi.VoiceConfig{
			Provider: "11labs",
			VoiceID:  profile.VoiceID,
		},
		Transcriber: &vapi.TranscriberConf{
			Provider: "deepgram",
			Model:    "nova-2",
			Language: "en",
		},
	}
}

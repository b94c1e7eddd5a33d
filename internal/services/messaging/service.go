package messaging

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/oranihq/orani-voice-service/internal/adapters/storage"
	"github.com/oranihq/orani-voice-service/internal/domain"
	"github.com/oranihq/orani-voice-service/internal/notify"
	"github.com/oranihq/orani-voice-service/internal/repository"
	"github.com/oranihq/orani-voice-service/pkg/logger"
	"github.com/oranihq/orani-voice-service/pkg/twilio"
	"go.uber.org/zap"
)

// Service handles SMS/MMS threads between a user's business number and
// customer numbers. Outbound messages go through the telephony provider
// first and are persisted only after the provider accepts them; inbound
// messages are persisted as delivered by the provider's webhook.
type Service struct {
	sender     *twilio.MessagingClient
	media      *storage.MediaStore
	directory  *repository.DirectoryRepository
	profiles   *repository.ProfileRepository
	messages   *repository.MessageRepository
	dispatcher *notify.Dispatcher

	// fetches provider-hosted MMS media for mirroring
	httpClient *http.Client
}

// NewService creates a messaging service.
func NewService(sender *twilio.MessagingClient, media *storage.MediaStore, directory *repository.DirectoryRepository, profiles *repository.ProfileRepository, messages *repository.MessageRepository, dispatcher *notify.Dispatcher) *Service {
	return &Service{
		sender:     sender,
		media:      media,
		directory:  directory,
		profiles:   profiles,
		messages:   messages,
		dispatcher: dispatcher,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

// SendMessage sends an outbound message from the user's business number
// and records it. The provider send happens first; a send failure leaves
// no local record.
func (s *Service) SendMessage(ctx context.Context, req domain.SendMessageRequest) (*domain.Message, error) {
	number, err := s.directory.GetNumberByUser(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up business number: %w", err)
	}
	if number == nil {
		return nil, fmt.Errorf("%w: user %s has no business number", domain.ErrNotResolved, req.UserID)
	}

	sid, err := s.sender.SendMessage(req.ToNumber, number.Number, req.Body, req.MediaURLs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}

	message := &domain.Message{
		ID:         uuid.New().String(),
		MessageSID: sid,
		UserID:     req.UserID,
		ToNumber:   req.ToNumber,
		FromNumber: number.Number,
		Body:       req.Body,
		MediaURLs:  req.MediaURLs,
		Direction:  domain.MessageDirectionOutbound,
		Timestamp:  time.Now(),
	}
	if err := s.messages.Create(ctx, message); err != nil {
		// The message left the building; surface the persistence gap
		// loudly but keep the send result.
		logger.Base().Error("Sent message could not be recorded",
			zap.String("sid", sid), zap.Error(err))
		return nil, fmt.Errorf("failed to record sent message: %w", err)
	}
	return message, nil
}

// RecordInbound persists a message delivered by the provider's inbound
// webhook and notifies the owning user. Media attachments are mirrored
// to our own storage when configured, keeping the provider URL when the
// mirror fails.
func (s *Service) RecordInbound(ctx context.Context, messageSID, to, from, body string, mediaURLs []string) (*domain.Message, error) {
	userID, err := s.directory.ResolveUserByNumber(ctx, to)
	if err != nil {
		return nil, fmt.Errorf("inbound message to unresolved number %s: %w", to, err)
	}

	message := &domain.Message{
		ID:         uuid.New().String(),
		MessageSID: messageSID,
		UserID:     userID,
		ToNumber:   to,
		FromNumber: from,
		Body:       body,
		MediaURLs:  s.mirrorMedia(ctx, mediaURLs),
		Direction:  domain.MessageDirectionInbound,
		Timestamp:  time.Now(),
	}
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to record inbound message: %w", err)
	}

	s.notifyOwner(ctx, userID, from, body)
	return message, nil
}

// Thread returns the conversation between the user and one customer
// number, oldest first.
func (s *Service) Thread(ctx context.Context, userID, customerNumber string) ([]*domain.Message, error) {
	return s.messages.ListThread(ctx, userID, customerNumber)
}

// ListByUser returns all of a user's messages, newest first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]*domain.Message, error) {
	return s.messages.ListByUser(ctx, userID)
}

// mirrorMedia re-hosts provider media URLs in our bucket. Best effort
// per attachment: a failed mirror keeps the original URL.
func (s *Service) mirrorMedia(ctx context.Context, urls []string) []string {
	if len(urls) == 0 || !s.media.Enabled() {
		return urls
	}

	mirrored := make([]string, 0, len(urls))
	for _, url := range urls {
		stored, err := s.mirrorOne(ctx, url)
		if err != nil {
			logger.Base().Warn("Failed to mirror attachment, keeping provider URL",
				zap.String("url", url), zap.Error(err))
			mirrored = append(mirrored, url)
			continue
		}
		mirrored = append(mirrored, stored)
	}
	return mirrored
}

func (s *Service) mirrorOne(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("media fetch returned %d", resp.StatusCode)
	}
	return s.media.Upload(ctx, resp.Body, resp.Header.Get("Content-Type"))
}

func (s *Service) notifyOwner(ctx context.Context, userID, from, body string) {
	profile, err := s.profiles.GetByUser(ctx, userID)
	if err != nil || profile == nil || profile.FCMToken == "" {
		return
	}
	s.dispatcher.Enqueue(profile.FCMToken, "New message from "+from, previewBody(body), map[string]string{
		"type":        "new_message",
		"from_number": from,
	})
}

const previewRuneLimit = 80

// previewBody shortens a message body for the push notification,
// truncating on a rune boundary so multi-byte text stays valid.
func previewBody(body string) string {
	runes := []rune(body)
	if len(runes) <= previewRuneLimit {
		return body
	}
	return string(runes[:previewRuneLimit])
}

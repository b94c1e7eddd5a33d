package history

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/oranihq/orani-voice-service/internal/domain"
	"github.com/oranihq/orani-voice-service/internal/repository"
)

// Service merges call summaries and message threads into one
// chronological activity feed per user.
type Service struct {
	summaries *repository.CallSummaryRepository
	messages  *repository.MessageRepository
}

// NewService creates a history service.
func NewService(summaries *repository.CallSummaryRepository, messages *repository.MessageRepository) *Service {
	return &Service{summaries: summaries, messages: messages}
}

// ListByUser returns the user's calls and messages interleaved, newest
// first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]domain.HistoryEntry, error) {
	calls, err := s.summaries.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load call history: %w", err)
	}
	messages, err := s.messages.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load message history: %w", err)
	}

	entries := make([]domain.HistoryEntry, 0, len(calls)+len(messages))
	for _, c := range calls {
		entries = append(entries, domain.HistoryEntry{Kind: "call", Call: c})
	}
	for _, m := range messages {
		entries = append(entries, domain.HistoryEntry{Kind: "message", Message: m})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entryTime(entries[i]).After(entryTime(entries[j]))
	})
	return entries, nil
}

func entryTime(e domain.HistoryEntry) time.Time {
	if e.Call != nil {
		return e.Call.Timestamp
	}
	if e.Message != nil {
		return e.Message.Timestamp
	}
	return time.Time{}
}

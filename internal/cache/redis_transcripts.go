package cache

import (
	"context"
	"strings"
	"time"

	"github.com/oranihq/orani-voice-service/pkg/logger"
	"github.com/oranihq/orani-voice-service/pkg/redis"
	"go.uber.org/zap"
)

// RedisTranscriptStore shares the live transcript buffer across
// instances through Redis, so any instance can serve the live view of a
// call whose webhooks land on another. Redis errors are absorbed: the
// buffer is best effort and the authoritative transcript comes from the
// provider after call end.
type RedisTranscriptStore struct {
	service *redis.Service
	ttl     time.Duration
}

var _ TranscriptStore = (*RedisTranscriptStore)(nil)

// NewRedisTranscriptStore creates a Redis-backed transcript store with
// the given buffer TTL.
func NewRedisTranscriptStore(service *redis.Service, ttl time.Duration) *RedisTranscriptStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisTranscriptStore{service: service, ttl: ttl}
}

// Append adds one fragment to a call's buffer.
func (s *RedisTranscriptStore) Append(ctx context.Context, callID, fragment string) {
	if callID == "" || fragment == "" {
		return
	}
	if err := s.service.AppendTranscript(ctx, callID, fragment, s.ttl); err != nil {
		logger.Base().Warn("Failed to buffer transcript fragment",
			zap.String("call_id", callID), zap.Error(err))
	}
}

// Get returns the buffered transcript for a call joined by newlines, and
// whether any fragments exist.
func (s *RedisTranscriptStore) Get(ctx context.Context, callID string) (string, bool) {
	fragments, err := s.service.GetTranscript(ctx, callID)
	if err != nil {
		logger.Base().Warn("Failed to read transcript buffer",
			zap.String("call_id", callID), zap.Error(err))
		return "", false
	}
	if len(fragments) == 0 {
		return "", false
	}
	return strings.Join(fragments, "\n"), true
}

// Drop removes a call's buffer.
func (s *RedisTranscriptStore) Drop(ctx context.Context, callID string) {
	if err := s.service.DropTranscript(ctx, callID); err != nil {
		logger.Base().Warn("Failed to drop transcript buffer",
			zap.String("call_id", callID), zap.Error(err))
	}
}

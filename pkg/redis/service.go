package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key prefixes for this service's Redis usage.
type KeyType string

const (
	// SUMMARY_CLAIM marks a call id whose summary generation has been
	// claimed by some instance (fast-path dedup ahead of the DB unique
	// index).
	SUMMARY_CLAIM KeyType = "orani_summary_claim"
	// LIVE_TRANSCRIPT buffers in-flight transcript fragments per call.
	LIVE_TRANSCRIPT KeyType = "orani_live_transcript"
)

// RedisConfig holds connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

var ErrKeyNotExist = redis.Nil

// Service wraps the Redis client with the key conventions used by the
// reconciler.
type Service struct {
	client *redis.Client
}

// NewService connects to Redis and verifies the connection.
func NewService(config *RedisConfig) (*Service, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Service{client: client}, nil
}

// GenerateKey builds a namespaced key.
func (s *Service) GenerateKey(keyType KeyType, identifier string) string {
	return fmt.Sprintf("%s:%s", string(keyType), identifier)
}

// ClaimSummary attempts to claim summary generation for a call id.
// Returns true when this caller won the claim. The claim expires so a
// crashed claimant does not block the retry delivered by the provider.
func (s *Service) ClaimSummary(ctx context.Context, callID string, ttl time.Duration) (bool, error) {
	key := s.GenerateKey(SUMMARY_CLAIM, callID)
	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim summary for call %s: %w", callID, err)
	}
	return ok, nil
}

// ReleaseSummaryClaim drops a claim so a later delivery can retry after
// a failed persistence attempt.
func (s *Service) ReleaseSummaryClaim(ctx context.Context, callID string) error {
	return s.client.Del(ctx, s.GenerateKey(SUMMARY_CLAIM, callID)).Err()
}

// AppendTranscript appends one fragment to the live transcript buffer
// for a call. Best effort: the buffer expires on its own.
func (s *Service) AppendTranscript(ctx context.Context, callID, fragment string, ttl time.Duration) error {
	key := s.GenerateKey(LIVE_TRANSCRIPT, callID)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, fragment)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append transcript fragment: %w", err)
	}
	return nil
}

// GetTranscript returns the buffered fragments for a call in arrival order.
func (s *Service) GetTranscript(ctx context.Context, callID string) ([]string, error) {
	key := s.GenerateKey(LIVE_TRANSCRIPT, callID)
	fragments, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript buffer: %w", err)
	}
	return fragments, nil
}

// DropTranscript removes a call's transcript buffer.
func (s *Service) DropTranscript(ctx context.Context, callID string) error {
	return s.client.Del(ctx, s.GenerateKey(LIVE_TRANSCRIPT, callID)).Err()
}

// Close releases the underlying client.
func (s *Service) Close() error {
	return s.client.Close()
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oranihq/orani-voice-service/internal/domain"
	"gorm.io/gorm"
)

// MessageRepository handles database operations for SMS/MMS messages
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create persists a message after the provider has acknowledged it.
func (r *MessageRepository) Create(ctx context.Context, message *domain.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now()
	}
	message.CreatedAt = time.Now()

	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// ListThread retrieves the conversation between a user and a customer
// number, oldest first.
func (r *MessageRepository) ListThread(ctx context.Context, userID, customerNumber string) ([]*domain.Message, error) {
	var messages []*domain.Message
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND (to_number = ? OR from_number = ?)", userID, customerNumber, customerNumber).
		Order("timestamp ASC").
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to list message thread: %w", err)
	}
	return messages, nil
}

// ListByUser retrieves every message for a user, newest first.
func (r *MessageRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Message, error) {
	var messages []*domain.Message
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

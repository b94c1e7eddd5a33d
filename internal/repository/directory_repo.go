package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oranihq/orani-voice-service/internal/domain"
	"gorm.io/gorm"
)

// DirectoryRepository maps opaque identifiers between each other:
// phone number -> user, user -> assistant, remote assistant id -> user.
type DirectoryRepository struct {
	db *gorm.DB
}

// NewDirectoryRepository creates a new directory repository
func NewDirectoryRepository(db *gorm.DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

// UpsertPhoneNumber creates or updates the local record binding a number
// to its owning user and remote phone resource. Unique on number.
func (r *DirectoryRepository) UpsertPhoneNumber(ctx context.Context, number, userID, remotePhoneID string) (*domain.PhoneNumber, error) {
	existing, err := r.GetPhoneNumber(ctx, number)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if existing != nil {
		existing.UserID = userID
		existing.RemotePhoneID = remotePhoneID
		existing.Active = true
		existing.UpdatedAt = now
		if err := r.db.WithContext(ctx).Save(existing).Error; err != nil {
			return nil, fmt.Errorf("failed to update phone number: %w", err)
		}
		return existing, nil
	}

	record := &domain.PhoneNumber{
		ID:            uuid.New().String(),
		Number:        number,
		UserID:        userID,
		RemotePhoneID: remotePhoneID,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, fmt.Errorf("failed to create phone number: %w", err)
	}
	return record, nil
}

// GetPhoneNumber retrieves a phone number record by its E.164 number.
// Returns (nil, nil) when the number is not registered.
func (r *DirectoryRepository) GetPhoneNumber(ctx context.Context, number string) (*domain.PhoneNumber, error) {
	var record domain.PhoneNumber
	if err := r.db.WithContext(ctx).Where("number = ?", number).First(&record).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get phone number: %w", err)
	}
	return &record, nil
}

// GetNumberByUser retrieves a user's active business number.
// Returns (nil, nil) when the user has no number bound.
func (r *DirectoryRepository) GetNumberByUser(ctx context.Context, userID string) (*domain.PhoneNumber, error) {
	var record domain.PhoneNumber
	if err := r.db.WithContext(ctx).Where("user_id = ? AND active = ?", userID, true).First(&record).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get phone number for user: %w", err)
	}
	return &record, nil
}

// ResolveUserByNumber maps a called number to its owning user.
func (r *DirectoryRepository) ResolveUserByNumber(ctx context.Context, number string) (string, error) {
	record, err := r.GetPhoneNumber(ctx, number)
	if err != nil {
		return "", err
	}
	if record == nil || !record.Active {
		return "", domain.ErrNotResolved
	}
	return record.UserID, nil
}

// UpsertAssistant stores the remote assistant id for a user, replacing
// any previous binding (last write wins).
func (r *DirectoryRepository) UpsertAssistant(ctx context.Context, userID, remoteAssistantID string) (*domain.Assistant, error) {
	existing, err := r.GetAssistantByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if existing != nil {
		existing.RemoteAssistantID = remoteAssistantID
		existing.UpdatedAt = now
		if err := r.db.WithContext(ctx).Save(existing).Error; err != nil {
			return nil, fmt.Errorf("failed to update assistant: %w", err)
		}
		return existing, nil
	}

	record := &domain.Assistant{
		ID:                uuid.New().String(),
		UserID:            userID,
		RemoteAssistantID: remoteAssistantID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, fmt.Errorf("failed to create assistant: %w", err)
	}
	return record, nil
}

// GetAssistantByUser retrieves the assistant record for a user.
// Returns (nil, nil) when the user has no assistant.
func (r *DirectoryRepository) GetAssistantByUser(ctx context.Context, userID string) (*domain.Assistant, error) {
	var record domain.Assistant
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&record).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get assistant: %w", err)
	}
	return &record, nil
}

// ResolveUserByRemoteAssistantID is the reverse index used by webhook
// reconciliation: remote assistant id -> owning user.
func (r *DirectoryRepository) ResolveUserByRemoteAssistantID(ctx context.Context, remoteAssistantID string) (string, error) {
	var record domain.Assistant
	if err := r.db.WithContext(ctx).Where("remote_assistant_id = ?", remoteAssistantID).First(&record).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", domain.ErrNotResolved
		}
		return "", fmt.Errorf("failed to resolve assistant owner: %w", err)
	}
	return record.UserID, nil
}

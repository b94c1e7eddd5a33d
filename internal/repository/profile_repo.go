package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oranihq/orani-voice-service/internal/domain"
	"gorm.io/gorm"
)

// ProfileRepository handles database operations for business profiles
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Upsert replaces the whole profile for a user. Setup calls always carry
// the full configuration, so last write wins and no fields are merged.
// The device push token is the exception: it is registered through its
// own endpoint, never arrives with a setup request, and must survive a
// re-setup.
func (r *ProfileRepository) Upsert(ctx context.Context, profile *domain.BusinessProfile) error {
	existing, err := r.GetByUser(ctx, profile.UserID)
	if err != nil {
		return err
	}

	now := time.Now()
	if existing != nil {
		profile.ID = existing.ID
		profile.CreatedAt = existing.CreatedAt
		profile.UpdatedAt = now
		if profile.FCMToken == "" {
			profile.FCMToken = existing.FCMToken
		}
		if err := r.db.WithContext(ctx).Save(profile).Error; err != nil {
			return fmt.Errorf("failed to update business profile: %w", err)
		}
		return nil
	}

	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	profile.CreatedAt = now
	profile.UpdatedAt = now
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return fmt.Errorf("failed to create business profile: %w", err)
	}
	return nil
}

// GetByUser retrieves the profile for a user. Returns (nil, nil) when the
// user has no profile yet.
func (r *ProfileRepository) GetByUser(ctx context.Context, userID string) (*domain.BusinessProfile, error) {
	var profile domain.BusinessProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get business profile: %w", err)
	}
	return &profile, nil
}

// UpdateFCMToken stores the device push token on an existing profile.
func (r *ProfileRepository) UpdateFCMToken(ctx context.Context, userID, token string) error {
	result := r.db.WithContext(ctx).Model(&domain.BusinessProfile{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{"fcm_token": token, "updated_at": time.Now()})
	if result.Error != nil {
		return fmt.Errorf("failed to update fcm token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotResolved
	}
	return nil
}

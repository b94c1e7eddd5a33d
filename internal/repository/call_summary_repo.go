package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oranihq/orani-voice-service/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CallSummaryRepository handles database operations for call summaries
type CallSummaryRepository struct {
	db *gorm.DB
}

// NewCallSummaryRepository creates a new call summary repository
func NewCallSummaryRepository(db *gorm.DB) *CallSummaryRepository {
	return &CallSummaryRepository{db: db}
}

// InsertIfAbsent writes a summary unless one already exists for the same
// call id. Webhook delivery is at-least-once, so concurrent duplicate
// end-of-call reports race here; the unique index on call_id plus
// ON CONFLICT DO NOTHING guarantees at most one row per call. Returns
// true when this invocation created the row.
func (r *CallSummaryRepository) InsertIfAbsent(ctx context.Context, summary *domain.CallSummary) (bool, error) {
	if summary.ID == "" {
		summary.ID = uuid.New().String()
	}
	if summary.Timestamp.IsZero() {
		summary.Timestamp = time.Now()
	}
	summary.CreatedAt = time.Now()

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "call_id"}},
			DoNothing: true,
		}).
		Create(summary)
	if result.Error != nil {
		return false, fmt.Errorf("failed to create call summary: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// GetByCallID retrieves a summary by call id. Returns (nil, nil) when no
// summary exists for the call.
func (r *CallSummaryRepository) GetByCallID(ctx context.Context, callID string) (*domain.CallSummary, error) {
	var summary domain.CallSummary
	if err := r.db.WithContext(ctx).Where("call_id = ?", callID).First(&summary).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get call summary: %w", err)
	}
	return &summary, nil
}

// ListByUser retrieves all summaries for a user, newest first.
func (r *CallSummaryRepository) ListByUser(ctx context.Context, userID string) ([]*domain.CallSummary, error) {
	var summaries []*domain.CallSummary
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Find(&summaries).Error; err != nil {
		return nil, fmt.Errorf("failed to list call summaries: %w", err)
	}
	return summaries, nil
}

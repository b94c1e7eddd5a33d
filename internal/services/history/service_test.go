package history

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/oranihq/orani-voice-service/internal/domain"
	"github.com/oranihq/orani-voice-service/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestListByUserInterleavesCallsAndMessages(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.CallSummary{}, &domain.Message{}))

	summaries := repository.NewCallSummaryRepository(db)
	messages := repository.NewMessageRepository(db)
	svc := NewService(summaries, messages)
	ctx := context.Background()

	now := time.Now()
	_, err = summaries.InsertIfAbsent(ctx, &domain.CallSummary{
		CallID: "call-1", UserID: "user-1", Timestamp: now.Add(-3 * time.Hour),
	})
	require.NoError(t, err)
	_, err = summaries.InsertIfAbsent(ctx, &domain.CallSummary{
		CallID: "call-2", UserID: "user-1", Timestamp: now,
	})
	require.NoError(t, err)
	require.NoError(t, messages.Create(ctx, &domain.Message{
		MessageSID: "sid-1", UserID: "user-1",
		ToNumber: "+15551230001", FromNumber: "+15557770002",
		Direction: domain.MessageDirectionInbound, Timestamp: now.Add(-time.Hour),
	}))

	entries, err := svc.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "call", entries[0].Kind)
	assert.Equal(t, "call-2", entries[0].Call.CallID)
	assert.Equal(t, "message", entries[1].Kind)
	assert.Equal(t, "sid-1", entries[1].Message.MessageSID)
	assert.Equal(t, "call", entries[2].Kind)
	assert.Equal(t, "call-1", entries[2].Call.CallID)
}

func TestListByUserEmpty(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.CallSummary{}, &domain.Message{}))

	svc := NewService(repository.NewCallSummaryRepository(db), repository.NewMessageRepository(db))

	entries, err := svc.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

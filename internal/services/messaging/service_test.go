package messaging

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/glebarez/sqlite"
	"github.com/oranihq/orani-voice-service/internal/adapters/storage"
	"github.com/oranihq/orani-voice-service/internal/domain"
	"github.com/oranihq/orani-voice-service/internal/notify"
	"github.com/oranihq/orani-voice-service/internal/repository"
	"github.com/oranihq/orani-voice-service/pkg/twilio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type noopPusher struct{}

func (noopPusher) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	return nil
}

func setupMessaging(t *testing.T) (*Service, *repository.DirectoryRepository, *repository.MessageRepository) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.PhoneNumber{}, &domain.BusinessProfile{}, &domain.Message{}))

	directory := repository.NewDirectoryRepository(db)
	profiles := repository.NewProfileRepository(db)
	messages := repository.NewMessageRepository(db)

	media, err := storage.NewMediaStore(context.Background(), "")
	require.NoError(t, err)

	dispatcher := notify.NewDispatcher(noopPusher{}, time.Second)
	t.Cleanup(dispatcher.Stop)

	// Disabled sender: outbound tests only exercise the failure path,
	// inbound recording does not touch the provider.
	sender := twilio.NewMessagingClient("", "")

	return NewService(sender, media, directory, profiles, messages, dispatcher), directory, messages
}

func TestRecordInboundPersistsMessage(t *testing.T) {
	svc, directory, messages := setupMessaging(t)
	ctx := context.Background()

	_, err := directory.UpsertPhoneNumber(ctx, "+15551230001", "user-1", "phone-a")
	require.NoError(t, err)

	message, err := svc.RecordInbound(ctx, "sid-1", "+15551230001", "+15557770002", "Are you open?", nil)
	require.NoError(t, err)
	assert.Equal(t, "user-1", message.UserID)
	assert.Equal(t, domain.MessageDirectionInbound, message.Direction)

	thread, err := messages.ListThread(ctx, "user-1", "+15557770002")
	require.NoError(t, err)
	require.Len(t, thread, 1)
	assert.Equal(t, "Are you open?", thread[0].Body)
}

func TestRecordInboundUnknownNumberFails(t *testing.T) {
	svc, _, _ := setupMessaging(t)

	_, err := svc.RecordInbound(context.Background(), "sid-1", "+15559999999", "+15557770002", "hi", nil)
	assert.ErrorIs(t, err, domain.ErrNotResolved)
}

func TestRecordInboundKeepsProviderMediaURLsWhenMirrorDisabled(t *testing.T) {
	svc, directory, _ := setupMessaging(t)
	ctx := context.Background()

	_, err := directory.UpsertPhoneNumber(ctx, "+15551230001", "user-1", "phone-a")
	require.NoError(t, err)

	urls := []string{"https://api.twilio.com/media/abc"}
	message, err := svc.RecordInbound(ctx, "sid-1", "+15551230001", "+15557770002", "", urls)
	require.NoError(t, err)
	assert.Equal(t, domain.StringList(urls), message.MediaURLs)
}

func TestPreviewBodyTruncatesOnRuneBoundary(t *testing.T) {
	assert.Equal(t, "short message", previewBody("short message"))

	long := strings.Repeat("héllo wörld ", 10) // 120 runes
	preview := previewBody(long)
	assert.Equal(t, 80, utf8.RuneCountInString(preview))
	assert.True(t, utf8.ValidString(preview))
	assert.Equal(t, string([]rune(long)[:80]), preview)
}

func TestSendMessageWithoutBusinessNumberFails(t *testing.T) {
	svc, _, _ := setupMessaging(t)

	_, err := svc.SendMessage(context.Background(), domain.SendMessageRequest{
		UserID:   "user-1",
		ToNumber: "+15557770002",
		Body:     "hello",
	})
	assert.ErrorIs(t, err, domain.ErrNotResolved)
}

func TestSendMessageProviderFailureLeavesNoRecord(t *testing.T) {
	svc, directory, messages := setupMessaging(t)
	ctx := context.Background()

	_, err := directory.UpsertPhoneNumber(ctx, "+15551230001", "user-1", "phone-a")
	require.NoError(t, err)

	_, err = svc.SendMessage(ctx, domain.SendMessageRequest{
		UserID:   "user-1",
		ToNumber: "+15557770002",
		Body:     "hello",
	})
	assert.ErrorIs(t, err, domain.ErrUpstream)

	all, err := messages.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, all)
}

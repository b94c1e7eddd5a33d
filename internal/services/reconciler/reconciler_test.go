package reconciler

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/oranihq/orani-voice-service/internal/adapters/vapi"
	"github.com/oranihq/orani-voice-service/internal/cache"
	"github.com/oranihq/orani-voice-service/internal/domain"
	"github.com/oranihq/orani-voice-service/internal/notify"
	"github.com/oranihq/orani-voice-service/internal/repository"
	"github.com/oranihq/orani-voice-service/internal/services/summary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fakeCallFetcher struct {
	call *vapi.CallResource
}

func (f *fakeCallFetcher) GetCall(ctx context.Context, callID string) (*vapi.CallResource, error) {
	return f.call, nil
}

type fakeSummarizer struct{}

func (fakeSummarizer) Summarize(ctx context.Context, prompt string) (string, error) {
	return `{"caller_intent":"Ask about hours.","action_items":[],"outcome":"Question answered"}`, nil
}

type noopPusher struct{}

func (noopPusher) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	return nil
}

type fixture struct {
	service     *Service
	summaries   *repository.CallSummaryRepository
	transcripts *cache.TranscriptCache
	broadcaster *notify.Broadcaster
}

func setupReconciler(t *testing.T) *fixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.PhoneNumber{}, &domain.Assistant{}, &domain.BusinessProfile{}, &domain.CallSummary{}))

	directory := repository.NewDirectoryRepository(db)
	profiles := repository.NewProfileRepository(db)
	summaries := repository.NewCallSummaryRepository(db)

	ctx := context.Background()
	_, err = directory.UpsertAssistant(ctx, "user-1", "assistant-a")
	require.NoError(t, err)
	require.NoError(t, profiles.Upsert(ctx, &domain.BusinessProfile{UserID: "user-1"}))

	fetcher := &fakeCallFetcher{call: &vapi.CallResource{
		ID:          "call-1",
		AssistantID: "assistant-a",
		Transcript:  "AI: Hello!",
		StartedAt:   "2026-08-30T10:00:00Z",
		EndedAt:     "2026-08-30T10:01:00Z",
	}}
	pipeline := summary.NewPipeline(fetcher, fakeSummarizer{}, directory, summaries, nil)

	transcripts := cache.NewTranscriptCache(time.Hour)
	broadcaster := notify.NewBroadcaster()
	dispatcher := notify.NewDispatcher(noopPusher{}, time.Second)
	t.Cleanup(dispatcher.Stop)

	return &fixture{
		service:     NewService(directory, profiles, pipeline, transcripts, broadcaster, dispatcher),
		summaries:   summaries,
		transcripts: transcripts,
		broadcaster: broadcaster,
	}
}

func TestUnknownEventTypeIsAcked(t *testing.T) {
	f := setupReconciler(t)

	ack := f.service.HandleEvent(context.Background(), Envelope{
		Message: EventMessage{Type: "speech-update"},
	})

	assert.Equal(t, "received", ack.Status)
}

func TestCallStartedBroadcastsToSubscribers(t *testing.T) {
	f := setupReconciler(t)

	events, cancel := f.broadcaster.Subscribe()
	defer cancel()

	ack := f.service.HandleEvent(context.Background(), Envelope{
		Message: EventMessage{
			Type:   EventStatusUpdate,
			Status: "in-progress",
			Call: &CallInfo{
				ID:          "call-1",
				AssistantID: "assistant-a",
			},
		},
	})
	assert.Equal(t, "received", ack.Status)
	assert.Equal(t, "call-1", ack.CallID)

	select {
	case payload := <-events:
		assert.Contains(t, payload, `"type":"call_started"`)
		assert.Contains(t, payload, `"user_id":"user-1"`)
	case <-time.After(time.Second):
		t.Fatal("expected a call_started event")
	}
}

func TestCallStartedForUnknownAssistantIsAbsorbed(t *testing.T) {
	f := setupReconciler(t)

	ack := f.service.HandleEvent(context.Background(), Envelope{
		Message: EventMessage{
			Type:   EventStatusUpdate,
			Status: "in-progress",
			Call:   &CallInfo{ID: "call-1", AssistantID: "assistant-unknown"},
		},
	})

	assert.Equal(t, "received", ack.Status)
}

func TestTranscriptFragmentsAreBuffered(t *testing.T) {
	f := setupReconciler(t)
	ctx := context.Background()

	f.service.HandleEvent(ctx, Envelope{Message: EventMessage{
		Type: EventTranscript, Call: &CallInfo{ID: "call-1"},
		Transcript: &TranscriptFragment{Role: "assistant", Transcript: "Hello!"},
	}})
	f.service.HandleEvent(ctx, Envelope{Message: EventMessage{
		Type: EventTranscript, Call: &CallInfo{ID: "call-1"},
		Transcript: &TranscriptFragment{Role: "user", Transcript: "Hi, are you open?"},
	}})

	transcript, ok := f.transcripts.Get(ctx, "call-1")
	require.True(t, ok)
	assert.Equal(t, "assistant: Hello!\nuser: Hi, are you open?", transcript)
}

func TestTranscriptEventDecodesProviderPayload(t *testing.T) {
	f := setupReconciler(t)
	ctx := context.Background()

	// Raw webhook body as the provider sends it: role and text nested
	// under the transcript key.
	payload := `{"message":{"type":"transcript","call":{"id":"call-1","assistantId":"assistant-a"},"transcript":{"role":"user","transcript":"hello there"}}}`
	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(payload), &env))

	ack := f.service.HandleEvent(ctx, env)
	assert.Equal(t, "received", ack.Status)
	assert.Equal(t, "call-1", ack.CallID)

	transcript, ok := f.transcripts.Get(ctx, "call-1")
	require.True(t, ok)
	assert.Equal(t, "user: hello there", transcript)
}

func TestEndOfCallReportStoresSummaryOnce(t *testing.T) {
	f := setupReconciler(t)
	ctx := context.Background()

	env := Envelope{Message: EventMessage{
		Type: EventEndOfCallReport,
		Call: &CallInfo{ID: "call-1", AssistantID: "assistant-a"},
	}}

	ack := f.service.HandleEvent(ctx, env)
	assert.Equal(t, "received", ack.Status)

	// Redelivery of the same report must not create a second summary.
	f.service.HandleEvent(ctx, env)

	all, err := f.summaries.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "call-1", all[0].CallID)
	assert.Equal(t, "Ask about hours.", all[0].CallerIntent)
}

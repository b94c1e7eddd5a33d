package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	b := NewBroadcaster()

	first, cancelFirst := b.Subscribe()
	second, cancelSecond := b.Subscribe()
	defer cancelFirst()
	defer cancelSecond()

	assert.Equal(t, 2, b.SubscriberCount())

	b.Publish(Event{Type: "call_started", UserID: "user-1"})

	for _, ch := range []<-chan string{first, second} {
		select {
		case payload := <-ch:
			assert.Contains(t, payload, `"type":"call_started"`)
			assert.Contains(t, payload, `"user_id":"user-1"`)
		case <-time.After(time.Second):
			t.Fatal("expected event delivery")
		}
	}
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	b := NewBroadcaster()

	ch, cancel := b.Subscribe()
	defer cancel()

	// Fill the subscriber's buffer and keep publishing; Publish must not
	// block even though nothing drains the channel.
	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*3; i++ {
			b.Publish(Event{Type: "call_started"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
	assert.Len(t, ch, subscriberBuffer)
}

func TestCancelIsIdempotent(t *testing.T) {
	b := NewBroadcaster()

	_, cancel := b.Subscribe()
	require.Equal(t, 1, b.SubscriberCount())

	cancel()
	cancel()
	assert.Equal(t, 0, b.SubscriberCount())
}

func TestPublishAfterCancelDropsCleanly(t *testing.T) {
	b := NewBroadcaster()

	_, cancel := b.Subscribe()
	cancel()

	// Must not panic on the closed channel.
	b.Publish(Event{Type: "call_started"})
}

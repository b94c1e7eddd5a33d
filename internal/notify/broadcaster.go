package notify

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/oranihq/orani-voice-service/pkg/logger"
	"go.uber.org/zap"
)

// subscriberBuffer bounds each subscriber queue so one stalled SSE client
// cannot back-pressure the whole broadcast.
const subscriberBuffer = 16

// Event is one live notification pushed to connected clients.
type Event struct {
	Type         string    `json:"type"`
	UserID       string    `json:"user_id,omitempty"`
	CallID       string    `json:"call_id,omitempty"`
	CallerNumber string    `json:"caller_number,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Encode renders the event as a JSON line for the SSE stream.
func (e Event) Encode() string {
	data, err := json.Marshal(e)
	if err != nil {
		return `{"type":"` + e.Type + `"}`
	}
	return string(data)
}

// Broadcaster fans events out to all currently connected subscribers.
// There is one process-wide instance; subscribe and unsubscribe are safe
// to call concurrently and idempotent per channel.
type Broadcaster struct {
	mutex sync.RWMutex
	subs  map[chan string]struct{}
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs: make(map[chan string]struct{}),
	}
}

// Subscribe registers a new subscriber and returns its channel plus a
// cancel function. Cancel may be called more than once.
func (b *Broadcaster) Subscribe() (<-chan string, func()) {
	ch := make(chan string, subscriberBuffer)

	b.mutex.Lock()
	b.subs[ch] = struct{}{}
	b.mutex.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mutex.Lock()
			delete(b.subs, ch)
			b.mutex.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber without blocking. A full
// subscriber queue drops the event for that subscriber only.
func (b *Broadcaster) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	payload := event.Encode()

	b.mutex.RLock()
	defer b.mutex.RUnlock()

	for ch := range b.subs {
		select {
		case ch <- payload:
		default:
			logger.Base().Warn("Dropping event for slow subscriber", zap.String("type", event.Type))
		}
	}
}

// SubscriberCount returns the number of connected subscribers.
func (b *Broadcaster) SubscriberCount() int {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return len(b.subs)
}

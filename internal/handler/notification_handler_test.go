package handler

import (
	"bufio"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/oranihq/orani-voice-service/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamSurvivesServerWriteTimeout(t *testing.T) {
	broadcaster := notify.NewBroadcaster()
	handler := NewNotificationHandler(broadcaster, nil)

	server := httptest.NewUnstartedServer(http.HandlerFunc(handler.Stream))
	server.Config.WriteTimeout = 100 * time.Millisecond
	server.Start()
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, ": connected\n", line)

	// Publish well past the server's write timeout; the handler clears
	// the connection deadline so the event must still get through.
	time.Sleep(300 * time.Millisecond)
	broadcaster.Publish(notify.Event{
		Type:      "call_started",
		UserID:    "user-1",
		CallID:    "call-1",
		Timestamp: time.Now(),
	})

	var payload string
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data: ") {
			payload = strings.TrimSuffix(strings.TrimPrefix(line, "data: "), "\n")
			break
		}
	}
	assert.Contains(t, payload, `"type":"call_started"`)
	assert.Contains(t, payload, `"user_id":"user-1"`)
}

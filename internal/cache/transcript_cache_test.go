package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndGet(t *testing.T) {
	c := NewTranscriptCache(time.Hour)
	ctx := context.Background()

	_, ok := c.Get(ctx, "call-1")
	assert.False(t, ok)

	c.Append(ctx, "call-1", "assistant: Hello!")
	c.Append(ctx, "call-1", "user: Hi.")

	transcript, ok := c.Get(ctx, "call-1")
	require.True(t, ok)
	assert.Equal(t, "assistant: Hello!\nuser: Hi.", transcript)
}

func TestDrop(t *testing.T) {
	c := NewTranscriptCache(time.Hour)
	ctx := context.Background()
	c.Append(ctx, "call-1", "assistant: Hello!")

	c.Drop(ctx, "call-1")

	_, ok := c.Get(ctx, "call-1")
	assert.False(t, ok)
}

func TestStaleEntriesAreEvicted(t *testing.T) {
	c := NewTranscriptCache(10 * time.Millisecond)
	ctx := context.Background()
	c.Append(ctx, "call-1", "assistant: Hello!")

	time.Sleep(30 * time.Millisecond)

	// Eviction runs on the next write.
	c.Append(ctx, "call-2", "user: Hi.")

	_, ok := c.Get(ctx, "call-1")
	assert.False(t, ok)
}

func TestEmptyArgumentsAreIgnored(t *testing.T) {
	c := NewTranscriptCache(time.Hour)
	ctx := context.Background()

	c.Append(ctx, "", "assistant: Hello!")
	c.Append(ctx, "call-1", "")

	_, ok := c.Get(ctx, "call-1")
	assert.False(t, ok)
}

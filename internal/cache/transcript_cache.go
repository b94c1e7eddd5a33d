package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// TranscriptStore buffers in-flight transcript fragments per call.
// TranscriptCache serves a single instance from process memory;
// RedisTranscriptStore shares the buffer across instances.
type TranscriptStore interface {
	Append(ctx context.Context, callID, fragment string)
	Get(ctx context.Context, callID string) (string, bool)
	Drop(ctx context.Context, callID string)
}

// TranscriptCache buffers in-flight transcript fragments per call in
// process memory. Best effort only: entries expire and nothing here is
// durable; the authoritative transcript is fetched from the provider
// after call end.
type TranscriptCache struct {
	mutex   sync.RWMutex
	entries map[string]*transcriptEntry
	ttl     time.Duration
}

var _ TranscriptStore = (*TranscriptCache)(nil)

type transcriptEntry struct {
	fragments []string
	updatedAt time.Time
}

// NewTranscriptCache creates a transcript cache with the given entry TTL.
func NewTranscriptCache(ttl time.Duration) *TranscriptCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TranscriptCache{
		entries: make(map[string]*transcriptEntry),
		ttl:     ttl,
	}
}

// Append adds one fragment to a call's buffer, evicting stale entries
// opportunistically.
func (c *TranscriptCache) Append(_ context.Context, callID, fragment string) {
	if callID == "" || fragment == "" {
		return
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.evictLocked()

	entry, ok := c.entries[callID]
	if !ok {
		entry = &transcriptEntry{}
		c.entries[callID] = entry
	}
	entry.fragments = append(entry.fragments, fragment)
	entry.updatedAt = time.Now()
}

// Get returns the buffered transcript for a call joined by newlines, and
// whether any fragments exist.
func (c *TranscriptCache) Get(_ context.Context, callID string) (string, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, ok := c.entries[callID]
	if !ok || len(entry.fragments) == 0 {
		return "", false
	}
	return strings.Join(entry.fragments, "\n"), true
}

// Drop removes a call's buffer, typically after the final summary is
// persisted.
func (c *TranscriptCache) Drop(_ context.Context, callID string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.entries, callID)
}

func (c *TranscriptCache) evictLocked() {
	cutoff := time.Now().Add(-c.ttl)
	for id, entry := range c.entries {
		if entry.updatedAt.Before(cutoff) {
			delete(c.entries, id)
		}
	}
}

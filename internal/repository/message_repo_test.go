package repository

import (
	"context"
	"testing"
	"time"

	"github.com/oranihq/orani-voice-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListThreadMatchesBothDirections(t *testing.T) {
	repo := NewMessageRepository(setupTestDB(t))
	ctx := context.Background()

	now := time.Now()
	inbound := &domain.Message{
		MessageSID: "sid-1",
		UserID:     "user-1",
		ToNumber:   "+15551230001",
		FromNumber: "+15557770002",
		Body:       "Are you open today?",
		Direction:  domain.MessageDirectionInbound,
		Timestamp:  now.Add(-2 * time.Minute),
	}
	outbound := &domain.Message{
		MessageSID: "sid-2",
		UserID:     "user-1",
		ToNumber:   "+15557770002",
		FromNumber: "+15551230001",
		Body:       "Yes, until 6pm.",
		Direction:  domain.MessageDirectionOutbound,
		Timestamp:  now.Add(-time.Minute),
	}
	unrelated := &domain.Message{
		MessageSID: "sid-3",
		UserID:     "user-1",
		ToNumber:   "+15551230001",
		FromNumber: "+15558880003",
		Body:       "Different customer",
		Direction:  domain.MessageDirectionInbound,
		Timestamp:  now,
	}
	for _, m := range []*domain.Message{inbound, outbound, unrelated} {
		require.NoError(t, repo.Create(ctx, m))
	}

	thread, err := repo.ListThread(ctx, "user-1", "+15557770002")
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, "sid-1", thread[0].MessageSID)
	assert.Equal(t, "sid-2", thread[1].MessageSID)

	all, err := repo.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "sid-3", all[0].MessageSID)
}

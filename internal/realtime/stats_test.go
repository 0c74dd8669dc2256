package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botconsole/internal/models"
	"botconsole/internal/store"
)

func seedConversation(t *testing.T, st *store.MemoryStore, kind models.ChannelKind, userID string) *models.Conversation {
	t.Helper()
	platform, err := st.PlatformByKind(kind)
	if err != nil {
		platform = &models.Platform{Name: string(kind), Kind: kind, Status: models.PlatformActive}
		require.NoError(t, st.CreatePlatform(platform))
	}
	conv := &models.Conversation{PlatformID: platform.ID, UserID: userID, Status: models.ConversationActive}
	require.NoError(t, st.CreateConversation(conv))
	return conv
}

func TestComputeStatsEmptyStore(t *testing.T) {
	st := store.NewMemoryStore()

	stats, err := ComputeStats(st, 1000)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalMessages)
	assert.Equal(t, 0, stats.ActiveUsers)
	assert.Equal(t, 100, stats.ResponseRate, "no user turns counts as fully answered")
	assert.Equal(t, 0, stats.AvgResponseTime)
}

func TestComputeStats(t *testing.T) {
	st := store.NewMemoryStore()
	conv := seedConversation(t, st, models.KindTelegram, "42")

	now := time.Now()
	lat1, lat2 := int64(120), int64(81)
	turns := []*models.Message{
		{ConversationID: conv.ID, Sender: models.SenderUser, Content: "hi", SentAt: now},
		{ConversationID: conv.ID, Sender: models.SenderBot, Content: "hello", ResponseTimeMs: &lat1, SentAt: now},
		{ConversationID: conv.ID, Sender: models.SenderUser, Content: "help", SentAt: now},
		{ConversationID: conv.ID, Sender: models.SenderBot, Content: "sure", ResponseTimeMs: &lat2, SentAt: now},
		{ConversationID: conv.ID, Sender: models.SenderUser, Content: "bye", SentAt: now},
	}
	for _, m := range turns {
		require.NoError(t, st.CreateMessage(m))
	}
	require.NoError(t, st.BumpPlatformActivity(conv.PlatformID, 3, now))
	require.NoError(t, st.BumpConversationActivity(conv.ID, 5, now))

	stats, err := ComputeStats(st, 1000)
	require.NoError(t, err)

	// Total messages comes from platform counters, not message rows.
	assert.Equal(t, 3, stats.TotalMessages)
	assert.Equal(t, 1, stats.ActiveUsers)
	// 2 bot turns over 3 user turns.
	assert.Equal(t, 66, stats.ResponseRate)
	// Rounded mean of 120 and 81.
	assert.Equal(t, 101, stats.AvgResponseTime)
}

func TestComputeStatsRateCapped(t *testing.T) {
	st := store.NewMemoryStore()
	conv := seedConversation(t, st, models.KindWhatsApp, "7")

	now := time.Now()
	msgs := []*models.Message{
		{ConversationID: conv.ID, Sender: models.SenderUser, Content: "hi", SentAt: now},
		{ConversationID: conv.ID, Sender: models.SenderBot, Content: "a", SentAt: now},
		{ConversationID: conv.ID, Sender: models.SenderBot, Content: "b", SentAt: now},
	}
	for _, m := range msgs {
		require.NoError(t, st.CreateMessage(m))
	}

	stats, err := ComputeStats(st, 1000)
	require.NoError(t, err)
	assert.Equal(t, 100, stats.ResponseRate)
}

func TestComputeStatsWindowLimitsSample(t *testing.T) {
	st := store.NewMemoryStore()
	conv := seedConversation(t, st, models.KindMessenger, "9")

	base := time.Now().Add(-time.Hour)
	slow := int64(5000)
	require.NoError(t, st.CreateMessage(&models.Message{
		ConversationID: conv.ID, Sender: models.SenderBot, Content: "old",
		ResponseTimeMs: &slow, SentAt: base,
	}))
	fast := int64(40)
	require.NoError(t, st.CreateMessage(&models.Message{
		ConversationID: conv.ID, Sender: models.SenderBot, Content: "new",
		ResponseTimeMs: &fast, SentAt: base.Add(time.Minute),
	}))

	stats, err := ComputeStats(st, 1)
	require.NoError(t, err)
	assert.Equal(t, 40, stats.AvgResponseTime, "only the newest message is in the window")
}

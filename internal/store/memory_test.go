package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botconsole/internal/models"
)

func TestMemoryStorePlatformCRUD(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.PlatformByID(1)
	assert.ErrorIs(t, err, ErrNotFound)

	p := &models.Platform{Name: "telegram", Kind: models.KindTelegram, Status: models.PlatformActive}
	require.NoError(t, s.CreatePlatform(p))
	assert.Equal(t, int64(1), p.ID)

	got, err := s.PlatformByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "telegram", got.Name)

	// Mutating the returned copy must not leak into the store.
	got.Name = "mutated"
	again, err := s.PlatformByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "telegram", again.Name)

	status := models.PlatformError
	updated, err := s.UpdatePlatform(p.ID, PlatformUpdate{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, models.PlatformError, updated.Status)
	assert.Equal(t, "telegram", updated.Name, "absent fields keep stored values")

	_, err = s.UpdatePlatform(99, PlatformUpdate{Status: &status})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStorePlatformByKindPrefersOldest(t *testing.T) {
	s := NewMemoryStore()

	first := &models.Platform{Name: "wa-1", Kind: models.KindWhatsApp, Status: models.PlatformActive}
	second := &models.Platform{Name: "wa-2", Kind: models.KindWhatsApp, Status: models.PlatformActive}
	require.NoError(t, s.CreatePlatform(first))
	require.NoError(t, s.CreatePlatform(second))

	got, err := s.PlatformByKind(models.KindWhatsApp)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
}

func TestMemoryStoreCounterBumps(t *testing.T) {
	s := NewMemoryStore()

	p := &models.Platform{Name: "tg", Kind: models.KindTelegram, Status: models.PlatformActive}
	require.NoError(t, s.CreatePlatform(p))
	c := &models.Conversation{PlatformID: p.ID, UserID: "5", Status: models.ConversationActive}
	require.NoError(t, s.CreateConversation(c))

	at := time.Now()
	require.NoError(t, s.BumpPlatformActivity(p.ID, 1, at))
	require.NoError(t, s.BumpPlatformActivity(p.ID, 1, at))
	require.NoError(t, s.BumpConversationActivity(c.ID, 2, at))

	gotP, err := s.PlatformByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, gotP.MessagesCount)
	require.NotNil(t, gotP.LastMessageAt)

	gotC, err := s.ConversationByID(c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, gotC.MessagesCount)

	assert.ErrorIs(t, s.BumpPlatformActivity(99, 1, at), ErrNotFound)
}

func TestMemoryStoreRecentMessagesOrdering(t *testing.T) {
	s := NewMemoryStore()
	base := time.Now()

	// Two share a timestamp; the higher id must come first.
	require.NoError(t, s.CreateMessage(&models.Message{ConversationID: 1, Content: "a", Sender: models.SenderUser, SentAt: base}))
	require.NoError(t, s.CreateMessage(&models.Message{ConversationID: 1, Content: "b", Sender: models.SenderBot, SentAt: base.Add(time.Second)}))
	require.NoError(t, s.CreateMessage(&models.Message{ConversationID: 1, Content: "c", Sender: models.SenderUser, SentAt: base.Add(time.Second)}))

	recent, err := s.RecentMessages(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].Content)
	assert.Equal(t, "b", recent[1].Content)

	all, err := s.RecentMessages(10)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	asc, err := s.MessagesByConversation(1)
	require.NoError(t, err)
	require.Len(t, asc, 3)
	assert.Equal(t, "a", asc[0].Content)
	assert.Equal(t, "c", asc[2].Content)
}

func TestMemoryStoreTemplates(t *testing.T) {
	s := NewMemoryStore()

	tpl := &models.Template{Name: "Greeting", Category: "greeting", Content: "Hi {name}!", Active: true}
	require.NoError(t, s.CreateTemplate(tpl))
	inactive := &models.Template{Name: "Old", Category: "greeting", Content: "Hello", Active: false}
	require.NoError(t, s.CreateTemplate(inactive))

	active, err := s.ListActiveTemplates()
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, tpl.ID, active[0].ID)

	require.NoError(t, s.IncrementTemplateUsage(tpl.ID))
	require.NoError(t, s.IncrementTemplateUsage(tpl.ID))
	got, err := s.TemplateByID(tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.UsageCount)

	require.NoError(t, s.DeleteTemplate(inactive.ID))
	assert.ErrorIs(t, s.DeleteTemplate(inactive.ID), ErrNotFound)
}

func TestMemoryStoreBotConfig(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.BotConfig()
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.UpdateBotConfig(BotConfigUpdate{})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.InitBotConfig(models.DefaultBotConfig()))

	threshold := 85
	cfg, err := s.UpdateBotConfig(BotConfigUpdate{ConfidenceThreshold: &threshold})
	require.NoError(t, err)
	assert.Equal(t, 85, cfg.ConfidenceThreshold)
	assert.Equal(t, "en", cfg.Language, "absent fields keep stored values")

	// Re-seeding never clobbers an existing row.
	require.NoError(t, s.InitBotConfig(models.DefaultBotConfig()))
	cfg, err = s.BotConfig()
	require.NoError(t, err)
	assert.Equal(t, 85, cfg.ConfidenceThreshold)
}

func TestMemoryStoreCurrentModel(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.CurrentModel()
	assert.ErrorIs(t, err, ErrNotFound)

	training := &models.MlModel{Name: "m1", Status: models.ModelTraining}
	require.NoError(t, s.CreateModel(training))

	// No ready model yet: fall back to the newest row.
	got, err := s.CurrentModel()
	require.NoError(t, err)
	assert.Equal(t, training.ID, got.ID)

	ready := &models.MlModel{Name: "m2", Status: models.ModelReady}
	require.NoError(t, s.CreateModel(ready))
	later := &models.MlModel{Name: "m3", Status: models.ModelTraining}
	require.NoError(t, s.CreateModel(later))

	// A ready model wins over a newer non-ready one.
	got, err = s.CurrentModel()
	require.NoError(t, err)
	assert.Equal(t, ready.ID, got.ID)
}

func TestMemoryStoreActiveUserCount(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now()

	c1 := &models.Conversation{PlatformID: 1, UserID: "a", Status: models.ConversationActive}
	c2 := &models.Conversation{PlatformID: 1, UserID: "b", Status: models.ConversationActive}
	c3 := &models.Conversation{PlatformID: 2, UserID: "a", Status: models.ConversationActive}
	for _, c := range []*models.Conversation{c1, c2, c3} {
		require.NoError(t, s.CreateConversation(c))
	}

	require.NoError(t, s.BumpConversationActivity(c1.ID, 2, now))
	require.NoError(t, s.BumpConversationActivity(c3.ID, 2, now))
	require.NoError(t, s.BumpConversationActivity(c2.ID, 2, now.Add(-48*time.Hour)))

	// Same external user id on two platforms counts once; stale activity
	// falls outside the window.
	count, err := s.ActiveUserCount(now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMemoryStoreLogsAndUsers(t *testing.T) {
	s := NewMemoryStore()

	for _, msg := range []string{"first", "second", "third"} {
		require.NoError(t, s.AppendLog(&models.LogEntry{Level: models.LogInfo, Message: msg, Source: "test"}))
	}
	logs, err := s.RecentLogs(2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "third", logs[0].Message)
	assert.Equal(t, "second", logs[1].Message)

	count, err := s.CountUsers()
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, s.CreateUser(&models.User{Username: "admin", PasswordHash: "x", Role: "admin"}))
	u, err := s.UserByUsername("admin")
	require.NoError(t, err)
	assert.Equal(t, "admin", u.Role)

	_, err = s.UserByUsername("ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"botconsole/internal/channels"
	"botconsole/internal/models"
	"botconsole/internal/nlp"
	"botconsole/internal/responder"
	"botconsole/internal/store"
)

type stubAdapter struct {
	kind    models.ChannelKind
	sent    []string
	sendErr error
}

func (a *stubAdapter) Kind() models.ChannelKind { return a.kind }

func (a *stubAdapter) ParseInbound(body []byte) ([]channels.InboundMessage, error) {
	return nil, nil
}

func (a *stubAdapter) Send(ctx context.Context, platform *models.Platform, userID, text string) error {
	if a.sendErr != nil {
		return a.sendErr
	}
	a.sent = append(a.sent, text)
	return nil
}

type stubNotifier struct {
	messages  []*models.Message
	platforms int
	logs      []*models.LogEntry
}

func (n *stubNotifier) MessagesCreated(msgs []*models.Message) {
	n.messages = append(n.messages, msgs...)
}

func (n *stubNotifier) PlatformsChanged() { n.platforms++ }

func (n *stubNotifier) LogAppended(l *models.LogEntry) { n.logs = append(n.logs, l) }

func newTestPipeline(t *testing.T, adapter *stubAdapter) (*Pipeline, *store.MemoryStore, *stubNotifier) {
	t.Helper()
	st := store.NewMemoryStore()
	require.NoError(t, st.InitBotConfig(models.DefaultBotConfig()))

	logger := zap.NewNop()
	registry := channels.NewRegistry("verify-token", logger)
	registry.Register(adapter)

	selector := responder.NewSelector(nlp.NewClassifier(), st, logger)
	notifier := &stubNotifier{}
	p := New(st, selector, registry, nil, notifier, logger)
	return p, st, notifier
}

func TestProcessPersistsBothTurns(t *testing.T) {
	adapter := &stubAdapter{kind: models.KindTelegram}
	p, st, notifier := newTestPipeline(t, adapter)

	received := time.Now().Add(-20 * time.Millisecond)
	p.Process(context.Background(), models.KindTelegram, channels.InboundMessage{
		UserID:   "501",
		UserName: "Dana",
		Text:     "hello there",
	}, received)

	platform, err := st.PlatformByKind(models.KindTelegram)
	require.NoError(t, err)
	assert.Equal(t, 1, platform.MessagesCount)
	require.NotNil(t, platform.LastMessageAt)

	conv, err := st.ConversationByPlatformUser(platform.ID, "501")
	require.NoError(t, err)
	assert.Equal(t, 2, conv.MessagesCount)
	require.NotNil(t, conv.UserName)
	assert.Equal(t, "Dana", *conv.UserName)

	msgs, err := st.MessagesByConversation(conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, models.SenderUser, msgs[0].Sender)
	assert.Equal(t, "hello there", msgs[0].Content)
	assert.Nil(t, msgs[0].Confidence)

	assert.Equal(t, models.SenderBot, msgs[1].Sender)
	require.NotNil(t, msgs[1].Confidence)
	assert.Equal(t, nlp.BaselineConfidence, *msgs[1].Confidence)
	require.NotNil(t, msgs[1].ResponseTimeMs)
	assert.GreaterOrEqual(t, *msgs[1].ResponseTimeMs, int64(20))

	require.Len(t, adapter.sent, 1)
	assert.Equal(t, msgs[1].Content, adapter.sent[0])

	assert.Len(t, notifier.messages, 2)
	assert.Equal(t, 1, notifier.platforms)
	require.Len(t, notifier.logs, 1)
	assert.Equal(t, models.LogInfo, notifier.logs[0].Level)
}

func TestProcessReusesConversation(t *testing.T) {
	adapter := &stubAdapter{kind: models.KindWhatsApp}
	p, st, _ := newTestPipeline(t, adapter)

	ctx := context.Background()
	p.Process(ctx, models.KindWhatsApp, channels.InboundMessage{UserID: "77", Text: "hi"}, time.Now())
	p.Process(ctx, models.KindWhatsApp, channels.InboundMessage{UserID: "77", Text: "thanks"}, time.Now())

	platform, err := st.PlatformByKind(models.KindWhatsApp)
	require.NoError(t, err)
	assert.Equal(t, 2, platform.MessagesCount)

	convs, err := st.ListConversations()
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, 4, convs[0].MessagesCount)

	msgs, err := st.MessagesByConversation(convs[0].ID)
	require.NoError(t, err)
	assert.Len(t, msgs, 4)
}

func TestProcessDeliveryFailureStillPersists(t *testing.T) {
	adapter := &stubAdapter{kind: models.KindMessenger, sendErr: errors.New("api unreachable")}
	p, st, notifier := newTestPipeline(t, adapter)

	p.Process(context.Background(), models.KindMessenger, channels.InboundMessage{UserID: "9", Text: "help"}, time.Now())

	platform, err := st.PlatformByKind(models.KindMessenger)
	require.NoError(t, err)
	assert.Equal(t, 1, platform.MessagesCount)

	conv, err := st.ConversationByPlatformUser(platform.ID, "9")
	require.NoError(t, err)
	msgs, err := st.MessagesByConversation(conv.ID)
	require.NoError(t, err)
	assert.Len(t, msgs, 2)

	logs, err := st.RecentLogs(10)
	require.NoError(t, err)
	var deliveryFailures int
	for _, l := range logs {
		if l.Level == models.LogError && l.Message == "Outbound delivery failed" {
			deliveryFailures++
		}
	}
	assert.Equal(t, 1, deliveryFailures)

	assert.Len(t, notifier.messages, 2)
}

func TestProcessMissingBotConfig(t *testing.T) {
	adapter := &stubAdapter{kind: models.KindTelegram}
	st := store.NewMemoryStore()
	logger := zap.NewNop()
	registry := channels.NewRegistry("verify-token", logger)
	registry.Register(adapter)
	selector := responder.NewSelector(nlp.NewClassifier(), st, logger)
	p := New(st, selector, registry, nil, &stubNotifier{}, logger)

	p.Process(context.Background(), models.KindTelegram, channels.InboundMessage{UserID: "1", Text: "hi"}, time.Now())

	// The user turn is stored before config resolution fails; no bot turn
	// and no outbound delivery follow.
	platform, err := st.PlatformByKind(models.KindTelegram)
	require.NoError(t, err)
	conv, err := st.ConversationByPlatformUser(platform.ID, "1")
	require.NoError(t, err)
	msgs, err := st.MessagesByConversation(conv.ID)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
	assert.Empty(t, adapter.sent)

	logs, err := st.RecentLogs(10)
	require.NoError(t, err)
	require.NotEmpty(t, logs)
	assert.Equal(t, models.LogError, logs[0].Level)
}

func TestProcessUnknownChannel(t *testing.T) {
	adapter := &stubAdapter{kind: models.KindTelegram}
	p, st, _ := newTestPipeline(t, adapter)

	p.Process(context.Background(), models.ChannelKind("carrier-pigeon"), channels.InboundMessage{UserID: "1", Text: "hi"}, time.Now())

	platforms, err := st.ListPlatforms()
	require.NoError(t, err)
	assert.Empty(t, platforms)
}

func TestGeneratedUserNamePlaceholder(t *testing.T) {
	adapter := &stubAdapter{kind: models.KindMessenger}
	p, st, _ := newTestPipeline(t, adapter)

	p.Process(context.Background(), models.KindMessenger, channels.InboundMessage{UserID: "314159", Text: "hi"}, time.Now())

	platform, err := st.PlatformByKind(models.KindMessenger)
	require.NoError(t, err)
	conv, err := st.ConversationByPlatformUser(platform.ID, "314159")
	require.NoError(t, err)
	require.NotNil(t, conv.UserName)
	assert.Equal(t, "User 314159", *conv.UserName)
}

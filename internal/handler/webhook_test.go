package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"botconsole/internal/channels"
	"botconsole/internal/models"
	"botconsole/internal/nlp"
	"botconsole/internal/pipeline"
	"botconsole/internal/responder"
	"botconsole/internal/store"
)

type noopNotifier struct{}

func (noopNotifier) MessagesCreated(msgs []*models.Message) {}
func (noopNotifier) PlatformsChanged()                      {}
func (noopNotifier) LogAppended(l *models.LogEntry)         {}

func newWebhookRouter(t *testing.T) (*gin.Engine, *store.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewMemoryStore()
	require.NoError(t, st.InitBotConfig(models.DefaultBotConfig()))

	logger := zap.NewNop()
	registry := channels.NewRegistry("secret-token", logger)
	selector := responder.NewSelector(nlp.NewClassifier(), st, logger)
	pipe := pipeline.New(st, selector, registry, nil, noopNotifier{}, logger)

	h := NewWebhookHandler(registry, pipe, logger)
	router := gin.New()
	router.GET("/webhooks/:channel", h.Verify)
	router.POST("/webhooks/:channel", h.Receive)
	return router, st
}

func TestWebhookVerify(t *testing.T) {
	router, _ := newWebhookRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/webhooks/whatsapp?hub.mode=subscribe&hub.verify_token=secret-token&hub.challenge=12345", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "12345", w.Body.String())

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet,
		"/webhooks/whatsapp?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NotContains(t, w.Body.String(), "12345")

	// Telegram has no handshake.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/webhooks/telegram?hub.mode=subscribe", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWebhookReceiveTelegram(t *testing.T) {
	router, st := newWebhookRouter(t)

	payload := `{"update_id":10,"message":{"message_id":1,"date":0,"text":"hello there","chat":{"id":99},"from":{"id":99,"first_name":"Ann"}}}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/telegram", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	platform, err := st.PlatformByKind(models.KindTelegram)
	require.NoError(t, err)
	conv, err := st.ConversationByPlatformUser(platform.ID, "99")
	require.NoError(t, err)
	msgs, err := st.MessagesByConversation(conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, models.SenderUser, msgs[0].Sender)
	assert.Equal(t, models.SenderBot, msgs[1].Sender)
}

func TestWebhookReceiveGarbageStillAcks(t *testing.T) {
	router, st := newWebhookRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/telegram", strings.NewReader("{not json"))
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, "platforms must never be told to retry")

	convs, err := st.ListConversations()
	require.NoError(t, err)
	assert.Empty(t, convs)
}

func TestWebhookUnknownChannel(t *testing.T) {
	router, _ := newWebhookRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/smoke-signals", strings.NewReader("{}"))
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

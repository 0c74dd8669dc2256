package channels

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"botconsole/internal/models"
)

func strPtr(s string) *string { return &s }

func TestWhatsAppParseInbound(t *testing.T) {
	a := NewWhatsAppAdapter("secret", http.DefaultClient, zap.NewNop())

	payload := `{
		"entry": [{
			"changes": [{
				"value": {
					"contacts": [{"wa_id": "15551234", "profile": {"name": "Sam"}}],
					"messages": [
						{"from": "15551234", "type": "text", "text": {"body": "hello there"}},
						{"from": "15551234", "type": "image"}
					]
				}
			}]
		}]
	}`

	msgs, err := a.ParseInbound([]byte(payload))
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, InboundMessage{UserID: "15551234", UserName: "Sam", Text: "hello there"}, msgs[0])
	assert.Equal(t, MediaPlaceholder, msgs[1].Text)
}

func TestWhatsAppParseInboundMalformed(t *testing.T) {
	a := NewWhatsAppAdapter("secret", http.DefaultClient, zap.NewNop())

	_, err := a.ParseInbound([]byte("not json"))
	assert.Error(t, err)

	msgs, err := a.ParseInbound([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestMetaVerifyHandshake(t *testing.T) {
	for _, v := range []Verifier{
		NewWhatsAppAdapter("secret", http.DefaultClient, zap.NewNop()),
		NewMessengerAdapter("secret", http.DefaultClient, zap.NewNop()),
	} {
		challenge, ok := v.Verify("subscribe", "secret", "12345")
		assert.True(t, ok)
		assert.Equal(t, "12345", challenge)

		_, ok = v.Verify("subscribe", "wrong", "12345")
		assert.False(t, ok)

		_, ok = v.Verify("unsubscribe", "secret", "12345")
		assert.False(t, ok)
	}
}

func TestMessengerParseInbound(t *testing.T) {
	a := NewMessengerAdapter("secret", http.DefaultClient, zap.NewNop())

	payload := `{
		"object": "page",
		"entry": [
			{"messaging": [{"sender": {"id": "9001"}, "message": {"text": "how much is shipping"}}]},
			{"messaging": [{"sender": {"id": "9002"}, "message": {}}]}
		]
	}`

	msgs, err := a.ParseInbound([]byte(payload))
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "9001", msgs[0].UserID)
	assert.Equal(t, "how much is shipping", msgs[0].Text)
	assert.Equal(t, MediaPlaceholder, msgs[1].Text)
}

func TestTelegramParseInbound(t *testing.T) {
	a := NewTelegramAdapter(http.DefaultClient, zap.NewNop())

	payload := `{
		"update_id": 10,
		"message": {
			"message_id": 1,
			"from": {"id": 777, "first_name": "Sam", "last_name": "Doe"},
			"chat": {"id": 777},
			"text": "hi bot"
		}
	}`
	msgs, err := a.ParseInbound([]byte(payload))
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, InboundMessage{UserID: "777", UserName: "Sam Doe", Text: "hi bot"}, msgs[0])

	// A callback-only update produces no inbound messages.
	msgs, err = a.ParseInbound([]byte(`{"update_id": 11}`))
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestWhatsAppSend(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody waSendRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	a := NewWhatsAppAdapter("secret", ts.Client(), zap.NewNop())
	a.apiBase = ts.URL

	platform := &models.Platform{
		Kind:        models.KindWhatsApp,
		Credentials: strPtr("tok-123"),
		Config:      models.JSONMap{"phone_number_id": "555000"},
	}
	err := a.Send(context.Background(), platform, "15551234", "hello back")
	require.NoError(t, err)

	assert.Equal(t, "/555000/messages", gotPath)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "15551234", gotBody.To)
	assert.Equal(t, "hello back", gotBody.Text.Body)
}

func TestWhatsAppSendMissingCredentials(t *testing.T) {
	called := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer ts.Close()

	a := NewWhatsAppAdapter("secret", ts.Client(), zap.NewNop())
	a.apiBase = ts.URL

	// No credential at all: logged no-op, not an error.
	err := a.Send(context.Background(), &models.Platform{Kind: models.KindWhatsApp}, "1", "x")
	require.NoError(t, err)
	assert.False(t, called)
}

func TestWhatsAppSendUpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bad token"}`, http.StatusUnauthorized)
	}))
	defer ts.Close()

	a := NewWhatsAppAdapter("secret", ts.Client(), zap.NewNop())
	a.apiBase = ts.URL

	platform := &models.Platform{
		Credentials: strPtr("tok"),
		Config:      models.JSONMap{"phone_number_id": "555000"},
	}
	err := a.Send(context.Background(), platform, "1", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestMessengerSend(t *testing.T) {
	var gotBody fbSendRequest
	var gotToken string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.URL.Query().Get("access_token")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	a := NewMessengerAdapter("secret", ts.Client(), zap.NewNop())
	a.apiBase = ts.URL

	platform := &models.Platform{Kind: models.KindMessenger, Credentials: strPtr("page-tok")}
	err := a.Send(context.Background(), platform, "9001", "reply text")
	require.NoError(t, err)

	assert.Equal(t, "page-tok", gotToken)
	assert.Equal(t, "9001", gotBody.Recipient.ID)
	assert.Equal(t, "reply text", gotBody.Message.Text)
}

func TestTelegramSend(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok": true, "result": {"message_id": 1}}`))
	}))
	defer ts.Close()

	a := NewTelegramAdapter(ts.Client(), zap.NewNop())
	a.apiEndpoint = ts.URL + "/bot%s/%s"

	platform := &models.Platform{Kind: models.KindTelegram, Credentials: strPtr("bot-token")}
	err := a.Send(context.Background(), platform, "777", "hi back")
	require.NoError(t, err)
	assert.Equal(t, "/botbot-token/sendMessage", gotPath)
}

func TestTelegramSendInvalidChatID(t *testing.T) {
	a := NewTelegramAdapter(http.DefaultClient, zap.NewNop())

	platform := &models.Platform{Kind: models.KindTelegram, Credentials: strPtr("tok")}
	err := a.Send(context.Background(), platform, "not-a-number", "x")
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry("secret", zap.NewNop())

	for _, kind := range []models.ChannelKind{models.KindWhatsApp, models.KindTelegram, models.KindMessenger} {
		a, ok := r.Adapter(kind)
		require.True(t, ok, "missing adapter for %s", kind)
		assert.Equal(t, kind, a.Kind())
	}

	_, ok := r.Adapter(models.ChannelKind("carrier-pigeon"))
	assert.False(t, ok)
}

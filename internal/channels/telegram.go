package channels

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"botconsole/internal/models"
)

// TelegramAdapter speaks the Telegram Bot API through the official client
// library. Telegram pushes one Update per webhook delivery and has no
// subscription handshake, so the adapter implements no Verifier.
type TelegramAdapter struct {
	client *http.Client
	logger *zap.Logger

	mu          sync.Mutex
	bots        map[string]*tgbotapi.BotAPI // keyed by token
	apiEndpoint string
}

func NewTelegramAdapter(client *http.Client, logger *zap.Logger) *TelegramAdapter {
	return &TelegramAdapter{
		client:      client,
		logger:      logger,
		bots:        make(map[string]*tgbotapi.BotAPI),
		apiEndpoint: tgbotapi.APIEndpoint,
	}
}

func (a *TelegramAdapter) Kind() models.ChannelKind { return models.KindTelegram }

func (a *TelegramAdapter) ParseInbound(body []byte) ([]InboundMessage, error) {
	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		return nil, fmt.Errorf("failed to decode telegram update: %w", err)
	}
	if update.Message == nil || update.Message.From == nil {
		// Edits, callbacks and service updates carry no inbound user text.
		return nil, nil
	}

	text := update.Message.Text
	if text == "" {
		text = MediaPlaceholder
	}

	name := strings.TrimSpace(update.Message.From.FirstName + " " + update.Message.From.LastName)
	return []InboundMessage{{
		UserID:   strconv.FormatInt(update.Message.From.ID, 10),
		UserName: name,
		Text:     text,
	}}, nil
}

func (a *TelegramAdapter) Send(ctx context.Context, platform *models.Platform, userID, text string) error {
	token := credential(platform)
	if token == "" {
		a.logger.Warn("Telegram bot token not configured, skipping send",
			zap.String("user_id", userID),
		)
		return nil
	}

	chatID, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid telegram chat id %q: %w", userID, err)
	}

	bot := a.bot(token)
	if _, err := bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("telegram send failed: %w", err)
	}
	return nil
}

// bot returns a cached API client for the token. The client is constructed
// directly instead of via NewBotAPI, which would issue a getMe call on every
// platform credential rotation.
func (a *TelegramAdapter) bot(token string) *tgbotapi.BotAPI {
	a.mu.Lock()
	defer a.mu.Unlock()
	if bot, ok := a.bots[token]; ok {
		return bot
	}
	bot := &tgbotapi.BotAPI{
		Token:  token,
		Client: a.client,
		Buffer: 100,
	}
	bot.SetAPIEndpoint(a.apiEndpoint)
	a.bots[token] = bot
	return bot
}

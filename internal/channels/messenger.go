package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"botconsole/internal/models"
)

// fbPayload is the Messenger Platform webhook envelope.
type fbPayload struct {
	Object string `json:"object"`
	Entry  []struct {
		Messaging []struct {
			Sender struct {
				ID string `json:"id"`
			} `json:"sender"`
			Message struct {
				Text string `json:"text"`
			} `json:"message"`
		} `json:"messaging"`
	} `json:"entry"`
}

type fbSendRequest struct {
	Recipient struct {
		ID string `json:"id"`
	} `json:"recipient"`
	Message struct {
		Text string `json:"text"`
	} `json:"message"`
}

// MessengerAdapter speaks the Facebook Messenger send API. The platform
// credential is the page access token.
type MessengerAdapter struct {
	verifyToken string
	client      *http.Client
	logger      *zap.Logger
	apiBase     string
}

func NewMessengerAdapter(verifyToken string, client *http.Client, logger *zap.Logger) *MessengerAdapter {
	return &MessengerAdapter{
		verifyToken: verifyToken,
		client:      client,
		logger:      logger,
		apiBase:     graphAPIBase,
	}
}

func (a *MessengerAdapter) Kind() models.ChannelKind { return models.KindMessenger }

func (a *MessengerAdapter) Verify(mode, token, challenge string) (string, bool) {
	if mode == "subscribe" && token != "" && token == a.verifyToken {
		return challenge, true
	}
	return "", false
}

func (a *MessengerAdapter) ParseInbound(body []byte) ([]InboundMessage, error) {
	var payload fbPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode messenger payload: %w", err)
	}

	var out []InboundMessage
	for _, entry := range payload.Entry {
		for _, event := range entry.Messaging {
			if event.Sender.ID == "" {
				continue
			}
			text := event.Message.Text
			if text == "" {
				text = MediaPlaceholder
			}
			// Messenger does not put a display name in the webhook; the
			// resolver generates a placeholder.
			out = append(out, InboundMessage{UserID: event.Sender.ID, Text: text})
		}
	}
	return out, nil
}

func (a *MessengerAdapter) Send(ctx context.Context, platform *models.Platform, userID, text string) error {
	token := credential(platform)
	if token == "" {
		a.logger.Warn("Messenger page token not configured, skipping send",
			zap.String("user_id", userID),
		)
		return nil
	}

	reqBody := fbSendRequest{}
	reqBody.Recipient.ID = userID
	reqBody.Message.Text = text

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/me/messages?access_token=%s", a.apiBase, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("messenger API returned status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

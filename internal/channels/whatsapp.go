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

const graphAPIBase = "https://graph.facebook.com/v17.0"

// waPayload is the WhatsApp Cloud API webhook envelope (the subset this
// system consumes).
type waPayload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Contacts []struct {
					WaID    string `json:"wa_id"`
					Profile struct {
						Name string `json:"name"`
					} `json:"profile"`
				} `json:"contacts"`
				Messages []struct {
					From string `json:"from"`
					Type string `json:"type"`
					Text struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

type waSendRequest struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		Body string `json:"body"`
	} `json:"text"`
}

// WhatsAppAdapter speaks the WhatsApp Cloud API. Outbound sends need the
// platform credential (access token) and a "phone_number_id" entry in the
// platform config map.
type WhatsAppAdapter struct {
	verifyToken string
	client      *http.Client
	logger      *zap.Logger
	apiBase     string
}

func NewWhatsAppAdapter(verifyToken string, client *http.Client, logger *zap.Logger) *WhatsAppAdapter {
	return &WhatsAppAdapter{
		verifyToken: verifyToken,
		client:      client,
		logger:      logger,
		apiBase:     graphAPIBase,
	}
}

func (a *WhatsAppAdapter) Kind() models.ChannelKind { return models.KindWhatsApp }

func (a *WhatsAppAdapter) Verify(mode, token, challenge string) (string, bool) {
	if mode == "subscribe" && token != "" && token == a.verifyToken {
		return challenge, true
	}
	return "", false
}

func (a *WhatsAppAdapter) ParseInbound(body []byte) ([]InboundMessage, error) {
	var payload waPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode whatsapp payload: %w", err)
	}

	var out []InboundMessage
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			names := make(map[string]string, len(change.Value.Contacts))
			for _, contact := range change.Value.Contacts {
				names[contact.WaID] = contact.Profile.Name
			}
			for _, msg := range change.Value.Messages {
				if msg.From == "" {
					continue
				}
				text := MediaPlaceholder
				if msg.Type == "text" && msg.Text.Body != "" {
					text = msg.Text.Body
				}
				out = append(out, InboundMessage{
					UserID:   msg.From,
					UserName: names[msg.From],
					Text:     text,
				})
			}
		}
	}
	return out, nil
}

func (a *WhatsAppAdapter) Send(ctx context.Context, platform *models.Platform, userID, text string) error {
	token := credential(platform)
	phoneNumberID := platform.Config.String("phone_number_id")
	if token == "" || phoneNumberID == "" {
		a.logger.Warn("WhatsApp credentials not configured, skipping send",
			zap.String("user_id", userID),
		)
		return nil
	}

	reqBody := waSendRequest{MessagingProduct: "whatsapp", To: userID, Type: "text"}
	reqBody.Text.Body = text

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", a.apiBase, phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("whatsapp API returned status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

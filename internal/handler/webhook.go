package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"botconsole/internal/channels"
	"botconsole/internal/models"
	"botconsole/internal/pipeline"
)

type WebhookHandler interface {
	Receive(c *gin.Context)
	Verify(c *gin.Context)
}

type webhookHandler struct {
	registry *channels.Registry
	pipe     *pipeline.Pipeline
	logger   *zap.Logger
}

func NewWebhookHandler(registry *channels.Registry, pipe *pipeline.Pipeline, logger *zap.Logger) WebhookHandler {
	return &webhookHandler{registry: registry, pipe: pipe, logger: logger}
}

// Receive handles POST /webhooks/:channel. The platform must get a fast 2xx
// regardless of processing outcome, otherwise it retries the same delivery;
// failures are logged inside the pipeline, never surfaced here.
func (h *webhookHandler) Receive(c *gin.Context) {
	kind := models.ChannelKind(c.Param("channel"))
	adapter, ok := h.registry.Adapter(kind)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown channel"})
		return
	}

	receivedAt := time.Now()
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Error("Failed to read webhook body", zap.String("channel", string(kind)), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"status": "received"})
		return
	}

	inbound, err := adapter.ParseInbound(body)
	if err != nil {
		h.logger.Error("Failed to parse webhook payload", zap.String("channel", string(kind)), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"status": "received"})
		return
	}

	for _, in := range inbound {
		h.pipe.Process(c.Request.Context(), kind, in, receivedAt)
	}

	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

// Verify handles GET /webhooks/:channel, the Meta subscription handshake.
// Channels without a handshake respond 404 here.
func (h *webhookHandler) Verify(c *gin.Context) {
	kind := models.ChannelKind(c.Param("channel"))
	adapter, ok := h.registry.Adapter(kind)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown channel"})
		return
	}

	verifier, ok := adapter.(channels.Verifier)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "channel has no verification handshake"})
		return
	}

	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	echo, ok := verifier.Verify(mode, token, challenge)
	if !ok {
		h.logger.Warn("Webhook verification rejected", zap.String("channel", string(kind)), zap.String("mode", mode))
		c.JSON(http.StatusForbidden, gin.H{"error": "verification failed"})
		return
	}

	c.String(http.StatusOK, echo)
}

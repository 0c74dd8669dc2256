package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"botconsole/internal/channels"
	"botconsole/internal/crypto"
	"botconsole/internal/models"
	"botconsole/internal/responder"
	"botconsole/internal/store"
)

// Notifier receives state-change events for fan-out to dashboard observers.
type Notifier interface {
	MessagesCreated(msgs []*models.Message)
	PlatformsChanged()
	LogAppended(l *models.LogEntry)
}

// Pipeline runs the intake-to-response sequence for each normalized inbound
// message. It is stateless across deliveries; all state lives in the store.
type Pipeline struct {
	store    store.Store
	selector *responder.Selector
	adapters *channels.Registry
	cipher   *crypto.Cipher
	notify   Notifier
	logger   *zap.Logger
}

func New(st store.Store, selector *responder.Selector, adapters *channels.Registry, cipher *crypto.Cipher, notify Notifier, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		store:    st,
		selector: selector,
		adapters: adapters,
		cipher:   cipher,
		notify:   notify,
		logger:   logger,
	}
}

// Process handles one normalized inbound message end to end: platform and
// conversation resolution, persistence of both turns, response selection,
// outbound delivery, counter updates and fan-out. Any failure is caught
// here, logged with source = channel kind, and swallowed: the webhook
// caller always gets a success acknowledgment so the platform does not
// retry the delivery.
func (p *Pipeline) Process(ctx context.Context, kind models.ChannelKind, in channels.InboundMessage, receivedAt time.Time) {
	if err := p.runTurn(ctx, kind, in, receivedAt); err != nil {
		p.logger.Error("Pipeline run failed",
			zap.String("channel", string(kind)),
			zap.String("user_id", in.UserID),
			zap.Error(err),
		)
		p.appendLog(models.LogError, "Message processing failed", string(kind), models.JSONMap{
			"user_id": in.UserID,
			"error":   err.Error(),
		})
	}
}

func (p *Pipeline) runTurn(ctx context.Context, kind models.ChannelKind, in channels.InboundMessage, receivedAt time.Time) error {
	adapter, ok := p.adapters.Adapter(kind)
	if !ok {
		return fmt.Errorf("no adapter registered for channel %q", kind)
	}

	platform, err := p.resolvePlatform(kind)
	if err != nil {
		return err
	}

	conv, err := p.resolveConversation(platform.ID, in.UserID, in.UserName)
	if err != nil {
		return err
	}

	userMsg := &models.Message{
		ConversationID: conv.ID,
		Content:        in.Text,
		Sender:         models.SenderUser,
		SentAt:         receivedAt,
	}
	if err := p.store.CreateMessage(userMsg); err != nil {
		return fmt.Errorf("failed to persist user message: %w", err)
	}

	cfg, err := p.store.BotConfig()
	if err != nil {
		return fmt.Errorf("failed to load bot config: %w", err)
	}

	result, err := p.selector.Select(in.Text, cfg)
	if err != nil {
		return err
	}

	// The latency window spans webhook receipt through response selection.
	elapsed := time.Since(receivedAt).Milliseconds()
	botMsg := &models.Message{
		ConversationID: conv.ID,
		Content:        result.Response,
		Sender:         models.SenderBot,
		Confidence:     &result.Confidence,
		ResponseTimeMs: &elapsed,
		TemplateID:     result.TemplateID,
		SentAt:         time.Now(),
	}
	if err := p.store.CreateMessage(botMsg); err != nil {
		return fmt.Errorf("failed to persist bot message: %w", err)
	}

	// Delivery failure is recoverable: the stored conversation stays
	// consistent, only a log entry marks the failed send.
	if err := p.deliver(ctx, adapter, platform, in.UserID, result.Response); err != nil {
		p.logger.Warn("Outbound delivery failed",
			zap.String("channel", string(kind)),
			zap.String("user_id", in.UserID),
			zap.Error(err),
		)
		p.appendLog(models.LogError, "Outbound delivery failed", string(kind), models.JSONMap{
			"user_id": in.UserID,
			"error":   err.Error(),
		})
	}

	now := time.Now()
	if err := p.store.BumpPlatformActivity(platform.ID, 1, now); err != nil {
		return fmt.Errorf("failed to update platform counters: %w", err)
	}
	if err := p.store.BumpConversationActivity(conv.ID, 2, now); err != nil {
		return fmt.Errorf("failed to update conversation counters: %w", err)
	}

	if cfg.MaxResponseTime > 0 && elapsed > int64(cfg.MaxResponseTime)*1000 {
		p.logger.Warn("Turn exceeded configured response time budget",
			zap.Int64("elapsed_ms", elapsed),
			zap.Int("budget_s", cfg.MaxResponseTime),
		)
	}

	p.appendLog(models.LogInfo, "Message processed", string(kind), models.JSONMap{
		"conversation_id": conv.ID,
		"intent":          result.Intent,
		"confidence":      result.Confidence,
		"response_ms":     elapsed,
	})

	if p.notify != nil {
		p.notify.MessagesCreated([]*models.Message{userMsg, botMsg})
		p.notify.PlatformsChanged()
	}
	return nil
}

// deliver decrypts the platform credential and hands the response to the
// channel adapter.
func (p *Pipeline) deliver(ctx context.Context, adapter channels.Adapter, platform *models.Platform, userID, text string) error {
	out := *platform
	if platform.Credentials != nil {
		plain, err := p.cipher.Decrypt(*platform.Credentials)
		if err != nil {
			return fmt.Errorf("failed to decrypt platform credential: %w", err)
		}
		out.Credentials = &plain
	}
	return adapter.Send(ctx, &out, userID, text)
}

// appendLog writes a dashboard log entry and pushes it to observers; a
// store failure here is reported to the process log only, never escalated.
func (p *Pipeline) appendLog(level models.LogLevel, message, source string, details models.JSONMap) {
	entry := &models.LogEntry{
		Level:   level,
		Message: message,
		Details: details,
		Source:  source,
	}
	if err := p.store.AppendLog(entry); err != nil {
		p.logger.Error("Failed to append log entry", zap.Error(err))
		return
	}
	if p.notify != nil {
		p.notify.LogAppended(entry)
	}
}

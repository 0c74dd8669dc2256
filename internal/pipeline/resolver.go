package pipeline

import (
	"errors"
	"fmt"

	"botconsole/internal/models"
	"botconsole/internal/store"
)

// resolvePlatform finds the platform record for a channel kind, creating it
// on the first inbound message from a hitherto-unseen channel.
func (p *Pipeline) resolvePlatform(kind models.ChannelKind) (*models.Platform, error) {
	platform, err := p.store.PlatformByKind(kind)
	if err == nil {
		return platform, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up platform: %w", err)
	}

	platform = &models.Platform{
		Name:   string(kind),
		Kind:   kind,
		Status: models.PlatformActive,
	}
	if err := p.store.CreatePlatform(platform); err != nil {
		return nil, fmt.Errorf("failed to create platform: %w", err)
	}
	return platform, nil
}

// resolveConversation finds or creates the conversation for a
// (platform, external user) pair. The read-then-create window is not
// guarded: two concurrent first messages from the same user can create
// duplicate conversations. That weak consistency is accepted; the lookup
// always prefers the oldest row, so repeats converge on one conversation.
func (p *Pipeline) resolveConversation(platformID int64, userID, nameHint string) (*models.Conversation, error) {
	conv, err := p.store.ConversationByPlatformUser(platformID, userID)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up conversation: %w", err)
	}

	name := nameHint
	if name == "" {
		name = "User " + userID
	}
	conv = &models.Conversation{
		PlatformID: platformID,
		UserID:     userID,
		UserName:   &name,
		Status:     models.ConversationActive,
	}
	if err := p.store.CreateConversation(conv); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return conv, nil
}

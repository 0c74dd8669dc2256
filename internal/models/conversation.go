package models

import "time"

type ConversationStatus string

const (
	ConversationActive    ConversationStatus = "active"
	ConversationResolved  ConversationStatus = "resolved"
	ConversationEscalated ConversationStatus = "escalated"
)

// Conversation is the persistent thread between one external user and the
// bot on one platform, stored in the 'conversations' table. There is one per
// (platform_id, user_id) pair in intended use; uniqueness is enforced by
// read-before-create in the resolver, not by a constraint.
type Conversation struct {
	ID            int64              `db:"id" json:"id"`
	PlatformID    int64              `db:"platform_id" json:"platform_id"`
	UserID        string             `db:"user_id" json:"user_id"` // platform-native id, opaque
	UserName      *string            `db:"user_name" json:"user_name,omitempty"`
	Status        ConversationStatus `db:"status" json:"status"`
	MessagesCount int                `db:"messages_count" json:"messages_count"`
	LastMessageAt *time.Time         `db:"last_message_at" json:"last_message_at,omitempty"`
	CreatedAt     time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `db:"updated_at" json:"updated_at"`
}

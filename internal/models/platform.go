package models

import "time"

// ChannelKind identifies a messaging platform integration.
type ChannelKind string

const (
	KindWhatsApp  ChannelKind = "whatsapp"
	KindTelegram  ChannelKind = "telegram"
	KindMessenger ChannelKind = "messenger"
)

// Valid reports whether k is one of the supported channel kinds.
func (k ChannelKind) Valid() bool {
	switch k {
	case KindWhatsApp, KindTelegram, KindMessenger:
		return true
	}
	return false
}

type PlatformStatus string

const (
	PlatformActive   PlatformStatus = "active"
	PlatformInactive PlatformStatus = "inactive"
	PlatformError    PlatformStatus = "error"
)

// Platform represents one messaging channel integration, stored in the
// 'platforms' table. Adapters look the row up by kind, so in intended use
// there is one row per kind.
type Platform struct {
	ID            int64          `db:"id" json:"id"`
	Name          string         `db:"name" json:"name"`
	Kind          ChannelKind    `db:"kind" json:"kind"`
	Status        PlatformStatus `db:"status" json:"status"`
	Credentials   *string        `db:"credentials" json:"-"` // opaque secret, never serialized
	WebhookURL    *string        `db:"webhook_url" json:"webhook_url,omitempty"`
	Config        JSONMap        `db:"config" json:"config"`
	MessagesCount int            `db:"messages_count" json:"messages_count"`
	LastMessageAt *time.Time     `db:"last_message_at" json:"last_message_at,omitempty"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

package store

import (
	"errors"
	"time"

	"botconsole/internal/models"
)

// ErrNotFound is returned when the requested record does not exist. It is
// distinct from validation errors and must be checked with errors.Is.
var ErrNotFound = errors.New("record not found")

// PlatformUpdate carries a partial platform update; nil fields are left
// unchanged.
type PlatformUpdate struct {
	Name        *string
	Status      *models.PlatformStatus
	Credentials *string
	WebhookURL  *string
	Config      models.JSONMap
}

type ConversationUpdate struct {
	UserName *string
	Status   *models.ConversationStatus
}

type TemplateUpdate struct {
	Name      *string
	Category  *string
	Content   *string
	Variables models.StringList
	Active    *bool
}

type BotConfigUpdate struct {
	Name                *string
	Language            *string
	Tone                *string
	ConfidenceThreshold *int
	MaxResponseTime     *int
	FallbackMessage     *string
	AutoTraining        *bool
}

type ModelUpdate struct {
	Accuracy        *float64
	TrainingSamples *int
	Status          *models.ModelStatus
	TrainedAt       *time.Time
}

type PlatformStore interface {
	CreatePlatform(p *models.Platform) error
	PlatformByID(id int64) (*models.Platform, error)
	PlatformByKind(kind models.ChannelKind) (*models.Platform, error)
	ListPlatforms() ([]*models.Platform, error)
	UpdatePlatform(id int64, upd PlatformUpdate) (*models.Platform, error)
	// BumpPlatformActivity adds delta to the message counter and stamps
	// last activity.
	BumpPlatformActivity(id int64, delta int, at time.Time) error
}

type ConversationStore interface {
	CreateConversation(c *models.Conversation) error
	ConversationByID(id int64) (*models.Conversation, error)
	// ConversationByPlatformUser returns ErrNotFound when no conversation
	// exists for the pair.
	ConversationByPlatformUser(platformID int64, userID string) (*models.Conversation, error)
	ListConversations() ([]*models.Conversation, error)
	ListConversationsByPlatform(platformID int64) ([]*models.Conversation, error)
	UpdateConversation(id int64, upd ConversationUpdate) (*models.Conversation, error)
	BumpConversationActivity(id int64, delta int, at time.Time) error
	// ActiveUserCount counts distinct user ids whose last activity is at or
	// after the given time.
	ActiveUserCount(since time.Time) (int, error)
}

type MessageStore interface {
	CreateMessage(m *models.Message) error
	MessagesByConversation(conversationID int64) ([]*models.Message, error)
	// RecentMessages returns up to n messages ordered by sent time
	// descending, ties broken by id descending.
	RecentMessages(n int) ([]*models.Message, error)
}

type TemplateStore interface {
	CreateTemplate(t *models.Template) error
	TemplateByID(id int64) (*models.Template, error)
	ListTemplates() ([]*models.Template, error)
	ListActiveTemplates() ([]*models.Template, error)
	UpdateTemplate(id int64, upd TemplateUpdate) (*models.Template, error)
	DeleteTemplate(id int64) error
	IncrementTemplateUsage(id int64) error
}

type BotConfigStore interface {
	// BotConfig returns the singleton configuration row, ErrNotFound when it
	// has never been seeded.
	BotConfig() (*models.BotConfig, error)
	InitBotConfig(cfg *models.BotConfig) error
	UpdateBotConfig(upd BotConfigUpdate) (*models.BotConfig, error)
}

type ModelStore interface {
	CreateModel(m *models.MlModel) error
	UpdateModel(id int64, upd ModelUpdate) (*models.MlModel, error)
	// CurrentModel returns the most recently created ready model, falling
	// back to the most recently created row of any status.
	CurrentModel() (*models.MlModel, error)
	ListModels() ([]*models.MlModel, error)
}

type LogStore interface {
	AppendLog(l *models.LogEntry) error
	RecentLogs(n int) ([]*models.LogEntry, error)
}

type UserStore interface {
	CreateUser(u *models.User) error
	UserByUsername(username string) (*models.User, error)
	CountUsers() (int, error)
}

// Store is the full record store consumed by the core. Two implementations
// exist: an in-memory arena for tests and small deployments, and a Postgres
// implementation for production, selected by configuration.
type Store interface {
	PlatformStore
	ConversationStore
	MessageStore
	TemplateStore
	BotConfigStore
	ModelStore
	LogStore
	UserStore
	Close() error
}

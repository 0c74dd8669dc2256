package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"go.uber.org/zap"

	"botconsole/internal/models"
)

const platformColumns = `id, name, kind, status, credentials, webhook_url, config, messages_count, last_message_at, created_at, updated_at`
const conversationColumns = `id, platform_id, user_id, user_name, status, messages_count, last_message_at, created_at, updated_at`
const messageColumns = `id, conversation_id, content, sender, confidence, response_time_ms, template_id, sent_at`
const templateColumns = `id, name, category, content, variables, is_active, usage_count, created_at, updated_at`
const modelColumns = `id, name, version, accuracy, training_samples, status, trained_at, created_at`

// PostgresStore is the production Store backed by PostgreSQL via sqlx.
// Counter bumps are issued as atomic SET n = n + delta statements.
type PostgresStore struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewPostgresStore establishes a connection to the PostgreSQL database.
func NewPostgresStore(dataSourceName string, logger *zap.Logger) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	logger.Info("Successfully connected to the database")
	return &PostgresStore{db: db, logger: logger}, nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// --- platforms ---

func (s *PostgresStore) CreatePlatform(p *models.Platform) error {
	query := `INSERT INTO platforms (name, kind, status, credentials, webhook_url, config, messages_count, last_message_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING ` + platformColumns
	return s.db.QueryRowx(query, p.Name, p.Kind, p.Status, p.Credentials, p.WebhookURL, p.Config,
		p.MessagesCount, p.LastMessageAt).StructScan(p)
}

func (s *PostgresStore) PlatformByID(id int64) (*models.Platform, error) {
	var p models.Platform
	err := s.db.Get(&p, `SELECT `+platformColumns+` FROM platforms WHERE id = $1`, id)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *PostgresStore) PlatformByKind(kind models.ChannelKind) (*models.Platform, error) {
	var p models.Platform
	err := s.db.Get(&p, `SELECT `+platformColumns+` FROM platforms WHERE kind = $1 ORDER BY id LIMIT 1`, kind)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *PostgresStore) ListPlatforms() ([]*models.Platform, error) {
	var out []*models.Platform
	err := s.db.Select(&out, `SELECT `+platformColumns+` FROM platforms ORDER BY id`)
	return out, err
}

func (s *PostgresStore) UpdatePlatform(id int64, upd PlatformUpdate) (*models.Platform, error) {
	var p models.Platform
	query := `UPDATE platforms SET
	            name = COALESCE($2, name),
	            status = COALESCE($3, status),
	            credentials = COALESCE($4, credentials),
	            webhook_url = COALESCE($5, webhook_url),
	            config = COALESCE($6, config),
	            updated_at = NOW()
	          WHERE id = $1
	          RETURNING ` + platformColumns
	err := s.db.QueryRowx(query, id, upd.Name, upd.Status, upd.Credentials, upd.WebhookURL, upd.Config).StructScan(&p)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *PostgresStore) BumpPlatformActivity(id int64, delta int, at time.Time) error {
	query := `UPDATE platforms SET messages_count = messages_count + $2, last_message_at = $3, updated_at = NOW() WHERE id = $1`
	res, err := s.db.Exec(query, id, delta, at)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// --- conversations ---

func (s *PostgresStore) CreateConversation(c *models.Conversation) error {
	query := `INSERT INTO conversations (platform_id, user_id, user_name, status, messages_count, last_message_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING ` + conversationColumns
	return s.db.QueryRowx(query, c.PlatformID, c.UserID, c.UserName, c.Status, c.MessagesCount, c.LastMessageAt).StructScan(c)
}

func (s *PostgresStore) ConversationByID(id int64) (*models.Conversation, error) {
	var c models.Conversation
	err := s.db.Get(&c, `SELECT `+conversationColumns+` FROM conversations WHERE id = $1`, id)
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (s *PostgresStore) ConversationByPlatformUser(platformID int64, userID string) (*models.Conversation, error) {
	var c models.Conversation
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE platform_id = $1 AND user_id = $2 ORDER BY id LIMIT 1`
	err := s.db.Get(&c, query, platformID, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (s *PostgresStore) ListConversations() ([]*models.Conversation, error) {
	var out []*models.Conversation
	err := s.db.Select(&out, `SELECT `+conversationColumns+` FROM conversations ORDER BY id`)
	return out, err
}

func (s *PostgresStore) ListConversationsByPlatform(platformID int64) ([]*models.Conversation, error) {
	var out []*models.Conversation
	err := s.db.Select(&out, `SELECT `+conversationColumns+` FROM conversations WHERE platform_id = $1 ORDER BY id`, platformID)
	return out, err
}

func (s *PostgresStore) UpdateConversation(id int64, upd ConversationUpdate) (*models.Conversation, error) {
	var c models.Conversation
	query := `UPDATE conversations SET
	            user_name = COALESCE($2, user_name),
	            status = COALESCE($3, status),
	            updated_at = NOW()
	          WHERE id = $1
	          RETURNING ` + conversationColumns
	err := s.db.QueryRowx(query, id, upd.UserName, upd.Status).StructScan(&c)
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (s *PostgresStore) BumpConversationActivity(id int64, delta int, at time.Time) error {
	query := `UPDATE conversations SET messages_count = messages_count + $2, last_message_at = $3, updated_at = NOW() WHERE id = $1`
	res, err := s.db.Exec(query, id, delta, at)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PostgresStore) ActiveUserCount(since time.Time) (int, error) {
	var count int
	err := s.db.Get(&count, `SELECT COUNT(DISTINCT user_id) FROM conversations WHERE last_message_at >= $1`, since)
	return count, err
}

// --- messages ---

func (s *PostgresStore) CreateMessage(m *models.Message) error {
	if m.SentAt.IsZero() {
		m.SentAt = time.Now()
	}
	query := `INSERT INTO messages (conversation_id, content, sender, confidence, response_time_ms, template_id, sent_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING ` + messageColumns
	return s.db.QueryRowx(query, m.ConversationID, m.Content, m.Sender, m.Confidence, m.ResponseTimeMs, m.TemplateID, m.SentAt).StructScan(m)
}

func (s *PostgresStore) MessagesByConversation(conversationID int64) ([]*models.Message, error) {
	var out []*models.Message
	query := `SELECT ` + messageColumns + ` FROM messages WHERE conversation_id = $1 ORDER BY sent_at, id`
	err := s.db.Select(&out, query, conversationID)
	return out, err
}

func (s *PostgresStore) RecentMessages(n int) ([]*models.Message, error) {
	var out []*models.Message
	query := `SELECT ` + messageColumns + ` FROM messages ORDER BY sent_at DESC, id DESC LIMIT $1`
	err := s.db.Select(&out, query, n)
	return out, err
}

// --- templates ---

func (s *PostgresStore) CreateTemplate(t *models.Template) error {
	query := `INSERT INTO templates (name, category, content, variables, is_active, usage_count)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING ` + templateColumns
	return s.db.QueryRowx(query, t.Name, t.Category, t.Content, t.Variables, t.Active, t.UsageCount).StructScan(t)
}

func (s *PostgresStore) TemplateByID(id int64) (*models.Template, error) {
	var t models.Template
	err := s.db.Get(&t, `SELECT `+templateColumns+` FROM templates WHERE id = $1`, id)
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (s *PostgresStore) ListTemplates() ([]*models.Template, error) {
	var out []*models.Template
	err := s.db.Select(&out, `SELECT `+templateColumns+` FROM templates ORDER BY id`)
	return out, err
}

func (s *PostgresStore) ListActiveTemplates() ([]*models.Template, error) {
	var out []*models.Template
	err := s.db.Select(&out, `SELECT `+templateColumns+` FROM templates WHERE is_active ORDER BY id`)
	return out, err
}

func (s *PostgresStore) UpdateTemplate(id int64, upd TemplateUpdate) (*models.Template, error) {
	var t models.Template
	query := `UPDATE templates SET
	            name = COALESCE($2, name),
	            category = COALESCE($3, category),
	            content = COALESCE($4, content),
	            variables = COALESCE($5, variables),
	            is_active = COALESCE($6, is_active),
	            updated_at = NOW()
	          WHERE id = $1
	          RETURNING ` + templateColumns
	err := s.db.QueryRowx(query, id, upd.Name, upd.Category, upd.Content, upd.Variables, upd.Active).StructScan(&t)
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (s *PostgresStore) DeleteTemplate(id int64) error {
	res, err := s.db.Exec(`DELETE FROM templates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PostgresStore) IncrementTemplateUsage(id int64) error {
	res, err := s.db.Exec(`UPDATE templates SET usage_count = usage_count + 1, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// --- bot config ---

func (s *PostgresStore) BotConfig() (*models.BotConfig, error) {
	var cfg models.BotConfig
	query := `SELECT id, name, language, tone, confidence_threshold, max_response_time, fallback_message, auto_training, updated_at
	          FROM bot_config WHERE id = 1`
	err := s.db.Get(&cfg, query)
	if err != nil {
		return nil, notFound(err)
	}
	return &cfg, nil
}

func (s *PostgresStore) InitBotConfig(cfg *models.BotConfig) error {
	query := `INSERT INTO bot_config (id, name, language, tone, confidence_threshold, max_response_time, fallback_message, auto_training)
	          VALUES (1, $1, $2, $3, $4, $5, $6, $7)
	          ON CONFLICT (id) DO NOTHING`
	_, err := s.db.Exec(query, cfg.Name, cfg.Language, cfg.Tone, cfg.ConfidenceThreshold, cfg.MaxResponseTime, cfg.FallbackMessage, cfg.AutoTraining)
	return err
}

func (s *PostgresStore) UpdateBotConfig(upd BotConfigUpdate) (*models.BotConfig, error) {
	var cfg models.BotConfig
	query := `UPDATE bot_config SET
	            name = COALESCE($1, name),
	            language = COALESCE($2, language),
	            tone = COALESCE($3, tone),
	            confidence_threshold = COALESCE($4, confidence_threshold),
	            max_response_time = COALESCE($5, max_response_time),
	            fallback_message = COALESCE($6, fallback_message),
	            auto_training = COALESCE($7, auto_training),
	            updated_at = NOW()
	          WHERE id = 1
	          RETURNING id, name, language, tone, confidence_threshold, max_response_time, fallback_message, auto_training, updated_at`
	err := s.db.QueryRowx(query, upd.Name, upd.Language, upd.Tone, upd.ConfidenceThreshold, upd.MaxResponseTime, upd.FallbackMessage, upd.AutoTraining).StructScan(&cfg)
	if err != nil {
		return nil, notFound(err)
	}
	return &cfg, nil
}

// --- ml models ---

func (s *PostgresStore) CreateModel(m *models.MlModel) error {
	query := `INSERT INTO ml_models (name, version, accuracy, training_samples, status, trained_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING ` + modelColumns
	return s.db.QueryRowx(query, m.Name, m.Version, m.Accuracy, m.TrainingSamples, m.Status, m.TrainedAt).StructScan(m)
}

func (s *PostgresStore) UpdateModel(id int64, upd ModelUpdate) (*models.MlModel, error) {
	var m models.MlModel
	query := `UPDATE ml_models SET
	            accuracy = COALESCE($2, accuracy),
	            training_samples = COALESCE($3, training_samples),
	            status = COALESCE($4, status),
	            trained_at = COALESCE($5, trained_at)
	          WHERE id = $1
	          RETURNING ` + modelColumns
	err := s.db.QueryRowx(query, id, upd.Accuracy, upd.TrainingSamples, upd.Status, upd.TrainedAt).StructScan(&m)
	if err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (s *PostgresStore) CurrentModel() (*models.MlModel, error) {
	var m models.MlModel
	query := `SELECT ` + modelColumns + ` FROM ml_models ORDER BY (status = 'ready') DESC, id DESC LIMIT 1`
	err := s.db.Get(&m, query)
	if err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (s *PostgresStore) ListModels() ([]*models.MlModel, error) {
	var out []*models.MlModel
	err := s.db.Select(&out, `SELECT `+modelColumns+` FROM ml_models ORDER BY id DESC`)
	return out, err
}

// --- logs ---

func (s *PostgresStore) AppendLog(l *models.LogEntry) error {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	query := `INSERT INTO logs (level, message, details, source, created_at)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id, level, message, details, source, created_at`
	return s.db.QueryRowx(query, l.Level, l.Message, l.Details, l.Source, l.CreatedAt).StructScan(l)
}

func (s *PostgresStore) RecentLogs(n int) ([]*models.LogEntry, error) {
	var out []*models.LogEntry
	query := `SELECT id, level, message, details, source, created_at FROM logs ORDER BY id DESC LIMIT $1`
	err := s.db.Select(&out, query, n)
	return out, err
}

// --- users ---

func (s *PostgresStore) CreateUser(u *models.User) error {
	query := `INSERT INTO users (username, password_hash, role) VALUES ($1, $2, $3) RETURNING id, created_at`
	return s.db.QueryRowx(query, u.Username, u.PasswordHash, u.Role).StructScan(u)
}

func (s *PostgresStore) UserByUsername(username string) (*models.User, error) {
	var u models.User
	err := s.db.Get(&u, `SELECT id, username, password_hash, role, created_at FROM users WHERE username = $1`, username)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *PostgresStore) CountUsers() (int, error) {
	var count int
	err := s.db.Get(&count, `SELECT COUNT(*) FROM users`)
	return count, err
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

package store

import (
	"sort"
	"sync"
	"time"

	"botconsole/internal/models"
)

// MemoryStore keeps all entities in process memory. Ids are monotonic per
// entity kind. Reads return copies so callers cannot mutate stored state.
// Counter bumps are read-modify-write under the store mutex; the
// find-or-create window in the conversation resolver remains unguarded, so
// concurrent first messages from one user can still create duplicates.
type MemoryStore struct {
	mu sync.Mutex

	platforms     map[int64]*models.Platform
	conversations map[int64]*models.Conversation
	messages      map[int64]*models.Message
	templates     map[int64]*models.Template
	botConfig     *models.BotConfig
	mlModels      map[int64]*models.MlModel
	logs          []*models.LogEntry
	users         map[int64]*models.User

	seq map[string]int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		platforms:     make(map[int64]*models.Platform),
		conversations: make(map[int64]*models.Conversation),
		messages:      make(map[int64]*models.Message),
		templates:     make(map[int64]*models.Template),
		mlModels:      make(map[int64]*models.MlModel),
		users:         make(map[int64]*models.User),
		seq:           make(map[string]int64),
	}
}

func (s *MemoryStore) nextID(kind string) int64 {
	s.seq[kind]++
	return s.seq[kind]
}

func (s *MemoryStore) Close() error { return nil }

// --- platforms ---

func (s *MemoryStore) CreatePlatform(p *models.Platform) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	p.ID = s.nextID("platform")
	p.CreatedAt = now
	p.UpdatedAt = now
	cp := *p
	s.platforms[p.ID] = &cp
	return nil
}

func (s *MemoryStore) PlatformByID(id int64) (*models.Platform, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.platforms[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) PlatformByKind(kind models.ChannelKind) (*models.Platform, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var best *models.Platform
	for _, p := range s.platforms {
		if p.Kind != kind {
			continue
		}
		if best == nil || p.ID < best.ID {
			best = p
		}
	}
	if best == nil {
		return nil, ErrNotFound
	}
	cp := *best
	return &cp, nil
}

func (s *MemoryStore) ListPlatforms() ([]*models.Platform, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Platform, 0, len(s.platforms))
	for _, p := range s.platforms {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) UpdatePlatform(id int64, upd PlatformUpdate) (*models.Platform, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.platforms[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Status != nil {
		p.Status = *upd.Status
	}
	if upd.Credentials != nil {
		p.Credentials = upd.Credentials
	}
	if upd.WebhookURL != nil {
		p.WebhookURL = upd.WebhookURL
	}
	if upd.Config != nil {
		p.Config = upd.Config
	}
	p.UpdatedAt = time.Now()
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) BumpPlatformActivity(id int64, delta int, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.platforms[id]
	if !ok {
		return ErrNotFound
	}
	p.MessagesCount += delta
	p.LastMessageAt = &at
	p.UpdatedAt = time.Now()
	return nil
}

// --- conversations ---

func (s *MemoryStore) CreateConversation(c *models.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	c.ID = s.nextID("conversation")
	c.CreatedAt = now
	c.UpdatedAt = now
	cp := *c
	s.conversations[c.ID] = &cp
	return nil
}

func (s *MemoryStore) ConversationByID(id int64) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *MemoryStore) ConversationByPlatformUser(platformID int64, userID string) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var best *models.Conversation
	for _, c := range s.conversations {
		if c.PlatformID != platformID || c.UserID != userID {
			continue
		}
		if best == nil || c.ID < best.ID {
			best = c
		}
	}
	if best == nil {
		return nil, ErrNotFound
	}
	cp := *best
	return &cp, nil
}

func (s *MemoryStore) ListConversations() ([]*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Conversation, 0, len(s.conversations))
	for _, c := range s.conversations {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) ListConversationsByPlatform(platformID int64) ([]*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Conversation, 0)
	for _, c := range s.conversations {
		if c.PlatformID != platformID {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) UpdateConversation(id int64, upd ConversationUpdate) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.UserName != nil {
		c.UserName = upd.UserName
	}
	if upd.Status != nil {
		c.Status = *upd.Status
	}
	c.UpdatedAt = time.Now()
	cp := *c
	return &cp, nil
}

func (s *MemoryStore) BumpConversationActivity(id int64, delta int, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[id]
	if !ok {
		return ErrNotFound
	}
	c.MessagesCount += delta
	c.LastMessageAt = &at
	c.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) ActiveUserCount(since time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool)
	for _, c := range s.conversations {
		if c.LastMessageAt == nil || c.LastMessageAt.Before(since) {
			continue
		}
		seen[c.UserID] = true
	}
	return len(seen), nil
}

// --- messages ---

func (s *MemoryStore) CreateMessage(m *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = s.nextID("message")
	if m.SentAt.IsZero() {
		m.SentAt = time.Now()
	}
	cp := *m
	s.messages[m.ID] = &cp
	return nil
}

func (s *MemoryStore) MessagesByConversation(conversationID int64) ([]*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Message, 0)
	for _, m := range s.messages {
		if m.ConversationID != conversationID {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SentAt.Equal(out[j].SentAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].SentAt.Before(out[j].SentAt)
	})
	return out, nil
}

func (s *MemoryStore) RecentMessages(n int) ([]*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Message, 0, len(s.messages))
	for _, m := range s.messages {
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SentAt.Equal(out[j].SentAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].SentAt.After(out[j].SentAt)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// --- templates ---

func (s *MemoryStore) CreateTemplate(t *models.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	t.ID = s.nextID("template")
	t.CreatedAt = now
	t.UpdatedAt = now
	cp := *t
	s.templates[t.ID] = &cp
	return nil
}

func (s *MemoryStore) TemplateByID(id int64) (*models.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.templates[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *MemoryStore) ListTemplates() ([]*models.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Template, 0, len(s.templates))
	for _, t := range s.templates {
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) ListActiveTemplates() ([]*models.Template, error) {
	all, _ := s.ListTemplates()
	out := all[:0]
	for _, t := range all {
		if t.Active {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *MemoryStore) UpdateTemplate(id int64, upd TemplateUpdate) (*models.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.templates[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Name != nil {
		t.Name = *upd.Name
	}
	if upd.Category != nil {
		t.Category = *upd.Category
	}
	if upd.Content != nil {
		t.Content = *upd.Content
	}
	if upd.Variables != nil {
		t.Variables = upd.Variables
	}
	if upd.Active != nil {
		t.Active = *upd.Active
	}
	t.UpdatedAt = time.Now()
	cp := *t
	return &cp, nil
}

func (s *MemoryStore) DeleteTemplate(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.templates[id]; !ok {
		return ErrNotFound
	}
	delete(s.templates, id)
	return nil
}

func (s *MemoryStore) IncrementTemplateUsage(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.templates[id]
	if !ok {
		return ErrNotFound
	}
	t.UsageCount++
	t.UpdatedAt = time.Now()
	return nil
}

// --- bot config ---

func (s *MemoryStore) BotConfig() (*models.BotConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.botConfig == nil {
		return nil, ErrNotFound
	}
	cp := *s.botConfig
	return &cp, nil
}

// InitBotConfig seeds the configuration singleton. A no-op once a row
// exists, matching the Postgres ON CONFLICT DO NOTHING semantics.
func (s *MemoryStore) InitBotConfig(cfg *models.BotConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.botConfig != nil {
		return nil
	}
	cfg.ID = 1
	cfg.UpdatedAt = time.Now()
	cp := *cfg
	s.botConfig = &cp
	return nil
}

func (s *MemoryStore) UpdateBotConfig(upd BotConfigUpdate) (*models.BotConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.botConfig == nil {
		return nil, ErrNotFound
	}
	cfg := s.botConfig
	if upd.Name != nil {
		cfg.Name = *upd.Name
	}
	if upd.Language != nil {
		cfg.Language = *upd.Language
	}
	if upd.Tone != nil {
		cfg.Tone = *upd.Tone
	}
	if upd.ConfidenceThreshold != nil {
		cfg.ConfidenceThreshold = *upd.ConfidenceThreshold
	}
	if upd.MaxResponseTime != nil {
		cfg.MaxResponseTime = *upd.MaxResponseTime
	}
	if upd.FallbackMessage != nil {
		cfg.FallbackMessage = *upd.FallbackMessage
	}
	if upd.AutoTraining != nil {
		cfg.AutoTraining = *upd.AutoTraining
	}
	cfg.UpdatedAt = time.Now()
	cp := *cfg
	return &cp, nil
}

// --- ml models ---

func (s *MemoryStore) CreateModel(m *models.MlModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = s.nextID("ml_model")
	m.CreatedAt = time.Now()
	cp := *m
	s.mlModels[m.ID] = &cp
	return nil
}

func (s *MemoryStore) UpdateModel(id int64, upd ModelUpdate) (*models.MlModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.mlModels[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Accuracy != nil {
		m.Accuracy = *upd.Accuracy
	}
	if upd.TrainingSamples != nil {
		m.TrainingSamples = *upd.TrainingSamples
	}
	if upd.Status != nil {
		m.Status = *upd.Status
	}
	if upd.TrainedAt != nil {
		m.TrainedAt = upd.TrainedAt
	}
	cp := *m
	return &cp, nil
}

func (s *MemoryStore) CurrentModel() (*models.MlModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ready, latest *models.MlModel
	for _, m := range s.mlModels {
		if latest == nil || m.ID > latest.ID {
			latest = m
		}
		if m.Status == models.ModelReady && (ready == nil || m.ID > ready.ID) {
			ready = m
		}
	}
	pick := ready
	if pick == nil {
		pick = latest
	}
	if pick == nil {
		return nil, ErrNotFound
	}
	cp := *pick
	return &cp, nil
}

func (s *MemoryStore) ListModels() ([]*models.MlModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.MlModel, 0, len(s.mlModels))
	for _, m := range s.mlModels {
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// --- logs ---

func (s *MemoryStore) AppendLog(l *models.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.ID = s.nextID("log")
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	cp := *l
	s.logs = append(s.logs, &cp)
	return nil
}

func (s *MemoryStore) RecentLogs(n int) ([]*models.LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.LogEntry, 0, n)
	for i := len(s.logs) - 1; i >= 0 && len(out) < n; i-- {
		cp := *s.logs[i]
		out = append(out, &cp)
	}
	return out, nil
}

// --- users ---

func (s *MemoryStore) CreateUser(u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = s.nextID("user")
	u.CreatedAt = time.Now()
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *MemoryStore) UserByUsername(username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CountUsers() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users), nil
}

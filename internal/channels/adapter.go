package channels

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"botconsole/internal/models"
)

// MediaPlaceholder replaces missing or non-text content in normalized
// inbound messages.
const MediaPlaceholder = "[Media]"

// InboundMessage is one normalized inbound event, stripped of every
// platform-specific envelope detail. Nothing untyped crosses the adapter
// boundary.
type InboundMessage struct {
	UserID   string
	UserName string
	Text     string
}

// Adapter is the shared capability contract over the structurally
// incompatible platform payloads. Each adapter is stateless beyond its
// configuration; credentials travel on the Platform record.
type Adapter interface {
	Kind() models.ChannelKind
	// ParseInbound deconstructs one webhook delivery, which may batch
	// several independent events, into zero or more normalized messages.
	ParseInbound(body []byte) ([]InboundMessage, error)
	// Send delivers text to the user via the platform's messaging API.
	// A missing credential is a logged no-op, not an error.
	Send(ctx context.Context, platform *models.Platform, userID, text string) error
}

// Verifier is implemented by adapters whose platform performs a webhook
// subscription handshake (Meta-style GET with mode, token and challenge).
type Verifier interface {
	// Verify returns the challenge to echo and true on success.
	Verify(mode, token, challenge string) (string, bool)
}

// Registry holds the configured adapter for each channel kind.
type Registry struct {
	adapters map[models.ChannelKind]Adapter
}

// NewRegistry builds the three production adapters sharing one HTTP client
// and one webhook verify token.
func NewRegistry(verifyToken string, logger *zap.Logger) *Registry {
	client := &http.Client{Timeout: 15 * time.Second}
	r := &Registry{adapters: make(map[models.ChannelKind]Adapter)}
	r.Register(NewWhatsAppAdapter(verifyToken, client, logger))
	r.Register(NewTelegramAdapter(client, logger))
	r.Register(NewMessengerAdapter(verifyToken, client, logger))
	return r
}

func (r *Registry) Register(a Adapter) {
	r.adapters[a.Kind()] = a
}

func (r *Registry) Adapter(kind models.ChannelKind) (Adapter, bool) {
	a, ok := r.adapters[kind]
	return a, ok
}

// credential extracts the decrypted platform credential, empty when unset.
func credential(platform *models.Platform) string {
	if platform == nil || platform.Credentials == nil {
		return ""
	}
	return *platform.Credentials
}

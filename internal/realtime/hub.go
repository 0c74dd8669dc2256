package realtime

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"botconsole/internal/config"
	"botconsole/internal/models"
	"botconsole/internal/store"
)

// Event types pushed to dashboard sockets.
const (
	EventStatsUpdate    = "stats_update"
	EventNewMessage     = "new_message"
	EventPlatformStatus = "platform_status"
	EventMLUpdate       = "ml_update"
	EventLogUpdate      = "log_update"
)

const snapshotMessages = 10

// Event is the wire envelope for every dashboard push.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Hub owns the set of connected dashboard sockets and serializes all
// membership changes and broadcasts through a single goroutine.
type Hub struct {
	store  store.Store
	logger *zap.Logger

	statsInterval    time.Duration
	platformInterval time.Duration
	statsWindow      int

	register   chan *Client
	unregister chan *Client
	events     chan Event
	done       chan struct{}
	clients    map[*Client]bool
}

func NewHub(st store.Store, cfg *config.Config, logger *zap.Logger) *Hub {
	return &Hub{
		store:            st,
		logger:           logger,
		statsInterval:    time.Duration(cfg.Realtime.StatsIntervalSeconds) * time.Second,
		platformInterval: time.Duration(cfg.Realtime.PlatformIntervalSeconds) * time.Second,
		statsWindow:      cfg.Realtime.StatsWindow,
		register:         make(chan *Client),
		unregister:       make(chan *Client),
		events:           make(chan Event, 64),
		done:             make(chan struct{}),
		clients:          make(map[*Client]bool),
	}
}

// Run processes registrations and broadcasts until ctx is canceled. It must
// run in its own goroutine; everything that touches h.clients happens here.
func (h *Hub) Run(ctx context.Context) {
	statsTicker := time.NewTicker(h.statsInterval)
	platformTicker := time.NewTicker(h.platformInterval)
	defer statsTicker.Stop()
	defer platformTicker.Stop()
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return
		case c := <-h.register:
			h.clients[c] = true
			h.logger.Info("Dashboard client connected", zap.String("client_id", c.id))
			h.sendSnapshot(c)
		case c := <-h.unregister:
			if h.clients[c] {
				h.drop(c)
				h.logger.Info("Dashboard client disconnected", zap.String("client_id", c.id))
			}
		case ev := <-h.events:
			h.broadcast(ev)
		case <-statsTicker.C:
			h.pushStats()
		case <-platformTicker.C:
			h.pushPlatforms()
		}
	}
}

// MessagesCreated fans both turns of a processed exchange out to observers
// as a single push carrying the message array.
func (h *Hub) MessagesCreated(msgs []*models.Message) {
	h.enqueue(Event{Type: EventNewMessage, Data: msgs})
}

// PlatformsChanged pushes a fresh platform listing to observers.
func (h *Hub) PlatformsChanged() {
	platforms, err := h.store.ListPlatforms()
	if err != nil {
		h.logger.Error("Failed to list platforms for broadcast", zap.Error(err))
		return
	}
	h.enqueue(Event{Type: EventPlatformStatus, Data: platforms})
}

// ModelUpdated pushes the state of a model after a training run.
func (h *Hub) ModelUpdated(m *models.MlModel) {
	h.enqueue(Event{Type: EventMLUpdate, Data: m})
}

// LogAppended pushes a new operational log entry to observers.
func (h *Hub) LogAppended(l *models.LogEntry) {
	h.enqueue(Event{Type: EventLogUpdate, Data: l})
}

// enqueue hands an event to the run loop without blocking the caller. The
// pipeline must never stall on slow dashboard consumers, so a full queue
// drops the event; periodic pushes repair any missed state.
func (h *Hub) enqueue(ev Event) {
	select {
	case h.events <- ev:
	default:
		h.logger.Warn("Event queue full, dropping broadcast", zap.String("type", ev.Type))
	}
}

func (h *Hub) broadcast(ev Event) {
	for c := range h.clients {
		h.send(c, ev)
	}
}

// send delivers without blocking; a client whose buffer is full is presumed
// dead or stuck and gets dropped.
func (h *Hub) send(c *Client, ev Event) {
	select {
	case c.send <- ev:
	default:
		h.logger.Warn("Dashboard client too slow, dropping", zap.String("client_id", c.id))
		h.drop(c)
	}
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.send)
}

// sendSnapshot primes a newly connected client with the current state:
// headline stats, platform status, recent messages, and the active model.
func (h *Hub) sendSnapshot(c *Client) {
	stats, err := ComputeStats(h.store, h.statsWindow)
	if err != nil {
		h.logger.Error("Failed to compute stats for snapshot", zap.Error(err))
	} else {
		h.send(c, Event{Type: EventStatsUpdate, Data: stats})
	}

	platforms, err := h.store.ListPlatforms()
	if err != nil {
		h.logger.Error("Failed to list platforms for snapshot", zap.Error(err))
	} else {
		h.send(c, Event{Type: EventPlatformStatus, Data: platforms})
	}

	recent, err := h.store.RecentMessages(snapshotMessages)
	if err != nil {
		h.logger.Error("Failed to load recent messages for snapshot", zap.Error(err))
	} else {
		replay := make([]*models.Message, len(recent))
		for i, m := range recent {
			replay[len(recent)-1-i] = m
		}
		h.send(c, Event{Type: EventNewMessage, Data: replay})
	}

	model, err := h.store.CurrentModel()
	switch {
	case err == nil:
		h.send(c, Event{Type: EventMLUpdate, Data: model})
	case errors.Is(err, store.ErrNotFound):
		h.send(c, Event{Type: EventMLUpdate, Data: nil})
	default:
		h.logger.Error("Failed to load current model for snapshot", zap.Error(err))
	}
}

func (h *Hub) pushStats() {
	stats, err := ComputeStats(h.store, h.statsWindow)
	if err != nil {
		h.logger.Error("Failed to compute stats for broadcast", zap.Error(err))
		return
	}
	h.broadcast(Event{Type: EventStatsUpdate, Data: stats})
}

func (h *Hub) pushPlatforms() {
	platforms, err := h.store.ListPlatforms()
	if err != nil {
		h.logger.Error("Failed to list platforms for broadcast", zap.Error(err))
		return
	}
	h.broadcast(Event{Type: EventPlatformStatus, Data: platforms})
}

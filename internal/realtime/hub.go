package realtime

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"loveslices-server/internal/config"
	"loveslices-server/internal/domain/conversation"
	"loveslices-server/internal/infrastructure/metrics"
)

// envelope is the wire frame for a push event. The ID is for client-side
// de-duplication only; events are not persisted or replayed.
type envelope struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	conversation.PushEvent
}

// Hub tracks at most one open channel per user and fans push events out to
// them. Publishing never blocks: a missing or slow consumer loses the event,
// which is acceptable because events are advisory and clients refetch state
// on receipt.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
	cfg     *config.Config
	log     zerolog.Logger
}

// NewHub creates an empty hub.
func NewHub(cfg *config.Config, log zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*client),
		cfg:     cfg,
		log:     log.With().Str("component", "realtime-hub").Logger(),
	}
}

// Publish sends an event to the user's open channel, if any. Implements
// conversation.Publisher.
func (h *Hub) Publish(toUserID string, event conversation.PushEvent) {
	h.mu.RLock()
	c := h.clients[toUserID]
	h.mu.RUnlock()

	if c == nil {
		metrics.RecordChannelEvent(string(event.Type), "no_channel")
		return
	}

	frame := envelope{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		PushEvent: event,
	}
	select {
	case c.send <- frame:
		metrics.RecordChannelEvent(string(event.Type), "queued")
	default:
		// Slow consumer; drop rather than block the publisher.
		metrics.RecordChannelEvent(string(event.Type), "dropped")
		h.log.Warn().
			Str("user_id", toUserID).
			Str("event_type", string(event.Type)).
			Msg("channel send buffer full, event dropped")
	}
}

// register attaches a connection as the user's channel. A later connection
// wins: any previous channel for the same user is closed first.
func (h *Hub) register(userID string, conn *websocket.Conn) *client {
	c := &client{
		userID: userID,
		conn:   conn,
		send:   make(chan envelope, h.cfg.ChannelSendBuffer),
		done:   make(chan struct{}),
	}

	h.mu.Lock()
	if prev, ok := h.clients[userID]; ok {
		prev.close()
	}
	h.clients[userID] = c
	h.mu.Unlock()

	metrics.SetChannelConnections(h.count())
	h.log.Debug().Str("user_id", userID).Msg("channel opened")
	return c
}

// unregister detaches the client if it is still the user's current channel.
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if h.clients[c.userID] == c {
		delete(h.clients, c.userID)
	}
	h.mu.Unlock()

	c.close()
	metrics.SetChannelConnections(h.count())
	h.log.Debug().Str("user_id", c.userID).Msg("channel closed")
}

// Shutdown closes every open channel.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	for userID, c := range h.clients {
		c.close()
		delete(h.clients, userID)
	}
	h.mu.Unlock()
	metrics.SetChannelConnections(0)
}

func (h *Hub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// client is one user's websocket channel.
type client struct {
	userID    string
	conn      *websocket.Conn
	send      chan envelope
	done      chan struct{}
	closeOnce sync.Once
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// writePump drains the send buffer onto the connection until the client is
// closed or a write fails.
func (c *client) writePump(h *Hub) {
	defer h.unregister(c)

	for {
		select {
		case <-c.done:
			return
		case frame := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(h.cfg.ChannelWriteTimeout))
			if err := c.conn.WriteJSON(frame); err != nil {
				h.log.Debug().Err(err).Str("user_id", c.userID).Msg("channel write failed")
				return
			}
		}
	}
}

// readPump discards inbound frames and notices when the peer goes away. The
// channel is push-only after the hello frame.
func (c *client) readPump(h *Hub) {
	defer h.unregister(c)

	c.conn.SetReadLimit(h.cfg.ChannelMaxMessageSize)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

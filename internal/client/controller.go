package client

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Event is one advisory push frame from the realtime channel.
type Event struct {
	ID             string    `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	Type           string    `json:"type"`
	ConversationID string    `json:"conversation_id"`
	UserName       string    `json:"user_name"`
	Note           *string   `json:"note,omitempty"`
}

// EventHandler is called with each relevant event and the refetched
// conversation record. The record, not the event, is the source of truth.
type EventHandler func(event Event, conv *Conversation)

// Controller tracks one open conversation and keeps its local view in sync.
// Push events for other conversations are ignored, and every relevant event
// triggers a refetch because pushes are advisory and may be lost.
type Controller struct {
	client  *Client
	wsURL   string
	userID  string
	onEvent EventHandler
	log     zerolog.Logger

	mu      sync.RWMutex
	active  string
	current *Conversation
}

// NewController builds a controller. wsURL is the ws:// or wss:// address of
// the channel endpoint.
func NewController(apiClient *Client, wsURL, userID string, onEvent EventHandler, log zerolog.Logger) *Controller {
	return &Controller{
		client:  apiClient,
		wsURL:   wsURL,
		userID:  userID,
		onEvent: onEvent,
		log:     log.With().Str("component", "conversation-controller").Logger(),
	}
}

// Open fetches a conversation and makes it the controller's active one.
func (ctl *Controller) Open(ctx context.Context, conversationID string) (*Conversation, error) {
	conv, err := ctl.client.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	ctl.mu.Lock()
	ctl.active = conversationID
	ctl.current = conv
	ctl.mu.Unlock()
	return conv, nil
}

// Current returns the last fetched view of the active conversation.
func (ctl *Controller) Current() *Conversation {
	ctl.mu.RLock()
	defer ctl.mu.RUnlock()
	return ctl.current
}

// InitiateEnding proposes ending the active conversation.
func (ctl *Controller) InitiateEnding(ctx context.Context) (*Conversation, error) {
	return ctl.apply(func(id string) (*Conversation, error) {
		return ctl.client.InitiateEnding(ctx, id)
	})
}

// ConfirmEnding agrees to the pending ending request.
func (ctl *Controller) ConfirmEnding(ctx context.Context, opts EndOptions) (*Conversation, error) {
	return ctl.apply(func(id string) (*Conversation, error) {
		return ctl.client.ConfirmEnding(ctx, id, opts)
	})
}

// CancelEnding withdraws the pending ending request.
func (ctl *Controller) CancelEnding(ctx context.Context) (*Conversation, error) {
	return ctl.apply(func(id string) (*Conversation, error) {
		return ctl.client.CancelEnding(ctx, id)
	})
}

// AddFinalNote attaches a closing note to the active conversation.
func (ctl *Controller) AddFinalNote(ctx context.Context, note string) (*Conversation, error) {
	return ctl.apply(func(id string) (*Conversation, error) {
		return ctl.client.AddFinalNote(ctx, id, note)
	})
}

// EndDirectly ends the active solo conversation.
func (ctl *Controller) EndDirectly(ctx context.Context, opts EndOptions) (*Conversation, error) {
	return ctl.apply(func(id string) (*Conversation, error) {
		return ctl.client.EndDirectly(ctx, id, opts)
	})
}

// PostMessage appends a message to the active conversation.
func (ctl *Controller) PostMessage(ctx context.Context, content string) (*Message, error) {
	ctl.mu.RLock()
	id := ctl.active
	ctl.mu.RUnlock()
	return ctl.client.PostMessage(ctx, id, content)
}

// Listen connects to the realtime channel and dispatches events until the
// context is cancelled or the connection drops. Events sent while
// disconnected are lost; callers should refetch state after reconnecting
// rather than expect a replay.
func (ctl *Controller) Listen(ctx context.Context) error {
	header := http.Header{}
	if ctl.client.cfg.Token != "" {
		header.Set("Authorization", "Bearer "+ctl.client.cfg.Token)
	} else if ctl.client.cfg.DevUserID != "" {
		header.Set("X-Dev-User-ID", ctl.client.cfg.DevUserID)
		if ctl.client.cfg.DevUserName != "" {
			header.Set("X-Dev-User-Name", ctl.client.cfg.DevUserName)
		}
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, ctl.wsURL, header)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{"user_id": ctl.userID}); err != nil {
		return err
	}

	// Unblock the read loop on cancellation.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		var event Event
		if err := json.Unmarshal(raw, &event); err != nil {
			ctl.log.Warn().Err(err).Msg("undecodable channel frame")
			continue
		}
		ctl.dispatch(ctx, event)
	}
}

// dispatch drops events for other conversations and reconciles the rest by
// refetching the record.
func (ctl *Controller) dispatch(ctx context.Context, event Event) {
	ctl.mu.RLock()
	active := ctl.active
	ctl.mu.RUnlock()

	if active == "" || event.ConversationID != active {
		return
	}

	conv, err := ctl.client.GetConversation(ctx, event.ConversationID)
	if err != nil {
		ctl.log.Warn().Err(err).
			Str("conversation_id", event.ConversationID).
			Msg("refetch after push event failed")
		return
	}

	ctl.mu.Lock()
	ctl.current = conv
	ctl.mu.Unlock()

	if ctl.onEvent != nil {
		ctl.onEvent(event, conv)
	}
}

func (ctl *Controller) apply(fn func(id string) (*Conversation, error)) (*Conversation, error) {
	ctl.mu.RLock()
	id := ctl.active
	ctl.mu.RUnlock()

	conv, err := fn(id)
	if err != nil {
		return nil, err
	}

	ctl.mu.Lock()
	if ctl.active == conv.ID {
		ctl.current = conv
	}
	ctl.mu.Unlock()
	return conv, nil
}

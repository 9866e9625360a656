package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"loveslices-server/internal/config"
	"loveslices-server/internal/domain/conversation"
	"loveslices-server/internal/infrastructure/auth"
)

func testConfig() *config.Config {
	return &config.Config{
		ChannelSendBuffer:     4,
		ChannelWriteTimeout:   time.Second,
		ChannelMaxMessageSize: 4096,
	}
}

func newChannelServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	hub := NewHub(cfg, zerolog.Nop())
	handler := NewHandler(hub)

	validator, err := auth.NewValidator(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("auth validator: %v", err)
	}

	engine := gin.New()
	engine.Use(validator.Middleware())
	engine.GET("/v1/channel", handler.ServeChannel)

	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	t.Cleanup(hub.Shutdown)
	return hub, srv
}

func dialChannel(t *testing.T, srv *httptest.Server, userID string) *websocket.Conn {
	t.Helper()
	wsURL := strings.Replace(srv.URL, "http://", "ws://", 1) + "/v1/channel"
	header := http.Header{}
	header.Set("X-Dev-User-ID", userID)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("dial channel: %v", err)
	}
	if err := conn.WriteJSON(map[string]string{"user_id": userID}); err != nil {
		t.Fatalf("send hello: %v", err)
	}
	return conn
}

func waitForConnections(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.count() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("hub connections = %d, want %d", hub.count(), want)
}

func readEvent(t *testing.T, conn *websocket.Conn) envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read event: %v", err)
	}
	var frame envelope
	if err := json.Unmarshal(raw, &frame); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	return frame
}

func TestPublishDeliversToConnectedUser(t *testing.T) {
	hub, srv := newChannelServer(t)

	conn := dialChannel(t, srv, "user_alice")
	defer conn.Close()
	waitForConnections(t, hub, 1)

	hub.Publish("user_alice", conversation.PushEvent{
		Type:           conversation.EventInitiateEnding,
		ConversationID: "conv_123",
		UserName:       "Bob",
	})

	frame := readEvent(t, conn)
	if frame.Type != conversation.EventInitiateEnding {
		t.Errorf("type = %s, want %s", frame.Type, conversation.EventInitiateEnding)
	}
	if frame.ConversationID != "conv_123" {
		t.Errorf("conversation_id = %s, want conv_123", frame.ConversationID)
	}
	if frame.UserName != "Bob" {
		t.Errorf("user_name = %s, want Bob", frame.UserName)
	}
	if frame.ID == "" {
		t.Error("event id is empty")
	}
}

func TestPublishToAbsentUserIsDropped(t *testing.T) {
	hub, _ := newChannelServer(t)

	// Must not block or panic.
	hub.Publish("user_nobody", conversation.PushEvent{
		Type:           conversation.EventCancelEnding,
		ConversationID: "conv_123",
		UserName:       "Alice",
	})
}

func TestSecondConnectionReplacesFirst(t *testing.T) {
	hub, srv := newChannelServer(t)

	first := dialChannel(t, srv, "user_alice")
	defer first.Close()
	waitForConnections(t, hub, 1)

	second := dialChannel(t, srv, "user_alice")
	defer second.Close()

	// The first connection gets closed by the hub.
	first.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := first.ReadMessage(); err == nil {
		t.Fatal("first connection still readable after replacement")
	}
	waitForConnections(t, hub, 1)

	hub.Publish("user_alice", conversation.PushEvent{
		Type:           conversation.EventConfirmEnding,
		ConversationID: "conv_456",
		UserName:       "Bob",
	})

	frame := readEvent(t, second)
	if frame.ConversationID != "conv_456" {
		t.Errorf("conversation_id = %s, want conv_456", frame.ConversationID)
	}
}

func TestHelloUserMismatchCloses(t *testing.T) {
	_, srv := newChannelServer(t)

	wsURL := strings.Replace(srv.URL, "http://", "ws://", 1) + "/v1/channel"
	header := http.Header{}
	header.Set("X-Dev-User-ID", "user_alice")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{"user_id": "user_mallory"}); err != nil {
		t.Fatalf("send hello: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("connection stayed open after mismatched hello")
	}
}

func TestMissingIdentityIsRejected(t *testing.T) {
	_, srv := newChannelServer(t)

	wsURL := strings.Replace(srv.URL, "http://", "ws://", 1) + "/v1/channel"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("dial succeeded without identity")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %v, want %d", resp, http.StatusUnauthorized)
	}
}

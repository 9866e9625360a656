package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// fakeServer is an in-memory stand-in for the API: a mutable conversation
// record behind the REST endpoints plus a websocket channel that replays
// whatever frames the test pushes into it.
type fakeServer struct {
	mu       sync.Mutex
	conv     map[string]any
	fetches  int
	upgrader websocket.Upgrader
	frames   chan any
	srv      *httptest.Server
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	fs := &fakeServer{
		conv: map[string]any{
			"id":      "conv_1",
			"phase":   "open",
			"source":  "none",
			"outcome": "none",
		},
		frames: make(chan any, 8),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/conversations/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fs.mu.Lock()
		defer fs.mu.Unlock()
		if r.PathValue("id") != fs.conv["id"] {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"message": "conversation not found"})
			return
		}
		fs.fetches++
		json.NewEncoder(w).Encode(fs.conv)
	})
	mux.HandleFunc("POST /v1/conversations/{id}/end/initiate", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fs.mu.Lock()
		defer fs.mu.Unlock()
		fs.conv["phase"] = "ending_initiated"
		json.NewEncoder(w).Encode(fs.conv)
	})
	mux.HandleFunc("POST /v1/conversations/{id}/end/confirm", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fs.mu.Lock()
		defer fs.mu.Unlock()
		if fs.conv["phase"] != "ending_initiated" {
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]string{"message": "no pending ending request"})
			return
		}
		fs.conv["phase"] = "ended"
		json.NewEncoder(w).Encode(fs.conv)
	})
	mux.HandleFunc("POST /v1/conversations/{id}/messages", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{
			"id":              "msg_1",
			"conversation_id": r.PathValue("id"),
			"user_id":         r.Header.Get("X-Dev-User-ID"),
			"content":         body["content"],
		})
	})
	mux.HandleFunc("GET /v1/channel", func(w http.ResponseWriter, r *http.Request) {
		conn, err := fs.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		var hello map[string]string
		if err := conn.ReadJSON(&hello); err != nil {
			return
		}
		for frame := range fs.frames {
			if err := conn.WriteJSON(frame); err != nil {
				return
			}
		}
	})

	fs.srv = httptest.NewServer(mux)
	t.Cleanup(fs.srv.Close)
	t.Cleanup(func() { close(fs.frames) })
	return fs
}

func (fs *fakeServer) wsURL() string {
	return strings.Replace(fs.srv.URL, "http://", "ws://", 1) + "/v1/channel"
}

func (fs *fakeServer) setPhase(phase string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.conv["phase"] = phase
}

func (fs *fakeServer) fetchCount() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.fetches
}

func newTestController(t *testing.T, fs *fakeServer, onEvent EventHandler) *Controller {
	t.Helper()
	apiClient := NewClient(Config{
		BaseURL:     fs.srv.URL,
		DevUserID:   "user_alice",
		DevUserName: "Alice",
		Timeout:     2 * time.Second,
	}, zerolog.Nop())
	return NewController(apiClient, fs.wsURL(), "user_alice", onEvent, zerolog.Nop())
}

func TestOpenTracksConversation(t *testing.T) {
	fs := newFakeServer(t)
	ctl := newTestController(t, fs, nil)

	conv, err := ctl.Open(context.Background(), "conv_1")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if conv.ID != "conv_1" || conv.Phase != "open" {
		t.Errorf("conv = %+v", conv)
	}
	if ctl.Current() == nil || ctl.Current().ID != "conv_1" {
		t.Error("controller did not retain the opened conversation")
	}
}

func TestOpenUnknownConversation(t *testing.T) {
	fs := newFakeServer(t)
	ctl := newTestController(t, fs, nil)

	_, err := ctl.Open(context.Background(), "conv_missing")
	var apiErr *APIError
	if err == nil {
		t.Fatal("open succeeded for unknown conversation")
	}
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		t.Fatalf("error = %v, want 404 APIError", err)
	}
}

func TestTransitionUpdatesLocalView(t *testing.T) {
	fs := newFakeServer(t)
	ctl := newTestController(t, fs, nil)
	ctx := context.Background()

	if _, err := ctl.Open(ctx, "conv_1"); err != nil {
		t.Fatalf("open: %v", err)
	}

	conv, err := ctl.InitiateEnding(ctx)
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if conv.Phase != "ending_initiated" {
		t.Errorf("phase = %s, want ending_initiated", conv.Phase)
	}
	if ctl.Current().Phase != "ending_initiated" {
		t.Errorf("current phase = %s, want ending_initiated", ctl.Current().Phase)
	}
}

func TestConfirmWithoutPendingRequestSurfacesConflict(t *testing.T) {
	fs := newFakeServer(t)
	ctl := newTestController(t, fs, nil)
	ctx := context.Background()

	if _, err := ctl.Open(ctx, "conv_1"); err != nil {
		t.Fatalf("open: %v", err)
	}

	_, err := ctl.ConfirmEnding(ctx, EndOptions{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusConflict {
		t.Fatalf("error = %v, want 409 APIError", err)
	}
	// The failed transition must not disturb the local view.
	if ctl.Current().Phase != "open" {
		t.Errorf("current phase = %s, want open", ctl.Current().Phase)
	}
}

func TestListenReconcilesOnRelevantEvents(t *testing.T) {
	fs := newFakeServer(t)

	events := make(chan Event, 4)
	ctl := newTestController(t, fs, func(event Event, conv *Conversation) {
		if conv.Phase != "ending_initiated" {
			t.Errorf("handler saw phase %s, want ending_initiated", conv.Phase)
		}
		events <- event
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := ctl.Open(ctx, "conv_1"); err != nil {
		t.Fatalf("open: %v", err)
	}
	fetchesAfterOpen := fs.fetchCount()

	listenDone := make(chan error, 1)
	go func() { listenDone <- ctl.Listen(ctx) }()

	// The partner initiated an ending on the server side.
	fs.setPhase("ending_initiated")
	fs.frames <- map[string]any{
		"id":              "evt_1",
		"timestamp":       time.Now().UTC(),
		"type":            "initiate_ending",
		"conversation_id": "conv_1",
		"user_name":       "Bob",
	}
	// An event for another conversation must be ignored without a refetch.
	fs.frames <- map[string]any{
		"id":              "evt_2",
		"timestamp":       time.Now().UTC(),
		"type":            "confirm_ending",
		"conversation_id": "conv_other",
		"user_name":       "Bob",
	}

	select {
	case event := <-events:
		if event.Type != "initiate_ending" || event.UserName != "Bob" {
			t.Errorf("event = %+v", event)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event dispatched")
	}

	if ctl.Current().Phase != "ending_initiated" {
		t.Errorf("current phase = %s, want ending_initiated", ctl.Current().Phase)
	}
	if got := fs.fetchCount(); got != fetchesAfterOpen+1 {
		t.Errorf("fetches after events = %d, want %d", got, fetchesAfterOpen+1)
	}

	cancel()
	select {
	case err := <-listenDone:
		if err != context.Canceled {
			t.Errorf("listen returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("listen did not stop on cancellation")
	}
}

func TestPostMessageUsesActiveConversation(t *testing.T) {
	fs := newFakeServer(t)
	ctl := newTestController(t, fs, nil)
	ctx := context.Background()

	if _, err := ctl.Open(ctx, "conv_1"); err != nil {
		t.Fatalf("open: %v", err)
	}

	msg, err := ctl.PostMessage(ctx, "see you at dinner")
	if err != nil {
		t.Fatalf("post message: %v", err)
	}
	if msg.ConversationID != "conv_1" || msg.Content != "see you at dinner" {
		t.Errorf("message = %+v", msg)
	}
	if msg.UserID != "user_alice" {
		t.Errorf("user_id = %s, want user_alice", msg.UserID)
	}
}

package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"loveslices-server/internal/config"
	"loveslices-server/internal/domain/conversation"
	"loveslices-server/internal/domain/user"
	"loveslices-server/internal/infrastructure/auth"
	"loveslices-server/internal/interfaces/httpserver/handlers"
	"loveslices-server/internal/utils/platformerrors"
)

// MockConversationService is a mock implementation of conversation.Service.
type MockConversationService struct {
	StartFunc          func(ctx context.Context, identity user.Identity, params conversation.StartParams) (*conversation.Conversation, error)
	GetFunc            func(ctx context.Context, userID, publicID string) (*conversation.Conversation, error)
	ListActiveFunc     func(ctx context.Context, userID string) ([]*conversation.Conversation, error)
	PostMessageFunc    func(ctx context.Context, userID, publicID, content string) (*conversation.Message, error)
	ListMessagesFunc   func(ctx context.Context, userID, publicID string) ([]conversation.Message, error)
	InitiateEndingFunc func(ctx context.Context, identity user.Identity, publicID string) (*conversation.Conversation, error)
	ConfirmEndingFunc  func(ctx context.Context, identity user.Identity, publicID string, params conversation.EndParams) (*conversation.Conversation, error)
	CancelEndingFunc   func(ctx context.Context, identity user.Identity, publicID string) (*conversation.Conversation, error)
	AddFinalNoteFunc   func(ctx context.Context, identity user.Identity, publicID, note string) (*conversation.Conversation, error)
	EndDirectlyFunc    func(ctx context.Context, identity user.Identity, publicID string, params conversation.EndParams) (*conversation.Conversation, error)
}

func (m *MockConversationService) Start(ctx context.Context, identity user.Identity, params conversation.StartParams) (*conversation.Conversation, error) {
	if m.StartFunc != nil {
		return m.StartFunc(ctx, identity, params)
	}
	return nil, nil
}

func (m *MockConversationService) Get(ctx context.Context, userID, publicID string) (*conversation.Conversation, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, userID, publicID)
	}
	return nil, nil
}

func (m *MockConversationService) ListActive(ctx context.Context, userID string) ([]*conversation.Conversation, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockConversationService) PostMessage(ctx context.Context, userID, publicID, content string) (*conversation.Message, error) {
	if m.PostMessageFunc != nil {
		return m.PostMessageFunc(ctx, userID, publicID, content)
	}
	return nil, nil
}

func (m *MockConversationService) ListMessages(ctx context.Context, userID, publicID string) ([]conversation.Message, error) {
	if m.ListMessagesFunc != nil {
		return m.ListMessagesFunc(ctx, userID, publicID)
	}
	return nil, nil
}

func (m *MockConversationService) InitiateEnding(ctx context.Context, identity user.Identity, publicID string) (*conversation.Conversation, error) {
	if m.InitiateEndingFunc != nil {
		return m.InitiateEndingFunc(ctx, identity, publicID)
	}
	return nil, nil
}

func (m *MockConversationService) ConfirmEnding(ctx context.Context, identity user.Identity, publicID string, params conversation.EndParams) (*conversation.Conversation, error) {
	if m.ConfirmEndingFunc != nil {
		return m.ConfirmEndingFunc(ctx, identity, publicID, params)
	}
	return nil, nil
}

func (m *MockConversationService) CancelEnding(ctx context.Context, identity user.Identity, publicID string) (*conversation.Conversation, error) {
	if m.CancelEndingFunc != nil {
		return m.CancelEndingFunc(ctx, identity, publicID)
	}
	return nil, nil
}

func (m *MockConversationService) AddFinalNote(ctx context.Context, identity user.Identity, publicID, note string) (*conversation.Conversation, error) {
	if m.AddFinalNoteFunc != nil {
		return m.AddFinalNoteFunc(ctx, identity, publicID, note)
	}
	return nil, nil
}

func (m *MockConversationService) EndDirectly(ctx context.Context, identity user.Identity, publicID string, params conversation.EndParams) (*conversation.Conversation, error) {
	if m.EndDirectlyFunc != nil {
		return m.EndDirectlyFunc(ctx, identity, publicID, params)
	}
	return nil, nil
}

func newConversationRouter(t *testing.T, service conversation.Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	validator, err := auth.NewValidator(context.Background(), &config.Config{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("auth validator: %v", err)
	}

	handler := handlers.NewConversationHandler(service, zerolog.Nop())
	engine := gin.New()
	engine.Use(validator.Middleware())
	engine.POST("/v1/conversations", handler.Create)
	engine.GET("/v1/conversations/:conversation_id", handler.Get)
	engine.POST("/v1/conversations/:conversation_id/messages", handler.PostMessage)
	engine.POST("/v1/conversations/:conversation_id/end/initiate", handler.InitiateEnding)
	engine.POST("/v1/conversations/:conversation_id/end/confirm", handler.ConfirmEnding)
	engine.POST("/v1/conversations/:conversation_id/final-note", handler.AddFinalNote)
	return engine
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Dev-User-ID", "user_alice")
	req.Header.Set("X-Dev-User-Name", "Alice")
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)
	return recorder
}

func sampleConversation() *conversation.Conversation {
	partner := "user_bob"
	return &conversation.Conversation{
		PublicID:          "conv_test1",
		Source:            conversation.SourceNone,
		InitiatedByUserID: "user_alice",
		PartnerID:         &partner,
		StartedAt:         time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		Outcome:           conversation.OutcomeNone,
	}
}

func TestCreateConversation(t *testing.T) {
	service := &MockConversationService{
		StartFunc: func(ctx context.Context, identity user.Identity, params conversation.StartParams) (*conversation.Conversation, error) {
			if identity.ID != "user_alice" || identity.Name != "Alice" {
				t.Errorf("identity = %+v", identity)
			}
			return sampleConversation(), nil
		},
	}
	engine := newConversationRouter(t, service)

	recorder := doJSON(t, engine, http.MethodPost, "/v1/conversations", map[string]any{})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", recorder.Code, http.StatusCreated, recorder.Body.String())
	}

	var payload map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["id"] != "conv_test1" {
		t.Errorf("id = %v", payload["id"])
	}
	if payload["phase"] != "open" {
		t.Errorf("phase = %v, want open", payload["phase"])
	}
}

func TestCreateConversationRejectsDualSource(t *testing.T) {
	engine := newConversationRouter(t, &MockConversationService{})

	recorder := doJSON(t, engine, http.MethodPost, "/v1/conversations", map[string]any{
		"loveslice_id": "slice_1",
		"question_id":  "q_1",
	})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusBadRequest)
	}
}

func TestGetConversationForbidden(t *testing.T) {
	service := &MockConversationService{
		GetFunc: func(ctx context.Context, userID, publicID string) (*conversation.Conversation, error) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
				platformerrors.ErrorTypeForbidden, "user is not a participant in this conversation", nil, "test-forbidden")
		},
	}
	engine := newConversationRouter(t, service)

	recorder := doJSON(t, engine, http.MethodGet, "/v1/conversations/conv_other", nil)
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusForbidden)
	}
}

func TestConfirmEndingConflictMapsTo409(t *testing.T) {
	service := &MockConversationService{
		ConfirmEndingFunc: func(ctx context.Context, identity user.Identity, publicID string, params conversation.EndParams) (*conversation.Conversation, error) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
				platformerrors.ErrorTypeConflict, "the initiating partner cannot confirm their own ending request", nil, "test-self-confirm")
		},
	}
	engine := newConversationRouter(t, service)

	recorder := doJSON(t, engine, http.MethodPost, "/v1/conversations/conv_test1/end/confirm", map[string]any{})
	if recorder.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d: %s", recorder.Code, http.StatusConflict, recorder.Body.String())
	}
}

func TestConfirmEndingPassesOptions(t *testing.T) {
	var got conversation.EndParams
	service := &MockConversationService{
		ConfirmEndingFunc: func(ctx context.Context, identity user.Identity, publicID string, params conversation.EndParams) (*conversation.Conversation, error) {
			got = params
			conv := sampleConversation()
			now := time.Now()
			duration := 120
			conv.EndedAt = &now
			conv.DurationSeconds = &duration
			conv.Outcome = conversation.OutcomeConnected
			conv.CreatedSpokenLoveslice = true
			return conv, nil
		},
	}
	engine := newConversationRouter(t, service)

	recorder := doJSON(t, engine, http.MethodPost, "/v1/conversations/conv_test1/end/confirm", map[string]any{
		"outcome":                 "connected",
		"create_spoken_loveslice": true,
		"theme":                   "trust",
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", recorder.Code, recorder.Body.String())
	}
	if got.Outcome == nil || *got.Outcome != conversation.OutcomeConnected {
		t.Errorf("outcome = %v, want connected", got.Outcome)
	}
	if !got.CreateSpokenLoveslice || got.Theme != "trust" {
		t.Errorf("params = %+v", got)
	}
}

func TestPostMessage(t *testing.T) {
	service := &MockConversationService{
		PostMessageFunc: func(ctx context.Context, userID, publicID, content string) (*conversation.Message, error) {
			return &conversation.Message{
				PublicID:             "msg_1",
				ConversationPublicID: publicID,
				UserID:               userID,
				Content:              content,
			}, nil
		},
	}
	engine := newConversationRouter(t, service)

	recorder := doJSON(t, engine, http.MethodPost, "/v1/conversations/conv_test1/messages", map[string]any{
		"content": "hello there",
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", recorder.Code, recorder.Body.String())
	}

	var payload map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["content"] != "hello there" || payload["user_id"] != "user_alice" {
		t.Errorf("payload = %v", payload)
	}
}

func TestMissingIdentityIsUnauthorized(t *testing.T) {
	engine := newConversationRouter(t, &MockConversationService{})

	req := httptest.NewRequest(http.MethodGet, "/v1/conversations/conv_test1", nil)
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusUnauthorized)
	}
}

package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"loveslices-server/internal/config"
	"loveslices-server/internal/domain/pairing"
	"loveslices-server/internal/infrastructure/auth"
	"loveslices-server/internal/interfaces/httpserver/handlers"
	"loveslices-server/internal/utils/platformerrors"
)

// MockPairingService is a mock implementation of pairing.Service.
type MockPairingService struct {
	SubmitResponseFunc func(ctx context.Context, userID, questionPublicID, content string) (*pairing.SubmissionResult, error)
	GetLovesliceFunc   func(ctx context.Context, publicID string) (*pairing.Loveslice, error)
}

func (m *MockPairingService) SubmitResponse(ctx context.Context, userID, questionPublicID, content string) (*pairing.SubmissionResult, error) {
	if m.SubmitResponseFunc != nil {
		return m.SubmitResponseFunc(ctx, userID, questionPublicID, content)
	}
	return nil, nil
}

func (m *MockPairingService) GetLoveslice(ctx context.Context, publicID string) (*pairing.Loveslice, error) {
	if m.GetLovesliceFunc != nil {
		return m.GetLovesliceFunc(ctx, publicID)
	}
	return nil, nil
}

func newPairingRouter(t *testing.T, service pairing.Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	validator, err := auth.NewValidator(context.Background(), &config.Config{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("auth validator: %v", err)
	}

	handler := handlers.NewPairingHandler(service, zerolog.Nop())
	engine := gin.New()
	engine.Use(validator.Middleware())
	engine.POST("/v1/responses", handler.Submit)
	engine.GET("/v1/loveslices/:loveslice_id", handler.GetLoveslice)
	return engine
}

func TestSubmitResponse(t *testing.T) {
	service := &MockPairingService{
		SubmitResponseFunc: func(ctx context.Context, userID, questionPublicID, content string) (*pairing.SubmissionResult, error) {
			if userID != "user_alice" || questionPublicID != "q_1" {
				t.Errorf("called with user=%s question=%s", userID, questionPublicID)
			}
			return &pairing.SubmissionResult{
				Response: &pairing.Response{
					PublicID:         "resp_1",
					QuestionPublicID: questionPublicID,
					UserID:           userID,
					Content:          content,
				},
			}, nil
		},
	}
	engine := newPairingRouter(t, service)

	recorder := doJSON(t, engine, http.MethodPost, "/v1/responses", map[string]any{
		"question_id": "q_1",
		"content":     "the way you hum while cooking",
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", recorder.Code, recorder.Body.String())
	}

	var payload map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["paired"] != false {
		t.Errorf("paired = %v, want false", payload["paired"])
	}
	if _, present := payload["loveslice"]; present {
		t.Error("unpaired submission carries a loveslice")
	}
}

func TestSubmitResponseRequiresQuestionID(t *testing.T) {
	engine := newPairingRouter(t, &MockPairingService{})

	recorder := doJSON(t, engine, http.MethodPost, "/v1/responses", map[string]any{
		"content": "no question given",
	})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusBadRequest)
	}
}

func TestSubmitDuplicateResponseIsConflict(t *testing.T) {
	service := &MockPairingService{
		SubmitResponseFunc: func(ctx context.Context, userID, questionPublicID, content string) (*pairing.SubmissionResult, error) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
				platformerrors.ErrorTypeConflict, "user has already answered this question", nil, "test-dup")
		},
	}
	engine := newPairingRouter(t, service)

	recorder := doJSON(t, engine, http.MethodPost, "/v1/responses", map[string]any{
		"question_id": "q_1",
		"content":     "again",
	})
	if recorder.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusConflict)
	}
}

func TestGetLovesliceForbiddenForOutsiders(t *testing.T) {
	service := &MockPairingService{
		GetLovesliceFunc: func(ctx context.Context, publicID string) (*pairing.Loveslice, error) {
			return &pairing.Loveslice{
				PublicID: publicID,
				User1ID:  "user_carol",
				User2ID:  "user_dave",
			}, nil
		},
	}
	engine := newPairingRouter(t, service)

	recorder := doJSON(t, engine, http.MethodGet, "/v1/loveslices/slice_1", nil)
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusForbidden)
	}
}

func TestGetLoveslice(t *testing.T) {
	service := &MockPairingService{
		GetLovesliceFunc: func(ctx context.Context, publicID string) (*pairing.Loveslice, error) {
			return &pairing.Loveslice{
				PublicID: publicID,
				User1ID:  "user_alice",
				User2ID:  "user_bob",
				Type:     "written",
			}, nil
		},
	}
	engine := newPairingRouter(t, service)

	recorder := doJSON(t, engine, http.MethodGet, "/v1/loveslices/slice_1", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", recorder.Code, recorder.Body.String())
	}

	var payload map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["id"] != "slice_1" {
		t.Errorf("id = %v", payload["id"])
	}
}

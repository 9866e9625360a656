// Package client is the Go client for the loveslices API. It mirrors the
// server's conversation transitions one call per endpoint and keeps a local
// view of one open conversation fed by the realtime channel.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// Config configures the API client. Token is used as a bearer token when
// set; otherwise the development identity headers are sent.
type Config struct {
	BaseURL     string
	Token       string
	DevUserID   string
	DevUserName string
	Timeout     time.Duration
}

// Client talks to the loveslices HTTP API.
type Client struct {
	rest *resty.Client
	cfg  Config
	log  zerolog.Logger
}

// APIError is the error payload returned by the server.
type APIError struct {
	Code      string `json:"code"`
	ErrorText string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Status    int    `json:"-"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.ErrorText)
}

// Conversation is the client-side view of a conversation record.
type Conversation struct {
	ID              string     `json:"id"`
	Phase           string     `json:"phase"`
	Source          string     `json:"source"`
	LovesliceID     *string    `json:"loveslice_id"`
	QuestionID      *string    `json:"question_id"`
	InitiatedBy     string     `json:"initiated_by"`
	PartnerID       *string    `json:"partner_id"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at"`
	DurationSeconds *int       `json:"duration_seconds"`
	Outcome         string     `json:"outcome"`
	SpokenLoveslice bool       `json:"created_spoken_loveslice"`
	FinalNote       *string    `json:"final_note"`
	EndInitiatedBy  *string    `json:"end_initiated_by"`
	EndInitiatedAt  *time.Time `json:"end_initiated_at"`
}

// Message is one conversation message.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	UserID         string    `json:"user_id"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// Submission reports what a response submission produced.
type Submission struct {
	Paired    bool `json:"paired"`
	Response  struct {
		ID         string `json:"id"`
		QuestionID string `json:"question_id"`
		Content    string `json:"content"`
	} `json:"response"`
	Loveslice *struct {
		ID         string `json:"id"`
		QuestionID string `json:"question_id"`
	} `json:"loveslice"`
}

// EndOptions carries the optional fields for confirm and direct endings.
type EndOptions struct {
	Outcome               *string `json:"outcome,omitempty"`
	CreateSpokenLoveslice bool    `json:"create_spoken_loveslice"`
	Theme                 string  `json:"theme,omitempty"`
}

// NewClient builds an API client.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	rest := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	if cfg.Token != "" {
		rest.SetAuthToken(cfg.Token)
	} else if cfg.DevUserID != "" {
		rest.SetHeader("X-Dev-User-ID", cfg.DevUserID)
		if cfg.DevUserName != "" {
			rest.SetHeader("X-Dev-User-Name", cfg.DevUserName)
		}
	}

	return &Client{
		rest: rest,
		cfg:  cfg,
		log:  log.With().Str("component", "loveslices-client").Logger(),
	}
}

// StartConversation creates a conversation, optionally from a loveslice or a
// starter question.
func (c *Client) StartConversation(ctx context.Context, lovesliceID, questionID *string) (*Conversation, error) {
	body := map[string]any{}
	if lovesliceID != nil {
		body["loveslice_id"] = *lovesliceID
	}
	if questionID != nil {
		body["question_id"] = *questionID
	}
	var conv Conversation
	if err := c.post(ctx, "/v1/conversations", body, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// GetConversation fetches the current conversation record.
func (c *Client) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	var conv Conversation
	if err := c.get(ctx, "/v1/conversations/"+id, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// PostMessage appends a message to the conversation.
func (c *Client) PostMessage(ctx context.Context, id, content string) (*Message, error) {
	var msg Message
	if err := c.post(ctx, "/v1/conversations/"+id+"/messages", map[string]any{"content": content}, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListMessages returns the conversation's messages oldest first.
func (c *Client) ListMessages(ctx context.Context, id string) ([]Message, error) {
	var payload struct {
		Data []Message `json:"data"`
	}
	if err := c.get(ctx, "/v1/conversations/"+id+"/messages", &payload); err != nil {
		return nil, err
	}
	return payload.Data, nil
}

// InitiateEnding asks the partner to agree to end the conversation.
func (c *Client) InitiateEnding(ctx context.Context, id string) (*Conversation, error) {
	return c.transition(ctx, id, "end/initiate", map[string]any{})
}

// ConfirmEnding agrees to the partner's ending request.
func (c *Client) ConfirmEnding(ctx context.Context, id string, opts EndOptions) (*Conversation, error) {
	return c.transition(ctx, id, "end/confirm", opts)
}

// CancelEnding withdraws a pending ending request.
func (c *Client) CancelEnding(ctx context.Context, id string) (*Conversation, error) {
	return c.transition(ctx, id, "end/cancel", map[string]any{})
}

// EndDirectly ends a solo conversation without negotiation.
func (c *Client) EndDirectly(ctx context.Context, id string, opts EndOptions) (*Conversation, error) {
	return c.transition(ctx, id, "end/direct", opts)
}

// AddFinalNote attaches a closing note to an ending or ended conversation.
func (c *Client) AddFinalNote(ctx context.Context, id, note string) (*Conversation, error) {
	return c.transition(ctx, id, "final-note", map[string]any{"note": note})
}

// SubmitResponse answers a question; the result reports whether the answer
// completed a loveslice.
func (c *Client) SubmitResponse(ctx context.Context, questionID, content string) (*Submission, error) {
	var sub Submission
	err := c.post(ctx, "/v1/responses", map[string]any{
		"question_id": questionID,
		"content":     content,
	}, &sub)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (c *Client) transition(ctx context.Context, id, action string, body any) (*Conversation, error) {
	var conv Conversation
	if err := c.post(ctx, "/v1/conversations/"+id+"/"+action, body, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(out).
		SetError(&APIError{}).
		Post(path)
	return c.checkResponse(resp, err)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetResult(out).
		SetError(&APIError{}).
		Get(path)
	return c.checkResponse(resp, err)
}

func (c *Client) checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.IsError() {
		apiErr, ok := resp.Error().(*APIError)
		if !ok || (apiErr.Message == "" && apiErr.ErrorText == "") {
			return fmt.Errorf("api error %d", resp.StatusCode())
		}
		apiErr.Status = resp.StatusCode()
		return apiErr
	}
	return nil
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"loveslices-server/internal/domain/conversation"
	"loveslices-server/internal/interfaces/httpserver/responses"
	"loveslices-server/internal/utils/platformerrors"
)

// ConversationHandler serves the conversation lifecycle endpoints.
type ConversationHandler struct {
	service conversation.Service
	log     zerolog.Logger
}

// NewConversationHandler builds the conversation handler.
func NewConversationHandler(service conversation.Service, log zerolog.Logger) *ConversationHandler {
	return &ConversationHandler{
		service: service,
		log:     log.With().Str("component", "conversation-handler").Logger(),
	}
}

type createConversationRequest struct {
	LovesliceID *string `json:"loveslice_id"`
	QuestionID  *string `json:"question_id"`
}

type postMessageRequest struct {
	Content string `json:"content"`
}

type endConversationRequest struct {
	Outcome               *string `json:"outcome"`
	CreateSpokenLoveslice bool    `json:"create_spoken_loveslice"`
	Theme                 string  `json:"theme"`
}

type finalNoteRequest struct {
	Note string `json:"note"`
}

// Create handles POST /v1/conversations.
func (h *ConversationHandler) Create(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	var req createConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"invalid request body", "conversation-create-bind")
		return
	}
	if req.LovesliceID != nil && req.QuestionID != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"a conversation starts from a loveslice or a question, not both",
			"conversation-create-source")
		return
	}

	conv, err := h.service.Start(c.Request.Context(), identity, conversation.StartParams{
		LoveslicePublicID: req.LovesliceID,
		QuestionPublicID:  req.QuestionID,
	})
	if err != nil {
		responses.HandleError(c, err, "failed to start conversation")
		return
	}
	c.JSON(http.StatusCreated, responses.FromConversation(conv))
}

// Get handles GET /v1/conversations/:conversation_id.
func (h *ConversationHandler) Get(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	conv, err := h.service.Get(c.Request.Context(), identity.ID, c.Param("conversation_id"))
	if err != nil {
		responses.HandleError(c, err, "failed to fetch conversation")
		return
	}
	c.JSON(http.StatusOK, responses.FromConversation(conv))
}

// ListActive handles GET /v1/conversations. It returns the caller's
// conversations that have not yet ended.
func (h *ConversationHandler) ListActive(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	conversations, err := h.service.ListActive(c.Request.Context(), identity.ID)
	if err != nil {
		responses.HandleError(c, err, "failed to list conversations")
		return
	}
	c.JSON(http.StatusOK, responses.FromConversations(conversations))
}

// ListMessages handles GET /v1/conversations/:conversation_id/messages.
func (h *ConversationHandler) ListMessages(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	messages, err := h.service.ListMessages(c.Request.Context(), identity.ID, c.Param("conversation_id"))
	if err != nil {
		responses.HandleError(c, err, "failed to list messages")
		return
	}
	c.JSON(http.StatusOK, responses.FromMessages(messages))
}

// PostMessage handles POST /v1/conversations/:conversation_id/messages.
func (h *ConversationHandler) PostMessage(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"invalid request body", "conversation-message-bind")
		return
	}

	msg, err := h.service.PostMessage(c.Request.Context(), identity.ID, c.Param("conversation_id"), req.Content)
	if err != nil {
		responses.HandleError(c, err, "failed to post message")
		return
	}
	c.JSON(http.StatusCreated, responses.FromMessage(msg))
}

// InitiateEnding handles POST /v1/conversations/:conversation_id/end/initiate.
func (h *ConversationHandler) InitiateEnding(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	conv, err := h.service.InitiateEnding(c.Request.Context(), identity, c.Param("conversation_id"))
	if err != nil {
		responses.HandleError(c, err, "failed to initiate ending")
		return
	}
	c.JSON(http.StatusOK, responses.FromConversation(conv))
}

// ConfirmEnding handles POST /v1/conversations/:conversation_id/end/confirm.
func (h *ConversationHandler) ConfirmEnding(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	req, ok := bindEndRequest(c, "conversation-confirm-bind")
	if !ok {
		return
	}

	conv, err := h.service.ConfirmEnding(c.Request.Context(), identity, c.Param("conversation_id"), req)
	if err != nil {
		responses.HandleError(c, err, "failed to confirm ending")
		return
	}
	c.JSON(http.StatusOK, responses.FromConversation(conv))
}

// CancelEnding handles POST /v1/conversations/:conversation_id/end/cancel.
func (h *ConversationHandler) CancelEnding(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	conv, err := h.service.CancelEnding(c.Request.Context(), identity, c.Param("conversation_id"))
	if err != nil {
		responses.HandleError(c, err, "failed to cancel ending")
		return
	}
	c.JSON(http.StatusOK, responses.FromConversation(conv))
}

// EndDirect handles POST /v1/conversations/:conversation_id/end/direct.
func (h *ConversationHandler) EndDirect(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	req, ok := bindEndRequest(c, "conversation-direct-bind")
	if !ok {
		return
	}

	conv, err := h.service.EndDirectly(c.Request.Context(), identity, c.Param("conversation_id"), req)
	if err != nil {
		responses.HandleError(c, err, "failed to end conversation")
		return
	}
	c.JSON(http.StatusOK, responses.FromConversation(conv))
}

// AddFinalNote handles POST /v1/conversations/:conversation_id/final-note.
func (h *ConversationHandler) AddFinalNote(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	var req finalNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"invalid request body", "conversation-note-bind")
		return
	}

	conv, err := h.service.AddFinalNote(c.Request.Context(), identity, c.Param("conversation_id"), req.Note)
	if err != nil {
		responses.HandleError(c, err, "failed to add final note")
		return
	}
	c.JSON(http.StatusOK, responses.FromConversation(conv))
}

func bindEndRequest(c *gin.Context, bindUUID string) (conversation.EndParams, bool) {
	var req endConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"invalid request body", bindUUID)
		return conversation.EndParams{}, false
	}

	params := conversation.EndParams{
		CreateSpokenLoveslice: req.CreateSpokenLoveslice,
		Theme:                 req.Theme,
	}
	if req.Outcome != nil {
		outcome := conversation.Outcome(*req.Outcome)
		params.Outcome = &outcome
	}
	return params, true
}

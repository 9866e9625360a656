package responses

import (
	"time"

	"loveslices-server/internal/domain/conversation"
)

// ConversationPayload is returned to clients for conversation reads and
// transitions.
type ConversationPayload struct {
	ID              string     `json:"id"`
	Phase           string     `json:"phase"`
	Source          string     `json:"source"`
	LovesliceID     *string    `json:"loveslice_id,omitempty"`
	QuestionID      *string    `json:"question_id,omitempty"`
	InitiatedBy     string     `json:"initiated_by"`
	PartnerID       *string    `json:"partner_id,omitempty"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	DurationSeconds *int       `json:"duration_seconds,omitempty"`
	Outcome         string     `json:"outcome"`
	SpokenLoveslice bool       `json:"created_spoken_loveslice"`
	FinalNote       *string    `json:"final_note,omitempty"`
	EndInitiatedBy  *string    `json:"end_initiated_by,omitempty"`
	EndInitiatedAt  *time.Time `json:"end_initiated_at,omitempty"`
	EndConfirmedBy  *string    `json:"end_confirmed_by,omitempty"`
	EndConfirmedAt  *time.Time `json:"end_confirmed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// FromConversation maps the domain conversation to its payload.
func FromConversation(c *conversation.Conversation) ConversationPayload {
	return ConversationPayload{
		ID:              c.PublicID,
		Phase:           string(c.Phase()),
		Source:          string(c.Source),
		LovesliceID:     c.LoveslicePublicID,
		QuestionID:      c.QuestionPublicID,
		InitiatedBy:     c.InitiatedByUserID,
		PartnerID:       c.PartnerID,
		StartedAt:       c.StartedAt,
		EndedAt:         c.EndedAt,
		DurationSeconds: c.DurationSeconds,
		Outcome:         string(c.Outcome),
		SpokenLoveslice: c.CreatedSpokenLoveslice,
		FinalNote:       c.FinalNote,
		EndInitiatedBy:  c.EndInitiatedByUserID,
		EndInitiatedAt:  c.EndInitiatedAt,
		EndConfirmedBy:  c.EndConfirmedByUserID,
		EndConfirmedAt:  c.EndConfirmedAt,
		CreatedAt:       c.CreatedAt,
	}
}

// ConversationListPayload wraps a user's conversations.
type ConversationListPayload struct {
	Data []ConversationPayload `json:"data"`
}

// FromConversations maps a conversation list to its payload.
func FromConversations(conversations []*conversation.Conversation) ConversationListPayload {
	data := make([]ConversationPayload, len(conversations))
	for i, conv := range conversations {
		data[i] = FromConversation(conv)
	}
	return ConversationListPayload{Data: data}
}

// MessagePayload is one conversation message.
type MessagePayload struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	UserID         string    `json:"user_id"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// FromMessage maps the domain message to its payload.
func FromMessage(m *conversation.Message) MessagePayload {
	return MessagePayload{
		ID:             m.PublicID,
		ConversationID: m.ConversationPublicID,
		UserID:         m.UserID,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
}

// MessageListPayload wraps a conversation's messages.
type MessageListPayload struct {
	Data []MessagePayload `json:"data"`
}

// FromMessages maps a message list to its payload.
func FromMessages(messages []conversation.Message) MessageListPayload {
	data := make([]MessagePayload, len(messages))
	for i := range messages {
		data[i] = FromMessage(&messages[i])
	}
	return MessageListPayload{Data: data}
}

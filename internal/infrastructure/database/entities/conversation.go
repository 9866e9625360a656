package entities

import (
	"time"

	"loveslices-server/internal/domain/conversation"
)

// Conversation represents the database schema for conversations. The ending
// negotiation state lives in the end_* columns; lifecycle phase is derived in
// the domain model.
type Conversation struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PublicID          string  `gorm:"type:varchar(64);uniqueIndex;not null"`
	Source            string  `gorm:"type:varchar(20);not null;default:'none'"`
	LoveslicePublicID *string `gorm:"type:varchar(64);index"`
	QuestionPublicID  *string `gorm:"type:varchar(64)"`
	InitiatedByUserID string  `gorm:"type:varchar(64);index;not null"`
	PartnerID         *string `gorm:"type:varchar(64);index"`
	StartedAt         time.Time
	EndedAt           *time.Time
	DurationSeconds   *int
	Outcome           string `gorm:"type:varchar(32);not null;default:'no-outcome'"`
	CreatedSpokenLoveslice bool `gorm:"not null;default:false"`
	FinalNote         *string `gorm:"type:text"`

	EndInitiatedByUserID *string `gorm:"type:varchar(64)"`
	EndInitiatedAt       *time.Time
	EndConfirmedByUserID *string `gorm:"type:varchar(64)"`
	EndConfirmedAt       *time.Time

	Messages []ConversationMessage `gorm:"foreignKey:ConversationID"`
}

// TableName specifies the table name for Conversation.
func (Conversation) TableName() string {
	return "conversations"
}

// EtoD converts database entity to domain model.
func (c *Conversation) EtoD() *conversation.Conversation {
	return &conversation.Conversation{
		ID:                c.ID,
		PublicID:          c.PublicID,
		Source:            conversation.Source(c.Source),
		LoveslicePublicID: c.LoveslicePublicID,
		QuestionPublicID:  c.QuestionPublicID,
		InitiatedByUserID: c.InitiatedByUserID,
		PartnerID:         c.PartnerID,
		StartedAt:         c.StartedAt,
		EndedAt:           c.EndedAt,
		DurationSeconds:   c.DurationSeconds,
		Outcome:           conversation.Outcome(c.Outcome),
		CreatedSpokenLoveslice: c.CreatedSpokenLoveslice,
		FinalNote:         c.FinalNote,
		EndInitiatedByUserID: c.EndInitiatedByUserID,
		EndInitiatedAt:       c.EndInitiatedAt,
		EndConfirmedByUserID: c.EndConfirmedByUserID,
		EndConfirmedAt:       c.EndConfirmedAt,
		CreatedAt:            c.CreatedAt,
		UpdatedAt:            c.UpdatedAt,
	}
}

// NewSchemaConversation creates a database entity from domain model.
func NewSchemaConversation(c *conversation.Conversation) *Conversation {
	return &Conversation{
		ID:                c.ID,
		PublicID:          c.PublicID,
		Source:            string(c.Source),
		LoveslicePublicID: c.LoveslicePublicID,
		QuestionPublicID:  c.QuestionPublicID,
		InitiatedByUserID: c.InitiatedByUserID,
		PartnerID:         c.PartnerID,
		StartedAt:         c.StartedAt,
		EndedAt:           c.EndedAt,
		DurationSeconds:   c.DurationSeconds,
		Outcome:           string(c.Outcome),
		CreatedSpokenLoveslice: c.CreatedSpokenLoveslice,
		FinalNote:         c.FinalNote,
		EndInitiatedByUserID: c.EndInitiatedByUserID,
		EndInitiatedAt:       c.EndInitiatedAt,
		EndConfirmedByUserID: c.EndConfirmedByUserID,
		EndConfirmedAt:       c.EndConfirmedAt,
		CreatedAt:            c.CreatedAt,
		UpdatedAt:            c.UpdatedAt,
	}
}

// ConversationMessage represents the database schema for conversation
// messages. Messages are append-only.
type ConversationMessage struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	PublicID             string `gorm:"type:varchar(64);uniqueIndex;not null"`
	ConversationID       uint   `gorm:"index;not null"`
	ConversationPublicID string `gorm:"type:varchar(64);index;not null"`
	UserID               string `gorm:"type:varchar(64);not null"`
	Content              string `gorm:"type:text;not null"`
}

// TableName specifies the table name for ConversationMessage.
func (ConversationMessage) TableName() string {
	return "conversation_messages"
}

// EtoD converts database entity to domain model.
func (m *ConversationMessage) EtoD() *conversation.Message {
	return &conversation.Message{
		ID:                   m.ID,
		PublicID:             m.PublicID,
		ConversationID:       m.ConversationID,
		ConversationPublicID: m.ConversationPublicID,
		UserID:               m.UserID,
		Content:              m.Content,
		CreatedAt:            m.CreatedAt,
	}
}

// NewSchemaConversationMessage creates a database entity from domain model.
func NewSchemaConversationMessage(m *conversation.Message) *ConversationMessage {
	return &ConversationMessage{
		ID:                   m.ID,
		PublicID:             m.PublicID,
		ConversationID:       m.ConversationID,
		ConversationPublicID: m.ConversationPublicID,
		UserID:               m.UserID,
		Content:              m.Content,
		CreatedAt:            m.CreatedAt,
	}
}

// SpokenLoveslice represents the database schema for spoken loveslices. The
// unique index on conversation_public_id enforces at most one per
// conversation.
type SpokenLoveslice struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	PublicID             string `gorm:"type:varchar(64);uniqueIndex;not null"`
	ConversationPublicID string `gorm:"type:varchar(64);uniqueIndex;not null"`
	User1ID              string `gorm:"type:varchar(64);index;not null"`
	User2ID              string `gorm:"type:varchar(64);index;not null"`
	Outcome              string `gorm:"type:varchar(32);not null"`
	Theme                string `gorm:"type:varchar(64);not null"`
	DurationSeconds      int    `gorm:"not null;default:0"`
}

// TableName specifies the table name for SpokenLoveslice.
func (SpokenLoveslice) TableName() string {
	return "spoken_loveslices"
}

// EtoD converts database entity to domain model.
func (s *SpokenLoveslice) EtoD() *conversation.SpokenLoveslice {
	return &conversation.SpokenLoveslice{
		ID:                   s.ID,
		PublicID:             s.PublicID,
		ConversationPublicID: s.ConversationPublicID,
		User1ID:              s.User1ID,
		User2ID:              s.User2ID,
		Outcome:              conversation.Outcome(s.Outcome),
		Theme:                s.Theme,
		DurationSeconds:      s.DurationSeconds,
		CreatedAt:            s.CreatedAt,
	}
}

// NewSchemaSpokenLoveslice creates a database entity from domain model.
func NewSchemaSpokenLoveslice(s *conversation.SpokenLoveslice) *SpokenLoveslice {
	return &SpokenLoveslice{
		ID:                   s.ID,
		PublicID:             s.PublicID,
		ConversationPublicID: s.ConversationPublicID,
		User1ID:              s.User1ID,
		User2ID:              s.User2ID,
		Outcome:              string(s.Outcome),
		Theme:                s.Theme,
		DurationSeconds:      s.DurationSeconds,
		CreatedAt:            s.CreatedAt,
	}
}

package entities

import (
	"time"

	"loveslices-server/internal/domain/pairing"
)

// Response represents the database schema for question responses. The
// composite unique index rejects a second response from the same user to the
// same question.
type Response struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	PublicID         string `gorm:"type:varchar(64);uniqueIndex;not null"`
	QuestionID       uint   `gorm:"uniqueIndex:idx_response_question_user;not null"`
	QuestionPublicID string `gorm:"type:varchar(64);index;not null"`
	UserID           string `gorm:"type:varchar(64);uniqueIndex:idx_response_question_user;index;not null"`
	Content          string `gorm:"type:text;not null"`
}

// TableName specifies the table name for Response.
func (Response) TableName() string {
	return "responses"
}

// EtoD converts database entity to domain model.
func (r *Response) EtoD() *pairing.Response {
	return &pairing.Response{
		ID:               r.ID,
		PublicID:         r.PublicID,
		QuestionID:       r.QuestionID,
		QuestionPublicID: r.QuestionPublicID,
		UserID:           r.UserID,
		Content:          r.Content,
		CreatedAt:        r.CreatedAt,
	}
}

// NewSchemaResponse creates a database entity from domain model.
func NewSchemaResponse(r *pairing.Response) *Response {
	return &Response{
		ID:               r.ID,
		PublicID:         r.PublicID,
		QuestionID:       r.QuestionID,
		QuestionPublicID: r.QuestionPublicID,
		UserID:           r.UserID,
		Content:          r.Content,
		CreatedAt:        r.CreatedAt,
	}
}

// Loveslice represents the database schema for written loveslices. The
// composite unique index over (question, normalized pair) is the final
// backstop against duplicate pairings.
type Loveslice struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PublicID          string  `gorm:"type:varchar(64);uniqueIndex;not null"`
	QuestionID        uint    `gorm:"uniqueIndex:idx_loveslice_question_pair;not null"`
	QuestionPublicID  string  `gorm:"type:varchar(64);index;not null"`
	User1ID           string  `gorm:"type:varchar(64);uniqueIndex:idx_loveslice_question_pair;index;not null"`
	User2ID           string  `gorm:"type:varchar(64);uniqueIndex:idx_loveslice_question_pair;index;not null"`
	Response1PublicID string  `gorm:"type:varchar(64);not null"`
	Response2PublicID string  `gorm:"type:varchar(64);not null"`
	PrivateNote       *string `gorm:"type:text"`
	Type              string  `gorm:"type:varchar(32);not null;default:'written'"`
	HasConversation   bool    `gorm:"not null;default:false"`
}

// TableName specifies the table name for Loveslice.
func (Loveslice) TableName() string {
	return "loveslices"
}

// EtoD converts database entity to domain model.
func (l *Loveslice) EtoD() *pairing.Loveslice {
	return &pairing.Loveslice{
		ID:                l.ID,
		PublicID:          l.PublicID,
		QuestionID:        l.QuestionID,
		QuestionPublicID:  l.QuestionPublicID,
		User1ID:           l.User1ID,
		User2ID:           l.User2ID,
		Response1PublicID: l.Response1PublicID,
		Response2PublicID: l.Response2PublicID,
		PrivateNote:       l.PrivateNote,
		Type:              l.Type,
		HasConversation:   l.HasConversation,
		CreatedAt:         l.CreatedAt,
	}
}

// NewSchemaLoveslice creates a database entity from domain model.
func NewSchemaLoveslice(l *pairing.Loveslice) *Loveslice {
	return &Loveslice{
		ID:                l.ID,
		PublicID:          l.PublicID,
		QuestionID:        l.QuestionID,
		QuestionPublicID:  l.QuestionPublicID,
		User1ID:           l.User1ID,
		User2ID:           l.User2ID,
		Response1PublicID: l.Response1PublicID,
		Response2PublicID: l.Response2PublicID,
		PrivateNote:       l.PrivateNote,
		Type:              l.Type,
		HasConversation:   l.HasConversation,
		CreatedAt:         l.CreatedAt,
	}
}

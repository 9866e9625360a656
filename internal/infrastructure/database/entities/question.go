package entities

import (
	"time"

	"loveslices-server/internal/domain/question"
)

// Question represents the database schema for questions.
type Question struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	PublicID      string `gorm:"type:varchar(64);uniqueIndex;not null"`
	Content       string `gorm:"type:text;not null"`
	Theme         string `gorm:"type:varchar(64);index;not null"`
	UserGenerated bool   `gorm:"not null;default:false"`
}

// TableName specifies the table name for Question.
func (Question) TableName() string {
	return "questions"
}

// EtoD converts database entity to domain model.
func (q *Question) EtoD() *question.Question {
	return &question.Question{
		ID:            q.ID,
		PublicID:      q.PublicID,
		Content:       q.Content,
		Theme:         q.Theme,
		UserGenerated: q.UserGenerated,
		CreatedAt:     q.CreatedAt,
	}
}

// NewSchemaQuestion creates a database entity from domain model.
func NewSchemaQuestion(q *question.Question) *Question {
	return &Question{
		ID:            q.ID,
		PublicID:      q.PublicID,
		Content:       q.Content,
		Theme:         q.Theme,
		UserGenerated: q.UserGenerated,
		CreatedAt:     q.CreatedAt,
	}
}

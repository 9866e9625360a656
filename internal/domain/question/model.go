package question

import (
	"context"
	"time"
)

// Question is a shared prompt both partners answer independently.
type Question struct {
	ID            uint
	PublicID      string
	Content       string
	Theme         string
	UserGenerated bool
	CreatedAt     time.Time
}

// Repository looks up questions.
type Repository interface {
	FindByPublicID(ctx context.Context, publicID string) (*Question, error)
}

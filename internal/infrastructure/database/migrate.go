package database

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"loveslices-server/internal/infrastructure/database/entities"
)

// AutoMigrate applies database schema changes for the loveslices domain.
func AutoMigrate(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&entities.User{},
		&entities.Question{},
		&entities.Response{},
		&entities.Loveslice{},
		&entities.Conversation{},
		&entities.ConversationMessage{},
		&entities.SpokenLoveslice{},
		&entities.JournalEntry{},
	); err != nil {
		return err
	}

	log.Info().Msg("database schema up to date")
	return nil
}

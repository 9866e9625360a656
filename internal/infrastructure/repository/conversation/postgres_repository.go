package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "loveslices-server/internal/domain/conversation"
	"loveslices-server/internal/domain/journal"
	"loveslices-server/internal/infrastructure/database/entities"
	"loveslices-server/internal/infrastructure/metrics"
	"loveslices-server/internal/utils/platformerrors"
)

// Repository persists conversations, their messages and spoken loveslices.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a conversation repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the conversation record.
func (r *Repository) Create(ctx context.Context, conv *domain.Conversation) error {
	entity := entities.NewSchemaConversation(conv)
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create conversation",
			err,
			"conversation-create-error",
		)
	}
	conv.ID = entity.ID
	conv.CreatedAt = entity.CreatedAt
	conv.UpdatedAt = entity.UpdatedAt
	return nil
}

// FindByPublicID fetches a conversation by its public ID.
func (r *Repository) FindByPublicID(ctx context.Context, publicID string) (*domain.Conversation, error) {
	var entity entities.Conversation
	if err := r.db.WithContext(ctx).
		Where("public_id = ?", publicID).
		First(&entity).Error; err != nil {
		return nil, r.wrapFetchError(ctx, publicID, err)
	}
	return entity.EtoD(), nil
}

// Transition locks the conversation row for update, runs fn against the
// current state, and persists the mutated conversation. All of it happens in
// one transaction, so concurrent transitions on the same conversation
// serialize on the row lock and each fn sees the latest committed state.
func (r *Repository) Transition(ctx context.Context, publicID string, fn domain.TransitionFunc) (*domain.Conversation, error) {
	var conv *domain.Conversation

	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("conversation_transition", time.Since(start).Seconds())
	}()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entity entities.Conversation
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("public_id = ?", publicID).
			First(&entity).Error; err != nil {
			return r.wrapFetchError(ctx, publicID, err)
		}

		conv = entity.EtoD()
		if err := fn(&transitionTx{ctx: ctx, tx: tx}, conv); err != nil {
			return err
		}

		updated := entities.NewSchemaConversation(conv)
		updated.ID = entity.ID
		if err := tx.Model(&entities.Conversation{}).
			Where("id = ?", entity.ID).
			Select("*").
			Omit("id", "created_at").
			Updates(updated).Error; err != nil {
			return platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeDatabaseError,
				"failed to persist conversation transition",
				err,
				"conversation-transition-save",
			)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return conv, nil
}

// ListMessages returns a conversation's messages oldest first.
func (r *Repository) ListMessages(ctx context.Context, conversationPublicID string) ([]domain.Message, error) {
	var rows []entities.ConversationMessage
	if err := r.db.WithContext(ctx).
		Where("conversation_public_id = ?", conversationPublicID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list messages",
			err,
			"conversation-messages-error",
		)
	}
	messages := make([]domain.Message, len(rows))
	for i := range rows {
		messages[i] = *rows[i].EtoD()
	}
	return messages, nil
}

// FindActiveByParticipant returns the user's conversations that have not yet
// ended.
func (r *Repository) FindActiveByParticipant(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	var rows []entities.Conversation
	if err := r.db.WithContext(ctx).
		Where("ended_at IS NULL").
		Where("initiated_by_user_id = ? OR partner_id = ?", userID, userID).
		Order("started_at DESC").
		Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list active conversations",
			err,
			"conversation-active-error",
		)
	}
	result := make([]*domain.Conversation, len(rows))
	for i := range rows {
		result[i] = rows[i].EtoD()
	}
	return result, nil
}

func (r *Repository) wrapFetchError(ctx context.Context, publicID string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("conversation not found: %s", publicID),
			nil,
			"conversation-not-found",
		)
	}
	return platformerrors.NewError(
		ctx,
		platformerrors.LayerRepository,
		platformerrors.ErrorTypeDatabaseError,
		"failed to fetch conversation",
		err,
		"conversation-fetch-error",
	)
}

// transitionTx exposes the in-transaction writes a transition may perform.
type transitionTx struct {
	ctx context.Context
	tx  *gorm.DB
}

func (t *transitionTx) CreateMessage(msg *domain.Message) error {
	entity := entities.NewSchemaConversationMessage(msg)
	if err := t.tx.Create(entity).Error; err != nil {
		return platformerrors.NewError(
			t.ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create message",
			err,
			"conversation-message-create",
		)
	}
	msg.ID = entity.ID
	msg.CreatedAt = entity.CreatedAt
	return nil
}

func (t *transitionTx) CreateSpokenLoveslice(slice *domain.SpokenLoveslice) error {
	entity := entities.NewSchemaSpokenLoveslice(slice)
	if err := t.tx.Create(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return platformerrors.NewError(
				t.ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeConflict,
				"conversation already has a spoken loveslice",
				nil,
				"spoken-loveslice-duplicate",
			)
		}
		return platformerrors.NewError(
			t.ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create spoken loveslice",
			err,
			"spoken-loveslice-create",
		)
	}
	slice.ID = entity.ID
	slice.CreatedAt = entity.CreatedAt
	return nil
}

func (t *transitionTx) CreateJournalEntry(entry *journal.Entry) error {
	entity := entities.NewSchemaJournalEntry(entry)
	if err := t.tx.Create(entity).Error; err != nil {
		return platformerrors.NewError(
			t.ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create journal entry",
			err,
			"journal-entry-create",
		)
	}
	entry.ID = entity.ID
	entry.CreatedAt = entity.CreatedAt
	return nil
}

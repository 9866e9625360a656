package question

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	domain "loveslices-server/internal/domain/question"
	"loveslices-server/internal/infrastructure/database/entities"
	"loveslices-server/internal/utils/platformerrors"
)

// Repository persists question records.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a question repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByPublicID fetches a question by public ID.
func (r *Repository) FindByPublicID(ctx context.Context, publicID string) (*domain.Question, error) {
	var entity entities.Question
	if err := r.db.WithContext(ctx).
		Where("public_id = ?", publicID).
		First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				fmt.Sprintf("question not found: %s", publicID),
				nil,
				"question-not-found",
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to fetch question",
			err,
			"question-fetch-error",
		)
	}
	return entity.EtoD(), nil
}

package user

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	domain "loveslices-server/internal/domain/user"
	"loveslices-server/internal/infrastructure/database/entities"
	"loveslices-server/internal/utils/platformerrors"
)

// Repository persists user records.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a user repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByPublicID fetches a user by public ID.
func (r *Repository) FindByPublicID(ctx context.Context, publicID string) (*domain.User, error) {
	var entity entities.User
	if err := r.db.WithContext(ctx).
		Where("public_id = ?", publicID).
		First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				fmt.Sprintf("user not found: %s", publicID),
				nil,
				"user-not-found",
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to fetch user",
			err,
			"user-fetch-error",
		)
	}
	return entity.EtoD(), nil
}

// PartnerOf returns the public ID of the user's linked partner, or nil when
// the user has no partner.
func (r *Repository) PartnerOf(ctx context.Context, publicID string) (*string, error) {
	u, err := r.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	return u.PartnerPublicID, nil
}

package journal

import (
	"context"

	"gorm.io/gorm"

	domain "loveslices-server/internal/domain/journal"
	"loveslices-server/internal/infrastructure/database/entities"
	"loveslices-server/internal/utils/platformerrors"
)

// Repository reads journal entries. Entries are written inside the pairing
// and conversation transactions, so this repository is query-only.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a journal repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByFilter lists a user's journal entries newest first, with optional
// kind and free-text filters. The text filter matches against the jsonb
// search payload.
func (r *Repository) FindByFilter(ctx context.Context, filter domain.Filter) ([]*domain.Entry, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&entities.JournalEntry{}).
		Where("user1_id = ? OR user2_id = ?", filter.UserID, filter.UserID)

	if filter.Kind != nil {
		query = query.Where("kind = ?", string(*filter.Kind))
	}
	if filter.Query != "" {
		query = query.Where("search_text->>'text' ILIKE ?", "%"+filter.Query+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, r.wrapError(ctx, err)
	}

	var rows []entities.JournalEntry
	if err := query.
		Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&rows).Error; err != nil {
		return nil, 0, r.wrapError(ctx, err)
	}

	result := make([]*domain.Entry, len(rows))
	for i := range rows {
		result[i] = rows[i].EtoD()
	}
	return result, total, nil
}

func (r *Repository) wrapError(ctx context.Context, err error) error {
	return platformerrors.NewError(
		ctx,
		platformerrors.LayerRepository,
		platformerrors.ErrorTypeDatabaseError,
		"failed to query journal entries",
		err,
		"journal-query-error",
	)
}

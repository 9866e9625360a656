package pairing

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"gorm.io/gorm"

	domain "loveslices-server/internal/domain/pairing"
	"loveslices-server/internal/domain/journal"
	"loveslices-server/internal/infrastructure/database/entities"
	"loveslices-server/internal/infrastructure/metrics"
	"loveslices-server/internal/utils/idgen"
	"loveslices-server/internal/utils/platformerrors"
)

// Repository persists responses and written loveslices.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a pairing repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// SubmitResponse stores a response and, when the partner's response to the
// same question already exists, creates the loveslice and its journal entry
// in the same transaction. Concurrent submissions from both partners are
// serialized by a transaction-scoped advisory lock keyed on the question and
// the normalized pair, so exactly one of them observes the other's response
// and creates the pair. The unique indexes on responses and loveslices are
// the backstop if the lock is ever bypassed.
func (r *Repository) SubmitResponse(ctx context.Context, params domain.SubmitParams) (*domain.SubmissionResult, error) {
	result := &domain.SubmissionResult{}

	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("pairing_submit", time.Since(start).Seconds())
	}()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if params.PartnerID != nil {
			key := pairLockKey(params.QuestionID, params.UserID, *params.PartnerID)
			if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", key).Error; err != nil {
				return fmt.Errorf("acquire pairing lock: %w", err)
			}
		}

		response := &entities.Response{
			PublicID:         idgen.NewID("resp"),
			QuestionID:       params.QuestionID,
			QuestionPublicID: params.QuestionPublicID,
			UserID:           params.UserID,
			Content:          params.Content,
		}
		if err := tx.Create(response).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return platformerrors.NewError(
					ctx,
					platformerrors.LayerRepository,
					platformerrors.ErrorTypeConflict,
					"user has already answered this question",
					nil,
					"pairing-duplicate-response",
				)
			}
			return err
		}
		result.Response = response.EtoD()

		if params.PartnerID == nil {
			return nil
		}

		var partnerResponse entities.Response
		err := tx.Where("question_id = ? AND user_id = ?", params.QuestionID, *params.PartnerID).
			First(&partnerResponse).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		return r.createLoveslice(tx, params, response, &partnerResponse, result)
	})
	if err != nil {
		if platformerrors.GetPlatformError(err) != nil {
			return nil, err
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to submit response",
			err,
			"pairing-submit-error",
		)
	}
	return result, nil
}

// createLoveslice writes the loveslice and journal entry for a completed
// pair. Runs inside the submission transaction.
func (r *Repository) createLoveslice(tx *gorm.DB, params domain.SubmitParams, own, partner *entities.Response, result *domain.SubmissionResult) error {
	user1, user2 := domain.NormalizePair(params.UserID, *params.PartnerID)
	response1, response2 := own, partner
	if response1.UserID != user1 {
		response1, response2 = response2, response1
	}

	slice := &entities.Loveslice{
		PublicID:          idgen.NewID("slice"),
		QuestionID:        params.QuestionID,
		QuestionPublicID:  params.QuestionPublicID,
		User1ID:           user1,
		User2ID:           user2,
		Response1PublicID: response1.PublicID,
		Response2PublicID: response2.PublicID,
		Type:              "written",
	}
	if err := tx.Create(slice).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Pair already exists; report it instead of failing the
			// submission.
			var existing entities.Loveslice
			if ferr := tx.Where("question_id = ? AND user1_id = ? AND user2_id = ?",
				params.QuestionID, user1, user2).First(&existing).Error; ferr != nil {
				return ferr
			}
			result.Loveslice = existing.EtoD()
			result.Paired = true
			return nil
		}
		return err
	}

	entry := entities.NewSchemaJournalEntry(&journal.Entry{
		PublicID:          idgen.NewID("jrnl"),
		Kind:              journal.EntryKindWritten,
		User1ID:           user1,
		User2ID:           user2,
		LoveslicePublicID: &slice.PublicID,
		Theme:             params.Theme,
		Excerpt:           params.Excerpt,
		SearchText:        params.Theme + " " + response1.Content + " " + response2.Content,
	})
	if err := tx.Create(entry).Error; err != nil {
		return err
	}

	result.Loveslice = slice.EtoD()
	result.JournalEntry = entry.EtoD()
	result.Paired = true
	return nil
}

// FindLovesliceByPublicID fetches a written loveslice by public ID.
func (r *Repository) FindLovesliceByPublicID(ctx context.Context, publicID string) (*domain.Loveslice, error) {
	var entity entities.Loveslice
	if err := r.db.WithContext(ctx).
		Where("public_id = ?", publicID).
		First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				fmt.Sprintf("loveslice not found: %s", publicID),
				nil,
				"loveslice-not-found",
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to fetch loveslice",
			err,
			"loveslice-fetch-error",
		)
	}
	return entity.EtoD(), nil
}

// MarkConversationStarted flags a loveslice once a conversation has been
// started from it.
func (r *Repository) MarkConversationStarted(ctx context.Context, publicID string) error {
	res := r.db.WithContext(ctx).
		Model(&entities.Loveslice{}).
		Where("public_id = ?", publicID).
		Update("has_conversation", true)
	if res.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to mark loveslice",
			res.Error,
			"loveslice-mark-error",
		)
	}
	if res.RowsAffected == 0 {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("loveslice not found: %s", publicID),
			nil,
			"loveslice-mark-not-found",
		)
	}
	return nil
}

// pairLockKey derives the advisory lock key for a (question, pair) scope.
func pairLockKey(questionID uint, a, b string) int64 {
	user1, user2 := domain.NormalizePair(a, b)
	h := fnv.New64a()
	fmt.Fprintf(h, "%d:%s:%s", questionID, user1, user2)
	return int64(h.Sum64())
}

package pairing

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"loveslices-server/internal/domain/question"
	"loveslices-server/internal/domain/user"
	"loveslices-server/internal/infrastructure/metrics"
	"loveslices-server/internal/infrastructure/observability"
	"loveslices-server/internal/utils/platformerrors"
)

const excerptMaxLen = 140

// Service is the pairing engine: it accepts a user's response to a question
// and pairs it with the partner's response when one exists.
type Service interface {
	SubmitResponse(ctx context.Context, userID, questionPublicID, content string) (*SubmissionResult, error)
	GetLoveslice(ctx context.Context, publicID string) (*Loveslice, error)
}

type service struct {
	repo      Repository
	questions question.Repository
	users     user.Repository
	log       zerolog.Logger
}

// NewService creates the pairing service.
func NewService(repo Repository, questions question.Repository, users user.Repository, log zerolog.Logger) Service {
	return &service{
		repo:      repo,
		questions: questions,
		users:     users,
		log:       log.With().Str("component", "pairing-service").Logger(),
	}
}

func (s *service) SubmitResponse(ctx context.Context, userID, questionPublicID, content string) (*SubmissionResult, error) {
	ctx, span := observability.StartPairingSpan(ctx, questionPublicID, userID)
	defer span.End()

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			"response content must not be empty",
			nil,
			"pairing-empty-content",
		)
	}

	q, err := s.questions.FindByPublicID(ctx, questionPublicID)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	partnerID, err := s.users.PartnerOf(ctx, userID)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	result, err := s.repo.SubmitResponse(ctx, SubmitParams{
		QuestionID:       q.ID,
		QuestionPublicID: q.PublicID,
		UserID:           userID,
		PartnerID:        partnerID,
		Content:          content,
		Theme:            q.Theme,
		Excerpt:          excerpt(content),
	})
	if err != nil {
		observability.RecordError(span, err)
		metrics.RecordPairing("error")
		return nil, err
	}

	if result.Paired {
		metrics.RecordPairing("paired")
		s.log.Info().
			Str("question_id", questionPublicID).
			Str("loveslice_id", result.Loveslice.PublicID).
			Msg("loveslice created")
	} else {
		metrics.RecordPairing("stored")
	}

	return result, nil
}

func (s *service) GetLoveslice(ctx context.Context, publicID string) (*Loveslice, error) {
	return s.repo.FindLovesliceByPublicID(ctx, publicID)
}

func excerpt(content string) string {
	if len(content) <= excerptMaxLen {
		return content
	}
	return content[:excerptMaxLen]
}

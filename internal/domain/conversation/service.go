package conversation

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"loveslices-server/internal/domain/journal"
	"loveslices-server/internal/domain/user"
	"loveslices-server/internal/infrastructure/metrics"
	"loveslices-server/internal/infrastructure/observability"
	"loveslices-server/internal/utils/idgen"
	"loveslices-server/internal/utils/platformerrors"
)

// StartParams describes what a new conversation is started from. At most one
// of LoveslicePublicID and QuestionPublicID is set.
type StartParams struct {
	LoveslicePublicID *string
	QuestionPublicID  *string
}

// EndParams carries the options a participant may attach when confirming or
// directly ending a conversation.
type EndParams struct {
	Outcome               *Outcome
	CreateSpokenLoveslice bool
	Theme                 string
}

// Service drives the conversation lifecycle. Every transition is atomic with
// respect to concurrent transitions on the same conversation; advisory push
// events go out only after the transition has committed.
type Service interface {
	Start(ctx context.Context, identity user.Identity, params StartParams) (*Conversation, error)
	Get(ctx context.Context, userID, publicID string) (*Conversation, error)
	ListActive(ctx context.Context, userID string) ([]*Conversation, error)
	PostMessage(ctx context.Context, userID, publicID, content string) (*Message, error)
	ListMessages(ctx context.Context, userID, publicID string) ([]Message, error)
	InitiateEnding(ctx context.Context, identity user.Identity, publicID string) (*Conversation, error)
	ConfirmEnding(ctx context.Context, identity user.Identity, publicID string, params EndParams) (*Conversation, error)
	CancelEnding(ctx context.Context, identity user.Identity, publicID string) (*Conversation, error)
	AddFinalNote(ctx context.Context, identity user.Identity, publicID, note string) (*Conversation, error)
	EndDirectly(ctx context.Context, identity user.Identity, publicID string, params EndParams) (*Conversation, error)
}

type service struct {
	repo      Repository
	users     user.Repository
	slices    LovesliceMarker
	publisher Publisher
	log       zerolog.Logger
	now       func() time.Time
}

// NewService creates the conversation service. publisher may be nil when no
// realtime channel is wired in.
func NewService(repo Repository, users user.Repository, slices LovesliceMarker, publisher Publisher, log zerolog.Logger) Service {
	return &service{
		repo:      repo,
		users:     users,
		slices:    slices,
		publisher: publisher,
		log:       log.With().Str("component", "conversation-service").Logger(),
		now:       time.Now,
	}
}

func (s *service) Start(ctx context.Context, identity user.Identity, params StartParams) (*Conversation, error) {
	ctx, span := observability.StartTransitionSpan(ctx, "start", "", identity.ID)
	defer span.End()

	source := SourceNone
	if params.LoveslicePublicID != nil {
		source = SourceLoveslice
	} else if params.QuestionPublicID != nil {
		source = SourceStarter
	}

	partnerID, err := s.users.PartnerOf(ctx, identity.ID)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	conv := &Conversation{
		PublicID:          idgen.NewID("conv"),
		Source:            source,
		LoveslicePublicID: params.LoveslicePublicID,
		QuestionPublicID:  params.QuestionPublicID,
		InitiatedByUserID: identity.ID,
		PartnerID:         partnerID,
		StartedAt:         s.now(),
		Outcome:           OutcomeNone,
	}
	if err := s.repo.Create(ctx, conv); err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	if params.LoveslicePublicID != nil {
		if err := s.slices.MarkConversationStarted(ctx, *params.LoveslicePublicID); err != nil {
			s.log.Warn().Err(err).
				Str("loveslice_id", *params.LoveslicePublicID).
				Msg("failed to mark loveslice conversation started")
		}
	}

	metrics.RecordTransition("start", "ok")
	s.log.Info().
		Str("conversation_id", conv.PublicID).
		Str("source", string(source)).
		Msg("conversation started")
	return conv, nil
}

func (s *service) Get(ctx context.Context, userID, publicID string) (*Conversation, error) {
	conv, err := s.repo.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if !conv.IsParticipant(userID) {
		return nil, s.notParticipant(ctx, publicID)
	}
	return conv, nil
}

func (s *service) ListActive(ctx context.Context, userID string) ([]*Conversation, error) {
	return s.repo.FindActiveByParticipant(ctx, userID)
}

func (s *service) PostMessage(ctx context.Context, userID, publicID, content string) (*Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			"message content must not be empty",
			nil,
			"conversation-empty-message",
		)
	}

	var msg *Message
	_, err := s.repo.Transition(ctx, publicID, func(tx Tx, conv *Conversation) error {
		if !conv.IsParticipant(userID) {
			return s.notParticipant(ctx, publicID)
		}
		if conv.Phase() == PhaseEnded {
			return platformerrors.NewError(
				ctx,
				platformerrors.LayerDomain,
				platformerrors.ErrorTypeConflict,
				"conversation has ended",
				nil,
				"conversation-message-ended",
			)
		}
		msg = &Message{
			PublicID:             idgen.NewID("msg"),
			ConversationID:       conv.ID,
			ConversationPublicID: conv.PublicID,
			UserID:               userID,
			Content:              content,
			CreatedAt:            s.now(),
		}
		return tx.CreateMessage(msg)
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *service) ListMessages(ctx context.Context, userID, publicID string) ([]Message, error) {
	if _, err := s.Get(ctx, userID, publicID); err != nil {
		return nil, err
	}
	return s.repo.ListMessages(ctx, publicID)
}

func (s *service) InitiateEnding(ctx context.Context, identity user.Identity, publicID string) (*Conversation, error) {
	ctx, span := observability.StartTransitionSpan(ctx, "initiate_ending", publicID, identity.ID)
	defer span.End()

	applied := false
	conv, err := s.repo.Transition(ctx, publicID, func(tx Tx, conv *Conversation) error {
		if !conv.IsParticipant(identity.ID) {
			return s.notParticipant(ctx, publicID)
		}
		switch conv.Phase() {
		case PhaseEnded:
			return s.alreadyEnded(ctx, publicID)
		case PhaseEndingInitiated:
			// Both partners racing to initiate is expected; the second
			// invocation is a no-op against the current state.
			return nil
		}
		now := s.now()
		initiator := identity.ID
		conv.EndInitiatedByUserID = &initiator
		conv.EndInitiatedAt = &now
		applied = true
		return nil
	})
	if err != nil {
		observability.RecordError(span, err)
		metrics.RecordTransition("initiate_ending", "error")
		return nil, err
	}

	if applied {
		observability.AddPhaseTransition(span, string(PhaseOpen), string(PhaseEndingInitiated))
		metrics.RecordTransition("initiate_ending", "ok")
		s.notifyPartner(conv, identity, PushEvent{
			Type:           EventInitiateEnding,
			ConversationID: conv.PublicID,
			UserName:       identity.Name,
		})
	}
	return conv, nil
}

func (s *service) ConfirmEnding(ctx context.Context, identity user.Identity, publicID string, params EndParams) (*Conversation, error) {
	ctx, span := observability.StartTransitionSpan(ctx, "confirm_ending", publicID, identity.ID)
	defer span.End()

	if params.Outcome != nil && !params.Outcome.Valid() {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			"unknown outcome",
			nil,
			"conversation-bad-outcome",
		)
	}

	conv, err := s.repo.Transition(ctx, publicID, func(tx Tx, conv *Conversation) error {
		if !conv.IsParticipant(identity.ID) {
			return s.notParticipant(ctx, publicID)
		}
		if conv.Phase() != PhaseEndingInitiated {
			return platformerrors.NewError(
				ctx,
				platformerrors.LayerDomain,
				platformerrors.ErrorTypeConflict,
				"no ending to confirm",
				nil,
				"conversation-confirm-phase",
			)
		}
		if *conv.EndInitiatedByUserID == identity.ID {
			return platformerrors.NewError(
				ctx,
				platformerrors.LayerDomain,
				platformerrors.ErrorTypeConflict,
				"the initiating partner cannot confirm their own ending request",
				nil,
				"conversation-self-confirm",
			)
		}

		now := s.now()
		confirmer := identity.ID
		duration := int(math.Round(now.Sub(conv.StartedAt).Seconds()))
		conv.EndConfirmedByUserID = &confirmer
		conv.EndConfirmedAt = &now
		conv.EndedAt = &now
		conv.DurationSeconds = &duration
		if params.Outcome != nil {
			conv.Outcome = *params.Outcome
		}

		if params.CreateSpokenLoveslice && !conv.CreatedSpokenLoveslice {
			if err := s.createSpokenLoveslice(tx, conv, params.Theme, now); err != nil {
				return err
			}
			conv.CreatedSpokenLoveslice = true
		}
		return nil
	})
	if err != nil {
		observability.RecordError(span, err)
		metrics.RecordTransition("confirm_ending", "error")
		return nil, err
	}

	observability.AddPhaseTransition(span, string(PhaseEndingInitiated), string(PhaseEnded))
	metrics.RecordTransition("confirm_ending", "ok")
	s.notifyPartner(conv, identity, PushEvent{
		Type:           EventConfirmEnding,
		ConversationID: conv.PublicID,
		UserName:       identity.Name,
	})
	return conv, nil
}

func (s *service) CancelEnding(ctx context.Context, identity user.Identity, publicID string) (*Conversation, error) {
	ctx, span := observability.StartTransitionSpan(ctx, "cancel_ending", publicID, identity.ID)
	defer span.End()

	conv, err := s.repo.Transition(ctx, publicID, func(tx Tx, conv *Conversation) error {
		if !conv.IsParticipant(identity.ID) {
			return s.notParticipant(ctx, publicID)
		}
		if conv.Phase() != PhaseEndingInitiated {
			return platformerrors.NewError(
				ctx,
				platformerrors.LayerDomain,
				platformerrors.ErrorTypeConflict,
				"no ending to cancel",
				nil,
				"conversation-cancel-phase",
			)
		}
		conv.EndInitiatedByUserID = nil
		conv.EndInitiatedAt = nil
		conv.EndConfirmedByUserID = nil
		conv.EndConfirmedAt = nil
		return nil
	})
	if err != nil {
		observability.RecordError(span, err)
		metrics.RecordTransition("cancel_ending", "error")
		return nil, err
	}

	observability.AddPhaseTransition(span, string(PhaseEndingInitiated), string(PhaseOpen))
	metrics.RecordTransition("cancel_ending", "ok")
	s.notifyPartner(conv, identity, PushEvent{
		Type:           EventCancelEnding,
		ConversationID: conv.PublicID,
		UserName:       identity.Name,
	})
	return conv, nil
}

func (s *service) AddFinalNote(ctx context.Context, identity user.Identity, publicID, note string) (*Conversation, error) {
	ctx, span := observability.StartTransitionSpan(ctx, "final_note", publicID, identity.ID)
	defer span.End()

	note = strings.TrimSpace(note)
	if note == "" {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			"final note must not be empty",
			nil,
			"conversation-empty-note",
		)
	}

	conv, err := s.repo.Transition(ctx, publicID, func(tx Tx, conv *Conversation) error {
		if !conv.IsParticipant(identity.ID) {
			return s.notParticipant(ctx, publicID)
		}
		if conv.Phase() == PhaseOpen {
			return platformerrors.NewError(
				ctx,
				platformerrors.LayerDomain,
				platformerrors.ErrorTypeConflict,
				"final notes can only be added once an ending has been initiated",
				nil,
				"conversation-note-phase",
			)
		}
		conv.FinalNote = &note
		return nil
	})
	if err != nil {
		observability.RecordError(span, err)
		metrics.RecordTransition("final_note", "error")
		return nil, err
	}

	metrics.RecordTransition("final_note", "ok")
	s.notifyPartner(conv, identity, PushEvent{
		Type:           EventFinalNoteAdded,
		ConversationID: conv.PublicID,
		UserName:       identity.Name,
		Note:           &note,
	})
	return conv, nil
}

func (s *service) EndDirectly(ctx context.Context, identity user.Identity, publicID string, params EndParams) (*Conversation, error) {
	ctx, span := observability.StartTransitionSpan(ctx, "end_direct", publicID, identity.ID)
	defer span.End()

	if params.Outcome != nil && !params.Outcome.Valid() {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			"unknown outcome",
			nil,
			"conversation-bad-outcome",
		)
	}

	conv, err := s.repo.Transition(ctx, publicID, func(tx Tx, conv *Conversation) error {
		if !conv.IsParticipant(identity.ID) {
			return s.notParticipant(ctx, publicID)
		}
		if !conv.Solo() {
			return platformerrors.NewError(
				ctx,
				platformerrors.LayerDomain,
				platformerrors.ErrorTypeConflict,
				"partnered conversations end through the two-party flow",
				nil,
				"conversation-direct-partnered",
			)
		}
		switch conv.Phase() {
		case PhaseEnded:
			return s.alreadyEnded(ctx, publicID)
		case PhaseEndingInitiated:
			return platformerrors.NewError(
				ctx,
				platformerrors.LayerDomain,
				platformerrors.ErrorTypeConflict,
				"an ending negotiation is already in progress",
				nil,
				"conversation-direct-negotiating",
			)
		}

		now := s.now()
		ender := identity.ID
		duration := int(math.Round(now.Sub(conv.StartedAt).Seconds()))
		conv.EndConfirmedByUserID = &ender
		conv.EndConfirmedAt = &now
		conv.EndedAt = &now
		conv.DurationSeconds = &duration
		if params.Outcome != nil {
			conv.Outcome = *params.Outcome
		}
		if params.CreateSpokenLoveslice && !conv.CreatedSpokenLoveslice {
			if err := s.createSpokenLoveslice(tx, conv, params.Theme, now); err != nil {
				return err
			}
			conv.CreatedSpokenLoveslice = true
		}
		return nil
	})
	if err != nil {
		observability.RecordError(span, err)
		metrics.RecordTransition("end_direct", "error")
		return nil, err
	}

	metrics.RecordTransition("end_direct", "ok")
	return conv, nil
}

// createSpokenLoveslice writes the spoken loveslice and its journal entry in
// the same transaction that ends the conversation.
func (s *service) createSpokenLoveslice(tx Tx, conv *Conversation, theme string, now time.Time) error {
	user2 := conv.InitiatedByUserID
	if conv.PartnerID != nil {
		user2 = *conv.PartnerID
	}
	duration := 0
	if conv.DurationSeconds != nil {
		duration = *conv.DurationSeconds
	}

	slice := &SpokenLoveslice{
		PublicID:             idgen.NewID("spoken"),
		ConversationPublicID: conv.PublicID,
		User1ID:              conv.InitiatedByUserID,
		User2ID:              user2,
		Outcome:              conv.Outcome,
		Theme:                theme,
		DurationSeconds:      duration,
		CreatedAt:            now,
	}
	if err := tx.CreateSpokenLoveslice(slice); err != nil {
		return err
	}

	excerpt := string(conv.Outcome)
	entry := &journal.Entry{
		PublicID:                idgen.NewID("jrnl"),
		Kind:                    journal.EntryKindSpoken,
		User1ID:                 slice.User1ID,
		User2ID:                 slice.User2ID,
		SpokenLoveslicePublicID: &slice.PublicID,
		Theme:                   theme,
		Excerpt:                 excerpt,
		SearchText:              theme + " " + excerpt,
		CreatedAt:               now,
	}
	return tx.CreateJournalEntry(entry)
}

// notifyPartner pushes an advisory event to the other participant. Delivery
// is best-effort; a missing publisher or absent partner is not an error.
func (s *service) notifyPartner(conv *Conversation, identity user.Identity, event PushEvent) {
	if s.publisher == nil {
		return
	}
	other := conv.OtherParticipant(identity.ID)
	if other == nil {
		return
	}
	s.publisher.Publish(*other, event)
	metrics.RecordChannelEvent(string(event.Type), "published")
}

func (s *service) notParticipant(ctx context.Context, publicID string) error {
	return platformerrors.NewError(
		ctx,
		platformerrors.LayerDomain,
		platformerrors.ErrorTypeForbidden,
		"user is not a participant in this conversation",
		nil,
		"conversation-not-participant",
	)
}

func (s *service) alreadyEnded(ctx context.Context, publicID string) error {
	return platformerrors.NewError(
		ctx,
		platformerrors.LayerDomain,
		platformerrors.ErrorTypeConflict,
		"conversation has already ended",
		nil,
		"conversation-already-ended",
	)
}

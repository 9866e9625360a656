package conversation

import (
	"context"
	"time"

	"loveslices-server/internal/domain/journal"
)

// Phase is the lifecycle phase of a conversation. It is derived from the
// negotiation fields rather than stored, so the row can never disagree with
// itself about where it is in the lifecycle.
type Phase string

const (
	PhaseOpen           Phase = "open"
	PhaseEndingInitiated Phase = "ending-initiated"
	PhaseEnded          Phase = "ended"
)

// Outcome tags how a conversation went when it ended.
type Outcome string

const (
	OutcomeConnected       Outcome = "connected"
	OutcomeTriedAndListened Outcome = "tried-and-listened"
	OutcomeHardButHonest   Outcome = "hard-but-honest"
	OutcomeNone            Outcome = "no-outcome"
)

// Valid checks if the outcome is one of the known tags.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeConnected, OutcomeTriedAndListened, OutcomeHardButHonest, OutcomeNone:
		return true
	}
	return false
}

// Source records what a conversation was started from.
type Source string

const (
	SourceStarter   Source = "starter"
	SourceLoveslice Source = "loveslice"
	SourceNone      Source = "none"
)

// Conversation is a message exchange between two partners with a negotiated
// two-party ending. PartnerID is nil for solo conversations, which may end
// directly without negotiation.
type Conversation struct {
	ID                uint
	PublicID          string
	Source            Source
	LoveslicePublicID *string
	QuestionPublicID  *string
	InitiatedByUserID string
	PartnerID         *string
	StartedAt         time.Time
	EndedAt           *time.Time
	DurationSeconds   *int
	Outcome           Outcome
	CreatedSpokenLoveslice bool
	FinalNote         *string

	// Ending negotiation. EndedAt is non-nil iff EndConfirmedByUserID and
	// EndConfirmedAt are non-nil.
	EndInitiatedByUserID *string
	EndInitiatedAt       *time.Time
	EndConfirmedByUserID *string
	EndConfirmedAt       *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Phase derives the lifecycle phase from the negotiation fields.
func (c *Conversation) Phase() Phase {
	if c.EndedAt != nil {
		return PhaseEnded
	}
	if c.EndInitiatedAt != nil {
		return PhaseEndingInitiated
	}
	return PhaseOpen
}

// IsParticipant reports whether the user is one of the conversation's two
// participants.
func (c *Conversation) IsParticipant(userID string) bool {
	if c.InitiatedByUserID == userID {
		return true
	}
	return c.PartnerID != nil && *c.PartnerID == userID
}

// OtherParticipant returns the participant other than userID, or nil for a
// solo conversation.
func (c *Conversation) OtherParticipant(userID string) *string {
	if c.InitiatedByUserID == userID {
		return c.PartnerID
	}
	initiator := c.InitiatedByUserID
	return &initiator
}

// Solo reports whether the conversation has no second participant.
func (c *Conversation) Solo() bool {
	return c.PartnerID == nil
}

// Message is one chat turn. Messages are append-only.
type Message struct {
	ID                   uint
	PublicID             string
	ConversationID       uint
	ConversationPublicID string
	UserID               string
	Content              string
	CreatedAt            time.Time
}

// SpokenLoveslice is the paired artifact produced when a conversation ends
// with the create-spoken-loveslice option. At most one exists per
// conversation.
type SpokenLoveslice struct {
	ID                   uint
	PublicID             string
	ConversationPublicID string
	User1ID              string
	User2ID              string
	Outcome              Outcome
	Theme                string
	DurationSeconds      int
	CreatedAt            time.Time
}

// EventType tags a realtime push event.
type EventType string

const (
	EventInitiateEnding EventType = "initiate_ending"
	EventConfirmEnding  EventType = "confirm_ending"
	EventCancelEnding   EventType = "cancel_ending"
	EventFinalNoteAdded EventType = "final_note_added"
)

// PushEvent is the advisory payload pushed to a partner's open channel after
// a transition commits. It is never a source of truth; clients refetch the
// conversation record on receipt.
type PushEvent struct {
	Type           EventType `json:"type"`
	ConversationID string    `json:"conversation_id"`
	UserName       string    `json:"user_name"`
	Note           *string   `json:"note,omitempty"`
}

// Publisher delivers push events best-effort. Implementations must not block
// and must swallow delivery failures; the transition has already committed by
// the time Publish is called.
type Publisher interface {
	Publish(toUserID string, event PushEvent)
}

// Tx exposes the writes a transition may perform inside the same transaction
// that persists the conversation row.
type Tx interface {
	CreateMessage(msg *Message) error
	CreateSpokenLoveslice(slice *SpokenLoveslice) error
	CreateJournalEntry(entry *journal.Entry) error
}

// TransitionFunc checks a transition's precondition and applies its mutation
// against a conversation locked for update. Returning an error rolls the
// transaction back.
type TransitionFunc func(tx Tx, conv *Conversation) error

// Repository persists conversations. Transition is the atomic
// check-and-transition primitive: it locks the conversation row, runs fn, and
// persists the result in one transaction, so concurrent transitions on the
// same conversation are linearizable.
type Repository interface {
	Create(ctx context.Context, conv *Conversation) error
	FindByPublicID(ctx context.Context, publicID string) (*Conversation, error)
	Transition(ctx context.Context, publicID string, fn TransitionFunc) (*Conversation, error)
	ListMessages(ctx context.Context, conversationPublicID string) ([]Message, error)
	FindActiveByParticipant(ctx context.Context, userID string) ([]*Conversation, error)
}

// LovesliceMarker flags a written loveslice once a follow-up conversation has
// been started from it.
type LovesliceMarker interface {
	MarkConversationStarted(ctx context.Context, publicID string) error
}

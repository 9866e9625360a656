package pairing

import (
	"context"
	"time"

	"loveslices-server/internal/domain/journal"
)

// Response is one partner's answer to a question. A user may answer a given
// question at most once.
type Response struct {
	ID               uint
	PublicID         string
	QuestionID       uint
	QuestionPublicID string
	UserID           string
	Content          string
	CreatedAt        time.Time
}

// Loveslice is the paired artifact produced when both partners have answered
// the same question. For a given (question, user-pair) at most one loveslice
// ever exists; it is created exactly when the second partner's response is
// persisted.
type Loveslice struct {
	ID                uint
	PublicID          string
	QuestionID        uint
	QuestionPublicID  string
	User1ID           string
	User2ID           string
	Response1PublicID string
	Response2PublicID string
	PrivateNote       *string
	Type              string
	HasConversation   bool
	CreatedAt         time.Time
}

// SubmissionResult reports what a response submission produced. Loveslice and
// JournalEntry are nil unless the submission completed a pair.
type SubmissionResult struct {
	Response     *Response
	Loveslice    *Loveslice
	JournalEntry *journal.Entry
	Paired       bool
}

// SubmitParams carries a validated submission into the repository. PartnerID
// is nil when the submitting user has no linked partner; no pairing is
// attempted in that case.
type SubmitParams struct {
	QuestionID       uint
	QuestionPublicID string
	UserID           string
	PartnerID        *string
	Content          string
	Theme            string
	Excerpt          string
}

// Repository persists responses and loveslices. SubmitResponse is the atomic
// check-and-insert primitive: the partner-response check and the loveslice
// insert happen in one transaction, serialized per (question, user-pair), so
// concurrent submissions from both partners produce exactly one loveslice.
type Repository interface {
	SubmitResponse(ctx context.Context, params SubmitParams) (*SubmissionResult, error)
	FindLovesliceByPublicID(ctx context.Context, publicID string) (*Loveslice, error)
	MarkConversationStarted(ctx context.Context, publicID string) error
}

// NormalizePair orders two user IDs so a pair is stored the same way no
// matter which partner submitted last.
func NormalizePair(a, b string) (string, string) {
	if a <= b {
		return a, b
	}
	return b, a
}

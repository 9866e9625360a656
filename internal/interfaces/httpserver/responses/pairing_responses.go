package responses

import (
	"time"

	"loveslices-server/internal/domain/pairing"
)

// ResponsePayload is one partner's stored answer.
type ResponsePayload struct {
	ID         string    `json:"id"`
	QuestionID string    `json:"question_id"`
	UserID     string    `json:"user_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// LoveslicePayload is the paired artifact.
type LoveslicePayload struct {
	ID              string    `json:"id"`
	QuestionID      string    `json:"question_id"`
	User1ID         string    `json:"user1_id"`
	User2ID         string    `json:"user2_id"`
	Response1ID     string    `json:"response1_id"`
	Response2ID     string    `json:"response2_id"`
	PrivateNote     *string   `json:"private_note,omitempty"`
	Type            string    `json:"type"`
	HasConversation bool      `json:"has_conversation"`
	CreatedAt       time.Time `json:"created_at"`
}

// SubmissionPayload reports what a response submission produced.
type SubmissionPayload struct {
	Paired    bool              `json:"paired"`
	Response  ResponsePayload   `json:"response"`
	Loveslice *LoveslicePayload `json:"loveslice,omitempty"`
}

// FromResponse maps the domain response to its payload.
func FromResponse(r *pairing.Response) ResponsePayload {
	return ResponsePayload{
		ID:         r.PublicID,
		QuestionID: r.QuestionPublicID,
		UserID:     r.UserID,
		Content:    r.Content,
		CreatedAt:  r.CreatedAt,
	}
}

// FromLoveslice maps the domain loveslice to its payload.
func FromLoveslice(l *pairing.Loveslice) *LoveslicePayload {
	if l == nil {
		return nil
	}
	return &LoveslicePayload{
		ID:              l.PublicID,
		QuestionID:      l.QuestionPublicID,
		User1ID:         l.User1ID,
		User2ID:         l.User2ID,
		Response1ID:     l.Response1PublicID,
		Response2ID:     l.Response2PublicID,
		PrivateNote:     l.PrivateNote,
		Type:            l.Type,
		HasConversation: l.HasConversation,
		CreatedAt:       l.CreatedAt,
	}
}

// FromSubmission maps a submission result to its payload.
func FromSubmission(result *pairing.SubmissionResult) SubmissionPayload {
	return SubmissionPayload{
		Paired:    result.Paired,
		Response:  FromResponse(result.Response),
		Loveslice: FromLoveslice(result.Loveslice),
	}
}

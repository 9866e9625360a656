package handlers

import (
	"github.com/rs/zerolog"

	"loveslices-server/internal/domain/conversation"
	"loveslices-server/internal/domain/journal"
	"loveslices-server/internal/domain/pairing"
	"loveslices-server/internal/domain/question"
)

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	Conversation *ConversationHandler
	Pairing      *PairingHandler
	Journal      *JournalHandler
	Question     *QuestionHandler
}

// NewProvider constructs the handler provider with domain services.
func NewProvider(
	conversationService conversation.Service,
	pairingService pairing.Service,
	journalService journal.Service,
	questionRepo question.Repository,
	log zerolog.Logger,
) *Provider {
	return &Provider{
		Conversation: NewConversationHandler(conversationService, log),
		Pairing:      NewPairingHandler(pairingService, log),
		Journal:      NewJournalHandler(journalService, log),
		Question:     NewQuestionHandler(questionRepo, log),
	}
}

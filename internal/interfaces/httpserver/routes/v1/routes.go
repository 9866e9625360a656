package v1

import (
	"github.com/gin-gonic/gin"

	"loveslices-server/internal/interfaces/httpserver/handlers"
	"loveslices-server/internal/realtime"
)

// Routes encapsulates versioned route registration.
type Routes struct {
	handlers *handlers.Provider
	channel  *realtime.Handler
}

// NewRoutes builds the v1 route registrar.
func NewRoutes(handlerProvider *handlers.Provider, channelHandler *realtime.Handler) *Routes {
	return &Routes{
		handlers: handlerProvider,
		channel:  channelHandler,
	}
}

// Register attaches all v1 routes under /v1 prefix.
func (r *Routes) Register(engine *gin.Engine) {
	group := engine.Group("/v1")
	registerConversationRoutes(group, r.handlers.Conversation)
	registerPairingRoutes(group, r.handlers.Pairing)
	registerJournalRoutes(group, r.handlers.Journal)
	registerQuestionRoutes(group, r.handlers.Question)

	if r.channel != nil {
		group.GET("/channel", r.channel.ServeChannel)
	}
}

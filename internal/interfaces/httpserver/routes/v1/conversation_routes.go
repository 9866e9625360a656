package v1

import (
	"github.com/gin-gonic/gin"

	"loveslices-server/internal/interfaces/httpserver/handlers"
)

func registerConversationRoutes(router gin.IRoutes, handler *handlers.ConversationHandler) {
	router.POST("/conversations", handler.Create)
	router.GET("/conversations", handler.ListActive)
	router.GET("/conversations/:conversation_id", handler.Get)
	router.GET("/conversations/:conversation_id/messages", handler.ListMessages)
	router.POST("/conversations/:conversation_id/messages", handler.PostMessage)
	router.POST("/conversations/:conversation_id/end/initiate", handler.InitiateEnding)
	router.POST("/conversations/:conversation_id/end/confirm", handler.ConfirmEnding)
	router.POST("/conversations/:conversation_id/end/cancel", handler.CancelEnding)
	router.POST("/conversations/:conversation_id/end/direct", handler.EndDirect)
	router.POST("/conversations/:conversation_id/final-note", handler.AddFinalNote)
}

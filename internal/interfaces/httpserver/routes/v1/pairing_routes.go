package v1

import (
	"github.com/gin-gonic/gin"

	"loveslices-server/internal/interfaces/httpserver/handlers"
)

func registerPairingRoutes(router gin.IRoutes, handler *handlers.PairingHandler) {
	router.POST("/responses", handler.Submit)
	router.GET("/loveslices/:loveslice_id", handler.GetLoveslice)
}

func registerQuestionRoutes(router gin.IRoutes, handler *handlers.QuestionHandler) {
	router.GET("/questions/:question_id", handler.Get)
}

func registerJournalRoutes(router gin.IRoutes, handler *handlers.JournalHandler) {
	router.GET("/journal", handler.List)
}

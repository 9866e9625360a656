package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"loveslices-server/internal/domain/question"
	"loveslices-server/internal/interfaces/httpserver/responses"
)

// QuestionHandler serves question reads.
type QuestionHandler struct {
	repo question.Repository
	log  zerolog.Logger
}

// NewQuestionHandler builds the question handler.
func NewQuestionHandler(repo question.Repository, log zerolog.Logger) *QuestionHandler {
	return &QuestionHandler{
		repo: repo,
		log:  log.With().Str("component", "question-handler").Logger(),
	}
}

type questionPayload struct {
	ID            string    `json:"id"`
	Content       string    `json:"content"`
	Theme         string    `json:"theme"`
	UserGenerated bool      `json:"user_generated"`
	CreatedAt     time.Time `json:"created_at"`
}

// Get handles GET /v1/questions/:question_id.
func (h *QuestionHandler) Get(c *gin.Context) {
	if _, ok := currentIdentity(c); !ok {
		return
	}

	q, err := h.repo.FindByPublicID(c.Request.Context(), c.Param("question_id"))
	if err != nil {
		responses.HandleError(c, err, "failed to fetch question")
		return
	}
	c.JSON(http.StatusOK, questionPayload{
		ID:            q.PublicID,
		Content:       q.Content,
		Theme:         q.Theme,
		UserGenerated: q.UserGenerated,
		CreatedAt:     q.CreatedAt,
	})
}

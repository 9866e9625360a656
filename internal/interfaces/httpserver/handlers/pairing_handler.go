package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"loveslices-server/internal/domain/pairing"
	"loveslices-server/internal/interfaces/httpserver/responses"
	"loveslices-server/internal/utils/platformerrors"
)

// PairingHandler serves response submission and loveslice reads.
type PairingHandler struct {
	service pairing.Service
	log     zerolog.Logger
}

// NewPairingHandler builds the pairing handler.
func NewPairingHandler(service pairing.Service, log zerolog.Logger) *PairingHandler {
	return &PairingHandler{
		service: service,
		log:     log.With().Str("component", "pairing-handler").Logger(),
	}
}

type submitResponseRequest struct {
	QuestionID string `json:"question_id"`
	Content    string `json:"content"`
}

// Submit handles POST /v1/responses.
func (h *PairingHandler) Submit(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	var req submitResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"invalid request body", "pairing-submit-bind")
		return
	}
	if req.QuestionID == "" {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"question_id is required", "pairing-submit-question")
		return
	}

	result, err := h.service.SubmitResponse(c.Request.Context(), identity.ID, req.QuestionID, req.Content)
	if err != nil {
		responses.HandleError(c, err, "failed to submit response")
		return
	}
	c.JSON(http.StatusCreated, responses.FromSubmission(result))
}

// GetLoveslice handles GET /v1/loveslices/:loveslice_id.
func (h *PairingHandler) GetLoveslice(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	slice, err := h.service.GetLoveslice(c.Request.Context(), c.Param("loveslice_id"))
	if err != nil {
		responses.HandleError(c, err, "failed to fetch loveslice")
		return
	}
	if slice.User1ID != identity.ID && slice.User2ID != identity.ID {
		responses.HandleNewError(c, platformerrors.ErrorTypeForbidden,
			"loveslice belongs to another pair", "loveslice-forbidden")
		return
	}
	c.JSON(http.StatusOK, responses.FromLoveslice(slice))
}

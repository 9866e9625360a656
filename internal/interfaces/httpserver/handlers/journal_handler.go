package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"loveslices-server/internal/domain/journal"
	"loveslices-server/internal/interfaces/httpserver/responses"
	"loveslices-server/internal/utils/platformerrors"
)

// JournalHandler serves journal listing and search.
type JournalHandler struct {
	service journal.Service
	log     zerolog.Logger
}

// NewJournalHandler builds the journal handler.
func NewJournalHandler(service journal.Service, log zerolog.Logger) *JournalHandler {
	return &JournalHandler{
		service: service,
		log:     log.With().Str("component", "journal-handler").Logger(),
	}
}

// List handles GET /v1/journal.
func (h *JournalHandler) List(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	filter := journal.Filter{
		UserID: identity.ID,
		Query:  c.Query("q"),
	}
	if kind := c.Query("kind"); kind != "" {
		k := journal.EntryKind(kind)
		if k != journal.EntryKindWritten && k != journal.EntryKindSpoken {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
				"kind must be written or spoken", "journal-bad-kind")
			return
		}
		filter.Kind = &k
	}
	if limit := c.Query("limit"); limit != "" {
		filter.Limit, _ = strconv.Atoi(limit)
	}
	if offset := c.Query("offset"); offset != "" {
		filter.Offset, _ = strconv.Atoi(offset)
	}

	entries, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		responses.HandleError(c, err, "failed to list journal entries")
		return
	}
	c.JSON(http.StatusOK, responses.FromJournalEntries(entries, total))
}

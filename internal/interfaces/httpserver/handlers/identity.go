package handlers

import (
	"github.com/gin-gonic/gin"

	"loveslices-server/internal/domain/user"
	"loveslices-server/internal/infrastructure/auth"
	"loveslices-server/internal/interfaces/httpserver/responses"
	"loveslices-server/internal/utils/platformerrors"
)

// currentIdentity pulls the authenticated caller off the gin context. It
// writes the error response itself when the identity is missing.
func currentIdentity(c *gin.Context) (user.Identity, bool) {
	identity, ok := auth.CurrentIdentity(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized,
			"missing caller identity", "handler-no-identity")
		return user.Identity{}, false
	}
	return user.Identity{ID: identity.ID, Name: identity.Name}, true
}

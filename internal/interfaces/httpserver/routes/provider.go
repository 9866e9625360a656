package routes

import (
	"github.com/gin-gonic/gin"

	"loveslices-server/internal/interfaces/httpserver/handlers"
	v1 "loveslices-server/internal/interfaces/httpserver/routes/v1"
	"loveslices-server/internal/realtime"
)

// Provider coordinates all route registrations.
type Provider struct {
	V1 *v1.Routes
}

// NewProvider constructs the route provider.
func NewProvider(handlerProvider *handlers.Provider, channelHandler *realtime.Handler) *Provider {
	return &Provider{
		V1: v1.NewRoutes(handlerProvider, channelHandler),
	}
}

// Register attaches all available routes to the gin engine.
func (p *Provider) Register(engine *gin.Engine) {
	p.V1.Register(engine)
}

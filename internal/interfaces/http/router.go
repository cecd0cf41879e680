// Package http exposes the bot's small operational HTTP surface.
package http

import (
	"github.com/gin-gonic/gin"

	"tessera/internal/interfaces/http/handlers"
	"tessera/internal/interfaces/http/middleware"
	"tessera/internal/shared/logger"
)

// Router configures the gin engine. The bot only serves liveness and version
// endpoints; all real work happens over Telegram polling.
type Router struct {
	engine        *gin.Engine
	healthHandler *handlers.HealthHandler
}

// NewRouter creates the router. mode is one of gin's modes (release/debug/test).
func NewRouter(log logger.Interface, mode string) *Router {
	if mode != "" {
		gin.SetMode(mode)
	}

	engine := gin.New()
	engine.Use(middleware.Logger(log))
	engine.Use(middleware.Recovery(log))

	r := &Router{
		engine:        engine,
		healthHandler: handlers.NewHealthHandler(),
	}
	r.setupRoutes()
	return r
}

func (r *Router) setupRoutes() {
	r.engine.GET("/", r.healthHandler.Health)
	r.engine.GET("/health", r.healthHandler.Health)
	r.engine.GET("/version", r.healthHandler.Version)
}

// Engine exposes the underlying gin engine for the HTTP server.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

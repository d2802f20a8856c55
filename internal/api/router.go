package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prasenjit/go-mocksync/internal/events"
	"github.com/prasenjit/go-mocksync/internal/lifecycle"
	"github.com/prasenjit/go-mocksync/internal/stats"
	"github.com/prasenjit/go-mocksync/internal/storage"
)

// Router handles HTTP routing
type Router struct {
	engine        *gin.Engine
	eventsService *events.Service
	logger        *slog.Logger
	handler       *Handler
}

// NewRouter creates a new router
func NewRouter(store storage.Storage, manager *lifecycle.Manager, statsCollector *stats.Collector, eventsService *events.Service, logger *slog.Logger) *Router {
	gin.SetMode(gin.ReleaseMode)

	r := &Router{
		engine:        gin.New(),
		eventsService: eventsService,
		logger:        logger,
	}

	r.handler = NewHandler(store, manager, statsCollector, eventsService, logger)

	r.engine.Use(gin.Recovery())
	r.engine.Use(corsMiddleware())
	r.engine.Use(requestLogger(logger))

	r.setupRoutes()

	return r
}

// setupRoutes configures all routes
func (r *Router) setupRoutes() {
	api := r.engine.Group("/_api")
	{
		// Files
		api.GET("/files", r.handler.ListFiles)
		api.POST("/files", r.handler.CreateFile)
		api.GET("/files/:id", r.handler.GetFile)
		api.PUT("/files/:id", r.handler.SaveFile)
		api.DELETE("/files/:id", r.handler.DeleteFile)

		// Sessions
		api.POST("/files/:id/open", r.handler.OpenFile)
		api.POST("/files/:id/close", r.handler.CloseFile)

		// Mocks
		api.GET("/files/:id/mock", r.handler.GetMock)
		api.POST("/files/:id/mock", r.handler.EnableMock)
		api.DELETE("/files/:id/mock", r.handler.DisableMock)

		// Statistics
		api.GET("/stats", r.handler.GetStats)
		api.POST("/stats/reset", r.handler.ResetStats)

		// Events
		api.GET("/events", r.handler.ListEvents)
		api.DELETE("/events", r.handler.ClearEvents)

		// Health
		api.GET("/health", r.handler.HealthCheck)
	}

	// WebSocket for live events
	wsHandler := events.NewWebSocketHandler(r.eventsService, r.logger)
	r.engine.GET("/_api/events/stream", gin.WrapH(wsHandler))
}

// Handler returns the http.Handler
func (r *Router) Handler() http.Handler {
	return r.engine
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requestLogger logs one line per request
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"clientIP", c.ClientIP(),
		)
	}
}

package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/recall"
	"github.com/soundprediction/recall/pkg/config"
	"github.com/soundprediction/recall/pkg/server/handlers"
	"github.com/soundprediction/recall/pkg/types"
)

// Server represents the HTTP server
type Server struct {
	config *config.Config
	router *gin.Engine
	recall recall.Recall
	server *http.Server
}

// New creates a new server instance
func New(cfg *config.Config, recallClient recall.Recall) *Server {
	return &Server{
		config: cfg,
		recall: recallClient,
	}
}

// Setup sets up the server routes and middleware
func (s *Server) Setup() {
	// Set gin mode
	gin.SetMode(s.config.Server.Mode)

	// Create router
	s.router = gin.New()

	// Add middleware
	s.router.Use(gin.Logger())
	s.router.Use(gin.Recovery())
	s.router.Use(corsMiddleware())
	s.router.Use(contextMiddleware())

	// Setup routes
	s.setupRoutes()

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
}

// setupRoutes sets up all the routes
func (s *Server) setupRoutes() {
	// Create handlers
	healthHandler := handlers.NewHealthHandler(s.recall)
	searchHandler := handlers.NewSearchHandler(s.recall)
	memoryHandler := handlers.NewMemoryHandler(s.recall)

	// Health endpoints
	s.router.GET("/health", healthHandler.HealthCheck)
	s.router.GET("/ready", healthHandler.ReadinessCheck)
	s.router.GET("/live", healthHandler.LivenessCheck) // Kubernetes liveness probe
	s.router.GET("/health/detailed", healthHandler.DetailedHealthCheck)

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	{
		// Retrieval routes
		v1.POST("/search", searchHandler.Search)
		v1.POST("/traverse", searchHandler.Traverse)

		// Memory routes
		memories := v1.Group("/memories")
		{
			memories.POST("", memoryHandler.CreateMemory)
			memories.GET("/:id", memoryHandler.GetMemory)
			memories.PUT("/:id", memoryHandler.UpdateMemory)
			memories.DELETE("/:id", memoryHandler.DeleteMemory)
		}

		// Relation routes
		relations := v1.Group("/relations")
		{
			relations.POST("", memoryHandler.CreateRelation)
			relations.DELETE("", memoryHandler.DeleteRelation)
		}
	}
}

// Start starts the server
func (s *Server) Start() error {
	fmt.Printf("Starting server on %s\n", s.server.Addr)
	return s.server.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	fmt.Println("Stopping server...")
	return s.server.Shutdown(ctx)
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// contextMiddleware extracts context information from headers
func contextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		requestID := c.GetHeader("X-Request-ID")
		if requestID != "" {
			ctx = context.WithValue(ctx, types.ContextKeyRequestID, requestID)
		}

		clientID := c.GetHeader("X-Client-ID")
		if clientID != "" {
			ctx = context.WithValue(ctx, types.ContextKeyClientID, clientID)
		}

		ctx = context.WithValue(ctx, types.ContextKeyRequestSource, "server")

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

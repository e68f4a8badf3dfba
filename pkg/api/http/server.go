package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/aescanero/lienzo/internal/application/codec"
	"github.com/aescanero/lienzo/internal/application/executor"
	"github.com/aescanero/lienzo/internal/application/graph"
	"github.com/aescanero/lienzo/internal/application/history"
	"github.com/aescanero/lienzo/internal/ports"
)

// Server represents the HTTP API server.
type Server struct {
	router    *gin.Engine
	server    *http.Server
	store     *graph.Store
	history   *history.Manager
	executor  *executor.Orchestrator
	codec     *codec.Codec
	workflows ports.WorkflowStore
	metrics   ports.MetricsCollector
	logger    *zap.Logger
}

// Config holds HTTP server configuration.
type Config struct {
	Port      int
	Store     *graph.Store
	History   *history.Manager
	Executor  *executor.Orchestrator
	Codec     *codec.Codec
	Workflows ports.WorkflowStore
	Metrics   ports.MetricsCollector
	Logger    *zap.Logger
}

// NewServer creates a new HTTP server.
func NewServer(cfg *Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(cfg.Logger))
	router.Use(corsMiddleware())

	s := &Server{
		router:    router,
		store:     cfg.Store,
		history:   cfg.History,
		executor:  cfg.Executor,
		codec:     cfg.Codec,
		workflows: cfg.Workflows,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	return s
}

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", s.handleHealth)

	// Metrics
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		// Structural operations on the live graph
		v1.POST("/workflow/nodes", s.handleAddNode)
		v1.PATCH("/workflow/nodes/:id", s.handleUpdateNodeData)
		v1.DELETE("/workflow/nodes/:id", s.handleDeleteNode)
		v1.POST("/workflow/nodes/:id/duplicate", s.handleDuplicateNode)
		v1.POST("/workflow/edges", s.handleConnect)
		v1.DELETE("/workflow/edges/:id", s.handleDisconnect)
		v1.POST("/workflow/changes", s.handleBulkChanges)

		// History
		v1.POST("/workflow/undo", s.handleUndo)
		v1.POST("/workflow/redo", s.handleRedo)

		// Execution
		v1.POST("/workflow/nodes/:id/run", s.handleRunNode)

		// Document export / import
		v1.GET("/workflow", s.handleExport)
		v1.PUT("/workflow", s.handleImport)

		// Named workflow persistence
		v1.GET("/workflows", s.handleListWorkflows)
		v1.POST("/workflows/:name", s.handleSaveWorkflow)
		v1.GET("/workflows/:name", s.handleLoadWorkflow)
		v1.DELETE("/workflows/:name", s.handleDeleteWorkflow)
	}
}

// SetupWebSocket adds the WebSocket handler to the server.
func (s *Server) SetupWebSocket(handler interface {
	HandleRunStream(*gin.Context)
}) {
	s.router.GET("/api/v1/runs/ws", handler.HandleRunStream)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info("HTTP server shut down complete")
	return nil
}

// requestLogger is a middleware for request logging.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		duration := time.Since(start)

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", duration),
			zap.String("client_ip", c.ClientIP()))
	}
}

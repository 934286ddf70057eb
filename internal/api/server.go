// Package api exposes the engine over HTTP: the conversational-turn scan,
// the manual self-report control, the professional and patient summary
// reads and the websocket crisis alert stream.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/risk-signal-engine/internal/aggregator"
	"github.com/risk-signal-engine/internal/alerts"
	"github.com/risk-signal-engine/internal/domain"
	"github.com/risk-signal-engine/internal/escalation"
)

// Server represents the HTTP server
type Server struct {
	cfg         *domain.Config
	router      *gin.Engine
	server      *http.Server
	coordinator *escalation.Coordinator
	aggregator  *aggregator.Aggregator
	hub         *alerts.Hub
	log         *logrus.Logger
}

// NewServer creates a new HTTP server instance
func NewServer(cfg *domain.Config, coord *escalation.Coordinator, agg *aggregator.Aggregator, hub *alerts.Hub, logger *logrus.Logger) *Server {
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(corsMiddleware())
	router.Use(rateLimitMiddleware(cfg.RateLimit, logger))

	s := &Server{
		cfg:         cfg,
		router:      router,
		coordinator: coord,
		aggregator:  agg,
		hub:         hub,
		log:         logger,
	}

	s.setupRoutes()

	return s
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/messages", s.handleMessage)
		v1.POST("/self-reports", s.handleSelfReport)
		v1.GET("/subjects/:id/summary", s.handleSummary)
		v1.GET("/subjects/:id/overview", s.handleOverview)
		v1.GET("/alerts/stream", s.handleAlertStream)
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.cfg.Server
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

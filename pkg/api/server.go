// Package api exposes the payoff engine over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rzzdr/payoff-engine/internal/websocket"
	"github.com/rzzdr/payoff-engine/pkg/metrics"
	"github.com/rzzdr/payoff-engine/pkg/utils/logger"
)

// Config holds the configuration for the API server.
type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Environment  string
}

// Server is the HTTP server for the payoff engine.
type Server struct {
	config     Config
	router     *gin.Engine
	httpServer *http.Server
	handlers   *Handlers
	hub        *websocket.Hub
	recorder   *metrics.Recorder
	log        *logger.Logger
}

// NewServer creates a new API server.
func NewServer(config Config, handlers *Handlers, hub *websocket.Hub, recorder *metrics.Recorder) *Server {
	if config.ReadTimeout <= 0 {
		config.ReadTimeout = 10 * time.Second
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 10 * time.Second
	}

	if config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	server := &Server{
		config:   config,
		router:   gin.New(),
		handlers: handlers,
		hub:      hub,
		recorder: recorder,
		log:      logger.GetLogger("api.server"),
	}

	server.setupRoutes()

	return server
}

// setupRoutes configures the API routes.
func (s *Server) setupRoutes() {
	s.router.Use(LoggingMiddleware())
	s.router.Use(RecoveryMiddleware())
	s.router.Use(CORSMiddleware())
	if s.recorder != nil {
		s.router.Use(MetricsMiddleware(s.recorder))
	}

	s.router.GET("/health", s.handlers.HealthCheckHandler)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if s.hub != nil {
		s.router.GET("/ws", gin.WrapF(s.hub.HandleWebSocket))
	}

	v1 := s.router.Group("/api/v1")

	payoff := v1.Group("/payoff")
	payoff.POST("/curves", s.handlers.ComputeCurvesHandler)
	payoff.POST("/decay", s.handlers.ComputeDecayHandler)
	payoff.POST("/summary", s.handlers.ComputeSummaryHandler)

	strategies := v1.Group("/strategies")
	strategies.GET("", s.handlers.ListStrategiesHandler)
	strategies.POST("", s.handlers.CreateStrategyHandler)
	strategies.GET("/:id", s.handlers.GetStrategyHandler)
	strategies.PUT("/:id", s.handlers.UpdateStrategyHandler)
	strategies.DELETE("/:id", s.handlers.DeleteStrategyHandler)
	strategies.POST("/:id/evaluate", s.handlers.EvaluateStrategyHandler)
}

// Router returns the underlying gin engine, used by tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the API server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.log.Infof("Starting API server on %s", addr)

	return s.httpServer.ListenAndServe()
}

// Stop stops the API server gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer != nil {
		s.log.Info("Stopping API server")
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

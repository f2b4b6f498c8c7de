// Package server exposes the orchestrator, chat service and broadcast hub
// over HTTP and WebSocket using gin.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/lhyssy/AI-Agent-code-web/internal/broadcast"
	"github.com/lhyssy/AI-Agent-code-web/internal/chat"
	"github.com/lhyssy/AI-Agent-code-web/internal/config"
	"github.com/lhyssy/AI-Agent-code-web/internal/logging"
	"github.com/lhyssy/AI-Agent-code-web/internal/orchestrator"
)

// Server wires the HTTP routes and the realtime channel.
type Server struct {
	system  *orchestrator.System
	chatSvc *chat.Service
	hub     *broadcast.Hub

	engine     *gin.Engine
	httpServer *http.Server
	logger     logging.Logger
	startTime  time.Time
}

// New builds a fully routed server. The orchestrator, chat service and hub
// are explicit dependencies so tests can construct them with fakes.
func New(cfg config.ServerConfig, system *orchestrator.System, chatSvc *chat.Service, hub *broadcast.Hub) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	if cfg.EnableCORS {
		corsConfig := cors.DefaultConfig()
		if len(cfg.CORSOrigins) == 0 || (len(cfg.CORSOrigins) == 1 && cfg.CORSOrigins[0] == "*") {
			corsConfig.AllowAllOrigins = true
		} else {
			corsConfig.AllowOrigins = cfg.CORSOrigins
		}
		corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Requested-With"}
		corsConfig.AllowWebSockets = true
		engine.Use(cors.New(corsConfig))
	}

	s := &Server{
		system:    system,
		chatSvc:   chatSvc,
		hub:       hub,
		engine:    engine,
		logger:    logging.NewComponentLogger("Server"),
		startTime: time.Now(),
	}
	s.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.engine.GET("/", s.handleHome)
	s.engine.GET("/health", s.handleHealth)

	api := s.engine.Group("/api")
	api.Use(JSONMiddleware())

	agent := api.Group("/agent")
	{
		agent.POST("/analyze", s.handleAnalyze)

		agent.POST("/tasks", s.handleCreateTask)
		agent.GET("/tasks/:id", s.handleGetTask)
		agent.PUT("/tasks/:id/status", s.handleUpdateTaskStatus)
		agent.GET("/tasks/:id/dependencies", s.handleTaskDependencies)
		agent.GET("/tasks/:id/dependents", s.handleDependentTasks)

		agent.POST("/artifacts", s.handleSaveArtifact)
		agent.GET("/artifacts/history", s.handleArtifactHistory)
		agent.GET("/artifacts/latest", s.handleArtifactLatest)
		agent.GET("/artifacts/version", s.handleArtifactVersion)

		agent.GET("/agents", s.handleListAgents)
		agent.GET("/agents/:id", s.handleGetAgent)
		agent.GET("/agents/name/:name", s.handleGetAgentByName)
	}

	chatGroup := api.Group("/chat")
	{
		chatGroup.POST("/sessions", s.handleCreateSession)
		chatGroup.GET("/sessions", s.handleListSessions)
		chatGroup.GET("/sessions/:id", s.handleGetSession)
		chatGroup.DELETE("/sessions/:id", s.handleDeleteSession)
		chatGroup.POST("/sessions/:id/archive", s.handleArchiveSession)
		chatGroup.POST("/sessions/:id/messages", s.handleSendMessage)
		chatGroup.GET("/sessions/:id/messages", s.handleSessionHistory)
		chatGroup.POST("/sessions/:id/clear", s.handleClearSession)
		chatGroup.PUT("/sessions/:id/title", s.handleUpdateSessionTitle)
	}

	// The websocket endpoint sits outside the JSON middleware group.
	s.engine.GET("/api/ws", s.handleWebSocket)
}

func (s *Server) handleHome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "running",
		"service": "AI Agent Collaborative System",
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"uptime":    time.Since(s.startTime).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Handler returns the routed engine, used directly by httptest in tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start blocks serving HTTP until Stop is called or the listener fails.
func (s *Server) Start() error {
	s.logger.Info("listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("shutting down")
	return s.httpServer.Shutdown(ctx)
}

package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/openioc/vmecore/internal/api/websocket"
	"github.com/openioc/vmecore/internal/auth"
	"github.com/openioc/vmecore/internal/config"
	"github.com/openioc/vmecore/internal/interfaces"
	"github.com/openioc/vmecore/internal/storage"
	"go.uber.org/zap"
)

type Server struct {
	router  *gin.Engine
	manager interfaces.RecordManager
	logger  *zap.Logger
	server  *http.Server
	wsHub   *websocket.Hub
	auth    *auth.Service
	archive *storage.PostgresClient
}

// NewServer builds the monitor surface. auth and archive are optional: a
// nil auth service leaves the write endpoint open, a nil archive disables
// the history endpoint.
func NewServer(
	cfg *config.Config,
	manager interfaces.RecordManager,
	logger *zap.Logger,
	wsHub *websocket.Hub,
	authService *auth.Service,
	archive *storage.PostgresClient,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		router:  gin.New(),
		manager: manager,
		logger:  logger,
		wsHub:   wsHub,
		auth:    authService,
		archive: archive,
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", zap.String("address", s.server.Addr))
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("REST server failed", zap.Error(err))
		}
	}()
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down REST API server")
	return s.server.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	// Middleware
	s.router.Use(gin.Recovery())
	s.router.Use(LoggerMiddleware(s.logger))
	s.router.Use(CORSMiddleware())

	s.router.GET("/health", s.healthCheck)

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		if s.auth != nil {
			v1.POST("/auth/login", s.login)
		}

		recordGroup := v1.Group("/records")
		{
			recordGroup.GET("", s.listRecords)
			recordGroup.GET("/:name", s.getRecord)
			if s.archive != nil {
				recordGroup.GET("/:name/history", s.recordHistory)
			}
			recordGroup.PUT("/:name/value", s.writeGuards()...)
		}

		ws := v1.Group("/ws")
		{
			ws.GET("/live", s.wsLiveConnection)
			ws.GET("/status", s.wsStatus)
		}
	}
}

// writeGuards chains operator auth in front of the write handler when
// auth is enabled.
func (s *Server) writeGuards() []gin.HandlerFunc {
	if s.auth == nil {
		return []gin.HandlerFunc{s.writeRecord}
	}
	return []gin.HandlerFunc{s.auth.Middleware(), auth.RequireRole(auth.RoleOperator), s.writeRecord}
}

// WebSocket handlers
func (s *Server) wsLiveConnection(c *gin.Context) {
	websocket.ServeWs(s.wsHub, c.Writer, c.Request)
}

func (s *Server) wsStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"connected_clients": s.wsHub.GetClientCount(),
	})
}

// Health check (public)
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}

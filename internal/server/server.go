package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"ondot-chat/config"
	"ondot-chat/internal/handler"
	"ondot-chat/internal/middleware"
	"ondot-chat/internal/transport/httpdto"
	"ondot-chat/internal/websocket"
	"ondot-chat/pkg/database"
	ondot_errors "ondot-chat/pkg/errors"
	"ondot-chat/pkg/logger"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	db         *sql.DB
	logger     *logger.Logger
	onShutdown []func(ctx context.Context)
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

type Handlers struct {
	Contacts      *handler.ContactHandler
	Notifications *handler.NotificationHandler
	Presence      *handler.PresenceHandler
	Sessions      *handler.SessionHandler
	WebSocket     *websocket.Handler
}

func New(cfg *config.Config, db *sql.DB, l *logger.Logger) *Server {
	if cfg.AppMode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.AppMode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%s", cfg.AppPort),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		engine: engine,
		config: cfg,
		db:     db,
		logger: l,
	}
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// SetupRoutes mounts every route. contactLimit may be nil when no limiter
// is configured.
func (s *Server) SetupRoutes(handlers *Handlers, auth middleware.Authenticator, contactLimit middleware.LimitFunc) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.CORSMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})

	s.engine.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(c.Request.Context(), s.db); err != nil {
			err = fmt.Errorf("database: %w: %w", ondot_errors.ErrServiceUnavailable, err)
			c.JSON(ondot_errors.HTTPStatus(err), httpdto.FromError(err))
			return
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "healthy"}))
	})

	// websocket routes authenticate themselves before the upgrade
	handlers.WebSocket.RegisterRoutes(s.engine)

	v1 := s.engine.Group("/v1", middleware.AuthMiddleware(auth))
	{
		contacts := v1.Group("/contacts")
		contacts.POST("", middleware.UserRateLimitMiddleware(contactLimit), handlers.Contacts.Request)
		contacts.GET("", handlers.Contacts.List)
		contacts.POST("/:id/allow", handlers.Contacts.Allow)
		contacts.POST("/:id/reject", handlers.Contacts.Reject)
		contacts.POST("/:id/close", handlers.Contacts.Close)

		notifications := v1.Group("/notifications")
		notifications.GET("", handlers.Notifications.List)
		notifications.GET("/unread-count", handlers.Notifications.UnreadCount)
		notifications.POST("/:id/shown", handlers.Notifications.MarkShown)
		notifications.DELETE("/:id", handlers.Notifications.Delete)

		v1.GET("/presence", handlers.Presence.Lookup)
		v1.DELETE("/session", handlers.Sessions.Revoke)
	}
}

// OnShutdown registers fn to run after the listener stops accepting and
// before Run returns. Hijacked websocket connections are not tracked by
// http.Server, so their owners drain them here.
func (s *Server) OnShutdown(fn func(ctx context.Context)) {
	s.onShutdown = append(s.onShutdown, fn)
}

// Run listens on the configured port and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		if s.logger != nil {
			s.logger.Infof("Starting the server on %s...", ln.Addr())
		}
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	if s.logger != nil {
		s.logger.Infof("Shutdown requested, draining connections for up to %s", shutdownTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	for _, fn := range s.onShutdown {
		fn(shutdownCtx)
	}
	if err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	if s.logger != nil {
		s.logger.Infof("Server stopped gracefully")
	}
	return nil
}

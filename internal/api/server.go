// Package api serves the sync engine over a small local HTTP API.
//
//	GET    /api/snapshot              connection, config, entities, health
//	GET    /api/health                health status, details and readings
//	GET    /api/entities?domain=&q=   entity browser
//	GET    /api/dashboard             pinned entities
//	PUT    /api/dashboard/:id         pin
//	DELETE /api/dashboard/:id         unpin
//	POST   /api/entities/:id/toggle   toggle (async, 202)
//	POST   /api/refresh               refresh now
//	GET    /api/menubar               status indicator and sensor text
//	GET    /api/settings              settings without the token
//
// The API is meant for loopback use and has no authentication.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/five82/otter/internal/engine"
)

// Server exposes an engine over HTTP.
type Server struct {
	engine *engine.Engine
	log    *zap.Logger
	router *gin.Engine

	// background runs fire-and-forget commands; tests replace it.
	background func(func())
}

// New builds the router.
func New(e *engine.Engine, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		engine:     e,
		log:        log,
		router:     gin.New(),
		background: func(fn func()) { go fn() },
	}
	s.router.Use(gin.Recovery(), s.requestLogger())
	s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	api := s.router.Group("/api")
	{
		api.GET("/snapshot", s.handleSnapshot)
		api.GET("/health", s.handleHealth)
		api.GET("/entities", s.handleEntities)
		api.POST("/entities/:id/toggle", s.handleToggle)
		api.GET("/dashboard", s.handleDashboard)
		api.PUT("/dashboard/:id", s.handlePin)
		api.DELETE("/dashboard/:id", s.handleUnpin)
		api.POST("/refresh", s.handleRefresh)
		api.GET("/menubar", s.handleMenuBar)
		api.GET("/settings", s.handleSettings)
	}
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("api listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve api: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown api: %w", err)
	}
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("api request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

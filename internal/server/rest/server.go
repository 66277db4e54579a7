// Package rest exposes the session API over HTTP using gin.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/atskeeper/internal/common"
	"github.com/dmitrijs2005/atskeeper/internal/dbx"
	"github.com/dmitrijs2005/atskeeper/internal/logging"
	"github.com/dmitrijs2005/atskeeper/internal/server/auth"
	"github.com/dmitrijs2005/atskeeper/internal/server/models"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	address string
	engine  *gin.Engine
	logger  logging.Logger
}

// NewServer builds the HTTP server and its routes. Every protected route
// names its allowed roles inline.
func NewServer(address string, l logging.Logger, sessions SessionManager, guard *auth.Guard, db dbx.Pinger, metrics *Metrics) *Server {
	logger := l.With("module", "rest_server")

	h := &handler{
		sessions: sessions,
		db:       db,
		metrics:  metrics,
		logger:   logger,
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	r.GET("/health", h.health)
	r.GET("/ready", h.ready)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api/" + common.APIVersion)

	api.POST("/auth/login", h.login)
	api.POST("/auth/refresh", h.refresh)
	api.POST("/auth/logout", RequireRoles(guard, models.Roles...), h.logout)
	api.GET("/auth/me", RequireRoles(guard, models.Roles...), h.me)
	api.GET("/auth/sessions", RequireRoles(guard, models.Roles...), h.listSessions)

	api.POST("/users/:id/sessions/revoke", RequireRoles(guard, models.RoleAdmin), h.revokeUserSessions)

	return &Server{address: address, engine: r, logger: logger}
}

// Handler exposes the routes, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

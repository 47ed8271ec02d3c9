// Package server exposes a content blocker Handler over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/bnema/webkit-content-blocker/internal/blocker"
	"github.com/bnema/webkit-content-blocker/internal/rules"
)

// ReloadFunc reloads the rule sources and returns the new diagnostics
type ReloadFunc func(ctx context.Context) (rules.Diagnostics, error)

// Server serves decisions from a Handler
type Server struct {
	handler *blocker.Handler
	reload  ReloadFunc
	logger  zerolog.Logger
}

// New creates a server over handler. reload may be nil, which disables POST /v1/rules/reload.
func New(handler *blocker.Handler, reload ReloadFunc, logger zerolog.Logger) *Server {
	return &Server{
		handler: handler,
		reload:  reload,
		logger:  logger.With().Str("component", "server").Logger(),
	}
}

// Router builds the gin engine
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", s.healthz)

	v1 := r.Group("/v1")
	{
		v1.POST("/check", s.check)
		v1.GET("/rules", s.listRules)
		v1.POST("/rules/reload", s.reloadRules)
	}

	return r
}

// Run serves on addr until ctx is canceled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("decision service listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info().Msg("decision service shutting down")
	return srv.Shutdown(shutdownCtx)
}

// requestLogger logs each request at debug level with zerolog
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

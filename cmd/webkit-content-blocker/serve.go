package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/bnema/webkit-content-blocker/internal/blocker"
	"github.com/bnema/webkit-content-blocker/internal/models"
	"github.com/bnema/webkit-content-blocker/internal/rules"
	"github.com/bnema/webkit-content-blocker/internal/server"
	"github.com/bnema/webkit-content-blocker/internal/source"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve decisions over HTTP, reloading rules when the config changes",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default: server.addr)")
	serveCmd.Flags().Bool("watch", true, "reload rules when the config file changes")
}

// reloader recompiles the configured sources into a handler.
// A failed load keeps the current rules.
type reloader struct {
	mu      sync.Mutex
	handler *blocker.Handler
	config  *models.Config
}

func (r *reloader) setConfig(c *models.Config) {
	r.mu.Lock()
	r.config = c
	r.mu.Unlock()
}

func (r *reloader) reload(ctx context.Context) (rules.Diagnostics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.config
	records, err := source.NewLoader(c.HTTP).Load(ctx, c.Rules.Sources)
	if err != nil {
		return rules.Diagnostics{}, err
	}
	return r.handler.Load(records,
		rules.WithDedupe(c.Rules.Dedupe),
		rules.WithStrictDomains(c.Rules.StrictDomains),
	), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	watch, _ := cmd.Flags().GetBool("watch")
	if addr == "" {
		addr = cfg.Server.Addr
	}

	switch cfg.Server.Mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := &reloader{
		handler: blocker.NewHandler(nil, logger),
		config:  cfg,
	}

	// Fail open: serve with no rules when the initial load fails
	if _, err := r.reload(ctx); err != nil {
		logger.Error().Err(err).Msg("initial rule load failed, serving without rules")
	}

	if watch {
		manager.OnConfigChange(func(c *models.Config) {
			r.setConfig(c)
			if _, err := r.reload(ctx); err != nil {
				logger.Warn().Err(err).Msg("rule reload failed, keeping current rules")
			}
		})
		if err := manager.Watch(); err != nil {
			logger.Warn().Err(err).Msg("config watch disabled")
		}
	}

	return server.New(r.handler, r.reload, logger).Run(ctx, addr)
}

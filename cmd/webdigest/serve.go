package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/use-agent/webdigest/api"
)

// shutdownGrace is how long in-flight requests get after a shutdown signal.
const shutdownGrace = 5 * time.Second

// Run executes the serve command. It blocks until deps.Ctx is done.
func (c *ServeCmd) Run(deps *Dependencies) error {
	cfg := deps.Config
	if c.Host != "" {
		cfg.Server.Host = c.Host
	}
	if c.Port > 0 {
		cfg.Server.Port = c.Port
	}
	if cfg.Auth.Enabled && len(cfg.Auth.APIKeys) == 0 {
		slog.Warn("auth is enabled but no API keys are configured; the API is open")
	}

	slog.Info("webdigest starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"browserMode", cfg.Browser.Mode,
		"maxPages", cfg.Browser.MaxPages,
		"llmProvider", cfg.LLM.Provider,
	)

	router := api.NewRouter(api.Deps{
		Runner:   deps.Runner,
		Store:    deps.Store,
		Pool:     deps.Source,
		Cache:    deps.Cache,
		Notifier: deps.Notifier,
	}, cfg, time.Now())

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	case <-deps.Ctx.Done():
		slog.Info("shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	// The page source and store close when Run returns.
	slog.Info("webdigest stopped")
	return nil
}

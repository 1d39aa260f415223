package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/spf13/cobra"

	"github.com/govdl/govdl/internal/api"
	"github.com/govdl/govdl/internal/app"
	"github.com/govdl/govdl/internal/engine"
	"github.com/govdl/govdl/internal/infra/config"
	"github.com/govdl/govdl/internal/infra/logger"
	"github.com/govdl/govdl/internal/resolver"
	"github.com/govdl/govdl/internal/store"
	"github.com/govdl/govdl/internal/tracker"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the download service",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	log, err := logger.New(cfg.Log.Path, logger.ParseLevel(cfg.Log.Level), cfg.Log.IncludeStdout)
	if err != nil {
		return fmt.Errorf("logger error: %w", err)
	}

	if err := os.MkdirAll(cfg.Download.OutDir, 0755); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}

	appCtx := app.NewContext(cfg, log)
	appCtx.Resolver = resolver.New(cfg, log)

	history, err := store.NewHistoryStore(cfg.History.SQLitePath)
	if err != nil {
		return fmt.Errorf("history store error: %w", err)
	}
	defer history.Close()
	appCtx.History = history

	tr := tracker.New(log)
	runner := engine.NewRunner(appCtx, tr)

	// Graceful shutdown on Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go store.NewJanitor(appCtx).Run(ctx)

	e := echo.New()
	api.RegisterRoutes(e, appCtx, runner, tr)

	addr := cfg.Port
	if !strings.HasPrefix(addr, ":") {
		addr = ":" + addr
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: e,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("govdl listening on %s (downloads: %s)", addr, cfg.Download.OutDir)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")

	// In-flight downloads are abandoned on shutdown; jobs are not durable by
	// design.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

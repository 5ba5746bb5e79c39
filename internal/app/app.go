// Package app wires the process: configuration, logging, storage, the one
// service instance every handler shares, and the HTTP server lifecycle.
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"booklog/internal/config"
	"booklog/internal/library"
	"booklog/internal/openbd"
	"booklog/internal/server"
	"booklog/internal/site"
	"booklog/internal/storage/jsonfile"
)

// App represents the web application process.
type App struct {
	config *config.Config
	logger *zap.Logger
	svc    *library.Service
	server *http.Server
}

// New creates and initializes a new application instance. The migration
// engine runs here, before any other component reads the collections.
func New() (*App, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load("")
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	store, err := jsonfile.New(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	lookup := openbd.New(cfg.OpenBDBaseURL, logger)
	svc := library.New(store, lookup, logger)

	migrated, err := svc.Migrator.MigrateFromV1()
	if err != nil {
		return nil, err
	}
	if migrated {
		logger.Info("data directory migrated to v2 layout", zap.String("dir", cfg.DataDir))
	}

	gen := site.New(svc, logger)
	srv := server.New(svc, gen, cfg.SiteDir, logger)

	app := &App{
		config: cfg,
		logger: logger,
		svc:    svc,
		server: &http.Server{
			Addr:         cfg.Addr,
			Handler:      srv.Router(),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
	}
	return app, nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// Run starts the application and blocks until shutdown.
func (a *App) Run() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		a.logger.Info("starting HTTP server", zap.String("addr", a.config.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-sigChan:
		a.logger.Info("shutting down")
		return a.Shutdown()
	}
}

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown error", zap.Error(err))
		return err
	}
	a.logger.Info("shutdown complete")
	_ = a.logger.Sync()
	return nil
}

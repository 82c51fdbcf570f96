package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	_ "modernc.org/sqlite"

	"storefront/internal/adapter/httpserver"
	"storefront/internal/adapter/staticfiles"
	"storefront/internal/adapter/storage"
	"storefront/internal/config"
	"storefront/internal/core/service"
	"storefront/internal/worker"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config load failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize SQLite
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		logger.Error("create data dir failed", "dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}
	dbPath := filepath.Join(cfg.DataDir, "storefront.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		logger.Error("open database failed", "path", dbPath, "error", err)
		os.Exit(1)
	}
	// The store serializes every write; one connection keeps SQLite happy.
	db.SetMaxOpenConns(1)

	repo := storage.NewSQLiteRepository(db)
	if err := repo.Init(ctx); err != nil {
		logger.Error("init schema failed", "error", err)
		os.Exit(1)
	}
	logger.Info("database ready", "path", dbPath)

	// Load domain state
	store := service.NewStore(repo, logger)
	if err := store.Load(ctx); err != nil {
		logger.Error("load store failed", "error", err)
		os.Exit(1)
	}

	// Wire transport
	router := httpserver.NewRouter(
		store,
		staticfiles.New(cfg.PublicDir),
		httpserver.Credentials{Username: cfg.AdminUser, Password: cfg.AdminPass},
		logger,
	)
	pool := worker.NewPool(cfg.Workers, cfg.QueueSize, logger)
	logger.Info("started workers", "count", cfg.Workers, "queue", cfg.QueueSize)

	server := httpserver.NewServer(cfg.Addr, router, pool, logger)
	if err := server.Listen(); err != nil {
		logger.Error("listen failed", "error", err)
		os.Exit(1)
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		logger.Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			logger.Error("serve failed", "error", err)
		}
	}

	cancel()
	pool.Close()
	pool.Wait()
	logger.Info("workers stopped")

	if err := db.Close(); err != nil {
		logger.Error("close database failed", "error", err)
	}
	logger.Info("shutdown complete")
}

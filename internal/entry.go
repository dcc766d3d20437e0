// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/munin/internal/api"
	"github.com/starford/munin/internal/index"
	"github.com/starford/munin/internal/knowledge"
	"github.com/starford/munin/internal/mcpserver"
	"github.com/starford/munin/internal/retrieval"
	"github.com/starford/munin/internal/sse"
	"github.com/starford/munin/internal/storage"
)

// buildCore wires the storage provider, store engine, retrieval service
// and (unless disabled) the derived search cache from the configuration.
// onCommit, when non-nil, is registered on the engine.
func buildCore(cfg *Config, logger *slog.Logger, onCommit knowledge.CommitHook) (storage.Provider, *knowledge.Engine, *retrieval.Service, *index.DB, error) {
	if err := os.MkdirAll(cfg.Knowledge.Root, 0o755); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("create knowledge root: %w", err)
	}

	store, err := storage.NewFS(cfg.Knowledge.Root)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("init storage: %w", err)
	}

	retr := retrieval.New(store, cfg.Knowledge.URLIndexFile, cfg.Knowledge.Topics)

	hook := func(storeKind, location string) {
		retr.Invalidate()
		if onCommit != nil {
			onCommit(storeKind, location)
		}
	}

	engine, err := knowledge.New(store, cfg.Knowledge.Engine(), logger, knowledge.WithCommitHook(hook))
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("init engine: %w", err)
	}

	var db *index.DB
	if !cfg.Cache.Disabled {
		db, err = index.Open(cfg.Cache.Path)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("init search cache: %w", err)
		}
		if err := index.Sync(db, store, cfg.Knowledge.URLIndexFile, cfg.Knowledge.Topics, logger); err != nil {
			logger.Warn("initial cache sync failed", slog.String("error", err.Error()))
		}
	}

	return store, engine, retr, db, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("knowledge_root", cfg.Knowledge.Root),
		slog.String("cache_path", cfg.Cache.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// SSE broker.
	broker := sse.NewBroker()
	defer broker.Stop()

	store, engine, retr, db, err := buildCore(cfg, logger, broker.PublishCommit)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	// Build API router. The searcher is nil when the cache is disabled;
	// the search endpoints degrade instead of the whole server.
	var searcher api.Searcher
	if db != nil {
		searcher = db
	}
	apiRouter := api.NewRouter(engine, retr, searcher, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the knowledge tree so out-of-band edits (editors, git pulls)
	// reach the search cache and the retrieval snapshot.
	if db != nil {
		g.Go(func() error {
			return index.Watch(gCtx, db, store, cfg.Knowledge.Root, cfg.Knowledge.URLIndexFile, cfg.Knowledge.Topics, logger, func() {
				retr.Invalidate()
				broker.Publish(sse.Event{Type: "cache.synced", Data: map[string]string{}})
			})
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP starts the MCP server on stdin/stdout with the given options.
// Logs go to stderr because stdout carries the MCP transport.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	_, engine, retr, db, err := buildCore(cfg, logger, nil)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	logger.Info("MCP server starting on stdio",
		slog.String("knowledge_root", cfg.Knowledge.Root))

	return mcpserver.New(engine, retr, db).ServeStdio()
}

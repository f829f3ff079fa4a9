package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/FinSummary/internal/config"
	"github.com/JonMunkholm/FinSummary/internal/core"
	"github.com/JonMunkholm/FinSummary/internal/logging"
	"github.com/JonMunkholm/FinSummary/internal/observability"
	"github.com/JonMunkholm/FinSummary/internal/session"
	"github.com/JonMunkholm/FinSummary/internal/source"
	"github.com/JonMunkholm/FinSummary/internal/web"
)

// sessionStore is a view store the health check can ping.
type sessionStore interface {
	core.StateStore
	web.Pinger
}

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded", "config", cfg.String())

	// Load the dataset once; every view shares it read-only
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), cfg.Data.LoadTimeout)
	dataset, err := source.Load(loadCtx, cfg.Data.Source, source.Options{
		Path:        cfg.Data.Path,
		DatabaseURL: cfg.Data.DatabaseURL,
		Table:       cfg.Data.Table,
		MaxConns:    int32(cfg.Data.MaxConns),
	})
	cancelLoad()
	if err != nil {
		slog.Error("failed to load dataset", "source", cfg.Data.Source, "error", err)
		os.Exit(1)
	}
	slog.Info("dataset loaded",
		"source", cfg.Data.Source,
		"rows", dataset.Len(),
		"periods", len(dataset.Periods),
	)

	store, closeStore, err := openSessionStore(cfg)
	if err != nil {
		slog.Error("failed to open session store", "backend", cfg.Session.Backend, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	service, err := core.NewService(dataset, store, core.ServiceConfig{
		Title:       cfg.View.Title,
		PageSize:    cfg.View.PageSize,
		DefaultView: cfg.DefaultView(),
		Logger:      logging.FromContext,
	})
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}

	metrics := observability.NewMetrics()
	service.SetObserver(metrics)

	server := web.NewServer(service, cfg, web.Deps{
		Sessions: session.NewManager(cfg.Session.CookieName, cfg.Session.TTL, cfg.Session.Secure),
		Metrics:  metrics,
		Store:    store,
	})

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.StartSessionSweeper(jobCtx, cfg.Session.SweepInterval)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		// Stop background jobs
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		cancelJobs()
		closeStore()
		os.Exit(1)
	}
	cancelJobs()
	slog.Info("server stopped")
}

// openSessionStore builds the configured view store and its cleanup.
func openSessionStore(cfg *config.Config) (sessionStore, func(), error) {
	switch cfg.Session.Backend {
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Data.LoadTimeout)
		defer cancel()
		client, err := session.NewRedisClient(ctx, cfg.Session.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("session store: redis", "ttl", cfg.Session.TTL)
		closeFn := func() {
			if err := client.Close(); err != nil {
				slog.Warn("closing redis client", "error", err)
			}
		}
		return session.NewRedisStore(client, cfg.Session.TTL), closeFn, nil
	case "memory", "":
		slog.Info("session store: memory", "ttl", cfg.Session.TTL, "sweep_interval", cfg.Session.SweepInterval)
		return session.NewMemoryStore(cfg.Session.TTL), func() {}, nil
	}
	return nil, nil, fmt.Errorf("session store: unknown backend %q", cfg.Session.Backend)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mathdex/internal/app"
	"github.com/kailas-cloud/mathdex/internal/config"
	logpkg "github.com/kailas-cloud/mathdex/internal/logger"
	chiTransport "github.com/kailas-cloud/mathdex/internal/transport/chi"
	"github.com/kailas-cloud/mathdex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level, zap.String("service", "mathdex"))
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting mathdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("index", cfg.Index.Name),
	)

	ctx := context.Background()
	store, err := app.Connect(ctx, &cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer store.Close()
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	app.RegisterMetrics()

	embedder := app.NewEmbedder(&cfg, logger)
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.Int("cache_size", cfg.Embedding.CacheSize),
	)

	a := app.New(&cfg, store, embedder, logger)

	switch {
	case cfg.Index.RecreateOnStartup:
		if err := a.Index.RecreateIndex(ctx); err != nil {
			logger.Fatal("Failed to recreate index", zap.Error(err))
		}
	case cfg.Index.CreateOnStartup:
		if err := a.Index.CreateIndexIfNotExists(ctx); err != nil {
			logger.Fatal("Failed to ensure index", zap.Error(err))
		}
	}

	server := chiTransport.NewServer(a.Search, a.Duplicates, a.Indexing, a.Index, a.Health, logger,
		chiTransport.WithSearchLimits(cfg.Search.DefaultLimit, cfg.Search.MaxLimit),
		chiTransport.WithMaxBatchSize(cfg.HTTP.MaxBatchSize),
	)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Routes(cfg.HTTP.APIKeys),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

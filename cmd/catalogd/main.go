package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/elyasalemi10/bwa-catalog/internal/alloc"
	"github.com/elyasalemi10/bwa-catalog/internal/common"
	"github.com/elyasalemi10/bwa-catalog/internal/export"
	"github.com/elyasalemi10/bwa-catalog/internal/extract"
	"github.com/elyasalemi10/bwa-catalog/internal/match"
	"github.com/elyasalemi10/bwa-catalog/internal/parser"
	"github.com/elyasalemi10/bwa-catalog/internal/pipeline"
	"github.com/elyasalemi10/bwa-catalog/internal/repository"
	httpserver "github.com/elyasalemi10/bwa-catalog/internal/server/http"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel()}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := repository.Open(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		logger.Error("opening catalog store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.HealthCheck(ctx, cfg.Database.DialTimeout); err != nil {
		logger.Error("catalog store health check failed", "error", err)
		os.Exit(1)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Error("ensuring catalog schema", "error", err)
		os.Exit(1)
	}
	logger.Info("catalog store ready")

	profiles, err := parser.LoadProfiles(cfg.Profiles.Dir, logger)
	if err != nil {
		logger.Error("loading vendor profiles", "error", err)
		os.Exit(1)
	}

	products := repository.NewProductRepository(store, logger)
	allocator := alloc.New(products, logger)
	matcher := match.New(products, logger)
	extractor := extract.NewPDFExtractor(extract.Limits{
		MaxBytes: cfg.Upload.MaxBytes,
		MaxPages: cfg.Upload.MaxPages,
	}, logger)
	processor := pipeline.NewProcessor(logger, extractor, profiles, allocator, matcher)
	exporter := export.NewService(products, logger)

	handler := httpserver.NewHandler(processor, products, allocator, exporter, cfg.Upload.MaxBytes)
	router := httpserver.SetupRouter(cfg, handler, logger)

	srv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http server listening", "addr", cfg.Server.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	logger.Info("stopped")
}

func logLevel() slog.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

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
	"time"

	"moviecatalog/grpcserver"
	"moviecatalog/httpserver"
	"moviecatalog/movie"
	"moviecatalog/pkg/config"
	"moviecatalog/pkg/logger"
	"moviecatalog/pkg/sentry"
	"moviecatalog/pkg/storage"
	"moviecatalog/reqres"

	sentrygo "github.com/getsentry/sentry-go"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := run(); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Options{
		AppEnv: cfg.AppEnv,
		Level:  cfg.Log.Level,
		File:   cfg.Log.File,
	})
	if err != nil {
		return fmt.Errorf("cannot init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	err = sentrygo.Init(sentrygo.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.AppEnv,
		AttachStacktrace: true,
	})
	if err != nil {
		return fmt.Errorf("cannot init sentry: %w", err)
	}
	defer sentrygo.Flush(sentry.FlushTime)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := storage.Open(ctx, cfg)
	if err != nil {
		return err
	}
	slog.Info("movie store ready", "driver", cfg.DB.Driver)

	profiles := reqres.NewClient(reqres.Options{
		BaseURL: cfg.Enrichment.BaseURL,
		Source:  cfg.Enrichment.Source,
		APIKey:  cfg.Enrichment.APIKey,
		Timeout: cfg.EnrichmentTimeout(),
	})
	uc := movie.NewUsecase(repo, profiles,
		movie.WithLogger(log.Named("movie")),
		movie.WithEnrichmentTimeout(cfg.EnrichmentTimeout()),
	)

	server := httpserver.Default(cfg)
	server.Addr = fmt.Sprintf(":%d", cfg.Port)
	server.Logger = log.Named("http")
	server.MovieService = uc

	health := grpcserver.New(fmt.Sprintf(":%d", cfg.GRPCPort), repo)
	health.Logger = log.Named("grpc")

	errCh := make(chan error, 2)
	go func() {
		slog.Info("http server started", "addr", server.Addr)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		slog.Info("grpc server started", "addr", health.Addr)
		if err := health.Start(); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if serr := server.Shutdown(shutdownCtx); serr != nil {
		slog.Error("http shutdown", "error", serr)
	}
	health.Stop()
	uc.Wait()

	return err
}

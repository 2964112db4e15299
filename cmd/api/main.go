package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/converso-hq/converso/internal/api"
	"github.com/converso-hq/converso/internal/config"
	"github.com/converso-hq/converso/internal/database"
	"github.com/converso-hq/converso/internal/notification"
	"github.com/converso-hq/converso/internal/repository"
	"github.com/converso-hq/converso/internal/widget"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting Converso API",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database pool
	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	// Token signing. A missing or weak secret is fatal: tokens minted
	// without it could never be verified.
	tokens, err := widget.NewTokenService(cfg.WidgetTokenSecret, cfg.TokenIssuer)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	// Outbound email. The API degrades to queue-only when SES is not
	// reachable at startup; the worker stays off and queued mail waits.
	var mailer notification.Mailer
	sesMailer, err := notification.NewSESMailer(ctx, cfg.AWSRegion, cfg.EmailFrom)
	if err != nil {
		logger.Warn("email delivery disabled", slog.Any("error", err))
	} else {
		mailer = sesMailer
	}

	deps := &api.Dependencies{
		TeamRepo:       repository.NewTeamRepository(pool),
		ConnectionRepo: repository.NewConnectionRepository(pool),
		APIKeyRepo:     repository.NewAPIKeyRepository(pool),
		Tokens:         tokens,
		Mailer:         mailer,
		AppBaseURL:     cfg.AppBaseURL,
		DB:             pool,
	}

	// Setup router
	router := api.NewRouter(logger, deps)
	router.Setup()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down server...")
	if err := router.Shutdown(); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}

	<-shutdownCtx.Done()
	logger.Info("server stopped")

	return nil
}

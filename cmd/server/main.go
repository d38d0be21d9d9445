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

	"typerace/internal/app"
	"typerace/internal/config"
	"typerace/internal/storage"
	httpTransport "typerace/internal/transport/http"
)

func main() {
	// Load configuration
	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Warn("failed to load .env file", "error", err)
	}
	cfg := config.Load()

	// Set up logger
	var logger *slog.Logger
	logOpts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Logging.Level),
	}

	if cfg.Logging.Format == "json" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, logOpts))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, logOpts))
	}

	slog.SetDefault(logger)

	logger.Info("starting typing race server",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"storage", cfg.Storage.Driver,
	)

	// Open persistent store
	store, err := storage.Open(cfg.Storage.Driver, cfg.StorageDSN())
	if err != nil {
		logger.Error("failed to open storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// Create hub and race session
	hub := app.NewHub(logger)
	defer hub.Close()

	texts := app.NewTextProvider(store, cfg.Race.DefaultText, logger)
	session := app.NewRaceSession(raceSettings(cfg), texts, store, hub, logger)
	defer session.Close()

	// Pick the first race text from the corpus
	session.PrepareNextRace()

	// Create HTTP server
	server := httpTransport.NewServer(cfg, hub, session, logger)

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
}

// raceSettings maps the race configuration onto session settings
func raceSettings(cfg *config.Config) app.Settings {
	return app.Settings{
		MinParticipants:   cfg.Race.MinParticipants,
		CountdownFrom:     cfg.Race.CountdownFrom,
		CountdownInterval: cfg.Race.CountdownInterval,
		AutoResetDelay:    cfg.Race.AutoResetDelay,
		RetryDelay:        cfg.Race.RetryDelay,
		WinnerPoints:      cfg.Race.WinnerPoints,
		LeaderboardSize:   cfg.Race.LeaderboardSize,
		StoreTimeout:      cfg.Race.StoreTimeout,
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

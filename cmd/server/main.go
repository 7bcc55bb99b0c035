package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcoot/brettonwoods/internal/api"
	"github.com/mcoot/brettonwoods/internal/config"
	"github.com/mcoot/brettonwoods/internal/factory"
)

func main() {
	configFile := flag.String("config", "", "path to a config file (default ./config.yaml if present)")
	envFile := flag.String("env", ".env", "path to a .env file, loaded if present")
	flag.Parse()

	// Bootstrap logger until the configured level is known
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	settings, err := config.Load(config.LoadOptions{DotEnvPath: *envFile, ConfigFile: *configFile})
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: settings.LogLevel(),
	}))
	slog.SetDefault(logger)

	app, err := factory.New(factory.Config{Settings: settings, Logger: logger})
	if err != nil {
		logger.Error("failed to create application",
			slog.String("storage", settings.Storage.Type),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := app.Restore(context.Background()); err != nil {
		logger.Error("failed to restore state", slog.String("error", err.Error()))
		os.Exit(1)
	}
	app.Start()

	server := api.NewServer(app.Router(), settings.Server, logger)

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", settings.Storage.Type))

	exitCode := 0
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			exitCode = 1
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			exitCode = 1
		}
	}

	// Final save before exit
	if err := app.Close(context.Background()); err != nil {
		logger.Error("failed to close application", slog.String("error", err.Error()))
		exitCode = 1
	}

	logger.Info("server stopped")
	os.Exit(exitCode)
}

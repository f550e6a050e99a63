// Package cli provides common CLI initialization utilities shared by
// cmd/expns, cmd/expns-shell and cmd/expns-worker.
package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"expns/internal/config"
	"expns/internal/log"
)

// SetupLogger initializes structured logging at the given LOG_LEVEL.
// Returns the configured logger and sets it as the default logger.
func SetupLogger(level string) *log.Logger {
	return SetupLoggerTo(os.Stdout, level)
}

// SetupLoggerTo is SetupLogger writing to w. The terminal shell logs to
// stderr so its output stays readable.
func SetupLoggerTo(w io.Writer, level string) *log.Logger {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(level),
		Component: log.ComponentApp,
		Output:    w,
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	return cfg
}

// ShutdownTimeout bounds how long servers and consumers may drain.
const ShutdownTimeout = 30 * time.Second

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM.
// A second signal exits immediately.
func GracefulShutdown(logger *log.Logger) context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		sigChan := make(chan os.Signal, 2)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()

		sig = <-sigChan
		logger.Warn("Second signal received, exiting", "signal", sig.String())
		os.Exit(1)
	}()

	return ctx
}

// Package cli consolidates the initialization shared by the binaries:
// logger setup, .env loading, configuration and the state backend.
package cli

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"financas/internal/config"
	"financas/internal/log"
	"financas/internal/state"
)

// SetupLogger builds the process logger and installs it as the slog
// default.
func SetupLogger(level, component string) *log.Logger {
	logger := log.New(log.Config{
		Level:     parseLevel(level),
		Component: component,
	})
	log.SetDefault(logger)
	return logger
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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

// LoadEnvFile loads the .env file for local development. Missing files
// are fine in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadConfig loads and validates the configuration, exiting on failure.
func LoadConfig(logger *log.Logger) config.Config {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration invalid", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// OpenStateStore opens the configured state backend, exiting on failure.
func OpenStateStore(cfg config.Config, logger *log.Logger) (state.Store, state.CleanupFunc) {
	store, cleanup, err := state.Open(cfg.StateConfig(), logger.Logger)
	if err != nil {
		logger.Error("state backend unavailable",
			log.FieldBackend, cfg.Backend.String(),
			log.FieldError, err,
		)
		os.Exit(1)
	}
	return store, cleanup
}

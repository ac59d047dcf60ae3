// Package cli provides common initialization shared by the command
// binaries.
package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/Cherval/me-my-cal/internal/config"
	applog "github.com/Cherval/me-my-cal/internal/log"
	"github.com/Cherval/me-my-cal/internal/records/sqlite"
)

// Setup loads the environment file, configuration and logger. It exits
// the process on invalid configuration.
func Setup() (*config.Config, *slog.Logger) {
	// .env is optional outside local development
	_ = godotenv.Load()

	cfg := config.Load()
	applog.Setup(cfg.LogLevel)
	logger := applog.WithComponent(applog.ComponentApp)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg, logger
}

// OpenRepository opens the SQLite repository from configuration,
// exiting the process on failure.
func OpenRepository(cfg *config.Config, logger *slog.Logger) *sqlite.Repository {
	repo, err := sqlite.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	return repo
}

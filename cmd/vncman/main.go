// vncman - VNC machine endpoint registry
//
// This is the main entry point for the vncman server. It serves a REST
// API for account and machine management plus a WebSocket tunnel that
// relays browser VNC sessions to registered machine endpoints.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/vncman/core/migrations"

	"github.com/vncman/core/internal/api"
	"github.com/vncman/core/internal/audit"
	"github.com/vncman/core/internal/auth"
	"github.com/vncman/core/internal/infrastructure/config"
	"github.com/vncman/core/internal/infrastructure/database"
	"github.com/vncman/core/internal/infrastructure/logging"
	"github.com/vncman/core/internal/machine"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting vncman",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if configPath != "" {
		log.Info("configuration loaded", "path", configPath)
	} else {
		log.Info("no config file, using defaults and environment")
	}

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	if cfg.UsesDefaultSecret() {
		log.Warn("using the default JWT secret; set VNCMAN_JWT_SECRET before exposing this server")
	}

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Wire up the service layer
	userRepo := auth.NewUserRepository(db.DB)
	machineRepo := machine.NewRepository(db.DB)
	auditRepo := audit.NewSQLiteRepository(db.DB)
	authSvc := auth.NewService(userRepo, cfg.Security.JWT.Secret, cfg.Security.JWT.Algorithm, cfg.TokenTTL())

	// Seed the initial admin account (if configured)
	if cfg.Bootstrap.AdminUsername != "" && cfg.Bootstrap.AdminPassword != "" {
		admin, seedErr := auth.BootstrapAdmin(ctx, userRepo, log.Logger,
			cfg.Bootstrap.AdminUsername,
			cfg.Bootstrap.AdminEmail,
			cfg.Bootstrap.AdminPassword,
		)
		if seedErr != nil {
			return fmt.Errorf("bootstrapping admin account: %w", seedErr)
		}
		log.Info("admin account ready", "username", admin.Username, "id", admin.ID)
	}

	// Start the API server
	server, err := api.New(api.Deps{
		Config:   cfg.API,
		Auth:     authSvc,
		Machines: machineRepo,
		Audit:    auditRepo,
		Logger:   log,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if err := healthCheck(ctx, db, server); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	log.Info("vncman stopped")
	return nil
}

// getConfigPath returns the configuration file path.
//
// Uses the VNCMAN_CONFIG environment variable if set. Otherwise the
// default path is used when the file exists; a missing default file is
// not an error, the server then runs on defaults plus environment.
func getConfigPath() string {
	if path := os.Getenv("VNCMAN_CONFIG"); path != "" {
		return path
	}
	if _, err := os.Stat(defaultConfigPath); err == nil {
		return defaultConfigPath
	}
	return ""
}

// healthCheck verifies all infrastructure components are healthy.
func healthCheck(ctx context.Context, db *database.DB, server *api.Server) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := server.HealthCheck(ctx); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

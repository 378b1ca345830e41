package commands

import (
	"context"
	"fmt"

	"github.com/Gaganb-30/cloud-store/internal/logger"
	"github.com/Gaganb-30/cloud-store/pkg/config"
	"github.com/Gaganb-30/cloud-store/pkg/metadatastore"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Run database migrations for the metadata store.

This command applies pending schema migrations to the configured
metadata database (SQLite or PostgreSQL). It is required after
upgrading FileVault when schema changes have been made.

Examples:
  # Run migrations with default config
  filevault migrate

  # Run migrations with a custom config file
  filevault migrate --config /etc/filevault/config.yaml`,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return err
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	logger.Info("Running database migrations", "driver", cfg.Database.Driver)

	ctx := context.Background()
	store, err := metadatastore.New(ctx, metadatastore.Config{
		Driver:       metadatastore.Driver(cfg.Database.Driver),
		DSN:          cfg.Database.DSN,
		Path:         cfg.Database.Path,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.Healthcheck(ctx); err != nil {
		return fmt.Errorf("migration verification failed: %w", err)
	}

	fmt.Printf("Migrations completed successfully (database driver: %s)\n", cfg.Database.Driver)
	return nil
}

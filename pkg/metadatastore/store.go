// Package metadatastore is the gorm-backed persistence layer for
// FileVault's User, File, Folder, Quota, and UploadSession entities.
// PostgreSQL is the primary backend, schema-migrated via golang-migrate;
// SQLite (for local/dev/single-node deployments) uses gorm's
// AutoMigrate against the same struct tags.
package metadatastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/golang-migrate/migrate/v4"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Gaganb-30/cloud-store/pkg/metadatastore/migrations"
	"github.com/Gaganb-30/cloud-store/pkg/model"
)

// Driver selects the backing database engine.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

// Config configures a Store.
type Config struct {
	Driver Driver

	// DSN is the PostgreSQL connection string, used when Driver == postgres.
	DSN string

	// Path is the SQLite database file path, used when Driver == sqlite.
	Path string

	MaxOpenConns int
	MaxIdleConns int
}

// Store wraps a gorm connection and implements the CRUD and atomic
// update operations the quota, upload, download, lifecycle, and admin
// packages depend on.
type Store struct {
	db     *gorm.DB
	driver Driver
}

// New opens the configured database, runs schema setup, and returns a
// ready Store.
func New(ctx context.Context, cfg Config) (*Store, error) {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	case DriverSQLite:
		dsn := cfg.Path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("metadatastore: unsupported driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("metadatastore: connect: %w", err)
	}

	switch cfg.Driver {
	case DriverPostgres:
		if err := runPostgresMigrations(ctx, cfg.DSN); err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("metadatastore: underlying db: %w", err)
		}
		if cfg.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		}
	case DriverSQLite:
		if err := db.AutoMigrate(
			&model.User{}, &model.Folder{}, &model.File{}, &model.Quota{}, &model.UploadSession{},
		); err != nil {
			return nil, fmt.Errorf("metadatastore: automigrate: %w", err)
		}
	}

	return &Store{db: db, driver: cfg.Driver}, nil
}

// runPostgresMigrations applies pending golang-migrate migrations
// sourced from the embedded migrations package.
func runPostgresMigrations(ctx context.Context, dsn string) error {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("metadatastore: open migration connection: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("metadatastore: ping: %w", err)
	}

	driver, err := migratepostgres.WithInstance(sqlDB, &migratepostgres.Config{
		MigrationsTable: "schema_migrations",
		DatabaseName:    "filevault",
	})
	if err != nil {
		return fmt.Errorf("metadatastore: postgres driver: %w", err)
	}

	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("metadatastore: migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", driver)
	if err != nil {
		return fmt.Errorf("metadatastore: migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("metadatastore: migrate up: %w", err)
	}
	return nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Healthcheck pings the underlying database connection.
func (s *Store) Healthcheck(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func convertNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

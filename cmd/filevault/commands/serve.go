package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Gaganb-30/cloud-store/internal/auth"
	"github.com/Gaganb-30/cloud-store/internal/logger"
	"github.com/Gaganb-30/cloud-store/internal/telemetry"
	"github.com/Gaganb-30/cloud-store/pkg/admin"
	"github.com/Gaganb-30/cloud-store/pkg/api"
	"github.com/Gaganb-30/cloud-store/pkg/config"
	"github.com/Gaganb-30/cloud-store/pkg/download"
	"github.com/Gaganb-30/cloud-store/pkg/files"
	"github.com/Gaganb-30/cloud-store/pkg/lifecycle"
	"github.com/Gaganb-30/cloud-store/pkg/metadatastore"
	"github.com/Gaganb-30/cloud-store/pkg/metrics"
	"github.com/Gaganb-30/cloud-store/pkg/model"
	"github.com/Gaganb-30/cloud-store/pkg/quota"
	"github.com/Gaganb-30/cloud-store/pkg/ratelimit"
	"github.com/Gaganb-30/cloud-store/pkg/ratelimit/badgerstore"
	"github.com/Gaganb-30/cloud-store/pkg/storage"
	"github.com/Gaganb-30/cloud-store/pkg/storage/localfs"
	"github.com/Gaganb-30/cloud-store/pkg/storage/s3store"
	"github.com/Gaganb-30/cloud-store/pkg/upload"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the FileVault API server",
	Long: `Start the FileVault HTTP API server: metadata store, blob storage
backend, quota ledger, upload/download services, background lifecycle
workers, and the authenticated REST API.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/filevault/config.yaml.

Examples:
  # Start with default config
  filevault serve

  # Start with a custom config file
  filevault serve --config /etc/filevault/config.yaml

  # Override a key that the config file sets
  FILEVAULT_LOGGING_LEVEL=DEBUG filevault serve`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return err
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryCfg := telemetry.DefaultConfig()
	telemetryCfg.Enabled = cfg.Telemetry.Enabled
	telemetryCfg.ServiceName = "filevault"
	telemetryCfg.ServiceVersion = Version
	telemetryCfg.Endpoint = cfg.Telemetry.Endpoint
	telemetryCfg.SampleRate = cfg.Telemetry.SamplingRatio
	telemetryShutdown, err := telemetry.Init(ctx, telemetryCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("Configuration loaded", "source", getConfigSource(GetConfigFile()))
	if telemetry.IsEnabled() {
		logger.Info("Telemetry enabled", "endpoint", cfg.Telemetry.Endpoint)
	} else {
		logger.Info("Telemetry disabled")
	}

	// Metrics must be initialized before any component that checks
	// metrics.IsEnabled() is constructed.
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		logger.Info("Metrics enabled", "addr", cfg.Metrics.Addr)
	} else {
		logger.Info("Metrics disabled")
	}

	store, err := metadatastore.New(ctx, metadatastore.Config{
		Driver:       metadatastore.Driver(cfg.Database.Driver),
		DSN:          cfg.Database.DSN,
		Path:         cfg.Database.Path,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize metadata store: %w", err)
	}
	defer func() { _ = store.Close() }()
	logger.Info("Metadata store ready", "driver", cfg.Database.Driver)

	provider, err := newStorageProvider(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage provider: %w", err)
	}
	logger.Info("Storage provider ready", "provider", cfg.Storage.Provider)

	ledger := quota.New(store, quota.Defaults{
		FreeMaxStorage:    int64(cfg.Quota.FreeBytes),
		FreeMaxFileSize:   int64(cfg.Upload.MaxFileSizeFree),
		FreeMaxFiles:      model.Unlimited,
		PremiumMaxStorage: cfg.Quota.PremiumBytes,
		PremiumMaxFiles:   model.Unlimited,
	})

	uploadManager := upload.New(store, provider, ledger, upload.Config{
		ChunkSize:          int64(cfg.Upload.ChunkSize),
		DirectPartSize:     int64(cfg.Storage.S3PartSize),
		SessionTTL:         cfg.Upload.SessionTTL,
		ExpiryDaysFree:     cfg.Lifecycle.FileExpiryDaysFree,
		PresignedExpiry:    durationFromSeconds(cfg.Upload.PresignedExpirySecs),
		MaxParallelUploads: cfg.Storage.S3MaxParallelUploads,
	})

	downloadService := download.New(store, provider, download.Config{
		MaxUniqueIPs:       cfg.Lifecycle.DownloadThreshold * 10,
		DownloadThreshold:  cfg.Lifecycle.DownloadThreshold,
		DaysAfterThreshold: cfg.Lifecycle.DaysAfterThreshold,
	})

	filesService := files.New(store, provider, ledger)
	adminService := admin.New(store, provider, ledger)

	limiter, closeLimiter, err := newRateLimiter(cfg.RateLimit)
	if err != nil {
		return fmt.Errorf("failed to initialize rate limiter: %w", err)
	}
	if closeLimiter != nil {
		defer func() { _ = closeLimiter() }()
	}

	lifecycleMetrics := metrics.NewLifecycleMetrics()
	runner := lifecycle.New(store, provider, ledger, lifecycle.Config{
		ExpiryInterval:     cfg.Lifecycle.ExpiryWorkerInterval,
		InactivityInterval: cfg.Lifecycle.InactivityWorkerInterval,
		TierInterval:       cfg.Lifecycle.TierMigrationWorkerInterval,
		PremiumInterval:    cfg.Lifecycle.PremiumExpiryWorkerInterval,
		InactivityDays:     cfg.Lifecycle.InactivityDays,
		HotToColdDays:      cfg.Lifecycle.TierMigrationHotToColdDays,
		ColdToHotDownloads: int64(cfg.Lifecycle.TierMigrationColdToHotDls),
	}, lifecycleMetrics)
	runner.Start(ctx)
	defer runner.Stop()
	logger.Info("Lifecycle workers started")

	jwtService, err := auth.NewJWTService(auth.JWTConfig{
		Secret:               cfg.Auth.JWTSecret,
		Issuer:               cfg.Auth.Issuer,
		AccessTokenDuration:  cfg.Auth.AccessTokenTTL,
		RefreshTokenDuration: cfg.Auth.RefreshTokenTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	server := api.NewServer(cfg.Server, api.Dependencies{
		Store:      store,
		JWTService: jwtService,
		Upload:     uploadManager,
		Download:   downloadService,
		Files:      filesService,
		Admin:      adminService,
		Limiter:    limiter,
	})

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- server.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("FileVault is running", "addr", cfg.Server.Addr)

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("Shutdown signal received, initiating graceful shutdown")
		cancel()

		if err := <-serverDone; err != nil {
			logger.Error("Server shutdown error", "error", err)
			return err
		}
		logger.Info("Server stopped gracefully")

	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("Server error", "error", err)
			return err
		}
		logger.Info("Server stopped")
	}

	return nil
}

func newStorageProvider(ctx context.Context, cfg config.StorageConfig) (storage.Provider, error) {
	storageMetrics := metrics.NewStorageMetrics()

	switch cfg.Provider {
	case "local":
		localCfg := localfs.DefaultConfig(cfg.LocalRoot)
		localCfg.Metrics = storageMetrics
		return localfs.New(localCfg)

	case "s3":
		client, err := s3store.NewClientFromConfig(ctx, cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKeyID, cfg.S3SecretAccessKey, cfg.S3UsePathStyle)
		if err != nil {
			return nil, err
		}
		return s3store.New(ctx, s3store.Config{
			Client:                  client,
			Bucket:                  cfg.S3Bucket,
			KeyPrefix:               cfg.S3KeyPrefix,
			PartSize:                int64(cfg.S3PartSize),
			MaxParallelUploads:      uint(cfg.S3MaxParallelUploads),
			StatsCacheTTL:           cfg.S3StatsCacheTTL,
			Metrics:                 storageMetrics,
			BufferedDeletionEnabled: cfg.BufferedDeletionEnabled,
			DeletionFlushInterval:   cfg.DeletionFlushInterval,
			DeletionBatchSize:       cfg.DeletionBatchSize,
		})

	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}

// newRateLimiter builds the Limiter and, for the badger backend, a
// close func the caller should defer.
func newRateLimiter(cfg config.RateLimitConfig) (*ratelimit.Limiter, func() error, error) {
	if !cfg.Enabled {
		return ratelimit.New(ratelimit.NewMemoryStore(), rateLimitConfig(cfg)), nil, nil
	}

	switch cfg.Backend {
	case "badger":
		store, err := badgerstore.Open(cfg.BadgerPath)
		if err != nil {
			return nil, nil, err
		}
		return ratelimit.New(store, rateLimitConfig(cfg)), store.Close, nil

	default:
		return ratelimit.New(ratelimit.NewMemoryStore(), rateLimitConfig(cfg)), nil, nil
	}
}

func rateLimitConfig(cfg config.RateLimitConfig) ratelimit.Config {
	limits := func(perMin int) ratelimit.Limits {
		return ratelimit.Limits{
			Free:      perMin,
			Premium:   perMin * 2,
			Admin:     perMin * 4,
			Anonymous: perMin / 2,
			Window:    cfg.Window,
		}
	}
	return ratelimit.Config{
		Upload:   limits(cfg.UploadPerMin),
		Download: limits(cfg.DownloadPerMin),
		Auth:     limits(cfg.UploadPerMin),
	}
}

func durationFromSeconds(secs int) time.Duration {
	return time.Duration(secs) * time.Second
}

package config

import (
	"strings"
	"time"

	"github.com/Gaganb-30/cloud-store/internal/bytesize"
)

// GetDefaultConfig returns a Config populated entirely with defaults,
// used when no config file is present.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills any zero-valued fields with sensible defaults.
// Explicit values from file/env are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyMetricsDefaults(&cfg.Metrics)
	applyDatabaseDefaults(&cfg.Database)
	applyServerDefaults(&cfg.Server)
	applyAuthDefaults(&cfg.Auth)
	applyStorageDefaults(&cfg.Storage)
	applyUploadDefaults(&cfg.Upload)
	applyQuotaDefaults(&cfg.Quota)
	applyLifecycleDefaults(&cfg.Lifecycle)
	applyRateLimitDefaults(&cfg.RateLimit)
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SamplingRatio == 0 {
		cfg.SamplingRatio = 0.1
	}
	if cfg.ServiceVersion == "" {
		cfg.ServiceVersion = "dev"
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Addr == "" {
		cfg.Addr = ":9090"
	}
}

func applyDatabaseDefaults(cfg *DatabaseConfig) {
	if cfg.Driver == "" {
		cfg.Driver = "sqlite"
	}
	if cfg.Driver == "sqlite" && cfg.Path == "" {
		cfg.Path = "filevault.db"
	}
	if cfg.MaxOpenConns == 0 {
		cfg.MaxOpenConns = 25
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 5
	}
	if cfg.ConnMaxLifetime == 0 {
		cfg.ConnMaxLifetime = 30 * time.Minute
	}
}

func applyServerDefaults(cfg *ServerConfig) {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
}

func applyAuthDefaults(cfg *AuthConfig) {
	if cfg.Issuer == "" {
		cfg.Issuer = "filevault"
	}
	if cfg.AccessTokenTTL == 0 {
		cfg.AccessTokenTTL = 15 * time.Minute
	}
	if cfg.RefreshTokenTTL == 0 {
		cfg.RefreshTokenTTL = 7 * 24 * time.Hour
	}
	if cfg.MaxFailedLogins == 0 {
		cfg.MaxFailedLogins = 5
	}
	if cfg.LockoutDuration == 0 {
		cfg.LockoutDuration = 15 * time.Minute
	}
}

func applyStorageDefaults(cfg *StorageConfig) {
	if cfg.Provider == "" {
		cfg.Provider = "local"
	}
	if cfg.LocalRoot == "" {
		cfg.LocalRoot = "./data"
	}
	if cfg.S3PartSize == 0 {
		cfg.S3PartSize = bytesize.ByteSize(8 * 1024 * 1024) // 8MiB
	}
	if cfg.S3MaxParallelUploads == 0 {
		cfg.S3MaxParallelUploads = 4
	}
	if cfg.S3StatsCacheTTL == 0 {
		cfg.S3StatsCacheTTL = 5 * time.Minute
	}
	if cfg.DeletionFlushInterval == 0 {
		cfg.DeletionFlushInterval = 10 * time.Second
	}
	if cfg.DeletionBatchSize == 0 {
		cfg.DeletionBatchSize = 1000
	}
}

func applyUploadDefaults(cfg *UploadConfig) {
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = bytesize.ByteSize(5 * 1024 * 1024) // 5MiB
	}
	if cfg.MaxFileSizeFree == 0 {
		cfg.MaxFileSizeFree = bytesize.ByteSize(2 * 1024 * 1024 * 1024) // 2GiB
	}
	if cfg.MaxFileSizePremium == 0 {
		cfg.MaxFileSizePremium = -1
	}
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.PresignedExpirySecs == 0 {
		cfg.PresignedExpirySecs = 900
	}
}

func applyQuotaDefaults(cfg *QuotaConfig) {
	if cfg.FreeBytes == 0 {
		cfg.FreeBytes = bytesize.ByteSize(10 * 1024 * 1024 * 1024) // 10GiB
	}
	if cfg.PremiumBytes == 0 {
		cfg.PremiumBytes = -1
	}
}

func applyLifecycleDefaults(cfg *LifecycleConfig) {
	if cfg.FileExpiryDaysFree == 0 {
		cfg.FileExpiryDaysFree = 30
	}
	if cfg.DownloadThreshold == 0 {
		cfg.DownloadThreshold = 10
	}
	if cfg.DaysAfterThreshold == 0 {
		cfg.DaysAfterThreshold = 90
	}
	if cfg.InactivityDays == 0 {
		cfg.InactivityDays = 90
	}
	if cfg.TierMigrationHotToColdDays == 0 {
		cfg.TierMigrationHotToColdDays = 7
	}
	if cfg.TierMigrationColdToHotDls == 0 {
		cfg.TierMigrationColdToHotDls = 5
	}
	if cfg.ExpiryWorkerInterval == 0 {
		cfg.ExpiryWorkerInterval = time.Hour
	}
	if cfg.InactivityWorkerInterval == 0 {
		cfg.InactivityWorkerInterval = time.Hour
	}
	if cfg.TierMigrationWorkerInterval == 0 {
		cfg.TierMigrationWorkerInterval = time.Hour
	}
	if cfg.PremiumExpiryWorkerInterval == 0 {
		cfg.PremiumExpiryWorkerInterval = time.Hour
	}
}

func applyRateLimitDefaults(cfg *RateLimitConfig) {
	if cfg.Backend == "" {
		cfg.Backend = "memory"
	}
	if cfg.BadgerPath == "" {
		cfg.BadgerPath = "./data/ratelimit"
	}
	if cfg.UploadPerMin == 0 {
		cfg.UploadPerMin = 10
	}
	if cfg.DownloadPerMin == 0 {
		cfg.DownloadPerMin = 60
	}
	if cfg.Window == 0 {
		cfg.Window = time.Minute
	}
}

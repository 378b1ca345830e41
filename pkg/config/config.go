// Package config loads FileVault's layered configuration: defaults,
// then a YAML file, then FILEVAULT_* environment variables, decoded
// into a typed Config struct via mapstructure and checked with
// go-playground/validator.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/Gaganb-30/cloud-store/internal/bytesize"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config is the root FileVault configuration.
//
// Precedence, highest to lowest:
//  1. Environment variables (FILEVAULT_*)
//  2. Configuration file
//  3. Default values
//
// Environment variables are applied only when a configuration file is
// found, and only to keys that the file sets; with no file, Load returns
// the defaults unchanged.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`
	Metrics   MetricsConfig   `mapstructure:"metrics" yaml:"metrics"`
	Database  DatabaseConfig  `mapstructure:"database" yaml:"database"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Auth      AuthConfig      `mapstructure:"auth" yaml:"auth"`
	Storage   StorageConfig   `mapstructure:"storage" yaml:"storage"`
	Upload    UploadConfig    `mapstructure:"upload" yaml:"upload"`
	Quota     QuotaConfig     `mapstructure:"quota" yaml:"quota"`
	Lifecycle LifecycleConfig `mapstructure:"lifecycle" yaml:"lifecycle"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit"`
}

// LoggingConfig controls log/slog output behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry tracing. PyroscopeAddr is
// accepted but not read by any component; no profiler is started.
type TelemetryConfig struct {
	Enabled        bool    `mapstructure:"enabled" yaml:"enabled"`
	Endpoint       string  `mapstructure:"endpoint" yaml:"endpoint"`
	SamplingRatio  float64 `mapstructure:"sampling_ratio" validate:"gte=0,lte=1" yaml:"sampling_ratio"`
	PyroscopeAddr  string  `mapstructure:"pyroscope_addr" yaml:"pyroscope_addr"`
	ServiceVersion string  `mapstructure:"service_version" yaml:"service_version"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr    string `mapstructure:"addr" yaml:"addr"`
}

// DatabaseConfig configures the metadata store backend.
type DatabaseConfig struct {
	// Driver is one of "postgres" or "sqlite".
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres sqlite" yaml:"driver"`

	// DSN is the Postgres connection string, used when Driver == postgres.
	DSN string `mapstructure:"dsn" yaml:"dsn"`

	// Path is the SQLite database file path, used when Driver == sqlite.
	Path string `mapstructure:"path" yaml:"path"`

	MaxOpenConns    int           `mapstructure:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" yaml:"conn_max_lifetime"`
}

// ServerConfig controls the HTTP API server.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" validate:"required" yaml:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" validate:"required,gt=0" yaml:"request_timeout"`
}

// AuthConfig configures JWT issuance.
type AuthConfig struct {
	JWTSecret          string        `mapstructure:"jwt_secret" validate:"required,min=32" yaml:"jwt_secret"`
	Issuer             string        `mapstructure:"issuer" yaml:"issuer"`
	AccessTokenTTL     time.Duration `mapstructure:"access_token_ttl" validate:"required,gt=0" yaml:"access_token_ttl"`
	RefreshTokenTTL    time.Duration `mapstructure:"refresh_token_ttl" validate:"required,gt=0" yaml:"refresh_token_ttl"`
	MaxFailedLogins    int           `mapstructure:"max_failed_logins" yaml:"max_failed_logins"`
	LockoutDuration    time.Duration `mapstructure:"lockout_duration" yaml:"lockout_duration"`
}

// StorageConfig selects and configures the blob storage backend.
type StorageConfig struct {
	// Provider is one of "local" or "s3".
	Provider string `mapstructure:"provider" validate:"required,oneof=local s3" yaml:"provider"`

	LocalRoot string `mapstructure:"local_root" yaml:"local_root"`

	S3Bucket             string            `mapstructure:"s3_bucket" yaml:"s3_bucket"`
	S3Region             string            `mapstructure:"s3_region" yaml:"s3_region"`
	S3Endpoint           string            `mapstructure:"s3_endpoint" yaml:"s3_endpoint"`
	S3AccessKeyID        string            `mapstructure:"s3_access_key_id" yaml:"s3_access_key_id"`
	S3SecretAccessKey    string            `mapstructure:"s3_secret_access_key" yaml:"s3_secret_access_key"`
	S3UsePathStyle       bool              `mapstructure:"s3_use_path_style" yaml:"s3_use_path_style"`
	S3KeyPrefix          string            `mapstructure:"s3_key_prefix" yaml:"s3_key_prefix"`
	S3PartSize           bytesize.ByteSize `mapstructure:"s3_part_size" yaml:"s3_part_size"`
	S3MaxParallelUploads int               `mapstructure:"s3_max_parallel_uploads" yaml:"s3_max_parallel_uploads"`
	S3StatsCacheTTL      time.Duration     `mapstructure:"s3_stats_cache_ttl" yaml:"s3_stats_cache_ttl"`

	BufferedDeletionEnabled bool          `mapstructure:"buffered_deletion_enabled" yaml:"buffered_deletion_enabled"`
	DeletionFlushInterval   time.Duration `mapstructure:"deletion_flush_interval" yaml:"deletion_flush_interval"`
	DeletionBatchSize       uint          `mapstructure:"deletion_batch_size" yaml:"deletion_batch_size"`
}

// UploadConfig controls chunked/direct upload behavior.
type UploadConfig struct {
	ChunkSize             bytesize.ByteSize `mapstructure:"chunk_size" yaml:"chunk_size"`
	MaxFileSizeFree       bytesize.ByteSize `mapstructure:"max_file_size_free" yaml:"max_file_size_free"`
	MaxFileSizePremium    int64             `mapstructure:"max_file_size_premium" yaml:"max_file_size_premium"`
	SessionTTL            time.Duration     `mapstructure:"session_ttl" yaml:"session_ttl"`
	PresignedExpirySecs   int               `mapstructure:"presigned_expiry_seconds" yaml:"presigned_expiry_seconds"`
}

// QuotaConfig sets per-role storage quotas.
type QuotaConfig struct {
	FreeBytes    bytesize.ByteSize `mapstructure:"free_bytes" yaml:"free_bytes"`
	PremiumBytes int64             `mapstructure:"premium_bytes" yaml:"premium_bytes"` // -1 = unlimited
}

// LifecycleConfig controls the four periodic lifecycle workers.
type LifecycleConfig struct {
	FileExpiryDaysFree          int           `mapstructure:"file_expiry_days_free" yaml:"file_expiry_days_free"`
	DownloadThreshold           int           `mapstructure:"expiry_download_threshold" yaml:"expiry_download_threshold"`
	DaysAfterThreshold          int           `mapstructure:"expiry_days_after_threshold" yaml:"expiry_days_after_threshold"`
	InactivityDays              int           `mapstructure:"inactivity_days" yaml:"inactivity_days"`
	TierMigrationHotToColdDays  int           `mapstructure:"tier_migration_hot_to_cold_days" yaml:"tier_migration_hot_to_cold_days"`
	TierMigrationColdToHotDls   int           `mapstructure:"tier_migration_cold_to_hot_downloads" yaml:"tier_migration_cold_to_hot_downloads"`
	ExpiryWorkerInterval        time.Duration `mapstructure:"expiry_worker_interval" yaml:"expiry_worker_interval"`
	InactivityWorkerInterval    time.Duration `mapstructure:"inactivity_worker_interval" yaml:"inactivity_worker_interval"`
	TierMigrationWorkerInterval time.Duration `mapstructure:"tier_migration_worker_interval" yaml:"tier_migration_worker_interval"`
	PremiumExpiryWorkerInterval time.Duration `mapstructure:"premium_expiry_worker_interval" yaml:"premium_expiry_worker_interval"`
}

// RateLimitConfig controls request admission.
type RateLimitConfig struct {
	Enabled        bool          `mapstructure:"enabled" yaml:"enabled"`
	Backend        string        `mapstructure:"backend" validate:"omitempty,oneof=memory badger" yaml:"backend"`
	BadgerPath     string        `mapstructure:"badger_path" yaml:"badger_path"`
	UploadPerMin   int           `mapstructure:"upload_per_minute" yaml:"upload_per_minute"`
	DownloadPerMin int           `mapstructure:"download_per_minute" yaml:"download_per_minute"`
	Window         time.Duration `mapstructure:"window" yaml:"window"`
}

// Load reads configuration from file, environment, and defaults, then
// validates it. When no file is found, Load validates and returns the
// defaults without reading environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	cfg := GetDefaultConfig()
	if !found {
		if err := Validate(cfg); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
		return cfg, nil
	}

	if err := v.Unmarshal(cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks struct tags via go-playground/validator.
func Validate(cfg *Config) error {
	return validator.New().Struct(cfg)
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("FILEVAULT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}

	v.AddConfigPath(getConfigDir())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
	)
}

func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}
		switch val := data.(type) {
		case string:
			return bytesize.ParseByteSize(val)
		case int:
			return bytesize.ByteSize(val), nil
		case int64:
			return bytesize.ByteSize(val), nil
		case uint64:
			return bytesize.ByteSize(val), nil
		case float64:
			return bytesize.ByteSize(val), nil
		default:
			return data, nil
		}
	}
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch val := data.(type) {
		case string:
			return time.ParseDuration(val)
		case int:
			return time.Duration(val), nil
		case int64:
			return time.Duration(val), nil
		case float64:
			return time.Duration(val), nil
		default:
			return data, nil
		}
	}
}

func getConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "filevault")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "filevault")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists reports whether a config file exists at the
// default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	tmpDir := t.TempDir()

	// With no file, Load validates the defaults, whose JWT secret is empty.
	if _, err := Load(filepath.Join(tmpDir, "missing.yaml")); err == nil {
		t.Fatal("expected Load to reject the defaults' empty JWT secret")
	}

	cfg := GetDefaultConfig()
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format = %q, want text", cfg.Logging.Format)
	}
	if cfg.Storage.Provider != "local" {
		t.Errorf("Storage.Provider = %q, want local", cfg.Storage.Provider)
	}
	if cfg.Auth.JWTSecret != "" {
		t.Errorf("expected the default JWTSecret to be empty")
	}
}

func TestLoad_FromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
logging:
  level: DEBUG
storage:
  provider: s3
  s3_bucket: my-bucket
auth:
  jwt_secret: "test-secret-key-for-testing-minimum-32-chars"
database:
  driver: sqlite
  path: "` + filepath.ToSlash(filepath.Join(tmpDir, "test.db")) + `"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Logging.Level = %q, want DEBUG", cfg.Logging.Level)
	}
	if cfg.Storage.Provider != "s3" {
		t.Errorf("Storage.Provider = %q, want s3", cfg.Storage.Provider)
	}
	if cfg.Storage.S3Bucket != "my-bucket" {
		t.Errorf("Storage.S3Bucket = %q, want my-bucket", cfg.Storage.S3Bucket)
	}
	if cfg.Upload.ChunkSize == 0 {
		t.Error("expected ChunkSize default to be applied")
	}
}

func TestValidate_RejectsShortSecret(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Auth.JWTSecret = "too-short"

	if err := Validate(cfg); err == nil {
		t.Error("expected validation error for short JWT secret")
	}
}

func TestValidate_RejectsUnknownStorageProvider(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Auth.JWTSecret = "test-secret-key-for-testing-minimum-32-chars"
	cfg.Storage.Provider = "ftp"

	if err := Validate(cfg); err == nil {
		t.Error("expected validation error for unrecognized storage provider")
	}
}

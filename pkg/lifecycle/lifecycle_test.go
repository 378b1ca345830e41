package lifecycle

import (
	"testing"
	"time"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.applyDefaults()

	if cfg.ExpiryInterval != time.Hour {
		t.Errorf("ExpiryInterval default = %v, want 1h", cfg.ExpiryInterval)
	}
	if cfg.InactivityDays != 90 {
		t.Errorf("InactivityDays default = %d, want 90", cfg.InactivityDays)
	}
	if cfg.HotToColdDays != 7 {
		t.Errorf("HotToColdDays default = %d, want 7", cfg.HotToColdDays)
	}
	if cfg.ColdToHotDownloads != 5 {
		t.Errorf("ColdToHotDownloads default = %d, want 5", cfg.ColdToHotDownloads)
	}
	if cfg.PremiumGraceDays != 5 {
		t.Errorf("PremiumGraceDays default = %d, want 5", cfg.PremiumGraceDays)
	}
	if cfg.BatchSize != defaultBatchSize {
		t.Errorf("BatchSize default = %d, want %d", cfg.BatchSize, defaultBatchSize)
	}
}

func TestConfig_ApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := Config{InactivityDays: 30, BatchSize: 50}
	cfg.applyDefaults()

	if cfg.InactivityDays != 30 {
		t.Errorf("explicit InactivityDays overwritten: got %d", cfg.InactivityDays)
	}
	if cfg.BatchSize != 50 {
		t.Errorf("explicit BatchSize overwritten: got %d", cfg.BatchSize)
	}
	if cfg.HotToColdDays != 7 {
		t.Errorf("HotToColdDays should still default to 7, got %d", cfg.HotToColdDays)
	}
}

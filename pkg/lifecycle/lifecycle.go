// Package lifecycle runs the periodic background workers that expire,
// evict, and re-tier files, and downgrade lapsed premium accounts.
// Every worker shares the same sweep-on-ticker-and-on-shutdown shape:
// no worker holds a long transaction, and a failed item is simply
// retried on the next cycle.
package lifecycle

import (
	"context"
	"sync"
	"time"

	"github.com/Gaganb-30/cloud-store/internal/logger"
	"github.com/Gaganb-30/cloud-store/pkg/metadatastore"
	"github.com/Gaganb-30/cloud-store/pkg/metrics"
	"github.com/Gaganb-30/cloud-store/pkg/model"
	"github.com/Gaganb-30/cloud-store/pkg/quota"
	"github.com/Gaganb-30/cloud-store/pkg/storage"
)

// defaultBatchSize bounds how many items one worker pass touches.
const defaultBatchSize = 100

// Config controls worker intervals and thresholds. Zero-valued fields
// fall back to spec defaults in New.
type Config struct {
	ExpiryInterval     time.Duration
	InactivityInterval time.Duration
	TierInterval       time.Duration
	PremiumInterval    time.Duration

	InactivityDays     int
	HotToColdDays      int
	ColdToHotDownloads int64
	PremiumGraceDays   int
	BatchSize          int
}

func (c *Config) applyDefaults() {
	if c.ExpiryInterval == 0 {
		c.ExpiryInterval = time.Hour
	}
	if c.InactivityInterval == 0 {
		c.InactivityInterval = time.Hour
	}
	if c.TierInterval == 0 {
		c.TierInterval = time.Hour
	}
	if c.PremiumInterval == 0 {
		c.PremiumInterval = time.Hour
	}
	if c.InactivityDays == 0 {
		c.InactivityDays = 90
	}
	if c.HotToColdDays == 0 {
		c.HotToColdDays = 7
	}
	if c.ColdToHotDownloads == 0 {
		c.ColdToHotDownloads = 5
	}
	if c.PremiumGraceDays == 0 {
		c.PremiumGraceDays = 5
	}
	if c.BatchSize == 0 {
		c.BatchSize = defaultBatchSize
	}
}

// Runner owns the four lifecycle workers and their goroutines.
type Runner struct {
	store   *metadatastore.Store
	storage storage.Provider
	quota   *quota.Ledger
	cfg     Config
	metrics *metrics.LifecycleMetrics

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(store *metadatastore.Store, provider storage.Provider, ledger *quota.Ledger, cfg Config, m *metrics.LifecycleMetrics) *Runner {
	cfg.applyDefaults()
	return &Runner{store: store, storage: provider, quota: ledger, cfg: cfg, metrics: m}
}

// Start launches all four workers. It returns immediately; workers run
// until the supplied context is cancelled or Stop is called.
func (r *Runner) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)

	r.spawn(ctx, "expiry", r.cfg.ExpiryInterval, r.runExpiry)
	r.spawn(ctx, "inactivity", r.cfg.InactivityInterval, r.runInactivity)
	r.spawn(ctx, "tier_migration", r.cfg.TierInterval, r.runTierMigration)
	r.spawn(ctx, "premium_expiry", r.cfg.PremiumInterval, r.runPremiumExpiry)
}

// Stop cancels all workers and blocks until they have exited.
func (r *Runner) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
}

func (r *Runner) spawn(ctx context.Context, name string, interval time.Duration, cycle func(context.Context) (processed, failed int)) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		run := func() {
			start := time.Now()
			processed, failed := cycle(ctx)
			dur := time.Since(start)

			logger.Info("lifecycle worker cycle complete",
				"worker", name, "processed", processed, "failed", failed, "durationMs", dur.Milliseconds())
			r.metrics.ObserveCycle(name, dur, processed, failed)
		}

		for {
			select {
			case <-ctx.Done():
				run()
				return
			case <-ticker.C:
				run()
			}
		}
	}()
}

// deleteAndSoftDelete runs the shared 4.4.1/4.4.2 pipeline: delete the
// object from storage (absent counts as success), soft-delete the row,
// and release the owner's quota.
func (r *Runner) deleteAndSoftDelete(ctx context.Context, f *model.File) error {
	if _, err := r.storage.Delete(ctx, f.StorageKey, f.StorageTier); err != nil {
		return err
	}
	if err := r.store.SoftDeleteFile(ctx, f.ID); err != nil {
		return err
	}
	return r.quota.RemoveFile(ctx, f.UserID, f.Size)
}

package lifecycle

import (
	"context"
	"time"

	"github.com/Gaganb-30/cloud-store/internal/logger"
	"github.com/Gaganb-30/cloud-store/pkg/storage"
)

// runTierMigration implements 4.4.3. Hot→cold is evaluated before
// cold→hot each cycle; a file just flipped one direction is not
// reconsidered for the other until the next cycle, since each pass
// reads its own candidate list up front.
func (r *Runner) runTierMigration(ctx context.Context) (processed, failed int) {
	hotCutoff := time.Now().AddDate(0, 0, -r.cfg.HotToColdDays)

	hotToCold, err := r.store.ListHotToColdCandidates(ctx, hotCutoff, r.cfg.BatchSize)
	if err != nil {
		logger.Error("lifecycle: failed to list hot-to-cold candidates", "error", err)
		return 0, 0
	}
	coldToHot, err := r.store.ListColdToHotCandidates(ctx, r.cfg.ColdToHotDownloads, r.cfg.BatchSize)
	if err != nil {
		logger.Error("lifecycle: failed to list cold-to-hot candidates", "error", err)
		return 0, 0
	}

	for _, f := range hotToCold {
		if err := r.storage.Migrate(ctx, f.StorageKey, storage.TierHot, storage.TierCold); err != nil {
			logger.Warn("lifecycle: failed to migrate file to cold", "fileId", f.ID, "error", err)
			failed++
			continue
		}
		if err := r.store.UpdateFileTier(ctx, f.ID, storage.TierCold); err != nil {
			logger.Warn("lifecycle: failed to record cold tier", "fileId", f.ID, "error", err)
			failed++
			continue
		}
		processed++
	}

	for _, f := range coldToHot {
		if err := r.storage.Migrate(ctx, f.StorageKey, storage.TierCold, storage.TierHot); err != nil {
			logger.Warn("lifecycle: failed to migrate file to hot", "fileId", f.ID, "error", err)
			failed++
			continue
		}
		if err := r.store.UpdateFileTier(ctx, f.ID, storage.TierHot); err != nil {
			logger.Warn("lifecycle: failed to record hot tier", "fileId", f.ID, "error", err)
			failed++
			continue
		}
		processed++
	}

	return processed, failed
}

package lifecycle

import (
	"context"
	"time"

	"github.com/Gaganb-30/cloud-store/internal/logger"
)

// runInactivity implements 4.4.2: files untouched past InactivityDays
// get the same delete pipeline as expiry, regardless of owner role.
func (r *Runner) runInactivity(ctx context.Context) (processed, failed int) {
	cutoff := time.Now().AddDate(0, 0, -r.cfg.InactivityDays)

	files, err := r.store.ListInactiveFiles(ctx, cutoff, r.cfg.BatchSize)
	if err != nil {
		logger.Error("lifecycle: failed to list inactive files", "error", err)
		return 0, 0
	}

	for _, f := range files {
		if err := r.deleteAndSoftDelete(ctx, f); err != nil {
			logger.Warn("lifecycle: failed to evict inactive file", "fileId", f.ID, "error", err)
			failed++
			continue
		}
		processed++
	}

	return processed, failed
}

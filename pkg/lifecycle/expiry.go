package lifecycle

import (
	"context"
	"time"

	"github.com/Gaganb-30/cloud-store/internal/logger"
)

// hardDeleteGraceDays is how many days past its LastAccessAt a
// soft-deleted file's row survives before the expiry worker removes it
// for good. Files carry no deletion timestamp, so a row whose last access
// is already older than this is removed on the next cycle.
const hardDeleteGraceDays = 7

// runExpiry implements 4.4.1: delete the storage object for every file
// past ExpiresAt, soft-delete the row, then hard-delete soft-deleted rows
// whose LastAccessAt is older than the grace period.
func (r *Runner) runExpiry(ctx context.Context) (processed, failed int) {
	now := time.Now()

	expired, err := r.store.ListExpiredFiles(ctx, now, r.cfg.BatchSize)
	if err != nil {
		logger.Error("lifecycle: failed to list expired files", "error", err)
		return 0, 0
	}

	for _, f := range expired {
		if err := r.deleteAndSoftDelete(ctx, f); err != nil {
			logger.Warn("lifecycle: failed to expire file", "fileId", f.ID, "error", err)
			failed++
			continue
		}
		processed++
	}

	cutoff := now.AddDate(0, 0, -hardDeleteGraceDays)
	stale, err := r.store.ListSoftDeletedBefore(ctx, cutoff, r.cfg.BatchSize)
	if err != nil {
		logger.Error("lifecycle: failed to list soft-deleted files", "error", err)
		return processed, failed
	}

	for _, f := range stale {
		if err := r.store.HardDeleteFile(ctx, f.ID); err != nil {
			logger.Warn("lifecycle: failed to hard-delete file", "fileId", f.ID, "error", err)
			failed++
			continue
		}
		processed++
	}

	return processed, failed
}

package lifecycle

import (
	"context"
	"time"

	"github.com/Gaganb-30/cloud-store/internal/logger"
	"github.com/Gaganb-30/cloud-store/pkg/model"
)

// runPremiumExpiry implements 4.4.4: lapsed premium accounts revert to
// free and get a grace window on any file that does not already carry
// an expiry. Admins are never downgraded (ListExpiredPremiumUsers only
// returns role=premium rows, so none appear here).
func (r *Runner) runPremiumExpiry(ctx context.Context) (processed, failed int) {
	now := time.Now()

	users, err := r.store.ListExpiredPremiumUsers(ctx, now, r.cfg.BatchSize)
	if err != nil {
		logger.Error("lifecycle: failed to list expired premium users", "error", err)
		return 0, 0
	}

	for _, u := range users {
		if err := r.store.UpdateUserRole(ctx, u.ID, model.RoleFree, nil); err != nil {
			logger.Warn("lifecycle: failed to downgrade user", "userId", u.ID, "error", err)
			failed++
			continue
		}

		grace := now.AddDate(0, 0, r.cfg.PremiumGraceDays)
		if err := r.store.SetExpiryForUserFilesWithoutOne(ctx, u.ID, grace); err != nil {
			logger.Warn("lifecycle: failed to set grace expiry", "userId", u.ID, "error", err)
			failed++
			continue
		}

		processed++
	}

	return processed, failed
}

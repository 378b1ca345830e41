// Package admin implements the privileged account and file operations
// available to admin principals: role changes, account standing, bulk
// file deletion, forced tier migration, and manual expiry overrides.
package admin

import (
	"context"
	"errors"
	"time"

	"github.com/Gaganb-30/cloud-store/internal/logger"
	"github.com/Gaganb-30/cloud-store/pkg/metadatastore"
	"github.com/Gaganb-30/cloud-store/pkg/model"
	"github.com/Gaganb-30/cloud-store/pkg/quota"
	"github.com/Gaganb-30/cloud-store/pkg/storage"
)

var (
	ErrCannotTargetAdmin = errors.New("admin: cannot target an admin account")
	ErrTooManyIDs        = errors.New("admin: bulk operation exceeds the 100-item cap")
)

// maxBulkDeleteItems bounds a single bulkDelete call.
const maxBulkDeleteItems = 100

// demoteGraceDays is the expiry window demote sets on files that
// currently have none.
const demoteGraceDays = 5

// Service implements the admin operations of spec.md §4.7.
type Service struct {
	store   *metadatastore.Store
	storage storage.Provider
	quota   *quota.Ledger
}

func New(store *metadatastore.Store, provider storage.Provider, ledger *quota.Ledger) *Service {
	return &Service{store: store, storage: provider, quota: ledger}
}

// Promote sets role=premium. If durationMonths is nil the subscription
// never expires. Clears ExpiresAt on the user's existing files.
func (s *Service) Promote(ctx context.Context, userID string, durationMonths *int) error {
	var expiresAt *time.Time
	if durationMonths != nil {
		t := time.Now().AddDate(0, *durationMonths, 0)
		expiresAt = &t
	}

	if err := s.store.UpdateUserRole(ctx, userID, model.RolePremium, expiresAt); err != nil {
		return err
	}
	if err := s.quota.ApplyRoleChange(ctx, userID, model.RolePremium, nil); err != nil {
		return err
	}
	return s.store.ClearExpiryForUser(ctx, userID)
}

// Demote sets role=free and gives currently-unexpiring files a grace
// window before the expiry worker would otherwise treat them as
// permanent.
func (s *Service) Demote(ctx context.Context, userID string) error {
	if err := s.store.UpdateUserRole(ctx, userID, model.RoleFree, nil); err != nil {
		return err
	}
	if err := s.quota.ApplyRoleChange(ctx, userID, model.RoleFree, nil); err != nil {
		return err
	}

	grace := time.Now().AddDate(0, 0, demoteGraceDays)
	return s.store.SetExpiryForUserFilesWithoutOne(ctx, userID, grace)
}

// Block revokes access, deletes every object the user owns from
// storage, hard-deletes the File rows, and zeroes their quota. Admins
// cannot be blocked.
func (s *Service) Block(ctx context.Context, userID string) error {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Role == model.RoleAdmin {
		return ErrCannotTargetAdmin
	}

	files, err := s.store.ListFilesByUser(ctx, userID)
	if err != nil {
		return err
	}

	for _, f := range files {
		if !f.IsDeleted {
			if _, err := s.storage.Delete(ctx, f.StorageKey, f.StorageTier); err != nil {
				logger.Warn("admin: failed to delete file object during block", "fileId", f.ID, "error", err)
			}
		}
		if err := s.store.HardDeleteFile(ctx, f.ID); err != nil {
			logger.Warn("admin: failed to hard-delete file record during block", "fileId", f.ID, "error", err)
		}
	}

	if err := s.store.ResetQuotaUsage(ctx, userID); err != nil {
		return err
	}

	return s.store.UpdateUserStatus(ctx, userID, model.StatusBlocked)
}

// Restrict sets status=restricted. Files remain accessible; only
// upload actions are denied (enforced by the rate limiter).
func (s *Service) Restrict(ctx context.Context, userID string) error {
	return s.store.UpdateUserStatus(ctx, userID, model.StatusRestricted)
}

// Unblock sets status=active. Files deleted by a prior block are not
// restored.
func (s *Service) Unblock(ctx context.Context, userID string) error {
	return s.store.UpdateUserStatus(ctx, userID, model.StatusActive)
}

// BulkDeleteResult categorizes the outcome for every requested file.
type BulkDeleteResult struct {
	Deleted []string
	Skipped []SkipReason
	Failed  []SkipReason
}

// SkipReason names why one file in a bulk operation did not succeed.
type SkipReason struct {
	ID     string
	Reason string
}

// BulkDelete deletes up to 100 files, best-effort per file.
func (s *Service) BulkDelete(ctx context.Context, fileIDs []string) (BulkDeleteResult, error) {
	if len(fileIDs) > maxBulkDeleteItems {
		return BulkDeleteResult{}, ErrTooManyIDs
	}

	var result BulkDeleteResult
	for _, id := range fileIDs {
		f, err := s.store.GetFile(ctx, id)
		if err != nil {
			if errors.Is(err, metadatastore.ErrNotFound) {
				result.Skipped = append(result.Skipped, SkipReason{ID: id, Reason: "not found or already deleted"})
				continue
			}
			result.Failed = append(result.Failed, SkipReason{ID: id, Reason: err.Error()})
			continue
		}

		if _, err := s.storage.Delete(ctx, f.StorageKey, f.StorageTier); err != nil {
			result.Failed = append(result.Failed, SkipReason{ID: id, Reason: err.Error()})
			continue
		}
		if err := s.store.SoftDeleteFile(ctx, f.ID); err != nil {
			result.Failed = append(result.Failed, SkipReason{ID: id, Reason: err.Error()})
			continue
		}
		if err := s.quota.RemoveFile(ctx, f.UserID, f.Size); err != nil {
			result.Failed = append(result.Failed, SkipReason{ID: id, Reason: err.Error()})
			continue
		}

		result.Deleted = append(result.Deleted, id)
	}

	return result, nil
}

// ForceMigrate moves a file to tier immediately, bypassing the
// lifecycle tier-migration worker's access-pattern heuristics.
func (s *Service) ForceMigrate(ctx context.Context, fileID string, tier storage.Tier) error {
	f, err := s.store.GetFile(ctx, fileID)
	if err != nil {
		return err
	}
	if f.StorageTier == tier {
		return nil
	}

	if err := s.storage.Migrate(ctx, f.StorageKey, f.StorageTier, tier); err != nil {
		return err
	}
	return s.store.UpdateFileTier(ctx, fileID, tier)
}

// SetExpiry overrides a file's expiry, or clears it when when is nil.
func (s *Service) SetExpiry(ctx context.Context, fileID string, when *time.Time) error {
	return s.store.SetFileExpiry(ctx, fileID, when)
}

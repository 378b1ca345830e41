package metadatastore

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Gaganb-30/cloud-store/pkg/model"
	"github.com/Gaganb-30/cloud-store/pkg/storage"
)

func (s *Store) CreateFile(ctx context.Context, f *model.File) error {
	f.CreatedAt = time.Now()
	return s.db.WithContext(ctx).Create(f).Error
}

func (s *Store) GetFile(ctx context.Context, id string) (*model.File, error) {
	var f model.File
	if err := s.db.WithContext(ctx).Where("id = ? AND is_deleted = ?", id, false).First(&f).Error; err != nil {
		return nil, convertNotFound(err)
	}
	return &f, nil
}

func (s *Store) GetFileByStorageKey(ctx context.Context, key string) (*model.File, error) {
	var f model.File
	if err := s.db.WithContext(ctx).Where("storage_key = ?", key).First(&f).Error; err != nil {
		return nil, convertNotFound(err)
	}
	return &f, nil
}

func (s *Store) GetFileByShareToken(ctx context.Context, token string) (*model.File, error) {
	var f model.File
	if err := s.db.WithContext(ctx).Where("share_token = ? AND is_deleted = ?", token, false).First(&f).Error; err != nil {
		return nil, convertNotFound(err)
	}
	return &f, nil
}

// SoftDeleteFile marks a file deleted without removing the row, done
// after the underlying storage object has already been removed.
func (s *Store) SoftDeleteFile(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Model(&model.File{}).
		Where("id = ?", id).
		Update("is_deleted", true).Error
}

// HardDeleteFile removes the row entirely, used after the grace
// period following a soft delete.
func (s *Store) HardDeleteFile(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.File{}).Error
}

// ListFilesByUser returns every file a user owns, including
// soft-deleted ones, used by the admin block operation to sweep a
// user's entire file set.
func (s *Store) ListFilesByUser(ctx context.Context, userID string) ([]*model.File, error) {
	var files []*model.File
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&files).Error
	return files, err
}

// ListFilesForUser returns a user's non-deleted files, optionally
// scoped to one folder. A nil folderID lists root-level files.
func (s *Store) ListFilesForUser(ctx context.Context, userID string, folderID *string) ([]*model.File, error) {
	var files []*model.File
	q := s.db.WithContext(ctx).Where("user_id = ? AND is_deleted = ?", userID, false)
	if folderID == nil {
		q = q.Where("folder_id IS NULL")
	} else {
		q = q.Where("folder_id = ?", *folderID)
	}
	err := q.Find(&files).Error
	return files, err
}

// RenameFile updates OriginalName.
func (s *Store) RenameFile(ctx context.Context, id string, name string) error {
	return s.db.WithContext(ctx).Model(&model.File{}).
		Where("id = ?", id).
		Update("original_name", name).Error
}

// MoveFile updates FolderID; a nil folderID moves the file to the
// user's root.
func (s *Store) MoveFile(ctx context.Context, id string, folderID *string) error {
	return s.db.WithContext(ctx).Model(&model.File{}).
		Where("id = ?", id).
		Update("folder_id", folderID).Error
}

// ListExpiredFiles returns non-deleted files whose ExpiresAt has
// passed, for the expiry worker.
func (s *Store) ListExpiredFiles(ctx context.Context, now time.Time, limit int) ([]*model.File, error) {
	var files []*model.File
	err := s.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ? AND is_deleted = ?", now, false).
		Limit(limit).
		Find(&files).Error
	return files, err
}

// ListSoftDeletedBefore returns soft-deleted files whose LastAccessAt is at
// or before cutoff. Files carry no deletion timestamp, so the hard-delete
// grace period is measured from the last access, not from the soft delete.
func (s *Store) ListSoftDeletedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*model.File, error) {
	var files []*model.File
	err := s.db.WithContext(ctx).
		Where("is_deleted = ? AND last_access_at <= ?", true, cutoff).
		Limit(limit).
		Find(&files).Error
	return files, err
}

// ListInactiveFiles returns non-deleted files whose LastAccessAt is
// older than cutoff, for the inactivity worker.
func (s *Store) ListInactiveFiles(ctx context.Context, cutoff time.Time, limit int) ([]*model.File, error) {
	var files []*model.File
	err := s.db.WithContext(ctx).
		Where("last_access_at <= ? AND is_deleted = ?", cutoff, false).
		Limit(limit).
		Find(&files).Error
	return files, err
}

// ListHotToColdCandidates returns non-deleted hot-tier files whose
// LastAccessAt is at or before cutoff. ListColdToHotCandidates below
// filters cold-tier files by download count in the query itself.
func (s *Store) ListHotToColdCandidates(ctx context.Context, cutoff time.Time, limit int) ([]*model.File, error) {
	var files []*model.File
	err := s.db.WithContext(ctx).
		Where("storage_tier = ? AND last_access_at <= ? AND is_deleted = ?", storage.TierHot, cutoff, false).
		Limit(limit).
		Find(&files).Error
	return files, err
}

func (s *Store) ListColdToHotCandidates(ctx context.Context, minDownloads int64, limit int) ([]*model.File, error) {
	var files []*model.File
	err := s.db.WithContext(ctx).
		Where("storage_tier = ? AND downloads >= ? AND is_deleted = ?", storage.TierCold, minDownloads, false).
		Limit(limit).
		Find(&files).Error
	return files, err
}

// UpdateFileTier sets the new storage tier after a successful migrate.
func (s *Store) UpdateFileTier(ctx context.Context, id string, tier storage.Tier) error {
	return s.db.WithContext(ctx).Model(&model.File{}).
		Where("id = ?", id).
		Update("storage_tier", tier).Error
}

// SetFileExpiry sets or clears ExpiresAt, used by admin setExpiry and the
// anti-abuse shortening rule.
func (s *Store) SetFileExpiry(ctx context.Context, id string, expiresAt *time.Time) error {
	return s.db.WithContext(ctx).Model(&model.File{}).
		Where("id = ?", id).
		Update("expires_at", expiresAt).Error
}

// ClearExpiryForUser removes ExpiresAt from every non-deleted file the
// user owns, used by admin promote.
func (s *Store) ClearExpiryForUser(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).Model(&model.File{}).
		Where("user_id = ? AND is_deleted = ?", userID, false).
		Update("expires_at", nil).Error
}

// SetExpiryForUserFilesWithoutOne sets ExpiresAt on every non-deleted,
// currently-unexpiring file the user owns, used by admin demote and the
// premium-expiry worker's grace window.
func (s *Store) SetExpiryForUserFilesWithoutOne(ctx context.Context, userID string, expiresAt time.Time) error {
	return s.db.WithContext(ctx).Model(&model.File{}).
		Where("user_id = ? AND is_deleted = ? AND expires_at IS NULL", userID, false).
		Update("expires_at", expiresAt).Error
}

// RecordDownload atomically increments the download counter, updates
// LastAccessAt, and appends clientIP to UniqueDownloadIPs if it is new
// and the set has room. Returns the updated file.
func (s *Store) RecordDownload(ctx context.Context, id string, clientIP string, now time.Time, ipCap int) (*model.File, error) {
	var f *model.File
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row model.File
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&row).Error; err != nil {
			return convertNotFound(err)
		}

		row.Downloads++
		row.LastAccessAt = now

		seen := false
		for _, ip := range row.UniqueDownloadIPs {
			if ip == clientIP {
				seen = true
				break
			}
		}
		if !seen && len(row.UniqueDownloadIPs) < ipCap {
			row.UniqueDownloadIPs = append(row.UniqueDownloadIPs, clientIP)
		}

		if err := tx.Model(&model.File{}).Where("id = ?", id).Updates(map[string]interface{}{
			"downloads":           row.Downloads,
			"last_access_at":      row.LastAccessAt,
			"unique_download_ips": row.UniqueDownloadIPs,
		}).Error; err != nil {
			return err
		}

		f = &row
		return nil
	})
	return f, err
}

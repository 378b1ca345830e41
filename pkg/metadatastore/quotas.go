package metadatastore

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Gaganb-30/cloud-store/pkg/model"
)

func (s *Store) GetQuota(ctx context.Context, userID string) (*model.Quota, error) {
	var q model.Quota
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&q).Error; err != nil {
		return nil, convertNotFound(err)
	}
	return &q, nil
}

func (s *Store) CreateQuota(ctx context.Context, q *model.Quota) error {
	return s.db.WithContext(ctx).Create(q).Error
}

// SetQuotaLimits updates the limits triplet, used on role change.
func (s *Store) SetQuotaLimits(ctx context.Context, userID string, maxStorage, maxFileSize, maxFiles int64) error {
	return s.db.WithContext(ctx).Model(&model.Quota{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"max_storage":   maxStorage,
			"max_file_size": maxFileSize,
			"max_files":     maxFiles,
		}).Error
}

// AddFileUsage atomically checks and increments StorageBytes and
// FileCount inside a row-locked transaction. This is the authoritative
// quota enforcement point: it re-validates the limits under the same
// lock that serializes concurrent finalizations, so two uploads racing
// past an advisory admission check cannot both land here. Returns
// ErrQuotaExceeded, without applying the increment, if size would push
// either counter past its limit.
func (s *Store) AddFileUsage(ctx context.Context, userID string, size int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var q model.Quota
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID).First(&q).Error; err != nil {
			return convertNotFound(err)
		}
		if q.MaxStorage != model.Unlimited && q.StorageBytes+size > q.MaxStorage {
			return ErrQuotaExceeded
		}
		if q.MaxFiles != model.Unlimited && q.FileCount+1 > q.MaxFiles {
			return ErrQuotaExceeded
		}
		return tx.Model(&model.Quota{}).Where("user_id = ?", userID).Updates(map[string]interface{}{
			"storage_bytes": q.StorageBytes + size,
			"file_count":    q.FileCount + 1,
		}).Error
	})
}

// RemoveFileUsage atomically decrements StorageBytes and FileCount,
// clamping both at zero.
func (s *Store) RemoveFileUsage(ctx context.Context, userID string, size int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var q model.Quota
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID).First(&q).Error; err != nil {
			return convertNotFound(err)
		}
		newBytes := q.StorageBytes - size
		if newBytes < 0 {
			newBytes = 0
		}
		newCount := q.FileCount - 1
		if newCount < 0 {
			newCount = 0
		}
		return tx.Model(&model.Quota{}).Where("user_id = ?", userID).Updates(map[string]interface{}{
			"storage_bytes": newBytes,
			"file_count":    newCount,
		}).Error
	})
}

// AddFolderUsage atomically increments FolderCount.
func (s *Store) AddFolderUsage(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var q model.Quota
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID).First(&q).Error; err != nil {
			return convertNotFound(err)
		}
		return tx.Model(&model.Quota{}).Where("user_id = ?", userID).
			Update("folder_count", q.FolderCount+1).Error
	})
}

// RemoveFolderUsage atomically decrements FolderCount, clamping at zero.
func (s *Store) RemoveFolderUsage(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var q model.Quota
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID).First(&q).Error; err != nil {
			return convertNotFound(err)
		}
		newCount := q.FolderCount - 1
		if newCount < 0 {
			newCount = 0
		}
		return tx.Model(&model.Quota{}).Where("user_id = ?", userID).
			Update("folder_count", newCount).Error
	})
}

// ResetQuotaUsage zeroes usage counters, used by admin block.
func (s *Store) ResetQuotaUsage(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).Model(&model.Quota{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"storage_bytes": 0,
			"file_count":    0,
			"folder_count":  0,
		}).Error
}

package metadatastore

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Gaganb-30/cloud-store/pkg/model"
)

func (s *Store) CreateUploadSession(ctx context.Context, sess *model.UploadSession) error {
	sess.CreatedAt = time.Now()
	return s.db.WithContext(ctx).Create(sess).Error
}

func (s *Store) GetUploadSession(ctx context.Context, sessionID string) (*model.UploadSession, error) {
	var sess model.UploadSession
	if err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&sess).Error; err != nil {
		return nil, convertNotFound(err)
	}
	return &sess, nil
}

// AppendUploadedChunk adds index to UploadedChunks if not already
// present. Safe to call repeatedly with the same index.
func (s *Store) AppendUploadedChunk(ctx context.Context, sessionID string, index int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sess model.UploadSession
		if err := tx.Where("session_id = ?", sessionID).First(&sess).Error; err != nil {
			return convertNotFound(err)
		}
		for _, idx := range sess.UploadedChunks {
			if idx == index {
				return nil
			}
		}
		sess.UploadedChunks = append(sess.UploadedChunks, index)
		return tx.Model(&model.UploadSession{}).
			Where("session_id = ?", sessionID).
			Update("uploaded_chunks", sess.UploadedChunks).Error
	})
}

// TryTransitionToCompleting performs the single-flight CAS from
// uploading to completing; rowsAffected == 0 means another caller
// already won the race (or the session is past that state), and the
// caller should treat this as "already in progress" rather than error.
func (s *Store) TryTransitionToCompleting(ctx context.Context, sessionID string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&model.UploadSession{}).
		Where("session_id = ? AND status = ?", sessionID, model.UploadStatusUploading).
		Update("status", model.UploadStatusCompleting)
	return res.RowsAffected > 0, res.Error
}

// CompleteUploadSession marks a session completed and records its final
// storage key, after the File record has been created.
func (s *Store) CompleteUploadSession(ctx context.Context, sessionID, finalStorageKey string) error {
	return s.db.WithContext(ctx).Model(&model.UploadSession{}).
		Where("session_id = ?", sessionID).
		Updates(map[string]interface{}{
			"status":      model.UploadStatusCompleted,
			"storage_key": finalStorageKey,
		}).Error
}

func (s *Store) FailUploadSession(ctx context.Context, sessionID string) error {
	return s.db.WithContext(ctx).Model(&model.UploadSession{}).
		Where("session_id = ?", sessionID).
		Update("status", model.UploadStatusFailed).Error
}

func (s *Store) AbortUploadSession(ctx context.Context, sessionID string) error {
	return s.db.WithContext(ctx).Model(&model.UploadSession{}).
		Where("session_id = ?", sessionID).
		Update("status", model.UploadStatusAborted).Error
}

// SetMultipartUploadID records the native multipart upload ID for the
// direct variant.
func (s *Store) SetMultipartUploadID(ctx context.Context, sessionID, uploadID string) error {
	return s.db.WithContext(ctx).Model(&model.UploadSession{}).
		Where("session_id = ?", sessionID).
		Update("multipart_upload_id", uploadID).Error
}

// ListExpiredSessions returns sessions past ExpiresAt whose status is
// uploading, failed or aborted, for the session garbage collector.
func (s *Store) ListExpiredSessions(ctx context.Context, now time.Time, limit int) ([]*model.UploadSession, error) {
	var sessions []*model.UploadSession
	err := s.db.WithContext(ctx).
		Where("expires_at <= ? AND status IN ?", now, []model.UploadSessionStatus{
			model.UploadStatusUploading, model.UploadStatusFailed, model.UploadStatusAborted,
		}).
		Limit(limit).
		Find(&sessions).Error
	return sessions, err
}

func (s *Store) DeleteUploadSession(ctx context.Context, sessionID string) error {
	return s.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&model.UploadSession{}).Error
}

package upload

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Gaganb-30/cloud-store/internal/telemetry"
	"github.com/Gaganb-30/cloud-store/pkg/model"
	"github.com/Gaganb-30/cloud-store/pkg/storage"
)

// InitDirectResult is returned from InitDirect.
type InitDirectResult struct {
	SessionID     string
	UploadID      string
	Key           string
	TotalParts    int
	PartSize      int64
	PresignedURLs []string
	ExpiresIn     time.Duration
}

// InitDirect begins a direct (presigned multipart) upload session.
func (m *Manager) InitDirect(ctx context.Context, principal model.Principal, filename string, size int64, mimeType string, folderID *string) (InitDirectResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "upload.initDirect")
	defer span.End()

	if principal.Status != model.StatusActive {
		return InitDirectResult{}, ErrForbidden
	}

	decision, err := m.quota.CanUpload(ctx, principal.UserID, size)
	if err != nil {
		return InitDirectResult{}, err
	}
	if !decision.Allowed {
		return InitDirectResult{}, fmt.Errorf("%w: %v", ErrQuotaDenied, decision.Reasons)
	}

	partSize := m.cfg.DirectPartSize
	totalParts := int((size + partSize - 1) / partSize)
	if totalParts == 0 {
		totalParts = 1
	}

	key := storageKeyFor(principal.UserID, filename)
	uploadID, err := m.storage.InitMultipart(ctx, key, storage.TierHot)
	if err != nil {
		return InitDirectResult{}, err
	}

	urls := make([]string, totalParts)
	for i := 0; i < totalParts; i++ {
		url, err := m.storage.SignPartUpload(ctx, key, uploadID, i+1, m.cfg.PresignedExpiry)
		if err != nil {
			return InitDirectResult{}, err
		}
		urls[i] = url
	}

	sessionID := uuid.NewString()
	sess := &model.UploadSession{
		SessionID:         sessionID,
		UserID:            principal.UserID,
		FolderID:          folderID,
		Filename:          filename,
		MimeType:          mimeType,
		TotalSize:         size,
		ChunkSize:         partSize,
		TotalChunks:       totalParts,
		StorageKey:        key,
		StorageTier:       storage.TierHot,
		Variant:           model.VariantDirect,
		Status:            model.UploadStatusUploading,
		UploadedChunks:    []int{},
		MultipartUploadID: uploadID,
		ExpiresAt:         time.Now().Add(m.cfg.SessionTTL),
	}
	if err := m.store.CreateUploadSession(ctx, sess); err != nil {
		return InitDirectResult{}, err
	}

	return InitDirectResult{
		SessionID:     sessionID,
		UploadID:      uploadID,
		Key:           key,
		TotalParts:    totalParts,
		PartSize:      partSize,
		PresignedURLs: urls,
		ExpiresIn:     m.cfg.PresignedExpiry,
	}, nil
}

// CompleteDirect validates the uploaded part list, completes the
// native multipart upload, and runs the shared finalize pipeline.
func (m *Manager) CompleteDirect(ctx context.Context, userID, sessionID string, parts []storage.CompletedPart) (CompleteResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "upload.completeDirect")
	defer span.End()

	sess, err := m.store.GetUploadSession(ctx, sessionID)
	if err != nil {
		return CompleteResult{}, err
	}
	if sess.UserID != userID {
		return CompleteResult{}, ErrForbidden
	}

	if sess.Status == model.UploadStatusCompleted {
		f, err := m.findFileForSession(ctx, sess)
		if err != nil {
			return CompleteResult{}, err
		}
		return CompleteResult{FileID: f.ID, DownloadURL: "/api/files/" + f.ID + "/download"}, nil
	}

	if err := validateParts(parts); err != nil {
		return CompleteResult{}, err
	}

	if sess.Status == model.UploadStatusUploading {
		ok, err := m.store.TryTransitionToCompleting(ctx, sessionID)
		if err != nil {
			return CompleteResult{}, err
		}
		if !ok {
			sess, err = m.store.GetUploadSession(ctx, sessionID)
			if err != nil {
				return CompleteResult{}, err
			}
		}
	}

	result, err := m.storage.CompleteMultipart(ctx, sess.StorageKey, sess.MultipartUploadID, parts)
	if err != nil {
		return CompleteResult{}, err
	}

	return m.finalize(ctx, sess, result.Key, result.Tier, result.Size)
}

// AbortDirect cancels the native multipart upload and marks the
// session failed. Best-effort and idempotent.
func (m *Manager) AbortDirect(ctx context.Context, userID, sessionID string) error {
	sess, err := m.store.GetUploadSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess.UserID != userID {
		return ErrForbidden
	}

	if err := m.storage.AbortMultipart(ctx, sess.StorageKey, sess.MultipartUploadID); err != nil {
		return err
	}
	return m.store.FailUploadSession(ctx, sessionID)
}

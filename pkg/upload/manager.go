// Package upload drives a file from init to complete across the
// proxied (server-relayed chunks) and direct (client uploads straight
// to the storage backend) variants, with resumable, idempotent
// semantics at every step.
package upload

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/Gaganb-30/cloud-store/internal/telemetry"
	"github.com/Gaganb-30/cloud-store/pkg/metadatastore"
	"github.com/Gaganb-30/cloud-store/pkg/model"
	"github.com/Gaganb-30/cloud-store/pkg/quota"
	"github.com/Gaganb-30/cloud-store/pkg/storage"
)

var (
	ErrForbidden         = errors.New("upload: caller does not own this session")
	ErrInvalidChunk      = errors.New("upload: invalid chunk index or size")
	ErrChunkHashMismatch = errors.New("upload: chunk hash mismatch")
	ErrIncomplete        = errors.New("upload: not all chunks have been uploaded")
	ErrQuotaDenied       = errors.New("upload: quota admission denied")
	ErrInvalidParts      = errors.New("upload: multipart parts must be contiguous ascending with no gaps")
)

// Config controls chunking and session lifetime defaults.
type Config struct {
	ChunkSize          int64
	DirectPartSize     int64
	SessionTTL         time.Duration
	ExpiryDaysFree     int
	PresignedExpiry    time.Duration
	MaxParallelUploads int
}

// Manager implements the upload session lifecycle.
type Manager struct {
	store   *metadatastore.Store
	storage storage.Provider
	quota   *quota.Ledger
	cfg     Config
}

func New(store *metadatastore.Store, provider storage.Provider, ledger *quota.Ledger, cfg Config) *Manager {
	return &Manager{store: store, storage: provider, quota: ledger, cfg: cfg}
}

// InitResult is returned from Init.
type InitResult struct {
	SessionID   string
	ChunkSize   int64
	TotalChunks int
}

func sanitizeFilename(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		if r == '/' || r == '\\' || r == 0 {
			continue
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return "file"
	}
	return string(out)
}

func storageKeyFor(userID, filename string) string {
	return fmt.Sprintf("%s/%s/%s", userID, uuid.NewString(), sanitizeFilename(filename))
}

// Init begins a proxied upload session.
func (m *Manager) Init(ctx context.Context, principal model.Principal, filename string, size int64, mimeType string, folderID *string) (InitResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "upload.init")
	defer span.End()

	if principal.Status != model.StatusActive {
		return InitResult{}, ErrForbidden
	}

	decision, err := m.quota.CanUpload(ctx, principal.UserID, size)
	if err != nil {
		return InitResult{}, err
	}
	if !decision.Allowed {
		return InitResult{}, fmt.Errorf("%w: %v", ErrQuotaDenied, decision.Reasons)
	}

	chunkSize := m.cfg.ChunkSize
	totalChunks := int((size + chunkSize - 1) / chunkSize)
	if totalChunks == 0 {
		totalChunks = 1
	}

	sessionID := uuid.NewString()
	sess := &model.UploadSession{
		SessionID:      sessionID,
		UserID:         principal.UserID,
		FolderID:       folderID,
		Filename:       filename,
		MimeType:       mimeType,
		TotalSize:      size,
		ChunkSize:      chunkSize,
		TotalChunks:    totalChunks,
		StorageKey:     storageKeyFor(principal.UserID, filename),
		StorageTier:    storage.TierHot,
		Variant:        model.VariantProxied,
		Status:         model.UploadStatusUploading,
		UploadedChunks: []int{},
		ExpiresAt:      time.Now().Add(m.cfg.SessionTTL),
	}

	if err := m.store.CreateUploadSession(ctx, sess); err != nil {
		return InitResult{}, err
	}

	return InitResult{SessionID: sessionID, ChunkSize: chunkSize, TotalChunks: totalChunks}, nil
}

// PutChunk validates and stores one chunk.
func (m *Manager) PutChunk(ctx context.Context, userID, sessionID string, index int, r io.Reader, size int64, chunkHashHex string) error {
	ctx, span := telemetry.StartSpan(ctx, "upload.putChunk")
	defer span.End()

	sess, err := m.store.GetUploadSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess.UserID != userID {
		return ErrForbidden
	}
	if index < 0 || index >= sess.TotalChunks {
		return ErrInvalidChunk
	}

	isLast := index == sess.TotalChunks-1
	if !isLast && size != sess.ChunkSize {
		return ErrInvalidChunk
	}
	if isLast && size > sess.ChunkSize {
		return ErrInvalidChunk
	}

	body := r
	h := sha256.New()
	if chunkHashHex != "" {
		body = io.TeeReader(r, h)
	}

	if err := m.storage.WriteChunk(ctx, sessionID, index, body); err != nil {
		return err
	}

	if chunkHashHex != "" && hex.EncodeToString(h.Sum(nil)) != chunkHashHex {
		return ErrChunkHashMismatch
	}

	return m.store.AppendUploadedChunk(ctx, sessionID, index)
}

// Status reports upload progress and, for resume, which chunks are
// still missing.
type Status struct {
	UploadedChunks []int
	TotalChunks    int
	MissingChunks  []int
	SessionStatus  model.UploadSessionStatus
}

func (m *Manager) Status(ctx context.Context, sessionID string) (Status, error) {
	sess, err := m.store.GetUploadSession(ctx, sessionID)
	if err != nil {
		return Status{}, err
	}

	present := make(map[int]bool, len(sess.UploadedChunks))
	for _, idx := range sess.UploadedChunks {
		present[idx] = true
	}

	var missing []int
	for i := 0; i < sess.TotalChunks; i++ {
		if !present[i] {
			missing = append(missing, i)
		}
	}

	return Status{
		UploadedChunks: sess.UploadedChunks,
		TotalChunks:    sess.TotalChunks,
		MissingChunks:  missing,
		SessionStatus:  sess.Status,
	}, nil
}

// CompleteResult is returned from Complete/CompleteDirect.
type CompleteResult struct {
	FileID      string
	DownloadURL string
}

// Complete assembles a proxied session's chunks and finalizes the
// file. Idempotent: re-invoking after a crash between assemble and
// File creation detects the existing object and proceeds.
func (m *Manager) Complete(ctx context.Context, userID, sessionID string) (CompleteResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "upload.complete")
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

	if !sess.IsComplete() {
		return CompleteResult{}, ErrIncomplete
	}

	if sess.Status == model.UploadStatusUploading {
		ok, err := m.store.TryTransitionToCompleting(ctx, sessionID)
		if err != nil {
			return CompleteResult{}, err
		}
		if !ok {
			// Another caller already won the race; re-read current state.
			sess, err = m.store.GetUploadSession(ctx, sessionID)
			if err != nil {
				return CompleteResult{}, err
			}
		}
	}

	result, err := m.storage.Assemble(ctx, sessionID, sess.StorageKey, sess.TotalChunks, sess.StorageTier)
	if err != nil {
		return CompleteResult{}, err
	}

	return m.finalize(ctx, sess, result.Key, result.Tier, result.Size)
}

// findFileForSession looks up the File created for an already-completed
// session, by its recorded storage key.
func (m *Manager) findFileForSession(ctx context.Context, sess *model.UploadSession) (*model.File, error) {
	f, err := m.store.GetFileByStorageKey(ctx, sess.StorageKey)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// finalize persists the File, updates quota, and marks the session
// completed. Shared by both variants.
func (m *Manager) finalize(ctx context.Context, sess *model.UploadSession, storageKey string, tier storage.Tier, size int64) (CompleteResult, error) {
	existing, err := m.store.GetFileByStorageKey(ctx, storageKey)
	if err == nil {
		return CompleteResult{FileID: existing.ID, DownloadURL: "/api/files/" + existing.ID + "/download"}, nil
	}
	if !errors.Is(err, metadatastore.ErrNotFound) {
		return CompleteResult{}, err
	}

	user, err := m.store.GetUserByID(ctx, sess.UserID)
	if err != nil {
		return CompleteResult{}, err
	}

	now := time.Now()
	var expiresAt *time.Time
	if user.EffectiveRole(now) == model.RoleFree {
		t := now.AddDate(0, 0, m.cfg.ExpiryDaysFree)
		expiresAt = &t
	}

	file := &model.File{
		ID:           uuid.NewString(),
		UserID:       sess.UserID,
		FolderID:     sess.FolderID,
		OriginalName: sess.Filename,
		MimeType:     sess.MimeType,
		Size:         size,
		StorageKey:   storageKey,
		StorageTier:  tier,
		ShareToken:   uuid.NewString(),
		LastAccessAt: now,
		ExpiresAt:    expiresAt,
	}

	if err := m.store.CreateFile(ctx, file); err != nil {
		return CompleteResult{}, err
	}

	// Authoritative recheck: admission at Init/InitDirect was advisory,
	// so a concurrent upload may have already consumed the headroom it
	// observed. On rejection here, undo the object and the file row and
	// fail the session rather than leave usage over its limit.
	if err := m.quota.AddFile(ctx, sess.UserID, size); err != nil {
		m.store.HardDeleteFile(ctx, file.ID)
		m.storage.Delete(ctx, storageKey, tier)
		m.store.FailUploadSession(ctx, sess.SessionID)
		if errors.Is(err, quota.ErrQuotaExceeded) {
			return CompleteResult{}, ErrQuotaDenied
		}
		return CompleteResult{}, err
	}

	if err := m.store.CompleteUploadSession(ctx, sess.SessionID, storageKey); err != nil {
		return CompleteResult{}, err
	}

	return CompleteResult{FileID: file.ID, DownloadURL: "/api/files/" + file.ID + "/download"}, nil
}

// Abort deletes a proxied session's chunks and marks it failed.
// Idempotent.
func (m *Manager) Abort(ctx context.Context, userID, sessionID string) error {
	sess, err := m.store.GetUploadSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess.UserID != userID {
		return ErrForbidden
	}

	if err := m.storage.DeleteChunks(ctx, sessionID); err != nil {
		return err
	}
	return m.store.FailUploadSession(ctx, sessionID)
}

// validateParts checks parts are supplied in strictly ascending,
// contiguous, 1-based order. A part list that is complete but submitted
// out of order is rejected, not silently reordered.
func validateParts(parts []storage.CompletedPart) error {
	for i, p := range parts {
		if p.PartNumber != i+1 {
			return ErrInvalidParts
		}
	}
	return nil
}

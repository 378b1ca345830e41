// Package download implements file info/download, including the
// download counter, unique-IP tracking, and anti-abuse expiry
// shortening for anonymous/third-party downloads.
package download

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/Gaganb-30/cloud-store/internal/telemetry"
	"github.com/Gaganb-30/cloud-store/pkg/metadatastore"
	"github.com/Gaganb-30/cloud-store/pkg/model"
	"github.com/Gaganb-30/cloud-store/pkg/storage"
)

var (
	ErrNotFound  = errors.New("download: file not found")
	ErrForbidden = errors.New("download: file is restricted")
)

// Config controls anti-abuse thresholds.
type Config struct {
	// MaxUniqueIPs bounds the tracked download-IP set per file.
	MaxUniqueIPs int

	// DownloadThreshold is the unique-IP count that triggers expiry
	// shortening for free users' files.
	DownloadThreshold int

	// DaysAfterThreshold is the new expiry window once triggered.
	DaysAfterThreshold int
}

// Service implements FileView lookups and byte streaming.
type Service struct {
	store   *metadatastore.Store
	storage storage.Provider
	cfg     Config
}

func New(store *metadatastore.Store, provider storage.Provider, cfg Config) *Service {
	return &Service{store: store, storage: provider, cfg: cfg}
}

// FileView is the non-sensitive projection of a File returned by Info.
type FileView struct {
	ID           string
	OriginalName string
	MimeType     string
	Size         int64
	Downloads    int64
	CreatedAt    time.Time
	ExpiresAt    *time.Time
}

// Info returns a file's public metadata, permitted if the file is not
// deleted and the caller is anonymous (a share-link request), the owner,
// or an admin; any other signed-in user is refused.
func (s *Service) Info(ctx context.Context, fileID string, principal *model.Principal) (FileView, error) {
	f, err := s.store.GetFile(ctx, fileID)
	if err != nil {
		if errors.Is(err, metadatastore.ErrNotFound) {
			return FileView{}, ErrNotFound
		}
		return FileView{}, err
	}

	if !s.canAccess(f, principal) {
		return FileView{}, ErrForbidden
	}

	return FileView{
		ID:           f.ID,
		OriginalName: f.OriginalName,
		MimeType:     f.MimeType,
		Size:         f.Size,
		Downloads:    f.Downloads,
		CreatedAt:    f.CreatedAt,
		ExpiresAt:    f.ExpiresAt,
	}, nil
}

func (s *Service) canAccess(f *model.File, principal *model.Principal) bool {
	if principal == nil {
		return true
	}
	if principal.IsAdmin() {
		return true
	}
	return principal.UserID == f.UserID
}

func (s *Service) isOwnerOrAdmin(f *model.File, principal *model.Principal) bool {
	if principal == nil {
		return false
	}
	return principal.IsAdmin() || principal.UserID == f.UserID
}

// Download streams a file's bytes, applying the download counter and
// anti-abuse rules for anonymous/third-party access. Owner/admin
// access is side-effect free.
func (s *Service) Download(ctx context.Context, fileID string, principal *model.Principal, clientIP string, rng *storage.Range) (io.ReadCloser, int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "download.download")
	defer span.End()

	f, err := s.store.GetFile(ctx, fileID)
	if err != nil {
		if errors.Is(err, metadatastore.ErrNotFound) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, err
	}

	now := time.Now()
	if f.ExpiresAt != nil && !f.ExpiresAt.After(now) {
		return nil, 0, ErrNotFound
	}

	if !s.isOwnerOrAdmin(f, principal) {
		updated, err := s.store.RecordDownload(ctx, f.ID, clientIP, now, s.cfg.MaxUniqueIPs)
		if err != nil {
			return nil, 0, err
		}
		f = updated

		if err := s.applyAntiAbuseShortening(ctx, f, now); err != nil {
			return nil, 0, err
		}
	}

	rc, err := s.storage.Stream(ctx, f.StorageKey, f.StorageTier, rng)
	if err != nil {
		return nil, 0, err
	}
	return rc, f.Size, nil
}

// applyAntiAbuseShortening shortens a free user's file expiry once
// unique downloaders cross the threshold, but never extends it.
func (s *Service) applyAntiAbuseShortening(ctx context.Context, f *model.File, now time.Time) error {
	if len(f.UniqueDownloadIPs) < s.cfg.DownloadThreshold {
		return nil
	}

	owner, err := s.store.GetUserByID(ctx, f.UserID)
	if err != nil {
		return err
	}
	if owner.EffectiveRole(now) != model.RoleFree {
		return nil
	}

	shortened := now.AddDate(0, 0, s.cfg.DaysAfterThreshold)
	if f.ExpiresAt != nil && !f.ExpiresAt.After(shortened) {
		return nil
	}

	return s.store.SetFileExpiry(ctx, f.ID, &shortened)
}

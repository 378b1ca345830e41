// Package quota implements the storage quota ledger: advisory
// admission checks and atomic usage bookkeeping, backed by
// pkg/metadatastore.
package quota

import (
	"context"
	"errors"

	"github.com/Gaganb-30/cloud-store/pkg/metadatastore"
	"github.com/Gaganb-30/cloud-store/pkg/model"
)

// Defaults seeds a new Quota's limits by role. PremiumMaxStorage/
// PremiumMaxFiles of model.Unlimited mean no cap.
type Defaults struct {
	FreeMaxStorage    int64
	FreeMaxFileSize   int64
	FreeMaxFiles      int64
	PremiumMaxStorage int64
	PremiumMaxFiles   int64
}

// Ledger is the quota service every upload path consults.
type Ledger struct {
	store    *metadatastore.Store
	defaults Defaults
}

func New(store *metadatastore.Store, defaults Defaults) *Ledger {
	return &Ledger{store: store, defaults: defaults}
}

// Decision is the result of an admission check.
type Decision struct {
	Allowed bool
	Reasons []string
}

// ErrQuotaExceeded is returned by AddFile when the authoritative
// recheck at finalization rejects a file that passed advisory
// admission at init, e.g. a concurrent upload that already claimed the
// remaining headroom.
var ErrQuotaExceeded = metadatastore.ErrQuotaExceeded

// CanUpload is an advisory check: storage+size within MaxStorage, size
// within MaxFileSize, and fileCount+1 within MaxFiles. It is a
// best-effort admission gate only — AddFile performs the authoritative
// recheck under a row lock at finalization.
func (l *Ledger) CanUpload(ctx context.Context, userID string, size int64) (Decision, error) {
	q, err := l.store.GetQuota(ctx, userID)
	if err != nil {
		return Decision{}, err
	}

	var reasons []string
	if q.MaxStorage != model.Unlimited && q.StorageBytes+size > q.MaxStorage {
		reasons = append(reasons, "storage quota exceeded")
	}
	if q.MaxFileSize != model.Unlimited && size > q.MaxFileSize {
		reasons = append(reasons, "file exceeds maximum size")
	}
	if q.MaxFiles != model.Unlimited && q.FileCount+1 > q.MaxFiles {
		reasons = append(reasons, "file count quota exceeded")
	}

	return Decision{Allowed: len(reasons) == 0, Reasons: reasons}, nil
}

// AddFile authoritatively rechecks quota and atomically increments usage
// once a file is finalized. Returns ErrQuotaExceeded, without applying
// the increment, if another upload already consumed the headroom that
// the caller's advisory CanUpload check observed.
func (l *Ledger) AddFile(ctx context.Context, userID string, size int64) error {
	return l.store.AddFileUsage(ctx, userID, size)
}

// RemoveFile atomically decrements usage after a file is deleted.
func (l *Ledger) RemoveFile(ctx context.Context, userID string, size int64) error {
	return l.store.RemoveFileUsage(ctx, userID, size)
}

// CanCreateFolder is an advisory check against MaxFiles; folders share
// the same per-account object-count budget as files.
func (l *Ledger) CanCreateFolder(ctx context.Context, userID string) (Decision, error) {
	q, err := l.store.GetQuota(ctx, userID)
	if err != nil {
		return Decision{}, err
	}
	if q.MaxFiles != model.Unlimited && q.FileCount+q.FolderCount+1 > q.MaxFiles {
		return Decision{Allowed: false, Reasons: []string{"file count quota exceeded"}}, nil
	}
	return Decision{Allowed: true}, nil
}

// AddFolder atomically increments FolderCount after a folder is created.
func (l *Ledger) AddFolder(ctx context.Context, userID string) error {
	return l.store.AddFolderUsage(ctx, userID)
}

// RemoveFolder atomically decrements FolderCount after a folder is deleted.
func (l *Ledger) RemoveFolder(ctx context.Context, userID string) error {
	return l.store.RemoveFolderUsage(ctx, userID)
}

// GetOrCreate returns the user's quota, seeding default limits for
// their current role if no row exists yet.
func (l *Ledger) GetOrCreate(ctx context.Context, userID string, role model.Role, override *int64) (*model.Quota, error) {
	q, err := l.store.GetQuota(ctx, userID)
	if err == nil {
		return q, nil
	}
	if !errors.Is(err, metadatastore.ErrNotFound) {
		return nil, err
	}

	q = &model.Quota{UserID: userID}
	l.applyRoleLimits(q, role, override)

	if err := l.store.CreateQuota(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// ApplyRoleChange updates limits when a user's role changes between
// free and premium, unless QuotaOverride is set.
func (l *Ledger) ApplyRoleChange(ctx context.Context, userID string, role model.Role, override *int64) error {
	q := &model.Quota{}
	l.applyRoleLimits(q, role, override)
	return l.store.SetQuotaLimits(ctx, userID, q.MaxStorage, q.MaxFileSize, q.MaxFiles)
}

func (l *Ledger) applyRoleLimits(q *model.Quota, role model.Role, override *int64) {
	switch role {
	case model.RolePremium, model.RoleAdmin:
		q.MaxStorage = l.defaults.PremiumMaxStorage
		q.MaxFileSize = model.Unlimited
		q.MaxFiles = l.defaults.PremiumMaxFiles
	default:
		q.MaxStorage = l.defaults.FreeMaxStorage
		q.MaxFileSize = l.defaults.FreeMaxFileSize
		q.MaxFiles = l.defaults.FreeMaxFiles
	}

	if override != nil {
		q.MaxStorage = *override
	}
}

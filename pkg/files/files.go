// Package files implements the owner-facing file and folder
// operations: listing, rename, move, delete, soft-delete, and folder
// tree navigation. Download streaming and public metadata lookups live
// in pkg/download; this package only covers the owner's management
// surface.
package files

import (
	"context"
	"errors"

	"github.com/Gaganb-30/cloud-store/internal/telemetry"
	"github.com/Gaganb-30/cloud-store/pkg/metadatastore"
	"github.com/Gaganb-30/cloud-store/pkg/model"
	"github.com/Gaganb-30/cloud-store/pkg/quota"
	"github.com/Gaganb-30/cloud-store/pkg/storage"
)

var (
	ErrNotFound       = errors.New("files: not found")
	ErrForbidden      = errors.New("files: not owned by caller")
	ErrFolderNotEmpty = errors.New("files: folder still has children")
	ErrQuotaExceeded  = errors.New("files: folder count quota exceeded")
	ErrCyclicMove     = errors.New("files: cannot move a folder into its own subtree")
)

// Service implements the list/rename/move/delete surface for a user's
// own files and folders.
type Service struct {
	store   *metadatastore.Store
	storage storage.Provider
	quota   *quota.Ledger
}

func New(store *metadatastore.Store, provider storage.Provider, ledger *quota.Ledger) *Service {
	return &Service{store: store, storage: provider, quota: ledger}
}

func isOwner(userID string, principal *model.Principal) bool {
	if principal == nil {
		return false
	}
	return principal.IsAdmin() || principal.UserID == userID
}

// ListFiles lists the caller's non-deleted files, optionally scoped to
// one folder.
func (s *Service) ListFiles(ctx context.Context, principal *model.Principal, folderID *string) ([]*model.File, error) {
	if principal == nil {
		return nil, ErrForbidden
	}
	return s.store.ListFilesForUser(ctx, principal.UserID, folderID)
}

// RenameFile renames a file the caller owns.
func (s *Service) RenameFile(ctx context.Context, principal *model.Principal, fileID, name string) error {
	f, err := s.getOwnedFile(ctx, fileID, principal)
	if err != nil {
		return err
	}
	return s.store.RenameFile(ctx, f.ID, name)
}

// MoveFile relocates a file the caller owns into folderID, or to the
// root when folderID is nil. The destination folder, if any, must
// belong to the same owner.
func (s *Service) MoveFile(ctx context.Context, principal *model.Principal, fileID string, folderID *string) error {
	f, err := s.getOwnedFile(ctx, fileID, principal)
	if err != nil {
		return err
	}
	if folderID != nil {
		dest, err := s.store.GetFolder(ctx, *folderID)
		if err != nil {
			if errors.Is(err, metadatastore.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		if dest.UserID != f.UserID {
			return ErrForbidden
		}
	}
	return s.store.MoveFile(ctx, f.ID, folderID)
}

// DeleteFile removes the underlying storage object and soft-deletes
// the row, mirroring the admin bulk-delete pipeline for a single
// caller-owned file.
func (s *Service) DeleteFile(ctx context.Context, principal *model.Principal, fileID string) error {
	ctx, span := telemetry.StartSpan(ctx, "files.delete_file")
	defer span.End()

	f, err := s.getOwnedFile(ctx, fileID, principal)
	if err != nil {
		return err
	}

	if _, err := s.storage.Delete(ctx, f.StorageKey, f.StorageTier); err != nil {
		return err
	}
	if err := s.store.SoftDeleteFile(ctx, f.ID); err != nil {
		return err
	}
	return s.quota.RemoveFile(ctx, f.UserID, f.Size)
}

func (s *Service) getOwnedFile(ctx context.Context, fileID string, principal *model.Principal) (*model.File, error) {
	f, err := s.store.GetFile(ctx, fileID)
	if err != nil {
		if errors.Is(err, metadatastore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !isOwner(f.UserID, principal) {
		return nil, ErrForbidden
	}
	return f, nil
}

package files

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Gaganb-30/cloud-store/pkg/metadatastore"
	"github.com/Gaganb-30/cloud-store/pkg/model"
)

// CreateFolder creates a new folder under parentID (nil for root),
// after an advisory quota check against the account's object-count
// budget.
func (s *Service) CreateFolder(ctx context.Context, principal *model.Principal, name string, parentID *string) (*model.Folder, error) {
	if principal == nil {
		return nil, ErrForbidden
	}

	path := "/" + name
	if parentID != nil {
		parent, err := s.getOwnedFolder(ctx, *parentID, principal)
		if err != nil {
			return nil, err
		}
		path = parent.Path + "/" + name
	}

	decision, err := s.quota.CanCreateFolder(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, ErrQuotaExceeded
	}

	f := &model.Folder{
		ID:       uuid.NewString(),
		UserID:   principal.UserID,
		Name:     name,
		ParentID: parentID,
		Path:     path,
	}
	if err := s.store.CreateFolder(ctx, f); err != nil {
		return nil, err
	}
	if err := s.quota.AddFolder(ctx, principal.UserID); err != nil {
		return nil, err
	}
	return f, nil
}

// ListChildren lists the immediate children of parentID (nil for
// root), used by both folder listing and tree navigation.
func (s *Service) ListChildren(ctx context.Context, principal *model.Principal, parentID *string) ([]*model.Folder, error) {
	if principal == nil {
		return nil, ErrForbidden
	}
	if parentID != nil {
		if _, err := s.getOwnedFolder(ctx, *parentID, principal); err != nil {
			return nil, err
		}
	}
	return s.store.ListChildFolders(ctx, principal.UserID, parentID)
}

// Tree returns the full folder tree for the caller as a flat slice in
// no defined order; every entry's Path already encodes its position, so
// the caller can reconstruct the hierarchy without further lookups.
func (s *Service) Tree(ctx context.Context, principal *model.Principal) ([]*model.Folder, error) {
	if principal == nil {
		return nil, ErrForbidden
	}
	return s.store.ListFoldersByUser(ctx, principal.UserID)
}

// RenameFolder renames a folder the caller owns and repaths it and
// every descendant to match.
func (s *Service) RenameFolder(ctx context.Context, principal *model.Principal, folderID, name string) error {
	f, err := s.getOwnedFolder(ctx, folderID, principal)
	if err != nil {
		return err
	}

	parentPath := "/"
	if f.ParentID != nil {
		parent, err := s.store.GetFolder(ctx, *f.ParentID)
		if err != nil {
			return err
		}
		parentPath = parent.Path
	}
	newPath := parentPath + "/" + name
	if f.ParentID == nil {
		newPath = "/" + name
	}

	if err := s.store.RenameFolder(ctx, f.ID, name); err != nil {
		return err
	}
	if err := s.store.UpdateFolderPath(ctx, f.ID, newPath); err != nil {
		return err
	}
	return s.repath(ctx, f, newPath)
}

// MoveFolder relocates a folder the caller owns under newParentID (nil
// for root), rejecting moves into its own subtree.
func (s *Service) MoveFolder(ctx context.Context, principal *model.Principal, folderID string, newParentID *string) error {
	f, err := s.getOwnedFolder(ctx, folderID, principal)
	if err != nil {
		return err
	}

	newPath := "/" + f.Name
	if newParentID != nil {
		if *newParentID == f.ID {
			return ErrCyclicMove
		}
		parent, err := s.getOwnedFolder(ctx, *newParentID, principal)
		if err != nil {
			return err
		}
		if isUnderPath(parent.Path, f.Path) {
			return ErrCyclicMove
		}
		newPath = parent.Path + "/" + f.Name
	}

	if err := s.store.MoveFolder(ctx, f.ID, newParentID, newPath); err != nil {
		return err
	}
	return s.repath(ctx, f, newPath)
}

// DeleteFolder removes an empty folder the caller owns. Folders with
// child folders or files must be emptied first.
func (s *Service) DeleteFolder(ctx context.Context, principal *model.Principal, folderID string) error {
	f, err := s.getOwnedFolder(ctx, folderID, principal)
	if err != nil {
		return err
	}

	children, err := s.store.ListChildFolders(ctx, f.UserID, &f.ID)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return ErrFolderNotEmpty
	}
	contents, err := s.store.ListFilesForUser(ctx, f.UserID, &f.ID)
	if err != nil {
		return err
	}
	if len(contents) > 0 {
		return ErrFolderNotEmpty
	}

	if err := s.store.DeleteFolder(ctx, f.ID); err != nil {
		return err
	}
	return s.quota.RemoveFolder(ctx, f.UserID)
}

func (s *Service) getOwnedFolder(ctx context.Context, folderID string, principal *model.Principal) (*model.Folder, error) {
	f, err := s.store.GetFolder(ctx, folderID)
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

// repath walks f's descendants and rewrites each Path to stay
// consistent with f's own newPath, the single-writer repath the
// materialized path column relies on.
func (s *Service) repath(ctx context.Context, f *model.Folder, newPath string) error {
	oldPath := f.Path
	queue := []*model.Folder{f}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		children, err := s.store.ListChildFolders(ctx, cur.UserID, &cur.ID)
		if err != nil {
			return err
		}
		for _, c := range children {
			childPath := newPath + c.Path[len(oldPath):]
			if err := s.store.UpdateFolderPath(ctx, c.ID, childPath); err != nil {
				return err
			}
			c.Path = childPath
			queue = append(queue, c)
		}
	}
	return nil
}

// isUnderPath reports whether candidatePath is ancestorPath or a
// descendant of it, used to reject cyclic folder moves.
func isUnderPath(candidatePath, ancestorPath string) bool {
	if candidatePath == ancestorPath {
		return true
	}
	return len(candidatePath) > len(ancestorPath) && candidatePath[:len(ancestorPath)+1] == ancestorPath+"/"
}

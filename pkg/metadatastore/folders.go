package metadatastore

import (
	"context"
	"time"

	"github.com/Gaganb-30/cloud-store/pkg/model"
)

func (s *Store) CreateFolder(ctx context.Context, f *model.Folder) error {
	f.CreatedAt = time.Now()
	return s.db.WithContext(ctx).Create(f).Error
}

func (s *Store) GetFolder(ctx context.Context, id string) (*model.Folder, error) {
	var f model.Folder
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&f).Error; err != nil {
		return nil, convertNotFound(err)
	}
	return &f, nil
}

func (s *Store) ListFoldersByUser(ctx context.Context, userID string) ([]*model.Folder, error) {
	var folders []*model.Folder
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&folders).Error
	return folders, err
}

// MoveFolder updates ParentID and the recomputed Path.
func (s *Store) MoveFolder(ctx context.Context, id string, parentID *string, path string) error {
	return s.db.WithContext(ctx).Model(&model.Folder{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"parent_id": parentID,
			"path":      path,
		}).Error
}

// UpdateFolderPath sets Path alone, used to repath descendants after an
// ancestor is renamed or moved.
func (s *Store) UpdateFolderPath(ctx context.Context, id string, path string) error {
	return s.db.WithContext(ctx).Model(&model.Folder{}).
		Where("id = ?", id).
		Update("path", path).Error
}

// RenameFolder updates Name only; Path is left to the caller to
// recompute for this folder and, transitively, its descendants.
func (s *Store) RenameFolder(ctx context.Context, id string, name string) error {
	return s.db.WithContext(ctx).Model(&model.Folder{}).
		Where("id = ?", id).
		Update("name", name).Error
}

// DeleteFolder removes the folder row. Folders are not soft-deleted;
// the caller is responsible for first relocating or deleting the
// folder's children.
func (s *Store) DeleteFolder(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Folder{}).Error
}

// ListChildFolders returns the immediate children of parentID. A nil
// parentID lists root-level folders for userID.
func (s *Store) ListChildFolders(ctx context.Context, userID string, parentID *string) ([]*model.Folder, error) {
	var folders []*model.Folder
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if parentID == nil {
		q = q.Where("parent_id IS NULL")
	} else {
		q = q.Where("parent_id = ?", *parentID)
	}
	err := q.Find(&folders).Error
	return folders, err
}

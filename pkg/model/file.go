package model

import (
	"time"

	"github.com/Gaganb-30/cloud-store/pkg/storage"
)

// File is a stored object's metadata record. Size is set once at
// assembly and never mutated afterward.
type File struct {
	ID               string       `gorm:"primaryKey;type:uuid" json:"id"`
	UserID           string       `gorm:"not null;index" json:"userId"`
	FolderID         *string      `gorm:"index" json:"folderId,omitempty"`
	OriginalName     string       `gorm:"not null" json:"originalName"`
	MimeType         string       `gorm:"not null" json:"mimeType"`
	Size             int64        `gorm:"not null" json:"size"`
	StorageKey       string       `gorm:"not null;uniqueIndex" json:"-"`
	StorageTier      storage.Tier `gorm:"not null" json:"-"`
	Hash             string       `json:"hash,omitempty"`
	ShareToken       string       `gorm:"uniqueIndex" json:"shareToken"`
	Downloads        int64        `gorm:"not null;default:0" json:"downloads"`
	UniqueDownloadIPs []string    `gorm:"serializer:json" json:"-"`
	LastAccessAt     time.Time    `gorm:"not null" json:"lastAccessAt"`
	ExpiresAt        *time.Time   `gorm:"index" json:"expiresAt,omitempty"`
	IsDeleted        bool         `gorm:"not null;default:false;index" json:"isDeleted"`
	CreatedAt        time.Time    `gorm:"not null" json:"createdAt"`
}

// MaxUniqueDownloadIPs is a bound for the per-file IP set the anti-abuse
// expiry shortening rule reads from. RecordDownload enforces whatever cap
// it is passed (download.Config.MaxUniqueIPs): once the set holds that many
// entries, further distinct IPs are not added and existing entries are kept.
const MaxUniqueDownloadIPs = 1000

// Folder is a node in a per-user directory tree. Path is the
// materialized ancestor-name chain, recomputed on move.
type Folder struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string    `gorm:"not null;index" json:"userId"`
	Name      string    `gorm:"not null" json:"name"`
	ParentID  *string   `gorm:"index" json:"parentId,omitempty"`
	Path      string    `gorm:"not null" json:"path"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}

// Quota is a per-user storage budget and its current usage. A MaxStorage,
// MaxFileSize or MaxFiles equal to Unlimited (-1) means no cap.
type Quota struct {
	UserID        string `gorm:"primaryKey" json:"userId"`
	MaxStorage    int64  `gorm:"not null" json:"maxStorage"`
	MaxFileSize   int64  `gorm:"not null" json:"maxFileSize"`
	MaxFiles      int64  `gorm:"not null" json:"maxFiles"`
	StorageBytes  int64  `gorm:"not null;default:0" json:"storageBytes"`
	FileCount     int64  `gorm:"not null;default:0" json:"fileCount"`
	FolderCount   int64  `gorm:"not null;default:0" json:"folderCount"`
}

// Unlimited is the sentinel limit value meaning "no cap".
const Unlimited int64 = -1

// HasRoom reports whether adding addBytes would keep StorageBytes within
// MaxStorage.
func (q *Quota) HasRoom(addBytes int64) bool {
	if q.MaxStorage == Unlimited {
		return true
	}
	return q.StorageBytes+addBytes <= q.MaxStorage
}

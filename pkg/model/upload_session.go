package model

import (
	"time"

	"github.com/Gaganb-30/cloud-store/pkg/storage"
)

// UploadVariant distinguishes the proxied (server relays bytes) and
// direct (client uploads straight to the storage backend via presigned
// URLs) upload paths.
type UploadVariant string

const (
	VariantProxied UploadVariant = "proxied"
	VariantDirect  UploadVariant = "direct"
)

// UploadSessionStatus is the state machine an UploadSession moves
// through. completing is a transient CAS state guarding single-flight
// finalize; it never persists as the terminal state.
type UploadSessionStatus string

const (
	UploadStatusInitializing UploadSessionStatus = "initializing"
	UploadStatusUploading    UploadSessionStatus = "uploading"
	UploadStatusCompleting   UploadSessionStatus = "completing"
	UploadStatusCompleted    UploadSessionStatus = "completed"
	UploadStatusFailed       UploadSessionStatus = "failed"
	UploadStatusAborted      UploadSessionStatus = "aborted"
)

// UploadSession tracks one chunked or multipart upload in progress.
// Once Status is completed the session is immutable and a File exists
// referencing StorageKey.
type UploadSession struct {
	SessionID         string              `gorm:"primaryKey;type:uuid" json:"sessionId"`
	UserID            string              `gorm:"not null;index" json:"userId"`
	FolderID          *string             `json:"folderId,omitempty"`
	Filename          string              `gorm:"not null" json:"filename"`
	MimeType          string              `gorm:"not null" json:"mimeType"`
	TotalSize         int64               `gorm:"not null" json:"totalSize"`
	ChunkSize         int64               `gorm:"not null" json:"chunkSize"`
	TotalChunks       int                 `gorm:"not null" json:"totalChunks"`
	StorageKey        string              `gorm:"not null" json:"-"`
	StorageTier       storage.Tier        `gorm:"not null" json:"-"`
	Variant           UploadVariant       `gorm:"not null" json:"variant"`
	Status            UploadSessionStatus `gorm:"not null;index" json:"status"`
	UploadedChunks    []int               `gorm:"serializer:json" json:"uploadedChunks"`
	AssemblyKey       string              `json:"-"`
	MultipartUploadID string              `json:"-"`
	ExpiresAt         time.Time           `gorm:"index" json:"expiresAt"`
	CreatedAt         time.Time           `gorm:"not null" json:"createdAt"`
}

// IsComplete reports whether every chunk index 0..TotalChunks-1 has
// been uploaded.
func (s *UploadSession) IsComplete() bool {
	if len(s.UploadedChunks) != s.TotalChunks {
		return false
	}
	seen := make(map[int]bool, s.TotalChunks)
	for _, idx := range s.UploadedChunks {
		seen[idx] = true
	}
	for i := 0; i < s.TotalChunks; i++ {
		if !seen[i] {
			return false
		}
	}
	return true
}

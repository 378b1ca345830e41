package metadatastore

import "errors"

// ErrNotFound is returned when a lookup finds no matching row.
var ErrNotFound = errors.New("metadatastore: not found")

// ErrConflict is returned when a unique constraint or a CAS
// precondition is violated.
var ErrConflict = errors.New("metadatastore: conflict")

// ErrQuotaExceeded is returned by AddFileUsage when applying size would
// push StorageBytes or FileCount past the account's limits. The row lock
// held while checking means this is authoritative, not advisory.
var ErrQuotaExceeded = errors.New("metadatastore: quota exceeded")

package upload

import (
	"strings"
	"testing"

	"github.com/Gaganb-30/cloud-store/pkg/storage"
)

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"report.pdf":       "report.pdf",
		"../../etc/passwd": "....etcpasswd",
		"a/b\\c":           "abc",
		"":                 "file",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStorageKeyFor_NoDoublePrefix(t *testing.T) {
	key := storageKeyFor("user-1", "report.pdf")
	if !strings.HasPrefix(key, "user-1/") {
		t.Errorf("expected key to start with user id, got %q", key)
	}
	if storage.HasTierPrefix(key) {
		t.Errorf("storage key %q must not carry a tier prefix", key)
	}
}

func TestValidateParts_ContiguousAscending(t *testing.T) {
	parts := []storage.CompletedPart{
		{PartNumber: 1, ETag: "a"},
		{PartNumber: 2, ETag: "b"},
		{PartNumber: 3, ETag: "c"},
	}
	if err := validateParts(parts); err != nil {
		t.Errorf("expected valid parts, got %v", err)
	}
}

func TestValidateParts_OutOfOrderIsRejected(t *testing.T) {
	parts := []storage.CompletedPart{
		{PartNumber: 2, ETag: "b"},
		{PartNumber: 1, ETag: "a"},
		{PartNumber: 3, ETag: "c"},
	}
	if err := validateParts(parts); err != ErrInvalidParts {
		t.Errorf("expected ErrInvalidParts for out-of-order parts, got %v", err)
	}
}

func TestValidateParts_GapIsRejected(t *testing.T) {
	parts := []storage.CompletedPart{
		{PartNumber: 1, ETag: "a"},
		{PartNumber: 3, ETag: "c"},
	}
	if err := validateParts(parts); err != ErrInvalidParts {
		t.Errorf("expected ErrInvalidParts, got %v", err)
	}
}

func TestValidateParts_DuplicateIsRejected(t *testing.T) {
	parts := []storage.CompletedPart{
		{PartNumber: 1, ETag: "a"},
		{PartNumber: 1, ETag: "a"},
	}
	if err := validateParts(parts); err != ErrInvalidParts {
		t.Errorf("expected ErrInvalidParts, got %v", err)
	}
}

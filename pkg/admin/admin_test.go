package admin

import (
	"testing"
)

func TestBulkDelete_RejectsOverCap(t *testing.T) {
	ids := make([]string, maxBulkDeleteItems+1)
	for i := range ids {
		ids[i] = "f"
	}

	s := &Service{}
	_, err := s.BulkDelete(nil, ids)
	if err != ErrTooManyIDs {
		t.Fatalf("expected ErrTooManyIDs, got %v", err)
	}
}

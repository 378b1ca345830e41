package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/Gaganb-30/cloud-store/pkg/model"
)

func testConfig() Config {
	limits := Limits{Free: 2, Premium: 10, Admin: 100, Anonymous: 1, Window: time.Minute}
	return Config{Upload: limits, Download: limits, Auth: limits}
}

func TestLimiter_BlockedAccountDenied(t *testing.T) {
	l := New(NewMemoryStore(), testConfig())
	p := &model.Principal{UserID: "u1", Role: model.RoleFree, Status: model.StatusBlocked}

	_, err := l.Check(context.Background(), p, "", ActionDownload)
	if err != ErrBlocked {
		t.Fatalf("expected ErrBlocked, got %v", err)
	}
}

func TestLimiter_RestrictedAccountDeniesUploadOnly(t *testing.T) {
	l := New(NewMemoryStore(), testConfig())
	p := &model.Principal{UserID: "u1", Role: model.RoleFree, Status: model.StatusRestricted}

	if _, err := l.Check(context.Background(), p, "", ActionUpload); err != ErrRestricted {
		t.Fatalf("expected ErrRestricted for upload, got %v", err)
	}

	if _, err := l.Check(context.Background(), p, "", ActionDownload); err != nil {
		t.Fatalf("restricted account should still be able to download: %v", err)
	}
}

func TestLimiter_AnonymousUsesIPSubject(t *testing.T) {
	l := New(NewMemoryStore(), testConfig())

	d1, err := l.Check(context.Background(), nil, "1.2.3.4", ActionDownload)
	if err != nil || !d1.Allowed {
		t.Fatalf("first anonymous request should be allowed: %v %+v", err, d1)
	}

	d2, err := l.Check(context.Background(), nil, "1.2.3.4", ActionDownload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d2.Allowed {
		t.Error("anonymous limit is 1 per window, second request should be denied")
	}
}

func TestMemoryStore_RefillsOverTime(t *testing.T) {
	s := NewMemoryStore()

	d, err := s.Allow(context.Background(), "k", 1, time.Millisecond)
	if err != nil || !d.Allowed {
		t.Fatalf("first token should be available: %v %+v", err, d)
	}

	d, err = s.Allow(context.Background(), "k", 1, time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Allowed {
		t.Error("bucket should be empty immediately after consuming its only token")
	}

	time.Sleep(5 * time.Millisecond)

	d, err = s.Allow(context.Background(), "k", 1, time.Millisecond)
	if err != nil || !d.Allowed {
		t.Fatalf("token should have refilled after the window elapsed: %v %+v", err, d)
	}
}

func TestMemoryStore_ZeroLimitAlwaysAllows(t *testing.T) {
	s := NewMemoryStore()
	d, err := s.Allow(context.Background(), "k", 0, time.Minute)
	if err != nil || !d.Allowed {
		t.Fatalf("zero limit should mean unlimited: %v %+v", err, d)
	}
}

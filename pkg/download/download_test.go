package download

import (
	"context"
	"testing"
	"time"

	"github.com/Gaganb-30/cloud-store/pkg/model"
)

func TestCanAccess(t *testing.T) {
	owner := model.Principal{UserID: "u1", Role: model.RoleFree, Status: model.StatusActive}
	other := model.Principal{UserID: "u2", Role: model.RoleFree, Status: model.StatusActive}
	admin := model.Principal{UserID: "u3", Role: model.RoleAdmin, Status: model.StatusActive}

	f := &model.File{UserID: "u1"}
	s := &Service{}

	if !s.canAccess(f, nil) {
		t.Error("anonymous caller should be able to access a public file view")
	}
	if !s.canAccess(f, &owner) {
		t.Error("owner should be able to access their own file")
	}
	if s.canAccess(f, &other) {
		t.Error("non-owner, non-admin should not be able to access another user's file")
	}
	if !s.canAccess(f, &admin) {
		t.Error("admin should be able to access any file")
	}
}

func TestIsOwnerOrAdmin(t *testing.T) {
	owner := model.Principal{UserID: "u1", Role: model.RoleFree, Status: model.StatusActive}
	other := model.Principal{UserID: "u2", Role: model.RoleFree, Status: model.StatusActive}
	f := &model.File{UserID: "u1"}
	s := &Service{}

	if s.isOwnerOrAdmin(f, nil) {
		t.Error("nil principal must never be treated as owner/admin")
	}
	if !s.isOwnerOrAdmin(f, &owner) {
		t.Error("owner should be recognized")
	}
	if s.isOwnerOrAdmin(f, &other) {
		t.Error("non-owner, non-admin should not be recognized")
	}
}

func TestApplyAntiAbuseShortening_BelowThresholdNoOp(t *testing.T) {
	s := &Service{cfg: Config{DownloadThreshold: 5, DaysAfterThreshold: 1}}
	f := &model.File{UniqueDownloadIPs: []string{"1.1.1.1", "2.2.2.2"}}

	if err := s.applyAntiAbuseShortening(context.Background(), f, time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

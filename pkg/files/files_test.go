package files

import (
	"testing"

	"github.com/Gaganb-30/cloud-store/pkg/model"
)

func TestIsOwner(t *testing.T) {
	owner := &model.Principal{UserID: "u1", Role: model.RoleFree}
	other := &model.Principal{UserID: "u2", Role: model.RoleFree}
	admin := &model.Principal{UserID: "u3", Role: model.RoleAdmin}

	if !isOwner("u1", owner) {
		t.Error("expected owner to have access")
	}
	if isOwner("u1", other) {
		t.Error("expected non-owner to be denied")
	}
	if !isOwner("u1", admin) {
		t.Error("expected admin to have access")
	}
	if isOwner("u1", nil) {
		t.Error("expected nil principal to be denied")
	}
}

func TestIsUnderPath(t *testing.T) {
	cases := []struct {
		candidate, ancestor string
		want                bool
	}{
		{"/a", "/a", true},
		{"/a/b", "/a", true},
		{"/a/b/c", "/a", true},
		{"/ab", "/a", false},
		{"/a", "/a/b", false},
		{"/b", "/a", false},
	}
	for _, c := range cases {
		if got := isUnderPath(c.candidate, c.ancestor); got != c.want {
			t.Errorf("isUnderPath(%q, %q) = %v, want %v", c.candidate, c.ancestor, got, c.want)
		}
	}
}

package handlers

import (
	"testing"

	"github.com/Gaganb-30/cloud-store/pkg/admin"
	"github.com/Gaganb-30/cloud-store/pkg/apperror"
	"github.com/Gaganb-30/cloud-store/pkg/download"
	"github.com/Gaganb-30/cloud-store/pkg/metadatastore"
	"github.com/Gaganb-30/cloud-store/pkg/upload"
)

func TestMapError_NotFound(t *testing.T) {
	appErr := mapError(metadatastore.ErrNotFound)
	if appErr.Kind != apperror.KindNotFound {
		t.Errorf("expected KindNotFound, got %s", appErr.Kind)
	}
}

func TestMapError_Forbidden(t *testing.T) {
	appErr := mapError(download.ErrForbidden)
	if appErr.Kind != apperror.KindAuthorization {
		t.Errorf("expected KindAuthorization, got %s", appErr.Kind)
	}
}

func TestMapError_CannotTargetAdmin(t *testing.T) {
	appErr := mapError(admin.ErrCannotTargetAdmin)
	if appErr.Kind != apperror.KindAuthorization {
		t.Errorf("expected KindAuthorization, got %s", appErr.Kind)
	}
}

func TestMapError_QuotaDenied(t *testing.T) {
	appErr := mapError(upload.ErrQuotaDenied)
	if appErr.Kind != apperror.KindValidation {
		t.Errorf("expected KindValidation, got %s", appErr.Kind)
	}
}

func TestMapError_UnknownErrorIsInternal(t *testing.T) {
	appErr := mapError(errUnknown)
	if appErr.Kind != apperror.KindInternal {
		t.Errorf("expected KindInternal, got %s", appErr.Kind)
	}
}

func TestMapError_PassesThroughExistingAppError(t *testing.T) {
	original := apperror.New(apperror.KindConflict, "already exists")
	appErr := mapError(original)
	if appErr != original {
		t.Error("expected mapError to return the same *apperror.Error unchanged")
	}
}

var errUnknown = errStub("something broke")

type errStub string

func (e errStub) Error() string { return string(e) }

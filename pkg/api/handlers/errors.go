package handlers

import (
	"errors"

	"github.com/Gaganb-30/cloud-store/pkg/admin"
	"github.com/Gaganb-30/cloud-store/pkg/apperror"
	"github.com/Gaganb-30/cloud-store/pkg/download"
	"github.com/Gaganb-30/cloud-store/pkg/files"
	"github.com/Gaganb-30/cloud-store/pkg/metadatastore"
	"github.com/Gaganb-30/cloud-store/pkg/ratelimit"
	"github.com/Gaganb-30/cloud-store/pkg/upload"
)

// mapError translates a service-layer sentinel error into the shared
// apperror taxonomy. Every package under pkg/ returns its own plain
// sentinel errors rather than importing apperror directly, so this is
// the single place that assigns them an HTTP-visible Kind.
func mapError(err error) *apperror.Error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, metadatastore.ErrNotFound),
		errors.Is(err, download.ErrNotFound),
		errors.Is(err, files.ErrNotFound):
		return apperror.Wrap(apperror.KindNotFound, "not found", err)

	case errors.Is(err, download.ErrForbidden),
		errors.Is(err, upload.ErrForbidden),
		errors.Is(err, files.ErrForbidden),
		errors.Is(err, admin.ErrCannotTargetAdmin):
		return apperror.Wrap(apperror.KindAuthorization, "forbidden", err)

	case errors.Is(err, upload.ErrInvalidChunk),
		errors.Is(err, upload.ErrChunkHashMismatch),
		errors.Is(err, upload.ErrIncomplete),
		errors.Is(err, upload.ErrInvalidParts),
		errors.Is(err, upload.ErrQuotaDenied),
		errors.Is(err, files.ErrQuotaExceeded),
		errors.Is(err, files.ErrCyclicMove),
		errors.Is(err, admin.ErrTooManyIDs):
		return apperror.Wrap(apperror.KindValidation, err.Error(), err)

	case errors.Is(err, files.ErrFolderNotEmpty):
		return apperror.Wrap(apperror.KindConflict, err.Error(), err)

	case errors.Is(err, ratelimit.ErrBlocked),
		errors.Is(err, ratelimit.ErrRestricted):
		return apperror.Wrap(apperror.KindAuthorization, err.Error(), err)

	default:
		return apperror.Wrap(apperror.KindInternal, "internal error", err)
	}
}

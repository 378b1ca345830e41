// Package apperror defines the error taxonomy shared by every FileVault
// component, and the single mapping from that taxonomy to HTTP status
// codes and the API's error envelope.
package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an error for both HTTP status mapping and retry
// policy. See spec.md §7.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindAuthentication Kind = "authentication"
	KindAuthorization  Kind = "authorization"
	KindNotFound       Kind = "not_found"
	KindConflict       Kind = "conflict"
	KindRateLimited    Kind = "rate_limited"
	KindStorage        Kind = "storage"
	KindInternal       Kind = "internal"
)

// Error is the error type every handler-facing layer returns. Cause is
// the wrapped underlying error, kept for logging but never serialized
// to the client.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches on Kind, so errors.Is(err, apperror.New(KindNotFound, ""))
// works for sentinel-style checks without comparing messages.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// HTTPStatus maps a Kind to its spec.md §7 status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindStorage:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the short machine-readable code used in the error
// envelope's {error:{code,message}} shape.
func Code(kind Kind) string {
	return string(kind)
}

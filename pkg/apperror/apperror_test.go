package apperror

import (
	"errors"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:     http.StatusBadRequest,
		KindAuthentication: http.StatusUnauthorized,
		KindAuthorization:  http.StatusForbidden,
		KindNotFound:       http.StatusNotFound,
		KindConflict:       http.StatusConflict,
		KindRateLimited:    http.StatusTooManyRequests,
		KindStorage:        http.StatusBadGateway,
		KindInternal:       http.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := HTTPStatus(kind); got != want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", kind, got, want)
		}
	}
}

func TestErrorIs_MatchesOnKind(t *testing.T) {
	err := Wrap(KindNotFound, "file missing", errors.New("row not found"))
	sentinel := New(KindNotFound, "")

	if !errors.Is(err, sentinel) {
		t.Error("expected errors.Is to match on Kind")
	}

	other := New(KindConflict, "")
	if errors.Is(err, other) {
		t.Error("expected errors.Is to not match a different Kind")
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(KindInternal, "wrapped", cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to reach the wrapped cause")
	}
}

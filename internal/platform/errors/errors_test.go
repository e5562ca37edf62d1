package errors

import (
	stderrs "errors"
	"net/http"
	"testing"
)

func TestHTTPStatusCode(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{ErrorCodeNotFound, http.StatusNotFound},
		{ErrorCodeInvalidArgument, http.StatusUnprocessableEntity},
		{ErrorCodeDuplicateKey, http.StatusConflict},
		{ErrorCodeValidation, http.StatusBadRequest},
		{ErrorCodeUnauthorized, http.StatusUnauthorized},
		{ErrorCodeTooManyRequests, http.StatusTooManyRequests},
		{ErrorCodeQuotaExceeded, http.StatusTooManyRequests},
		{ErrorCodeUnavailable, http.StatusServiceUnavailable},
		{ErrorCodeDB, http.StatusInternalServerError},
		{9999, http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := HTTPStatusCode(c.code); got != c.want {
			t.Fatalf("HTTPStatusCode(%v) = %d, want %d", c.code, got, c.want)
		}
	}
}

func TestWrapAndInspect(t *testing.T) {
	t.Parallel()

	root := stderrs.New("socket reset")
	err := Wrap(root, ErrorCodeUnavailable, "jsearch search")
	if got := err.Error(); got != "jsearch search: socket reset" {
		t.Fatalf("Error() = %q", got)
	}
	if !IsCode(err, ErrorCodeUnavailable) {
		t.Fatalf("code = %v", CodeOf(err))
	}
	if Root(err) != root {
		t.Fatal("Root lost the cause")
	}

	tagged := WithOp(WithField(err, "company"), "dedup.admit")
	e, ok := As(tagged)
	if !ok || e.Field() != "company" || e.Op() != "dedup.admit" {
		t.Fatalf("As = %+v %v", e, ok)
	}
	if e2, _ := As(err); e2.Field() != "" {
		t.Fatal("WithField mutated the original")
	}

	if WrapIf(nil, ErrorCodeDB, "x") != nil {
		t.Fatal("WrapIf(nil) should be nil")
	}
	if CodeOf(root) != ErrorCodeUnknown {
		t.Fatal("foreign errors are Unknown")
	}
	if IsCode(nil, ErrorCodeUnknown) {
		t.Fatal("nil has no code")
	}
}

func TestWireFrom(t *testing.T) {
	t.Parallel()

	if w := WireFrom(nil); w != (Wire{}) {
		t.Fatalf("nil wire = %+v", w)
	}
	w := WireFrom(WithField(Validationf("missing %s", "title"), "title"))
	if w.Code != ErrorCodeValidation || w.Message != "missing title" || w.Field != "title" {
		t.Fatalf("wire = %+v", w)
	}
	status, w := HTTP(stderrs.New("boom"))
	if status != http.StatusInternalServerError || w.Code != ErrorCodeUnknown {
		t.Fatalf("HTTP = %d %+v", status, w)
	}
}

func TestRetryable(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limited", Newf(ErrorCodeTooManyRequests, "429"), true},
		{"unavailable", Unavailablef("503"), true},
		{"auth", Newf(ErrorCodeUnauthorized, "401"), false},
		{"quota", QuotaExceededf("spent"), false},
	}
	for _, c := range cases {
		if got := Retryable(c.err); got != c.want {
			t.Fatalf("%s: Retryable = %v want %v", c.name, got, c.want)
		}
	}
}

func TestCodeString(t *testing.T) {
	t.Parallel()
	if ErrorCodeQuotaExceeded.String() != "quota_exceeded" {
		t.Fatalf("got %q", ErrorCodeQuotaExceeded.String())
	}
	if ErrorCode(500).String() != "code(500)" {
		t.Fatalf("got %q", ErrorCode(500).String())
	}
}

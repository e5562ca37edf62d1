// Package bind decodes and validates JSON request bodies
package bind

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	perr "jobacq/internal/platform/errors"
	"jobacq/internal/platform/validate"
)

// Options controls decoding
type Options struct {
	MaxBytes        int64
	DisallowUnknown bool
}

// Defaults caps bodies at 1MB and rejects unknown fields
var Defaults = Options{MaxBytes: 1 << 20, DisallowUnknown: true}

// ParseJSON decodes one JSON value into T and validates it.
// Decode failures are JSON errors, tag failures are Validation errors.
func ParseJSON[T any](r *http.Request, opts ...Options) (T, error) {
	var zero T
	o := Defaults
	if len(opts) > 0 {
		o = opts[0]
	}
	defer r.Body.Close()

	var body io.Reader = r.Body
	if o.MaxBytes > 0 {
		body = io.LimitReader(r.Body, o.MaxBytes)
	}
	dec := json.NewDecoder(body)
	if o.DisallowUnknown {
		dec.DisallowUnknownFields()
	}

	var dst T
	if err := dec.Decode(&dst); err != nil {
		if errors.Is(err, io.EOF) {
			return zero, perr.JSONErrf("empty body")
		}
		return zero, perr.JSONErrf("invalid JSON: %v", err)
	}
	if dec.More() {
		return zero, perr.JSONErrf("unexpected trailing data")
	}
	if err := validate.Struct(dst); err != nil {
		return zero, err
	}
	return dst, nil
}

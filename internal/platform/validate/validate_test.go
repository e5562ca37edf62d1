package validate

import (
	"testing"

	perr "jobacq/internal/platform/errors"
)

type posting struct {
	Title   string   `json:"title" validate:"notblank"`
	Company string   `json:"company" validate:"required"`
	Tags    []string `json:"tags" validate:"max=2"`
}

func TestStruct(t *testing.T) {
	cases := []struct {
		name  string
		in    posting
		field string
	}{
		{"ok", posting{Title: "Go Dev", Company: "Acme"}, ""},
		{"blank title", posting{Title: "   ", Company: "Acme"}, "title"},
		{"missing company", posting{Title: "Go Dev"}, "company"},
		{"too many tags", posting{Title: "Go Dev", Company: "Acme", Tags: []string{"a", "b", "c"}}, "tags"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Struct(tc.in)
			if tc.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !perr.IsCode(err, perr.ErrorCodeValidation) {
				t.Fatalf("code = %v, want validation (%v)", perr.CodeOf(err), err)
			}
			e, _ := perr.As(err)
			if e.Field() != tc.field {
				t.Fatalf("field = %q, want %q", e.Field(), tc.field)
			}
		})
	}
}

func TestShortMessages(t *testing.T) {
	err := Get().Validator.Struct(posting{Title: "x", Company: "y", Tags: []string{"a", "b", "c"}})
	_, msg := FieldAndMessage(err)
	if msg != "tags must be at most 2" {
		t.Fatalf("msg = %q", msg)
	}
	if f, m := FieldAndMessage(nil); f != "" || m != "" {
		t.Fatal("nil should give empty")
	}
}

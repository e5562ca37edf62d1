// Package normalize folds free text into the comparison form used for combination keys
// and content fingerprints.
//
// Pipeline order
// 1 UTF-8 repair, invalid bytes dropped
// 2 Unicode NFKC
// 3 Case folding
// 4 Combining marks and format chars (ZWJ, BOM) removed
// 5 Fullwidth forms folded to ASCII
// 6 Whitespace runs collapsed to one space, ends trimmed
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// transformer chains are stateful, so each call borrows one
var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKC,
			cases.Fold(),
			runes.Remove(runes.In(unicode.Mn)),
			runes.Remove(runes.In(unicode.Cf)),
			width.Fold,
		)
	},
}

// Text returns the folded form of s. Text(Text(s)) == Text(s).
func Text(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToValidUTF8(s, "")

	tr := chainPool.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		// chain cannot fail on valid UTF-8; fall back to a plain fold
		out = strings.ToLower(s)
	}
	return strings.Join(strings.Fields(out), " ")
}

// Location is Text with one trailing country qualifier removed and repeated
// adjacent segments collapsed, so "Berlin, Germany", "Berlin, Berlin, DE" and
// "berlin" compare equal
func Location(s string) string {
	parts := strings.Split(Text(s), ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) > 1 && parts[0] != "" {
		if _, ok := countries[parts[len(parts)-1]]; ok {
			parts = parts[:len(parts)-1]
		}
	}

	out := parts[:1]
	for _, p := range parts[1:] {
		if p != "" && p == out[len(out)-1] {
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, ", ")
}

// Prefix returns the first n runes of s
func Prefix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// Package combo expands a preference document into atomic search combinations.
// Expansion is pure: no I/O, deterministic output independent of input order.
package combo

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"jobacq/internal/core/normalize"
)

// AnyLocation stands in for the location of users who named none
const AnyLocation = "*"

// Preferences is the inbound preferences document
type Preferences struct {
	DesiredTitles    []string `json:"desired_titles" validate:"max=50,dive,max=200"`
	DesiredLocations []string `json:"desired_locations" validate:"max=50,dive,max=200"`
	WorkArrangement  string   `json:"work_arrangement,omitempty" validate:"max=64"`
	EmploymentType   string   `json:"employment_type,omitempty" validate:"max=64"`
	Seniority        string   `json:"seniority,omitempty" validate:"max=64"`
	Industry         string   `json:"industry,omitempty" validate:"max=128"`
}

// Combination is one atomic search tuple with display casing kept.
// Absent filters are "".
type Combination struct {
	Title           string `json:"title"`
	Location        string `json:"location"`
	WorkArrangement string `json:"work_arrangement,omitempty"`
	EmploymentType  string `json:"employment_type,omitempty"`
	Seniority       string `json:"seniority,omitempty"`
	Industry        string `json:"industry,omitempty"`
}

// Key is the comparison form of a Combination and is usable as a map key.
// Its fields are what the ledger and search rows store.
type Key struct {
	Title           string
	Location        string
	WorkArrangement string
	EmploymentType  string
	Seniority       string
	Industry        string
}

// Key folds c into its identity
func (c Combination) Key() Key {
	return Key{
		Title:           normalize.Text(c.Title),
		Location:        normalize.Text(c.Location),
		WorkArrangement: normalize.Text(c.WorkArrangement),
		EmploymentType:  normalize.Text(c.EmploymentType),
		Seniority:       normalize.Text(c.Seniority),
		Industry:        normalize.Text(c.Industry),
	}
}

// AnyLocation reports whether c carries no location constraint
func (c Combination) AnyLocation() bool { return c.Location == AnyLocation }

// Fields lists the key columns in storage order
func (k Key) Fields() []string {
	return []string{k.Title, k.Location, k.WorkArrangement, k.EmploymentType, k.Seniority, k.Industry}
}

// String is a readable form for logs
func (k Key) String() string { return strings.Join(k.Fields(), "|") }

// Hash is a fixed width digest of the key for external key spaces
func (k Key) Hash() string {
	sum := sha256.Sum256([]byte(strings.Join(k.Fields(), "\x1f")))
	return hex.EncodeToString(sum[:16])
}

// Expand returns titles × locations, each with the shared filters.
// Blank entries are ignored, entries that fold to the same key collapse to the
// first one in sorted order, and zero locations bind every title to AnyLocation.
// Zero titles yield nil.
func Expand(p Preferences) []Combination {
	titles := distinct(p.DesiredTitles)
	if len(titles) == 0 {
		return nil
	}
	locations := distinct(p.DesiredLocations)
	if len(locations) == 0 {
		locations = []string{AnyLocation}
	}

	wa := strings.TrimSpace(p.WorkArrangement)
	et := strings.TrimSpace(p.EmploymentType)
	sn := strings.TrimSpace(p.Seniority)
	in := strings.TrimSpace(p.Industry)

	out := make([]Combination, 0, len(titles)*len(locations))
	for _, t := range titles {
		for _, l := range locations {
			out = append(out, Combination{
				Title:           t,
				Location:        l,
				WorkArrangement: wa,
				EmploymentType:  et,
				Seniority:       sn,
				Industry:        in,
			})
		}
	}
	return out
}

// distinct trims, drops blanks and keeps one display value per folded form.
// Sorting first makes the surviving display value independent of input order.
func distinct(vals []string) []string {
	trimmed := make([]string, 0, len(vals))
	for _, v := range vals {
		if v = strings.Join(strings.Fields(v), " "); v != "" {
			trimmed = append(trimmed, v)
		}
	}
	sort.Strings(trimmed)

	seen := make(map[string]struct{}, len(trimmed))
	out := trimmed[:0]
	for _, v := range trimmed {
		k := normalize.Text(v)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out
}

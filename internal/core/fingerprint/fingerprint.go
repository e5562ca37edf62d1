// Package fingerprint hashes job content so the same posting from different
// providers collapses to one identity
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"

	"jobacq/internal/core/normalize"
)

// DescriptionPrefix is how many runes of the folded description take part
const DescriptionPrefix = 100

// Compute returns hex sha256 over title|company|location|description prefix,
// each folded; location also loses a trailing country qualifier
func Compute(title, company, location, description string) string {
	s := normalize.Text(title) + "|" +
		normalize.Text(company) + "|" +
		normalize.Location(location) + "|" +
		normalize.Prefix(normalize.Text(description), DescriptionPrefix)
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

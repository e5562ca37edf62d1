// Package version reports the build stamped into a binary
package version

// BuildInfo describes a build
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// set with -ldflags "-X jobacq/internal/core/version.version=v0.1.0 -X ...commit=abcd -X ...date=2026-10-01"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Info returns the build info for service
func Info(service string) BuildInfo {
	return BuildInfo{Service: service, Version: version, Commit: commit, Date: date}
}

// String is the one line form printed by -version
func (b BuildInfo) String() string {
	return b.Service + " " + b.Version + " (" + b.Commit + ", " + b.Date + ")"
}

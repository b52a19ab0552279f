// Package version holds build information set via ldflags.
package version

// Set with -ldflags "-X github.com/sydlexius/crate/internal/version.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

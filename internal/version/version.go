// Package version holds build version information.
package version

import "fmt"

// Build information. Overridden at build time via
// -ldflags "-X orion/internal/version.Version=...".
var (
	Version   = "0.3.0"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Info returns a short version string, including the abbreviated commit
// hash when one is available.
func Info() string {
	if Commit != "unknown" && len(Commit) > 7 {
		return fmt.Sprintf("%s (%s)", Version, Commit[:7])
	}
	return Version
}

// Full returns the complete multi-line version description.
func Full() string {
	return fmt.Sprintf("Orion version %s\nCommit: %s\nBuilt: %s", Version, Commit, BuildDate)
}

// Package version holds build metadata set by the linker.
package version

import "fmt"

// These variables are populated by the Go linker (LDFLAGS) at build time.
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// String returns the version line printed by "exnote version".
func String() string {
	return fmt.Sprintf("exnote %s (commit %s, built %s)", Version, CommitHash, BuildDate)
}

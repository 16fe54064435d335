// Package version holds build information injected via ldflags.
package version

var (
	// Version is the semantic version of the build, "dev" when built locally.
	Version = "dev"
	// Commit is the git commit hash the binary was built from.
	Commit = "none"
	// Date is the UTC build timestamp.
	Date = "unknown"
)

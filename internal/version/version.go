// Package version holds build information set with -ldflags.
package version

// Set at build time, e.g.
// -ldflags "-X yousearch/internal/version.Version=v0.3.0"
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

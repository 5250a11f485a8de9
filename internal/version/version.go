// Package version carries build metadata stamped via -ldflags.
package version

import (
	"fmt"
	"runtime"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// GoVersion returns the Go runtime version string.
func GoVersion() string { return runtime.Version() }

// String renders the build description printed by `redbot version`.
func String() string {
	return fmt.Sprintf("redbot %s (commit %s, built %s, %s)",
		Version, GitCommit, BuildTime, GoVersion())
}

// UserAgent is the default User-Agent for outbound Reddit requests, in the
// platform:app:version format the Reddit API guidelines ask for.
func UserAgent() string {
	return "golang:redbot:" + Version
}

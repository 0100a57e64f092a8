package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

var (
	// Version is the semantic version of the build. It can be overridden via ldflags.
	Version = "0.1.0"
	// Commit is the short git SHA embedded at build time (or "none").
	Commit = "none"
	// BuildTime is the UTC build timestamp embedded at build time.
	BuildTime = "unknown"
)

// shortCommitLength is how many characters of a VCS revision are shown.
const shortCommitLength = 7

//nolint:gochecknoglobals // Build info is read once per process.
var fillOnce sync.Once

// fillFromBuildInfo takes commit and time from the Go toolchain's VCS stamp
// when ldflags did not set them.
func fillFromBuildInfo() {
	fillOnce.Do(func() {
		info, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}

		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				if Commit == "none" && setting.Value != "" {
					Commit = setting.Value[:min(len(setting.Value), shortCommitLength)]
				}
			case "vcs.time":
				if BuildTime == "unknown" && setting.Value != "" {
					BuildTime = setting.Value
				}
			}
		}
	})
}

// Short returns only the semantic version string.
func Short() string {
	return Version
}

// Full returns a human-readable version string with commit, build time and Go version.
func Full() string {
	fillFromBuildInfo()

	return fmt.Sprintf("chessclock %s, commit: %s, built at: %s, %s %s/%s",
		Version, Commit, BuildTime, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

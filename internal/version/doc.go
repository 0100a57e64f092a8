// Package version exposes build metadata for chessclock.
//
// Variables Version, Commit, and BuildTime are injected at build time via
// Go ldflags. Commit and BuildTime fall back to the VCS stamp the Go
// toolchain embeds in the binary.
package version

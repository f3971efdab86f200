// Package version exposes build metadata of the version-sync binary.
//
// Version, Commit and BuildTime are injected through ldflags at build time.
// This is the tool's own version, not the project version it rewrites.
package version

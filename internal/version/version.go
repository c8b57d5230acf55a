// Package version exposes build metadata stamped at link time.
package version

// Version is overridden with -ldflags at release builds.
var Version = "dev"

// Package version exposes the build version string.
package version

// Version is overridden at build time via -ldflags "-X".
var Version = "0.9.0-dev"

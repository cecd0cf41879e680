// Package version holds the application version reported by the HTTP surface.
package version

// Current is the application version. Overridden at build time via
// -ldflags "-X tessera/internal/shared/version.Current=...".
var Current = "dev"

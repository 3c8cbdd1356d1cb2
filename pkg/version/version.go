// Package version carries build identity for logs, telemetry, and the
// CLI --version flag.
package version

// Current defaults to "dev" and is overwritten at release time via
// -ldflags.
var Current = "dev"

const AppName = "TopDeck"

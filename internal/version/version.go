// Package version exposes build metadata stamped at link time.
package version

// Set via -ldflags "-X github.com/yaytapi/yaytapi/internal/version.Commit=... -X ...Branch=...".
var (
	// Version is the gateway release version.
	Version = "0.2.0"
	// Commit is the git commit the binary was built from.
	Commit = "unknown"
	// Branch is the git branch the binary was built from.
	Branch = "unknown"
)

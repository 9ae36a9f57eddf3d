// Package version provides version information for probecov.
// Overridden at link time by release builds.
package version

// These variables can be overridden at build time using ldflags:
// go build -ldflags "-X probecov/internal/version.Version=1.0.0 -X probecov/internal/version.Commit=abc123"
var (
	// Version is the semantic version of probecov
	Version = "0.3.0"

	// Commit is the git commit hash (set at build time)
	Commit = "unknown"

	// BuildDate is the build timestamp (set at build time)
	BuildDate = "unknown"
)

// Info returns a formatted version string
func Info() string {
	if Commit != "unknown" && len(Commit) > 7 {
		return Version + " (" + Commit[:7] + ")"
	}
	return Version
}

// Full returns complete version information
func Full() string {
	return "probecov version " + Version + "\n" +
		"Commit: " + Commit + "\n" +
		"Built: " + BuildDate
}

// Fields returns the version data as key/value pairs for JSON output.
func Fields() map[string]string {
	return map[string]string{
		"version":   Version,
		"commit":    Commit,
		"buildDate": BuildDate,
	}
}

// Package version provides build version information embedding.
//
// Version is set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/voicetypr/remote/version.Version=1.9.0"
package version

var (
	// Version is the application version reported by the status endpoint.
	Version = "dev"
	// GitCommit is the short commit hash of the build.
	GitCommit = ""
)

// String returns the version, with the commit hash appended when known.
func String() string {
	if GitCommit != "" {
		return Version + "+" + GitCommit
	}
	return Version
}

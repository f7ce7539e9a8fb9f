// Package version contains build metadata for the dockdeck binary.
package version

// Name is the program name used in the user agent and CLI output.
const Name = "dockdeck"

// Set at build time via -ldflags "-X github.com/zorak1103/dockdeck/internal/version.Version=...".
var (
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// BuildInfo is the JSON form of the build metadata.
type BuildInfo struct {
	Version   string `json:"version"`
	BuildDate string `json:"build_date"`
	GitCommit string `json:"git_commit"`
}

// GetFullVersion returns version with build metadata
func GetFullVersion() string {
	return Version + " (build: " + BuildDate + ", commit: " + GitCommit + ")"
}

// UserAgent identifies dockdeck to the container runtime.
func UserAgent() string {
	return Name + "/" + Version
}

// Info returns the current build metadata.
func Info() BuildInfo {
	return BuildInfo{Version: Version, BuildDate: BuildDate, GitCommit: GitCommit}
}

package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func setBuild(t *testing.T, v, date, commit string) {
	t.Helper()

	origVersion, origDate, origCommit := Version, BuildDate, GitCommit
	t.Cleanup(func() {
		Version, BuildDate, GitCommit = origVersion, origDate, origCommit
	})
	Version, BuildDate, GitCommit = v, date, commit
}

func TestGetFullVersion(t *testing.T) {
	tests := []struct {
		name      string
		version   string
		buildDate string
		gitCommit string
		want      string
	}{
		{
			name:      "default values",
			version:   "dev",
			buildDate: "unknown",
			gitCommit: "unknown",
			want:      "dev (build: unknown, commit: unknown)",
		},
		{
			name:      "production release",
			version:   "1.2.0",
			buildDate: "2026-10-01T10:30:00Z",
			gitCommit: "abc123def",
			want:      "1.2.0 (build: 2026-10-01T10:30:00Z, commit: abc123def)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBuild(t, tt.version, tt.buildDate, tt.gitCommit)
			assert.Equal(t, tt.want, GetFullVersion())
		})
	}
}

func TestUserAgent(t *testing.T) {
	setBuild(t, "v0.3.1", "unknown", "unknown")
	assert.Equal(t, "dockdeck/v0.3.1", UserAgent())
}

func TestInfo(t *testing.T) {
	setBuild(t, "1.0.0", "2026-10-19", "deadbeef")
	assert.Equal(t, BuildInfo{Version: "1.0.0", BuildDate: "2026-10-19", GitCommit: "deadbeef"}, Info())
}

package templates

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zorak1103/dockdeck/internal/config"
)

func TestConfigYAML_ContainsSections(t *testing.T) {
	content := string(ConfigYAML)

	expectedSections := []string{
		"runtime:",
		"directory:",
		"relay:",
		"launcher:",
		"server:",
		"logging:",
		"notification:",
	}

	for _, section := range expectedSections {
		if !strings.Contains(content, section) {
			t.Errorf("Expected ConfigYAML to contain section %q", section)
		}
	}
}

func TestConfigYAML_ContainsComments(t *testing.T) {
	if !strings.Contains(string(ConfigYAML), "#") {
		t.Error("Expected ConfigYAML to contain comments (lines starting with #)")
	}
}

func TestConfigYAML_LoadsWithDefaults(t *testing.T) {
	t.Setenv("DOCKER_HOST", "tcp://127.0.0.1:2375")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, ConfigYAML, 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("config.Load() on template failed: %v", err)
	}

	if cfg.Relay.BufferSize != config.DefaultBufferSize {
		t.Errorf("relay.buffer_size = %d, want %d", cfg.Relay.BufferSize, config.DefaultBufferSize)
	}
	if cfg.Runtime.SocketPath != "tcp://127.0.0.1:2375" {
		t.Errorf("runtime.socket_path = %q, want auto-detected DOCKER_HOST", cfg.Runtime.SocketPath)
	}
	if !cfg.Notification.FailuresOnly {
		t.Error("notification.failures_only should default to true")
	}
}

func TestEnvFile_ContainsEnvVars(t *testing.T) {
	content := string(EnvFile)

	expectedVars := []string{
		"DOCKDECK_RUNTIME_BACKEND",
		"DOCKDECK_RUNTIME_SOCKET_PATH",
		"DOCKDECK_RELAY_BUFFER_SIZE",
		"DOCKDECK_NOTIFICATION_SHOUTRRR_URL",
	}

	for _, envVar := range expectedVars {
		if !strings.Contains(content, envVar) {
			t.Errorf("Expected EnvFile to contain variable %q", envVar)
		}
	}
}

func TestEnvFile_HasProperFormat(t *testing.T) {
	for _, line := range strings.Split(string(EnvFile), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !strings.Contains(line, "=") {
			t.Errorf("Expected KEY=value, got %q", line)
		}
	}
}

func TestFiles(t *testing.T) {
	files := Files()
	if len(files) != 2 {
		t.Fatalf("Files() returned %d files, want 2", len(files))
	}
	if files[0].Name != "config.yaml" || files[1].Name != ".env" {
		t.Errorf("unexpected file names: %q, %q", files[0].Name, files[1].Name)
	}
	for _, f := range files {
		if len(f.Content) == 0 {
			t.Errorf("%s has no content", f.Name)
		}
	}
}

package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zorak1103/dockdeck/internal/templates"
)

func TestInitCmd_CreatesFiles(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "init", "--dir", dir)
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}

	for _, name := range []string{"config.yaml", ".env"} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("expected %s to exist: %v", name, err)
		}
		if perm := info.Mode().Perm(); perm != 0o600 {
			t.Errorf("%s permissions = %o, want 600", name, perm)
		}
	}

	content, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != string(templates.ConfigYAML) {
		t.Error("config.yaml does not match the embedded template")
	}
	if !strings.Contains(out, "Initialization complete") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestInitCmd_SkipsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("custom: true\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "init", "--dir", dir)
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}

	content, _ := os.ReadFile(configPath)
	if string(content) != "custom: true\n" {
		t.Error("existing config.yaml was overwritten without --force")
	}
	if !strings.Contains(out, "Skipping") {
		t.Errorf("expected a skip message, got:\n%s", out)
	}
}

func TestInitCmd_ForceOverwritesFiles(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("custom: true\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "init", "--dir", dir, "--force"); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	content, _ := os.ReadFile(configPath)
	if string(content) != string(templates.ConfigYAML) {
		t.Error("config.yaml was not overwritten with --force")
	}
}

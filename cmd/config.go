package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zorak1103/dockdeck/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Display the effective configuration",
	Long: `Display the effective configuration that dockdeck will use at runtime.

This shows the merged configuration from:
  1. Default values
  2. Configuration file (config.yaml)
  3. Environment variables (highest priority)

Notification credentials are masked for security.`,
	Example: `  # Show current configuration
  dockdeck config

  # Show with custom config file
  dockdeck config --config /etc/dockdeck/config.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}

		printConfig(cmd.OutOrStdout(), c)
		return nil
	},
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.AddCommand(configCmd)
}

func printConfig(w io.Writer, c *config.Config) {
	p := func(format string, args ...any) {
		_, _ = fmt.Fprintf(w, format, args...)
	}

	p("=== dockdeck Effective Configuration ===\n")
	p("Source: %s\n\n", configSource(c))

	p("🐳 Runtime:\n")
	p("   Backend:        %s\n", c.Runtime.Backend)
	p("   Socket Path:    %s\n", c.Runtime.SocketPath)
	p("\n")

	p("📦 Directory:\n")
	p("   Snapshot TTL:   %s\n", c.Directory.SnapshotTTL)
	p("   Name Pattern:   %s\n", orNone(c.Directory.NamePattern))
	p("\n")

	p("📜 Log Relay:\n")
	p("   Buffer Size:    %d chunks\n", c.Relay.BufferSize)
	p("\n")

	p("🚀 Launcher:\n")
	p("   Web Host:       %s\n", c.Launcher.WebHost)
	p("   Terminal:       %s\n", orNone(strings.TrimSpace(c.Launcher.Terminal+" "+strings.Join(c.Launcher.TerminalArgs, " "))))
	p("   Shell:          %s %s\n", c.RuntimeCLI(), c.Launcher.Shell)
	p("\n")

	p("🌐 Server:\n")
	p("   Listen:         %s\n", c.Server.Listen)
	p("\n")

	p("🔔 Notification Configuration:\n")
	p("   Enabled:        %v\n", c.Notification.Enabled)
	p("   Shoutrrr URL:   %s\n", maskShoutrrrURL(c.Notification.ShoutrrrURL))
	p("   Failures Only:  %v\n", c.Notification.FailuresOnly)
	p("\n")
}

func orNone(value string) string {
	if value == "" {
		return "(platform default)"
	}
	return value
}

// maskShoutrrrURL masks sensitive parts of Shoutrrr URL
func maskShoutrrrURL(url string) string {
	if url == "" {
		return "❌ Not configured"
	}

	// Extract service type (e.g., discord://, slack://, smtp://)
	parts := strings.SplitN(url, "://", 2)
	if len(parts) != 2 {
		return "✅ Configured (invalid format)"
	}

	service := parts[0]
	// Mask the credentials/tokens
	return fmt.Sprintf("✅ Configured (%s://***)", service)
}

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zorak1103/dockdeck/internal/templates"
)

var (
	force   bool
	initDir string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a sample configuration",
	Long: `Init writes a commented config.yaml and a .env template.

Run this once when setting up dockdeck for the first time, then adjust the
runtime backend and socket if auto-detection does not fit your host.`,
	Example: `  # Initialize in current directory
  dockdeck init

  # Force overwrite existing files
  dockdeck init --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintln(out, "🔧 Initializing dockdeck...")

		if err := os.MkdirAll(initDir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", initDir, err)
		}

		for _, file := range templates.Files() {
			path := filepath.Join(initDir, file.Name)
			if _, err := os.Stat(path); err == nil && !force {
				_, _ = fmt.Fprintf(out, "⚠️  Skipping %s (already exists, use --force to overwrite)\n", path)
				continue
			}

			if err := os.WriteFile(path, file.Content, 0o600); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}

			_, _ = fmt.Fprintf(out, "✅ Created %s\n", path)
		}

		_, _ = fmt.Fprintln(out, "\n🎉 Initialization complete!")
		_, _ = fmt.Fprintln(out, "\n📝 Next steps:")
		_, _ = fmt.Fprintln(out, "   1. Edit config.yaml to pick docker or podman")
		_, _ = fmt.Fprintln(out, "   2. Run 'dockdeck list' to check the runtime connection")
		_, _ = fmt.Fprintln(out, "   3. Run 'dockdeck serve' to start the local API")

		return nil
	},
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration files")
	initCmd.Flags().StringVar(&initDir, "dir", ".", "directory to write the files to")
}

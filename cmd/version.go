package cmd

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/zorak1103/dockdeck/internal/engine"
	"github.com/zorak1103/dockdeck/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show dockdeck and container runtime versions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "%s %s\n\n", version.Name, version.GetFullVersion())

		ctx, svc, err := connect(cmd)
		if err != nil {
			return err
		}
		defer closeService(ctx, svc)

		info, err := svc.GetVersion(ctx)
		if err != nil {
			return err
		}

		renderVersion(out, info)
		return nil
	},
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.AddCommand(versionCmd)
}

func renderVersion(w io.Writer, info engine.VersionInfo) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetTitle("Runtime")

	t.AppendRows([]table.Row{
		{"Backend", info.Backend},
		{"Version", info.Version},
		{"API version", info.APIVersion},
		{"Min API version", info.MinAPIVersion},
		{"Git commit", info.GitCommit},
		{"Go version", info.GoVersion},
		{"OS/Arch", info.Os + "/" + info.Arch},
		{"Kernel", info.KernelVersion},
		{"Built", info.BuildTime},
	})

	t.Render()
}

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/sanity-io/litter"
	"github.com/spf13/cobra"
)

var inspectDump bool

var inspectCmd = &cobra.Command{
	Use:   "inspect <container-id>",
	Short: "Show the runtime's full description of a container",
	Example: `  # JSON output
  dockdeck inspect abc123

  # Go-syntax dump, handy when debugging field types
  dockdeck inspect abc123 --dump`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, svc, err := connect(cmd)
		if err != nil {
			return err
		}
		defer closeService(ctx, svc)

		info, err := svc.Inspect(ctx, args[0])
		if err != nil {
			return err
		}

		if inspectDump {
			_, err = fmt.Fprintln(cmd.OutOrStdout(), litter.Sdump(info))
			return err
		}

		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(info)
	},
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().BoolVar(&inspectDump, "dump", false, "print a Go-syntax dump instead of JSON")
}

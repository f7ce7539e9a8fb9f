package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/zorak1103/dockdeck/internal/operation"
)

var opQuiet bool

var opCmd = &cobra.Command{
	Use:   "op <operation> <container-id>",
	Short: "Run an operation against a container",
	Long: heredoc.Docf(`
		Run an operation against a single container.

		Operations: %s

		open-web opens the first published port in the default browser.
		open-shell opens a terminal running an interactive shell in the container.
		The command exits with status 1 when the operation fails.
	`, kindNames()),
	Example: `  dockdeck op restart abc123
  dockdeck op open-web web1-id`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, svc, err := connect(cmd)
		if err != nil {
			return err
		}
		defer closeService(ctx, svc)

		var s *spinner.Spinner
		if !opQuiet {
			s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
			s.Suffix = fmt.Sprintf(" Running %s on %s...", args[0], shortID(args[1]))
			s.Start()
		}

		outcome := svc.Execute(ctx, args[1], args[0])

		if s != nil {
			s.Stop()
		}

		if !outcome.Success {
			return errors.New(outcome.Message)
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", text.FgGreen.Sprint("✅"), outcome.Message)
		return nil
	},
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.AddCommand(opCmd)

	opCmd.Flags().BoolVarP(&opQuiet, "quiet", "q", false, "do not show a progress spinner")
}

func kindNames() string {
	names := make([]string, 0, len(operation.Kinds))
	for _, kind := range operation.Kinds {
		names = append(names, kind.String())
	}
	return strings.Join(names, ", ")
}

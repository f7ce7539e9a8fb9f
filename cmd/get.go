package cmd

import (
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/zorak1103/dockdeck/internal/directory"
)

var getCmd = &cobra.Command{
	Use:   "get <container-id>",
	Short: "Show a single container",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, svc, err := connect(cmd)
		if err != nil {
			return err
		}
		defer closeService(ctx, svc)

		record, err := svc.GetContainer(ctx, args[0])
		if err != nil {
			return err
		}

		renderContainer(cmd.OutOrStdout(), record)
		return nil
	},
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.AddCommand(getCmd)
}

func renderContainer(w io.Writer, r directory.ContainerRecord) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{text.FgHiCyan.Sprint("KEY"), text.FgHiCyan.Sprint("VALUE")})

	t.AppendRows([]table.Row{
		{"ID", r.ID},
		{"Names", strings.Join(r.Names, ", ")},
		{"Image", r.Image},
		{"State", colorState(r.State)},
		{"Status", r.Status},
		{"Ports", formatPorts(r.Ports)},
	})

	t.Render()
}

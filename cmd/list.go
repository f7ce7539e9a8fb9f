package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/zorak1103/dockdeck/internal/directory"
)

const shortIDLength = 12

var listFilter string

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "ps"},
	Short:   "List containers in every state",
	Example: `  # List all containers
  dockdeck list

  # Only containers whose name starts with "web"
  dockdeck list --filter '^web'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, svc, err := connect(cmd)
		if err != nil {
			return err
		}
		defer closeService(ctx, svc)

		records, err := svc.FindContainers(ctx, listFilter)
		if err != nil {
			return err
		}

		renderContainers(cmd.OutOrStdout(), records)
		return nil
	},
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listFilter, "filter", "", "regular expression matched against container names")
}

func renderContainers(w io.Writer, records []directory.ContainerRecord) {
	if len(records) == 0 {
		_, _ = fmt.Fprintf(w, "%s %s\n", text.FgYellow.Sprint("📋"), text.FgYellow.Sprint("No containers found"))
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"ID", "NAME", "IMAGE", "STATE", "STATUS", "PORTS"})

	for _, r := range records {
		t.AppendRow(table.Row{
			shortID(r.ID),
			r.ShellName(),
			r.Image,
			colorState(r.State),
			r.Status,
			formatPorts(r.Ports),
		})
	}

	t.Render()
}

func shortID(id string) string {
	if len(id) > shortIDLength {
		return id[:shortIDLength]
	}
	return id
}

func colorState(state string) string {
	switch state {
	case "running":
		return text.FgGreen.Sprint(state)
	case "exited", "dead":
		return text.FgRed.Sprint(state)
	default:
		return text.FgYellow.Sprint(state)
	}
}

// formatPorts renders ports the way `docker ps` does: 0.0.0.0:8080->80/tcp.
func formatPorts(ports []directory.PublishedPort) string {
	parts := make([]string, 0, len(ports))
	for _, p := range ports {
		if public, ok := p.PublicPort.Get(); ok {
			host := p.IP
			if host == "" {
				host = "0.0.0.0"
			}
			parts = append(parts, fmt.Sprintf("%s:%d->%d/%s", host, public, p.PrivatePort, p.Protocol))
			continue
		}
		parts = append(parts, fmt.Sprintf("%d/%s", p.PrivatePort, p.Protocol))
	}
	return strings.Join(parts, ", ")
}

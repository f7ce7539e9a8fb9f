package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zorak1103/dockdeck/internal/relay"
)

var logsCmd = &cobra.Command{
	Use:   "logs <container-id>",
	Short: "Follow the log output of a container",
	Long: `Follow the stdout and stderr of a container until the container stops
or the command is interrupted with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, svc, err := connect(cmd)
		if err != nil {
			return err
		}
		defer closeService(ctx, svc)

		if _, err := svc.GetContainer(ctx, args[0]); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		sub := svc.SubscribeLogs(ctx, args[0], relay.NewWriterSink(cmd.OutOrStdout()))
		state := sub.Wait()
		logger.Debugf("Log subscription %s ended: %s.", sub.ID(), state)

		return sub.Err()
	},
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.AddCommand(logsCmd)
}

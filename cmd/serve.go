package cmd

import (
	"os"
	"os/signal"
	"syscall"

	logging "github.com/KonishchevDmitry/go-easy-logging"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/zorak1103/dockdeck/internal/config"
	"github.com/zorak1103/dockdeck/internal/server"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the local HTTP API",
	Long: `Serve the container API, live logs as Server-Sent Events and Prometheus
metrics on a local address (server.listen, default 127.0.0.1:3000).`,
	Example: `  dockdeck serve
  dockdeck serve --listen 127.0.0.1:8088`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		addr := listenAddress(c, serveListen)

		ctx, svc, err := connect(cmd)
		if err != nil {
			return err
		}
		defer closeService(ctx, svc)

		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(ctx, svc)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return srv.Listen(addr)
		})
		g.Go(func() error {
			<-gctx.Done()
			logging.L(ctx).Info("Shutting down...")
			return srv.Shutdown()
		})

		if err := g.Wait(); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (overrides server.listen)")
}

// listenAddress prefers the --listen flag over server.listen.
func listenAddress(c *config.Config, override string) string {
	if override != "" {
		return override
	}
	return c.Server.Listen
}

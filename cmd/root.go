// Package cmd implements the CLI commands.
package cmd

import (
	"context"
	"fmt"
	"os"

	logging "github.com/KonishchevDmitry/go-easy-logging"
	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zorak1103/dockdeck/internal/config"
	apperrors "github.com/zorak1103/dockdeck/internal/errors"
	applog "github.com/zorak1103/dockdeck/internal/logging"
	"github.com/zorak1103/dockdeck/internal/service"
	"github.com/zorak1103/dockdeck/internal/version"
)

// Exit codes: 0 = success, 1 = general error, 2 = configuration or runtime connection error
const (
	exitError = 1
	exitFatal = 2
)

var (
	cfgFile       string
	verbose       bool
	cfg           *config.Config
	errConfigLoad error
	logger        = zap.NewNop().Sugar()

	// newService is replaced in tests.
	newService = service.FromConfig
)

var rootCmd = &cobra.Command{
	Use:   "dockdeck",
	Short: "Local container control plane",
	Long: heredoc.Doc(`
		dockdeck manages the containers of the local Docker or Podman runtime.

		It features:
		  - Container listing and inspection
		  - Start, stop, restart and delete operations
		  - Opening published ports in the browser and shells in a terminal
		  - Live log streaming with backpressure
		  - A local HTTP API with Server-Sent Events and Prometheus metrics
		  - Operation notifications via Shoutrrr
	`),
	Version:       version.GetFullVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, errConfigLoad = nil, nil

		skipConfig := cmd.Name() == "init" || cmd.Name() == "help" || cmd.Name() == "completion"
		if !skipConfig {
			cfg, errConfigLoad = config.Load(cfgFile)
		}

		devel := verbose || (cfg != nil && cfg.Logging.Devel)
		l, err := applog.Configure(devel)
		if err != nil {
			return err
		}
		logger = l

		if errConfigLoad != nil {
			logger.Debugf("Could not load config: %s.", errConfigLoad)
		} else if cfg != nil {
			logger.Debugf("Loaded configuration from: %s.", configSource(cfg))
		}

		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	_ = logger.Sync() // Always fails to sync stderr
	if err == nil {
		return 0
	}

	_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	if apperrors.IsFatal(err) {
		return exitFatal
	}
	return exitError
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// requireConfig returns the loaded configuration or the reason it is missing.
func requireConfig() (*config.Config, error) {
	if errConfigLoad != nil {
		return nil, errConfigLoad
	}
	if cfg == nil {
		return nil, &apperrors.ConfigurationError{
			ConfigPath: cfgFile,
			Err:        fmt.Errorf("configuration not loaded, run 'dockdeck init' to get started"),
		}
	}
	return cfg, nil
}

// commandContext returns the command context carrying the logger.
func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logging.WithLogger(ctx, logger)
}

// connect loads the configuration and connects to the runtime. The caller
// must close the returned service.
func connect(cmd *cobra.Command) (context.Context, *service.Service, error) {
	c, err := requireConfig()
	if err != nil {
		return nil, nil, err
	}

	ctx := commandContext(cmd)
	svc, err := newService(ctx, c)
	if err != nil {
		return nil, nil, err
	}
	return ctx, svc, nil
}

func closeService(ctx context.Context, svc *service.Service) {
	if err := svc.Close(); err != nil {
		logging.L(ctx).Warnf("Failed to close %s connection: %s.", svc.Backend(), err)
	}
}

func configSource(c *config.Config) string {
	if c.ConfigFilePath == "" {
		return "(defaults and environment variables)"
	}
	return c.ConfigFilePath
}

package service

import (
	"context"

	logging "github.com/KonishchevDmitry/go-easy-logging"

	"github.com/zorak1103/dockdeck/internal/config"
	"github.com/zorak1103/dockdeck/internal/engine"
	"github.com/zorak1103/dockdeck/internal/launcher"
	"github.com/zorak1103/dockdeck/internal/metrics"
	"github.com/zorak1103/dockdeck/internal/notification"
	"github.com/zorak1103/dockdeck/internal/operation"
)

// FromConfig connects to the configured runtime and wires launcher, metrics
// and notifications into a Service.
func FromConfig(ctx context.Context, cfg *config.Config) (*Service, error) {
	notifier, err := notification.NewNotifier(cfg)
	if err != nil {
		return nil, err
	}

	client, err := engine.New(ctx, cfg.Runtime.Backend, cfg.Runtime.SocketPath)
	if err != nil {
		return nil, err
	}

	observers := []operation.Observer{metrics.OperationObserver{}}
	if notifier.IsEnabled() {
		observers = append(observers, notifier)
	}

	svc, err := New(ctx, client, Options{
		NamePattern: cfg.Directory.NamePattern,
		SnapshotTTL: cfg.Directory.SnapshotTTL,
		BufferSize:  cfg.Relay.BufferSize,
		WebHost:     cfg.Launcher.WebHost,
		Launcher: launcher.New(launcher.Options{
			RuntimeCLI:   cfg.RuntimeCLI(),
			Shell:        cfg.Launcher.Shell,
			Terminal:     cfg.Launcher.Terminal,
			TerminalArgs: cfg.Launcher.TerminalArgs,
		}),
		OperationObserver: observers,
		RelayObserver:     metrics.RelayObserver{},
	})
	if err != nil {
		if closeErr := client.Close(); closeErr != nil {
			logging.L(ctx).Warnf("Failed to close %s client: %s.", client.Backend(), closeErr)
		}
		return nil, err
	}

	return svc, nil
}

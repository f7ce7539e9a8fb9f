// Package service exposes the container operations offered to the CLI and the
// HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	logging "github.com/KonishchevDmitry/go-easy-logging"

	"github.com/zorak1103/dockdeck/internal/directory"
	"github.com/zorak1103/dockdeck/internal/engine"
	apperrors "github.com/zorak1103/dockdeck/internal/errors"
	"github.com/zorak1103/dockdeck/internal/launcher"
	"github.com/zorak1103/dockdeck/internal/operation"
	"github.com/zorak1103/dockdeck/internal/relay"
)

// Options wires the collaborators of a Service.
type Options struct {
	NamePattern string
	SnapshotTTL time.Duration
	BufferSize  int
	WebHost     string

	Launcher          operation.Launcher
	OperationObserver []operation.Observer
	RelayObserver     relay.Observer
}

// Service is the single entry point for presentation layers.
type Service struct {
	client     engine.Client
	directory  *directory.Directory
	dispatcher *operation.Dispatcher
	relay      *relay.Relay
}

// New verifies the runtime is reachable and assembles the service. A failed
// ping is returned as *apperrors.RuntimeConnectionError.
func New(ctx context.Context, client engine.Client, opts Options) (*Service, error) {
	if err := client.Ping(ctx); err != nil {
		var connErr *apperrors.RuntimeConnectionError
		if !errors.As(err, &connErr) {
			err = &apperrors.RuntimeConnectionError{Backend: client.Backend(), Operation: "Ping", Err: err}
		}
		return nil, err
	}

	dir := directory.New(client,
		directory.WithNamePattern(opts.NamePattern),
		directory.WithSnapshotTTL(opts.SnapshotTTL),
	)

	dispatcherOpts := []operation.Option{
		operation.WithWebHost(opts.WebHost),
		operation.WithInvalidate(dir.Invalidate),
	}
	for _, o := range opts.OperationObserver {
		dispatcherOpts = append(dispatcherOpts, operation.WithObserver(o))
	}

	if opts.Launcher == nil {
		opts.Launcher = launcher.New(launcher.Options{RuntimeCLI: client.Backend()})
	}

	logging.L(ctx).Debugf("Connected to %s runtime.", client.Backend())

	return &Service{
		client:     client,
		directory:  dir,
		dispatcher: operation.NewDispatcher(client, dir.Lookup, opts.Launcher, dispatcherOpts...),
		relay: relay.New(client,
			relay.WithBufferSize(opts.BufferSize),
			relay.WithObserver(opts.RelayObserver),
		),
	}, nil
}

// Backend names the connected runtime.
func (s *Service) Backend() string {
	return s.client.Backend()
}

// Ping checks that the runtime still answers.
func (s *Service) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

// Close releases the runtime connection.
func (s *Service) Close() error {
	return s.client.Close()
}

// ListContainers returns every container from a fresh snapshot.
func (s *Service) ListContainers(ctx context.Context) ([]directory.ContainerRecord, error) {
	snapshot, err := s.directory.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	return snapshot.Records(), nil
}

// FindContainers lists containers with at least one name matching pattern.
// An empty pattern matches everything.
func (s *Service) FindContainers(ctx context.Context, pattern string) ([]directory.ContainerRecord, error) {
	if pattern == "" {
		return s.ListContainers(ctx)
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid filter %q: %w", pattern, err)
	}

	records, err := s.ListContainers(ctx)
	if err != nil {
		return nil, err
	}

	matched := records[:0]
	for _, record := range records {
		for _, name := range record.Names {
			if re.MatchString(strings.TrimLeft(name, "/")) {
				matched = append(matched, record)
				break
			}
		}
	}
	return matched, nil
}

// GetContainer resolves id against a fresh snapshot. An unknown id returns
// *apperrors.NotFoundError.
func (s *Service) GetContainer(ctx context.Context, id string) (directory.ContainerRecord, error) {
	return s.directory.Lookup(ctx, id)
}

// Inspect returns the runtime's full description of a container.
func (s *Service) Inspect(ctx context.Context, id string) (engine.Info, error) {
	if _, err := s.directory.Lookup(ctx, id); err != nil {
		return nil, err
	}
	return s.client.Inspect(ctx, id)
}

// GetVersion queries the runtime version on every call.
func (s *Service) GetVersion(ctx context.Context) (engine.VersionInfo, error) {
	info, err := s.client.Version(ctx)
	if err != nil {
		var connErr *apperrors.RuntimeConnectionError
		if !errors.As(err, &connErr) {
			err = &apperrors.RuntimeConnectionError{Backend: s.client.Backend(), Operation: "Version", Err: err}
		}
		return engine.VersionInfo{}, err
	}
	return info, nil
}

// Execute runs the operation named kind against id. Unknown kinds produce a
// failure outcome rather than an error.
func (s *Service) Execute(ctx context.Context, id, kind string) operation.Outcome {
	return s.dispatcher.Execute(ctx, operation.Request{ContainerID: id, Kind: operation.ParseKind(kind)})
}

// SubscribeLogs starts relaying the logs of id to sink.
func (s *Service) SubscribeLogs(ctx context.Context, id string, sink relay.Sink) *relay.Subscription {
	return s.relay.Open(ctx, id, sink)
}

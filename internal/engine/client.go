// Package engine provides the container runtime client used by dockdeck.
// It exposes the runtime through narrow capability interfaces with Docker and
// Podman backends behind them.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Supported runtime backends.
const (
	BackendDocker = "docker"
	BackendPodman = "podman"
)

// ErrUnknownBackend is returned by New for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown runtime backend")

// Lister lists containers known to the runtime.
type Lister interface {
	// ListContainers lists containers matching the provided filter options.
	//
	// Example usage with filters:
	//   opts := FilterOptions{
	//       IncludeAll:  true,              // Include stopped containers
	//       NamePattern: "^app-.*-prod$",   // Match production app containers
	//   }
	//   containers, err := client.ListContainers(ctx, opts)
	ListContainers(ctx context.Context, opts FilterOptions) ([]Container, error)
}

// Inspector returns detailed runtime information about a container.
type Inspector interface {
	Inspect(ctx context.Context, containerID string) (Info, error)
}

// Lifecycle changes the state of a single container.
type Lifecycle interface {
	Start(ctx context.Context, containerID string) error
	Stop(ctx context.Context, containerID string) error
	Remove(ctx context.Context, containerID string) error
}

// LogStreamer follows the log output of a container.
type LogStreamer interface {
	// StreamLogs sends chunks to out in the order the runtime produced them.
	// Every send blocks until out has room or ctx is done. It returns nil when
	// the runtime closes the stream, ctx.Err() when cancelled and any other
	// error when the stream cannot be opened or breaks. out is never closed.
	StreamLogs(ctx context.Context, containerID string, out chan<- LogChunk) error
}

// Versioner reports runtime version information.
type Versioner interface {
	Version(ctx context.Context) (VersionInfo, error)
}

// Client defines the complete runtime capability set.
// All methods accept context.Context for cancellation support.
type Client interface {
	Lister
	Inspector
	Lifecycle
	LogStreamer
	Versioner

	// Ping verifies the runtime is accessible. Returns error if connection fails.
	Ping(ctx context.Context) error
	// Close closes the runtime connection and releases resources.
	Close() error
	// Backend names the runtime implementation (docker, podman).
	Backend() string
}

// New connects to the runtime selected by backend at socketPath (or the
// backend default if empty).
func New(ctx context.Context, backend, socketPath string) (Client, error) {
	switch strings.ToLower(backend) {
	case "", BackendDocker:
		return NewDockerClient(socketPath)
	case BackendPodman:
		return NewPodmanClient(ctx, socketPath)
	default:
		return nil, fmt.Errorf("%w: %q (supported: %s, %s)", ErrUnknownBackend, backend, BackendDocker, BackendPodman)
	}
}

type nameFilter struct {
	re *regexp.Regexp
}

func newNameFilter(pattern string) (nameFilter, error) {
	if pattern == "" {
		return nameFilter{}, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nameFilter{}, fmt.Errorf("invalid name pattern '%s': %w", pattern, err)
	}
	return nameFilter{re: re}, nil
}

func (f nameFilter) match(names []string) bool {
	if f.re == nil {
		return true
	}
	return f.re.MatchString(primaryName(names))
}

// primaryName returns the first container name without the leading slash.
func primaryName(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return strings.TrimLeft(names[0], "/")
}

// sendChunk delivers a chunk or gives up when ctx is done.
func sendChunk(ctx context.Context, out chan<- LogChunk, chunk LogChunk) error {
	select {
	case out <- chunk:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// toInfo converts a typed inspect response into free-form Info.
func toInfo(v any) (Info, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode inspect response: %w", err)
	}
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to decode inspect response: %w", err)
	}
	return info, nil
}

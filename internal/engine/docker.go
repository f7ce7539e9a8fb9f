package engine

import (
	"context"
	"fmt"
	"io"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	apperrors "github.com/zorak1103/dockdeck/internal/errors"
	"github.com/zorak1103/dockdeck/internal/version"
)

// dockerAPI is the subset of the Docker SDK client used by DockerClient.
type dockerAPI interface {
	Ping(ctx context.Context) (types.Ping, error)
	Close() error
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
	ContainerInspect(ctx context.Context, containerID string) (container.InspectResponse, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerStop(ctx context.Context, containerID string, options container.StopOptions) error
	ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error
	ContainerLogs(ctx context.Context, containerID string, options container.LogsOptions) (io.ReadCloser, error)
	ServerVersion(ctx context.Context) (types.Version, error)
}

// Compile-time verification that the SDK client satisfies dockerAPI
var _ dockerAPI = (*client.Client)(nil)

// DockerClient talks to the Docker daemon control socket.
type DockerClient struct {
	api        dockerAPI
	socketPath string
}

// Compile-time verification that DockerClient implements Client
var _ Client = (*DockerClient)(nil)

// NewDockerClient connects to the Docker daemon at socketPath (or default if empty).
func NewDockerClient(socketPath string) (*DockerClient, error) {
	opts := []client.Opt{
		client.WithAPIVersionNegotiation(),
		client.WithUserAgent(version.UserAgent()),
	}

	// Add host option if socket path is specified
	if socketPath != "" {
		opts = append(opts, client.WithHost(socketPath))
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, &apperrors.RuntimeConnectionError{
			Backend:    BackendDocker,
			SocketPath: socketPath,
			Operation:  "Connect",
			Err:        err,
		}
	}

	return &DockerClient{api: cli, socketPath: socketPath}, nil
}

// newDockerClientWithAPI is used for testing with mock implementations.
func newDockerClientWithAPI(api dockerAPI) *DockerClient {
	return &DockerClient{api: api}
}

// Backend implements Client.
func (c *DockerClient) Backend() string {
	return BackendDocker
}

// Ping implements Client.
func (c *DockerClient) Ping(ctx context.Context) error {
	if _, err := c.api.Ping(ctx); err != nil {
		return &apperrors.RuntimeConnectionError{
			Backend:    BackendDocker,
			SocketPath: c.socketPath,
			Operation:  "Ping",
			Err:        err,
		}
	}
	return nil
}

// Close implements Client.
func (c *DockerClient) Close() error {
	return c.api.Close()
}

// ListContainers implements Lister.
func (c *DockerClient) ListContainers(ctx context.Context, opts FilterOptions) ([]Container, error) {
	filter, err := newNameFilter(opts.NamePattern)
	if err != nil {
		return nil, err
	}

	containers, err := c.api.ContainerList(ctx, container.ListOptions{All: opts.IncludeAll})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers from socket %s: %w", c.socketPath, err)
	}

	result := make([]Container, 0, len(containers))
	for _, ctr := range containers {
		if !filter.match(ctr.Names) {
			continue
		}

		ports := make([]Port, 0, len(ctr.Ports))
		for _, p := range ctr.Ports {
			ports = append(ports, Port{
				IP:          p.IP,
				PrivatePort: p.PrivatePort,
				PublicPort:  p.PublicPort,
				Protocol:    p.Type,
			})
		}

		result = append(result, Container{
			ID:     ctr.ID,
			Names:  append([]string(nil), ctr.Names...),
			Image:  ctr.Image,
			State:  string(ctr.State),
			Status: ctr.Status,
			Ports:  ports,
			Labels: ctr.Labels,
		})
	}

	return result, nil
}

// Inspect implements Inspector.
func (c *DockerClient) Inspect(ctx context.Context, containerID string) (Info, error) {
	resp, err := c.api.ContainerInspect(ctx, containerID)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect container %s: %w", containerID, err)
	}
	return toInfo(resp)
}

// Start implements Lifecycle.
func (c *DockerClient) Start(ctx context.Context, containerID string) error {
	return c.api.ContainerStart(ctx, containerID, container.StartOptions{})
}

// Stop implements Lifecycle.
func (c *DockerClient) Stop(ctx context.Context, containerID string) error {
	return c.api.ContainerStop(ctx, containerID, container.StopOptions{})
}

// Remove implements Lifecycle.
func (c *DockerClient) Remove(ctx context.Context, containerID string) error {
	return c.api.ContainerRemove(ctx, containerID, container.RemoveOptions{})
}

// StreamLogs implements LogStreamer.
func (c *DockerClient) StreamLogs(ctx context.Context, containerID string, out chan<- LogChunk) error {
	resp, err := c.api.ContainerInspect(ctx, containerID)
	if err != nil {
		return fmt.Errorf("failed to inspect container %s: %w", containerID, err)
	}
	tty := resp.Config != nil && resp.Config.Tty

	reader, err := c.api.ContainerLogs(ctx, containerID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
	})
	if err != nil {
		return fmt.Errorf("failed to open log stream for container %s: %w", containerID, err)
	}

	// A blocked Read only returns once the body is closed.
	stop := context.AfterFunc(ctx, func() { _ = reader.Close() })
	defer func() {
		stop()
		_ = reader.Close()
	}()

	if tty {
		_, err = io.Copy(&chunkWriter{ctx: ctx, out: out}, reader)
	} else {
		_, err = stdcopy.StdCopy(
			&chunkWriter{ctx: ctx, out: out, stream: "stdout"},
			&chunkWriter{ctx: ctx, out: out, stream: "stderr"},
			reader,
		)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("log stream for container %s broke: %w", containerID, err)
	}
	return nil
}

// Version implements Versioner.
func (c *DockerClient) Version(ctx context.Context) (VersionInfo, error) {
	v, err := c.api.ServerVersion(ctx)
	if err != nil {
		return VersionInfo{}, fmt.Errorf("failed to query docker version: %w", err)
	}

	return VersionInfo{
		Backend:       BackendDocker,
		Version:       v.Version,
		APIVersion:    v.APIVersion,
		MinAPIVersion: v.MinAPIVersion,
		GitCommit:     v.GitCommit,
		GoVersion:     v.GoVersion,
		Os:            v.Os,
		Arch:          v.Arch,
		KernelVersion: v.KernelVersion,
		BuildTime:     v.BuildTime,
	}, nil
}

// chunkWriter turns every Write into one LogChunk.
type chunkWriter struct {
	ctx    context.Context
	out    chan<- LogChunk
	stream string
}

func (w *chunkWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	// Callers reuse p after Write returns.
	data := append([]byte(nil), p...)
	if err := sendChunk(w.ctx, w.out, LogChunk{Stream: w.stream, Data: data}); err != nil {
		return 0, err
	}
	return len(p), nil
}

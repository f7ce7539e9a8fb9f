package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/containers/podman/v5/pkg/bindings"
	"github.com/containers/podman/v5/pkg/bindings/containers"
	"github.com/containers/podman/v5/pkg/bindings/system"
	"github.com/containers/podman/v5/pkg/domain/entities"

	apperrors "github.com/zorak1103/dockdeck/internal/errors"
)

// DefaultPodmanSocket is the rootful Podman service socket.
const DefaultPodmanSocket = "unix:///run/podman/podman.sock"

// podmanAPI is the subset of the Podman bindings used by PodmanClient.
type podmanAPI interface {
	List(ctx context.Context, all bool) ([]entities.ListContainer, error)
	Inspect(ctx context.Context, nameOrID string) (any, error)
	Start(ctx context.Context, nameOrID string) error
	Stop(ctx context.Context, nameOrID string) error
	Remove(ctx context.Context, nameOrID string) error
	Logs(ctx context.Context, nameOrID string, stdout, stderr chan string) error
	Version(ctx context.Context) (*entities.SystemVersionReport, error)
}

// bindingsAPI calls the Podman REST bindings on a connection context.
type bindingsAPI struct {
	conn context.Context
}

// bind attaches the connection to ctx so cancelling ctx cancels the request.
func (b bindingsAPI) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	reqCtx, cancel := context.WithCancel(b.conn)
	stop := context.AfterFunc(ctx, cancel)
	return reqCtx, func() {
		stop()
		cancel()
	}
}

func (b bindingsAPI) List(ctx context.Context, all bool) ([]entities.ListContainer, error) {
	reqCtx, cancel := b.bind(ctx)
	defer cancel()
	return containers.List(reqCtx, new(containers.ListOptions).WithAll(all)) //nolint:contextcheck
}

func (b bindingsAPI) Inspect(ctx context.Context, nameOrID string) (any, error) {
	reqCtx, cancel := b.bind(ctx)
	defer cancel()
	return containers.Inspect(reqCtx, nameOrID, nil) //nolint:contextcheck
}

func (b bindingsAPI) Start(ctx context.Context, nameOrID string) error {
	reqCtx, cancel := b.bind(ctx)
	defer cancel()
	return containers.Start(reqCtx, nameOrID, nil) //nolint:contextcheck
}

func (b bindingsAPI) Stop(ctx context.Context, nameOrID string) error {
	reqCtx, cancel := b.bind(ctx)
	defer cancel()
	return containers.Stop(reqCtx, nameOrID, nil) //nolint:contextcheck
}

func (b bindingsAPI) Remove(ctx context.Context, nameOrID string) error {
	reqCtx, cancel := b.bind(ctx)
	defer cancel()

	reports, err := containers.Remove(reqCtx, nameOrID, nil) //nolint:contextcheck
	if err != nil {
		return err
	}
	for _, report := range reports {
		if report != nil && report.Err != nil {
			return report.Err
		}
	}
	return nil
}

func (b bindingsAPI) Logs(ctx context.Context, nameOrID string, stdout, stderr chan string) error {
	reqCtx, cancel := b.bind(ctx)
	defer cancel()

	opts := new(containers.LogOptions).WithFollow(true).WithStdout(true).WithStderr(true)
	return containers.Logs(reqCtx, nameOrID, opts, stdout, stderr) //nolint:contextcheck
}

func (b bindingsAPI) Version(ctx context.Context) (*entities.SystemVersionReport, error) {
	reqCtx, cancel := b.bind(ctx)
	defer cancel()
	return system.Version(reqCtx, nil) //nolint:contextcheck
}

// PodmanClient talks to the Podman service through its native bindings.
type PodmanClient struct {
	api        podmanAPI
	socketPath string
}

// Compile-time verification that PodmanClient implements Client
var _ Client = (*PodmanClient)(nil)

// NewPodmanClient connects to the Podman service at socketPath (or the rootful default if empty).
func NewPodmanClient(ctx context.Context, socketPath string) (*PodmanClient, error) {
	if socketPath == "" {
		socketPath = DefaultPodmanSocket
	}

	conn, err := bindings.NewConnection(ctx, socketPath)
	if err != nil {
		return nil, &apperrors.RuntimeConnectionError{
			Backend:    BackendPodman,
			SocketPath: socketPath,
			Operation:  "Connect",
			Err:        err,
		}
	}

	return &PodmanClient{api: bindingsAPI{conn: conn}, socketPath: socketPath}, nil
}

// newPodmanClientWithAPI is used for testing with mock implementations.
func newPodmanClientWithAPI(api podmanAPI) *PodmanClient {
	return &PodmanClient{api: api}
}

// Backend implements Client.
func (c *PodmanClient) Backend() string {
	return BackendPodman
}

// Ping implements Client.
func (c *PodmanClient) Ping(ctx context.Context) error {
	if _, err := c.api.Version(ctx); err != nil {
		return &apperrors.RuntimeConnectionError{
			Backend:    BackendPodman,
			SocketPath: c.socketPath,
			Operation:  "Ping",
			Err:        err,
		}
	}
	return nil
}

// Close implements Client. The bindings connection holds no resources to release.
func (c *PodmanClient) Close() error {
	return nil
}

// ListContainers implements Lister.
func (c *PodmanClient) ListContainers(ctx context.Context, opts FilterOptions) ([]Container, error) {
	filter, err := newNameFilter(opts.NamePattern)
	if err != nil {
		return nil, err
	}

	list, err := c.api.List(ctx, opts.IncludeAll)
	if err != nil {
		return nil, fmt.Errorf("failed to list containers from socket %s: %w", c.socketPath, err)
	}

	result := make([]Container, 0, len(list))
	for _, ctr := range list {
		if !filter.match(ctr.Names) {
			continue
		}

		ports := make([]Port, 0, len(ctr.Ports))
		for _, p := range ctr.Ports {
			ports = append(ports, Port{
				IP:          p.HostIP,
				PrivatePort: p.ContainerPort,
				PublicPort:  p.HostPort,
				Protocol:    p.Protocol,
			})
		}

		result = append(result, Container{
			ID:     ctr.ID,
			Names:  append([]string(nil), ctr.Names...),
			Image:  ctr.Image,
			State:  ctr.State,
			Status: ctr.Status,
			Ports:  ports,
			Labels: ctr.Labels,
		})
	}

	return result, nil
}

// Inspect implements Inspector.
func (c *PodmanClient) Inspect(ctx context.Context, containerID string) (Info, error) {
	data, err := c.api.Inspect(ctx, containerID)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect container %s: %w", containerID, err)
	}
	return toInfo(data)
}

// Start implements Lifecycle.
func (c *PodmanClient) Start(ctx context.Context, containerID string) error {
	return c.api.Start(ctx, containerID)
}

// Stop implements Lifecycle.
func (c *PodmanClient) Stop(ctx context.Context, containerID string) error {
	return c.api.Stop(ctx, containerID)
}

// Remove implements Lifecycle.
func (c *PodmanClient) Remove(ctx context.Context, containerID string) error {
	return c.api.Remove(ctx, containerID)
}

// StreamLogs implements LogStreamer.
//
// The bindings send every frame with a plain blocking send, so the channels
// are drained until Logs returns even after ctx is done.
func (c *PodmanClient) StreamLogs(ctx context.Context, containerID string, out chan<- LogChunk) error {
	stdout := make(chan string)
	stderr := make(chan string)
	errc := make(chan error, 1)

	go func() {
		errc <- c.api.Logs(ctx, containerID, stdout, stderr)
	}()

	forward := func(stream, line string) {
		if ctx.Err() != nil {
			return
		}
		_ = sendChunk(ctx, out, LogChunk{Stream: stream, Data: []byte(line)})
	}

	for {
		select {
		case line := <-stdout:
			forward("stdout", line)
		case line := <-stderr:
			forward("stderr", line)
		case err := <-errc:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("log stream for container %s failed: %w", containerID, err)
			}
			return nil
		}
	}
}

// Version implements Versioner.
func (c *PodmanClient) Version(ctx context.Context) (VersionInfo, error) {
	report, err := c.api.Version(ctx)
	if err != nil {
		return VersionInfo{}, fmt.Errorf("failed to query podman version: %w", err)
	}

	v := report.Server
	if v == nil {
		v = report.Client
	}
	if v == nil {
		return VersionInfo{}, errors.New("podman returned an empty version report")
	}

	osName, arch, _ := strings.Cut(v.OsArch, "/")
	if v.Os != "" {
		osName = v.Os
	}

	return VersionInfo{
		Backend:    BackendPodman,
		Version:    v.Version,
		APIVersion: v.APIVersion,
		GitCommit:  v.GitCommit,
		GoVersion:  v.GoVersion,
		Os:         osName,
		Arch:       arch,
		BuildTime:  v.BuiltTime,
	}, nil
}

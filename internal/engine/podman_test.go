package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/containers/common/libnetwork/types"
	"github.com/containers/podman/v5/libpod/define"
	"github.com/containers/podman/v5/pkg/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type logLine struct {
	stderr bool
	text   string
}

// mockPodmanAPI implements podmanAPI for testing
type mockPodmanAPI struct {
	list    []entities.ListContainer
	lines   []logLine
	follow  bool
	version *entities.SystemVersionReport
	err     error
	failOn  string
}

func (m *mockPodmanAPI) fail(op string) error {
	if m.failOn == op {
		return m.err
	}
	return nil
}

func (m *mockPodmanAPI) List(_ context.Context, _ bool) ([]entities.ListContainer, error) {
	return m.list, m.fail("list")
}

func (m *mockPodmanAPI) Inspect(_ context.Context, nameOrID string) (any, error) {
	return map[string]string{"Id": nameOrID}, m.fail("inspect")
}

func (m *mockPodmanAPI) Start(_ context.Context, _ string) error  { return m.fail("start") }
func (m *mockPodmanAPI) Stop(_ context.Context, _ string) error   { return m.fail("stop") }
func (m *mockPodmanAPI) Remove(_ context.Context, _ string) error { return m.fail("remove") }

// Logs mimics the bindings: plain blocking sends, return on ctx done.
func (m *mockPodmanAPI) Logs(ctx context.Context, _ string, stdout, stderr chan string) error {
	if err := m.fail("logs"); err != nil {
		return err
	}
	for _, l := range m.lines {
		if l.stderr {
			stderr <- l.text
		} else {
			stdout <- l.text
		}
	}
	if m.follow {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

func (m *mockPodmanAPI) Version(_ context.Context) (*entities.SystemVersionReport, error) {
	if err := m.fail("version"); err != nil {
		return nil, err
	}
	return m.version, nil
}

func TestPodmanClient_ListContainers(t *testing.T) {
	api := &mockPodmanAPI{
		list: []entities.ListContainer{
			{
				ID:     "abc123",
				Names:  []string{"web1"},
				Image:  "docker.io/library/nginx:latest",
				State:  "running",
				Status: "Up 5 seconds",
				Ports:  []types.PortMapping{{HostIP: "", ContainerPort: 80, HostPort: 8080, Protocol: "tcp"}},
			},
			{ID: "def456", Names: []string{"db"}, State: "exited"},
		},
	}
	client := newPodmanClientWithAPI(api)

	result, err := client.ListContainers(context.Background(), FilterOptions{IncludeAll: true, NamePattern: "web"})
	require.NoError(t, err)
	require.Len(t, result, 1)

	assert.Equal(t, "abc123", result[0].ID)
	assert.Equal(t, []Port{{PrivatePort: 80, PublicPort: 8080, Protocol: "tcp"}}, result[0].Ports)
}

func TestPodmanClient_StreamLogs(t *testing.T) {
	api := &mockPodmanAPI{lines: []logLine{{text: "a"}, {stderr: true, text: "b"}, {text: "c"}}}
	client := newPodmanClientWithAPI(api)
	out := make(chan LogChunk, 10)

	require.NoError(t, client.StreamLogs(context.Background(), "abc123", out))

	assert.Equal(t, []LogChunk{
		{Stream: "stdout", Data: []byte("a")},
		{Stream: "stderr", Data: []byte("b")},
		{Stream: "stdout", Data: []byte("c")},
	}, collect(out))
}

func TestPodmanClient_StreamLogs_OpenFailure(t *testing.T) {
	api := &mockPodmanAPI{failOn: "logs", err: errors.New("no container with name or ID \"nope\" found")}
	client := newPodmanClientWithAPI(api)

	err := client.StreamLogs(context.Background(), "nope", make(chan LogChunk))
	assert.ErrorContains(t, err, "nope")
}

func TestPodmanClient_StreamLogs_CancelWhileBlocked(t *testing.T) {
	// Unbuffered out nobody reads: the first forward blocks until cancellation
	// and the remaining lines must still be drained from the bindings.
	api := &mockPodmanAPI{lines: []logLine{{text: "a"}, {text: "b"}, {text: "c"}}, follow: true}
	client := newPodmanClientWithAPI(api)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- client.StreamLogs(ctx, "abc123", make(chan LogChunk))
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("StreamLogs did not return after cancellation")
	}
}

func TestPodmanClient_Version(t *testing.T) {
	api := &mockPodmanAPI{version: &entities.SystemVersionReport{
		Server: &define.Version{Version: "5.6.2", APIVersion: "5.6.2", OsArch: "linux/arm64"},
	}}
	client := newPodmanClientWithAPI(api)

	info, err := client.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, BackendPodman, info.Backend)
	assert.Equal(t, "5.6.2", info.Version)
	assert.Equal(t, "linux", info.Os)
	assert.Equal(t, "arm64", info.Arch)
}

func TestPodmanClient_Ping(t *testing.T) {
	api := &mockPodmanAPI{failOn: "version", err: errors.New("dial unix: no such file")}
	client := newPodmanClientWithAPI(api)

	assert.Error(t, client.Ping(context.Background()))
}

package cmd

import (
	"bytes"
	"testing"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zorak1103/dockdeck/internal/directory"
	"github.com/zorak1103/dockdeck/internal/engine/enginetest"
	apperrors "github.com/zorak1103/dockdeck/internal/errors"
)

func TestListCmd(t *testing.T) {
	useFakeRuntime(t)

	out, err := execute(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "0123456789ab")
	assert.NotContains(t, out, "0123456789abcdef")
	assert.Contains(t, out, "web1")
	assert.Contains(t, out, "0.0.0.0:8080->80/tcp")
	assert.Contains(t, out, "db")
}

func TestListCmd_Filter(t *testing.T) {
	useFakeRuntime(t)

	out, err := execute(t, "list", "--filter", "^db$")
	require.NoError(t, err)
	assert.Contains(t, out, "postgres:16")
	assert.NotContains(t, out, "nginx")

	out, err = execute(t, "list", "--filter", "^nothing$")
	require.NoError(t, err)
	assert.Contains(t, out, "No containers found")
}

func TestGetCmd(t *testing.T) {
	useFakeRuntime(t)

	out, err := execute(t, "get", "def456")
	require.NoError(t, err)
	assert.Contains(t, out, "/db")
	assert.Contains(t, out, "Exited (0) 1 day ago")

	_, err = execute(t, "get", "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestInspectCmd(t *testing.T) {
	useFakeRuntime(t)

	out, err := execute(t, "inspect", "def456")
	require.NoError(t, err)
	assert.JSONEq(t, `{"Id":"def456"}`, out)

	out, err = execute(t, "inspect", "def456", "--dump")
	require.NoError(t, err)
	assert.Contains(t, out, `"Id": "def456"`)
}

func TestVersionCmd(t *testing.T) {
	useFakeRuntime(t)

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "dockdeck")
	assert.Contains(t, out, "28.5.2")
	assert.Contains(t, out, "linux/amd64")
}

func TestOpCmd(t *testing.T) {
	fake := useFakeRuntime(t)

	out, err := execute(t, "op", "-q", "restart", "def456")
	require.NoError(t, err)
	assert.Contains(t, out, "Container restarted")
	assert.Equal(t, []string{enginetest.OpPing, "stop def456", "start def456"}, fake.Calls())

	_, err = execute(t, "op", "-q", "open-web", "def456")
	assert.EqualError(t, err, "Failed to open web page: port not available")

	_, err = execute(t, "op", "-q", "pause", "def456")
	assert.EqualError(t, err, "Invalid operation type")
}

func TestLogsCmd(t *testing.T) {
	useFakeRuntime(t)

	out, err := execute(t, "logs", "def456")
	require.NoError(t, err)
	assert.Equal(t, "database system is ready\nshutting down\n", out)

	_, err = execute(t, "logs", "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestFormatPorts(t *testing.T) {
	ports := []directory.PublishedPort{
		{IP: "127.0.0.1", PrivatePort: 80, Protocol: "tcp", PublicPort: mo.Some[uint16](8080)},
		{PrivatePort: 53, Protocol: "udp", PublicPort: mo.Some[uint16](5353)},
		{PrivatePort: 443, Protocol: "tcp", PublicPort: mo.None[uint16]()},
	}

	assert.Equal(t, "127.0.0.1:8080->80/tcp, 0.0.0.0:5353->53/udp, 443/tcp", formatPorts(ports))
	assert.Empty(t, formatPorts(nil))
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "0123456789ab", shortID("0123456789abcdef"))
	assert.Equal(t, "abc", shortID("abc"))
}

func TestRenderContainers_Empty(t *testing.T) {
	var buf bytes.Buffer
	renderContainers(&buf, nil)
	assert.Contains(t, buf.String(), "No containers found")
}

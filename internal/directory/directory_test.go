package directory

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zorak1103/dockdeck/internal/engine"
	"github.com/zorak1103/dockdeck/internal/engine/enginetest"
	apperrors "github.com/zorak1103/dockdeck/internal/errors"
)

func newFake() *enginetest.Fake {
	return &enginetest.Fake{
		Containers: []engine.Container{
			{
				ID:     "abc123",
				Names:  []string{"/web1"},
				State:  "running",
				Status: "Up 1 minute",
				Ports: []engine.Port{
					{IP: "0.0.0.0", PrivatePort: 80, PublicPort: 8080, Protocol: "tcp"},
					{PrivatePort: 443, Protocol: "tcp"},
				},
			},
			{ID: "def456", Names: []string{"/db"}, State: "exited"},
			{ID: "abc123", Names: []string{"/duplicate"}, State: "created"},
		},
	}
}

func TestDirectory_Refresh(t *testing.T) {
	fake := newFake()
	taken := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	dir := New(fake, WithClock(func() time.Time { return taken }))

	snapshot, err := dir.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, snapshot.Len())
	assert.Equal(t, taken, snapshot.TakenAt())

	records := snapshot.Records()
	assert.Equal(t, "abc123", records[0].ID)
	assert.Equal(t, "def456", records[1].ID)
	assert.Equal(t, mo.Some[uint16](8080), records[0].Ports[0].PublicPort)
	assert.True(t, records[0].Ports[1].PublicPort.IsAbsent())
}

func TestDirectory_Refresh_RuntimeFailure(t *testing.T) {
	fake := newFake()
	fake.Fail(enginetest.OpList, errors.New("Cannot connect to the Docker daemon"))
	dir := New(fake)

	for i := 0; i < 2; i++ {
		_, err := dir.Refresh(context.Background())

		var connErr *apperrors.RuntimeConnectionError
		require.ErrorAs(t, err, &connErr)
		assert.Equal(t, "ListContainers", connErr.Operation)
		assert.True(t, apperrors.IsFatal(err))
	}
}

func TestSnapshot_Find(t *testing.T) {
	snapshot, err := New(newFake()).Refresh(context.Background())
	require.NoError(t, err)

	tests := []struct {
		name     string
		id       string
		wantName string
		wantErr  bool
	}{
		{name: "exact match", id: "def456", wantName: "/db"},
		{name: "first match wins on duplicates", id: "abc123", wantName: "/web1"},
		{name: "prefix is not a match", id: "abc", wantErr: true},
		{name: "missing", id: "zzz999", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := snapshot.Find(tt.id)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, record.Names[0])
		})
	}
}

func TestSnapshot_RecordsAreCopies(t *testing.T) {
	snapshot, err := New(newFake()).Refresh(context.Background())
	require.NoError(t, err)

	records := snapshot.Records()
	records[0].Names[0] = "/mutated"
	records[0].Ports[0].PrivatePort = 1

	found, err := snapshot.Find("abc123")
	require.NoError(t, err)
	assert.Equal(t, "/web1", found.Names[0])
	assert.Equal(t, uint16(80), found.Ports[0].PrivatePort)
}

func TestDirectory_SnapshotTTL(t *testing.T) {
	fake := newFake()
	dir := New(fake, WithSnapshotTTL(time.Minute))

	_, err := dir.Refresh(context.Background())
	require.NoError(t, err)
	_, err = dir.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"list"}, fake.Calls())

	dir.Invalidate()
	_, err = dir.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"list", "list"}, fake.Calls())
}

func TestDirectory_NoTTLRefreshesEveryTime(t *testing.T) {
	fake := newFake()
	dir := New(fake)

	for i := 0; i < 3; i++ {
		_, err := dir.Refresh(context.Background())
		require.NoError(t, err)
	}
	assert.Len(t, fake.Calls(), 3)
}

func TestDirectory_Lookup(t *testing.T) {
	dir := New(newFake())

	record, err := dir.Lookup(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "web1", record.ShellName())

	_, err = dir.Lookup(context.Background(), "missing")
	var notFound *apperrors.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing", notFound.ContainerID)
}

func TestContainerRecord_ShellName(t *testing.T) {
	tests := []struct {
		names []string
		want  string
	}{
		{[]string{"/web1"}, "web1"},
		{[]string{"web1", "/other"}, "web1"},
		{[]string{"//nested"}, "nested"},
		{nil, ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ContainerRecord{Names: tt.names}.ShellName())
	}
}

func TestContainerRecord_JSON(t *testing.T) {
	record := newRecord(engine.Container{
		ID:    "abc123",
		Names: []string{"/web1"},
		Ports: []engine.Port{{PrivatePort: 80, PublicPort: 8080, Protocol: "tcp"}, {PrivatePort: 443, Protocol: "tcp"}},
	})

	data, err := json.Marshal(record)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"public_port":8080`)
	assert.Contains(t, string(data), `"public_port":null`)
}

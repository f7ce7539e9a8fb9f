// Package enginetest provides an in-memory container runtime for tests.
package enginetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/zorak1103/dockdeck/internal/engine"
)

// Operation names accepted by Fake.Fail.
const (
	OpPing    = "ping"
	OpList    = "list"
	OpInspect = "inspect"
	OpStart   = "start"
	OpStop    = "stop"
	OpRemove  = "remove"
	OpLogs    = "logs"
	OpVersion = "version"
)

// Fake implements engine.Client in memory.
type Fake struct {
	// Containers is returned by ListContainers in order.
	Containers []engine.Container
	// Logs holds the chunks StreamLogs emits per container ID.
	Logs map[string][]engine.LogChunk
	// Follow keeps StreamLogs open after the last chunk until ctx is done.
	Follow bool
	// VersionInfo is returned by Version.
	VersionInfo engine.VersionInfo

	mu     sync.Mutex
	fail   map[string]error
	calls  []string
	closed bool
}

var _ engine.Client = (*Fake)(nil)

// Fail makes every later call of op return err. A nil err clears the failure.
func (f *Fake) Fail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail == nil {
		f.fail = make(map[string]error)
	}
	if err == nil {
		delete(f.fail, op)
		return
	}
	f.fail[op] = err
}

// Calls returns the recorded calls as "<op> <id>" strings.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Closed reports whether Close was called.
func (f *Fake) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *Fake) record(op, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if id != "" {
		f.calls = append(f.calls, op+" "+id)
	} else {
		f.calls = append(f.calls, op)
	}
	return f.fail[op]
}

func (f *Fake) known(id string) bool {
	for _, c := range f.Containers {
		if c.ID == id {
			return true
		}
	}
	_, ok := f.Logs[id]
	return ok
}

// Backend implements engine.Client.
func (f *Fake) Backend() string {
	return "fake"
}

// Ping implements engine.Client.
func (f *Fake) Ping(_ context.Context) error {
	return f.record(OpPing, "")
}

// Close implements engine.Client.
func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// ListContainers implements engine.Lister. Filter options are ignored.
func (f *Fake) ListContainers(_ context.Context, _ engine.FilterOptions) ([]engine.Container, error) {
	if err := f.record(OpList, ""); err != nil {
		return nil, err
	}
	return append([]engine.Container(nil), f.Containers...), nil
}

// Inspect implements engine.Inspector.
func (f *Fake) Inspect(_ context.Context, containerID string) (engine.Info, error) {
	if err := f.record(OpInspect, containerID); err != nil {
		return nil, err
	}
	if !f.known(containerID) {
		return nil, fmt.Errorf("no such container: %s", containerID)
	}
	return engine.Info{"Id": containerID}, nil
}

// Start implements engine.Lifecycle.
func (f *Fake) Start(_ context.Context, containerID string) error {
	return f.record(OpStart, containerID)
}

// Stop implements engine.Lifecycle.
func (f *Fake) Stop(_ context.Context, containerID string) error {
	return f.record(OpStop, containerID)
}

// Remove implements engine.Lifecycle.
func (f *Fake) Remove(_ context.Context, containerID string) error {
	return f.record(OpRemove, containerID)
}

// StreamLogs implements engine.LogStreamer.
func (f *Fake) StreamLogs(ctx context.Context, containerID string, out chan<- engine.LogChunk) error {
	if err := f.record(OpLogs, containerID); err != nil {
		return err
	}
	if !f.known(containerID) {
		return fmt.Errorf("no such container: %s", containerID)
	}

	for _, chunk := range f.Logs[containerID] {
		select {
		case out <- chunk:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if f.Follow {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

// Version implements engine.Versioner.
func (f *Fake) Version(_ context.Context) (engine.VersionInfo, error) {
	if err := f.record(OpVersion, ""); err != nil {
		return engine.VersionInfo{}, err
	}
	return f.VersionInfo, nil
}

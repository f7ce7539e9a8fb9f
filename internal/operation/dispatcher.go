// Package operation runs lifecycle and host-side operations against a single
// container and reduces every result to an Outcome.
package operation

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	logging "github.com/KonishchevDmitry/go-easy-logging"

	"github.com/zorak1103/dockdeck/internal/directory"
	"github.com/zorak1103/dockdeck/internal/engine"
	apperrors "github.com/zorak1103/dockdeck/internal/errors"
)

// DefaultWebHost is the host used in URLs built by open-web.
const DefaultWebHost = "0.0.0.0"

// Messages that callers and tests match on.
const (
	MsgInvalidOperation = "Invalid operation type"
	MsgPortNotAvailable = "port not available"
)

// Request names an operation and its target container.
type Request struct {
	ContainerID string `json:"container_id"`
	Kind        Kind   `json:"kind"`
}

// Outcome is the single result of an operation. Failures never escape as errors.
type Outcome struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func succeeded(message string) Outcome {
	return Outcome{Success: true, Message: message}
}

func failed(format string, args ...any) Outcome {
	return Outcome{Success: false, Message: fmt.Sprintf(format, args...)}
}

// Lookup resolves a container identifier to a record.
type Lookup func(ctx context.Context, id string) (directory.ContainerRecord, error)

// Launcher starts host-side programs for open-web and open-shell.
type Launcher interface {
	OpenURL(ctx context.Context, url string) error
	OpenInteractiveShell(ctx context.Context, containerName string) error
}

// Observer is notified after every executed operation.
type Observer interface {
	ObserveOperation(ctx context.Context, req Request, outcome Outcome)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, req Request, outcome Outcome)

// ObserveOperation implements Observer.
func (f ObserverFunc) ObserveOperation(ctx context.Context, req Request, outcome Outcome) {
	f(ctx, req, outcome)
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithWebHost sets the host used by open-web URLs.
func WithWebHost(host string) Option {
	return func(d *Dispatcher) {
		if host != "" {
			d.webHost = host
		}
	}
}

// WithObserver registers an observer.
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) {
		d.observers = append(d.observers, o)
	}
}

// WithInvalidate registers a hook run after every mutating operation,
// typically to drop a reused directory snapshot.
func WithInvalidate(invalidate func()) Option {
	return func(d *Dispatcher) {
		d.invalidate = invalidate
	}
}

// Dispatcher executes operation requests.
type Dispatcher struct {
	lifecycle  engine.Lifecycle
	lookup     Lookup
	launcher   Launcher
	webHost    string
	invalidate func()
	observers  []Observer
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(lifecycle engine.Lifecycle, lookup Lookup, launcher Launcher, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		lifecycle: lifecycle,
		lookup:    lookup,
		launcher:  launcher,
		webHost:   DefaultWebHost,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Execute runs req and always returns an Outcome.
func (d *Dispatcher) Execute(ctx context.Context, req Request) Outcome {
	outcome := d.safeExecute(ctx, req)

	if req.Kind.Mutating() && d.invalidate != nil {
		d.invalidate()
	}
	for _, o := range d.observers {
		o.ObserveOperation(ctx, req, outcome)
	}

	logging.L(ctx).Debugf("Operation %s on container %s: success=%t, %s", req.Kind, req.ContainerID, outcome.Success, outcome.Message)
	return outcome
}

func (d *Dispatcher) safeExecute(ctx context.Context, req Request) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			logging.L(ctx).Errorf("Operation %s on container %s panicked: %v.", req.Kind, req.ContainerID, r)
			outcome = failed("Operation %s failed unexpectedly", req.Kind)
		}
	}()

	switch req.Kind {
	case KindStart:
		return lifecycleOutcome(d.lifecycle.Start(ctx, req.ContainerID), "Container started", "start")
	case KindStop:
		return lifecycleOutcome(d.lifecycle.Stop(ctx, req.ContainerID), "Container stopped", "stop")
	case KindDelete:
		return lifecycleOutcome(d.lifecycle.Remove(ctx, req.ContainerID), "Container deleted", "delete")
	case KindRestart:
		return d.restart(ctx, req.ContainerID)
	case KindOpenWeb:
		return d.openWeb(ctx, req.ContainerID)
	case KindOpenShell:
		return d.openShell(ctx, req.ContainerID)
	case KindUnknown:
		return failed(MsgInvalidOperation)
	default:
		return failed(MsgInvalidOperation)
	}
}

func lifecycleOutcome(err error, success, verb string) Outcome {
	if err != nil {
		return failed("Failed to %s container: %s", verb, err)
	}
	return succeeded(success)
}

// restart is a best-effort stop followed by an authoritative start.
func (d *Dispatcher) restart(ctx context.Context, id string) Outcome {
	if err := d.lifecycle.Stop(ctx, id); err != nil {
		logging.L(ctx).Debugf("Ignoring stop failure while restarting container %s: %s", id, err)
	}
	return lifecycleOutcome(d.lifecycle.Start(ctx, id), "Container restarted", "restart")
}

func (d *Dispatcher) openWeb(ctx context.Context, id string) Outcome {
	record, err := d.lookup(ctx, id)
	if err != nil {
		return lookupFailure(id, err)
	}

	port, ok := record.FirstPort().Get()
	if !ok {
		return failed("Failed to open web page: %s", MsgPortNotAvailable)
	}
	public, ok := port.PublicPort.Get()
	if !ok {
		return failed("Failed to open web page: %s", MsgPortNotAvailable)
	}

	url := "http://" + net.JoinHostPort(d.webHost, strconv.Itoa(int(public)))
	if err := d.launcher.OpenURL(ctx, url); err != nil {
		return failed("An error occurred when opening '%s': %s", url, err)
	}
	return succeeded(fmt.Sprintf("Opening '%s'.", url))
}

func (d *Dispatcher) openShell(ctx context.Context, id string) Outcome {
	record, err := d.lookup(ctx, id)
	if err != nil {
		return lookupFailure(id, err)
	}

	name := record.ShellName()
	if name == "" {
		return failed("Cannot open shell: container has no name")
	}

	if err := d.launcher.OpenInteractiveShell(ctx, name); err != nil {
		return failed("Cannot run exec command: %s", err)
	}
	return succeeded(fmt.Sprintf("Opening shell in container '%s'.", name))
}

func lookupFailure(id string, err error) Outcome {
	if errors.Is(err, apperrors.ErrNotFound) {
		return failed("Container %s not found", id)
	}
	return failed("Failed to look up container %s: %s", id, err)
}

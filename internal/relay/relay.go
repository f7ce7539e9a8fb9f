// Package relay forwards a container's live log stream to a sink through a
// bounded channel.
//
// Each subscription runs two goroutines: a producer that pulls chunks from the
// runtime into the channel and a forwarder that hands them to the sink. A full
// channel blocks the producer, so a slow sink slows the stream down instead of
// losing chunks or growing memory. Either side stopping stops the other.
package relay

import (
	"context"
	"errors"
	"sync/atomic"

	logging "github.com/KonishchevDmitry/go-easy-logging"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/zorak1103/dockdeck/internal/engine"
	apperrors "github.com/zorak1103/dockdeck/internal/errors"
)

// DefaultBufferSize is the capacity of the channel between producer and forwarder.
const DefaultBufferSize = 100

// State is the lifecycle state of a subscription.
type State int32

// Subscription states. Ended, SinkClosed and Cancelled are terminal.
const (
	StateIdle State = iota
	StateStreaming
	StateEnded
	StateSinkClosed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	case StateEnded:
		return "ended"
	case StateSinkClosed:
		return "sink-closed"
	case StateCancelled:
		return "cancelled"
	default:
		return "invalid"
	}
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == StateEnded || s == StateSinkClosed || s == StateCancelled
}

// Observer receives subscription lifecycle events, e.g. for metrics.
type Observer interface {
	SubscriptionOpened()
	ChunkDelivered(chunk engine.LogChunk)
	SubscriptionClosed(state State, err error)
}

type nopObserver struct{}

func (nopObserver) SubscriptionOpened()             {}
func (nopObserver) ChunkDelivered(engine.LogChunk)  {}
func (nopObserver) SubscriptionClosed(State, error) {}

// Option configures a Relay.
type Option func(*Relay)

// WithBufferSize sets the channel capacity. Values below 1 are ignored.
func WithBufferSize(size int) Option {
	return func(r *Relay) {
		if size > 0 {
			r.bufferSize = size
		}
	}
}

// WithObserver registers the lifecycle observer.
func WithObserver(o Observer) Option {
	return func(r *Relay) {
		if o != nil {
			r.observer = o
		}
	}
}

// Relay opens log subscriptions.
type Relay struct {
	streamer   engine.LogStreamer
	bufferSize int
	observer   Observer
}

// New creates a Relay on top of the runtime log streamer.
func New(streamer engine.LogStreamer, opts ...Option) *Relay {
	r := &Relay{
		streamer:   streamer,
		bufferSize: DefaultBufferSize,
		observer:   nopObserver{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// sinkError marks a forwarding failure so it can be told apart from stream errors.
type sinkError struct {
	err error
}

func (e *sinkError) Error() string { return "sink: " + e.err.Error() }
func (e *sinkError) Unwrap() error { return e.err }

// Subscription is one running log relay. Cancelling ctx passed to Open or
// calling Cancel ends it.
type Subscription struct {
	id          string
	containerID string
	cancel      context.CancelFunc
	state       atomic.Int32
	done        chan struct{}
	err         error
}

// ID returns the unique subscription identifier.
func (s *Subscription) ID() string {
	return s.id
}

// ContainerID returns the followed container.
func (s *Subscription) ContainerID() string {
	return s.containerID
}

// State returns the current state.
func (s *Subscription) State() State {
	return State(s.state.Load())
}

// Cancel stops the subscription. It is safe to call more than once.
func (s *Subscription) Cancel() {
	s.cancel()
}

// Done is closed once both goroutines have stopped.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the subscription has stopped and returns its final state.
func (s *Subscription) Wait() State {
	<-s.done
	return s.State()
}

// Err returns the stream failure, if any. Valid after Done is closed.
func (s *Subscription) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

// Open starts following the logs of containerID and returns immediately.
// Chunks reach sink in runtime order. A stream that cannot be opened is
// logged and ends the subscription in StateEnded without delivering anything.
// The subscription is Idle until its goroutines start opening the stream.
func (r *Relay) Open(ctx context.Context, containerID string, sink Sink) *Subscription {
	subCtx, cancel := context.WithCancel(ctx)
	s := &Subscription{
		id:          uuid.NewString(),
		containerID: containerID,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
	s.state.Store(int32(StateIdle))

	r.observer.SubscriptionOpened()
	go r.run(subCtx, s, sink)
	return s
}

func (r *Relay) run(ctx context.Context, s *Subscription, sink Sink) {
	defer s.cancel()

	s.state.CompareAndSwap(int32(StateIdle), int32(StateStreaming))

	chunks := make(chan engine.LogChunk, r.bufferSize)
	g, gctx := errgroup.WithContext(ctx)

	// Producer
	g.Go(func() error {
		defer close(chunks)

		if err := r.streamer.StreamLogs(gctx, s.containerID, chunks); err != nil {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			return &apperrors.StreamError{ContainerID: s.containerID, Err: err}
		}
		return nil
	})

	// Forwarder
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case chunk, ok := <-chunks:
				if !ok {
					return nil
				}
				if gctx.Err() != nil {
					return gctx.Err()
				}
				if err := sink.Send(gctx, chunk); err != nil {
					// A sink honoring gctx fails because of the cancellation, not on its own
					if gctx.Err() != nil {
						return gctx.Err()
					}
					return &sinkError{err: err}
				}
				r.observer.ChunkDelivered(chunk)
			}
		}
	})

	err := g.Wait()

	var state State
	var sinkErr *sinkError
	switch {
	case ctx.Err() != nil:
		state = StateCancelled
	case errors.As(err, &sinkErr):
		state = StateSinkClosed
		logging.L(ctx).Debugf("Log subscription %s for container %s: sink closed: %s.", s.id, s.containerID, sinkErr.err)
	case err != nil:
		state = StateEnded
		s.err = err
		logging.L(ctx).Errorf("Failed to stream logs for container %s: %s.", s.containerID, err)
	default:
		state = StateEnded
	}

	s.state.Store(int32(state))
	r.observer.SubscriptionClosed(state, s.err)
	close(s.done)
}

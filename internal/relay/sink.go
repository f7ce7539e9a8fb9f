package relay

import (
	"context"
	"io"
	"sync"

	"github.com/zorak1103/dockdeck/internal/engine"
)

// Sink receives relayed chunks. An error from Send closes the subscription.
type Sink interface {
	Send(ctx context.Context, chunk engine.LogChunk) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, chunk engine.LogChunk) error

// Send implements Sink.
func (f SinkFunc) Send(ctx context.Context, chunk engine.LogChunk) error {
	return f(ctx, chunk)
}

// WriterSink writes raw chunk data to an io.Writer.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink creates a sink writing to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Send implements Sink.
func (s *WriterSink) Send(_ context.Context, chunk engine.LogChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.w.Write(chunk.Data)
	return err
}

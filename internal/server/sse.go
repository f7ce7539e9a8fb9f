package server

import (
	"bufio"
	"bytes"
	"context"
	"sync"
	"time"

	logging "github.com/KonishchevDmitry/go-easy-logging"
	"github.com/gofiber/fiber/v2"

	"github.com/zorak1103/dockdeck/internal/engine"
)

// sseSink writes chunks as Server-Sent Events. Each chunk becomes one event
// with a data line per log line.
type sseSink struct {
	mu sync.Mutex
	w  *bufio.Writer
}

func (s *sseSink) Send(_ context.Context, chunk engine.LogChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := bytes.TrimSuffix(chunk.Data, []byte("\n"))
	for _, line := range bytes.Split(data, []byte("\n")) {
		_, _ = s.w.WriteString("data: ")
		_, _ = s.w.Write(line)
		_ = s.w.WriteByte('\n')
	}
	_ = s.w.WriteByte('\n')

	// A flush error is the only disconnect signal we get
	return s.w.Flush()
}

func (s *sseSink) keepAlive() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.w.WriteString(": keep-alive\n\n")
	return s.w.Flush()
}

func (s *Server) streamLogs(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := s.svc.GetContainer(s.ctx, id); err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	// c must not be touched inside the writer: it runs after the handler returns.
	ctx := s.ctx
	heartbeat := s.heartbeat
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		sink := &sseSink{w: w}
		sub := s.svc.SubscribeLogs(ctx, id, sink)
		logging.L(ctx).Debugf("Log subscription %s for container %s opened.", sub.ID(), id)

		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()

		for {
			select {
			case <-sub.Done():
				logging.L(ctx).Debugf("Log subscription %s ended: %s.", sub.ID(), sub.State())
				return
			case <-ticker.C:
				if err := sink.keepAlive(); err != nil {
					sub.Cancel()
				}
			}
		}
	})

	return nil
}

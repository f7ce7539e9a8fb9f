// Package server exposes the service over a local HTTP API.
package server

import (
	"context"
	"errors"
	"time"

	logging "github.com/KonishchevDmitry/go-easy-logging"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zorak1103/dockdeck/internal/directory"
	"github.com/zorak1103/dockdeck/internal/engine"
	apperrors "github.com/zorak1103/dockdeck/internal/errors"
	"github.com/zorak1103/dockdeck/internal/operation"
	"github.com/zorak1103/dockdeck/internal/relay"
	"github.com/zorak1103/dockdeck/internal/version"
)

// DefaultHeartbeat is the interval of SSE keep-alive comments.
const DefaultHeartbeat = 15 * time.Second

// Error messages returned for 5xx responses. The cause is only logged.
const (
	MsgRuntimeUnavailable = "Container runtime is unavailable"
	MsgInternalError      = "Internal server error"
)

// Service is the subset of service.Service the API needs.
type Service interface {
	FindContainers(ctx context.Context, pattern string) ([]directory.ContainerRecord, error)
	GetContainer(ctx context.Context, id string) (directory.ContainerRecord, error)
	Inspect(ctx context.Context, id string) (engine.Info, error)
	GetVersion(ctx context.Context) (engine.VersionInfo, error)
	Execute(ctx context.Context, id, kind string) operation.Outcome
	SubscribeLogs(ctx context.Context, id string, sink relay.Sink) *relay.Subscription
	Ping(ctx context.Context) error
}

// Option configures a Server.
type Option func(*Server)

// WithHeartbeat sets the SSE keep-alive interval.
func WithHeartbeat(interval time.Duration) Option {
	return func(s *Server) {
		if interval > 0 {
			s.heartbeat = interval
		}
	}
}

// Server serves the HTTP API.
type Server struct {
	// ctx carries the logger and ends running log streams on shutdown.
	ctx       context.Context
	app       *fiber.App
	svc       Service
	heartbeat time.Duration
}

// New builds the fiber application and registers all routes.
func New(ctx context.Context, svc Service, opts ...Option) *Server {
	s := &Server{ctx: ctx, svc: svc, heartbeat: DefaultHeartbeat}
	for _, opt := range opts {
		opt(s)
	}

	s.app = fiber.New(fiber.Config{
		AppName:               version.Name,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.app.Use(recover.New())

	s.app.Get("/healthz", s.health)
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := s.app.Group("/api")
	v1 := api.Group("/v1")
	v1.Get("/version", s.getVersion)

	containers := v1.Group("/containers")
	containers.Get("/", s.listContainers)
	containers.Get("/:id", s.getContainer)
	containers.Get("/:id/inspect", s.inspectContainer)
	containers.Get("/:id/logs", s.streamLogs)
	containers.Post("/:id/operations/:kind", s.executeOperation)

	return s
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	logging.L(s.ctx).Infof("Listening on http://%s.", addr)
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for running requests.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError

	var fiberErr *fiber.Error
	var connErr *apperrors.RuntimeConnectionError
	switch {
	case errors.As(err, &fiberErr):
		status = fiberErr.Code
	case errors.Is(err, apperrors.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.As(err, &connErr):
		status = fiber.StatusServiceUnavailable
	}

	message := err.Error()
	if status >= fiber.StatusInternalServerError {
		logging.L(s.ctx).Errorf("%s %s: %s.", c.Method(), c.Path(), err)
		message = serverErrorMessage(status)
	}

	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

// serverErrorMessage is what clients see instead of the logged error detail.
func serverErrorMessage(status int) string {
	if status == fiber.StatusServiceUnavailable {
		return MsgRuntimeUnavailable
	}
	return MsgInternalError
}

func (s *Server) health(c *fiber.Ctx) error {
	if err := s.svc.Ping(s.ctx); err != nil {
		logging.L(s.ctx).Warnf("Health check failed: %s.", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unavailable",
			"error":  MsgRuntimeUnavailable,
		})
	}
	return c.JSON(fiber.Map{"status": "ok", "build": version.Info()})
}

func (s *Server) getVersion(c *fiber.Ctx) error {
	info, err := s.svc.GetVersion(s.ctx)
	if err != nil {
		return err
	}
	return c.JSON(info)
}

func (s *Server) listContainers(c *fiber.Ctx) error {
	records, err := s.svc.FindContainers(s.ctx, c.Query("filter"))
	if err != nil {
		if apperrors.IsFatal(err) {
			return err
		}
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	views := make([]containerView, 0, len(records))
	for _, record := range records {
		views = append(views, newContainerView(record))
	}
	return c.JSON(views)
}

func (s *Server) getContainer(c *fiber.Ctx) error {
	record, err := s.svc.GetContainer(s.ctx, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(newContainerView(record))
}

func (s *Server) inspectContainer(c *fiber.Ctx) error {
	info, err := s.svc.Inspect(s.ctx, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(info)
}

func (s *Server) executeOperation(c *fiber.Ctx) error {
	outcome := s.svc.Execute(s.ctx, c.Params("id"), c.Params("kind"))

	status := fiber.StatusOK
	if !outcome.Success {
		status = fiber.StatusUnprocessableEntity
	}
	return c.Status(status).JSON(outcome)
}

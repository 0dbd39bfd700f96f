// Package server is the HTTP interaction surface of geoarch.
//
// It exposes the collection service as a small JSON API a map front-end can
// drive: every mutation answers with the notification to show the user.
package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/aretw0/geoarch/internal/metrics"
	"github.com/aretw0/geoarch/pkg/core"
)

// ExportFileName is the name of the downloaded export.
const ExportFileName = "geo-data.json"

// Server wires the collection service into a fiber app.
type Server struct {
	app      *fiber.App
	svc      *core.Service
	recorder *metrics.Recorder
	logger   *slog.Logger
	version  string
}

// Option configures a Server.
type Option func(*Server)

// WithRecorder enables /metrics and request timing.
func WithRecorder(r *metrics.Recorder) Option {
	return func(s *Server) {
		s.recorder = r
	}
}

// WithLogger sets the logger for handler errors.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithVersion is reported by /api/v1/status.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// WithRequestLog enables fiber's access log.
func WithRequestLog() Option {
	return func(s *Server) {
		s.app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
			TimeFormat: "15:04:05",
			TimeZone:   "Local",
		}))
	}
}

// New builds the app and registers all routes.
func New(svc *core.Service, opts ...Option) *Server {
	s := &Server{
		app: fiber.New(fiber.Config{
			AppName:      "geoarch",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		}),
		svc:    svc,
		logger: slog.New(slog.DiscardHandler),
	}

	s.app.Use(recover.New())
	for _, opt := range opts {
		opt(s)
	}
	if s.recorder != nil {
		s.app.Use(s.timing)
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/health/live", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})

	api := s.app.Group("/api/v1")
	api.Get("/shapes", s.listShapes)
	api.Post("/shapes", s.drawShape)
	api.Delete("/shapes/:id", s.deleteShape)
	api.Delete("/shapes", s.clearShapes)
	api.Get("/export", s.export)
	api.Get("/status", s.status)

	if s.recorder != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(s.recorder.Handler()))
	}
}

// timing observes the duration of every routed request.
func (s *Server) timing(c fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	route := c.Path()
	if r := c.Route(); r != nil {
		route = r.Path
	}
	s.recorder.ObserveRequest(c.Method(), route, float64(time.Since(start).Microseconds())/1000)
	return err
}

// App exposes the underlying fiber app (tests use app.Test).
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until ctx is cancelled.
func (s *Server) Listen(ctx context.Context, addr string) error {
	return s.app.Listen(addr, fiber.ListenConfig{
		DisableStartupMessage: true,
		GracefulContext:       ctx,
		ShutdownTimeout:       5 * time.Second,
	})
}

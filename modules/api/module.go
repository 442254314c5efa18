// Package api exposes the task service over HTTP.
package api

import (
	"context"
	"fmt"

	"github.com/example/task-api/modules/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Options configures the HTTP server.
type Options struct {
	Port        int
	CORSOrigins string
}

// APIModule is the driving adapter that exposes REST endpoints.
// It calls into the core domain (task module) via the TaskPort interface.
type APIModule struct {
	opts        Options
	logger      types.Logger
	feed        ActivityFeed
	checks      []HealthChecker
	app         *fiber.App
	taskAdapter task.TaskPort
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule. checks are reported by GET /health.
func NewModule(opts Options, feed ActivityFeed, logger types.Logger, checks ...HealthChecker) *APIModule {
	return &APIModule{
		opts:   opts,
		feed:   feed,
		checks: checks,
		logger: logger.WithModule("api"),
	}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
// The framework will call SetDependencyServiceContainer for each dependency.
func (m *APIModule) Dependencies() []string {
	return []string{"task"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "task":
		m.taskAdapter = task.NewTaskAdapter(container)
	}
}

// Start initializes the Fiber HTTP server.
// Returns an error if required dependencies are not set.
func (m *APIModule) Start(_ context.Context) error {
	if m.taskAdapter == nil {
		return fmt.Errorf("taskAdapter dependency not set")
	}

	m.app = NewApp(NewHandlers(m.taskAdapter, m.feed, m.logger, m.checks...), m.opts.CORSOrigins)

	// Server availability is verified via Health() method.
	go func() {
		addr := fmt.Sprintf(":%d", m.opts.Port)
		if err := m.app.Listen(addr); err != nil {
			m.logger.Error("HTTP server error", "error", err)
		}
	}()

	m.logger.Info("HTTP server started", "port", m.opts.Port)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	m.logger.Info("Shutting down HTTP server...")
	return m.app.Shutdown()
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	if m.app == nil {
		return mono.HealthStatus{Healthy: false, Message: "not started"}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"port": m.opts.Port,
		},
	}
}

// NewApp builds the Fiber app with the global middleware and h's routes.
func NewApp(h *Handlers, corsOrigins string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Task API",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins,
	}))

	h.RegisterRoutes(app)
	return app
}

// errorHandler handles Fiber errors. Client errors keep fiber's status and
// message; anything else is reported as an opaque server error.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	label := "server_error"
	switch {
	case code == fiber.StatusNotFound:
		label = "not_found"
	case code < fiber.StatusInternalServerError:
		label = "invalid_request"
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   label,
		Message: message,
	})
}

package api

import (
	"context"

	domain "github.com/example/task-api/domain/task"
	"github.com/example/task-api/modules/activity"
	"github.com/example/task-api/modules/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
)

const defaultActivityLimit = 20

// ActivityFeed exposes recent task events.
type ActivityFeed interface {
	Recent(limit int) []activity.Entry
}

// HealthChecker is a module that reports its own health.
type HealthChecker interface {
	Name() string
	Health(ctx context.Context) mono.HealthStatus
}

// Handlers contains HTTP handlers for the task API.
type Handlers struct {
	tasks  task.TaskPort
	feed   ActivityFeed
	checks []HealthChecker
	logger types.Logger
}

// NewHandlers creates handlers backed by tasks. feed may be nil.
func NewHandlers(tasks task.TaskPort, feed ActivityFeed, logger types.Logger, checks ...HealthChecker) *Handlers {
	return &Handlers{
		tasks:  tasks,
		feed:   feed,
		checks: checks,
		logger: logger,
	}
}

// RegisterRoutes configures all HTTP routes on router.
func (h *Handlers) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.Health)
	router.Get("/activity", h.Activity)

	tasks := router.Group("/tasks")
	tasks.Post("/", h.AddTask)
	tasks.Get("/", h.ListTasks)
	tasks.Get("/:id", h.GetTask)
	tasks.Put("/:id", h.UpdateTask)
	tasks.Delete("/:id", h.DeleteTask)
	tasks.Put("/:id/complete", h.MarkCompleted)
}

// AddTask handles POST /tasks.
func (h *Handlers) AddTask(c *fiber.Ctx) error {
	var body domain.Task
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	res, err := h.tasks.Add(c.UserContext(), body)
	return h.respond(c, res, err)
}

// ListTasks handles GET /tasks.
func (h *Handlers) ListTasks(c *fiber.Ctx) error {
	tasks, err := h.tasks.List(c.UserContext())
	if err != nil {
		return h.serverError(c, err)
	}
	return c.JSON(tasks)
}

// GetTask handles GET /tasks/:id.
func (h *Handlers) GetTask(c *fiber.Ctx) error {
	id, ok := taskID(c)
	if !ok {
		return badRequest(c, "Task ID must be an integer")
	}

	res, err := h.tasks.Get(c.UserContext(), id)
	return h.respond(c, res, err)
}

// UpdateTask handles PUT /tasks/:id.
func (h *Handlers) UpdateTask(c *fiber.Ctx) error {
	id, ok := taskID(c)
	if !ok {
		return badRequest(c, "Task ID must be an integer")
	}

	var body domain.Task
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	res, err := h.tasks.Update(c.UserContext(), id, body)
	return h.respond(c, res, err)
}

// DeleteTask handles DELETE /tasks/:id.
func (h *Handlers) DeleteTask(c *fiber.Ctx) error {
	id, ok := taskID(c)
	if !ok {
		return badRequest(c, "Task ID must be an integer")
	}

	res, err := h.tasks.Delete(c.UserContext(), id)
	if err == nil && res.OK() {
		return c.Status(fiber.StatusNoContent).SendString(DeletedMessage)
	}
	return h.respond(c, res, err)
}

// MarkCompleted handles PUT /tasks/:id/complete.
func (h *Handlers) MarkCompleted(c *fiber.Ctx) error {
	id, ok := taskID(c)
	if !ok {
		return badRequest(c, "Task ID must be an integer")
	}

	res, err := h.tasks.MarkCompleted(c.UserContext(), id)
	return h.respond(c, res, err)
}

// Activity handles GET /activity?limit=N.
func (h *Handlers) Activity(c *fiber.Ctx) error {
	if h.feed == nil {
		return c.JSON([]activity.Entry{})
	}
	limit := c.QueryInt("limit", defaultActivityLimit)
	return c.JSON(h.feed.Recent(limit))
}

// Health handles GET /health.
func (h *Handlers) Health(c *fiber.Ctx) error {
	resp := HealthResponse{Status: "healthy"}
	status := fiber.StatusOK

	if len(h.checks) > 0 {
		resp.Modules = make(map[string]ModuleHealth, len(h.checks))
		for _, check := range h.checks {
			hs := check.Health(c.UserContext())
			resp.Modules[check.Name()] = ModuleHealth{
				Healthy: hs.Healthy,
				Message: hs.Message,
				Details: hs.Details,
			}
			if !hs.Healthy {
				resp.Status = "unhealthy"
				status = fiber.StatusServiceUnavailable
			}
		}
	}

	return c.Status(status).JSON(resp)
}

// respond maps a task result to the HTTP response. This is the only place
// outcomes become status codes.
func (h *Handlers) respond(c *fiber.Ctx, res domain.Result, err error) error {
	if err != nil {
		return h.serverError(c, err)
	}

	switch res.Outcome {
	case domain.OutcomeOK:
		return c.JSON(res.Task)
	case domain.OutcomeInvalid:
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: res.Message,
		})
	case domain.OutcomeNotFound:
		return c.Status(fiber.StatusNotFound).SendString(res.Message)
	case domain.OutcomeConflict:
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Error:   "conflict",
			Message: res.Message,
		})
	}

	h.logger.Error("Unknown task outcome", "outcome", res.Outcome)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   "server_error",
		Message: "Internal Server Error",
	})
}

func (h *Handlers) serverError(c *fiber.Ctx, err error) error {
	h.logger.Error("Task operation failed", "method", c.Method(), "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   "server_error",
		Message: "Internal Server Error",
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "invalid_request",
		Message: message,
	})
}

func taskID(c *fiber.Ctx) (int64, bool) {
	id, err := c.ParamsInt("id")
	if err != nil {
		return 0, false
	}
	return int64(id), true
}

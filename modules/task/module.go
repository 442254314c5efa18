package task

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/task-api/domain/task"
	"github.com/example/task-api/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// RepositoryProvider is a module that exposes a task repository once started.
type RepositoryProvider interface {
	Name() string
	Repository() domain.Repository
}

// TaskModule provides task management services (core domain).
type TaskModule struct {
	provider RepositoryProvider
	logger   types.Logger
	eventBus mono.EventBus
	svc      *Service
}

var _ mono.Module = (*TaskModule)(nil)
var _ mono.ServiceProviderModule = (*TaskModule)(nil)
var _ mono.DependentModule = (*TaskModule)(nil)
var _ mono.EventEmitterModule = (*TaskModule)(nil)

// NewModule creates the task module. Its repository comes from provider,
// which is either the store or the cache module.
func NewModule(provider RepositoryProvider, logger types.Logger) *TaskModule {
	return &TaskModule{
		provider: provider,
		logger:   logger.WithModule("task"),
	}
}

func (m *TaskModule) Name() string {
	return "task"
}

func (m *TaskModule) Dependencies() []string {
	return []string{m.provider.Name()}
}

func (m *TaskModule) SetDependencyServiceContainer(string, mono.ServiceContainer) {}

func (m *TaskModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

func (m *TaskModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskUpdatedV1.ToBase(),
		events.TaskCompletedV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
	}
}

func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "add", json.Unmarshal, json.Marshal, m.addTask,
	); err != nil {
		return fmt.Errorf("failed to register add service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get", json.Unmarshal, json.Marshal, m.getTask,
	); err != nil {
		return fmt.Errorf("failed to register get service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update", json.Unmarshal, json.Marshal, m.updateTask,
	); err != nil {
		return fmt.Errorf("failed to register update service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete", json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register delete service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list", json.Unmarshal, json.Marshal, m.listTasks,
	); err != nil {
		return fmt.Errorf("failed to register list service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "complete", json.Unmarshal, json.Marshal, m.completeTask,
	); err != nil {
		return fmt.Errorf("failed to register complete service: %w", err)
	}

	m.logger.Info("Registered services", "services", "add, get, update, delete, list, complete")
	return nil
}

func (m *TaskModule) Start(_ context.Context) error {
	repo := m.provider.Repository()
	if repo == nil {
		return fmt.Errorf("repository from %s not initialized", m.provider.Name())
	}
	if m.eventBus == nil {
		m.logger.Warn("eventBus not set, events will not be published")
	}
	m.svc = NewService(repo, m.eventBus, m.logger)
	m.logger.Info("Module started", "depends_on", m.provider.Name())
	return nil
}

func (m *TaskModule) Stop(_ context.Context) error {
	m.logger.Info("Module stopped")
	return nil
}

// Service returns the in-process task service. It is nil before Start.
func (m *TaskModule) Service() *Service {
	return m.svc
}

func (m *TaskModule) service() (*Service, error) {
	if m.svc == nil {
		return nil, fmt.Errorf("task module not started")
	}
	return m.svc, nil
}

func (m *TaskModule) addTask(ctx context.Context, req domain.Task, _ *mono.Msg) (domain.Result, error) {
	svc, err := m.service()
	if err != nil {
		return domain.Result{}, err
	}
	return svc.Add(ctx, req)
}

func (m *TaskModule) getTask(ctx context.Context, req IDRequest, _ *mono.Msg) (domain.Result, error) {
	svc, err := m.service()
	if err != nil {
		return domain.Result{}, err
	}
	return svc.Get(ctx, req.ID)
}

func (m *TaskModule) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (domain.Result, error) {
	svc, err := m.service()
	if err != nil {
		return domain.Result{}, err
	}
	return svc.Update(ctx, req.ID, req.Task)
}

func (m *TaskModule) deleteTask(ctx context.Context, req IDRequest, _ *mono.Msg) (domain.Result, error) {
	svc, err := m.service()
	if err != nil {
		return domain.Result{}, err
	}
	return svc.Delete(ctx, req.ID)
}

func (m *TaskModule) listTasks(ctx context.Context, _ ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	svc, err := m.service()
	if err != nil {
		return ListTasksResponse{}, err
	}
	tasks, err := svc.List(ctx)
	if err != nil {
		return ListTasksResponse{}, err
	}
	return ListTasksResponse{Tasks: tasks, Total: len(tasks)}, nil
}

func (m *TaskModule) completeTask(ctx context.Context, req IDRequest, _ *mono.Msg) (domain.Result, error) {
	svc, err := m.service()
	if err != nil {
		return domain.Result{}, err
	}
	return svc.MarkCompleted(ctx, req.ID)
}

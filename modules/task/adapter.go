package task

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/task-api/domain/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// taskAdapter wraps ServiceContainer for type-safe cross-module communication.
// This is the adapter that implements the TaskPort interface.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a new adapter for task services.
// container is the ServiceContainer from the task module received via SetDependencyServiceContainer.
func NewTaskAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

func call[Resp any](ctx context.Context, container mono.ServiceContainer, service string, req any) (Resp, error) {
	var resp Resp
	if err := helper.CallRequestReplyService(
		ctx,
		container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		&resp,
	); err != nil {
		return resp, fmt.Errorf("%s service call failed: %w", service, err)
	}
	return resp, nil
}

// Add creates a task via the add service.
func (a *taskAdapter) Add(ctx context.Context, t domain.Task) (domain.Result, error) {
	return call[domain.Result](ctx, a.container, "add", &t)
}

// Get retrieves a task by ID via the get service.
func (a *taskAdapter) Get(ctx context.Context, id int64) (domain.Result, error) {
	return call[domain.Result](ctx, a.container, "get", &IDRequest{ID: id})
}

// Update overwrites a task via the update service.
func (a *taskAdapter) Update(ctx context.Context, id int64, details domain.Task) (domain.Result, error) {
	return call[domain.Result](ctx, a.container, "update", &UpdateTaskRequest{ID: id, Task: details})
}

// Delete removes a task via the delete service.
func (a *taskAdapter) Delete(ctx context.Context, id int64) (domain.Result, error) {
	return call[domain.Result](ctx, a.container, "delete", &IDRequest{ID: id})
}

// List returns all tasks via the list service.
func (a *taskAdapter) List(ctx context.Context) ([]domain.Task, error) {
	resp, err := call[ListTasksResponse](ctx, a.container, "list", &ListTasksRequest{})
	if err != nil {
		return nil, err
	}
	if resp.Tasks == nil {
		return []domain.Task{}, nil
	}
	return resp.Tasks, nil
}

// MarkCompleted completes a task via the complete service.
func (a *taskAdapter) MarkCompleted(ctx context.Context, id int64) (domain.Result, error) {
	return call[domain.Result](ctx, a.container, "complete", &IDRequest{ID: id})
}

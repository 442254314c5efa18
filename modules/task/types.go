package task

import (
	"context"

	domain "github.com/example/task-api/domain/task"
)

// IDRequest addresses a single task by id.
type IDRequest struct {
	ID int64 `json:"id"`
}

// UpdateTaskRequest carries the new field values for a task.
type UpdateTaskRequest struct {
	ID   int64       `json:"id"`
	Task domain.Task `json:"task"`
}

// ListTasksRequest is the request for listing tasks.
type ListTasksRequest struct{}

// ListTasksResponse is the response for listing tasks.
type ListTasksResponse struct {
	Tasks []domain.Task `json:"tasks"`
	Total int           `json:"total"`
}

// TaskPort defines the task operations available to driving adapters.
// Domain rejections come back as a non-OK Result; the error is reserved for
// storage and transport failures.
type TaskPort interface {
	Add(ctx context.Context, t domain.Task) (domain.Result, error)
	Get(ctx context.Context, id int64) (domain.Result, error)
	Update(ctx context.Context, id int64, details domain.Task) (domain.Result, error)
	Delete(ctx context.Context, id int64) (domain.Result, error)
	List(ctx context.Context) ([]domain.Task, error)
	MarkCompleted(ctx context.Context, id int64) (domain.Result, error)
}

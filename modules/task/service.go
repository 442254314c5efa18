package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/example/task-api/domain/task"
	"github.com/example/task-api/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
)

// maxCompleteAttempts bounds the reload-and-retry loop of MarkCompleted when
// a concurrent writer bumps the version in between.
const maxCompleteAttempts = 3

// reopenMessage rejects an update that moves a completed task back to pending.
var reopenMessage = fmt.Sprintf("Task status cannot change from %s to %s", domain.StatusCompleted, domain.StatusPending)

// Service validates task data and orchestrates the repository.
type Service struct {
	repo   domain.Repository
	bus    mono.EventBus
	logger types.Logger
	now    func() time.Time
}

var _ TaskPort = (*Service)(nil)

// NewService creates a task service. bus may be nil, in which case no events
// are published.
func NewService(repo domain.Repository, bus mono.EventBus, logger types.Logger) *Service {
	return &Service{
		repo:   repo,
		bus:    bus,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Add validates t and stores it under a new id.
func (s *Service) Add(ctx context.Context, t domain.Task) (domain.Result, error) {
	t.ID = 0
	t.Version = 0
	t.CompletedAt = nil
	if t.Status == "" {
		t.Status = domain.StatusPending
	}

	if verr := domain.Validate(&t); verr != nil {
		return domain.Invalid(verr), nil
	}
	if t.IsCompleted() {
		now := s.now()
		t.CompletedAt = &now
	}

	if err := s.repo.Save(ctx, &t); err != nil {
		return domain.Result{}, fmt.Errorf("failed to add task: %w", err)
	}

	s.logger.Info("Task created", "task_id", t.ID, "title", t.Title)
	s.publish(func(bus mono.EventBus) error {
		return events.TaskCreatedV1.Publish(bus, events.TaskCreatedEvent{
			TaskID:    t.ID,
			Title:     t.Title,
			Category:  t.Category,
			CreatedAt: t.CreatedAt,
		}, nil)
	}, "TaskCreated", t.ID)

	return domain.Found(&t), nil
}

// Get loads a single task.
func (s *Service) Get(ctx context.Context, id int64) (domain.Result, error) {
	t, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NotFound(id), nil
	}
	if err != nil {
		return domain.Result{}, fmt.Errorf("failed to get task: %w", err)
	}
	return domain.Found(t), nil
}

// Update overwrites the mutable fields of task id with details. The stored
// record is left untouched when the merged task does not validate.
// A non-zero details.Version must match the stored version.
func (s *Service) Update(ctx context.Context, id int64, details domain.Task) (domain.Result, error) {
	current, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NotFound(id), nil
	}
	if err != nil {
		return domain.Result{}, fmt.Errorf("failed to load task: %w", err)
	}

	if details.Version != 0 && details.Version != current.Version {
		return domain.Conflict(id), nil
	}

	merged := *current
	merged.Title = details.Title
	merged.Description = details.Description
	merged.Deadline = details.Deadline
	merged.Category = details.Category
	if details.Status != "" {
		merged.Status = details.Status
	}

	if verr := domain.Validate(&merged); verr != nil {
		return domain.Invalid(verr), nil
	}
	if current.IsCompleted() && !merged.IsCompleted() {
		return domain.Invalid(&domain.ValidationError{Field: "status", Message: reopenMessage}), nil
	}
	if merged.IsCompleted() && merged.CompletedAt == nil {
		now := s.now()
		merged.CompletedAt = &now
	}

	if err := s.repo.Save(ctx, &merged); err != nil {
		switch {
		case errors.Is(err, domain.ErrConflict):
			return domain.Conflict(id), nil
		case errors.Is(err, domain.ErrNotFound):
			return domain.NotFound(id), nil
		}
		return domain.Result{}, fmt.Errorf("failed to update task: %w", err)
	}

	s.logger.Info("Task updated", "task_id", id, "version", merged.Version)
	s.publish(func(bus mono.EventBus) error {
		return events.TaskUpdatedV1.Publish(bus, events.TaskUpdatedEvent{
			TaskID:    merged.ID,
			Title:     merged.Title,
			Status:    string(merged.Status),
			Version:   merged.Version,
			UpdatedAt: merged.UpdatedAt,
		}, nil)
	}, "TaskUpdated", id)

	if !current.IsCompleted() && merged.IsCompleted() {
		s.publishCompleted(&merged)
	}

	return domain.Found(&merged), nil
}

// Delete removes task id.
func (s *Service) Delete(ctx context.Context, id int64) (domain.Result, error) {
	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return domain.Result{}, fmt.Errorf("failed to check task: %w", err)
	}
	if !exists {
		return domain.NotFound(id), nil
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NotFound(id), nil
		}
		return domain.Result{}, fmt.Errorf("failed to delete task: %w", err)
	}

	s.logger.Info("Task deleted", "task_id", id)
	s.publish(func(bus mono.EventBus) error {
		return events.TaskDeletedV1.Publish(bus, events.TaskDeletedEvent{
			TaskID:    id,
			DeletedAt: s.now(),
		}, nil)
	}, "TaskDeleted", id)

	return domain.Result{Outcome: domain.OutcomeOK}, nil
}

// List returns every stored task ordered by id.
func (s *Service) List(ctx context.Context) ([]domain.Task, error) {
	tasks, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// MarkCompleted sets the status of task id to COMPLETED. Completing an
// already completed task returns it unchanged.
func (s *Service) MarkCompleted(ctx context.Context, id int64) (domain.Result, error) {
	for attempt := 1; ; attempt++ {
		t, err := s.repo.FindByID(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NotFound(id), nil
		}
		if err != nil {
			return domain.Result{}, fmt.Errorf("failed to load task: %w", err)
		}
		if t.IsCompleted() {
			return domain.Found(t), nil
		}

		now := s.now()
		t.Status = domain.StatusCompleted
		t.CompletedAt = &now

		err = s.repo.Save(ctx, t)
		switch {
		case err == nil:
			s.publishCompleted(t)
			return domain.Found(t), nil
		case errors.Is(err, domain.ErrNotFound):
			return domain.NotFound(id), nil
		case errors.Is(err, domain.ErrConflict):
			if attempt >= maxCompleteAttempts {
				return domain.Conflict(id), nil
			}
			s.logger.Debug("Retrying completion after concurrent update", "task_id", id, "attempt", attempt)
		default:
			return domain.Result{}, fmt.Errorf("failed to complete task: %w", err)
		}
	}
}

// publishCompleted announces the first transition of t to COMPLETED, whether
// it came from MarkCompleted or from an update.
func (s *Service) publishCompleted(t *domain.Task) {
	s.logger.Info("Task completed", "task_id", t.ID)
	completedAt := s.now()
	if t.CompletedAt != nil {
		completedAt = *t.CompletedAt
	}
	s.publish(func(bus mono.EventBus) error {
		return events.TaskCompletedV1.Publish(bus, events.TaskCompletedEvent{
			TaskID:      t.ID,
			Title:       t.Title,
			CompletedAt: completedAt,
		}, nil)
	}, "TaskCompleted", t.ID)
}

// publish emits an event when a bus is configured. Publishing is best-effort:
// failures are logged and never fail the operation.
func (s *Service) publish(emit func(mono.EventBus) error, event string, id int64) {
	if s.bus == nil {
		return
	}
	if err := emit(s.bus); err != nil {
		s.logger.Warn("Failed to publish event", "event", event, "task_id", id, "error", err)
	}
}

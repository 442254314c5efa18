// Package activity keeps a feed of recent task events.
package activity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/example/task-api/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/google/uuid"
)

// MaxEntries is the number of entries the feed retains.
const MaxEntries = 100

// Entry is one recorded task event.
type Entry struct {
	ID        string    `json:"id"`
	TaskID    int64     `json:"task_id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Module consumes task events and keeps the most recent ones in memory.
type Module struct {
	logger  types.Logger
	mu      sync.RWMutex
	entries []Entry // oldest first
}

var _ mono.Module = (*Module)(nil)
var _ mono.EventConsumerModule = (*Module)(nil)

func NewModule(logger types.Logger) *Module {
	return &Module{
		logger:  logger.WithModule("activity"),
		entries: make([]Entry, 0, MaxEntries),
	}
}

func (m *Module) Name() string {
	return "activity"
}

func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCreatedV1, m.handleTaskCreated, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskUpdatedV1, m.handleTaskUpdated, m); err != nil {
		return fmt.Errorf("failed to register TaskUpdated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCompletedV1, m.handleTaskCompleted, m); err != nil {
		return fmt.Errorf("failed to register TaskCompleted consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}

	m.logger.Info("Registered event consumers", "events", "TaskCreated, TaskUpdated, TaskCompleted, TaskDeleted")
	return nil
}

func (m *Module) handleTaskCreated(_ context.Context, event events.TaskCreatedEvent, _ *mono.Msg) error {
	m.logger.Debug("Task created", "task_id", event.TaskID)
	m.record(event.TaskID, "task_created", fmt.Sprintf("Task '%s' created", event.Title), event.CreatedAt)
	return nil
}

func (m *Module) handleTaskUpdated(_ context.Context, event events.TaskUpdatedEvent, _ *mono.Msg) error {
	m.logger.Debug("Task updated", "task_id", event.TaskID, "version", event.Version)
	m.record(event.TaskID, "task_updated",
		fmt.Sprintf("Task '%s' updated (status %s, version %d)", event.Title, event.Status, event.Version),
		event.UpdatedAt)
	return nil
}

func (m *Module) handleTaskCompleted(_ context.Context, event events.TaskCompletedEvent, _ *mono.Msg) error {
	m.logger.Debug("Task completed", "task_id", event.TaskID)
	m.record(event.TaskID, "task_completed", fmt.Sprintf("Task '%s' completed", event.Title), event.CompletedAt)
	return nil
}

func (m *Module) handleTaskDeleted(_ context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	m.logger.Debug("Task deleted", "task_id", event.TaskID)
	m.record(event.TaskID, "task_deleted", fmt.Sprintf("Task %d deleted", event.TaskID), event.DeletedAt)
	return nil
}

func (m *Module) record(taskID int64, entryType, message string, at time.Time) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.entries) == MaxEntries {
		copy(m.entries, m.entries[1:])
		m.entries = m.entries[:MaxEntries-1]
	}
	m.entries = append(m.entries, Entry{
		ID:        uuid.New().String(),
		TaskID:    taskID,
		Type:      entryType,
		Message:   message,
		Timestamp: at,
	})
}

// Recent returns up to limit entries, newest first. A non-positive limit
// returns every retained entry.
func (m *Module) Recent(limit int) []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := len(m.entries)
	if limit > 0 && limit < n {
		n = limit
	}

	result := make([]Entry, 0, n)
	for i := len(m.entries) - 1; i >= 0 && len(result) < n; i-- {
		result = append(result, m.entries[i])
	}
	return result
}

func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Module started - listening for task events")
	return nil
}

func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Module stopped")
	return nil
}

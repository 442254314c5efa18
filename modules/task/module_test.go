package task

import (
	"context"
	"testing"

	domain "github.com/example/task-api/domain/task"
)

type stubProvider struct {
	repo domain.Repository
}

func (p *stubProvider) Name() string                  { return "store" }
func (p *stubProvider) Repository() domain.Repository { return p.repo }

func TestNewTaskAdapter_NilContainer(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewTaskAdapter(nil) did not panic")
		}
	}()
	NewTaskAdapter(nil)
}

func TestTaskModule_Metadata(t *testing.T) {
	m := NewModule(&stubProvider{}, &mockLogger{})

	if got := m.Name(); got != "task" {
		t.Errorf("Name() = %q, want %q", got, "task")
	}
	deps := m.Dependencies()
	if len(deps) != 1 || deps[0] != "store" {
		t.Errorf("Dependencies() = %v, want [store]", deps)
	}
	if got := len(m.EmitEvents()); got != 4 {
		t.Errorf("EmitEvents() returned %d definitions, want 4", got)
	}
}

func TestTaskModule_StartWithoutRepository(t *testing.T) {
	m := NewModule(&stubProvider{}, &mockLogger{})

	if err := m.Start(context.Background()); err == nil {
		t.Error("Start() should fail without a repository")
	}
	if m.Service() != nil {
		t.Error("Service() should be nil when Start failed")
	}
}

func TestTaskModule_HandlersBeforeStart(t *testing.T) {
	m := NewModule(&stubProvider{}, &mockLogger{})
	ctx := context.Background()

	if _, err := m.addTask(ctx, validTask(), nil); err == nil {
		t.Error("addTask() before Start should fail")
	}
	if _, err := m.listTasks(ctx, ListTasksRequest{}, nil); err == nil {
		t.Error("listTasks() before Start should fail")
	}
}

func TestTaskModule_Handlers(t *testing.T) {
	svc, _ := setupService(t)
	m := NewModule(&stubProvider{repo: svc.repo}, &mockLogger{})
	ctx := context.Background()

	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer m.Stop(ctx)

	added, err := m.addTask(ctx, validTask(), nil)
	if err != nil || !added.OK() {
		t.Fatalf("addTask() = %+v, %v", added, err)
	}
	id := added.Task.ID

	got, err := m.getTask(ctx, IDRequest{ID: id}, nil)
	if err != nil || !got.OK() {
		t.Fatalf("getTask() = %+v, %v", got, err)
	}

	details := validTask()
	details.Title = "Renamed"
	updated, err := m.updateTask(ctx, UpdateTaskRequest{ID: id, Task: details}, nil)
	if err != nil || updated.Task.Title != "Renamed" {
		t.Fatalf("updateTask() = %+v, %v", updated, err)
	}

	completed, err := m.completeTask(ctx, IDRequest{ID: id}, nil)
	if err != nil || completed.Task.Status != domain.StatusCompleted {
		t.Fatalf("completeTask() = %+v, %v", completed, err)
	}

	list, err := m.listTasks(ctx, ListTasksRequest{}, nil)
	if err != nil {
		t.Fatalf("listTasks() error = %v", err)
	}
	if list.Total != 1 || len(list.Tasks) != 1 {
		t.Errorf("listTasks() = %+v, want one task", list)
	}

	deleted, err := m.deleteTask(ctx, IDRequest{ID: id}, nil)
	if err != nil || !deleted.OK() {
		t.Fatalf("deleteTask() = %+v, %v", deleted, err)
	}

	missing, err := m.getTask(ctx, IDRequest{ID: id}, nil)
	if err != nil {
		t.Fatalf("getTask() error = %v", err)
	}
	if missing.Outcome != domain.OutcomeNotFound {
		t.Errorf("Outcome = %s, want %s", missing.Outcome, domain.OutcomeNotFound)
	}
}

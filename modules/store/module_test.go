package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/task-api/config"
	"github.com/go-monolith/mono/pkg/types"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(msg string, args ...any)         {}
func (m *mockLogger) Info(msg string, args ...any)          {}
func (m *mockLogger) Warn(msg string, args ...any)          {}
func (m *mockLogger) Error(msg string, args ...any)         {}
func (m *mockLogger) With(args ...any) types.Logger         { return m }
func (m *mockLogger) WithError(err error) types.Logger      { return m }
func (m *mockLogger) WithModule(module string) types.Logger { return m }

func TestModule_SQLiteLifecycle(t *testing.T) {
	cfg := config.Database{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "tasks.db"),
	}
	m := NewModule(cfg, &mockLogger{})
	ctx := context.Background()

	if health := m.Health(ctx); health.Healthy {
		t.Error("expected unhealthy before Start")
	}
	if m.Repository() != nil {
		t.Error("expected nil repository before Start")
	}

	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if health := m.Health(ctx); !health.Healthy {
		t.Errorf("expected healthy after Start, got %q", health.Message)
	}

	repo := m.Repository()
	if repo == nil {
		t.Fatal("expected repository after Start")
	}
	task := newTask("Lifecycle")
	if err := repo.Save(ctx, task); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := m.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	// Data survives a restart of the module.
	m = NewModule(cfg, &mockLogger{})
	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start() after restart error = %v", err)
	}
	defer m.Stop(ctx)

	exists, err := m.Repository().ExistsByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("ExistsByID() error = %v", err)
	}
	if !exists {
		t.Error("expected task to survive restart")
	}
}

func TestModule_Name(t *testing.T) {
	if got := NewModule(config.Database{}, &mockLogger{}).Name(); got != "store" {
		t.Errorf("Name() = %q, want %q", got, "store")
	}
}

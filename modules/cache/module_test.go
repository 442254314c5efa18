package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/example/task-api/config"
	domain "github.com/example/task-api/domain/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	repo domain.Repository
}

func (s *fakeStore) Name() string                  { return "store" }
func (s *fakeStore) Repository() domain.Repository { return s.repo }

func TestModule_Lifecycle(t *testing.T) {
	srv := miniredis.RunT(t)
	require.NoError(t, srv.Set("task:id:1", "stale"))

	store := &fakeStore{repo: newMemoryRepository()}
	m := NewModule(config.Cache{RedisAddr: srv.Addr(), Prefix: "task:", TTL: time.Minute}, store, &mockLogger{})
	ctx := context.Background()

	assert.Equal(t, "cache", m.Name())
	assert.Equal(t, []string{"store"}, m.Dependencies())
	assert.Nil(t, m.Repository())
	assert.False(t, m.Health(ctx).Healthy)

	require.NoError(t, m.Start(ctx))
	t.Cleanup(func() { _ = m.Stop(ctx) })

	assert.False(t, srv.Exists("task:id:1"), "stale entries should be flushed on start")
	assert.NotNil(t, m.Repository())
	assert.True(t, m.Health(ctx).Healthy)

	task := &domain.Task{Title: "Through module", Description: "Module wiring", Status: domain.StatusPending}
	require.NoError(t, m.Repository().Save(ctx, task))
	_, err := m.Repository().FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), m.Health(ctx).Details["misses"])
}

func TestModule_StartRequiresStore(t *testing.T) {
	srv := miniredis.RunT(t)
	m := NewModule(config.Cache{RedisAddr: srv.Addr(), TTL: time.Minute}, &fakeStore{}, &mockLogger{})

	assert.Error(t, m.Start(context.Background()))
}

func TestModule_StartRedisUnavailable(t *testing.T) {
	srv := miniredis.RunT(t)
	addr := srv.Addr()
	srv.Close()

	m := NewModule(config.Cache{RedisAddr: addr, TTL: time.Minute}, &fakeStore{repo: newMemoryRepository()}, &mockLogger{})
	assert.Error(t, m.Start(context.Background()))
}

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/example/task-api/config"
	domain "github.com/example/task-api/domain/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/redis/go-redis/v9"
)

// RepositoryProvider is a started module that exposes a task repository.
type RepositoryProvider interface {
	Name() string
	Repository() domain.Repository
}

// Module puts a Redis read cache in front of the store's repository.
type Module struct {
	cfg    config.Cache
	store  RepositoryProvider
	logger types.Logger
	client *redis.Client
	cache  *Cache
	repo   *CachedRepository
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.DependentModule       = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new cache module wrapping store's repository.
func NewModule(cfg config.Cache, store RepositoryProvider, logger types.Logger) *Module {
	return &Module{
		cfg:    cfg,
		store:  store,
		logger: logger.WithModule("cache"),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "cache"
}

// Dependencies makes the store start first.
func (m *Module) Dependencies() []string {
	return []string{m.store.Name()}
}

// SetDependencyServiceContainer is a no-op; the store is reached directly.
func (m *Module) SetDependencyServiceContainer(string, mono.ServiceContainer) {}

// Start connects to Redis and drops entries left over from a previous run.
func (m *Module) Start(ctx context.Context) error {
	next := m.store.Repository()
	if next == nil {
		return fmt.Errorf("store repository not initialized")
	}

	m.client = redis.NewClient(&redis.Options{
		Addr:         m.cfg.RedisAddr,
		PoolSize:     50,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := m.client.Ping(ctx).Err(); err != nil {
		m.client.Close()
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	m.cache = New(m.client, m.cfg.Prefix, m.cfg.TTL)
	if err := m.cache.DeletePattern(ctx, "*"); err != nil {
		m.logger.Warn("Failed to flush stale cache entries", "error", err)
	}
	m.repo = NewCachedRepository(next, m.cache, m.logger)

	m.logger.Info("Connected to Redis", "addr", m.cfg.RedisAddr, "prefix", m.cfg.Prefix, "ttl", m.cfg.TTL.String())
	return nil
}

// Stop closes the Redis connection.
func (m *Module) Stop(_ context.Context) error {
	if m.client == nil {
		return nil
	}
	if err := m.client.Close(); err != nil {
		return fmt.Errorf("failed to close Redis connection: %w", err)
	}
	m.logger.Info("Redis connection closed")
	return nil
}

// Repository returns the cached repository. It is nil before Start.
func (m *Module) Repository() domain.Repository {
	if m.repo == nil {
		return nil
	}
	return m.repo
}

// Health verifies the Redis connection.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if m.cache == nil {
		return mono.HealthStatus{Healthy: false, Message: "cache not initialized"}
	}
	if err := m.cache.Ping(ctx); err != nil {
		return mono.HealthStatus{Healthy: false, Message: fmt.Sprintf("redis ping failed: %v", err)}
	}
	stats := m.cache.GetStats()
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"addr":     m.cfg.RedisAddr,
			"hit_rate": stats.HitRate,
			"hits":     stats.Hits,
			"misses":   stats.Misses,
		},
	}
}

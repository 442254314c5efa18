package cache

import (
	"context"
	"errors"
	"strconv"
	"sync"

	domain "github.com/example/task-api/domain/task"
	"github.com/go-monolith/mono/pkg/types"
	"golang.org/x/sync/singleflight"
)

const listKey = "list"

func idKey(id int64) string {
	return "id:" + strconv.FormatInt(id, 10)
}

// CachedRepository decorates a task repository with cache-aside reads.
// Writes go to the wrapped repository first, then invalidate the affected keys.
//
// Every invalidation bumps the key's generation. A read that loaded from the
// wrapped repository only keeps its cache entry when the generation it started
// under is still current, so a load racing a write never pins the old row.
type CachedRepository struct {
	next    domain.Repository
	cache   *Cache
	logger  types.Logger
	sfGroup singleflight.Group

	mu          sync.Mutex
	generations map[string]uint64
}

// loaded is a value read from the wrapped repository together with the key
// generation current when the read started.
type loaded struct {
	value      any
	generation uint64
}

var _ domain.Repository = (*CachedRepository)(nil)

// NewCachedRepository wraps next with c.
func NewCachedRepository(next domain.Repository, c *Cache, logger types.Logger) *CachedRepository {
	return &CachedRepository{
		next:        next,
		cache:       c,
		logger:      logger,
		generations: make(map[string]uint64),
	}
}

// Save writes through and invalidates the task and list keys. A conflicting
// or missing row also invalidates, so the next read sees the stored version.
func (r *CachedRepository) Save(ctx context.Context, t *domain.Task) error {
	if err := r.next.Save(ctx, t); err != nil {
		if t.ID != 0 && (errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrNotFound)) {
			r.invalidate(ctx, t.ID)
		}
		return err
	}
	r.invalidate(ctx, t.ID)
	return nil
}

// FindByID reads through the cache.
func (r *CachedRepository) FindByID(ctx context.Context, id int64) (*domain.Task, error) {
	key := idKey(id)

	var cached domain.Task
	found, err := r.cache.Get(ctx, key, &cached)
	if err != nil {
		r.logger.Warn("Cache read failed", "key", key, "error", err)
	}
	if found {
		return &cached, nil
	}

	val, err, _ := r.sfGroup.Do(key, func() (any, error) {
		gen := r.generation(key)
		t, err := r.next.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return loaded{value: t, generation: gen}, nil
	})
	if err != nil {
		return nil, err
	}

	// singleflight shares the pointer between callers.
	l := val.(loaded)
	t := *l.value.(*domain.Task)
	r.store(ctx, key, t, l.generation)
	return &t, nil
}

// FindAll reads the full list through the cache.
func (r *CachedRepository) FindAll(ctx context.Context) ([]domain.Task, error) {
	var cached []domain.Task
	found, err := r.cache.Get(ctx, listKey, &cached)
	if err != nil {
		r.logger.Warn("Cache read failed", "key", listKey, "error", err)
	}
	if found && cached != nil {
		return cached, nil
	}

	val, err, _ := r.sfGroup.Do(listKey, func() (any, error) {
		gen := r.generation(listKey)
		tasks, err := r.next.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		return loaded{value: tasks, generation: gen}, nil
	})
	if err != nil {
		return nil, err
	}

	l := val.(loaded)
	shared := l.value.([]domain.Task)
	tasks := make([]domain.Task, len(shared))
	copy(tasks, shared)

	r.store(ctx, listKey, tasks, l.generation)
	return tasks, nil
}

// DeleteByID deletes through and invalidates the task and list keys.
func (r *CachedRepository) DeleteByID(ctx context.Context, id int64) error {
	if err := r.next.DeleteByID(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

// ExistsByID is answered by the wrapped repository.
func (r *CachedRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	return r.next.ExistsByID(ctx, id)
}

// store caches value under key unless key was invalidated after the read
// that produced value began. The check runs after the write: an invalidation
// landing in between either deletes the entry itself or is seen here.
func (r *CachedRepository) store(ctx context.Context, key string, value any, gen uint64) {
	if r.generation(key) != gen {
		return
	}
	if err := r.cache.Set(ctx, key, value); err != nil {
		r.logger.Warn("Cache write failed", "key", key, "error", err)
		return
	}
	if r.generation(key) != gen {
		if err := r.cache.Delete(ctx, key); err != nil {
			r.logger.Warn("Cache invalidation failed", "key", key, "error", err)
		}
	}
}

func (r *CachedRepository) generation(key string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generations[key]
}

func (r *CachedRepository) invalidate(ctx context.Context, id int64) {
	keys := []string{idKey(id), listKey}

	r.mu.Lock()
	for _, key := range keys {
		r.generations[key]++
	}
	r.mu.Unlock()

	// Reads that start from here on must not join a load begun before the write.
	for _, key := range keys {
		r.sfGroup.Forget(key)
	}

	if err := r.cache.Delete(ctx, keys...); err != nil {
		r.logger.Warn("Cache invalidation failed", "task_id", id, "error", err)
	}
}

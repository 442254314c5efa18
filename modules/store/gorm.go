package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/example/task-api/domain/task"
	"gorm.io/gorm"
)

// GormRepository stores tasks through GORM. It is used with SQLite.
type GormRepository struct {
	db *gorm.DB
}

var _ domain.Repository = (*GormRepository)(nil)

// NewGormRepository creates a new GORM-backed task repository.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Migrate runs database migrations for the tasks table.
func (r *GormRepository) Migrate() error {
	return r.db.AutoMigrate(&domain.Task{})
}

// Save inserts a new task or updates an existing one under its current version.
func (r *GormRepository) Save(ctx context.Context, t *domain.Task) error {
	now := time.Now().UTC()

	if t.ID == 0 {
		t.Version = 1
		t.CreatedAt = now
		t.UpdatedAt = now
		if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}
		return nil
	}

	result := r.db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("id = ? AND version = ?", t.ID, t.Version).
		Updates(map[string]any{
			"title":        t.Title,
			"description":  t.Description,
			"status":       t.Status,
			"deadline":     t.Deadline,
			"category":     t.Category,
			"completed_at": t.CompletedAt,
			"version":      gorm.Expr("version + 1"),
			"updated_at":   now,
		})
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if result.RowsAffected == 0 {
		return r.missOrConflict(ctx, t.ID)
	}

	t.Version++
	t.UpdatedAt = now
	return nil
}

// FindByID retrieves a task by its ID.
func (r *GormRepository) FindByID(ctx context.Context, id int64) (*domain.Task, error) {
	var t domain.Task
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &t, nil
}

// FindAll retrieves all tasks ordered by ID.
func (r *GormRepository) FindAll(ctx context.Context) ([]domain.Task, error) {
	tasks := make([]domain.Task, 0)
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to find tasks: %w", err)
	}
	return tasks, nil
}

// DeleteByID removes a task by ID.
func (r *GormRepository) DeleteByID(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&domain.Task{}, "id = ?", id)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ExistsByID reports whether a task with the given ID is stored.
func (r *GormRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Task{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check task: %w", err)
	}
	return count > 0, nil
}

func (r *GormRepository) missOrConflict(ctx context.Context, id int64) error {
	exists, err := r.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrConflict
	}
	return domain.ErrNotFound
}

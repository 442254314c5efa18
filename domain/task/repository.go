package task

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a task id does not resolve to a stored row.
	ErrNotFound = errors.New("task not found")

	// ErrConflict is returned when an update lost an optimistic-concurrency race.
	ErrConflict = errors.New("task version conflict")
)

// Repository is the persistence collaborator for tasks.
type Repository interface {
	// Save inserts t when t.ID is zero and assigns the id. Otherwise it updates
	// the row matching t.ID and t.Version and increments t.Version.
	Save(ctx context.Context, t *Task) error

	// FindByID returns ErrNotFound when no row matches.
	FindByID(ctx context.Context, id int64) (*Task, error)

	// FindAll returns every task ordered by id.
	FindAll(ctx context.Context) ([]Task, error)

	// DeleteByID returns ErrNotFound when no row matches.
	DeleteByID(ctx context.Context, id int64) error

	ExistsByID(ctx context.Context, id int64) (bool, error)
}

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/example/task-api/domain/task"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgxpool.Pool used by PostgresRepository.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const createTasksTable = `
CREATE TABLE IF NOT EXISTS tasks (
	id           BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	title        VARCHAR(50) NOT NULL,
	description  TEXT NOT NULL,
	status       VARCHAR(16) NOT NULL,
	deadline     DATE,
	category     TEXT NOT NULL DEFAULT '',
	version      BIGINT NOT NULL DEFAULT 1,
	completed_at TIMESTAMPTZ,
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL
)`

const taskColumns = `id, title, description, status, deadline, category, version, completed_at, created_at, updated_at`

// PostgresRepository stores tasks in PostgreSQL through pgx.
type PostgresRepository struct {
	db DBTX
}

var _ domain.Repository = (*PostgresRepository)(nil)

// NewPostgresRepository creates a new pgx-backed task repository.
func NewPostgresRepository(db DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Migrate creates the tasks table if it does not exist.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, createTasksTable); err != nil {
		return fmt.Errorf("failed to create tasks table: %w", err)
	}
	return nil
}

// Save inserts a new task or updates an existing one under its current version.
func (r *PostgresRepository) Save(ctx context.Context, t *domain.Task) error {
	now := time.Now().UTC()

	if t.ID == 0 {
		t.Version = 1
		t.CreatedAt = now
		t.UpdatedAt = now
		err := r.db.QueryRow(ctx, `
			INSERT INTO tasks (title, description, status, deadline, category, version, completed_at, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id`,
			t.Title, t.Description, string(t.Status), t.Deadline, t.Category,
			t.Version, t.CompletedAt, t.CreatedAt, t.UpdatedAt,
		).Scan(&t.ID)
		if err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}
		return nil
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE tasks
		SET title = $1, description = $2, status = $3, deadline = $4, category = $5,
		    completed_at = $6, updated_at = $7, version = version + 1
		WHERE id = $8 AND version = $9`,
		t.Title, t.Description, string(t.Status), t.Deadline, t.Category,
		t.CompletedAt, now, t.ID, t.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		exists, err := r.ExistsByID(ctx, t.ID)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrConflict
		}
		return domain.ErrNotFound
	}

	t.Version++
	t.UpdatedAt = now
	return nil
}

// FindByID retrieves a task by its ID.
func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (*domain.Task, error) {
	row := r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return t, nil
}

// FindAll retrieves all tasks ordered by ID.
func (r *PostgresRepository) FindAll(ctx context.Context) ([]domain.Task, error) {
	rows, err := r.db.Query(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to find tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, nil
}

// DeleteByID removes a task by ID.
func (r *PostgresRepository) DeleteByID(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ExistsByID reports whether a task with the given ID is stored.
func (r *PostgresRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check task: %w", err)
	}
	return exists, nil
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		t      domain.Task
		status string
	)
	if err := row.Scan(
		&t.ID, &t.Title, &t.Description, &status, &t.Deadline, &t.Category,
		&t.Version, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	t.Status = domain.Status(status)
	return &t, nil
}

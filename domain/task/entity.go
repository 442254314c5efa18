package task

import "time"

// Status represents the state of a task.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
)

// Task is the core domain entity representing a todo item.
type Task struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string     `gorm:"size:50;not null" json:"title"`
	Description string     `gorm:"not null" json:"description"`
	Status      Status     `gorm:"size:16;not null" json:"status"`
	Deadline    *Date      `json:"deadline"`
	Category    string     `gorm:"not null" json:"category"`
	Version     int64      `gorm:"not null" json:"version"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName returns the table name for the Task model.
func (Task) TableName() string {
	return "tasks"
}

// IsCompleted reports whether the task has been marked completed.
func (t *Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

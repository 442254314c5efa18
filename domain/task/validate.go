package task

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	MinTitleLength       = 3
	MaxTitleLength       = 50
	MinDescriptionLength = 5
)

var validate = validator.New()

// ValidationError rejects task data before any write.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// taskRules mirrors the validated fields of a Task. Field order is the check
// order: the first failing field decides the reported message.
type taskRules struct {
	Title       string `validate:"required,min=3,max=50"`
	Description string `validate:"required,min=5"`
	Status      Status `validate:"omitempty,oneof=PENDING COMPLETED"`
}

// messages maps field and failing tag to the user-facing message.
var messages = map[string]map[string]string{
	"Title": {
		"required": "Task title must not be empty",
		"min":      fmt.Sprintf("Task title must be at least %d characters long", MinTitleLength),
		"max":      fmt.Sprintf("Task title must be no more than %d characters long", MaxTitleLength),
	},
	"Description": {
		"required": fmt.Sprintf("Task description must be at least %d characters long", MinDescriptionLength),
		"min":      fmt.Sprintf("Task description must be at least %d characters long", MinDescriptionLength),
	},
	"Status": {
		"oneof": fmt.Sprintf("Task status must be one of %s, %s", StatusPending, StatusCompleted),
	},
}

// Validate checks title, description and status of t. The title is trimmed in
// place before its length is measured.
func Validate(t *Task) *ValidationError {
	t.Title = strings.TrimSpace(t.Title)

	err := validate.Struct(taskRules{
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
	})
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	first := fieldErrs[0]
	msg, ok := messages[first.StructField()][first.Tag()]
	if !ok {
		msg = fmt.Sprintf("Task %s is invalid", strings.ToLower(first.StructField()))
	}
	return &ValidationError{
		Field:   strings.ToLower(first.StructField()),
		Message: msg,
	}
}

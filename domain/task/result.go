package task

import "fmt"

// Outcome tags the result of a task operation.
type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeNotFound Outcome = "not_found"
	OutcomeInvalid  Outcome = "invalid"
	OutcomeConflict Outcome = "conflict"
)

// Result is returned by every task operation that can be rejected.
// Task is set only when Outcome is OutcomeOK; Message is set otherwise.
type Result struct {
	Outcome Outcome `json:"outcome"`
	Task    *Task   `json:"task,omitempty"`
	Message string  `json:"message,omitempty"`
	Field   string  `json:"field,omitempty"`
}

// Found wraps a successfully loaded or stored task.
func Found(t *Task) Result {
	return Result{Outcome: OutcomeOK, Task: t}
}

// NotFound reports that id does not resolve to a stored task.
func NotFound(id int64) Result {
	return Result{Outcome: OutcomeNotFound, Message: NotFoundMessage(id)}
}

// Invalid reports a validation failure.
func Invalid(err *ValidationError) Result {
	return Result{Outcome: OutcomeInvalid, Message: err.Message, Field: err.Field}
}

// Conflict reports a lost optimistic-concurrency race on id.
func Conflict(id int64) Result {
	return Result{
		Outcome: OutcomeConflict,
		Message: fmt.Sprintf("Task %d was modified concurrently, reload and retry", id),
	}
}

// NotFoundMessage is the message carried by every not-found result.
func NotFoundMessage(id int64) string {
	return fmt.Sprintf("Task not found with id %d", id)
}

// OK reports whether the operation succeeded.
func (r Result) OK() bool {
	return r.Outcome == OutcomeOK
}

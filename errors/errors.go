package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// TaskErrorType categorizes the failures surfaced by the store and the processor
type TaskErrorType string

const (
	ValidationError TaskErrorType = "validation"
	ExecutionError  TaskErrorType = "execution"
	NotFoundError   TaskErrorType = "not_found"
	InternalError   TaskErrorType = "internal"
)

// TaskError provides structured error information with HTTP status suggestions
type TaskError struct {
	Type    TaskErrorType  `json:"type"`
	Message string         `json:"message"`
	Code    int            `json:"code"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Constructor functions for common error types
func NewValidationError(message string, details ...map[string]any) *TaskError {
	return &TaskError{
		Type:    ValidationError,
		Message: message,
		Code:    http.StatusBadRequest,
		Details: firstDetails(details),
	}
}

func NewExecutionError(message string, details ...map[string]any) *TaskError {
	return &TaskError{
		Type:    ExecutionError,
		Message: message,
		Code:    http.StatusUnprocessableEntity,
		Details: firstDetails(details),
	}
}

func NewNotFoundError(message string, details ...map[string]any) *TaskError {
	return &TaskError{
		Type:    NotFoundError,
		Message: message,
		Code:    http.StatusNotFound,
		Details: firstDetails(details),
	}
}

func NewInternalError(message string) *TaskError {
	return &TaskError{
		Type:    InternalError,
		Message: message,
		Code:    http.StatusInternalServerError,
	}
}

// NewTaskNotFoundError reports a task id that has no entry in the store.
func NewTaskNotFoundError(taskID string) *TaskError {
	return NewNotFoundError(fmt.Sprintf("task %q not found", taskID), map[string]any{
		"task_id": taskID,
	})
}

func firstDetails(details []map[string]any) map[string]any {
	if len(details) > 0 {
		return details[0]
	}
	return nil
}

// IsTaskError checks if an error (or anything it wraps) is a TaskError and returns it
func IsTaskError(err error) (*TaskError, bool) {
	var taskErr *TaskError
	if stderrors.As(err, &taskErr) {
		return taskErr, true
	}
	return nil, false
}

// IsNotFound reports whether err is a not_found TaskError.
func IsNotFound(err error) bool {
	taskErr, ok := IsTaskError(err)
	return ok && taskErr.Type == NotFoundError
}

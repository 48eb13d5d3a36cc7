package execution

import (
	"context"
	"task-manager/errors"
	"task-manager/logger"
	"task-manager/tasks"
	"task-manager/tasks/registry"
	"time"
)

// CompletionMarker records that a task's command was carried out. The flag
// is only set while the task still holds the solution the command came from.
type CompletionMarker interface {
	CompleteIfSolution(ctx context.Context, id, solution string) (bool, error)
}

// Result describes what happened to one command.
type Result struct {
	Command *tasks.Command `json:"command"`
	Reply   string         `json:"reply,omitempty"`
	// Recognized is false when the fallback handler answered.
	Recognized bool `json:"recognized"`
	// Queued is true when the command was handed to background workers
	// and has not run yet.
	Queued bool `json:"queued"`
	// Completed is true when this run marked the originating task completed.
	Completed bool      `json:"completed"`
	StartTime time.Time `json:"start_time,omitzero"`
	EndTime   time.Time `json:"end_time,omitzero"`
}

// Executor runs commands against the registry and marks the originating
// task completed when a registered handler succeeds.
type Executor struct {
	registry *registry.CommandRegistry
	marker   CompletionMarker
	logger   *logger.Logger
}

// NewExecutor creates an executor. marker may be nil, in which case
// completion is never recorded.
func NewExecutor(reg *registry.CommandRegistry, marker CompletionMarker, lg *logger.Logger) *Executor {
	if lg == nil {
		lg = logger.Nop()
	}
	return &Executor{registry: reg, marker: marker, logger: lg}
}

// Registry exposes the registry the executor resolves handlers from.
func (e *Executor) Registry() *registry.CommandRegistry {
	return e.registry
}

func (e *Executor) Execute(ctx context.Context, cmd *tasks.Command) (*Result, error) {
	result := &Result{Command: cmd, StartTime: time.Now()}

	handler, recognized := e.registry.Get(cmd.Text)
	if !recognized {
		var ok bool
		if handler, ok = e.registry.Resolve(cmd.Text); !ok {
			return nil, errors.NewNotFoundError("no handler registered for command: "+cmd.Text, map[string]any{
				"command_id": cmd.ID,
				"task_id":    cmd.TaskID,
			})
		}
	}
	result.Recognized = recognized

	reply, err := handler.Handle(ctx, cmd)
	result.EndTime = time.Now()
	if err != nil {
		e.logger.Command(cmd.ID, cmd.Text, "command failed", map[string]any{
			"task_id": cmd.TaskID,
			"error":   err.Error(),
		})
		if _, ok := errors.IsTaskError(err); ok {
			return nil, err
		}
		return nil, errors.NewExecutionError("command failed", map[string]any{
			"command_id": cmd.ID,
			"task_id":    cmd.TaskID,
			"error":      err.Error(),
		})
	}
	result.Reply = reply

	e.logger.Command(cmd.ID, cmd.Text, "command executed", map[string]any{
		"task_id":     cmd.TaskID,
		"recognized":  recognized,
		"duration_ns": result.EndTime.Sub(result.StartTime).Nanoseconds(),
	})

	if recognized && cmd.TaskID != "" && e.marker != nil {
		// The command already ran; a failed store write is logged, not returned.
		completed, err := e.marker.CompleteIfSolution(ctx, cmd.TaskID, cmd.Text)
		switch {
		case err != nil:
			e.logger.Task(logger.ERROR, cmd.TaskID, "failed to mark task completed", map[string]any{
				"command_id": cmd.ID,
				"error":      err.Error(),
			})
		case !completed:
			e.logger.Task(logger.WARN, cmd.TaskID, "task removed or changed before its command ran, not marking completed", map[string]any{
				"command_id": cmd.ID,
				"command":    cmd.Text,
			})
		}
		result.Completed = completed
	}

	return result, nil
}

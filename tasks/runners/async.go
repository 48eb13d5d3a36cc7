package runners

import (
	"context"
	"task-manager/errors"
	"task-manager/tasks"
	"task-manager/tasks/execution"
	"task-manager/tasks/queue"
	"task-manager/tasks/registry"
)

var _ Runner = (*AsynchronousRunner)(nil)

// AsynchronousRunner validates commands and enqueues them for the worker pool.
type AsynchronousRunner struct {
	queue    queue.CommandQueue
	registry *registry.CommandRegistry
}

func NewAsynchronousRunner(q queue.CommandQueue, reg *registry.CommandRegistry) *AsynchronousRunner {
	return &AsynchronousRunner{queue: q, registry: reg}
}

func (r *AsynchronousRunner) Run(ctx context.Context, cmd *tasks.Command) (*execution.Result, error) {
	// Validate a handler exists before queuing
	if _, ok := r.registry.Resolve(cmd.Text); !ok {
		return nil, errors.NewNotFoundError("no handler registered for command: "+cmd.Text, map[string]any{
			"command_id": cmd.ID,
			"task_id":    cmd.TaskID,
		})
	}

	if err := r.queue.Enqueue(ctx, cmd); err != nil {
		// Preserve structured errors, wrap others as execution errors
		if _, ok := errors.IsTaskError(err); ok {
			return nil, err
		}
		return nil, errors.NewExecutionError("failed to enqueue command", map[string]any{
			"command_id": cmd.ID,
			"task_id":    cmd.TaskID,
			"error":      err.Error(),
		})
	}

	_, recognized := r.registry.Get(cmd.Text)
	return &execution.Result{Command: cmd, Recognized: recognized, Queued: true}, nil
}

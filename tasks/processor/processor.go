package processor

import (
	"context"
	"fmt"
	"strings"
	"task-manager/errors"
	"task-manager/logger"
	"task-manager/tasks"
	"task-manager/tasks/execution"
	"task-manager/tasks/runners"
	"task-manager/tasks/store"
)

// Processor turns stored solutions into commands and hands them to a runner.
type Processor struct {
	store  store.TaskStore
	runner runners.Runner
	logger *logger.Logger
}

func New(s store.TaskStore, r runners.Runner, lg *logger.Logger) *Processor {
	if lg == nil {
		lg = logger.Nop()
	}
	return &Processor{store: s, runner: r, logger: lg}
}

// Dispatch sends the solution of taskID as a command. Tasks without a
// solution, or with an empty one, are reported as not_found.
func (p *Processor) Dispatch(ctx context.Context, taskID string) (*execution.Result, error) {
	solution, ok, err := p.store.GetSolution(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !ok || solution == "" {
		return nil, errors.NewNotFoundError(fmt.Sprintf("task %q has no solution", taskID), map[string]any{
			"task_id": taskID,
		})
	}

	cmd := tasks.NewCommand(taskID, solution)
	p.logger.Task(logger.INFO, taskID, "dispatching solution", map[string]any{
		"command_id": cmd.ID,
		"command":    solution,
	})
	return p.runner.Run(ctx, cmd)
}

// Send runs a command that is not tied to a stored task.
func (p *Processor) Send(ctx context.Context, text string) (*execution.Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.NewValidationError("command text is required")
	}

	cmd := tasks.NewCommand("", text)
	p.logger.Command(cmd.ID, text, "sending command")
	return p.runner.Run(ctx, cmd)
}

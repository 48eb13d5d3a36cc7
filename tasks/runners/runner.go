package runners

import (
	"context"
	"task-manager/tasks"
	"task-manager/tasks/execution"
)

// Runner decides when and where a command executes.
type Runner interface {
	Run(ctx context.Context, cmd *tasks.Command) (*execution.Result, error)
}

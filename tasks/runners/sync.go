package runners

import (
	"context"
	"task-manager/tasks"
	"task-manager/tasks/execution"
)

var _ Runner = (*SynchronousRunner)(nil)

// SynchronousRunner executes commands in the caller's goroutine and blocks
// until the handler returns.
type SynchronousRunner struct {
	executor *execution.Executor
}

func NewSynchronousRunner(exec *execution.Executor) *SynchronousRunner {
	return &SynchronousRunner{executor: exec}
}

func (r *SynchronousRunner) Run(ctx context.Context, cmd *tasks.Command) (*execution.Result, error) {
	return r.executor.Execute(ctx, cmd)
}

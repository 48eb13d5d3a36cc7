package workers

import (
	"context"
	stderrors "errors"
	"sync"
	"task-manager/logger"
	"task-manager/tasks/execution"
	"task-manager/tasks/queue"
	"time"
)

// dequeueBackoff spaces out retries after a queue error.
const dequeueBackoff = 100 * time.Millisecond

type Worker struct {
	id       int
	queue    queue.CommandQueue
	executor *execution.Executor
	logger   *logger.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewWorker(id int, q queue.CommandQueue, exec *execution.Executor, lg *logger.Logger) *Worker {
	return &Worker{
		id:       id,
		queue:    q,
		executor: exec,
		logger:   lg,
		stopCh:   make(chan struct{}),
	}
}

// Start runs the processing loop until ctx is done, Stop is called or the
// queue is closed and drained.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Debug("worker waiting for commands", map[string]any{
		"worker_id": w.id,
	})
	defer w.logger.Debug("worker exited", map[string]any{
		"worker_id": w.id,
	})

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		default:
			if !w.processNextCommand(ctx) {
				return
			}
		}
	}
}

// Stop lets the current command finish and ends the loop.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
}

// processNextCommand handles one command and reports whether the loop should continue.
func (w *Worker) processNextCommand(ctx context.Context) bool {
	cmd, err := w.queue.Dequeue(ctx)
	if err != nil {
		if stderrors.Is(err, queue.ErrQueueClosed) {
			w.logger.Debug("queue closed and drained", map[string]any{
				"worker_id": w.id,
			})
			return false
		}
		if ctx.Err() != nil {
			return true
		}

		w.logger.Error("failed to dequeue command", map[string]any{
			"worker_id": w.id,
			"error":     err.Error(),
		})

		select {
		case <-ctx.Done():
		case <-w.stopCh:
		case <-time.After(dequeueBackoff):
		}
		return true
	}

	w.logger.Command(cmd.ID, cmd.Text, "command dequeued", map[string]any{
		"worker_id": w.id,
		"task_id":   cmd.TaskID,
	})

	result, err := w.executor.Execute(ctx, cmd)
	if err != nil {
		w.logger.Command(cmd.ID, cmd.Text, "command execution failed", map[string]any{
			"worker_id": w.id,
			"task_id":   cmd.TaskID,
			"error":     err.Error(),
		})
		return true
	}

	w.logger.Command(cmd.ID, cmd.Text, "command completed successfully", map[string]any{
		"worker_id":  w.id,
		"task_id":    cmd.TaskID,
		"reply":      result.Reply,
		"recognized": result.Recognized,
	})
	return true
}
